package exception

import "github.com/yanun0323/errors"

var (
	ErrBrokerStatus       = errors.New("broker: response status is not success")
	ErrBrokerEmptyOrderID = errors.New("broker: empty response order id")
	ErrBrokerNotLoggedIn  = errors.New("broker: session is not logged in")
	ErrBrokerLoginFailed  = errors.New("broker: login rejected")
	ErrBrokerDecodeBody   = errors.New("broker: decode response body")
)
