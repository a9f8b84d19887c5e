package exception

import "github.com/yanun0323/errors"

var (
	ErrSessionNotFound  = errors.New("session: not found")
	ErrSessionDuplicate = errors.New("session: user id already registered")
	ErrSessionNilBroker = errors.New("session: nil broker client")
)
