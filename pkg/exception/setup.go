package exception

import "github.com/yanun0323/errors"

var (
	ErrSetupMissingName     = errors.New("setup: missing name")
	ErrSetupMissingMaster   = errors.New("setup: missing master account")
	ErrSetupMissingChildren = errors.New("setup: no child accounts")
)
