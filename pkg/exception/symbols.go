package exception

import "github.com/yanun0323/errors"

var (
	ErrSymbolMasterStatus = errors.New("symbols: security master download status is not ok")
	ErrSymbolMasterEmpty  = errors.New("symbols: security master has no rows")
	ErrSymbolNilDB        = errors.New("symbols: nil database handle")
)
