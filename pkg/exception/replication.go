package exception

import "github.com/yanun0323/errors"

var (
	ErrReplicateMalformedOrder  = errors.New("replicate: malformed master order")
	ErrReplicateStaleOrder      = errors.New("replicate: master order outside freshness window")
	ErrReplicateNilCollaborator = errors.New("replicate: nil collaborator")
	ErrReplicateInvalidConfig   = errors.New("replicate: invalid config")
)
