package enum

// ReplicationAction place, cancel, none
type ReplicationAction uint8

const (
	_replication_action_beg ReplicationAction = iota
	ReplicationActionPlace
	ReplicationActionCancel
	ReplicationActionNone
	_replication_action_end
)

func (a ReplicationAction) IsAvailable() bool {
	return a > _replication_action_beg && a < _replication_action_end
}

// SkipReason none, malformed, stale, duplicate, no action
type SkipReason uint8

const (
	SkipReasonNone SkipReason = iota
	SkipReasonMalformed
	SkipReasonStale
	SkipReasonDuplicate
	SkipReasonNoAction
	_skip_reason_end
)

func (r SkipReason) IsAvailable() bool {
	return r < _skip_reason_end
}

func (r SkipReason) String() string {
	switch r {
	case SkipReasonNone:
		return "none"
	case SkipReasonMalformed:
		return "malformed"
	case SkipReasonStale:
		return "stale"
	case SkipReasonDuplicate:
		return "duplicate"
	case SkipReasonNoAction:
		return "no_action"
	default:
		return "unknown"
	}
}
