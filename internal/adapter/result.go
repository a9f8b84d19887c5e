package adapter

import "main/internal/adapter/enum"

// ChildResult is the outcome of forwarding one master event to one child.
type ChildResult struct {
	ChildName    string
	ChildUserID  string
	ChildOrderID string
	Err          error
}

// OrderOutcome is the typed result of classifying and replicating one
// master order. Callers and tests assert on it instead of parsing logs.
type OrderOutcome struct {
	MasterOrderID string
	Action        enum.ReplicationAction
	Skip          enum.SkipReason
	Children      []ChildResult
}

// Failed reports how many child forwards in the outcome errored.
func (o OrderOutcome) Failed() int {
	n := 0
	for _, c := range o.Children {
		if c.Err != nil {
			n++
		}
	}
	return n
}
