// Package catchup drives the two-phase fast-catchup job (account ingestion
// then block download) by polling node status snapshots.
package catchup

import "github.com/zpdzap/chainbox/internal/node"

// State of one phase as seen by the tracker.
type State int

const (
	NotStarted State = iota
	InProgress
	Complete
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Complete:
		return "complete"
	default:
		return "not started"
	}
}

// PhaseTracker watches a stream of snapshots for a single phase and decides
// when it is done. The node reports in bursts at whatever cadence it likes;
// the tracker only ever moves forward.
type PhaseTracker struct {
	phase     node.Phase
	state     State
	processed uint64
	total     uint64
}

func NewPhaseTracker(phase node.Phase) *PhaseTracker {
	return &PhaseTracker{phase: phase}
}

func (t *PhaseTracker) State() State      { return t.state }
func (t *PhaseTracker) Phase() node.Phase { return t.phase }

// Progress returns the last observed (processed, total) pair.
func (t *PhaseTracker) Progress() (processed, total uint64) {
	return t.processed, t.total
}

// Observe applies one snapshot and returns the resulting state plus
// whether a progress event should be emitted for it.
func (t *PhaseTracker) Observe(s node.Snapshot) (State, bool) {
	switch t.state {
	case Complete:
		return t.state, false

	case NotStarted:
		if !s.Present {
			return t.state, false
		}
		t.state = InProgress
		t.update(s)
		return t.state, true

	default: // InProgress
		if !s.Present {
			// The marker vanished: the node moved on to the next
			// stage between polls, superseding this phase's status
			// line. That is an implicit completion.
			t.processed = t.total
			t.state = Complete
			return t.state, true
		}
		t.update(s)
		return t.state, true
	}
}

func (t *PhaseTracker) update(s node.Snapshot) {
	t.processed = s.Processed
	t.total = s.Total
	if t.total > 0 && t.processed >= t.total {
		t.state = Complete
	}
}
