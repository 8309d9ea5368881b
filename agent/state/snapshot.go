package state

import "time"

// Snapshot is a point-in-time, read-only view of a Session. Mutating a
// Snapshot never affects the session it came from.
type Snapshot struct {
	SessionID       string     `json:"session_id"`
	Transcript      []Message  `json:"transcript"`
	Catalog         []MenuItem `json:"catalog,omitempty"`
	Recommendations []MenuItem `json:"recommendations,omitempty"`
	Cart            Cart       `json:"cart"`
	Phase           Phase      `json:"phase"`
	Pending         bool       `json:"pending"`
	Version         uint64     `json:"version"`
	TakenAt         time.Time  `json:"taken_at"`
}

// CanFinalize reports whether the finalize intent is reachable.
func (s Snapshot) CanFinalize() bool {
	return s.Phase == PhaseAwaitingConfirmation
}

// CanConfirm reports whether a confirmation can be requested.
func (s Snapshot) CanConfirm() bool {
	return s.Phase == PhaseIdle && len(s.Cart.Lines) > 0
}

func (s Snapshot) LastMessage() (Message, bool) {
	if len(s.Transcript) == 0 {
		return Message{}, false
	}
	return s.Transcript[len(s.Transcript)-1], true
}
