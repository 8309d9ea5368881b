package roundtripnode

import (
	"errors"
	"strings"
	"time"

	statex "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/state"
)

var (
	ErrInvalidUtterance = errors.New("utterance is empty")
	ErrEmptyReply       = errors.New("conversation reply is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply           string
	Recommendations []statex.MenuItem
}

// GraphState travels through one send-message round-trip.
type GraphState struct {
	SessionID string
	Text      string
	StartedAt time.Time

	Reply           string
	Recommendations []statex.MenuItem
}

// ValidateUtterance rejects blank text. The text sent to the gateways is the
// user's text as typed; trimming only decides emptiness.
func ValidateUtterance(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrInvalidUtterance
	}
	return &GraphState{
		SessionID: in.SessionID,
		Text:      in.Text,
		StartedAt: nowFn().UTC(),
	}, nil
}
