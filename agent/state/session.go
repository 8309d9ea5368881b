package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session is the single-writer aggregate behind one ordering conversation.
// - Chat: Transcript + Pending (one round-trip at a time)
// - Ordering: Recommendations -> Cart -> Phase (two-step confirmation)
// Only the state machine holds a *Session; readers get a Snapshot.
type Session struct {
	ID string `json:"id"`

	Transcript      []Message  `json:"transcript"`
	Catalog         []MenuItem `json:"catalog,omitempty"`
	Recommendations []MenuItem `json:"recommendations,omitempty"`

	Cart    Cart  `json:"cart"`
	Phase   Phase `json:"phase"`
	Pending bool  `json:"pending"`

	// Version grows by one on every mutation so readers can order snapshots.
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
)

// Receipt is what FinalizeOrder hands to the order sink: the cart as it was at
// the moment of confirmation.
type Receipt struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Lines     []CartLine      `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	Summary   string          `json:"summary"`
	PlacedAt  time.Time       `json:"placed_at"`
}

var (
	ErrInvalidTransition = errors.New("invalid phase transition")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrCartLocked        = errors.New("cart is locked while awaiting confirmation")
	ErrRoundTripPending  = errors.New("a round-trip is already in flight")
	ErrNoRoundTrip       = errors.New("no round-trip in flight")
	ErrEmptyMessage      = errors.New("message text is empty")
	ErrNegativePrice     = errors.New("menu item price is negative")
	ErrInvalidCart       = errors.New("cart total does not match its lines")
)

func NewSession(now time.Time) *Session {
	return &Session{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Phase:     PhaseIdle,
		UpdatedAt: now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.Version++
	s.UpdatedAt = now.UTC()
}

/* ------------------------------ Transcript ------------------------------ */

// AppendMessage adds msg to the end of the transcript. Blank text is refused.
func (s *Session) AppendMessage(msg Message) error {
	if strings.TrimSpace(msg.Text) == "" {
		return ErrEmptyMessage
	}
	msg.SentAt = msg.SentAt.UTC()
	s.Transcript = append(s.Transcript, msg)
	s.Touch(msg.SentAt)
	return nil
}

func (s *Session) LastMessage() (Message, bool) {
	if len(s.Transcript) == 0 {
		return Message{}, false
	}
	return s.Transcript[len(s.Transcript)-1], true
}

/* ------------------------------- Round-trip ----------------------------- */

// BeginRoundTrip marks a conversation round-trip as in flight.
func (s *Session) BeginRoundTrip(now time.Time) error {
	if s.Pending {
		return ErrRoundTripPending
	}
	s.Pending = true
	s.Touch(now)
	return nil
}

// EndRoundTrip releases the in-flight mark. It must run on every exit path of a
// round-trip.
func (s *Session) EndRoundTrip(now time.Time) error {
	if !s.Pending {
		return ErrNoRoundTrip
	}
	s.Pending = false
	s.Touch(now)
	return nil
}

/* ------------------------------ Menu data ------------------------------- */

func (s *Session) SetCatalog(items []MenuItem, now time.Time) {
	s.Catalog = cloneItems(items)
	s.Touch(now)
}

// ReplaceRecommendations swaps the whole recommendation set; results are never
// merged with the previous set.
func (s *Session) ReplaceRecommendations(items []MenuItem, now time.Time) {
	s.Recommendations = cloneItems(items)
	if s.Recommendations == nil {
		s.Recommendations = []MenuItem{}
	}
	s.Touch(now)
}

/* --------------------------------- Cart --------------------------------- */

func (s *Session) AddToCart(item MenuItem, now time.Time) (CartLine, error) {
	if s.Phase != PhaseIdle {
		return CartLine{}, fmt.Errorf("%w: phase=%s", ErrCartLocked, s.Phase)
	}
	if item.Price.IsNegative() {
		return CartLine{}, fmt.Errorf("%w: item=%s price=%s", ErrNegativePrice, item.ID, item.Price)
	}
	line := s.Cart.Add(item)
	s.Touch(now)
	return line, nil
}

/* ------------------------------ Confirmation ---------------------------- */

// RequestConfirmation performs Idle -> AwaitingConfirmation on a non-empty cart.
func (s *Session) RequestConfirmation(now time.Time) error {
	if s.Phase != PhaseIdle {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Phase, PhaseAwaitingConfirmation)
	}
	if s.Cart.IsEmpty() {
		return ErrEmptyCart
	}
	s.Phase = PhaseAwaitingConfirmation
	s.Touch(now)
	return nil
}

// CancelConfirmation performs AwaitingConfirmation -> Idle and keeps the cart.
func (s *Session) CancelConfirmation(now time.Time) error {
	if s.Phase != PhaseAwaitingConfirmation {
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, s.Phase)
	}
	s.Phase = PhaseIdle
	s.Touch(now)
	return nil
}

// Finalize performs AwaitingConfirmation -> Idle, clearing the cart. The
// returned receipt holds the lines and total as they were before the clear;
// its Summary is left for the caller to fill.
func (s *Session) Finalize(now time.Time) (Receipt, error) {
	if s.Phase != PhaseAwaitingConfirmation {
		return Receipt{}, fmt.Errorf("%w: finalize from %s", ErrInvalidTransition, s.Phase)
	}
	placed := s.Cart.clone()
	receipt := Receipt{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: s.ID,
		Lines:     placed.Lines,
		Total:     placed.Total,
		PlacedAt:  now.UTC(),
	}
	s.Cart.Clear()
	s.Phase = PhaseIdle
	s.Touch(now)
	return receipt, nil
}

func (s *Session) Validate() error {
	switch s.Phase {
	case PhaseIdle:
	case PhaseAwaitingConfirmation:
		if s.Cart.IsEmpty() {
			return fmt.Errorf("%w: awaiting confirmation with empty cart", ErrInvalidTransition)
		}
	default:
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidTransition, s.Phase)
	}
	return s.Cart.Validate()
}

/* -------------------------------- Snapshot ------------------------------ */

// Snapshot returns a deep copy that shares no slices with the session.
func (s *Session) Snapshot() Snapshot {
	transcript := make([]Message, len(s.Transcript))
	copy(transcript, s.Transcript)

	return Snapshot{
		SessionID:       s.ID,
		Transcript:      transcript,
		Catalog:         cloneItems(s.Catalog),
		Recommendations: cloneItems(s.Recommendations),
		Cart:            s.Cart.clone(),
		Phase:           s.Phase,
		Pending:         s.Pending,
		Version:         s.Version,
		TakenAt:         s.UpdatedAt,
	}
}
