// Package orderbot is the session state machine for one food-ordering chat.
// It owns the transcript, recommendations, cart and confirmation phase, runs
// the conversation/recommendation round-trip, and publishes snapshots to
// observers after every change.
package orderbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
	nodex "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/nodes"
	statex "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/state"
)

var errRoundTripAborted = errors.New("round-trip aborted")

// Option customizes Machine.
type Option func(*Machine)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithOrderSink sets where finalized receipts go. Without it receipts are
// dropped after the summary message is written.
func WithOrderSink(sink contractx.OrderSink) Option {
	return func(m *Machine) {
		if sink != nil {
			m.sink = sink
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

type Machine struct {
	catalog      contractx.CatalogGateway
	conversation contractx.ConversationGateway
	recommender  contractx.RecommendationGateway
	sink         contractx.OrderSink

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	mu      sync.Mutex
	session *statex.Session

	observersMu    sync.RWMutex
	observers      []observerEntry
	nextObserverID uint64

	cfg    Config
	logger zerolog.Logger
	now    func() time.Time
}

func New(
	catalog contractx.CatalogGateway,
	conversation contractx.ConversationGateway,
	recommender contractx.RecommendationGateway,
	cfg Config,
	opts ...Option,
) (*Machine, error) {
	if catalog == nil {
		return nil, errors.New("catalog gateway is required")
	}
	if conversation == nil {
		return nil, errors.New("conversation gateway is required")
	}
	if recommender == nil {
		return nil, errors.New("recommendation gateway is required")
	}

	m := &Machine{
		catalog:      catalog,
		conversation: conversation,
		recommender:  recommender,
		sink:         noopOrderSink{},
		cfg:          cfg.withDefaults(),
		logger:       log.Logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	m.session = statex.NewSession(m.now())
	m.logger = m.logger.With().Str("session_id", m.session.ID).Logger()

	graphRunner, err := m.compileRoundTripGraph(context.Background())
	if err != nil {
		return nil, err
	}
	m.graphRunner = graphRunner

	return m, nil
}

func (m *Machine) SessionID() string {
	return m.session.ID
}

// Snapshot returns the current session state as an independent copy.
func (m *Machine) Snapshot() statex.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Snapshot()
}

/* --------------------------------- Intents -------------------------------- */

// Initialize seeds the welcome message and loads the catalog in the
// background. The returned channel closes once the catalog fetch has finished,
// whether or not it succeeded. Calling it again retries the fetch without
// repeating the welcome.
func (m *Machine) Initialize(ctx context.Context) <-chan struct{} {
	m.mu.Lock()
	seeded := false
	if len(m.session.Transcript) == 0 {
		seeded = m.session.AppendMessage(m.cfg.botMessage(m.cfg.WelcomeMessage, m.now())) == nil
	}
	m.mu.Unlock()
	if seeded {
		m.notify(ctx)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.LoadCatalog(ctx)
	}()
	return done
}

// LoadCatalog fetches the full menu. On failure the previous catalog stays.
func (m *Machine) LoadCatalog(ctx context.Context) error {
	items, err := m.catalog.FetchCatalog(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("menu unavailable, keeping previous catalog")
		return err
	}

	m.mu.Lock()
	m.session.SetCatalog(items, m.now())
	m.mu.Unlock()

	m.logger.Debug().Int("items", len(items)).Msg("catalog loaded")
	m.notify(ctx)
	return nil
}

// SendMessage runs one conversation round-trip for text. It blocks until both
// gateway calls have finished. Blank text, or text sent while another
// round-trip is pending, is ignored and false is returned.
func (m *Machine) SendMessage(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		m.ignored("send_message", statex.ErrEmptyMessage)
		return false
	}

	m.mu.Lock()
	now := m.now()
	if err := m.session.BeginRoundTrip(now); err != nil {
		m.mu.Unlock()
		m.ignored("send_message", err)
		return false
	}
	_ = m.session.AppendMessage(m.cfg.userMessage(text, now))
	m.mu.Unlock()
	m.notify(ctx)

	out, err := nodex.GraphOutput{}, errRoundTripAborted
	defer func() {
		m.completeRoundTrip(ctx, out, err)
	}()

	out, err = m.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: m.session.ID,
		Text:      text,
	})
	return true
}

// completeRoundTrip merges the round-trip result and always clears Pending.
func (m *Machine) completeRoundTrip(ctx context.Context, out nodex.GraphOutput, err error) {
	m.mu.Lock()
	now := m.now()
	if err != nil {
		m.logger.Warn().Err(err).Msg("round-trip failed")
		_ = m.session.AppendMessage(m.cfg.botMessage(m.cfg.ErrorMessage, now))
	} else {
		m.session.ReplaceRecommendations(out.Recommendations, now)
		m.logger.Debug().
			Int("reply_len", len(out.Reply)).
			Int("recommendations", len(out.Recommendations)).
			Msg("round-trip complete")
	}
	_ = m.session.EndRoundTrip(now)
	m.mu.Unlock()

	m.notify(ctx)
}

func (m *Machine) appendBotReply(ctx context.Context, reply string) error {
	m.mu.Lock()
	err := m.session.AppendMessage(m.cfg.botMessage(reply, m.now()))
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("append bot reply: %w", err)
	}

	m.notify(ctx)
	return nil
}

// AddToOrder appends item to the cart. Ignored while awaiting confirmation.
func (m *Machine) AddToOrder(item statex.MenuItem) bool {
	m.mu.Lock()
	line, err := m.session.AddToCart(item, m.now())
	total := m.session.Cart.Total
	m.mu.Unlock()
	if err != nil {
		m.ignored("add_to_order", err)
		return false
	}

	m.logger.Debug().
		Str("item_id", string(line.ID)).
		Str("line_id", line.LineID).
		Str("total", total.String()).
		Msg("item added")
	m.notify(context.Background())
	return true
}

// RequestConfirmation moves a non-empty cart into the confirmation step.
func (m *Machine) RequestConfirmation() bool {
	return m.transition("request_confirmation", m.session.RequestConfirmation)
}

// CancelConfirmation leaves the confirmation step and keeps the cart.
func (m *Machine) CancelConfirmation() bool {
	return m.transition("cancel_confirmation", m.session.CancelConfirmation)
}

func (m *Machine) transition(intent string, apply func(now time.Time) error) bool {
	m.mu.Lock()
	err := apply(m.now())
	phase := m.session.Phase
	m.mu.Unlock()
	if err != nil {
		m.ignored(intent, err)
		return false
	}

	m.logger.Debug().Str("intent", intent).Str("phase", string(phase)).Msg("phase changed")
	m.notify(context.Background())
	return true
}

// FinalizeOrder confirms the order: a summary message is appended, the cart
// is cleared and the phase returns to idle. The receipt is then handed to the
// order sink; a sink failure is logged and does not undo the order.
func (m *Machine) FinalizeOrder(ctx context.Context) bool {
	m.mu.Lock()
	now := m.now()
	receipt, err := m.session.Finalize(now)
	if err != nil {
		m.mu.Unlock()
		m.ignored("finalize_order", err)
		return false
	}
	receipt.Summary = m.cfg.orderSummary(receipt)
	_ = m.session.AppendMessage(m.cfg.botMessage(receipt.Summary, now))
	m.mu.Unlock()

	m.logger.Info().
		Str("receipt_id", receipt.ID).
		Int("lines", len(receipt.Lines)).
		Str("total", receipt.Total.StringFixed(2)).
		Msg("order finalized")
	m.notify(ctx)

	if err := m.sink.Place(ctx, receipt); err != nil {
		m.logger.Error().Err(err).Str("receipt_id", receipt.ID).Msg("order sink rejected receipt")
	}
	return true
}

func (m *Machine) ignored(intent string, cause error) {
	m.logger.Debug().
		Err(fmt.Errorf("%w: %v", contractx.ErrInvalidIntent, cause)).
		Str("intent", intent).
		Msg("intent ignored")
}

type noopOrderSink struct{}

func (noopOrderSink) Place(context.Context, statex.Receipt) error {
	return nil
}
