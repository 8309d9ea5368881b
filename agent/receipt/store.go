// Package receipt archives finalized orders in PostgreSQL.
package receipt

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/state"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const defaultListLimit = 20

type Config struct {
	DSN     string        `envconfig:"DSN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

// Enabled reports whether a database is configured. Without one, finalized
// orders are not archived.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.DSN) != ""
}

// Validate accepts a disabled config.
func (c Config) Validate() error {
	if c.Enabled() && c.Timeout <= 0 {
		return fmt.Errorf("%w: receipts timeout must be positive", contractx.ErrValidation)
	}
	return nil
}

type Option func(*Store)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store writes receipts to the order_receipts table. It implements the order
// sink used by the session state machine.
type Store struct {
	db      *bun.DB
	timeout time.Duration
	logger  zerolog.Logger
}

var _ contractx.OrderSink = (*Store)(nil)

// Open connects to PostgreSQL. The connection is lazy; call Migrate to verify
// it and create the table.
func Open(cfg Config, opts ...Option) (*Store, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: receipts dsn is required", contractx.ErrValidation)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(strings.TrimSpace(cfg.DSN)),
		pgdriver.WithTimeout(cfg.Timeout),
	))
	return newStore(bun.NewDB(sqldb, pgdialect.New()), cfg.Timeout, opts...), nil
}

func newStore(db *bun.DB, timeout time.Duration, opts ...Option) *Store {
	s := &Store{
		db:      db,
		timeout: timeout,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.NewCreateTable().
		Model((*receiptRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create order_receipts: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*receiptRow)(nil)).
		Index("order_receipts_session_id_idx").
		Column("session_id").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create order_receipts index: %w", err)
	}
	return nil
}

// Place stores receipt. Placing the same receipt twice is a no-op.
func (s *Store) Place(ctx context.Context, receipt statex.Receipt) error {
	row, err := toRow(receipt)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx); err != nil {
		return fmt.Errorf("insert receipt %s: %w", receipt.ID, err)
	}

	s.logger.Debug().
		Str("receipt_id", receipt.ID).
		Str("session_id", receipt.SessionID).
		Msg("receipt archived")
	return nil
}

// ListBySession returns the newest receipts of a session first.
func (s *Store) ListBySession(ctx context.Context, sessionID string, limit int) ([]statex.Receipt, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", contractx.ErrValidation)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []receiptRow
	if err := s.db.NewSelect().
		Model(&rows).
		Where("session_id = ?", sessionID).
		OrderExpr("placed_at DESC").
		Limit(limit).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}

	out := make([]statex.Receipt, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toReceipt())
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type receiptRow struct {
	bun.BaseModel `bun:"table:order_receipts,alias:r"`

	ID        string          `bun:"id,pk"`
	SessionID string          `bun:"session_id,notnull"`
	Items     []receiptItem   `bun:"items,type:jsonb,notnull"`
	Total     decimal.Decimal `bun:"total,type:numeric(12,2),notnull"`
	Summary   string          `bun:"summary,notnull"`
	PlacedAt  time.Time       `bun:"placed_at,notnull"`
}

type receiptItem struct {
	LineID   string          `json:"line_id"`
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	Category string          `json:"category,omitempty"`
	Price    decimal.Decimal `json:"price"`
}

func toRow(receipt statex.Receipt) (*receiptRow, error) {
	if strings.TrimSpace(receipt.ID) == "" {
		return nil, fmt.Errorf("%w: receipt id is required", contractx.ErrValidation)
	}
	if len(receipt.Lines) == 0 {
		return nil, fmt.Errorf("%w: receipt %s has no lines", contractx.ErrValidation, receipt.ID)
	}

	items := make([]receiptItem, 0, len(receipt.Lines))
	for _, line := range receipt.Lines {
		items = append(items, receiptItem{
			LineID:   line.LineID,
			ItemID:   string(line.ID),
			Name:     line.Name,
			Category: line.Category,
			Price:    line.Price,
		})
	}

	return &receiptRow{
		ID:        receipt.ID,
		SessionID: receipt.SessionID,
		Items:     items,
		Total:     receipt.Total,
		Summary:   receipt.Summary,
		PlacedAt:  receipt.PlacedAt.UTC(),
	}, nil
}

func (r receiptRow) toReceipt() statex.Receipt {
	lines := make([]statex.CartLine, 0, len(r.Items))
	for _, it := range r.Items {
		lines = append(lines, statex.CartLine{
			LineID: it.LineID,
			MenuItem: statex.MenuItem{
				ID:       statex.ItemID(it.ItemID),
				Name:     it.Name,
				Category: it.Category,
				Price:    it.Price,
			},
		})
	}
	return statex.Receipt{
		ID:        r.ID,
		SessionID: r.SessionID,
		Lines:     lines,
		Total:     r.Total,
		Summary:   r.Summary,
		PlacedAt:  r.PlacedAt,
	}
}
