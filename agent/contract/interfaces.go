package contract

import (
	"context"

	statex "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/state"
)

type CatalogGateway interface {
	FetchCatalog(ctx context.Context) ([]statex.MenuItem, error)
}

type ConversationGateway interface {
	SendUtterance(ctx context.Context, text string) (ChatReply, error)
}

type RecommendationGateway interface {
	Recommend(ctx context.Context, text string) ([]statex.MenuItem, error)
}

// Observer receives a snapshot after every intent that changed the session.
type Observer interface {
	OnSnapshot(ctx context.Context, snap statex.Snapshot)
}

type ObserverFunc func(ctx context.Context, snap statex.Snapshot)

func (f ObserverFunc) OnSnapshot(ctx context.Context, snap statex.Snapshot) {
	f(ctx, snap)
}

// OrderSink receives each finalized order.
type OrderSink interface {
	Place(ctx context.Context, receipt statex.Receipt) error
}
