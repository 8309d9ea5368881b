package roundtripnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
)

// PublishReply hands the assistant reply to the session before the
// recommendation call starts.
func PublishReply(
	ctx context.Context,
	in *GraphState,
	publish func(ctx context.Context, reply string) error,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if err := publish(ctx, in.Reply); err != nil {
		return nil, err
	}
	return in, nil
}
