package roundtripnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/state"
)

func Recommend(
	ctx context.Context,
	in *GraphState,
	gw contractx.RecommendationGateway,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	items, err := gw.Recommend(ctx, in.Text)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []statex.MenuItem{}
	}

	in.Recommendations = items
	return in, nil
}
