package roundtripnode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
)

func FinishRoundTrip(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	return GraphOutput{
		Reply:           in.Reply,
		Recommendations: in.Recommendations,
	}, nil
}
