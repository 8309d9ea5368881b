package roundtripnode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
)

func Converse(
	ctx context.Context,
	in *GraphState,
	gw contractx.ConversationGateway,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply, err := gw.SendUtterance(ctx, in.Text)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(reply.Response) == "" {
		return nil, contractx.NewGatewayError(contractx.GatewayConversation, 0, ErrEmptyReply)
	}

	in.Reply = reply.Response
	return in, nil
}
