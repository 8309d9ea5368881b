package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
)

var errEmptyReply = errors.New("response field is empty")

// SendUtterance posts the user's text to the conversation endpoint.
func (c *Client) SendUtterance(ctx context.Context, text string) (contractx.ChatReply, error) {
	var reply contractx.ChatReply
	req := contractx.PromptRequest{Prompt: text}
	err := c.call(ctx, contractx.GatewayConversation, http.MethodPost, pathChat, req, func(raw []byte) error {
		var parsed struct {
			Response *string `json:"response"`
		}
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return fmt.Errorf("decode chat reply: %w", err)
		}
		if parsed.Response == nil || strings.TrimSpace(*parsed.Response) == "" {
			return errEmptyReply
		}
		reply.Response = *parsed.Response
		return nil
	})
	if err != nil {
		return contractx.ChatReply{}, err
	}
	return reply, nil
}
