// Package llm answers user utterances with an OpenAI-compatible chat model
// instead of the menu service's /api/chat endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/prompt"
	openrouterx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/pkg/openrouter"
)

var errEmptyCompletion = errors.New("completion has no content")

type Option func(*ConversationGateway)

func WithLogger(logger zerolog.Logger) Option {
	return func(g *ConversationGateway) {
		g.logger = logger
	}
}

// ConversationGateway sends each utterance as a single-turn chat completion
// under the assistant system prompt.
type ConversationGateway struct {
	client       *openaisdk.Client
	model        string
	temperature  float32
	maxTokens    int
	systemPrompt string
	logger       zerolog.Logger
}

var _ contractx.ConversationGateway = (*ConversationGateway)(nil)

func NewConversationGateway(cfg Config, opts ...Option) (*ConversationGateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	orCfg := cfg.OpenRouter()
	client := openrouterx.NewClient(orCfg)
	if client == nil {
		return nil, fmt.Errorf("%w: failed to initialize openrouter client", contractx.ErrValidation)
	}

	systemPrompt := strings.TrimSpace(cfg.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = prompt.LoadPromptSet().Assistant
	}

	g := &ConversationGateway{
		client:       client,
		model:        orCfg.Model,
		temperature:  orCfg.Temperature,
		maxTokens:    orCfg.MaxCompletionToken,
		systemPrompt: systemPrompt,
		logger:       log.Logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

func (g *ConversationGateway) SendUtterance(ctx context.Context, text string) (contractx.ChatReply, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(g.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(g.systemPrompt),
			openaisdk.UserMessage(text),
		},
		Temperature: openaisdk.Float(float64(g.temperature)),
	}
	if g.maxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(int64(g.maxTokens))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params, openrouterx.RequestOptions(g.model)...)
	if err != nil {
		status := 0
		var apiErr *openaisdk.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		g.logger.Warn().Err(err).Str("model", g.model).Int("status", status).Msg("chat completion failed")
		return contractx.ChatReply{}, contractx.NewGatewayError(contractx.GatewayConversation, status, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return contractx.ChatReply{}, contractx.NewGatewayError(contractx.GatewayConversation, 0, errEmptyCompletion)
	}

	g.logger.Debug().
		Str("model", g.model).
		Int64("total_tokens", resp.Usage.TotalTokens).
		Msg("chat completion received")
	return contractx.ChatReply{Response: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}
