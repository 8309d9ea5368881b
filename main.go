package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/agents/orderbot"
	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/gateway"
	"github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/llm"
	"github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/receipt"
	configx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/pkg/config"
	_ "github.com/tanpawarit/Chative-Food-Ordering-Assistant/pkg/logger/autoload"
)

const (
	backendHTTP = "http"
	backendLLM  = "llm"
)

type AppConfig struct {
	ConversationBackend string `envconfig:"CONVERSATION_BACKEND" split_words:"true" default:"http"`
}

func (c AppConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.ConversationBackend)) {
	case backendHTTP, backendLLM:
		return nil
	default:
		return fmt.Errorf("%w: unknown conversation backend %q", contractx.ErrValidation, c.ConversationBackend)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("orderbot stopped")
	}
}

func run(ctx context.Context) error {
	appCfg := configx.MustNew[AppConfig]("ORDERBOT")
	gatewayCfg := configx.MustNew[gateway.Config]("ORDERBOT")
	botCfg := configx.MustNew[orderbot.Config]("ORDERBOT")

	client, err := gateway.NewClient(*gatewayCfg)
	if err != nil {
		return err
	}

	var conversation contractx.ConversationGateway = client
	if strings.EqualFold(strings.TrimSpace(appCfg.ConversationBackend), backendLLM) {
		llmCfg, err := configx.New[llm.Config]("OPENROUTER")
		if err != nil {
			return err
		}
		conversation, err = llm.NewConversationGateway(*llmCfg)
		if err != nil {
			return err
		}
		log.Info().Str("model", llmCfg.Model).Msg("using llm conversation backend")
	}

	opts := []orderbot.Option{}
	var history receiptLister
	receiptsCfg := configx.MustNew[receipt.Config]("RECEIPTS")
	if receiptsCfg.Enabled() {
		archive, err := receipt.Open(*receiptsCfg)
		if err != nil {
			return err
		}
		defer archive.Close()
		if err := archive.Migrate(ctx); err != nil {
			return err
		}
		opts = append(opts, orderbot.WithOrderSink(archive))
		history = archive
	}

	machine, err := orderbot.New(client, conversation, client, *botCfg, opts...)
	if err != nil {
		return err
	}

	term := newTerminal(os.Stdin, os.Stdout, machine, botCfg.Currency, history)
	return term.Run(ctx)
}
