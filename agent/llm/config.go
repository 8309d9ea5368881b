package llm

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/pkg/openrouter"
)

// Config selects the model behind the conversation backend. It is read with
// the OPENROUTER prefix.
type Config struct {
	openrouterx.Config

	// SystemPrompt overrides the embedded assistant prompt when set.
	SystemPrompt string `envconfig:"SYSTEM_PROMPT" split_words:"true"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: model is required", contractx.ErrValidation)
	}
	if c.MaxCompletionToken < 0 {
		return fmt.Errorf("%w: max completion token must not be negative", contractx.ErrValidation)
	}
	return nil
}

// OpenRouter returns the client config with string fields trimmed.
func (c Config) OpenRouter() openrouterx.Config {
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              strings.TrimSpace(c.Model),
		MaxCompletionToken: c.MaxCompletionToken,
		Temperature:        c.Temperature,
		Timeout:            c.Timeout,
		MaxRetries:         c.MaxRetries,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
