package orderbot

import (
	"fmt"
	"strings"
	"time"

	statex "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/state"
)

const (
	DefaultBotName          = "OrderBot"
	DefaultUserName         = "You"
	DefaultCurrency         = "₹"
	DefaultDeliveryEstimate = 30 * time.Minute
	DefaultErrorMessage     = "Sorry, there was an error processing your request."
)

const DefaultWelcomeMessage = `👋 *Welcome to the Food Ordering Chatbot!*

🍽 How can I assist you today? You can ask me to order food, browse the menu, or get recommendations. Here are some examples of what you can do:

- "Show me the menu"
- "I want to order chicken biryani"
- "What do you recommend for dessert?"

Type your request below, and I'll help you with your order! 😊`

// Config holds the assistant's fixed copy. Zero values fall back to the
// Default* constants.
type Config struct {
	BotName          string        `envconfig:"BOT_NAME" split_words:"true"`
	UserName         string        `envconfig:"USER_NAME" split_words:"true"`
	WelcomeMessage   string        `envconfig:"WELCOME_MESSAGE" split_words:"true"`
	ErrorMessage     string        `envconfig:"ERROR_MESSAGE" split_words:"true"`
	Currency         string        `envconfig:"CURRENCY" split_words:"true"`
	DeliveryEstimate time.Duration `envconfig:"DELIVERY_ESTIMATE" split_words:"true"`
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.BotName) == "" {
		c.BotName = DefaultBotName
	}
	if strings.TrimSpace(c.UserName) == "" {
		c.UserName = DefaultUserName
	}
	if strings.TrimSpace(c.WelcomeMessage) == "" {
		c.WelcomeMessage = DefaultWelcomeMessage
	}
	if strings.TrimSpace(c.ErrorMessage) == "" {
		c.ErrorMessage = DefaultErrorMessage
	}
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.DeliveryEstimate == 0 {
		c.DeliveryEstimate = DefaultDeliveryEstimate
	}
	return c
}

func (c Config) botMessage(text string, now time.Time) statex.Message {
	return statex.Message{Text: text, Sender: statex.SenderBot, DisplayName: c.BotName, SentAt: now}
}

func (c Config) userMessage(text string, now time.Time) statex.Message {
	return statex.Message{Text: text, Sender: statex.SenderUser, DisplayName: c.UserName, SentAt: now}
}

// orderSummary renders the confirmation line, e.g.
// "Your order of Biryani, Lassi has been confirmed! Total: ₹310.00. It will arrive in approximately 30 minutes."
func (c Config) orderSummary(receipt statex.Receipt) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your order of %s has been confirmed! Total: %s%s.",
		statex.LineNames(receipt.Lines), c.Currency, receipt.Total.StringFixed(2))

	if minutes := int(c.DeliveryEstimate.Round(time.Minute) / time.Minute); minutes > 0 {
		unit := "minutes"
		if minutes == 1 {
			unit = "minute"
		}
		fmt.Fprintf(&sb, " It will arrive in approximately %d %s.", minutes, unit)
	}
	return sb.String()
}
