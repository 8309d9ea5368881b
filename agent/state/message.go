package state

import "time"

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one transcript entry. Messages are never edited after append.
type Message struct {
	Text        string    `json:"text"`
	Sender      Sender    `json:"sender"`
	DisplayName string    `json:"display_name"`
	SentAt      time.Time `json:"sent_at"`
}

func (m Message) FromBot() bool {
	return m.Sender == SenderBot
}
