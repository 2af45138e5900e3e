package chat

import "time"

// Source identifies which export format produced a message.
type Source string

const (
	SourceWhatsApp Source = "whatsapp"
	SourceTelegram Source = "telegram"
)

// Message is one normalized chat event. Parsers create it once and nothing
// mutates it afterwards.
type Message struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"date"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Source    Source    `json:"source"`
}
