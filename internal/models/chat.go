package models

// MessageTypeText is currently the only supported message type.
const MessageTypeText = "text"

// Message is an immutable chat message.
type Message struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Sender string `json:"sender"`
	// Timestamp is Unix milliseconds, the original wire format.
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`
}

// Chat is a two-party conversation with an append-only message sequence.
// LastMessage is a denormalized copy of the most recently appended message,
// kept for list display.
type Chat struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	Messages     []Message `json:"messages"`
	LastMessage  *Message  `json:"lastMessage,omitempty"`
}
