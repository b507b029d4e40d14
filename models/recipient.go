package models

import "time"

// Recipient is a subscriber endpoint on the messaging channel. Blocked is set
// once a delivery attempt proves the chat is no longer reachable; blocked
// recipients are skipped by every subsequent distribution run.
type Recipient struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Name      string    `json:"name,omitempty"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"created_at"`
}
