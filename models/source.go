package models

import "time"

// Source is a content origin videos are discovered from, e.g. a YouTube
// channel.
type Source struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ChannelID string    `json:"channel_id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
