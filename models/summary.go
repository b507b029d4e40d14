package models

import "time"

type Summary struct {
	ID              string            `json:"id"`
	TranscriptionID string            `json:"transcription_id"`
	Title           string            `json:"title"`
	SummaryText     string            `json:"summary_text"`
	KeyPoints       []string          `json:"key_points,omitempty"`
	Topics          []string          `json:"topics,omitempty"`
	Category        string            `json:"category,omitempty"`
	Model           string            `json:"model"`
	InputTokens     int               `json:"input_tokens"`
	OutputTokens    int               `json:"output_tokens"`
	TotalTokens     int               `json:"total_tokens"`
	ProcessingMS    int64             `json:"processing_ms"`
	Delivered       bool              `json:"delivered"`
	DeliveredAt     *time.Time        `json:"delivered_at,omitempty"`
	Receipts        map[string]string `json:"receipts,omitempty"` // chat id -> message id
	CreatedAt       time.Time         `json:"created_at"`
}
