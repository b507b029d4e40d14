package models

import "time"

type Transcription struct {
	ID         string     `json:"id"`
	VideoID    string     `json:"video_id"`
	Text       string     `json:"text"`
	Language   string     `json:"language"`
	Model      string     `json:"model"`
	Duration   float64    `json:"duration"` // audio duration in seconds
	Segments   []Segment  `json:"segments,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Segment is one timestamped slice of the transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
