package models

import (
	"time"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusDownloading  Status = "downloading"
	StatusDownloaded   Status = "downloaded"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusSummarizing  Status = "summarizing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusSkipped      Status = "skipped"
)

// Metadata keys written by the pipeline.
const (
	MetaSkipReason  = "skip_reason"
	MetaDuration    = "duration_seconds"
	MetaMaxDuration = "max_duration_seconds"
	MetaError       = "error"
	MetaFailedStage = "failed_stage"
)

const SkipReasonDurationExceeded = "duration_exceeded"

type Video struct {
	ID          string                 `json:"id"`
	SourceID    string                 `json:"source_id"`
	ExternalID  string                 `json:"external_id"`
	Title       string                 `json:"title"`
	URL         string                 `json:"url"`
	Duration    *int                   `json:"duration,omitempty"` // seconds, unknown until metadata fetch
	Status      Status                 `json:"status"`
	PublishedAt *time.Time             `json:"published_at,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	DeletedAt   *time.Time             `json:"-"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// Status check methods
func (v *Video) IsCompleted() bool { return v.Status == StatusCompleted }
func (v *Video) IsFailed() bool    { return v.Status == StatusFailed }
func (v *Video) IsSkipped() bool   { return v.Status == StatusSkipped }

// IsProcessable reports whether Process may pick this video up.
// Only fresh and failed videos are; anything else is either mid-pipeline
// or terminal.
func (v *Video) IsProcessable() bool {
	return v.Status == StatusPending || v.Status == StatusFailed
}

// IsTerminal reports whether the pipeline is done with this video.
func (v *Video) IsTerminal() bool {
	return v.Status == StatusCompleted || v.Status == StatusFailed || v.Status == StatusSkipped
}

func (v *Video) SetMeta(key string, value interface{}) {
	if v.Metadata == nil {
		v.Metadata = make(map[string]interface{})
	}
	v.Metadata[key] = value
}

func (v *Video) ClearMeta(keys ...string) {
	for _, key := range keys {
		delete(v.Metadata, key)
	}
}
