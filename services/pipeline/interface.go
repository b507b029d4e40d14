package pipeline

import (
	"context"
	"time"

	"tubebrief/models"
	"tubebrief/scripts"
	"tubebrief/summarizer"
)

type Service interface {
	// Process runs one pipeline attempt for the video. Stage failures are
	// reported through the returned video's status and metadata, not as an
	// error; only precondition violations (missing video, non-processable
	// status) surface as errors.
	Process(ctx context.Context, videoID string) (*models.Video, error)

	// Retry resets a failed video to pending and runs the process path.
	Retry(ctx context.Context, videoID string) (*models.Video, error)

	// Get retrieves a video by ID.
	Get(ctx context.Context, videoID string) (*models.Video, error)
}

type Config struct {
	// MaxDuration is the duration-guard threshold. Videos longer than this
	// are skipped before any stage adapter is invoked.
	MaxDuration time.Duration `json:"max_duration"`

	// ProcessTimeout is the maximum time allowed for a single pipeline run.
	ProcessTimeout time.Duration `json:"process_timeout"`
}

// Downloader fetches remote metadata and the audio payload.
type Downloader interface {
	FetchMetadata(ctx context.Context, externalID string) (*scripts.MetadataResult, error)
	DownloadAudio(ctx context.Context, url string) (string, error)
}

// Transcriber converts a local audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*scripts.TranscribeResult, error)
}

// Summarizer produces a structured summary of a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (*summarizer.Result, error)
}
