package scripts

import (
	"time"
)

// Config holds the configuration for the ScriptRunner
type Config struct {
	PythonPath  string        // Path to Python executable
	ScriptsPath string        // Path to Python scripts directory
	Timeout     time.Duration // Script execution timeout
	AudioDir    string        // Directory downloaded audio files land in
	Environment []string      // Additional environment variables
	Model       string        // Default Whisper model to use
}

// GetDefaultModel returns the default model from the configuration or a fallback value.
func (cfg *Config) GetDefaultModel() string {
	if cfg.Model != "" {
		return cfg.Model
	}
	return "base.en"
}

// MetadataResult is the output of the metadata script (yt-dlp --dump-json).
type MetadataResult struct {
	ExternalID string  `json:"external_id"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`        // seconds
	URL        string  `json:"url"`
	Error      string  `json:"error,omitempty"`
}

// DownloadResult is the output of the audio download script.
type DownloadResult struct {
	FilePath string `json:"file_path"`
	Error    string `json:"error,omitempty"`
}

// TranscribeResult is the transcription output of the Whisper script.
type TranscribeResult struct {
	Text                string    `json:"text"`
	ModelName           string    `json:"model_name"`
	Duration            float64   `json:"duration"` // audio duration in seconds
	Language            string    `json:"language,omitempty"`
	LanguageProbability *float64  `json:"language_probability,omitempty"`
	Segments            []Segment `json:"segments,omitempty"`
	Error               string    `json:"error,omitempty"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
