package scripts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// FetchMetadata asks yt-dlp for the remote video's metadata.
func (r *ScriptRunner) FetchMetadata(ctx context.Context, externalID string) (*MetadataResult, error) {
	const op = "ScriptRunner.FetchMetadata"

	output, err := r.RunScript(ctx, "metadata.py", map[string]string{"id": externalID}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "metadata fetch failed")
	}

	var result MetadataResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, newScriptError(op, err, "failed to parse metadata output")
	}
	if result.Error != "" {
		return nil, newScriptError(op, nil, result.Error)
	}
	return &result, nil
}

// DownloadAudio downloads the audio track into the configured audio
// directory and returns the local file path. The caller owns the file and is
// responsible for removing it.
func (r *ScriptRunner) DownloadAudio(ctx context.Context, url string) (string, error) {
	const op = "ScriptRunner.DownloadAudio"

	output, err := r.RunScript(ctx, "download.py", map[string]string{
		"url":    url,
		"outdir": r.config.AudioDir,
	}, nil)
	if err != nil {
		return "", errors.Wrap(err, "audio download failed")
	}

	var result DownloadResult
	if err := json.Unmarshal(output, &result); err != nil {
		return "", newScriptError(op, err, "failed to parse download output")
	}
	if result.Error != "" {
		return "", newScriptError(op, nil, result.Error)
	}
	if result.FilePath == "" {
		return "", newScriptError(op, nil, "download script returned no file path")
	}
	return result.FilePath, nil
}

// Transcribe runs Whisper over a local audio file.
func (r *ScriptRunner) Transcribe(ctx context.Context, audioPath string) (*TranscribeResult, error) {
	const op = "ScriptRunner.Transcribe"

	output, err := r.RunScript(ctx, "transcribe.py", map[string]string{
		"file":  audioPath,
		"model": r.config.GetDefaultModel(),
	}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "transcription failed")
	}

	var result TranscribeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, newScriptError(op, err, "failed to parse transcription output")
	}
	if result.Error != "" {
		return nil, newScriptError(op, nil, result.Error)
	}
	if result.Text == "" {
		return nil, newScriptError(op, nil, fmt.Sprintf("empty transcription for %s", audioPath))
	}
	return &result, nil
}
