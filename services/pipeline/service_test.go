package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tubebrief/errors"
	"tubebrief/models"
	"tubebrief/scripts"
	"tubebrief/summarizer"
)

// In-memory fakes for the repository contracts.

type fakeVideoRepo struct {
	videos        map[string]*models.Video
	statusHistory []models.Status
}

func newFakeVideoRepo(videos ...*models.Video) *fakeVideoRepo {
	repo := &fakeVideoRepo{videos: make(map[string]*models.Video)}
	for _, v := range videos {
		repo.videos[v.ID] = v
	}
	return repo
}

func (r *fakeVideoRepo) Create(ctx context.Context, v *models.Video) error {
	r.videos[v.ID] = v
	return nil
}

func (r *fakeVideoRepo) Find(ctx context.Context, id string) (*models.Video, error) {
	v, ok := r.videos[id]
	if !ok {
		return nil, errors.NotFound("fakeVideoRepo.Find", nil, "Video not found")
	}
	return v, nil
}

func (r *fakeVideoRepo) FindByExternalID(ctx context.Context, externalID string) (*models.Video, error) {
	for _, v := range r.videos {
		if v.ExternalID == externalID {
			return v, nil
		}
	}
	return nil, errors.NotFound("fakeVideoRepo.FindByExternalID", nil, "Video not found")
}

func (r *fakeVideoRepo) Update(ctx context.Context, v *models.Video) error {
	if _, ok := r.videos[v.ID]; !ok {
		return errors.NotFound("fakeVideoRepo.Update", nil, "Video not found")
	}
	r.videos[v.ID] = v
	r.statusHistory = append(r.statusHistory, v.Status)
	return nil
}

func (r *fakeVideoRepo) ClaimStatus(ctx context.Context, id string, expected []models.Status, next models.Status) (*models.Video, error) {
	v, ok := r.videos[id]
	if !ok {
		return nil, errors.NotFound("fakeVideoRepo.ClaimStatus", nil, "Video not found")
	}
	for _, s := range expected {
		if v.Status == s {
			v.Status = next
			r.statusHistory = append(r.statusHistory, next)
			return v, nil
		}
	}
	return nil, errors.InvalidState("fakeVideoRepo.ClaimStatus", nil,
		fmt.Sprintf("Video is in status %q and cannot be claimed", v.Status))
}

func (r *fakeVideoRepo) SoftDelete(ctx context.Context, id string) error {
	delete(r.videos, id)
	return nil
}

type fakeTranscriptionRepo struct {
	transcriptions map[string]*models.Transcription
}

func newFakeTranscriptionRepo() *fakeTranscriptionRepo {
	return &fakeTranscriptionRepo{transcriptions: make(map[string]*models.Transcription)}
}

func (r *fakeTranscriptionRepo) Create(ctx context.Context, t *models.Transcription) error {
	r.transcriptions[t.ID] = t
	return nil
}

func (r *fakeTranscriptionRepo) Find(ctx context.Context, id string) (*models.Transcription, error) {
	t, ok := r.transcriptions[id]
	if !ok {
		return nil, errors.NotFound("fakeTranscriptionRepo.Find", nil, "Transcription not found")
	}
	return t, nil
}

func (r *fakeTranscriptionRepo) FindByVideoID(ctx context.Context, videoID string) (*models.Transcription, error) {
	for _, t := range r.transcriptions {
		if t.VideoID == videoID {
			return t, nil
		}
	}
	return nil, errors.NotFound("fakeTranscriptionRepo.FindByVideoID", nil, "Transcription not found")
}

type fakeSummaryRepo struct {
	summaries map[string]*models.Summary
}

func newFakeSummaryRepo() *fakeSummaryRepo {
	return &fakeSummaryRepo{summaries: make(map[string]*models.Summary)}
}

func (r *fakeSummaryRepo) Create(ctx context.Context, s *models.Summary) error {
	r.summaries[s.ID] = s
	return nil
}

func (r *fakeSummaryRepo) Find(ctx context.Context, id string) (*models.Summary, error) {
	s, ok := r.summaries[id]
	if !ok {
		return nil, errors.NotFound("fakeSummaryRepo.Find", nil, "Summary not found")
	}
	return s, nil
}

func (r *fakeSummaryRepo) FindByTranscriptionID(ctx context.Context, id string) (*models.Summary, error) {
	for _, s := range r.summaries {
		if s.TranscriptionID == id {
			return s, nil
		}
	}
	return nil, errors.NotFound("fakeSummaryRepo.FindByTranscriptionID", nil, "Summary not found")
}

func (r *fakeSummaryRepo) MarkDelivered(ctx context.Context, id string, receipts map[string]string) error {
	s, ok := r.summaries[id]
	if !ok {
		return errors.NotFound("fakeSummaryRepo.MarkDelivered", nil, "Summary not found")
	}
	if s.Delivered {
		return errors.AlreadyDelivered("fakeSummaryRepo.MarkDelivered", nil, "Summary has already been delivered")
	}
	now := time.Now()
	s.Delivered = true
	s.DeliveredAt = &now
	s.Receipts = receipts
	return nil
}

// Fake stage adapters.

type fakeDownloader struct {
	metadataCalls int
	downloadCalls int
	metadataFn    func(ctx context.Context, externalID string) (*scripts.MetadataResult, error)
	downloadFn    func(ctx context.Context, url string) (string, error)
}

func (d *fakeDownloader) FetchMetadata(ctx context.Context, externalID string) (*scripts.MetadataResult, error) {
	d.metadataCalls++
	return d.metadataFn(ctx, externalID)
}

func (d *fakeDownloader) DownloadAudio(ctx context.Context, url string) (string, error) {
	d.downloadCalls++
	return d.downloadFn(ctx, url)
}

type fakeTranscriber struct {
	calls int
	fn    func(ctx context.Context, audioPath string) (*scripts.TranscribeResult, error)
}

func (t *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (*scripts.TranscribeResult, error) {
	t.calls++
	return t.fn(ctx, audioPath)
}

type fakeSummarizer struct {
	calls int
	fn    func(ctx context.Context, text string) (*summarizer.Result, error)
}

func (s *fakeSummarizer) Summarize(ctx context.Context, text string) (*summarizer.Result, error) {
	s.calls++
	return s.fn(ctx, text)
}

// Helpers.

func pendingVideo(duration *int) *models.Video {
	return &models.Video{
		ID:         "vid-1",
		SourceID:   "src-1",
		ExternalID: "dQw4w9WgXcQ",
		Title:      "Test video",
		URL:        "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Duration:   duration,
		Status:     models.StatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func intPtr(v int) *int { return &v }

func happyDownloader(t *testing.T, audioDir string) *fakeDownloader {
	t.Helper()
	return &fakeDownloader{
		metadataFn: func(ctx context.Context, externalID string) (*scripts.MetadataResult, error) {
			return &scripts.MetadataResult{
				ExternalID: externalID,
				Title:      "Fetched title",
				Duration:   300,
			}, nil
		},
		downloadFn: func(ctx context.Context, url string) (string, error) {
			path := filepath.Join(audioDir, "audio.m4a")
			if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
				t.Fatalf("failed to create audio file: %v", err)
			}
			return path, nil
		},
	}
}

func happyTranscriber() *fakeTranscriber {
	return &fakeTranscriber{
		fn: func(ctx context.Context, audioPath string) (*scripts.TranscribeResult, error) {
			return &scripts.TranscribeResult{
				Text:      "hello world",
				ModelName: "base.en",
				Duration:  300,
				Language:  "en",
			}, nil
		},
	}
}

func happySummarizer() *fakeSummarizer {
	return &fakeSummarizer{
		fn: func(ctx context.Context, text string) (*summarizer.Result, error) {
			return &summarizer.Result{
				Title:       "Summary title",
				Summary:     "A short summary.",
				KeyPoints:   []string{"point one"},
				Topics:      []string{"testing"},
				Category:    "technology",
				Model:       "gpt-4o-mini",
				TotalTokens: 42,
			}, nil
		},
	}
}

func newTestService(videos *fakeVideoRepo, downloader *fakeDownloader, transcriber *fakeTranscriber, summarizerFake *fakeSummarizer) (Service, *fakeTranscriptionRepo, *fakeSummaryRepo) {
	transcriptions := newFakeTranscriptionRepo()
	summaries := newFakeSummaryRepo()
	svc := NewService(videos, transcriptions, summaries, downloader, transcriber, summarizerFake, Config{
		MaxDuration: time.Hour,
	})
	return svc, transcriptions, summaries
}

// Tests.

func TestProcessSkipsOverlongVideo(t *testing.T) {
	videos := newFakeVideoRepo(pendingVideo(intPtr(7200)))
	downloader := &fakeDownloader{}
	transcriber := &fakeTranscriber{}
	sum := &fakeSummarizer{}
	svc, _, _ := newTestService(videos, downloader, transcriber, sum)

	got, err := svc.Process(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if got.Status != models.StatusSkipped {
		t.Errorf("expected status %q, got %q", models.StatusSkipped, got.Status)
	}
	if reason := got.Metadata[models.MetaSkipReason]; reason != models.SkipReasonDurationExceeded {
		t.Errorf("expected skip reason %q, got %v", models.SkipReasonDurationExceeded, reason)
	}
	if d := got.Metadata[models.MetaDuration]; d != 7200 {
		t.Errorf("expected recorded duration 7200, got %v", d)
	}
	if m := got.Metadata[models.MetaMaxDuration]; m != 3600 {
		t.Errorf("expected recorded max 3600, got %v", m)
	}
	if downloader.metadataCalls != 0 || downloader.downloadCalls != 0 || transcriber.calls != 0 || sum.calls != 0 {
		t.Error("no stage adapter should be invoked for a skipped video")
	}
}

func TestProcessRejectsNonProcessableStatus(t *testing.T) {
	video := pendingVideo(nil)
	video.Status = models.StatusDownloading
	videos := newFakeVideoRepo(video)
	downloader := &fakeDownloader{}
	svc, _, _ := newTestService(videos, downloader, &fakeTranscriber{}, &fakeSummarizer{})

	_, err := svc.Process(context.Background(), "vid-1")
	if !errors.IsInvalidState(err) {
		t.Fatalf("expected InvalidState error, got %v", err)
	}
	if !strings.Contains(err.Error(), "downloading") {
		t.Errorf("error should name the offending status, got %q", err.Error())
	}
	if video.Status != models.StatusDownloading {
		t.Errorf("status must not change, got %q", video.Status)
	}
	if downloader.metadataCalls != 0 {
		t.Error("no stage work should happen on rejection")
	}
}

func TestProcessNotFound(t *testing.T) {
	svc, _, _ := newTestService(newFakeVideoRepo(), &fakeDownloader{}, &fakeTranscriber{}, &fakeSummarizer{})

	_, err := svc.Process(context.Background(), "missing")
	if !errors.IsNotFound(err) {
		t.Fatalf("expected NotFound error, got %v", err)
	}
}

func TestProcessCompletesPipeline(t *testing.T) {
	audioDir := t.TempDir()
	videos := newFakeVideoRepo(pendingVideo(intPtr(300)))
	downloader := happyDownloader(t, audioDir)
	svc, transcriptions, summaries := newTestService(videos, downloader, happyTranscriber(), happySummarizer())

	got, err := svc.Process(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if got.Status != models.StatusCompleted {
		t.Fatalf("expected status %q, got %q (metadata: %v)", models.StatusCompleted, got.Status, got.Metadata)
	}

	transcription, err := transcriptions.FindByVideoID(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("expected a transcription: %v", err)
	}
	if transcription.Text != "hello world" {
		t.Errorf("unexpected transcription text %q", transcription.Text)
	}

	summary, err := summaries.FindByTranscriptionID(context.Background(), transcription.ID)
	if err != nil {
		t.Fatalf("expected a summary: %v", err)
	}
	if summary.Delivered {
		t.Error("a fresh summary must not be marked delivered")
	}

	if _, err := os.Stat(filepath.Join(audioDir, "audio.m4a")); !os.IsNotExist(err) {
		t.Error("audio file should be removed after the run")
	}

	// Statuses only ever move forward through the stage order.
	want := []models.Status{
		models.StatusDownloading,
		models.StatusDownloaded,
		models.StatusTranscribing,
		models.StatusTranscribed,
		models.StatusSummarizing,
		models.StatusCompleted,
	}
	if len(videos.statusHistory) != len(want) {
		t.Fatalf("expected status history %v, got %v", want, videos.statusHistory)
	}
	for i, s := range want {
		if videos.statusHistory[i] != s {
			t.Fatalf("expected status history %v, got %v", want, videos.statusHistory)
		}
	}
}

func TestProcessSkipsAfterMetadataFetch(t *testing.T) {
	// Duration unknown up front; the guard re-runs once metadata fills it in.
	videos := newFakeVideoRepo(pendingVideo(nil))
	downloader := &fakeDownloader{
		metadataFn: func(ctx context.Context, externalID string) (*scripts.MetadataResult, error) {
			return &scripts.MetadataResult{Title: "long one", Duration: 7200}, nil
		},
	}
	svc, _, _ := newTestService(videos, downloader, &fakeTranscriber{}, &fakeSummarizer{})

	got, err := svc.Process(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if got.Status != models.StatusSkipped {
		t.Fatalf("expected status %q, got %q", models.StatusSkipped, got.Status)
	}
	if downloader.downloadCalls != 0 {
		t.Error("audio must not be downloaded for an overlong video")
	}
}

func TestProcessDownloadFailure(t *testing.T) {
	videos := newFakeVideoRepo(pendingVideo(intPtr(300)))
	downloader := &fakeDownloader{
		metadataFn: func(ctx context.Context, externalID string) (*scripts.MetadataResult, error) {
			return &scripts.MetadataResult{Title: "t", Duration: 300}, nil
		},
		downloadFn: func(ctx context.Context, url string) (string, error) {
			return "", fmt.Errorf("connection reset")
		},
	}
	transcriber := &fakeTranscriber{}
	svc, _, _ := newTestService(videos, downloader, transcriber, &fakeSummarizer{})

	got, err := svc.Process(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("stage failures must be reported via state, got error: %v", err)
	}
	if got.Status != models.StatusFailed {
		t.Fatalf("expected status %q, got %q", models.StatusFailed, got.Status)
	}
	if stage := got.Metadata[models.MetaFailedStage]; stage != StageDownload {
		t.Errorf("expected failed stage %q, got %v", StageDownload, stage)
	}
	if msg, _ := got.Metadata[models.MetaError].(string); !strings.Contains(msg, "connection reset") {
		t.Errorf("expected error text in metadata, got %v", got.Metadata[models.MetaError])
	}
	if transcriber.calls != 0 {
		t.Error("later stages must not run after a failure")
	}
}

func TestProcessTranscribeFailureCleansAudio(t *testing.T) {
	audioDir := t.TempDir()
	videos := newFakeVideoRepo(pendingVideo(intPtr(300)))
	downloader := happyDownloader(t, audioDir)
	transcriber := &fakeTranscriber{
		fn: func(ctx context.Context, audioPath string) (*scripts.TranscribeResult, error) {
			return nil, fmt.Errorf("whisper exploded")
		},
	}
	svc, _, _ := newTestService(videos, downloader, transcriber, &fakeSummarizer{})

	got, err := svc.Process(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if got.Status != models.StatusFailed {
		t.Fatalf("expected status %q, got %q", models.StatusFailed, got.Status)
	}
	if stage := got.Metadata[models.MetaFailedStage]; stage != StageTranscribe {
		t.Errorf("expected failed stage %q, got %v", StageTranscribe, stage)
	}
	if _, err := os.Stat(filepath.Join(audioDir, "audio.m4a")); !os.IsNotExist(err) {
		t.Error("audio file should be removed even when transcription fails")
	}
}

func TestProcessRecoversAdapterPanic(t *testing.T) {
	videos := newFakeVideoRepo(pendingVideo(intPtr(300)))
	downloader := happyDownloader(t, t.TempDir())
	transcriber := &fakeTranscriber{
		fn: func(ctx context.Context, audioPath string) (*scripts.TranscribeResult, error) {
			panic("nil pointer somewhere deep")
		},
	}
	svc, _, _ := newTestService(videos, downloader, transcriber, &fakeSummarizer{})

	got, err := svc.Process(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("a panic must not escape Process, got error: %v", err)
	}
	if got.Status != models.StatusFailed {
		t.Fatalf("expected status %q, got %q", models.StatusFailed, got.Status)
	}
	if stage := got.Metadata[models.MetaFailedStage]; stage != StageTranscribe {
		t.Errorf("expected failed stage %q, got %v", StageTranscribe, stage)
	}
}

func TestRetryResetsFailureMetadata(t *testing.T) {
	video := pendingVideo(intPtr(300))
	video.Status = models.StatusFailed
	video.SetMeta(models.MetaError, "old failure")
	video.SetMeta(models.MetaFailedStage, StageDownload)
	videos := newFakeVideoRepo(video)
	svc, _, _ := newTestService(videos, happyDownloader(t, t.TempDir()), happyTranscriber(), happySummarizer())

	got, err := svc.Retry(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if got.Status != models.StatusCompleted {
		t.Fatalf("expected status %q, got %q", models.StatusCompleted, got.Status)
	}
	if _, ok := got.Metadata[models.MetaError]; ok {
		t.Error("previous failure error must not survive a successful retry")
	}
	if _, ok := got.Metadata[models.MetaFailedStage]; ok {
		t.Error("previous failed stage must not survive a successful retry")
	}
}

func TestRetryRejectsNonFailedVideo(t *testing.T) {
	for _, status := range []models.Status{models.StatusPending, models.StatusCompleted, models.StatusSkipped} {
		video := pendingVideo(intPtr(300))
		video.Status = status
		videos := newFakeVideoRepo(video)
		svc, _, _ := newTestService(videos, &fakeDownloader{}, &fakeTranscriber{}, &fakeSummarizer{})

		_, err := svc.Retry(context.Background(), "vid-1")
		if !errors.IsInvalidState(err) {
			t.Errorf("status %q: expected InvalidState error, got %v", status, err)
		}
	}
}
