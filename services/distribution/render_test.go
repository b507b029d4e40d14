package distribution

import (
	"strings"
	"testing"

	"tubebrief/models"
)

func TestRenderMessage(t *testing.T) {
	summary := &models.Summary{
		ID:          "sum-1",
		Title:       "Go <Generics>",
		SummaryText: "Covers type parameters & constraints.",
		KeyPoints:   []string{"constraints", "inference"},
	}
	video := &models.Video{Title: "fallback", URL: "https://www.youtube.com/watch?v=abc"}
	source := &models.Source{Name: "Gopher Talks"}

	msg, err := renderMessage(summary, video, source)
	if err != nil {
		t.Fatalf("renderMessage returned error: %v", err)
	}

	if !strings.Contains(msg, "Go &lt;Generics&gt;") {
		t.Errorf("title should be HTML-escaped, got %q", msg)
	}
	if !strings.Contains(msg, "&amp; constraints") {
		t.Errorf("body should be HTML-escaped, got %q", msg)
	}
	if !strings.Contains(msg, "Gopher Talks") {
		t.Errorf("source name should appear, got %q", msg)
	}
	if !strings.Contains(msg, "• constraints") || !strings.Contains(msg, "• inference") {
		t.Errorf("key points should be listed, got %q", msg)
	}
	if !strings.Contains(msg, `<a href="https://www.youtube.com/watch?v=abc">`) {
		t.Errorf("video link should appear, got %q", msg)
	}
}

func TestRenderMessageFallsBackToVideoTitle(t *testing.T) {
	summary := &models.Summary{ID: "sum-1", SummaryText: "text"}
	video := &models.Video{Title: "Video title"}

	msg, err := renderMessage(summary, video, &models.Source{})
	if err != nil {
		t.Fatalf("renderMessage returned error: %v", err)
	}
	if !strings.Contains(msg, "Video title") {
		t.Errorf("expected the video title as fallback, got %q", msg)
	}
}

func TestRenderMessageRequiresText(t *testing.T) {
	summary := &models.Summary{ID: "sum-1"}
	if _, err := renderMessage(summary, &models.Video{}, &models.Source{}); err == nil {
		t.Fatal("expected an error for an empty summary text")
	}
}
