package distribution

import (
	"fmt"
	"html"
	"strings"

	"tubebrief/models"
)

// renderMessage builds the HTML message body once per distribution run; every
// recipient receives the identical rendering.
func renderMessage(summary *models.Summary, video *models.Video, source *models.Source) (string, error) {
	if summary.SummaryText == "" {
		return "", fmt.Errorf("summary %s has no text to render", summary.ID)
	}

	title := summary.Title
	if title == "" {
		title = video.Title
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(title))
	if source.Name != "" {
		fmt.Fprintf(&b, "<i>%s</i>\n", html.EscapeString(source.Name))
	}
	b.WriteString("\n")
	b.WriteString(html.EscapeString(summary.SummaryText))

	if len(summary.KeyPoints) > 0 {
		b.WriteString("\n\n<b>Key points</b>\n")
		for _, point := range summary.KeyPoints {
			fmt.Fprintf(&b, "• %s\n", html.EscapeString(point))
		}
	}

	if video.URL != "" {
		fmt.Fprintf(&b, "\n<a href=\"%s\">Watch</a>", video.URL)
	}

	return b.String(), nil
}
