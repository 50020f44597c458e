package transcript

import (
	"fmt"
	"html"
	"strings"

	"github.com/leonardotrapani/aulavoz/internal/highlight"
	"github.com/leonardotrapani/aulavoz/internal/speaker"
)

// Markdown renders segments as one paragraph per segment with the speaker
// name and keywords in bold.
func Markdown(segments []LabeledSegment, keywords []string) string {
	var b strings.Builder
	b.WriteString("# Transcript\n\n")
	if len(segments) == 0 {
		b.WriteString("_no segments_\n")
		return b.String()
	}
	for _, s := range segments {
		ts := ""
		if s.Timestamp != "" {
			ts = fmt.Sprintf("[%s] ", s.Timestamp)
		}
		fmt.Fprintf(&b, "%s**%s:** %s\n\n", ts, speaker.Name(s.Speaker),
			highlight.Markdown(strings.TrimSpace(s.Text), keywords))
	}
	return b.String()
}

// HTML renders segments as a list colored by speaker, with keywords marked.
func HTML(segments []LabeledSegment, keywords []string, professorColor string) string {
	var b strings.Builder
	b.WriteString("<ul class=\"transcript\">\n")
	for _, s := range segments {
		color := speaker.Color(s.Speaker, professorColor)
		fmt.Fprintf(&b, "  <li style=\"border-left: 4px solid %s\"><span class=\"time\">%s</span> <strong style=\"color: %s\">%s</strong> %s</li>\n",
			html.EscapeString(color),
			html.EscapeString(s.Timestamp),
			html.EscapeString(color),
			html.EscapeString(speaker.Name(s.Speaker)),
			highlight.HTML(s.Text, keywords))
	}
	b.WriteString("</ul>\n")
	return b.String()
}
