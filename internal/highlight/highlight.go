// Package highlight marks whole-word keyword occurrences in transcript text.
package highlight

import (
	"html"
	"strings"
	"unicode"
)

// Span is a run of text that is either a keyword occurrence or plain text.
type Span struct {
	Text    string
	Keyword bool
}

// Annotate splits text into spans, flagging every case-insensitive,
// whole-word occurrence of a keyword. Keywords shorter than two runes are
// ignored. When several keywords match at the same position the longest
// one wins.
func Annotate(text string, keywords []string) []Span {
	runes := []rune(text)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	patterns := make([][]rune, 0, len(keywords))
	for _, kw := range keywords {
		p := []rune(strings.ToLower(strings.TrimSpace(kw)))
		if len(p) <= 1 {
			continue
		}
		patterns = append(patterns, p)
	}

	var spans []Span
	plainStart := 0
	for i := 0; i < len(runes); {
		n := longestMatch(lower, i, patterns)
		if n == 0 {
			i++
			continue
		}
		if plainStart < i {
			spans = append(spans, Span{Text: string(runes[plainStart:i])})
		}
		spans = append(spans, Span{Text: string(runes[i : i+n]), Keyword: true})
		i += n
		plainStart = i
	}
	if plainStart < len(runes) {
		spans = append(spans, Span{Text: string(runes[plainStart:])})
	}
	return spans
}

func longestMatch(text []rune, at int, patterns [][]rune) int {
	if at > 0 && isWordRune(text[at-1]) {
		return 0
	}
	best := 0
	for _, p := range patterns {
		end := at + len(p)
		if len(p) <= best || end > len(text) {
			continue
		}
		if !equalRunes(text[at:end], p) {
			continue
		}
		if end < len(text) && isWordRune(text[end]) {
			continue
		}
		best = len(p)
	}
	return best
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// Render joins the spans of text, passing every keyword occurrence through
// mark and every plain run through plain. A nil plain keeps text as is.
func Render(text string, keywords []string, mark, plain func(string) string) string {
	var b strings.Builder
	for _, s := range Annotate(text, keywords) {
		switch {
		case s.Keyword:
			b.WriteString(mark(s.Text))
		case plain != nil:
			b.WriteString(plain(s.Text))
		default:
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

const markOpen = `<mark style="background: #FFEB3B; padding: 2px 4px; border-radius: 3px; font-weight: bold;">`

// HTML renders text with keywords wrapped in <mark> elements. All text is
// escaped.
func HTML(text string, keywords []string) string {
	return Render(text, keywords, func(s string) string {
		return markOpen + html.EscapeString(s) + "</mark>"
	}, html.EscapeString)
}

// Markdown renders text with keywords in bold.
func Markdown(text string, keywords []string) string {
	return Render(text, keywords, func(s string) string {
		return "**" + s + "**"
	}, nil)
}
