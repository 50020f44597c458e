package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/leonardotrapani/aulavoz/internal/highlight"
	"github.com/leonardotrapani/aulavoz/internal/speaker"
	"github.com/leonardotrapani/aulavoz/internal/transcript"
	"github.com/muesli/termenv"
)

// Options controls what the terminal presenter shows.
type Options struct {
	Timestamps bool
	Highlight  bool
	ShowLive   bool
}

func DefaultOptions() Options {
	return Options{Timestamps: true, Highlight: true, ShowLive: true}
}

// Terminal prints the transcript as colored lines. The live segment is kept
// on the last line and rewritten in place until its final version arrives.
type Terminal struct {
	mu       sync.Mutex
	out      *termenv.Output
	renderer *lipgloss.Renderer
	opts     Options
	cfg      speaker.Config
	liveOn   bool

	styleTime  lipgloss.Style
	styleMark  lipgloss.Style
	styleLive  lipgloss.Style
	styleError lipgloss.Style
	styleMuted lipgloss.Style
}

// NewTerminal writes to w. The color profile is detected from w unless
// profile options are passed (tests use termenv.Ascii).
func NewTerminal(w io.Writer, opts Options, cfg speaker.Config, outOpts ...termenv.OutputOption) *Terminal {
	out := termenv.NewOutput(w, outOpts...)
	r := lipgloss.NewRenderer(w, outOpts...)
	r.SetColorProfile(out.Profile)

	return &Terminal{
		out:        out,
		renderer:   r,
		opts:       opts,
		cfg:        cfg,
		styleTime:  r.NewStyle().Foreground(lipgloss.Color("#64748B")),
		styleMark:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#0F172A")).Background(lipgloss.Color("#F59E0B")),
		styleLive:  r.NewStyle().Italic(true).Foreground(lipgloss.Color("#94A3B8")),
		styleError: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		styleMuted: r.NewStyle().Foreground(lipgloss.Color("#94A3B8")),
	}
}

// SetConfig swaps the keyword set and professor color used for rendering.
func (t *Terminal) SetConfig(cfg speaker.Config) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg = cfg
}

// SetOptions swaps the display options.
func (t *Terminal) SetOptions(opts Options) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opts = opts
}

func (t *Terminal) Append(seg transcript.LabeledSegment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropLiveLocked()
	fmt.Fprintln(t.out, t.lineLocked(seg, false))
}

func (t *Terminal) Live(seg transcript.LabeledSegment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.opts.ShowLive {
		return
	}
	t.dropLiveLocked()
	fmt.Fprint(t.out, t.lineLocked(seg, true))
	t.liveOn = true
}

func (t *Terminal) ClearLive() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropLiveLocked()
}

func (t *Terminal) Cleared() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropLiveLocked()
	t.out.ClearScreen()
	t.out.MoveCursor(1, 1)
	fmt.Fprintln(t.out, t.styleMuted.Render("-- transcript cleared --"))
}

func (t *Terminal) Error(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropLiveLocked()
	fmt.Fprintln(t.out, t.styleError.Render(msg))
}

// Print writes a whole transcript, e.g. one fetched from the daemon.
func (t *Terminal) Print(segs []transcript.LabeledSegment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, seg := range segs {
		fmt.Fprintln(t.out, t.lineLocked(seg, false))
	}
}

func (t *Terminal) dropLiveLocked() {
	if !t.liveOn {
		return
	}
	t.out.ClearLine()
	fmt.Fprint(t.out, "\r")
	t.liveOn = false
}

func (t *Terminal) lineLocked(seg transcript.LabeledSegment, live bool) string {
	color := speaker.Color(seg.Speaker, t.cfg.ProfessorColor)
	name := t.renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(speaker.Name(seg.Speaker) + ":")

	var text string
	switch {
	case live:
		text = t.styleLive.Render(seg.Text + " ...")
	case t.opts.Highlight:
		text = highlight.Render(seg.Text, t.cfg.Keywords, func(s string) string { return t.styleMark.Render(s) }, nil)
	default:
		text = seg.Text
	}

	line := name + " " + text
	if t.opts.Timestamps && seg.Timestamp != "" {
		line = t.styleTime.Render("["+seg.Timestamp+"]") + " " + line
	}
	return line
}
