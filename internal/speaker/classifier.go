package speaker

import (
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Professor is the speaker id reserved for the designated speaker. Rotation
// never lands on it; only a keyword match does.
const Professor = 0

// pausesToSwitch is how many consecutive long pauses are needed before the
// classifier gives the floor to the next speaker.
const pausesToSwitch = 2

const (
	DefaultPauseThreshold    = 2000 * time.Millisecond
	DefaultMinWordsForSwitch = 2
	DefaultSpeakers          = 5
	DefaultTurnLimit         = 8
	DefaultProfessorColor    = "#e74c3c"
	FallbackKeyword          = "importante"
)

// DefaultKeywords returns the built-in professor trigger phrases.
func DefaultKeywords() []string {
	return []string{"importante", "examen", "tarea", "deben", "debe", "recuerden", "atención"}
}

// Config holds the tunables of the classifier. It is replaced wholesale
// through UpdateConfig and never mutated in place.
type Config struct {
	Keywords          []string
	PauseThreshold    time.Duration
	MinWordsForSwitch int
	Speakers          int
	TurnLimit         int
	ProfessorColor    string
}

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() Config {
	return Config{
		Keywords:          DefaultKeywords(),
		PauseThreshold:    DefaultPauseThreshold,
		MinWordsForSwitch: DefaultMinWordsForSwitch,
		Speakers:          DefaultSpeakers,
		TurnLimit:         DefaultTurnLimit,
		ProfessorColor:    DefaultProfessorColor,
	}
}

// normalized returns a copy of c where every invalid field is replaced by
// its default. An empty keyword list becomes the fallback keyword.
func (c Config) normalized() Config {
	out := c
	out.Keywords = make([]string, 0, len(c.Keywords))
	for _, kw := range c.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		out.Keywords = append(out.Keywords, kw)
	}
	if len(out.Keywords) == 0 {
		out.Keywords = []string{FallbackKeyword}
	}
	if out.PauseThreshold <= 0 {
		out.PauseThreshold = DefaultPauseThreshold
	}
	if out.MinWordsForSwitch < 1 {
		out.MinWordsForSwitch = DefaultMinWordsForSwitch
	}
	if out.Speakers < 2 {
		out.Speakers = DefaultSpeakers
	}
	if out.TurnLimit < 1 {
		out.TurnLimit = DefaultTurnLimit
	}
	if out.ProfessorColor == "" {
		out.ProfessorColor = DefaultProfessorColor
	}
	return out
}

// State is the mutable part of the classifier.
type State struct {
	CurrentSpeaker        int
	LastEventTimeMs       int64
	ConsecutiveTurnCount  int
	ConsecutivePauseCount int
}

// Segment is one piece of recognized speech as it arrives from the provider.
type Segment struct {
	Text          string
	IsFinal       bool
	ArrivalTimeMs int64
}

// Classifier attributes transcript segments to speakers using only timing
// and lexical content.
type Classifier struct {
	mu       sync.Mutex
	clock    clock.Clock
	config   Config
	keywords []string // lower-cased copy of config.Keywords
	state    State
}

type Option func(*Classifier)

// WithClock sets the clock used by Reset.
func WithClock(clk clock.Clock) Option {
	return func(c *Classifier) {
		c.clock = clk
	}
}

func NewClassifier(cfg Config, opts ...Option) *Classifier {
	c := &Classifier{clock: clock.New()}
	for _, opt := range opts {
		opt(c)
	}
	c.setConfig(cfg)
	c.state.LastEventTimeMs = c.clock.Now().UnixMilli()
	return c
}

// Classify returns the speaker id for seg and updates the classifier state.
func (c *Classifier) Classify(seg Segment) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	words := WordCount(seg.Text)
	gap := time.Duration(seg.ArrivalTimeMs-c.state.LastEventTimeMs) * time.Millisecond

	if words < c.config.MinWordsForSwitch {
		c.state.LastEventTimeMs = seg.ArrivalTimeMs
		return c.state.CurrentSpeaker
	}

	if c.matchesKeyword(seg.Text) {
		c.state.CurrentSpeaker = Professor
		c.state.ConsecutiveTurnCount = 0
		c.state.ConsecutivePauseCount = 0
		c.state.LastEventTimeMs = seg.ArrivalTimeMs
		return Professor
	}

	switched := false
	if gap > c.config.PauseThreshold {
		c.state.ConsecutivePauseCount++
		if c.state.ConsecutivePauseCount >= pausesToSwitch {
			c.state.CurrentSpeaker = Advance(c.state.CurrentSpeaker, c.config.Speakers)
			c.state.ConsecutiveTurnCount = 0
			c.state.ConsecutivePauseCount = 0
			switched = true
		}
	} else {
		c.state.ConsecutivePauseCount = 0
	}

	if !switched {
		if c.state.ConsecutiveTurnCount > c.config.TurnLimit {
			c.state.CurrentSpeaker = Advance(c.state.CurrentSpeaker, c.config.Speakers)
			c.state.ConsecutiveTurnCount = 0
		} else {
			c.state.ConsecutiveTurnCount++
		}
	}

	c.state.LastEventTimeMs = seg.ArrivalTimeMs
	return c.state.CurrentSpeaker
}

func (c *Classifier) matchesKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range c.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// UpdateConfig replaces the configuration. The state is left untouched.
func (c *Classifier) UpdateConfig(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setConfig(cfg)
}

func (c *Classifier) setConfig(cfg Config) {
	c.config = cfg.normalized()
	c.keywords = make([]string, len(c.config.Keywords))
	for i, kw := range c.config.Keywords {
		c.keywords[i] = strings.ToLower(kw)
	}
	if c.state.CurrentSpeaker > c.config.Speakers {
		c.state.CurrentSpeaker = Advance(c.state.CurrentSpeaker, c.config.Speakers)
	}
}

// Reset starts a new attribution run: the professor has the floor and the
// pause clock starts now.
func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{
		CurrentSpeaker:  Professor,
		LastEventTimeMs: c.clock.Now().UnixMilli(),
	}
}

func (c *Classifier) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg := c.config
	cfg.Keywords = append([]string(nil), c.config.Keywords...)
	return cfg
}

func (c *Classifier) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Advance returns the speaker after current, cycling through 1..speakers.
// The professor slot is skipped.
func Advance(current, speakers int) int {
	next := (current + 1) % (speakers + 1)
	if next == Professor {
		next = 1
	}
	return next
}

// WordCount returns the number of whitespace separated tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
