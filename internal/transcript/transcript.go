package transcript

import (
	"sync"
	"time"
)

// TimestampLayout is the wall-clock format attached to labeled segments.
const TimestampLayout = "15:04:05"

// LabeledSegment is a transcript segment attributed to a speaker.
type LabeledSegment struct {
	Text      string `json:"text"`
	Speaker   int    `json:"speaker"`
	Timestamp string `json:"timestamp"`
	Final     bool   `json:"final"`
}

func Stamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Log is the ordered, append-only history of final segments.
type Log struct {
	mu       sync.RWMutex
	segments []LabeledSegment
}

func (l *Log) Append(seg LabeledSegment) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.segments = append(l.segments, seg)
}

// Segments returns a copy of the log.
func (l *Log) Segments() []LabeledSegment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]LabeledSegment, len(l.segments))
	copy(out, l.segments)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.segments)
}

// Reset drops the whole history. It is the only way entries leave the log.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.segments = nil
}

// Live holds the single in-progress interim segment.
type Live struct {
	mu  sync.RWMutex
	seg LabeledSegment
	set bool
}

func (l *Live) Set(seg LabeledSegment) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seg = seg
	l.set = true
}

func (l *Live) Get() (LabeledSegment, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seg, l.set
}

func (l *Live) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seg = LabeledSegment{}
	l.set = false
}
