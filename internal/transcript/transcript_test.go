package transcript

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_AppendOnlyOrder(t *testing.T) {
	var l Log
	l.Append(LabeledSegment{Text: "uno", Speaker: 0})
	l.Append(LabeledSegment{Text: "dos", Speaker: 1})

	segs := l.Segments()
	require.Len(t, segs, 2)
	require.Equal(t, "uno", segs[0].Text)
	require.Equal(t, "dos", segs[1].Text)

	// callers get a copy
	segs[0].Text = "changed"
	require.Equal(t, "uno", l.Segments()[0].Text)

	l.Reset()
	require.Zero(t, l.Len())
}

func TestLog_ConcurrentAppend(t *testing.T) {
	var l Log
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Append(LabeledSegment{Text: "x"})
		}()
	}
	wg.Wait()
	require.Equal(t, 50, l.Len())
}

func TestLive(t *testing.T) {
	var l Live
	_, ok := l.Get()
	require.False(t, ok)

	l.Set(LabeledSegment{Text: "hola", Speaker: 2})
	seg, ok := l.Get()
	require.True(t, ok)
	require.Equal(t, "hola", seg.Text)

	l.Set(LabeledSegment{Text: "hola a todos", Speaker: 2})
	seg, _ = l.Get()
	require.Equal(t, "hola a todos", seg.Text)

	l.Clear()
	_, ok = l.Get()
	require.False(t, ok)
}

func TestStamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 5, 7, 0, time.Local)
	require.Equal(t, "09:05:07", Stamp(ts))
}

func TestMarkdown(t *testing.T) {
	out := Markdown([]LabeledSegment{
		{Text: "el examen es el lunes ", Speaker: 0, Timestamp: "10:00:00"},
		{Text: "ok gracias", Speaker: 2, Timestamp: "10:00:05"},
	}, []string{"examen"})

	require.Contains(t, out, "[10:00:00] **PROFESSOR:** el **examen** es el lunes\n")
	require.Contains(t, out, "[10:00:05] **Student 2:** ok gracias\n")
}

func TestMarkdown_Empty(t *testing.T) {
	require.Contains(t, Markdown(nil, nil), "_no segments_")
}

func TestHTML(t *testing.T) {
	out := HTML([]LabeledSegment{{Text: "tarea <hoy>", Speaker: 0, Timestamp: "10:00:00"}},
		[]string{"tarea"}, "#ff0000")

	require.True(t, strings.HasPrefix(out, "<ul"))
	require.Contains(t, out, "color: #ff0000")
	require.Contains(t, out, "PROFESSOR")
	require.Contains(t, out, "</mark> &lt;hoy&gt;")
}
