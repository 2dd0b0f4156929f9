// Package activity provides the scrolling event log component for the TUI.
package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/digitaldataco/fabrexlens/internal/adapters/driving/tui/styles"
)

// maxEntries bounds the log so a long-lived session cannot grow unbounded.
const maxEntries = 200

// Level classifies a log entry for rendering.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Entry is one recorded worker outcome.
type Entry struct {
	At    time.Time
	Level Level
	Text  string
}

// Log keeps the most recent worker outcomes, newest last.
type Log struct {
	styles  *styles.Styles
	entries []Entry
	width   int
	height  int
}

// NewLog creates an empty activity log.
func NewLog(s *styles.Styles) *Log {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Log{
		styles: s,
		width:  80,
		height: 20,
	}
}

// Add appends an entry, evicting the oldest once the log is full.
func (l *Log) Add(level Level, format string, args ...any) {
	l.entries = append(l.entries, Entry{
		At:    time.Now(),
		Level: level,
		Text:  fmt.Sprintf(format, args...),
	})
	if len(l.entries) > maxEntries {
		l.entries = l.entries[len(l.entries)-maxEntries:]
	}
}

// Entries returns the recorded entries, oldest first.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// SetDimensions sets the rendering area.
func (l *Log) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// View renders the newest entries that fit the available height.
func (l *Log) View() string {
	var b strings.Builder
	b.WriteString(l.styles.Subtitle.Render("Activity"))
	b.WriteString("\n\n")

	if len(l.entries) == 0 {
		b.WriteString(l.styles.Muted.Render("No activity yet."))
		return b.String()
	}

	visible := l.entries
	if rows := l.height - 3; rows > 0 && len(visible) > rows {
		visible = visible[len(visible)-rows:]
	}

	lines := make([]string, 0, len(visible))
	for _, e := range visible {
		stamp := l.styles.Muted.Render(e.At.Format("15:04:05"))
		text := l.render(e)
		lines = append(lines, fmt.Sprintf("%s  %s", stamp, text))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func (l *Log) render(e Entry) string {
	switch e.Level {
	case LevelWarn:
		return l.styles.Warning.Render(e.Text)
	case LevelError:
		return l.styles.Error.Render(e.Text)
	default:
		return l.styles.Normal.Render(e.Text)
	}
}
