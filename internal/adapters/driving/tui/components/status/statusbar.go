// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/digitaldataco/fabrexlens/internal/adapters/driving/tui/keymap"
	"github.com/digitaldataco/fabrexlens/internal/adapters/driving/tui/styles"
)

// Bar displays polling state, snapshot freshness, and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	polling  bool
	interval time.Duration
	takenAt  time.Time
	stale    int
	message  string
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		width:  80,
	}
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	padding := b.width - leftLen - rightLen - 2
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders polling state and snapshot freshness.
func (b *Bar) renderLeft() string {
	parts := make([]string, 0, 3)

	if b.polling {
		parts = append(parts, b.styles.Success.Render(fmt.Sprintf("polling %s", b.interval)))
	} else {
		parts = append(parts, b.styles.Muted.Render("polling off"))
	}

	if !b.takenAt.IsZero() {
		snapshot := fmt.Sprintf("snapshot %s", b.takenAt.Format("15:04:05"))
		if b.stale > 0 {
			snapshot += fmt.Sprintf(" (%d stale)", b.stale)
			parts = append(parts, b.styles.Warning.Render(snapshot))
		} else {
			parts = append(parts, b.styles.Normal.Render(snapshot))
		}
	}

	if b.message != "" {
		parts = append(parts, b.styles.Error.Render(b.message))
	}

	return strings.Join(parts, b.styles.Muted.Render("  │  "))
}

// renderRight renders keybinding hints.
func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Help.Render(strings.Join(hints, " | "))
}

// SetPolling records the scheduler state for display.
func (b *Bar) SetPolling(running bool, interval time.Duration) {
	b.polling = running
	b.interval = interval
}

// Polling reports whether the bar shows polling as running.
func (b *Bar) Polling() bool {
	return b.polling
}

// Interval returns the displayed polling interval.
func (b *Bar) Interval() time.Duration {
	return b.interval
}

// SetSnapshot records the latest snapshot timestamp and stale count.
func (b *Bar) SetSnapshot(takenAt time.Time, stale int) {
	b.takenAt = takenAt
	b.stale = stale
}

// SetMessage sets a transient error message, or clears it when empty.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}
