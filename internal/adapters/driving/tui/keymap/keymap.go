// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help panel.
	Help key.Binding

	// Back returns to the dashboard panel.
	Back key.Binding

	// Refresh requests an immediate out-of-cadence snapshot.
	Refresh key.Binding

	// TogglePolling starts or stops the polling scheduler.
	TogglePolling key.Binding

	// IntervalUp lengthens the polling interval.
	IntervalUp key.Binding

	// IntervalDown shortens the polling interval.
	IntervalDown key.Binding

	// Activity switches to the activity log panel.
	Activity key.Binding

	// Reassign opens the endpoint reassignment form.
	Reassign key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		TogglePolling: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "polling on/off"),
		),
		IntervalUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "slower"),
		),
		IntervalDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "faster"),
		),
		Activity: key.NewBinding(
			key.WithKeys("a", "tab"),
			key.WithHelp("a", "activity"),
		),
		Reassign: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "reassign"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.TogglePolling, k.Help, k.Quit}
}

// FullHelp returns the full list of keybindings for the help panel.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.TogglePolling, k.IntervalUp, k.IntervalDown},
		{k.Reassign, k.Activity, k.Back},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
