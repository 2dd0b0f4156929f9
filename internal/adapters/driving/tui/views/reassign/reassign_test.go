package reassign

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(v *View, text string) *View {
	for _, r := range text {
		v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return v
}

func pressEnter(v *View) (*View, tea.Cmd) {
	return v.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestView_FocusCycles(t *testing.T) {
	v := NewView(nil)
	assert.Equal(t, 0, v.Focused())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, v.Focused())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, v.Focused(), "tab wraps back to the first field")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 2, v.Focused())
}

func TestView_SubmitEmitsCommand(t *testing.T) {
	v := NewView(nil)

	v = typeText(v, "fab-1")
	v, _ = pressEnter(v)
	v = typeText(v, "ep-9")
	v, _ = pressEnter(v)
	v = typeText(v, "sn-42")
	v, cmd := pressEnter(v)

	require.NotNil(t, cmd)
	msg := cmd()
	submitted, ok := msg.(Submitted)
	require.True(t, ok)
	assert.Equal(t, "fab-1", submitted.Command.FabricID)
	assert.Equal(t, "ep-9", submitted.Command.EndpointID)
	assert.Equal(t, "sn-42", submitted.Command.TargetSupernodeID)
	assert.Empty(t, v.Err())
}

func TestView_SubmitRequiresAllFields(t *testing.T) {
	v := NewView(nil)

	v = typeText(v, "fab-1")
	v, _ = pressEnter(v)
	v, _ = pressEnter(v)
	v, cmd := pressEnter(v)

	assert.Nil(t, cmd)
	assert.Contains(t, v.Err(), "required")
}

func TestView_EscCancels(t *testing.T) {
	v := NewView(nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.IsType(t, Cancelled{}, cmd())
}

func TestView_ResetClearsFields(t *testing.T) {
	v := NewView(nil)
	v = typeText(v, "fab-1")
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})

	v.Reset()

	fabricID, endpointID, supernodeID := v.Values()
	assert.Empty(t, fabricID)
	assert.Empty(t, endpointID)
	assert.Empty(t, supernodeID)
	assert.Equal(t, 0, v.Focused())
}
