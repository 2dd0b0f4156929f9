// Package reassign provides the endpoint reassignment form.
package reassign

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/digitaldataco/fabrexlens/internal/adapters/driving/tui/styles"
	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

// Submitted is emitted when the form is completed. The app turns it into a
// worker command.
type Submitted struct {
	Command domain.SubmitReassignment
}

// Cancelled is emitted when the form is dismissed.
type Cancelled struct{}

const fieldCount = 3

// View is a three-field form: fabric, endpoint, target supernode.
type View struct {
	styles  *styles.Styles
	inputs  [fieldCount]textinput.Model
	focused int
	errText string
	width   int
	height  int
}

// NewView creates the reassignment form.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	v := &View{styles: s}
	labels := [fieldCount]string{"fabric id", "endpoint id", "target supernode id"}
	for i := range v.inputs {
		in := textinput.New()
		in.Placeholder = labels[i]
		in.CharLimit = 64
		in.Width = 32
		v.inputs[i] = in
	}
	v.inputs[0].Focus()
	return v
}

// Init implements the component contract.
func (v *View) Init() tea.Cmd {
	return textinput.Blink
}

// Reset clears all fields and refocuses the first one.
func (v *View) Reset() {
	for i := range v.inputs {
		v.inputs[i].SetValue("")
		v.inputs[i].Blur()
	}
	v.focused = 0
	v.inputs[0].Focus()
	v.errText = ""
}

// Update handles key input for the form.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			return v, func() tea.Msg { return Cancelled{} }

		case tea.KeyTab, tea.KeyDown:
			v.focus(v.focused + 1)
			return v, nil

		case tea.KeyShiftTab, tea.KeyUp:
			v.focus(v.focused - 1)
			return v, nil

		case tea.KeyEnter:
			if v.focused < fieldCount-1 {
				v.focus(v.focused + 1)
				return v, nil
			}
			return v.submit()
		}
	}

	var cmd tea.Cmd
	v.inputs[v.focused], cmd = v.inputs[v.focused].Update(msg)
	return v, cmd
}

// focus moves input focus, wrapping at both ends.
func (v *View) focus(idx int) {
	v.inputs[v.focused].Blur()
	v.focused = (idx + fieldCount) % fieldCount
	v.inputs[v.focused].Focus()
}

// submit validates the fields and emits Submitted.
func (v *View) submit() (*View, tea.Cmd) {
	cmd := domain.SubmitReassignment{
		FabricID:          strings.TrimSpace(v.inputs[0].Value()),
		EndpointID:        strings.TrimSpace(v.inputs[1].Value()),
		TargetSupernodeID: strings.TrimSpace(v.inputs[2].Value()),
	}
	if cmd.FabricID == "" || cmd.EndpointID == "" || cmd.TargetSupernodeID == "" {
		v.errText = "all three fields are required"
		return v, nil
	}
	v.errText = ""
	return v, func() tea.Msg { return Submitted{Command: cmd} }
}

// Focused returns the index of the focused field (for testing).
func (v *View) Focused() int {
	return v.focused
}

// Values returns the current trimmed field values (for testing).
func (v *View) Values() (fabricID, endpointID, supernodeID string) {
	return strings.TrimSpace(v.inputs[0].Value()),
		strings.TrimSpace(v.inputs[1].Value()),
		strings.TrimSpace(v.inputs[2].Value())
}

// Err returns the current validation message.
func (v *View) Err() string {
	return v.errText
}

// SetDimensions sets the rendering area.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// View renders the form.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Reassign endpoint"))
	b.WriteString("\n\n")

	labels := [fieldCount]string{"Fabric", "Endpoint", "Target supernode"}
	for i := range v.inputs {
		label := v.styles.Muted.Render(labels[i])
		if i == v.focused {
			label = v.styles.Normal.Render(labels[i])
		}
		b.WriteString("  " + label + "\n  " + v.inputs[i].View() + "\n\n")
	}

	if v.errText != "" {
		b.WriteString(v.styles.Error.Render("  " + v.errText))
		b.WriteString("\n\n")
	}

	b.WriteString(v.styles.Help.Render("  enter: next/submit · tab: next field · esc: cancel"))
	return b.String()
}
