// Package dashboard renders the aggregate snapshot view.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/digitaldataco/fabrexlens/internal/adapters/driving/tui/styles"
	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

// View displays the most recent snapshot across all services.
type View struct {
	styles     *styles.Styles
	snapshot   *domain.Snapshot
	spinner    spinner.Model
	refreshing bool
	width      int
	height     int
}

// NewView creates a dashboard view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		styles:  s,
		spinner: sp,
	}
}

// Init starts the spinner tick loop.
func (v *View) Init() tea.Cmd {
	return v.spinner.Tick
}

// Update handles spinner ticks; all other state arrives via setters.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	v.spinner, cmd = v.spinner.Update(msg)
	return v, cmd
}

// SetSnapshot replaces the displayed snapshot wholesale.
func (v *View) SetSnapshot(snapshot *domain.Snapshot) {
	v.snapshot = snapshot
	v.refreshing = false
}

// Snapshot returns the currently displayed snapshot.
func (v *View) Snapshot() *domain.Snapshot {
	return v.snapshot
}

// SetRefreshing marks whether a cycle is in flight.
func (v *View) SetRefreshing(refreshing bool) {
	v.refreshing = refreshing
}

// Refreshing reports whether a cycle is in flight.
func (v *View) Refreshing() bool {
	return v.refreshing
}

// SetDimensions sets the rendering area.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// View renders the snapshot sections.
func (v *View) View() string {
	var b strings.Builder

	if v.refreshing {
		b.WriteString(v.spinner.View())
		b.WriteString(v.styles.Muted.Render(" refreshing..."))
		b.WriteString("\n\n")
	}

	if v.snapshot == nil {
		b.WriteString(v.styles.Muted.Render("Waiting for the first snapshot..."))
		return b.String()
	}

	for _, d := range v.snapshot.StaleDomains() {
		reason := v.snapshot.Fragments[d].Reason
		b.WriteString(v.styles.Warning.Render(
			fmt.Sprintf("STALE %s: %s", d.DisplayName(), reason)))
		b.WriteString("\n")
	}
	if len(v.snapshot.StaleDomains()) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(v.renderFabrics())
	b.WriteString("\n")
	b.WriteString(v.renderWorkloads())
	b.WriteString("\n")
	b.WriteString(v.renderSupernodes())

	if len(v.snapshot.Alerts) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Alerts"))
		b.WriteString("\n")
		for _, alert := range v.snapshot.Alerts {
			b.WriteString(v.styles.Warning.Render("  " + alert))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (v *View) renderFabrics() string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Fabrics"))
	b.WriteString("\n")

	if len(v.snapshot.Fabrics) == 0 {
		b.WriteString(v.styles.Muted.Render("  (none)"))
		b.WriteString("\n")
		return b.String()
	}

	usageByFabric := make(map[string]domain.FabricUsage, len(v.snapshot.Usage))
	for _, u := range v.snapshot.Usage {
		usageByFabric[u.FabricID] = u
	}

	b.WriteString(v.styles.TableHeader.Render(
		fmt.Sprintf("  %-20s %-12s %8s %12s", "NAME", "STATUS", "UTIL%", "ENDPOINTS")))
	b.WriteString("\n")
	for _, fabric := range v.snapshot.Fabrics {
		usage := usageByFabric[fabric.ID]
		row := fmt.Sprintf("  %-20s %-12s %8.1f %9d/%d",
			fabric.Name, fabric.Status, usage.UtilizationPercent,
			usage.AssignedEndpoints, usage.TotalEndpoints)
		b.WriteString(v.statusStyle(fabric.Status).Render(row))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderWorkloads() string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Workloads"))
	b.WriteString("\n")

	if len(v.snapshot.Workloads) == 0 {
		b.WriteString(v.styles.Muted.Render("  (none)"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(v.styles.TableHeader.Render(
		fmt.Sprintf("  %-20s %-12s %-16s", "NAME", "STATE", "OWNER")))
	b.WriteString("\n")
	for _, workload := range v.snapshot.Workloads {
		row := fmt.Sprintf("  %-20s %-12s %-16s", workload.Name, workload.State, workload.Owner)
		b.WriteString(v.statusStyle(workload.State).Render(row))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderSupernodes() string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Supernodes"))
	b.WriteString("\n")

	if len(v.snapshot.Supernodes) == 0 {
		b.WriteString(v.styles.Muted.Render("  (none)"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(v.styles.TableHeader.Render(
		fmt.Sprintf("  %-20s %-12s %-12s", "NAME", "ROLE", "STATUS")))
	b.WriteString("\n")
	for _, node := range v.snapshot.Supernodes {
		row := fmt.Sprintf("  %-20s %-12s %-12s", node.Name, node.Role, node.Status)
		b.WriteString(v.statusStyle(node.Status).Render(row))
		b.WriteString("\n")
	}
	return b.String()
}

// statusStyle colours a row by its reported state string.
func (v *View) statusStyle(status string) lipgloss.Style {
	switch strings.ToLower(status) {
	case "healthy", "active", "running", "online", "ready":
		return v.styles.Normal
	case "degraded", "pending", "draining":
		return v.styles.Warning
	case "failed", "error", "offline", "unreachable":
		return v.styles.Error
	default:
		return v.styles.Normal
	}
}
