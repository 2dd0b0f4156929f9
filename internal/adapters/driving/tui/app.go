// Package tui implements the interactive dashboard following the Elm
// architecture. The app owns no service state: it submits commands to the
// background worker and folds the resulting events into view state.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/digitaldataco/fabrexlens/internal/adapters/driving/tui/components/activity"
	"github.com/digitaldataco/fabrexlens/internal/adapters/driving/tui/components/status"
	"github.com/digitaldataco/fabrexlens/internal/adapters/driving/tui/keymap"
	"github.com/digitaldataco/fabrexlens/internal/adapters/driving/tui/messages"
	"github.com/digitaldataco/fabrexlens/internal/adapters/driving/tui/styles"
	"github.com/digitaldataco/fabrexlens/internal/adapters/driving/tui/views/dashboard"
	"github.com/digitaldataco/fabrexlens/internal/adapters/driving/tui/views/reassign"
	"github.com/digitaldataco/fabrexlens/internal/core/domain"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driving"
)

// intervalStep is the increment applied by the interval keybindings.
const intervalStep = 5 * time.Second

// App is the main TUI application. It implements tea.Model for use with
// Bubbletea.
type App struct {
	// worker is the background execution core.
	worker driving.Worker

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the keybindings.
	keymap *keymap.KeyMap

	// dashboardView renders the latest snapshot.
	dashboardView *dashboard.View

	// reassignView is the endpoint reassignment form.
	reassignView *reassign.View

	// activityLog records worker outcomes for the activity panel.
	activityLog *activity.Log

	// statusBar shows polling state and snapshot freshness.
	statusBar *status.Bar

	// currentPanel tracks which panel is active.
	currentPanel messages.PanelType

	// polling mirrors the scheduler state as acknowledged by the worker.
	polling bool

	// interval is the polling interval currently in effect or pending.
	interval time.Duration

	// err holds the last fatal error.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates the first WindowSizeMsg has arrived.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the TUI application around a running worker.
func NewApp(worker driving.Worker, pollInterval time.Duration) *App {
	s := styles.DefaultStyles()

	return &App{
		worker:        worker,
		styles:        s,
		keymap:        keymap.DefaultKeyMap(),
		dashboardView: dashboard.NewView(s),
		reassignView:  reassign.NewView(s),
		activityLog:   activity.NewLog(s),
		statusBar:     status.NewBar(s, nil),
		currentPanel:  messages.PanelDashboard,
		interval:      domain.ClampInterval(pollInterval),
	}
}

// Init implements tea.Model. Polling starts immediately at the configured
// interval; the first snapshot arrives as a worker event.
func (a *App) Init() tea.Cmd {
	a.dashboardView.SetRefreshing(true)
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("fabrexlens"),
		a.dashboardView.Init(),
		a.submit(domain.StartPolling{Interval: a.interval}),
		a.listen(),
	)
}

// listen returns a command that waits for the next worker event. It is
// re-issued after every received event so the stream is drained for the
// lifetime of the program.
func (a *App) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.worker.Events()
		if !ok {
			return messages.WorkerClosed{}
		}
		return messages.WorkerEvent{Event: ev}
	}
}

// submit returns a command that enqueues a worker command.
func (a *App) submit(cmd domain.Command) tea.Cmd {
	return func() tea.Msg {
		if err := a.worker.Submit(cmd); err != nil {
			return messages.SubmitFailed{Err: err}
		}
		return nil
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		contentHeight := msg.Height - 3
		a.dashboardView.SetDimensions(msg.Width, contentHeight)
		a.reassignView.SetDimensions(msg.Width, contentHeight)
		a.activityLog.SetDimensions(msg.Width, contentHeight)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		// The form owns key input while it is open, except for ctrl+c.
		if a.currentPanel == messages.PanelReassign && msg.String() != "ctrl+c" {
			var cmd tea.Cmd
			a.reassignView, cmd = a.reassignView.Update(msg)
			return a, cmd
		}
		return a.handleKey(msg)

	case reassign.Submitted:
		a.currentPanel = messages.PanelDashboard
		a.activityLog.Add(activity.LevelInfo, "reassignment submitted: %s -> %s",
			msg.Command.EndpointID, msg.Command.TargetSupernodeID)
		return a, a.submit(msg.Command)

	case reassign.Cancelled:
		a.currentPanel = messages.PanelDashboard
		return a, nil

	case messages.WorkerEvent:
		cmd := a.foldEvent(msg.Event)
		return a, tea.Batch(cmd, a.listen())

	case messages.WorkerClosed:
		return a, tea.Quit

	case messages.SubmitFailed:
		a.err = msg.Err
		a.statusBar.SetMessage(msg.Err.Error())
		a.activityLog.Add(activity.LevelError, "command rejected: %v", msg.Err)
		return a, nil
	}

	// Spinner ticks and other component messages go to the dashboard.
	var cmd tea.Cmd
	a.dashboardView, cmd = a.dashboardView.Update(msg)
	return a, cmd
}

// handleKey dispatches a key press against the keymap.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(keyStr, a.keymap.Help):
		if a.currentPanel == messages.PanelHelp {
			a.currentPanel = messages.PanelDashboard
		} else {
			a.currentPanel = messages.PanelHelp
		}
		return a, nil

	case keymap.Matches(keyStr, a.keymap.Activity):
		if a.currentPanel == messages.PanelActivity {
			a.currentPanel = messages.PanelDashboard
		} else {
			a.currentPanel = messages.PanelActivity
		}
		return a, nil

	case keymap.Matches(keyStr, a.keymap.Back):
		a.currentPanel = messages.PanelDashboard
		a.statusBar.SetMessage("")
		return a, nil

	case keymap.Matches(keyStr, a.keymap.Reassign):
		a.reassignView.Reset()
		a.currentPanel = messages.PanelReassign
		return a, a.reassignView.Init()

	case keymap.Matches(keyStr, a.keymap.Refresh):
		a.dashboardView.SetRefreshing(true)
		return a, a.submit(domain.RefreshDashboard{})

	case keymap.Matches(keyStr, a.keymap.TogglePolling):
		if a.polling {
			return a, a.submit(domain.StopPolling{})
		}
		return a, a.submit(domain.StartPolling{Interval: a.interval})

	case keymap.Matches(keyStr, a.keymap.IntervalUp):
		a.interval += intervalStep
		return a, a.updateInterval()

	case keymap.Matches(keyStr, a.keymap.IntervalDown):
		// Step down but stay on the floor; ClampInterval would substitute
		// the default for a non-positive value.
		next := a.interval - intervalStep
		if next < domain.MinPollInterval {
			next = domain.MinPollInterval
		}
		a.interval = next
		return a, a.updateInterval()
	}

	return a, nil
}

// updateInterval pushes the locally adjusted interval to the worker. When
// the scheduler is idle the worker stores it without an acknowledgement,
// so the status bar is updated here as well.
func (a *App) updateInterval() tea.Cmd {
	a.statusBar.SetPolling(a.polling, a.interval)
	return a.submit(domain.UpdatePolling{Interval: a.interval})
}

// foldEvent applies one worker event to the view state.
func (a *App) foldEvent(ev domain.Event) tea.Cmd {
	switch e := ev.(type) {
	case domain.SnapshotUpdated:
		a.dashboardView.SetSnapshot(e.Snapshot)
		stale := len(e.Snapshot.StaleDomains())
		a.statusBar.SetSnapshot(e.Snapshot.TakenAt, stale)
		a.statusBar.SetMessage("")
		if stale > 0 {
			a.activityLog.Add(activity.LevelWarn, "snapshot updated, %d service(s) stale", stale)
		} else {
			a.activityLog.Add(activity.LevelInfo, "snapshot updated")
		}

	case domain.SnapshotFailed:
		a.dashboardView.SetRefreshing(false)
		a.statusBar.SetMessage(fmt.Sprintf("snapshot failed: %v", e.Err))
		a.activityLog.Add(activity.LevelError, "snapshot failed: %v", e.Err)

	case domain.PollingStarted:
		a.polling = true
		a.interval = e.Interval
		a.statusBar.SetPolling(true, e.Interval)
		a.activityLog.Add(activity.LevelInfo, "polling every %s", e.Interval)

	case domain.PollingStopped:
		a.polling = false
		a.statusBar.SetPolling(false, a.interval)
		a.activityLog.Add(activity.LevelInfo, "polling stopped")

	case domain.ReassignmentCompleted:
		a.activityLog.Add(activity.LevelInfo, "reassignment %s: %s",
			e.Result.RequestID, e.Result.Status)

	case domain.ReassignmentFailed:
		a.activityLog.Add(activity.LevelError, "reassignment failed (%s): %v",
			e.ResourceKey, e.Err)

	case domain.CredentialIssue:
		a.statusBar.SetMessage(fmt.Sprintf("credential issue: %s", e.Key))
		a.activityLog.Add(activity.LevelWarn, "credential issue for %s: %v", e.Key, e.Err)
	}

	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	header := a.styles.Title.Render("FabreXLens") +
		a.styles.Muted.Render("  fabric · workloads · supernodes")

	var body string
	switch a.currentPanel {
	case messages.PanelActivity:
		body = a.activityLog.View()
	case messages.PanelHelp:
		body = a.viewHelp()
	case messages.PanelReassign:
		body = a.reassignView.View()
	default:
		body = a.dashboardView.View()
	}

	return header + "\n\n" + body + "\n" + a.statusBar.View()
}

// viewHelp renders the keybinding reference.
func (a *App) viewHelp() string {
	var b []byte
	b = append(b, a.styles.Subtitle.Render("Key bindings")...)
	b = append(b, "\n\n"...)
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b = append(b, fmt.Sprintf("  %-8s %s\n", h.Key, h.Desc)...)
		}
		b = append(b, '\n')
	}
	b = append(b, a.styles.Help.Render("[esc] back to dashboard")...)
	return string(b)
}

// CurrentPanel returns the active panel type.
func (a *App) CurrentPanel() messages.PanelType {
	return a.currentPanel
}

// Polling reports the acknowledged scheduler state.
func (a *App) Polling() bool {
	return a.polling
}

// Interval returns the polling interval currently in effect or pending.
func (a *App) Interval() time.Duration {
	return a.interval
}

// Snapshot returns the currently displayed snapshot.
func (a *App) Snapshot() *domain.Snapshot {
	return a.dashboardView.Snapshot()
}

// ActivityLog exposes the activity log for inspection.
func (a *App) ActivityLog() *activity.Log {
	return a.activityLog
}

// Err returns the last fatal error.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.dashboardView.SetDimensions(width, height)
	a.reassignView.SetDimensions(width, height)
	a.activityLog.SetDimensions(width, height)
	a.statusBar.SetWidth(width)
}

// Run starts the dashboard and blocks until the user quits, then shuts the
// worker down within a bounded grace period.
func Run(worker driving.Worker, pollInterval time.Duration) error {
	app := NewApp(worker, pollInterval)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, runErr := p.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := worker.Shutdown(ctx); err != nil && runErr == nil {
		return fmt.Errorf("shutting down worker: %w", err)
	}
	return runErr
}
