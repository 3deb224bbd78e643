package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/pvecheck/internal/config"
	"github.com/dm/pvecheck/internal/model"
)

// minPollTimeout bounds how little time a single round may be given.
const minPollTimeout = 5 * time.Second

// Runner evaluates a set of profiles. *engine.Driver satisfies it.
type Runner interface {
	Run(ctx context.Context, profiles []config.Profile) model.Report
}

// App is the root Bubble Tea model for watch mode.
type App struct {
	ctx          context.Context
	runner       Runner
	profiles     []config.Profile
	pollInterval time.Duration

	// Poll state
	fetching    bool // true while a pollCmd goroutine is in-flight
	report      *model.Report
	history     *model.SeverityHistory
	lastUpdated time.Time
	lastElapsed time.Duration
	tickGen     int // only a TickMsg carrying the current generation starts a poll

	// Layout
	width, height int

	// UI state
	selected int
	showHelp bool
	spinner  spinner.Model
	help     help.Model
}

// NewApp creates an App that evaluates profiles with r every interval.
// Every round runs under ctx, so cancelling it aborts in-flight API calls.
func NewApp(ctx context.Context, r Runner, profiles []config.Profile, interval time.Duration) *App {
	return &App{
		ctx:          ctx,
		runner:       r,
		profiles:     profiles,
		pollInterval: interval,
		history:      model.NewSeverityHistory(0),
		fetching:     true, // Init() always issues an immediate pollCmd
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StyleDim)),
		help:         help.New(),
	}
}

// Init implements tea.Model. Starts the first round immediately on launch.
func (app *App) Init() tea.Cmd {
	return tea.Batch(app.spinner.Tick, pollCmd(app.ctx, app.runner, app.profiles, app.pollInterval))
}

// Update implements tea.Model.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height

	case ReportMsg:
		app.fetching = false
		r := msg.Report
		app.report = &r
		app.history.Push(model.HistoryPoint{
			Timestamp: r.StartedAt,
			Severity:  r.Final.Severity,
			Problems:  problemCount(r),
		})
		app.lastUpdated = r.StartedAt.Add(msg.Elapsed)
		app.lastElapsed = msg.Elapsed
		app.clampSelection()
		app.tickGen++
		return app, tickCmd(app.pollInterval, app.tickGen)

	case TickMsg:
		if msg.gen != app.tickGen {
			return app, nil
		}
		return app, app.startPoll()

	case spinner.TickMsg:
		if !app.fetching {
			return app, nil
		}
		var cmd tea.Cmd
		app.spinner, cmd = app.spinner.Update(msg)
		return app, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return app, tea.Quit
		case key.Matches(msg, keys.Refresh):
			return app, app.startPoll()
		case key.Matches(msg, keys.Up):
			if app.selected > 0 {
				app.selected--
			}
		case key.Matches(msg, keys.Down):
			app.selected++
			app.clampSelection()
		case key.Matches(msg, keys.Help):
			app.showHelp = !app.showHelp
		}
	}

	return app, nil
}

// View implements tea.Model. Renders the full TUI.
func (app *App) View() string {
	parts := []string{renderHeader(app), renderHistory(app)}
	if t := renderProfileTable(app); t != "" {
		parts = append(parts, t)
	}
	if d := renderDetail(app); d != "" {
		parts = append(parts, d)
	}
	parts = append(parts, renderFooter(app))

	return strings.Join(parts, "\n")
}

// startPoll begins a new round unless one is already running.
func (app *App) startPoll() tea.Cmd {
	if app.fetching {
		return nil
	}
	app.fetching = true
	return tea.Batch(app.spinner.Tick, pollCmd(app.ctx, app.runner, app.profiles, app.pollInterval))
}

func (app *App) clampSelection() {
	n := 0
	if app.report != nil {
		n = len(app.report.Profiles)
	}
	if app.selected >= n {
		app.selected = n - 1
	}
	if app.selected < 0 {
		app.selected = 0
	}
}

// selectedProfile returns the outcome under the cursor, if any.
func (app *App) selectedProfile() (model.ProfileOutcome, bool) {
	if app.report == nil || app.selected >= len(app.report.Profiles) {
		return model.ProfileOutcome{}, false
	}
	return app.report.Profiles[app.selected], true
}

// tickCmd schedules the next poll after duration d for tick generation gen.
func tickCmd(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg{At: t, gen: gen}
	})
}

// pollCmd runs one evaluation round and returns a ReportMsg. The round may
// take at most the poll interval, but never less than minPollTimeout.
func pollCmd(parent context.Context, r Runner, profiles []config.Profile, interval time.Duration) tea.Cmd {
	return func() tea.Msg {
		timeout := max(interval, minPollTimeout)
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		start := time.Now()
		report := r.Run(ctx, profiles)
		return ReportMsg{Report: report, Elapsed: time.Since(start)}
	}
}

// problemCount is the number of non-OK findings over all profiles.
func problemCount(r model.Report) int {
	n := 0
	for _, po := range r.Profiles {
		n += countProblems(po.Findings)
	}
	return n
}
