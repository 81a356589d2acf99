// Package ui is an interactive pager over the ingest sources: one tab per
// source, fetched on first view and shown in a scrollable viewport.
package ui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/ingest/internal/report"
	"github.com/fragmede/ingest/internal/source"
	"github.com/fragmede/ingest/internal/ui/messages"
	"github.com/fragmede/ingest/internal/ui/statusbar"
)

// ResultFunc observes every finished fetch, for example to log it.
type ResultFunc func(name string, rec *source.Record, err error, took time.Duration)

type result struct {
	rec *source.Record
	err error
}

// App is the root Bubble Tea model.
type App struct {
	sources []source.Source
	active  int
	results map[int]result
	loading map[int]bool

	viewport  viewport.Model
	spinner   spinner.Model
	statusBar statusbar.Model
	theme     report.Theme
	wrap      bool

	ctx      context.Context
	onResult ResultFunc

	width  int
	height int
}

// NewApp creates the pager starting on sources[start]. ctx bounds every
// fetch; onResult may be nil.
func NewApp(ctx context.Context, sources []source.Source, start int, onResult ResultFunc) *App {
	if start < 0 || start >= len(sources) {
		start = 0
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(report.Accent)

	vp := viewport.New(0, 0)
	vp.KeyMap.Up = Keys.Up
	vp.KeyMap.Down = Keys.Down
	vp.KeyMap.PageUp = Keys.PageUp
	vp.KeyMap.PageDown = Keys.PageDown

	sb := statusbar.New(source.Names(sources))
	sb.SetActive(start)

	return &App{
		sources:   sources,
		active:    start,
		results:   make(map[int]result),
		loading:   make(map[int]bool),
		viewport:  vp,
		spinner:   sp,
		statusBar: sb,
		theme:     report.NewTheme(lipgloss.DefaultRenderer()),
		wrap:      true,
		ctx:       ctx,
		onResult:  onResult,
	}
}

// Init starts loading the first source.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.load(a.active))
}

func (a *App) load(i int) tea.Cmd {
	if len(a.sources) == 0 || a.loading[i] {
		return nil
	}
	a.loading[i] = true
	a.refreshContent()

	src := a.sources[i]
	ctx := a.ctx
	return func() tea.Msg {
		start := time.Now()
		rec, err := src.Fetch(ctx)
		return messages.RecordLoadedMsg{Source: src.Name(), Record: rec, Err: err, Took: time.Since(start)}
	}
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = msg.Width
		a.viewport.Height = max(msg.Height-1, 1) // Reserve 1 line for status bar.
		a.statusBar.SetSize(msg.Width)
		a.refreshContent()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, Keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, Keys.NextTab):
			return a, a.switchSource(a.active + 1)
		case key.Matches(msg, Keys.PrevTab):
			return a, a.switchSource(a.active - 1)
		case key.Matches(msg, Keys.Refresh):
			delete(a.results, a.active)
			return a, a.load(a.active)
		case key.Matches(msg, Keys.Wrap):
			a.wrap = !a.wrap
			a.refreshContent()
			return a, nil
		case key.Matches(msg, Keys.OpenURL):
			if r, ok := a.results[a.active]; ok && r.rec != nil && r.rec.URL != "" {
				go openBrowser(r.rec.URL)
				a.statusBar.SetStatus("Opening: "+r.rec.URL, false)
			}
			return a, nil
		case key.Matches(msg, Keys.Home):
			a.viewport.GotoTop()
			return a, nil
		case key.Matches(msg, Keys.End):
			a.viewport.GotoBottom()
			return a, nil
		}

	case messages.SwitchSourceMsg:
		return a, a.switchSource(msg.Index)

	case messages.RefreshMsg:
		delete(a.results, a.active)
		return a, a.load(a.active)

	case messages.RecordLoadedMsg:
		i := a.indexOf(msg.Source)
		if i < 0 {
			return a, nil
		}
		delete(a.loading, i)
		a.results[i] = result{rec: msg.Record, err: msg.Err}
		if a.onResult != nil {
			a.onResult(msg.Source, msg.Record, msg.Err, msg.Took)
		}
		if i == a.active {
			a.statusBar.SetStatus(statusText(msg), msg.Err != nil && !report.IsNoContent(msg.Err))
			a.refreshContent()
			a.viewport.GotoTop()
		}
		return a, nil

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text, msg.IsError)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		if a.loading[a.active] {
			a.statusBar.SetBusy(a.spinner.View())
			a.refreshContent()
		} else {
			a.statusBar.SetBusy("")
		}
		return a, cmd
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// View renders the application.
func (a *App) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, a.viewport.View(), a.statusBar.View())
}

func (a *App) switchSource(i int) tea.Cmd {
	n := len(a.sources)
	if n == 0 {
		return nil
	}
	a.active = (i%n + n) % n
	a.statusBar.SetActive(a.active)
	a.statusBar.SetStatus("", false)
	a.refreshContent()
	a.viewport.GotoTop()
	if _, ok := a.results[a.active]; ok {
		return nil
	}
	return a.load(a.active)
}

func (a *App) refreshContent() {
	if len(a.sources) == 0 {
		a.viewport.SetContent("No sources configured.")
		return
	}
	name := a.sources[a.active].Name()
	r, ok := a.results[a.active]
	switch {
	case a.loading[a.active]:
		a.viewport.SetContent(fmt.Sprintf("%s Fetching %s...", a.spinner.View(), name))
	case !ok:
		a.viewport.SetContent("")
	case r.err != nil:
		a.viewport.SetContent(report.RenderError(name, r.err, a.theme))
	default:
		width := 0
		if a.wrap {
			width = a.width - 1
		}
		a.viewport.SetContent(report.Render(r.rec, width, a.theme))
	}
}

func (a *App) indexOf(name string) int {
	for i, s := range a.sources {
		if s.Name() == name {
			return i
		}
	}
	return -1
}

func statusText(msg messages.RecordLoadedMsg) string {
	took := msg.Took.Round(time.Millisecond)
	switch {
	case msg.Err == nil:
		return fmt.Sprintf("%s loaded in %s", msg.Source, took)
	case report.IsNoContent(msg.Err):
		return msg.Source + ": " + source.NoContent
	default:
		return msg.Source + " failed"
	}
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		return
	}
	cmd.Run()
}
