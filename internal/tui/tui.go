// Package tui renders the landing in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediashare/internal/consts"
	"mediashare/internal/entity"
	"mediashare/internal/errs"
	"mediashare/internal/service"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type control int

const (
	controlWatch control = iota
	controlDownload
	controlAffiliate
	controlCount
)

type attemptDoneMsg struct {
	attempt entity.Attempt
	err     error
}

type linkOpenedMsg struct {
	err error
}

// stateRefreshMsg reloads the orchestrator state after an attempt was rejected.
type stateRefreshMsg struct{}

// historyLen is how many recent attempts the landing lists.
const historyLen = 3

// Model is the bubbletea model of the terminal landing.
type Model struct {
	ctx     context.Context
	svc     service.Orchestrator
	landing entity.Landing
	state   entity.State
	history []entity.Attempt

	focus    control
	spin     spinner.Model
	notice   string
	year     int
	quitting bool
}

// New returns a landing model focused on the download button.
func New(ctx context.Context, svc service.Orchestrator) Model {
	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = spinnerStyle

	return Model{
		ctx:     ctx,
		svc:     svc,
		landing: svc.Landing(),
		state:   svc.State(),
		history: svc.Attempts(ctx),
		focus:   controlDownload,
		spin:    spin,
		year:    time.Now().Year(),
	}
}

// Run shows the landing until the user quits or ctx is done.
func Run(ctx context.Context, svc service.Orchestrator, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)

	_, err := tea.NewProgram(New(ctx, svc), opts...).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal landing: %w", err)
	}

	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case attemptDoneMsg:
		m.state = m.svc.State()
		m.history = m.svc.Attempts(m.ctx)
		m.notice = ""

		switch {
		case msg.err != nil:
		case msg.attempt.Strategy == entity.StrategyPrimary:
			m.notice = consts.TextSaved + " " + msg.attempt.SavedPath
		case msg.attempt.Strategy == entity.StrategyFallback:
			m.notice = consts.TextOpened
		}

		return m, nil
	case stateRefreshMsg:
		m.state = m.svc.State()

		return m, nil
	case linkOpenedMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
		}

		return m, nil
	case spinner.TickMsg:
		if !m.state.Busy {
			return m, nil
		}

		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true

		return m, tea.Quit
	case "tab", "down", "right":
		m.focus = (m.focus + 1) % controlCount
	case "shift+tab", "up", "left":
		m.focus = (m.focus + controlCount - 1) % controlCount
	case "d":
		return m.download()
	case "w":
		return m, m.openLink(m.svc.Watch)
	case "p":
		return m, m.openLink(m.svc.OpenAffiliate)
	case "enter", " ":
		switch m.focus {
		case controlWatch:
			return m, m.openLink(m.svc.Watch)
		case controlAffiliate:
			return m, m.openLink(m.svc.OpenAffiliate)
		default:
			return m.download()
		}
	}

	return m, nil
}

// download starts an attempt unless one is running; the orchestrator rejects
// overlapping attempts too.
func (m Model) download() (tea.Model, tea.Cmd) {
	if m.state.Busy {
		return m, nil
	}

	m.state.Busy = true
	m.state.ErrorMessage = ""
	m.state.Phase = entity.PhaseDownloading
	m.notice = ""

	ctx, svc, url := m.ctx, m.svc, m.landing.VideoURL

	attempt := func() tea.Msg {
		result, err := svc.AttemptDownload(ctx, url)
		if errors.Is(err, errs.ErrAttemptInFlight) {
			return stateRefreshMsg{}
		}

		return attemptDoneMsg{attempt: result, err: err}
	}

	return m, tea.Batch(m.spin.Tick, attempt)
}

func (m Model) openLink(open func(context.Context) error) tea.Cmd {
	ctx := m.ctx

	return func() tea.Msg {
		return linkOpenedMsg{err: open(ctx)}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(brandStyle.Render(strings.ToUpper(consts.TextBrand)))
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(consts.TextTitle))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(consts.TextSubtitle))
	b.WriteString("\n\n")

	b.WriteString(videoStyle.Render(m.landing.VideoURL))
	b.WriteString("\n")
	b.WriteString(m.button(controlWatch, "▶ "+consts.TextWatch, buttonStyle))
	b.WriteString("\n\n")

	if m.state.ErrorMessage != "" {
		b.WriteString(errorStyle.Render(m.state.ErrorMessage))
		b.WriteString("\n")
	}

	downloadLabel := consts.TextDownload
	downloadStyle := buttonStyle

	if m.state.Busy {
		downloadLabel = m.spin.View() + " " + consts.TextDownloading
		downloadStyle = busyButtonStyle
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		m.button(controlDownload, downloadLabel, downloadStyle),
		" ",
		m.button(controlAffiliate, m.landing.AffiliateLabel, affiliateStyle),
	))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(faintStyle.Render(consts.TextFormat))
	b.WriteString("\n\n")

	if recent := m.recentAttempts(); recent != "" {
		b.WriteString(recent)
		b.WriteString("\n")
	}
	b.WriteString(faintStyle.Render(fmt.Sprintf("© %d %s", m.year, consts.TextRights)))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("d télécharger • w regarder • p inscription • tab naviguer • q quitter"))
	b.WriteString("\n")

	return b.String()
}

// recentAttempts lists the latest attempts, newest first.
func (m Model) recentAttempts() string {
	if len(m.history) == 0 {
		return ""
	}

	lines := []string{consts.TextHistory}

	for i := len(m.history) - 1; i >= 0 && len(lines) <= historyLen; i-- {
		a := m.history[i]

		status := consts.TextStatusFailed

		switch a.Strategy {
		case entity.StrategyPrimary:
			status = consts.TextStatusSaved
		case entity.StrategyFallback:
			status = consts.TextStatusOpened
		}

		lines = append(lines, fmt.Sprintf("%s  %s · %s", a.StartedAt.Format("15:04:05"), a.Filename, status))
	}

	return faintStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) button(c control, label string, style lipgloss.Style) string {
	if m.focus == c && !(c == controlDownload && m.state.Busy) {
		style = focusedButtonStyle
	}

	return style.Render(label)
}
