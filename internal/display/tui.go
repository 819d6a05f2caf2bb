package display

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

type tickMsg time.Time

// model is the bubbletea model behind the terminal display.
type model struct {
	ticker Ticker
	status StatusFunc
	period time.Duration
	canvas string
	frames uint64
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.period, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return m.tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tickMsg:
		if sample, redraw := m.ticker.Tick(time.Time(msg)); redraw {
			m.canvas = Render(sample)
			m.frames++
		}
		return m, m.tick()
	}
	return m, nil
}

func (m model) View() string {
	view := canvasStyle.Render(m.canvas)
	if m.status != nil {
		view = lipgloss.JoinVertical(lipgloss.Left, view, statusStyle.Render(m.status()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, view, helpStyle.Render("q to quit"))
}

// TUI draws snapshots in the terminal with true-colour half blocks.
type TUI struct {
	model model
}

func NewTUI(cfg Config, t Ticker, status StatusFunc) *TUI {
	return &TUI{model: model{ticker: t, status: status, period: cfg.Frame()}}
}

func (t *TUI) Run(ctx context.Context) error {
	p := tea.NewProgram(t.model, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
