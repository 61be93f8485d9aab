// Package tui is the interactive gallery/detail browser.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rcliao/country-explorer/internal/explorer"
	"github.com/rcliao/country-explorer/internal/render"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Bold(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

type loadedMsg struct{ err error }

type selectedMsg struct {
	name string
	err  error
}

// Model is the bubbletea model. Explorer owns all domain state; Model only
// tracks the cursor, the region picker and the search box.
type Model struct {
	ctx context.Context
	exp *explorer.Explorer

	input     textinput.Model
	regions   []string // regions[0] is "" (no filter)
	regionIdx int
	cursor    int
	busy      bool
	height    int
}

// New creates a browser over exp.
func New(ctx context.Context, exp *explorer.Explorer) Model {
	in := textinput.New()
	in.Placeholder = "Search for a country…"
	in.Prompt = "Search: "
	in.Focus()
	return Model{
		ctx:     ctx,
		exp:     exp,
		input:   in,
		regions: []string{""},
		busy:    true,
	}
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, exp *explorer.Explorer) error {
	_, err := tea.NewProgram(New(ctx, exp), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load())
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.exp.Load(m.ctx)}
	}
}

func (m Model) choose(name string) tea.Cmd {
	return func() tea.Msg {
		return selectedMsg{name: name, err: m.exp.Select(m.ctx, name)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		// Failures are already logged by the explorer; stay on the gallery.
		m.busy = false
		m.regions = append([]string{""}, m.exp.Regions()...)
		return m, nil

	case selectedMsg:
		if !errors.Is(msg.err, explorer.ErrStale) {
			m.busy = false
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.exp.State().View() == explorer.Detail {
			return m.updateDetail(msg)
		}
		return m.updateGallery(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "b":
		m.exp.Back()
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateGallery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	displayed := m.exp.State().Displayed

	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.cursor < len(displayed)-1 {
			m.cursor++
		}
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab:
		step := 1
		if msg.Type == tea.KeyShiftTab {
			step = len(m.regions) - 1
		}
		m.regionIdx = (m.regionIdx + step) % len(m.regions)
		m.exp.SetRegion(m.regions[m.regionIdx])
		m.cursor = 0
		return m, nil
	case tea.KeyEnter:
		if m.busy || m.cursor >= len(displayed) {
			return m, nil
		}
		m.busy = true
		return m, m.choose(displayed[m.cursor].Name.Common)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.exp.SetQuery(m.input.Value())
	m.cursor = clamp(m.cursor, len(m.exp.State().Displayed))
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Where in the world?"))
	b.WriteString("\n\n")

	st := m.exp.State()
	if st.View() == explorer.Detail {
		b.WriteString(render.DetailText(*st.Selection, st.Borders))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc: back • q: quit"))
		return b.String()
	}

	region := m.regions[m.regionIdx]
	if region == "" {
		region = "All (curated)"
	}
	fmt.Fprintf(&b, "%s\nRegion: %s\n\n", m.input.View(), region)

	if m.busy {
		b.WriteString("Loading…\n")
	}
	if len(st.Displayed) == 0 && !m.busy {
		b.WriteString("No countries match.\n")
	}

	start, end := window(m.cursor, len(st.Displayed), m.height-8)
	for i := start; i < end; i++ {
		c := st.Displayed[i]
		line := fmt.Sprintf("%s  (%s, pop. %s, capital %s)",
			c.Name.Common, c.Region, render.Population(c.Population), capital(c.FirstCapital()))
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("type to search • tab: region • ↑/↓: move • enter: details • esc: quit"))
	return b.String()
}

func capital(s string) string {
	if s == "" {
		return render.Missing
	}
	return s
}

func clamp(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// window returns the visible [start, end) range around cursor. size <= 0
// shows everything.
func window(cursor, n, size int) (int, int) {
	if size <= 0 || n <= size {
		return 0, n
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > n {
		start = n - size
	}
	return start, start + size
}
