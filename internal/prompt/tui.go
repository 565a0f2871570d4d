package prompt

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/worktimer/internal/model"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	None   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	None:   key.NewBinding(key.WithKeys("n", "0"), key.WithHelp("n", "no project")),
	Quit:   key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "cancel")),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
	itemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(1).Bold(true).Foreground(lipgloss.Color("#FFE66D"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// TUIPicker shows a selectable project list in the terminal.
type TUIPicker struct {
	In  io.Reader
	Out io.Writer
}

// Pick runs the picker until the user selects or cancels.
func (p *TUIPicker) Pick(ctx context.Context, projects []model.Project, defaultID *int) (*int, error) {
	m := newPickerModel(projects, defaultID)
	prog := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(p.In), tea.WithOutput(p.Out))
	final, err := prog.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("project picker: %w", err)
	}
	res := final.(pickerModel)
	if res.aborted {
		return nil, ErrAborted
	}
	return res.choice, nil
}

// pickerModel lists "No project" first, followed by the projects.
type pickerModel struct {
	projects []model.Project
	cursor   int
	choice   *int
	done     bool
	aborted  bool
}

func newPickerModel(projects []model.Project, defaultID *int) pickerModel {
	m := pickerModel{projects: projects}
	if defaultID != nil {
		for i, p := range projects {
			if p.ID == *defaultID {
				m.cursor = i + 1
			}
		}
	}
	return m
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, keys.Quit):
		m.aborted = true
		return m, tea.Quit
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < len(m.projects) {
			m.cursor++
		}
	case key.Matches(km, keys.None):
		m.choice = nil
		m.done = true
		return m, tea.Quit
	case key.Matches(km, keys.Select):
		if m.cursor > 0 {
			id := m.projects[m.cursor-1].ID
			m.choice = &id
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Select project"))
	b.WriteString("\n")
	labels := []string{"No project"}
	for _, p := range m.projects {
		labels = append(labels, fmt.Sprintf("%d  %s", p.ID, p.Name))
	}
	for i, l := range labels {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + l))
		} else {
			b.WriteString(itemStyle.Render(l))
		}
		b.WriteString("\n")
	}
	help := []string{}
	for _, k := range []key.Binding{keys.Up, keys.Down, keys.Select, keys.None, keys.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	b.WriteString("\n")
	return b.String()
}
