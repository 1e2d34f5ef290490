// internal/tui/model.go
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
)

// PlayFunc starts a scenario. It must return promptly; playback runs in
// the background and reports through the Feed.
type PlayFunc func(scenarioID string, restart bool)

// feedChangedMsg is sent when the transcript changed.
type feedChangedMsg struct{}

// Model is the Bubble Tea model of the terminal player.
type Model struct {
	feed      *Feed
	play      PlayFunc
	scenarios []models.Scenario
	index     int

	viewport viewport.Model
	ready    bool
	snapshot transcript.Snapshot
	scrolls  int
}

// NewModel creates a player over scenarios. start is the index of the
// scenario to play first, or -1 to wait for a key.
func NewModel(feed *Feed, scenarios []models.Scenario, play PlayFunc, start int) *Model {
	m := &Model{
		feed:      feed,
		play:      play,
		scenarios: scenarios,
		index:     start,
		snapshot:  feed.Snapshot(),
	}
	if m.index >= len(scenarios) {
		m.index = -1
	}
	return m
}

// Run starts the terminal program and blocks until the viewer quits.
func Run(m *Model) error {
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := prog.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	if m.index >= 0 {
		m.play(m.scenarios[m.index].ID, false)
	}
	return m.waitForChange()
}

// waitForChange returns a command that waits for the next feed change.
func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.feed.Changed()
		return feedChangedMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case feedChangedMsg:
		m.refresh()
		cmds = append(cmds, m.waitForChange())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "g":
			m.viewport.GotoTop()
		case "G":
			m.viewport.GotoBottom()
		case "n", "right":
			m.step(1)
		case "p", "left":
			m.step(-1)
		case "r":
			if m.snapshot.ControlsEnabled && m.index >= 0 {
				m.play(m.scenarios[m.index].ID, true)
			}
		}

	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.viewport.SetContent(m.render())
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// step plays the next or previous scenario. Ignored while a playback has
// the controls disabled.
func (m *Model) step(delta int) {
	if !m.snapshot.ControlsEnabled || len(m.scenarios) == 0 {
		return
	}
	next := m.index + delta
	if m.index < 0 {
		next = 0
	}
	next = (next + len(m.scenarios)) % len(m.scenarios)
	m.index = next
	m.play(m.scenarios[next].ID, false)
}

func (m *Model) refresh() {
	m.snapshot = m.feed.Snapshot()
	if m.snapshot.Selected != "" {
		for i, s := range m.scenarios {
			if s.ID == m.snapshot.Selected {
				m.index = i
				break
			}
		}
	}
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.render())
	if m.snapshot.Scrolls != m.scrolls {
		m.scrolls = m.snapshot.Scrolls
		m.viewport.GotoBottom()
	}
}

// render draws the transcript at the viewport width.
func (m *Model) render() string {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	snap := m.snapshot
	if snap.Empty || len(snap.Entries) == 0 {
		return emptyStyle.Render(wordwrap.String("Select a scenario to start playback. n/p: next/previous", width))
	}

	var b strings.Builder
	for i, e := range snap.Entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(speakerStyle(e.Role).Render(fmt.Sprintf("%s %s", e.Icon, e.Speaker)))
		b.WriteString("\n")

		body := transcript.PlainText(e.Content)
		if e.Typing {
			body = "…"
		}
		if e.Cursor {
			body += "▍"
		}
		if body != "" {
			b.WriteString(wordwrap.String(body, width))
			b.WriteString("\n")
		}
		for _, s := range e.Snippets {
			b.WriteString(snippetStyle.Render(wordwrap.String(transcript.PlainText(s), max(10, width-2))))
			b.WriteString("\n")
		}
		for _, w := range e.Warnings {
			b.WriteString(warningStyle.Render("⚠ " + w))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) title() string {
	if m.index >= 0 && m.index < len(m.scenarios) {
		s := m.scenarios[m.index]
		return fmt.Sprintf("%s · %s", s.Category, s.Title)
	}
	return "Scenario player"
}

func (m *Model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}

	title := accentTitle(m.snapshot.Accent).Render(m.title())
	line := strings.Repeat("─", max(0, m.viewport.Width-lipgloss.Width(title)))
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, infoStyle.Render(line))

	status := ""
	if fb := m.snapshot.Feedback; fb.Message != "" {
		style, ok := feedbackStyles[string(fb.State)]
		if !ok {
			style = infoStyle
		}
		status = " " + style.Render(fb.Message) + " │"
	}
	help := " q: quit │ n/p: next/prev │ r: restart │ g/G: top/bottom "
	if !m.snapshot.ControlsEnabled {
		help = " q: quit │ g/G: top/bottom "
	}
	footer := status + helpStyle.Render(help)

	return header + "\n" + m.viewport.View() + "\n" + footer
}
