package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	transcript "github.com/agentwire/agentwire/core"
)

var (
	promptStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	toolStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	transferStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type snapshotMsg struct {
	snapshot transcript.Snapshot
}

type turnDoneMsg struct {
	turn *transcript.Turn
	err  error
}

type model struct {
	session *transcript.Session
	prompt  string

	spinner  spinner.Model
	snapshot transcript.Snapshot
	turn     *transcript.Turn
	err      error
	width    int

	snapshots chan transcript.Snapshot
	done      chan turnDoneMsg
	cancel    context.CancelFunc
}

func newModel(session *transcript.Session, prompt string) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &model{
		session:   session,
		prompt:    prompt,
		spinner:   s,
		width:     80,
		snapshots: make(chan transcript.Snapshot, 16),
		done:      make(chan turnDoneMsg, 1),
	}
}

func (m *model) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	return tea.Batch(
		m.spinner.Tick,
		m.sendCmd(ctx),
		m.waitSnapshotCmd(),
	)
}

// sendCmd runs the turn in the background; snapshots arrive through the
// channel so rendering never blocks the consumer.
func (m *model) sendCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		go func() {
			turn, err := m.session.Send(ctx, m.prompt,
				transcript.WithSnapshotCallback(func(snapshot transcript.Snapshot) {
					select {
					case m.snapshots <- snapshot:
					case <-ctx.Done():
					}
				}),
			)
			m.done <- turnDoneMsg{turn: turn, err: err}
			close(m.snapshots)
		}()
		return nil
	}
}

func (m *model) waitSnapshotCmd() tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-m.snapshots
		if !ok {
			return <-m.done
		}
		return snapshotMsg{snapshot: snapshot}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.session.Cancel()
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case snapshotMsg:
		m.snapshot = msg.snapshot
		return m, m.waitSnapshotCmd()
	case turnDoneMsg:
		m.turn = msg.turn
		m.err = msg.err
		if msg.turn != nil {
			m.snapshot = msg.turn.Snapshot
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) View() string {
	var view strings.Builder

	view.WriteString(promptStyle.Render("> "+m.prompt) + "\n\n")

	for _, block := range m.snapshot.Blocks {
		switch block.Kind {
		case transcript.BlockText:
			view.WriteString(wordwrap.String(block.Text, m.width) + "\n")
		case transcript.BlockTool:
			view.WriteString(toolStyle.Render(renderTool(block.Tool)) + "\n")
		case transcript.BlockTransfer:
			view.WriteString(transferStyle.Render("⇢ transferred to "+block.Agent) + "\n")
		case transcript.BlockError:
			view.WriteString(errorStyle.Render("✗ "+block.Text) + "\n")
		}
	}

	if !m.snapshot.Sealed && m.err == nil {
		view.WriteString("\n" + m.spinner.View() + " streaming (q to cancel)\n")
	}
	if m.err != nil {
		view.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	if m.turn != nil {
		view.WriteString("\n" + footerStyle.Render(renderFooter(m.turn)) + "\n")
	}

	return view.String()
}

func renderTool(tool *transcript.ToolInvocation) string {
	glyph := "…"
	if tool.Status == transcript.ToolStatusSuccess {
		glyph = "✓"
	}
	line := fmt.Sprintf("%s %s", glyph, tool.Name)
	if tool.Result != "" {
		line += " → " + firstLine(tool.Result)
	}
	return line
}

func renderFooter(turn *transcript.Turn) string {
	meta := turn.Metadata
	parts := []string{fmt.Sprintf("elapsed %s", meta.Elapsed.Round(time.Millisecond))}
	if meta.Usage.TotalTokens > 0 {
		parts = append(parts, fmt.Sprintf("tokens %d in / %d out", meta.Usage.InputTokens, meta.Usage.OutputTokens))
	}
	if meta.StopReason != "" {
		parts = append(parts, "stop: "+meta.StopReason)
	}
	return strings.Join(parts, "  ·  ")
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}
