package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docrag/internal/domain"
	"docrag/internal/prompt"
)

// AnswerPort is the TUI-facing subset of the answer pipeline.
type AnswerPort interface {
	Answer(ctx context.Context, query string, topK int) (domain.AnswerResult, error)
}

// Model is the Bubble Tea model for the interactive query client.
type Model struct {
	pipeline AnswerPort
	topK     int
	input    textinput.Model
	viewport viewport.Model
	result   *domain.AnswerResult
	status   string
	cursor   int
	ready    bool
}

// New creates a new TUI model instance.
func New(pipeline AnswerPort, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		pipeline: pipeline,
		topK:     topK,
		input:    ti,
		viewport: vp,
		status:   "Ready. Type a question to search the ingested documents.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header, status, query box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				res, err := m.pipeline.Answer(context.Background(), q, m.topK)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.result = nil
				} else {
					m.status = fmt.Sprintf("Answered in %.0f ms (retrieval %.0f ms, generation %.0f ms)",
						res.TotalLatencyMs, res.RetrievalLatencyMs, res.GenerationLatencyMs)
					m.result = &res
					m.cursor = 0
				}
				m.viewport.SetContent(m.renderResult())
				return m, nil
			}
		case "down":
			if m.result != nil && len(m.result.Chunks) > 0 {
				m.cursor = (m.cursor + 1) % len(m.result.Chunks)
				m.viewport.SetContent(m.renderResult())
				return m, nil
			}
		case "up":
			if m.result != nil && len(m.result.Chunks) > 0 {
				m.cursor = (m.cursor - 1 + len(m.result.Chunks)) % len(m.result.Chunks)
				m.viewport.SetContent(m.renderResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout with the latest answer and sources.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docrag – ask your documents")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	body := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderResult() string {
	if m.result == nil {
		return "No answer yet."
	}
	var b strings.Builder
	b.WriteString(answerStyle.Render("ANSWER"))
	b.WriteString("\n")
	b.WriteString(m.result.Answer)
	b.WriteString("\n\n")
	if len(m.result.Chunks) == 0 {
		return b.String()
	}
	b.WriteString(answerStyle.Render(fmt.Sprintf("SOURCES (%d)", len(m.result.Chunks))))
	b.WriteString("\n")
	for i, c := range m.result.Chunks {
		line := fmt.Sprintf("[%d] %s  similarity=%.3f", i+1, prompt.FormatCitation(c), c.Similarity)
		if i == m.cursor {
			line = highlightStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	selected := m.result.Chunks[m.cursor]
	b.WriteString("\n")
	b.WriteString(selected.Text)
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	answerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
