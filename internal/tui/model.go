// Package tui is the interactive chat surface. It owns the append-only
// session log and passes it to the pipeline on every request.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"infraguard/internal/domain"
	"infraguard/internal/prompt"
)

// AnswerPort is the TUI-facing subset of the RAG service.
type AnswerPort interface {
	Answer(ctx context.Context, question string, history []domain.Turn, mode prompt.Mode) (domain.Answer, error)
}

type answerMsg struct {
	answer  domain.Answer
	latency time.Duration
	err     error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	service    AnswerPort
	input      textinput.Model
	viewport   viewport.Model
	history    []domain.Turn
	transcript []string
	mode       prompt.Mode
	status     string
	waiting    bool
	ready      bool
}

// New creates a new chat model. mode selects the initial operating mode;
// tab switches it between turns.
func New(service AnswerPort, mode prompt.Mode) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your infrastructure..."
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		mode:     mode,
		status:   "Ready. Type a question, tab switches mode.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2 // header + mode line
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = errorStyle.Render("Error: " + msg.err.Error())
			m.transcript = append(m.transcript, errorStyle.Render("(no answer: "+msg.err.Error()+")"))
		} else {
			m.history = append(m.history, domain.Turn{Role: domain.RoleAssistant, Content: msg.answer.Text})
			m.transcript = append(m.transcript, renderAnswer(msg.answer))
			m.status = fmt.Sprintf("Answered in %.2fs", msg.latency.Seconds())
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if !m.waiting {
				if m.mode.Name == prompt.Architect.Name {
					m.mode = prompt.Auditor
				} else {
					m.mode = prompt.Architect
				}
				m.status = "Mode: " + m.mode.Name
			}
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.waiting {
				return m, nil
			}
			// snapshot the log before appending the in-flight question so
			// it is not duplicated in both history and the question slot
			hist := make([]domain.Turn, len(m.history))
			copy(hist, m.history)
			m.history = append(m.history, domain.Turn{Role: domain.RoleUser, Content: q})
			m.transcript = append(m.transcript, userStyle.Render("You ("+m.mode.Name+"): ")+q)
			m.input.SetValue("")
			m.waiting = true
			m.status = "Thinking..."
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, askCmd(m.service, q, hist, m.mode)
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current transcript.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("InfraOps Guardian")
	modeLine := modeStyle.Render("mode: " + m.mode.Name)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + modeLine + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "No questions yet."
	}
	return strings.Join(m.transcript, "\n\n")
}

func askCmd(service AnswerPort, question string, history []domain.Turn, mode prompt.Mode) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ans, err := service.Answer(context.Background(), question, history, mode)
		return answerMsg{answer: ans, latency: time.Since(start), err: err}
	}
}

func renderAnswer(ans domain.Answer) string {
	var b strings.Builder
	b.WriteString(ans.Text)
	if len(ans.Diagrams) > 0 {
		b.WriteString("\n")
		for _, d := range ans.Diagrams {
			b.WriteString("\n" + diagramStyle.Render(d))
		}
	}
	if len(ans.Sources) > 0 {
		b.WriteString("\n" + sourceStyle.Render("Sources: "+strings.Join(ans.Sources, ", ")))
	}
	return b.String()
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	sourceStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	diagramStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Foreground(lipgloss.Color("13"))
	modeStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
