// cli/cli.go
// Package cli provides the interactive chat interface for the advisor application.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jclermont/advisor/internal/advisor"
	"github.com/jclermont/advisor/internal/appconfig"
	"github.com/jclermont/advisor/internal/llm"
	"github.com/jclermont/advisor/internal/logging"
	"github.com/jclermont/advisor/internal/retriever"
)

// Config represents the shared application configuration for the CLI.
type Config = appconfig.Config

// chatEntry represents a single rendered exchange line in the chat transcript.
type chatEntry struct {
	role    string
	content string
	sources []string
	isError bool
}

// answerMsg is a message sent when the advisor has produced an answer.
type answerMsg struct {
	result advisor.Result
}

// answerErr is a message sent when a question could not be answered. The
// partial result carries any sources that were retrieved before the failure.
type answerErr struct {
	err    error
	result advisor.Result
}

// tickMsg is a message sent at regular intervals, used for the elapsed timer.
type tickMsg time.Time

// model is the main application model for the Bubble Tea UI.
type model struct {
	ctx              context.Context
	config           *Config
	advisor          *advisor.Advisor
	conversation     *advisor.Conversation
	filters          retriever.Filters
	isLoading        bool
	err              error
	textArea         textarea.Model
	viewport         viewport.Model
	spinner          spinner.Model
	entries          []chatEntry
	width, height    int
	requestStartTime time.Time
}

// initialModel creates and initializes a new model with default values.
func initialModel(ctx context.Context, cfg *Config, adv *advisor.Advisor, filters retriever.Filters) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Ask about courses..."
	ta.Focus()
	ta.Prompt = "Question: "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(100, 5)

	return &model{
		ctx:          ctx,
		config:       cfg,
		advisor:      adv,
		conversation: advisor.NewConversation(cfg.HistoryCap()),
		filters:      filters,
		spinner:      s,
		textArea:     ta,
		viewport:     vp,
	}
}

// askCmd creates a Bubble Tea command that sends the question through the
// advisor pipeline and reports the result as a message.
func askCmd(ctx context.Context, adv *advisor.Advisor, question string, filters retriever.Filters, conv *advisor.Conversation, debug bool) tea.Cmd {
	return func() tea.Msg {
		logging.LogEvent("[chat] question: %q", question)
		result, err := adv.Ask(ctx, question, filters, conv)
		if debug && result.Context != "" {
			logging.LogEvent("[chat] assembled context:\n%s", result.Context)
		}
		if err != nil {
			return answerErr{err: err, result: result}
		}
		return answerMsg{result: result}
	}
}

// tickCmd creates a Bubble Tea command that sends a tickMsg at a regular interval.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the Bubble Tea model and returns a command to start the spinner animation.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update is the central update function for the Bubble Tea model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.isLoading {
				return m, nil
			}
			question := strings.TrimSpace(m.textArea.Value())
			if question != "" {
				m.entries = append(m.entries, chatEntry{role: "user", content: question})
				m.textArea.Reset()
				m.isLoading = true
				m.err = nil
				m.requestStartTime = time.Now()
				m.refreshTranscript()
				return m, tea.Batch(m.spinner.Tick, askCmd(m.ctx, m.advisor, question, m.filters, m.conversation, m.config.Debug), tickCmd())
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.textArea.SetWidth(msg.Width - 3)
		headerHeight := 3
		footerHeight := 4
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerHeight - footerHeight
		m.refreshTranscript()

	case answerMsg:
		m.isLoading = false
		m.entries = append(m.entries, chatEntry{
			role:    "advisor",
			content: msg.result.Answer,
			sources: msg.result.Sources,
		})
		m.textArea.Focus()
		m.refreshTranscript()
		return m, nil

	case answerErr:
		m.isLoading = false
		m.entries = append(m.entries, chatEntry{
			role:    "advisor",
			content: describeFailure(msg.err, msg.result),
			sources: msg.result.Sources,
			isError: true,
		})
		m.textArea.Focus()
		m.refreshTranscript()
		return m, nil

	case tickMsg:
		if m.isLoading {
			return m, tickCmd()
		}
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	m.textArea, cmd = m.textArea.Update(msg)
	cmds = append(cmds, cmd)

	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// describeFailure turns a pipeline error into a transcript line. When
// retrieval succeeded but generation did not, the sources are still worth
// showing, so the message says so rather than discarding them.
func describeFailure(err error, result advisor.Result) string {
	if errors.Is(err, llm.ErrUnavailable) && result.RetrievedCount > 0 {
		return fmt.Sprintf("Found %d course(s) but could not generate an answer: %v", result.RetrievedCount, llm.ErrUnavailable)
	}
	return fmt.Sprintf("Could not answer: %v", err)
}

// refreshTranscript re-renders the transcript into the viewport and scrolls
// to the bottom.
func (m *model) refreshTranscript() {
	userStyle := lipgloss.NewStyle().Bold(true)
	advisorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	errorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	sourceStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	var builder strings.Builder
	for _, entry := range m.entries {
		var role string
		switch {
		case entry.isError:
			role = errorStyle.Render("Advisor: ")
		case entry.role == "advisor":
			role = advisorStyle.Render("Advisor: ")
		default:
			role = userStyle.Render("You: ")
		}
		width := m.width - lipgloss.Width(role) - 2
		if width < 10 {
			width = 10
		}
		wrapped := lipgloss.NewStyle().Width(width).Render(entry.content)
		builder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, role, wrapped) + "\n")
		if len(entry.sources) > 0 {
			builder.WriteString(sourceStyle.Render(fmt.Sprintf("  Sources: %s", strings.Join(entry.sources, ", "))) + "\n")
		}
		builder.WriteString("\n")
	}

	m.viewport.SetContent(builder.String())
	m.viewport.GotoBottom()
}

// View renders the application's UI based on the current state of the model.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1)
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	var builder strings.Builder

	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Background(lipgloss.Color("0")).Foreground(lipgloss.Color("255")).Padding(0, 1)

	status := lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render("Advisor:"),
		headerStyle.Render(fmt.Sprintf("Model: %s", m.config.LLMModel)),
		headerStyle.MarginLeft(1).Render(filterBadge(m.filters)),
	)
	help := lipgloss.NewStyle().Render(" (esc to quit)")
	builder.WriteString(status + help + "\n\n")

	builder.WriteString(m.viewport.View())

	if m.isLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		builder.WriteString("\n" + m.spinner.View() + fmt.Sprintf(" Advisor is thinking... %ss", timer))
	} else {
		builder.WriteString("\n" + m.textArea.View())
	}

	return builder.String()
}

// filterBadge renders the active metadata filters for the header line.
func filterBadge(f retriever.Filters) string {
	var parts []string
	if f.Department != "" {
		parts = append(parts, fmt.Sprintf("Department: %s", f.Department))
	}
	if f.Level != "" {
		parts = append(parts, fmt.Sprintf("Level: %s", f.Level))
	}
	if len(parts) == 0 {
		return "Filters: none"
	}
	return strings.Join(parts, " | ")
}

// StartChat initializes and runs the interactive chat TUI. It loads the
// advisor pipeline up front so an absent or unreadable index is reported
// before the screen is taken over.
func StartChat(cfg *appconfig.Config, filters retriever.Filters) error {
	if cfg == nil {
		return fmt.Errorf("configuration is not loaded")
	}

	adv, err := advisor.FromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := initialModel(ctx, cfg, adv, filters)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running chat program: %w", err)
	}
	return nil
}
