// Package tui is the interactive question answering screen.
package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kxddry/rag-qa/internal/domain"
	"github.com/kxddry/rag-qa/internal/service"
)

// ExitCommand typed as a question closes the screen.
const ExitCommand = "exit"

// AskPort is the TUI-facing subset of the RAG service.
type AskPort interface {
	Ask(ctx context.Context, question string) (service.Response, error)
}

type answerMsg struct {
	question string
	resp     service.Response
	err      error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx      context.Context
	service  AskPort
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	resp     service.Response
	question string
	summary  string
	status   string
	page     int
	busy     bool
	ready    bool
}

// New creates a new TUI model. summary is shown under the header.
func New(ctx context.Context, svc AskPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, or type exit"
	ti.Focus()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:      ctx,
		service:  svc,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		summary:  summary,
		status:   "Ready.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header and summary, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderPage())
		return m, nil
	case answerMsg:
		m.busy = false
		m.page = 0
		m.question = msg.question
		if msg.err != nil {
			m.resp = service.Response{}
			m.status = "Error: " + msg.err.Error()
		} else {
			m.resp = msg.resp
			m.status = statusLine(msg.resp)
		}
		m.viewport.SetContent(m.renderPage())
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if strings.EqualFold(q, ExitCommand) {
				return m, tea.Quit
			}
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.status = fmt.Sprintf("Asking %q", q)
			m.input.SetValue("")
			return m, tea.Batch(m.spinner.Tick, m.ask(q))
		case "down":
			if n := m.pages(); n > 1 {
				m.page = (m.page + 1) % n
				m.viewport.SetContent(m.renderPage())
				return m, nil
			}
		case "up":
			if n := m.pages(); n > 1 {
				m.page = (m.page - 1 + n) % n
				m.viewport.SetContent(m.renderPage())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(q string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.service.Ask(m.ctx, q)
		return answerMsg{question: q, resp: resp, err: err}
	}
}

// View renders the TUI layout and current page.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("RAG Q&A")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	status = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

// pages is the answer page followed by one page per source.
func (m Model) pages() int {
	return 1 + len(m.resp.Results)
}

func (m Model) renderPage() string {
	if m.page == 0 {
		return m.renderAnswer()
	}
	r := m.resp.Results[m.page-1]
	title := fmt.Sprintf("Source %d/%d  %s  [%s]", m.page, len(m.resp.Results), FormatScore(r), r.Chunk.SourceRef)
	return title + "\n\n" + highlightBestSentence(r.Chunk.Content, m.question)
}

func (m Model) renderAnswer() string {
	switch m.resp.State {
	case service.Answered:
		return m.resp.Answer.Text + "\n\n" + hintStyle.Render(fmt.Sprintf("%d sources, use up/down to read them", len(m.resp.Results)))
	case service.NoResults:
		return "No relevant information found in the corpus."
	case service.GenerationFailed:
		return fmt.Sprintf("The model could not answer (%v).\n\n%s", m.resp.GenerationErr,
			hintStyle.Render(fmt.Sprintf("%d sources were retrieved, use up/down to read them", len(m.resp.Results))))
	default:
		return "No answer yet."
	}
}

func statusLine(resp service.Response) string {
	return fmt.Sprintf("%s, %d sources", resp.State, len(resp.Results))
}

// FormatScore renders a result score according to its kind.
func FormatScore(r domain.RetrievalResult) string {
	if sim, ok := r.Similarity(); ok {
		return fmt.Sprintf("distance=%.4f similarity=%.4f", r.Score, sim)
	}
	return fmt.Sprintf("score=%.0f", r.Score)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx, bestScore := 0, -1
	for i, s := range sentences {
		if score := tokenOverlapScore(qTokens, s); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sent = highlightStyle.Render(sent)
		}
		sentences[i] = sent
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range unicodeWordRe.FindAllString(strings.ToLower(sentence), -1) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
