package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kxddry/rag-qa/internal/domain"
	"github.com/kxddry/rag-qa/internal/service"
)

type stubAsk struct{ resp service.Response }

func (s stubAsk) Ask(context.Context, string) (service.Response, error) { return s.resp, nil }

var answered = service.Response{
	State:  service.Answered,
	Answer: &domain.Answer{Text: "Mars rules Aries."},
	Results: []domain.RetrievalResult{
		{Chunk: domain.Chunk{Content: "Aries is ruled by Mars.", SourceRef: "book.txt#p1"}, Score: 0.25},
		{Chunk: domain.Chunk{Content: "aries fire", SourceRef: "docs.json"}, Score: 2, Kind: domain.ScoreLexical},
	},
}

func typeAndEnter(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestModel_AskFlow(t *testing.T) {
	m := New(context.Background(), stubAsk{resp: answered}, "summary")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	m, cmd := typeAndEnter(t, m, "Who rules Aries?")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	next, _ = m.Update(answerMsg{question: "Who rules Aries?", resp: answered})
	m = next.(Model)
	assert.False(t, m.busy)
	assert.Contains(t, m.renderPage(), "Mars rules Aries.")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Contains(t, m.renderPage(), "Source 1/2")
	assert.Contains(t, m.renderPage(), "book.txt#p1")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	assert.Equal(t, 0, m.page)
}

func TestModel_ExitQuits(t *testing.T) {
	m := New(context.Background(), stubAsk{}, "")
	_, cmd := typeAndEnter(t, m, "EXIT")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_NoResults(t *testing.T) {
	m := New(context.Background(), stubAsk{}, "")
	next, _ := m.Update(answerMsg{resp: service.Response{State: service.NoResults, Results: []domain.RetrievalResult{}}})
	assert.Contains(t, next.(Model).renderPage(), "No relevant information")
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "distance=0.2500 similarity=0.8000", FormatScore(answered.Results[0]))
	assert.Equal(t, "score=2", FormatScore(answered.Results[1]))
}
