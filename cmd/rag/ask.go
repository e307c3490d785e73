package main

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kxddry/rag-qa/internal/config"
	"github.com/kxddry/rag-qa/internal/service"
	"github.com/kxddry/rag-qa/internal/tui"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed corpus",
	Long: `Answer one question and list its sources. Without a question an
interactive session starts; type exit to leave it.`,
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()
	svc := a.askService(ctx)

	if len(args) == 0 {
		_, err := tea.NewProgram(tui.New(ctx, svc, a.indexSummary(ctx)), tea.WithContext(ctx)).Run()
		return err
	}

	resp, err := svc.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	printResponse(cmd, resp)
	return nil
}

// indexSummary reads the corpus summary from the vector index. Keyword
// retrieval never opens the index, so it has no summary to show.
func (a *app) indexSummary(ctx context.Context) string {
	if a.cfg.Retrieval.Kind != config.RetrieverVector {
		return ""
	}
	s, err := a.store.Get(ctx)
	if err != nil {
		return ""
	}
	return s.Info().Summary
}

func printResponse(cmd *cobra.Command, resp service.Response) {
	switch resp.State {
	case service.NoResults:
		cmd.Println("No relevant information found in the corpus.")
		return
	case service.Answered:
		cmd.Println(resp.Answer.Text)
	case service.GenerationFailed:
		cmd.Printf("No answer: %v\n", resp.GenerationErr)
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, r := range resp.Results {
		cmd.Printf("  [%d] %s  %s\n", i+1, r.Chunk.SourceRef, tui.FormatScore(r))
	}
}
