package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kxddry/rag-qa/internal/domain"
)

const probePreviewRunes = 400

var probeK int

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Print raw vector search results for typed queries",
	Long: `Read queries from stdin until "exit" and print the nearest chunks with
their distance and similarity = 1/(1+distance).`,
	Args: cobra.NoArgs,
	RunE: runProbeCmd,
}

func init() {
	probeCmd.Flags().IntVarP(&probeK, "k", "k", 3, "results per query")
}

func runProbeCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.store.Get(cmd.Context())
	if err != nil {
		return err
	}
	return runProbe(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), store, probeK)
}

func runProbe(ctx context.Context, in io.Reader, out io.Writer, store domain.VectorStore, k int) error {
	fmt.Fprintf(out, "Index ready: %d chunks, provider %s\n", store.Count(), store.Info().Provider)
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nQuery (type exit to quit): ")
		if !sc.Scan() {
			return sc.Err()
		}
		q := strings.TrimSpace(sc.Text())
		if strings.EqualFold(q, "exit") {
			return nil
		}
		if q == "" {
			continue
		}
		results, err := store.QueryByText(ctx, q, k)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "\nNo results.")
		}
		for i, r := range results {
			sim, _ := r.Similarity()
			fmt.Fprintf(out, "\n--- Result %d ---\n", i+1)
			fmt.Fprintf(out, "Source: %s\n", r.Chunk.SourceRef)
			fmt.Fprintf(out, "Distance: %.6f\n", r.Score)
			fmt.Fprintf(out, "Similarity: %.4f\n", sim)
			fmt.Fprintf(out, "\n%s\n", preview(r.Chunk.Content, probePreviewRunes))
		}
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
