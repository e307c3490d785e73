package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kxddry/rag-qa/internal/config"
	"github.com/kxddry/rag-qa/internal/export"
	"github.com/kxddry/rag-qa/internal/indexer"
	"github.com/kxddry/rag-qa/internal/loader"
	"github.com/kxddry/rag-qa/internal/summarizer"
	"github.com/kxddry/rag-qa/internal/vectorstore/chromem"
)

var writeExport bool

var indexCmd = &cobra.Command{
	Use:   "index [files...]",
	Short: "Rebuild the index from .txt and .md files",
	Long: `Rebuild the persisted index from the given files. Form feeds split a
file into pages. The previous index is replaced only when the build succeeds.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&writeExport, "export", false, "also write the flat JSON export used by keyword retrieval")
}

func runIndex(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	docs, err := loader.Load(args)
	if err != nil {
		return err
	}
	emb, err := a.embedder.Get(ctx)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	ix := indexer.New(chromem.NewBuilder(a.cfg.Store(), emb, a.log), a.log,
		indexer.WithSummarizer(summarizer.NewFrequency(), a.cfg.Index.SummarySentences))
	res, err := ix.BuildIndex(ctx, docs, indexer.Params{
		ChunkSize: a.cfg.Index.ChunkSize,
		Overlap:   a.cfg.Index.Overlap,
	}, emb)
	if err != nil {
		return err
	}

	cmd.Printf("Indexed %d chunks from %d documents with %s (%d dimensions) into %s\n",
		res.Info.ChunkCount, len(docs), res.Info.Provider, res.Info.Dimension, a.cfg.Index.Path)
	if writeExport || a.cfg.Retrieval.Kind == config.RetrieverKeyword || a.cfg.Retrieval.FallbackToKeyword {
		if err := export.Write(a.cfg.Index.ExportPath, res.Chunks); err != nil {
			return err
		}
		cmd.Printf("Wrote export to %s\n", a.cfg.Index.ExportPath)
	}
	if res.Info.Summary != "" {
		cmd.Println()
		cmd.Println(res.Info.Summary)
	}
	return nil
}
