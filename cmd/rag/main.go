// Command rag indexes a text corpus and answers questions grounded in it.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	logLevel string
)

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rag",
	Short: "Question answering over a local document corpus",
	Long: `rag builds a persisted vector index from text files and answers
questions using the most relevant chunks as model context.

Examples:
  # Build the index and the flat export
  rag index --export book.txt notes/*.md

  # Ask once
  rag ask "Koç burcunun özellikleri nelerdir?"

  # Interactive session
  rag ask

  # Inspect raw retrieval scores
  rag probe`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default ./config.yaml, then ~/.config/rag/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")
	rootCmd.SetOut(os.Stdout)
	rootCmd.AddCommand(indexCmd, askCmd, probeCmd)
}
