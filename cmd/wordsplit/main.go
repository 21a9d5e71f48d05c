package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wordsplit",
	Short: "Restore spaces in concatenated text",
	Long: `wordsplit finds the most probable word boundaries in text written without
spaces, using word frequencies from a ranked corpus (one word per line, most
frequent first).

Examples:
  wordsplit split thequickbrownfox
  echo bankofjordan | wordsplit split --corpus words.txt
  wordsplit serve --config wordsplit.yaml`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
