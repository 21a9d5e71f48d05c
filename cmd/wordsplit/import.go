package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oarkflow/wordsplit/corpus"
)

var importTable string

var importCmd = &cobra.Command{
	Use:   "import <corpus-file> <sqlite-dsn>",
	Short: "Copy a word list into a SQLite table usable as a sqlite:// corpus source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		words, err := corpus.LoadFile(args[0])
		if err != nil {
			return err
		}
		if err := corpus.WriteSQLite(cmd.Context(), args[1], importTable, words); err != nil {
			return err
		}
		table := importTable
		if table == "" {
			table = corpus.DefaultTable
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d words into %s (source sqlite://%s#%s)\n", len(words), table, args[1], table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importTable, "table", corpus.DefaultTable, "destination table")
}
