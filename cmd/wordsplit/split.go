package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oarkflow/wordsplit"
	"github.com/oarkflow/wordsplit/segment"
)

var splitCorpus string

var splitCmd = &cobra.Command{
	Use:   "split [text...]",
	Short: "Segment each argument, or each stdin line when no arguments are given",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := wordsplit.BuildModel(cmd.Context(), splitCorpus)
		if err != nil {
			return err
		}
		return runSplit(segment.New(m), args, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().StringVarP(&splitCorpus, "corpus", "c", "", "corpus source (default: embedded English list)")
}

func runSplit(seg *segment.Segmenter, args []string, in io.Reader, out io.Writer) error {
	if len(args) > 0 {
		for _, a := range args {
			if _, err := fmt.Fprintln(out, seg.Segment(a)); err != nil {
				return err
			}
		}
		return nil
	}
	scan := bufio.NewScanner(in)
	scan.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scan.Scan() {
		line := strings.TrimRight(scan.Text(), "\r")
		if _, err := fmt.Fprintln(out, seg.Segment(line)); err != nil {
			return err
		}
	}
	return scan.Err()
}
