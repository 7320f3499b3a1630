package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MalithGihan/mindmap-service/internal/ingest"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Print the text extracted from each file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	files, err := readFiles(args)
	if err != nil {
		return err
	}
	docs, err := newDispatcher(cfg, logger).ExtractAll(cmd.Context(), files)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, d := range docs {
		if i > 0 {
			fmt.Fprint(out, ingest.CorpusSeparator)
		}
		fmt.Fprintf(out, "[%s]\n%s\n", d.Filename, d.Content)
	}
	return nil
}

func readFiles(paths []string) ([]ingest.File, error) {
	files := make([]ingest.File, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, ingest.File{Name: filepath.Base(p), Content: b})
	}
	return files, nil
}
