package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/MalithGihan/mindmap-service/internal/ingest"
)

var generatePrompt string

var generateCmd = &cobra.Command{
	Use:   "generate --prompt PROMPT FILE...",
	Short: "Extract the files and print the synthesized mind map as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generatePrompt, "prompt", "p", "", "analytical focus for the mind map")
	_ = generateCmd.MarkFlagRequired("prompt")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	files, err := readFiles(args)
	if err != nil {
		return err
	}
	docs, err := newDispatcher(cfg, logger).ExtractAll(ctx, files)
	if err != nil {
		return err
	}
	corpus, err := ingest.Aggregate(docs)
	if err != nil {
		return err
	}

	synth, _, err := newSynthesizer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	m, err := synth.Synthesize(ctx, corpus, generatePrompt)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
