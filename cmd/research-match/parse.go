// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-match/internal/classify"
	"github.com/pdiddy/research-match/internal/extract"
	"github.com/pdiddy/research-match/internal/orchestrate"
	"github.com/pdiddy/research-match/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Run the presentation pipeline on a saved agent answer",
	Long: `Parse reads an agent answer from a file, or stdin when no file is given,
and prints the payload the pipeline would return for --query: the
classification, the presentation decision, and the text and cards.

With --explain it also prints, per extracted professor, which strategy
produced each field. Parse makes no network calls.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("query", "", "the user question the answer responds to")
	parseCmd.Flags().String("status", string(types.JobCompleted), "job status to assume for fallback text")
	parseCmd.Flags().Bool("explain", false, "include per-field extraction provenance")
	parseCmd.Flags().String("format", formatYAML, "output format: json or yaml")

	rootCmd.AddCommand(parseCmd)
}

// parseReport is the parse command output.
type parseReport struct {
	orchestrate.Result
	Explanation *extract.Explanation `json:"explanation,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	status, _ := cmd.Flags().GetString("status")
	explain, _ := cmd.Flags().GetBool("explain")
	format, _ := cmd.Flags().GetString("format")

	answer, err := readAnswer(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg := loadConfig(viper.GetViper(), loadedSecrets)
	extractor, err := newExtractor(cfg.Extraction, logger)
	if err != nil {
		return err
	}

	orch := orchestrate.New(nil, classify.New(logger), extractor, orchestrate.WithLogger(logger))
	report := parseReport{Result: orch.Present(query, answer, types.JobStatus(status))}
	if explain {
		e := extractor.Explain(answer)
		report.Explanation = &e
	}
	return writeOutput(cmd.OutOrStdout(), format, report)
}

func readAnswer(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading answer from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return string(data), nil
}
