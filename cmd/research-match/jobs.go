// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-match/internal/ledger"
	"github.com/pdiddy/research-match/pkg/types"
)

const formatTable = "table"

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List recent requests from the job ledger",
	Long: `Jobs reads the SQLite ledger written by ask and serve. Each row is one
handled request: its provider job, final status, polling attempts, and how
many professors were extracted.`,
	RunE: runJobs,
}

func init() {
	jobsCmd.Flags().Int("limit", ledger.DefaultLimit, "maximum rows to list")
	jobsCmd.Flags().String("status", "", "only rows with this final status (e.g. completed, timed_out)")
	jobsCmd.Flags().Bool("summary", false, "print counts by status instead of rows")
	jobsCmd.Flags().String("format", formatTable, "output format: table, json or yaml")

	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	status, _ := cmd.Flags().GetString("status")
	summary, _ := cmd.Flags().GetBool("summary")
	format, _ := cmd.Flags().GetString("format")

	cfg := loadConfig(viper.GetViper(), loadedSecrets)
	if cfg.Ledger.Path == "" {
		return fmt.Errorf("ledger disabled: set ledger.path")
	}
	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if summary {
		sum, err := store.Summarize(ctx)
		if err != nil {
			return err
		}
		if format == formatTable {
			return printSummary(out, sum)
		}
		return writeOutput(out, format, sum)
	}

	recs, err := store.List(ctx, ledger.Filter{Status: types.JobStatus(status), Limit: limit})
	if err != nil {
		return err
	}
	if format == formatTable {
		return printJobs(out, recs)
	}
	if recs == nil {
		recs = []types.JobRecord{}
	}
	return writeOutput(out, format, recs)
}

func printJobs(w io.Writer, recs []types.JobRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tREQUEST\tSTATUS\tCODE\tATTEMPTS\tPROFESSORS\tSHAPE\tQUERY")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime), r.RequestID, orDash(string(r.Status)),
			r.Code, r.Attempts, r.Professors, orDash(r.Shape), truncate(r.Query, 40))
	}
	return tw.Flush()
}

func printSummary(w io.Writer, sum ledger.Summary) error {
	statuses := make([]string, 0, len(sum.ByStatus))
	for s := range sum.ByStatus {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tCOUNT")
	for _, s := range statuses {
		fmt.Fprintf(tw, "%s\t%d\n", orDash(s), sum.ByStatus[types.JobStatus(s)])
	}
	fmt.Fprintf(tw, "total\t%d\n", sum.Total)
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens s to max runes, adding "..." if truncated.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max < 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
