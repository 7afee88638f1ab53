package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"voiceforge/internal/config"
	"voiceforge/internal/history"
	"voiceforge/internal/workdir"
)

func newWorkdirCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workdir",
		Short: "Inspect and prune per-job working directories",
	}
	cmd.AddCommand(newWorkdirListCommand(ctx))
	cmd.AddCommand(newWorkdirCleanCommand(ctx))
	return cmd
}

func newWorkdirListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List job directories with their size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dirs, err := workdir.ListDirectories(cfg.Paths.WorkDir)
			if err != nil {
				return fmt.Errorf("list job directories: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(dirs) == 0 {
				fmt.Fprintln(out, "No job directories")
				return nil
			}
			rows := make([][]string, 0, len(dirs))
			var total int64
			for _, d := range dirs {
				total += d.Size
				rows = append(rows, []string{
					d.Name,
					d.ModTime.Local().Format(time.DateTime),
					formatSize(d.Size),
				})
			}
			footer := []string{fmt.Sprintf("%d directories", len(dirs)), "", formatSize(total)}
			fmt.Fprintln(out, renderTable([]string{"Job", "Modified", "Size"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight}, footer...))
			return nil
		},
	}
}

// orphanGracePeriod protects directories of jobs whose running entry never
// reached the history store.
const orphanGracePeriod = time.Hour

func newWorkdirCleanCommand(ctx *commandContext) *cobra.Command {
	var (
		olderThan time.Duration
		orphaned  bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale or orphaned job directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("older-than") {
				olderThan = time.Duration(cfg.Workdir.RetentionHours) * time.Hour
			}
			known, failed, err := jobIDs(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			var result workdir.CleanResult
			if orphaned {
				result = workdir.CleanOrphaned(cmd.Context(), cfg.Paths.WorkDir, known, orphanGracePeriod, ctx.log())
			} else {
				keep := map[string]struct{}{}
				if cfg.Workdir.KeepFailed {
					keep = failed
				}
				result = workdir.CleanStale(cmd.Context(), cfg.Paths.WorkDir, olderThan, keep, ctx.log())
			}

			out := cmd.OutOrStdout()
			for _, path := range result.Removed {
				fmt.Fprintf(out, "Removed %s\n", path)
			}
			for _, path := range result.Skipped {
				fmt.Fprintf(out, "Kept failed job %s\n", path)
			}
			fmt.Fprintf(out, "%d removed, %d kept, %d errors\n", len(result.Removed), len(result.Skipped), len(result.Errors))
			if len(result.Errors) > 0 {
				first := result.Errors[0]
				return fmt.Errorf("clean %s: %w", first.Path, first.Error)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Remove directories older than this (default: workdir.retention_hours)")
	cmd.Flags().BoolVar(&orphaned, "orphaned", false, "Remove directories with no history entry (idle for over an hour) instead of stale ones")
	return cmd
}

// jobIDs returns every recorded job ID and the subset that failed.
func jobIDs(ctx context.Context, cfg *config.Config) (map[string]struct{}, map[string]struct{}, error) {
	store, err := history.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	entries, err := store.List(ctx, 0)
	if err != nil {
		return nil, nil, err
	}
	known := make(map[string]struct{}, len(entries))
	failed := make(map[string]struct{})
	for _, e := range entries {
		known[e.ID] = struct{}{}
		if e.Status == history.StatusFailed {
			failed[e.ID] = struct{}{}
		}
	}
	return known, failed, nil
}

func formatSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}
