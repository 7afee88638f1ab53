package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"voiceforge/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, historyJSON(entries))
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No jobs recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(historyHeaders, historyRows(entries), historyAligns))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print entries as JSON")
	return cmd
}

var (
	historyHeaders = []string{"Job", "Kind", "Status", "Code", "Voice", "Time (s)", "Created", "Output"}
	historyAligns  = []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft, alignLeft}
)

func historyRows(entries []*history.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		output := e.OutputPath
		if e.Status == history.StatusFailed {
			output = truncate(e.Message, 60)
		}
		rows = append(rows, []string{
			shortID(e.ID),
			string(e.Kind),
			string(e.Status),
			strconv.Itoa(e.FailureCode),
			e.VoiceLabel,
			strconv.FormatFloat(e.SynthesisTime, 'f', 3, 64),
			e.CreatedAt.Local().Format(time.DateTime),
			output,
		})
	}
	return rows
}

type historyEntryJSON struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	Status        string  `json:"status"`
	Code          int     `json:"code"`
	VoiceLabel    string  `json:"voice_label,omitempty"`
	SourcePath    string  `json:"source_path,omitempty"`
	Language      string  `json:"language,omitempty"`
	OutputPath    string  `json:"output_path,omitempty"`
	SynthesisTime float64 `json:"synthesis_time"`
	Duration      float64 `json:"duration,omitempty"`
	Signed        bool    `json:"signed"`
	Message       string  `json:"message,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func historyJSON(entries []*history.Entry) []historyEntryJSON {
	items := make([]historyEntryJSON, 0, len(entries))
	for _, e := range entries {
		items = append(items, historyEntryJSON{
			ID:            e.ID,
			Kind:          string(e.Kind),
			Status:        string(e.Status),
			Code:          e.FailureCode,
			VoiceLabel:    e.VoiceLabel,
			SourcePath:    e.SourcePath,
			Language:      e.Language,
			OutputPath:    e.OutputPath,
			SynthesisTime: e.SynthesisTime,
			Duration:      e.Duration,
			Signed:        e.Signed,
			Message:       e.Message,
			CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
