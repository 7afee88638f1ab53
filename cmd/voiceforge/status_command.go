package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voiceforge/internal/deps"
	"voiceforge/internal/history"
	"voiceforge/internal/preflight"
	"voiceforge/internal/stage"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkLLM bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show tool, model, stage and history status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var lines []string
			section := func(title string) {
				if len(lines) > 0 {
					lines = append(lines, "")
				}
				lines = append(lines, renderSectionHeader(title, colorize)...)
			}

			section("Configuration")
			lines = append(lines, renderStatusLine("Config file", statusInfo, ctx.configPath, colorize))
			notify := "disabled"
			if cfg.Notifications.NtfyTopic != "" {
				notify = cfg.Notifications.NtfyTopic
			}
			lines = append(lines, renderStatusLine("Notifications", statusInfo, notify, colorize))
			lines = append(lines, renderStatusLine("GPU", statusInfo, preflight.CheckGPU(cmd.Context(), cfg, deps.NewGPUProbe()).Detail, colorize))

			section("Directories")
			for _, r := range []preflight.Result{
				preflight.CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
				preflight.CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
				preflight.CheckDirectoryAccess("Model directory", cfg.Paths.ModelDir),
			} {
				lines = append(lines, renderStatusLine(r.Name, passFail(r.Passed, false), r.Detail, colorize))
			}

			section("Dependencies")
			for _, st := range preflight.CheckSystemDeps(cfg) {
				detail := st.Path
				if !st.Available {
					detail = st.Detail
				}
				lines = append(lines, renderStatusLine(st.Name, passFail(st.Available, st.Optional), detail, colorize))
			}

			section("Models")
			for _, r := range preflight.CheckModels(cfg) {
				lines = append(lines, renderStatusLine(r.Name, passFail(r.Passed, false), r.Detail, colorize))
			}

			section("Stages")
			health := preflight.StageHealth(cfg)
			for _, h := range health {
				detail := h.Detail
				kind := passFail(h.Ready, false)
				switch {
				case h.Disabled:
					kind = statusInfo
				case detail == "" && h.Ready:
					detail = "ready"
				}
				lines = append(lines, renderStatusLine(h.Name, kind, detail, colorize))
			}
			if blocking := stage.Blocking(health); len(blocking) > 0 {
				lines = append(lines, renderStatusLine("Jobs", statusError, fmt.Sprintf("%d stage(s) not ready", len(blocking)), colorize))
			}
			if checkLLM && cfg.Translation.Enabled {
				r := preflight.CheckLLM(cmd.Context(), "Translation LLM", cfg.Translation)
				lines = append(lines, renderStatusLine(r.Name, passFail(r.Passed, false), r.Detail, colorize))
			}

			section("History")
			lines = append(lines, historyStatusLines(cmd, ctx, colorize)...)

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkLLM, "check-llm", false, "Ping the translation LLM")
	return cmd
}

func historyStatusLines(cmd *cobra.Command, ctx *commandContext, colorize bool) []string {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil
	}
	store, err := history.Open(cfg)
	if err != nil {
		return []string{renderStatusLine("Ledger", statusWarn, err.Error(), colorize)}
	}
	defer store.Close()
	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return []string{renderStatusLine("Ledger", statusWarn, err.Error(), colorize)}
	}
	kind := statusOK
	if stats[history.StatusFailed] > 0 {
		kind = statusWarn
	}
	summary := fmt.Sprintf("%d ok, %d failed", stats[history.StatusOK], stats[history.StatusFailed])
	if running := stats[history.StatusRunning]; running > 0 {
		summary += fmt.Sprintf(", %d running", running)
	}
	return []string{
		renderStatusLine("Ledger", statusInfo, store.Path(), colorize),
		renderStatusLine("Jobs", kind, summary, colorize),
	}
}
