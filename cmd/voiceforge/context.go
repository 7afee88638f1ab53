package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"voiceforge/internal/config"
	"voiceforge/internal/history"
	"voiceforge/internal/logging"
	"voiceforge/internal/notifications"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// log returns the process logger, falling back to a no-op logger when the
// configured sinks cannot be opened.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// startJob records entry as running so its work directory is claimed in the
// history before any stage writes to it.
func (c *commandContext) startJob(ctx context.Context, entry history.Entry) {
	entry.Status = history.StatusRunning
	c.recordHistory(ctx, entry)
}

// finalizeJob records entry and publishes its outcome.
func (c *commandContext) finalizeJob(ctx context.Context, entry history.Entry) {
	c.recordHistory(ctx, entry)
	c.notify(ctx, entry)
}

// notify publishes entry to the configured ntfy topic. Delivery failures are
// logged and never change the command's result.
func (c *commandContext) notify(ctx context.Context, entry history.Entry) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return
	}
	svc := notifications.NewService(cfg)
	job := notifications.Job{
		ID:            entry.ID,
		Kind:          string(entry.Kind),
		VoiceLabel:    entry.VoiceLabel,
		OutputPath:    entry.OutputPath,
		SynthesisTime: entry.SynthesisTime,
	}
	if entry.FailureCode == 0 {
		err = svc.NotifyJobCompleted(ctx, job)
	} else {
		err = svc.NotifyJobFailed(ctx, job, entry.FailureCode, entry.Message)
	}
	if err != nil {
		logging.WarnWithContext(c.log(), "notification failed", "notification_failed",
			logging.String(logging.FieldImpact, "job outcome not delivered to ntfy"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.Error(err),
		)
	}
}

// recordHistory stores entry in the ledger. Failures are logged and never
// change the command's result.
func (c *commandContext) recordHistory(ctx context.Context, entry history.Entry) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return
	}
	logger := c.log()
	store, err := history.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.String(logging.FieldImpact, "job not recorded in history"),
			logging.Error(err),
		)
		return
	}
	defer store.Close()
	if err := store.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_record_failed",
			logging.String(logging.FieldImpact, "job not recorded in history"),
			logging.Error(err),
		)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
