package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voiceforge/internal/config"
)

const userAgent = "voiceforge/0.1.0"

// Service defines the notification surface exposed to commands.
type Service interface {
	NotifyJobCompleted(ctx context.Context, job Job) error
	NotifyJobFailed(ctx context.Context, job Job, code int, message string) error
	TestNotification(ctx context.Context) error
}

// Job describes the finished job a notification refers to.
type Job struct {
	ID            string
	Kind          string
	VoiceLabel    string
	OutputPath    string
	SynthesisTime float64
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		notifySuccess: cfg.Notifications.NotifySuccess,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	notifySuccess bool
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, job Job) error {
	if !n.notifySuccess {
		return nil
	}
	kind := kindLabel(job.Kind)
	message := fmt.Sprintf("✅ %s complete: %s (%.3fs)", kind, labelOr(job.VoiceLabel, job.ID), job.SynthesisTime)
	if output := strings.TrimSpace(job.OutputPath); output != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, output)
	}
	data := payload{
		title:   fmt.Sprintf("voiceforge - %s Complete", kind),
		message: message,
		tags:    []string{"voiceforge", strings.ToLower(job.Kind), "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, job Job, code int, message string) error {
	var builder strings.Builder
	builder.WriteString("❌ ")
	builder.WriteString(kindLabel(job.Kind))
	builder.WriteString(" failed")
	if id := strings.TrimSpace(job.ID); id != "" {
		builder.WriteString(" (")
		builder.WriteString(id)
		builder.WriteString(")")
	}
	fmt.Fprintf(&builder, " with code %d", code)
	if message = strings.TrimSpace(message); message != "" {
		builder.WriteString(": ")
		builder.WriteString(message)
	}

	data := payload{
		title:    "voiceforge - Error",
		message:  builder.String(),
		tags:     []string{"voiceforge", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "voiceforge - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"voiceforge", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func kindLabel(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "clone":
		return "Clone"
	case "tts":
		return "TTS"
	case "":
		return "Job"
	default:
		return kind
	}
}

func labelOr(label, fallback string) string {
	if label = strings.TrimSpace(label); label != "" {
		return label
	}
	return fallback
}

type noopService struct{}

func (noopService) NotifyJobCompleted(context.Context, Job) error           { return nil }
func (noopService) NotifyJobFailed(context.Context, Job, int, string) error { return nil }
func (noopService) TestNotification(context.Context) error                  { return nil }
