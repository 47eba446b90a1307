package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"uvabs/internal/config"
)

const userAgent = "uvabs/0.1.0"

// Service defines the notification surface exposed to the run command.
type Service interface {
	NotifyRunStarted(ctx context.Context, dataDir string) error
	NotifyRunCompleted(ctx context.Context, uploaded, skipped, failed int, duration time.Duration) error
	NotifyFolderRejected(ctx context.Context, folder, reason string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		notifyRun:    cfg.Notifications.Run,
		notifyErrors: cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	notifyRun    bool
	notifyErrors bool
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, dataDir string) error {
	if !n.notifyRun {
		return nil
	}
	data := payload{
		title:   "uvabs - Run Started",
		message: fmt.Sprintf("Started ingesting spectra from %s", strings.TrimSpace(dataDir)),
		tags:    []string{"uvabs", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, uploaded, skipped, failed int, duration time.Duration) error {
	if !n.notifyRun {
		return nil
	}

	duration = duration.Round(time.Second)
	if duration <= 0 {
		duration = 0
	}
	durationText := duration.String()

	var title, message string
	if failed == 0 {
		title = "uvabs - Run Complete"
		message = fmt.Sprintf("Run complete: %d uploaded, %d skipped in %s", uploaded, skipped, durationText)
	} else {
		title = "uvabs - Run Complete (with errors)"
		message = fmt.Sprintf("Run complete: %d uploaded, %d skipped, %d failed in %s", uploaded, skipped, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"uvabs", "run", "completed"},
	}
	if failed > 0 {
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFolderRejected(ctx context.Context, folder, reason string) error {
	if !n.notifyErrors {
		return nil
	}
	data := payload{
		title:    "uvabs - Folder Rejected",
		message:  fmt.Sprintf("Rejected %s: %s\nNo sample from this folder was uploaded", strings.TrimSpace(folder), strings.TrimSpace(reason)),
		tags:     []string{"uvabs", "folder", "rejected"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.notifyErrors {
		return nil
	}

	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "uvabs - Error",
		message:  builder.String(),
		tags:     []string{"uvabs", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "uvabs - Test",
		message:  "Notification system test",
		tags:     []string{"uvabs", "test"},
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

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string) error { return nil }
func (noopService) NotifyRunCompleted(context.Context, int, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyFolderRejected(context.Context, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error           { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
