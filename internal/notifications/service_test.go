package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"uvabs/internal/notifications"
	"uvabs/internal/testsupport"
)

type captured struct {
	title    string
	message  string
	tags     string
	priority string
}

func newCapturingServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read notification body: %v", err)
		}
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			message:  string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(cfg)
	if err := svc.NotifyRunStarted(context.Background(), "/srv/uvdata"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsRunEvents(t *testing.T) {
	var got []captured
	server := newCapturingServer(t, &got)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Run = true
	cfg.Notifications.Errors = true
	svc := notifications.NewService(cfg)
	ctx := context.Background()

	if err := svc.NotifyRunStarted(ctx, "/srv/uvdata"); err != nil {
		t.Fatalf("NotifyRunStarted failed: %v", err)
	}
	if err := svc.NotifyRunCompleted(ctx, 12, 3, 0, 90*time.Second); err != nil {
		t.Fatalf("NotifyRunCompleted failed: %v", err)
	}
	if err := svc.NotifyRunCompleted(ctx, 5, 0, 2, time.Minute); err != nil {
		t.Fatalf("NotifyRunCompleted with failures failed: %v", err)
	}
	if err := svc.NotifyFolderRejected(ctx, "AB2024_03", "sample precedes the earliest blank"); err != nil {
		t.Fatalf("NotifyFolderRejected failed: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("disk full"), "archive"); err != nil {
		t.Fatalf("NotifyError failed: %v", err)
	}

	want := []captured{
		{
			title:   "uvabs - Run Started",
			message: "Started ingesting spectra from /srv/uvdata",
			tags:    "uvabs,run,started",
		},
		{
			title:   "uvabs - Run Complete",
			message: "Run complete: 12 uploaded, 3 skipped in 1m30s",
			tags:    "uvabs,run,completed",
		},
		{
			title:    "uvabs - Run Complete (with errors)",
			message:  "Run complete: 5 uploaded, 0 skipped, 2 failed in 1m0s",
			tags:     "uvabs,run,completed",
			priority: "high",
		},
		{
			title:    "uvabs - Folder Rejected",
			message:  "Rejected AB2024_03: sample precedes the earliest blank\nNo sample from this folder was uploaded",
			tags:     "uvabs,folder,rejected",
			priority: "high",
		},
		{
			title:    "uvabs - Error",
			message:  "Error with archive: disk full",
			tags:     "uvabs,error,alert",
			priority: "high",
		},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNtfyServiceHonorsEventToggles(t *testing.T) {
	var got []captured
	server := newCapturingServer(t, &got)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Run = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(cfg)
	ctx := context.Background()

	if err := svc.NotifyRunStarted(ctx, "/srv/uvdata"); err != nil {
		t.Fatalf("NotifyRunStarted failed: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("boom"), "run"); err != nil {
		t.Fatalf("NotifyError failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("disabled toggles must suppress delivery, got %+v", got)
	}

	// The explicit test notification always goes out.
	if err := svc.TestNotification(ctx); err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if len(got) != 1 || got[0].title != "uvabs - Test" {
		t.Fatalf("expected exactly the test notification, got %+v", got)
	}
}

func TestNtfyServiceSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from non-2xx response")
	}
}
