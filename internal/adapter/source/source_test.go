package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDir_Latest(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"forecast_2026030100_000.nc",
		"forecast_2026030106_000.nc",
		"forecast_2026022918_000.nc",
		"readme.txt",
		"forecast_notes.md",
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "forecast_2026030112_000.nc"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	src := NewDir(dir)
	got, err := src.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}

	want := filepath.Join(dir, "forecast_2026030106_000.nc")
	if got != want {
		t.Errorf("Latest = %s, want %s", got, want)
	}
}

func TestDir_Latest_Empty(t *testing.T) {
	src := NewDir(t.TempDir())
	if _, err := src.Latest(context.Background()); err == nil {
		t.Error("expected error for empty directory, got nil")
	}
}

func TestDir_Latest_MissingDirectory(t *testing.T) {
	src := NewDir(filepath.Join(t.TempDir(), "nope"))
	if _, err := src.Latest(context.Background()); err == nil {
		t.Error("expected error for missing directory, got nil")
	}
}

func TestManifest_Latest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"path": "/data/forecast_2026030100_000.nc"}`))
	}))
	defer srv.Close()

	src := NewManifest(srv.URL, srv.Client())
	got, err := src.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got != "/data/forecast_2026030100_000.nc" {
		t.Errorf("Latest = %s", got)
	}
}

func TestManifest_Latest_RetriesTransientFailure(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"path": "/data/forecast_2026030106_000.nc"}`))
	}))
	defer srv.Close()

	src := NewManifest(srv.URL, srv.Client())
	src.backoff = Backoff{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}

	got, err := src.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got != "/data/forecast_2026030106_000.nc" {
		t.Errorf("Latest = %s", got)
	}
	if requests != 2 {
		t.Errorf("made %d requests, want 2", requests)
	}
}

func TestManifest_Latest_GivesUpAfterRetries(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewManifest(srv.URL, srv.Client())
	src.backoff = Backoff{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}

	if _, err := src.Latest(context.Background()); err == nil {
		t.Error("expected error after exhausted retries, got nil")
	}
	if requests != 2 {
		t.Errorf("made %d requests, want 2", requests)
	}
}

func TestManifest_Latest_EmptyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	src := NewManifest(srv.URL, srv.Client())
	src.backoff = Backoff{MaxRetries: 0, InitialInterval: time.Millisecond}

	if _, err := src.Latest(context.Background()); err == nil {
		t.Error("expected error for empty manifest, got nil")
	}
}

func TestManifest_Latest_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewManifest(srv.URL, srv.Client())
	src.backoff = Backoff{MaxRetries: 5, InitialInterval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	if _, err := src.Latest(ctx); err == nil {
		t.Error("expected context error, got nil")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Latest did not honour context cancellation")
	}
}
