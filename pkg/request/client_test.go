package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"searoute/pkg/cache"
	"searoute/pkg/db"
	"searoute/pkg/tracker"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	d, err := db.Init(filepath.Join(t.TempDir(), "client_test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return New(cache.NewSQLiteCache(d, time.Hour), tracker.New(), Options{
		Timeout:   5 * time.Second,
		Retries:   3,
		BaseDelay: 10 * time.Millisecond,
		MaxDelay:  100 * time.Millisecond,
	})
}

func TestGet_Sequential(t *testing.T) {
	// Requests to the same provider must run one at a time.
	var conc int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := atomic.AddInt32(&conc, 1)
		defer atomic.AddInt32(&conc, -1)

		if current > 1 {
			t.Errorf("Concurrency detected! Expected sequential.")
		}
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(200)
		if _, err := w.Write([]byte("ok")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	client := newTestClient(t)

	done := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			// No cache key so every call hits the server
			if _, err := client.Get(context.Background(), svr.URL, ""); err != nil {
				t.Errorf("Get failed: %v", err)
			}
		}()
	}
	for i := 0; i < 3; i++ {
		<-done
	}
}

func TestGet_Retry(t *testing.T) {
	attempts := 0
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(429) // Too Many Requests
			return
		}
		w.WriteHeader(200)
		if _, err := w.Write([]byte("success")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	client := newTestClient(t)

	body, err := client.Get(context.Background(), svr.URL, "")
	if err != nil {
		t.Fatalf("Expected success after retry, got error: %v", err)
	}
	if string(body) != "success" {
		t.Errorf("Expected 'success', got '%s'", string(body))
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryUsesConfiguredDelays(t *testing.T) {
	// Two 429s before success: with the configured 10 ms base delay the
	// whole exchange stays far under the old hardcoded 500 ms schedule.
	attempts := 0
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(429)
			return
		}
		w.WriteHeader(200)
		if _, err := w.Write([]byte("ok")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	client := newTestClient(t)

	start := time.Now()
	if _, err := client.Get(context.Background(), svr.URL, ""); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("retries took %v, configured delays ignored", elapsed)
	}
}

func TestRetryDelayCap(t *testing.T) {
	client := New(cache.Null{}, tracker.New(), Options{
		BaseDelay: 40 * time.Millisecond,
		MaxDelay:  100 * time.Millisecond,
	})

	if got := client.retryDelay(0); got != 40*time.Millisecond {
		t.Errorf("attempt 0 delay = %v, want 40ms", got)
	}
	if got := client.retryDelay(1); got != 80*time.Millisecond {
		t.Errorf("attempt 1 delay = %v, want 80ms", got)
	}
	// Attempt 2 would be 160ms, capped at the configured maximum
	if got := client.retryDelay(2); got != 100*time.Millisecond {
		t.Errorf("attempt 2 delay = %v, want 100ms cap", got)
	}
}

func TestGet_CacheHit(t *testing.T) {
	calls := 0
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(200)
		if _, err := w.Write([]byte("payload")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	client := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		body, err := client.Get(ctx, svr.URL, "fixed_key")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(body) != "payload" {
			t.Errorf("wrong body: %s", body)
		}
	}

	if calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", calls)
	}
}

func TestGet_ClientError(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	defer svr.Close()

	client := newTestClient(t)
	if _, err := client.Get(context.Background(), svr.URL, ""); err == nil {
		t.Error("expected error for 404, got nil")
	}
}

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"marine-api.open-meteo.com", "open-meteo"},
		{"api.open-meteo.com", "open-meteo"},
		{"raw.githubusercontent.com", "naturalearth"},
		{"www.naturalearthdata.com", "naturalearth"},
		{"example.org", "example.org"},
	}
	for _, tt := range tests {
		if got := normalizeProvider(tt.host); got != tt.want {
			t.Errorf("normalizeProvider(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
