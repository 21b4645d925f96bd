package httpx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Options{Retry: 3, BackoffMin: time.Millisecond, BackoffMax: 2 * time.Millisecond})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(Options{Retry: 3, BackoffMin: time.Millisecond, BackoffMax: 2 * time.Millisecond})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("4xx should not be retried, got %d attempts", got)
	}
}

func TestExhaustedRetriesReturnReadableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model backend exploded"))
	}))
	defer srv.Close()

	c := New(Options{Retry: 2, BackoffMin: time.Millisecond, BackoffMax: 2 * time.Millisecond})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("final response body should still be readable: %v", err)
	}
	if string(body) != "model backend exploded" {
		t.Errorf("expected upstream error text, got %q", string(body))
	}
}

func TestHostAllowlist(t *testing.T) {
	c := New(Options{HostAllowlist: []string{"api.example.com", "*.lambda-url.eu-central-1.on.aws"}})

	req, _ := http.NewRequest(http.MethodGet, "https://api.example.com/v1", nil)
	if !c.allowed(req.URL.String()) {
		t.Errorf("exact host should be allowed")
	}
	req, _ = http.NewRequest(http.MethodGet, "https://abc.lambda-url.eu-central-1.on.aws/", nil)
	if !c.allowed(req.URL.String()) {
		t.Errorf("wildcard host should be allowed")
	}
	req, _ = http.NewRequest(http.MethodGet, "https://evil.example.org/", nil)
	if c.allowed(req.URL.String()) {
		t.Errorf("foreign host should be blocked")
	}
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Options{
		Retry:              0,
		BackoffMin:         time.Millisecond,
		BackoffMax:         2 * time.Millisecond,
		MaxConsecutiveFail: 2,
		CircuitOpen:        time.Minute,
	})

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		if resp, _ := c.Do(req); resp != nil {
			resp.Body.Close()
		}
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	if _, err := c.Do(req); err != ErrCircuitOpen {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}
