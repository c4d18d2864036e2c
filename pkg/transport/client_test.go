package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vantagecrm/vantage-go/pkg/api"
	"github.com/vantagecrm/vantage-go/pkg/storage"
)

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload, _ := json.Marshal(data)
	json.NewEncoder(w).Encode(api.Envelope{Success: true, Data: payload})
}

func writeEnvelopeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.Envelope{
		Success: false,
		Error:   &api.Error{Code: code, Message: message},
	})
}

func newTestClient(t *testing.T, serverURL string, adapter storage.Adapter, onExpired func()) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL:          serverURL,
		Storage:          adapter,
		OnSessionExpired: onExpired,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestAttachesBearerToken(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewMemory()
	adapter.Set(ctx, storage.KeyAccessToken, "tok-abc")

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, map[string]string{"ok": "true"})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, adapter, nil)
	var out map[string]string
	if err := c.Get(ctx, "/api/leads", &out); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}

func TestNoBearerWhenNoToken(t *testing.T) {
	ctx := context.Background()
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, map[string]string{})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, storage.NewMemory(), nil)
	if err := c.Get(ctx, "/api/auth/registration-status", nil); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}

// Scenario D: 401 on an authenticated request, refresh succeeds, the original
// request is retried once and the caller never sees the 401.
func TestSilentRefreshAndRetry(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewMemory()
	adapter.Set(ctx, storage.KeyAccessToken, "stale")
	adapter.Set(ctx, storage.KeyRefreshToken, "ref-1")

	var refreshCalls, dataCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		var req api.RefreshRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != "ref-1" {
			writeEnvelopeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "bad refresh token")
			return
		}
		writeEnvelope(w, http.StatusOK, api.RefreshResponse{AccessToken: "fresh"})
	})
	mux.HandleFunc("/api/leads", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&dataCalls, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeEnvelopeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "token expired")
			return
		}
		writeEnvelope(w, http.StatusOK, []api.Lead{{ID: "l-1"}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	expired := false
	c := newTestClient(t, server.URL, adapter, func() { expired = true })

	var leads []api.Lead
	if err := c.Get(ctx, "/api/leads", &leads); err != nil {
		t.Fatalf("expected recovered request to succeed, got %v", err)
	}
	if len(leads) != 1 || leads[0].ID != "l-1" {
		t.Errorf("unexpected payload: %+v", leads)
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Errorf("expected exactly one refresh call, got %d", n)
	}
	if n := atomic.LoadInt32(&dataCalls); n != 2 {
		t.Errorf("expected original plus one retry, got %d calls", n)
	}
	if expired {
		t.Error("session expiry hook must not fire on successful recovery")
	}
	if tok, err := adapter.Get(ctx, storage.KeyAccessToken); err != nil || tok != "fresh" {
		t.Errorf("refreshed token not persisted: %q, %v", tok, err)
	}
}

// Scenario E: 401 with no refresh token available purges all three storage
// keys, fires the expiry hook, and attempts no retry.
func TestExpiryWithoutRefreshToken(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewMemory()
	adapter.Set(ctx, storage.KeyAccessToken, "stale")
	adapter.Set(ctx, storage.KeyAuthStorage, `{"isAuthenticated":true}`)

	var refreshCalls, dataCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeEnvelope(w, http.StatusOK, api.RefreshResponse{AccessToken: "unreachable"})
	})
	mux.HandleFunc("/api/calls", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&dataCalls, 1)
		writeEnvelopeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "token expired")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	expired := false
	c := newTestClient(t, server.URL, adapter, func() { expired = true })

	err := c.Get(ctx, "/api/calls", nil)
	if err == nil {
		t.Fatal("expected the original 401 to propagate")
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 api error, got %v", err)
	}
	if !expired {
		t.Error("expected session expiry hook to fire")
	}
	if atomic.LoadInt32(&refreshCalls) != 0 {
		t.Error("refresh endpoint must not be called without a refresh token")
	}
	if atomic.LoadInt32(&dataCalls) != 1 {
		t.Error("no retry may be attempted without a refresh token")
	}
	for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyAuthStorage} {
		if _, err := adapter.Get(ctx, key); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected %s to be purged, got %v", key, err)
		}
	}
}

func TestFailedRefreshPurgesCredentials(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewMemory()
	adapter.Set(ctx, storage.KeyAccessToken, "stale")
	adapter.Set(ctx, storage.KeyRefreshToken, "revoked")
	adapter.Set(ctx, storage.KeyAuthStorage, `{"isAuthenticated":true}`)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelopeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "refresh token revoked")
	})
	mux.HandleFunc("/api/campaigns", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelopeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "token expired")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	expired := false
	c := newTestClient(t, server.URL, adapter, func() { expired = true })

	if err := c.Get(ctx, "/api/campaigns", nil); err == nil {
		t.Fatal("expected error after failed refresh")
	}
	if !expired {
		t.Error("expected session expiry hook to fire")
	}
	if _, err := adapter.Get(ctx, storage.KeyRefreshToken); !errors.Is(err, storage.ErrNotFound) {
		t.Error("expected refresh token to be purged")
	}
}

// A 401 from the auth endpoints is an authentication failure, not session
// expiry: no refresh, no purge.
func TestAuthEndpointsExemptFromRecovery(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewMemory()
	adapter.Set(ctx, storage.KeyRefreshToken, "ref-1")

	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeEnvelope(w, http.StatusOK, api.RefreshResponse{AccessToken: "x"})
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelopeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "bad email or password")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL, adapter, func() {
		t.Error("expiry hook must not fire for login failures")
	})

	err := c.Post(ctx, "/api/auth/login", api.LoginRequest{Email: "a@b.c", Password: "nope"}, nil)
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("expected credentials error, got %v", err)
	}
	if atomic.LoadInt32(&refreshCalls) != 0 {
		t.Error("login failure must not trigger a refresh")
	}
	if _, err := adapter.Get(ctx, storage.KeyRefreshToken); err != nil {
		t.Error("login failure must not purge stored credentials")
	}
}

// Callers that detect expiry at the same time share a single in-flight
// token exchange.
func TestRefreshCoalesces(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewMemory()
	adapter.Set(ctx, storage.KeyRefreshToken, "ref-1")

	var refreshCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		time.Sleep(300 * time.Millisecond) // hold the exchange open
		writeEnvelope(w, http.StatusOK, api.RefreshResponse{AccessToken: "fresh"})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, adapter, nil)

	const workers = 8
	tokens := make([]string, workers)
	errs := make([]error, workers)
	var ready, done sync.WaitGroup
	ready.Add(workers)
	done.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer done.Done()
			ready.Done()
			ready.Wait() // all workers enter the exchange together
			tokens[i], errs[i] = c.refreshAccessToken(ctx)
		}(i)
	}
	done.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Errorf("worker %d failed: %v", i, errs[i])
		}
		if tokens[i] != "fresh" {
			t.Errorf("worker %d got token %q", i, tokens[i])
		}
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Errorf("expected one coalesced refresh, got %d", n)
	}
}

// Concurrent data requests all recover when the shared refresh succeeds.
func TestConcurrentRequestsRecover(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewMemory()
	adapter.Set(ctx, storage.KeyAccessToken, "stale")
	adapter.Set(ctx, storage.KeyRefreshToken, "ref-1")

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, api.RefreshResponse{AccessToken: "fresh"})
	})
	mux.HandleFunc("/api/notifications", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeEnvelopeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "token expired")
			return
		}
		writeEnvelope(w, http.StatusOK, []api.Notification{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL, adapter, nil)

	const workers = 8
	errs := make([]error, workers)
	var done sync.WaitGroup
	done.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer done.Done()
			errs[i] = c.Get(ctx, "/api/notifications", nil)
		}(i)
	}
	done.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("worker %d failed: %v", i, err)
		}
	}
}

func TestEnvelopeErrorPropagates(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(api.Envelope{
			Success: false,
			Error: &api.Error{
				Code:    "REPORT_FAILED",
				Message: "report generation failed",
				Details: map[string]string{"period": "2026-08"},
			},
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, storage.NewMemory(), nil)
	err := c.Get(ctx, "/api/reports/summary", nil)

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %v", err)
	}
	if apiErr.Code != "REPORT_FAILED" || apiErr.Status != http.StatusInternalServerError {
		t.Errorf("unexpected error: %+v", apiErr)
	}
	if apiErr.Details["period"] != "2026-08" {
		t.Errorf("expected error details to survive, got %+v", apiErr.Details)
	}
}

func TestNonEnvelopeErrorBody(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, storage.NewMemory(), nil)
	err := c.Get(ctx, "/api/leads", nil)

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Errorf("expected 502 status, got %d", apiErr.Status)
	}
}

func TestNewRequiresStorage(t *testing.T) {
	if _, err := New(Config{BaseURL: "http://localhost:8000"}); err == nil {
		t.Fatal("expected error when storage adapter is missing")
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(Config{BaseURL: "://nope", Storage: storage.NewMemory()}); err == nil {
		t.Fatal("expected error for invalid base URL")
	}
}

func ExampleClient_Get() {
	adapter := storage.NewMemory()
	client, _ := New(Config{BaseURL: "http://localhost:8000", Storage: adapter})

	var leads []api.Lead
	err := client.Get(context.Background(), "/api/leads", &leads)
	fmt.Println(err != nil)
}
