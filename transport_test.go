package headlessadmin_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	headlessadmin "github.com/Priya-159/headless-admin"
	"github.com/Priya-159/headless-admin/tokens"
)

func testConfig(baseURL string) headlessadmin.Config {
	return headlessadmin.Config{
		BaseURL:        baseURL,
		CacheTTL:       5 * time.Minute,
		RequestTimeout: 5 * time.Second,
	}
}

func TestEndpointRouting(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tr := headlessadmin.NewTransport(testConfig(server.URL), tokens.NewMemoryStore(), nil)

	tests := []struct {
		endpoint string
		want     string
	}{
		{"/auth/token/", "/auth/token/"},
		{"/notification/campaigns", "/notification/campaigns"},
		{"/api/already/", "/api/already/"},
		{"/admin_users/", "/api/admin_users/"},
		{"trips/", "/api/trips/"},
	}

	for _, tt := range tests {
		if _, err := tr.Get(context.Background(), tt.endpoint, nil); err != nil {
			t.Fatalf("get %s failed: %v", tt.endpoint, err)
		}
		if gotPath != tt.want {
			t.Errorf("endpoint %s routed to %s, want %s", tt.endpoint, gotPath, tt.want)
		}
	}
}

func TestBearerAttachedAndEnvelopeUnwrapped(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":{"answer":42},"msg":"ok"}`))
	}))
	defer server.Close()

	store := tokens.NewMemoryStore()
	store.Save(tokens.Pair{Access: "abc"})
	tr := headlessadmin.NewTransport(testConfig(server.URL), store, nil)

	raw, err := tr.Get(context.Background(), "/dashboard/stats/", nil)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(raw) != `{"answer":42}` {
		t.Errorf("expected unwrapped data field, got %s", raw)
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"detail field", 400, `{"detail":"invalid payload"}`, "invalid payload"},
		{"message field", 422, `{"message":"missing name"}`, "missing name"},
		{"error field", 500, `{"error":"boom"}`, "boom"},
		{"no body falls back to status", 403, ``, "403 Forbidden"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			tr := headlessadmin.NewTransport(testConfig(server.URL), tokens.NewMemoryStore(), nil)

			_, err := tr.Get(context.Background(), "/users/", nil)
			var httpErr *headlessadmin.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected HTTPError, got %v", err)
			}
			if httpErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, httpErr.StatusCode)
			}
			if httpErr.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, httpErr.Message)
			}
		})
	}
}

func TestUnauthorizedRefreshRetry(t *testing.T) {
	t.Parallel()

	var profileCalls, refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token/refresh/":
			refreshCalls.Add(1)
			var body struct {
				Refresh string `json:"refresh"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if body.Refresh != "r1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"access":"new-token"}`))
		case "/api/profile/":
			profileCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer new-token" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"token expired"}`))
				return
			}
			w.Write([]byte(`{"username":"admin"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	store := tokens.NewMemoryStore()
	store.Save(tokens.Pair{Access: "stale", Refresh: "r1"})
	tr := headlessadmin.NewTransport(testConfig(server.URL), store, nil)

	raw, err := tr.Get(context.Background(), "/profile/", nil)
	if err != nil {
		t.Fatalf("expected retried request to succeed, got %v", err)
	}
	if string(raw) != `{"username":"admin"}` {
		t.Errorf("unexpected body %s", raw)
	}

	if got := profileCalls.Load(); got != 2 {
		t.Errorf("expected the original request plus exactly one retry, got %d calls", got)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("expected exactly one refresh round trip, got %d", got)
	}

	pair, _ := store.Pair()
	if pair.Access != "new-token" {
		t.Errorf("expected refreshed access token to be stored, got %q", pair.Access)
	}
	if pair.Refresh != "r1" {
		t.Errorf("expected refresh token to be kept, got %q", pair.Refresh)
	}
}

func TestRefreshFailureClearsTokens(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token/refresh/" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"token expired"}`))
	}))
	defer server.Close()

	store := tokens.NewMemoryStore()
	store.Save(tokens.Pair{Access: "stale", Refresh: "dead"})

	expired := false
	tr := headlessadmin.NewTransport(testConfig(server.URL), store, nil)
	tr.OnAuthExpired = func() { expired = true }

	_, err := tr.Get(context.Background(), "/profile/", nil)
	if !errors.Is(err, headlessadmin.ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", err)
	}

	pair, _ := store.Pair()
	if pair.Access != "" || pair.Refresh != "" {
		t.Errorf("expected tokens to be cleared, got %+v", pair)
	}
	if !expired {
		t.Error("expected OnAuthExpired hook to run")
	}
}

func TestNoRefreshWithoutRefreshToken(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"nope"}`))
	}))
	defer server.Close()

	tr := headlessadmin.NewTransport(testConfig(server.URL), tokens.NewMemoryStore(), nil)

	_, err := tr.Get(context.Background(), "/profile/", nil)
	var httpErr *headlessadmin.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected a plain 401, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected no retry without a refresh token, got %d calls", calls.Load())
	}
}

func TestConnectionFailureIsNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	server.Close() // port is now refusing connections

	tr := headlessadmin.NewTransport(testConfig(server.URL), tokens.NewMemoryStore(), nil)

	_, err := tr.Get(context.Background(), "/users/", nil)
	if !headlessadmin.IsNetworkError(err) {
		t.Fatalf("expected NetworkError for refused connection, got %v", err)
	}
}

func TestTimeoutIsNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RequestTimeout = 50 * time.Millisecond
	tr := headlessadmin.NewTransport(cfg, tokens.NewMemoryStore(), nil)

	_, err := tr.Get(context.Background(), "/users/", nil)
	if !headlessadmin.IsNetworkError(err) {
		t.Fatalf("expected NetworkError for timeout, got %v", err)
	}
}
