package mockapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	headlessadmin "github.com/Priya-159/headless-admin"
)

const (
	mockUsername = "admin"
	mockPassword = "admin123"
)

// Server exposes the mock dataset over HTTP so the console can be developed
// against a local backend. Envelope styles are deliberately mixed the way
// the real backend mixes them: most collections answer DRF {results, count},
// the notification campaign feed answers {data, total}, and states answer a
// bare array.
type Server struct {
	provider *Provider
	logger   *slog.Logger
	router   *mux.Router
}

func NewServer(provider *Provider, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{provider: provider, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/auth/token/", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/token/refresh/", s.handleRefresh).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireBearer)
	api.PathPrefix("/dashboard/").HandlerFunc(s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/{collection}/", s.handleCollection).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/{collection}/{id}/", s.handleItem).
		Methods(http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	api.HandleFunc("/{collection}/{id}/{action}/", s.handleAction).Methods(http.MethodPost)

	notif := r.PathPrefix("/notification").Subrouter()
	notif.Use(s.requireBearer)
	notif.HandleFunc("/campaigns", s.handleCampaigns).Methods(http.MethodGet)
	notif.HandleFunc("/campaigns/", s.handleCampaigns).Methods(http.MethodGet)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("mock request", "method", r.Method, "path", r.URL.Path)
	s.router.ServeHTTP(w, r)
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed credentials"})
		return
	}
	if creds.Username != mockUsername || creds.Password != mockPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access":  uuid.NewString(),
		"refresh": uuid.NewString(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Refresh == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": uuid.NewString()})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	raw, err := s.provider.Call(r.Context(), http.MethodGet, strings.TrimPrefix(r.URL.Path, "/api"), r.URL.Query(), nil)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]

	if r.Method == http.MethodPost {
		var body headlessadmin.Row
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
			return
		}
		raw, err := s.provider.create(collection, body)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
			return
		}
		writeRaw(w, http.StatusCreated, raw)
		return
	}

	params := r.URL.Query()
	rows := filterRows(s.provider.Rows(collection), params.Get("search"))

	// States keep the legacy bare-array shape and ignore pagination.
	if collection == "states" {
		raw, _ := json.Marshal(rows)
		writeRaw(w, http.StatusOK, raw)
		return
	}

	page, _ := strconv.Atoi(params.Get("page"))
	pageSize, _ := strconv.Atoi(params.Get("page_size"))
	out := rows
	if page > 0 && pageSize > 0 {
		start := min((page-1)*pageSize, len(rows))
		end := min(start+pageSize, len(rows))
		out = rows[start:end]
	}
	if out == nil {
		out = []headlessadmin.Row{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": out, "count": len(rows)})
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collection, id := vars["collection"], vars["id"]

	switch r.Method {
	case http.MethodGet:
		raw, _ := s.provider.get(collection, id)
		if string(raw) == "{}" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		writeRaw(w, http.StatusOK, raw)
	case http.MethodPut, http.MethodPatch:
		var body headlessadmin.Row
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
			return
		}
		raw, err := s.provider.update(collection, id, body)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
			return
		}
		writeRaw(w, http.StatusOK, raw)
	case http.MethodDelete:
		raw, _ := s.provider.remove(collection, id)
		writeRaw(w, http.StatusOK, raw)
	}
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	writeRaw(w, http.StatusOK, successStub())
}

// handleCampaigns answers in the alternate {data, total} envelope.
func (s *Server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	rows := filterRows(s.provider.Rows("scheduled_notification_campaigns"), r.URL.Query().Get("search"))
	if rows == nil {
		rows = []headlessadmin.Row{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rows, "total": len(rows)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeRaw(w http.ResponseWriter, status int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}
