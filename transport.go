package headlessadmin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/Priya-159/headless-admin/tokens"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"

	contentTypeJSON = "application/json"
)

const (
	endpointToken        = "/auth/token/"
	endpointTokenRefresh = "/auth/token/refresh/"
)

// rootPrefixes are the backend's known root paths. Endpoints outside them are
// assumed to belong to the core API and get the /api prefix.
var rootPrefixes = []string{"/auth", "/notification", "/api", "/ssrapi", "/route"}

// Transport issues authenticated requests against the backend. It attaches
// the stored bearer token, performs exactly one refresh-and-retry round trip
// on a 401 when a refresh token exists, and normalizes connectivity failures
// to *NetworkError so callers can distinguish them from server verdicts.
type Transport struct {
	baseURL string
	client  *http.Client
	store   tokens.Store
	logger  *slog.Logger

	// OnAuthExpired runs after an irrecoverable refresh failure, once the
	// stored tokens have been cleared. The UI layer hangs its redirect to
	// the login route here.
	OnAuthExpired func()

	refresh singleflight.Group
}

// NewTransport builds a Transport from the configuration. If the logger is
// nil, a no-op logger writing to io.Discard is used.
func NewTransport(cfg Config, store tokens.Store, logger *slog.Logger) *Transport {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Transport{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		store:   store,
		logger:  logger,
	}
}

// Get issues a GET with the params serialized as a query string.
func (t *Transport) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	return t.do(ctx, http.MethodGet, endpoint, params, nil)
}

func (t *Transport) Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return t.do(ctx, http.MethodPost, endpoint, nil, body)
}

func (t *Transport) Put(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return t.do(ctx, http.MethodPut, endpoint, nil, body)
}

func (t *Transport) Patch(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return t.do(ctx, http.MethodPatch, endpoint, nil, body)
}

func (t *Transport) Delete(ctx context.Context, endpoint string) (json.RawMessage, error) {
	return t.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// Login exchanges credentials for a token pair and stores it.
func (t *Transport) Login(ctx context.Context, username, password string) error {
	raw, err := t.Post(ctx, endpointToken, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}

	var pair tokens.Pair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return fmt.Errorf("decoding token response: %w", err)
	}
	return t.store.Save(pair)
}

// Logout discards the stored token pair.
func (t *Transport) Logout() error {
	return t.store.Clear()
}

// Form is a multipart payload for Upload.
type Form struct {
	fields map[string]string
	files  []formFile
}

type formFile struct {
	field   string
	name    string
	content []byte
}

func NewForm() *Form {
	return &Form{fields: make(map[string]string)}
}

func (f *Form) Set(key, value string) { f.fields[key] = value }

func (f *Form) AddFile(field, name string, content []byte) {
	f.files = append(f.files, formFile{field: field, name: name, content: content})
}

// Upload sends the form as multipart data. The bearer token is attached but
// no JSON content type is set; the multipart writer supplies its own.
// Failures come back as *UploadError and are never served from mock data.
func (t *Transport) Upload(ctx context.Context, endpoint string, form *Form) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range form.fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, &UploadError{Endpoint: endpoint, Err: err}
		}
	}
	for _, f := range form.files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			return nil, &UploadError{Endpoint: endpoint, Err: err}
		}
		if _, err := part.Write(f.content); err != nil {
			return nil, &UploadError{Endpoint: endpoint, Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return nil, &UploadError{Endpoint: endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.routeURL(endpoint, nil), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, &UploadError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set(headerContentType, w.FormDataContentType())
	t.attachBearer(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &UploadError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UploadError{Endpoint: endpoint, Err: &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body, resp.Status),
		}}
	}
	return unwrapEnvelope(body), nil
}

// routeURL builds the absolute URL for an endpoint, applying the /api default
// for paths outside the known root prefixes.
func (t *Transport) routeURL(endpoint string, params url.Values) string {
	ep := endpoint
	if !strings.HasPrefix(ep, "/") {
		ep = "/" + ep
	}

	known := false
	for _, p := range rootPrefixes {
		if strings.HasPrefix(ep, p) {
			known = true
			break
		}
	}
	if !known {
		ep = "/api" + ep
	}

	u := t.baseURL + ep
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (t *Transport) attachBearer(req *http.Request) {
	pair, err := t.store.Pair()
	if err != nil || pair.Access == "" {
		return
	}
	req.Header.Set(headerAuthorization, "Bearer "+pair.Access)
}

func (t *Transport) do(ctx context.Context, method, endpoint string, params url.Values, body any) (json.RawMessage, error) {
	target := t.routeURL(endpoint, params)

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	// The request is rebuilt for the retry after a token refresh; bodies are
	// byte slices so replaying is safe.
	newRequest := func() (*http.Request, error) {
		var r io.Reader
		if payload != nil {
			r = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, r)
		if err != nil {
			return nil, err
		}
		req.Header.Set(headerContentType, contentTypeJSON)
		t.attachBearer(req)
		return req, nil
	}

	req, err := newRequest()
	if err != nil {
		return nil, err
	}

	t.logger.DebugContext(ctx, "requesting", "method", method, "url", target)

	resp, err := t.client.Do(req)
	if err != nil {
		if isTransportFailure(err) {
			return nil, &NetworkError{URL: target, Err: err}
		}
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && t.hasRefreshToken() {
		resp.Body.Close()

		t.logger.DebugContext(ctx, "access token expired, refreshing")
		if err := t.refreshAccessToken(ctx); err != nil {
			// Irrecoverable: drop credentials and hand control back to the
			// login flow.
			_ = t.store.Clear()
			if t.OnAuthExpired != nil {
				t.OnAuthExpired()
			}
			return nil, errors.Join(ErrRefreshFailed, err)
		}

		if req, err = newRequest(); err != nil {
			return nil, err
		}
		if resp, err = t.client.Do(req); err != nil {
			if isTransportFailure(err) {
				return nil, &NetworkError{URL: target, Err: err}
			}
			return nil, err
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: target, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(respBody, resp.Status)
		t.logger.DebugContext(ctx, "api error", "status", resp.StatusCode, "message", msg)
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: msg}
	}

	return unwrapEnvelope(respBody), nil
}

func (t *Transport) hasRefreshToken() bool {
	pair, err := t.store.Pair()
	return err == nil && pair.Refresh != ""
}

// refreshAccessToken performs the single token-refresh round trip. Concurrent
// callers failing with a 401 at the same moment share one refresh through the
// singleflight group.
func (t *Transport) refreshAccessToken(ctx context.Context) error {
	_, err, _ := t.refresh.Do("refresh", func() (any, error) {
		pair, err := t.store.Pair()
		if err != nil {
			return nil, err
		}
		if pair.Refresh == "" {
			return nil, ErrNoRefreshToken
		}

		payload, err := json.Marshal(map[string]string{"refresh": pair.Refresh})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			t.routeURL(endpointTokenRefresh, nil), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set(headerContentType, contentTypeJSON)

		resp, err := t.client.Do(req)
		if err != nil {
			if isTransportFailure(err) {
				return nil, &NetworkError{URL: endpointTokenRefresh, Err: err}
			}
			return nil, err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(body, resp.Status)}
		}

		var renewed tokens.Pair
		if err := json.Unmarshal(body, &renewed); err != nil {
			return nil, err
		}
		if renewed.Refresh == "" {
			renewed.Refresh = pair.Refresh
		}
		return nil, t.store.Save(renewed)
	})
	return err
}

// errorMessage pulls the server's own description out of an error body,
// checking the detail, message and error fields in that order.
func errorMessage(body []byte, fallback string) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, field := range []string{"detail", "message", "error"} {
			raw, ok := payload[field]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				return s
			}
		}
	}
	return fallback
}

// unwrapEnvelope returns the inner data field when the body has the server's
// {data, msg} shape, and the body unchanged otherwise.
func unwrapEnvelope(body []byte) json.RawMessage {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return body
	}
	data, hasData := payload["data"]
	if _, hasMsg := payload["msg"]; hasData && hasMsg {
		return data
	}
	return body
}
