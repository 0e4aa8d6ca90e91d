// Package mockapi is the mock data provider behind the façade's network
// fallback, and a small dev server exposing the same dataset over HTTP.
package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	headlessadmin "github.com/Priya-159/headless-admin"
)

// Provider answers façade calls from a deterministic in-memory dataset. It
// implements headlessadmin.Fallback. Writes mutate the in-memory copy so a
// disconnected session stays self-consistent.
type Provider struct {
	mu          sync.RWMutex
	collections map[string][]headlessadmin.Row
	dashboards  map[string]any

	// Latency simulates a network round trip. Zero in tests.
	Latency time.Duration
}

func NewProvider() *Provider {
	return &Provider{
		collections: seedCollections(),
		dashboards:  seedDashboards(),
	}
}

// Call routes a façade request against the dataset. Unknown read endpoints
// answer an empty list or object rather than failing; unknown writes answer
// a generic success stub. The fallback must never be the thing that breaks.
func (p *Provider) Call(ctx context.Context, method, endpoint string, params url.Values, body any) (json.RawMessage, error) {
	if p.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.Latency):
		}
	}

	if method == http.MethodGet && strings.HasPrefix(normalize(endpoint), "/dashboard/") {
		return p.dashboard(normalize(endpoint))
	}

	collection, id := splitEndpoint(endpoint)

	switch method {
	case http.MethodGet:
		if id == "" {
			return p.list(collection, params)
		}
		return p.get(collection, id)
	case http.MethodPost:
		if id == "" {
			return p.create(collection, body)
		}
		// Member actions (e.g. toggle_block) answer a success stub.
		return successStub(), nil
	case http.MethodPut, http.MethodPatch:
		return p.update(collection, id, body)
	case http.MethodDelete:
		return p.remove(collection, id)
	}

	return successStub(), nil
}

func (p *Provider) dashboard(endpoint string) (json.RawMessage, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	data, ok := p.dashboards[endpoint]
	if !ok {
		return json.RawMessage(`[]`), nil
	}
	return json.Marshal(data)
}

func (p *Provider) list(collection string, params url.Values) (json.RawMessage, error) {
	p.mu.RLock()
	rows := p.collections[collection]
	p.mu.RUnlock()

	filtered := filterRows(rows, params.Get("search"))

	page, _ := strconv.Atoi(params.Get("page"))
	pageSize, _ := strconv.Atoi(params.Get("page_size"))

	out := filtered
	if page > 0 && pageSize > 0 {
		start := (page - 1) * pageSize
		if start > len(filtered) {
			start = len(filtered)
		}
		end := start + pageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		out = filtered[start:end]
	}

	if out == nil {
		out = []headlessadmin.Row{}
	}
	return json.Marshal(map[string]any{
		"results": out,
		"count":   len(filtered),
	})
}

func (p *Provider) get(collection, id string) (json.RawMessage, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, row := range p.collections[collection] {
		if rowID(row) == id {
			return json.Marshal(row)
		}
	}
	return json.RawMessage(`{}`), nil
}

func (p *Provider) create(collection string, body any) (json.RawMessage, error) {
	row, err := toRow(body)
	if err != nil {
		return nil, err
	}
	if rowID(row) == "" {
		row["id"] = uuid.NewString()
	}

	p.mu.Lock()
	p.collections[collection] = append(p.collections[collection], row)
	p.mu.Unlock()

	return json.Marshal(row)
}

func (p *Provider) update(collection, id string, body any) (json.RawMessage, error) {
	patch, err := toRow(body)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, row := range p.collections[collection] {
		if rowID(row) == id {
			for k, v := range patch {
				if k != "id" {
					row[k] = v
				}
			}
			return json.Marshal(row)
		}
	}
	return successStub(), nil
}

func (p *Provider) remove(collection, id string) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows := p.collections[collection]
	for i, row := range rows {
		if rowID(row) == id {
			p.collections[collection] = append(rows[:i], rows[i+1:]...)
			break
		}
	}
	return successStub(), nil
}

// Rows returns a copy of one collection, for the dev server and tests.
func (p *Provider) Rows(collection string) []headlessadmin.Row {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]headlessadmin.Row, len(p.collections[collection]))
	copy(out, p.collections[collection])
	return out
}

func successStub() json.RawMessage {
	return json.RawMessage(`{"status":"success","message":"ok (mock)"}`)
}

func toRow(body any) (headlessadmin.Row, error) {
	if body == nil {
		return headlessadmin.Row{}, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var row headlessadmin.Row
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, err
	}
	return row, nil
}

func rowID(row headlessadmin.Row) string {
	v, ok := row["id"]
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}

func filterRows(rows []headlessadmin.Row, search string) []headlessadmin.Row {
	if search == "" {
		return rows
	}
	needle := strings.ToLower(search)
	var out []headlessadmin.Row
	for _, row := range rows {
		for _, v := range row {
			if strings.Contains(strings.ToLower(fmt.Sprint(v)), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// normalize strips the /api prefix the transport would have added, so the
// provider sees the endpoint the caller wrote.
func normalize(endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return strings.TrimPrefix(endpoint, "/api")
}

// splitEndpoint breaks "/admin_users/5/" into ("admin_users", "5") and
// "/admin_users/" into ("admin_users", "").
func splitEndpoint(endpoint string) (collection, id string) {
	parts := strings.Split(strings.Trim(normalize(endpoint), "/"), "/")
	if len(parts) == 0 {
		return "", ""
	}
	collection = parts[0]
	if len(parts) > 1 {
		id = parts[1]
	}
	return collection, id
}
