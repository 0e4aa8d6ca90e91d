package headlessadmin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// Row is one record of a list response. Collections are heterogeneous, so
// rows stay schemaless; page components decode the columns they care about.
type Row = map[string]any

// Page is the canonical list shape. Every backend response — bare array,
// {results, count} or {data, total} — is mapped here at the boundary, and
// nothing above this layer branches on the wire shape again.
type Page struct {
	Items      []Row
	TotalCount int
}

// NormalizePage folds the three known backend list shapes into a Page. An
// unrecognized body yields an empty page rather than an error, matching the
// console's tolerance for odd endpoints.
func NormalizePage(raw json.RawMessage) *Page {
	var items []Row
	if err := json.Unmarshal(raw, &items); err == nil {
		return &Page{Items: items, TotalCount: len(items)}
	}

	var envelope struct {
		Results []Row `json:"results"`
		Count   int   `json:"count"`
		Data    []Row `json:"data"`
		Total   int   `json:"total"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &Page{}
	}

	switch {
	case envelope.Results != nil:
		count := envelope.Count
		if count == 0 {
			count = len(envelope.Results)
		}
		return &Page{Items: envelope.Results, TotalCount: count}
	case envelope.Data != nil:
		count := envelope.Total
		if count == 0 {
			count = len(envelope.Data)
		}
		return &Page{Items: envelope.Data, TotalCount: count}
	}

	return &Page{}
}

// ListParams are the standard list-view query parameters.
type ListParams struct {
	Page     int
	PageSize int
	Search   string

	// Extra carries endpoint-specific filters verbatim.
	Extra url.Values
}

func (p ListParams) Values() url.Values {
	v := url.Values{}
	for k, vs := range p.Extra {
		v[k] = vs
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}

// Resource is the uniform client for one backend collection. It is a
// capability descriptor closing over an endpoint; all state lives in the
// Client behind it.
type Resource struct {
	client   *Client
	endpoint string
}

func (r *Resource) itemPath(id string) string {
	return r.endpoint + id + "/"
}

// List fetches one page of the collection. Distinct parameter sets cache
// independently because the parameters are part of the cache key.
func (r *Resource) List(ctx context.Context, p ListParams) (*Page, error) {
	params := p.Values()
	key := Key(r.endpoint, params)
	raw, err := r.client.withFallback(ctx, http.MethodGet, key,
		func(ctx context.Context) (json.RawMessage, error) {
			return r.client.transport.Get(ctx, r.endpoint, params)
		},
		r.client.fallbackCall(http.MethodGet, r.endpoint, params, nil),
	)
	if err != nil {
		return nil, err
	}
	return NormalizePage(raw), nil
}

func (r *Resource) Get(ctx context.Context, id string) (json.RawMessage, error) {
	path := r.itemPath(id)
	return r.client.withFallback(ctx, http.MethodGet, path,
		func(ctx context.Context) (json.RawMessage, error) {
			return r.client.transport.Get(ctx, path, nil)
		},
		r.client.fallbackCall(http.MethodGet, path, nil, nil),
	)
}

func (r *Resource) Create(ctx context.Context, body any) (json.RawMessage, error) {
	return r.client.withFallback(ctx, http.MethodPost, r.endpoint,
		func(ctx context.Context) (json.RawMessage, error) {
			return r.client.transport.Post(ctx, r.endpoint, body)
		},
		r.client.fallbackCall(http.MethodPost, r.endpoint, nil, body),
	)
}

// CreateForm submits a multipart body instead of JSON. Uploads have no mock
// analog, so there is no fallback: an unreachable backend is surfaced.
func (r *Resource) CreateForm(ctx context.Context, form *Form) (json.RawMessage, error) {
	return r.client.withFallback(ctx, http.MethodPost, r.endpoint,
		func(ctx context.Context) (json.RawMessage, error) {
			return r.client.transport.Upload(ctx, r.endpoint, form)
		},
		nil,
	)
}

func (r *Resource) Update(ctx context.Context, id string, body any) (json.RawMessage, error) {
	path := r.itemPath(id)
	return r.client.withFallback(ctx, http.MethodPut, path,
		func(ctx context.Context) (json.RawMessage, error) {
			return r.client.transport.Put(ctx, path, body)
		},
		r.client.fallbackCall(http.MethodPut, path, nil, body),
	)
}

func (r *Resource) Patch(ctx context.Context, id string, body any) (json.RawMessage, error) {
	path := r.itemPath(id)
	return r.client.withFallback(ctx, http.MethodPatch, path,
		func(ctx context.Context) (json.RawMessage, error) {
			return r.client.transport.Patch(ctx, path, body)
		},
		r.client.fallbackCall(http.MethodPatch, path, nil, body),
	)
}

func (r *Resource) Delete(ctx context.Context, id string) (json.RawMessage, error) {
	path := r.itemPath(id)
	return r.client.withFallback(ctx, http.MethodDelete, path,
		func(ctx context.Context) (json.RawMessage, error) {
			return r.client.transport.Delete(ctx, path)
		},
		r.client.fallbackCall(http.MethodDelete, path, nil, nil),
	)
}

// action issues a POST to a member action path like /message_threads/5/toggle_block/.
func (r *Resource) action(ctx context.Context, id, name string) (json.RawMessage, error) {
	path := r.itemPath(id) + name + "/"
	return r.client.withFallback(ctx, http.MethodPost, path,
		func(ctx context.Context) (json.RawMessage, error) {
			return r.client.transport.Post(ctx, path, nil)
		},
		r.client.fallbackCall(http.MethodPost, path, nil, nil),
	)
}
