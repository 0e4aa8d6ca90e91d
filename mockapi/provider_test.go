package mockapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	headlessadmin "github.com/Priya-159/headless-admin"
	"github.com/Priya-159/headless-admin/mockapi"
)

func call(t *testing.T, p *mockapi.Provider, method, endpoint string, params url.Values, body any) json.RawMessage {
	t.Helper()
	raw, err := p.Call(context.Background(), method, endpoint, params, body)
	require.NoError(t, err)
	return raw
}

func TestProviderDeterministicSeed(t *testing.T) {
	t.Parallel()

	a := mockapi.NewProvider().Rows("admin_users")
	b := mockapi.NewProvider().Rows("admin_users")

	require.Len(t, a, 57)
	assert.Equal(t, a[0]["id"], b[0]["id"], "seeded ids must be stable across providers")
	assert.Equal(t, a[0]["username"], b[0]["username"])
}

func TestProviderListPaginationAndSearch(t *testing.T) {
	t.Parallel()

	p := mockapi.NewProvider()

	raw := call(t, p, http.MethodGet, "/user_vehicles/", url.Values{
		"page":      {"2"},
		"page_size": {"10"},
	}, nil)
	page := headlessadmin.NormalizePage(raw)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 34, page.TotalCount)

	// Last page holds the remainder.
	raw = call(t, p, http.MethodGet, "/user_vehicles/", url.Values{
		"page":      {"4"},
		"page_size": {"10"},
	}, nil)
	page = headlessadmin.NormalizePage(raw)
	assert.Len(t, page.Items, 4)

	// Search narrows before pagination; the count reflects the filtered set.
	raw = call(t, p, http.MethodGet, "/user_vehicles/", url.Values{
		"search":    {"diesel"},
		"page":      {"1"},
		"page_size": {"100"},
	}, nil)
	page = headlessadmin.NormalizePage(raw)
	require.NotEmpty(t, page.Items)
	assert.Equal(t, len(page.Items), page.TotalCount)
	for _, row := range page.Items {
		assert.Equal(t, "Diesel", row["fuel_type"])
	}
}

func TestProviderStripsAPIPrefix(t *testing.T) {
	t.Parallel()

	p := mockapi.NewProvider()

	raw := call(t, p, http.MethodGet, "/api/admin_users/", nil, nil)
	page := headlessadmin.NormalizePage(raw)
	assert.Equal(t, 57, page.TotalCount)
}

func TestProviderCRUD(t *testing.T) {
	t.Parallel()

	p := mockapi.NewProvider()
	before := len(p.Rows("log_books"))

	raw := call(t, p, http.MethodPost, "/log_books/", nil, map[string]any{
		"vehicle":     "Vehicle 99",
		"fuel_litres": 12.0,
	})
	var created headlessadmin.Row
	require.NoError(t, json.Unmarshal(raw, &created))
	id, _ := created["id"].(string)
	require.NotEmpty(t, id, "create must assign an id")
	assert.Len(t, p.Rows("log_books"), before+1)

	raw = call(t, p, http.MethodPatch, "/log_books/"+id+"/", nil, map[string]any{
		"fuel_litres": 18.5,
	})
	var updated headlessadmin.Row
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, 18.5, updated["fuel_litres"])
	assert.Equal(t, "Vehicle 99", updated["vehicle"], "patch merges, it does not replace")

	call(t, p, http.MethodDelete, "/log_books/"+id+"/", nil, nil)
	assert.Len(t, p.Rows("log_books"), before)

	// A read of the deleted row answers an empty object, never an error.
	raw = call(t, p, http.MethodGet, "/log_books/"+id+"/", nil, nil)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestProviderDashboards(t *testing.T) {
	t.Parallel()

	p := mockapi.NewProvider()

	raw := call(t, p, http.MethodGet, "/dashboard/stats/", nil, nil)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Contains(t, stats, "totalUsers")
	assert.Contains(t, stats, "activeTrips")

	raw = call(t, p, http.MethodGet, "/dashboard/users-growth/", nil, nil)
	var growth []map[string]any
	require.NoError(t, json.Unmarshal(raw, &growth))
	require.Len(t, growth, 6)
	assert.Equal(t, "Jan", growth[0]["month"])

	// Unknown dashboards answer an empty series.
	raw = call(t, p, http.MethodGet, "/dashboard/unknown/", nil, nil)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestProviderMemberActionStub(t *testing.T) {
	t.Parallel()

	p := mockapi.NewProvider()

	raw := call(t, p, http.MethodPost, "/message_threads/abc/toggle_block/", nil, nil)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "success", out["status"])
}
