package headlessadmin

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

// Entry is one cached response body. Freshness is judged by the client
// against its TTL; stores only persist what they are handed.
type Entry struct {
	Data      json.RawMessage
	Timestamp time.Time
}

// Cache is the storage behind the client's read-through layer. Invalidate
// removes every entry whose key lives under the given top-level resource
// segment, which is how writes expire related reads.
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, e *Entry) error
	Invalidate(ctx context.Context, segment string) error
}

// Key derives the cache key for a request: the endpoint plus its
// canonically-encoded query string. url.Values sorts parameters, so two
// equal parameter sets always produce the same key.
func Key(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}

// Segment extracts the first path component of a cache key, e.g.
// "/users/5/" -> "users". Used for coarse write invalidation.
func Segment(key string) string {
	key = strings.TrimPrefix(key, "/")
	if i := strings.IndexAny(key, "/?"); i >= 0 {
		return key[:i]
	}
	return key
}
