//go:build !integration

package local

import (
	"context"
	"errors"
	"testing"
	"time"

	headlessadmin "github.com/Priya-159/headless-admin"
	"github.com/Priya-159/headless-admin/caches"
)

func TestGetSet(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()

	if _, err := c.Get(ctx, "/users/"); !errors.Is(err, caches.ErrNoEntry) {
		t.Fatalf("expected ErrNoEntry, got %v", err)
	}

	entry := &headlessadmin.Entry{
		Data:      []byte(`[{"id":1}]`),
		Timestamp: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := c.Set(ctx, "/users/", entry); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := c.Get(ctx, "/users/")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got.Data) != string(entry.Data) {
		t.Errorf("expected %s, got %s", entry.Data, got.Data)
	}
	if !got.Timestamp.Equal(entry.Timestamp) {
		t.Errorf("expected timestamp %v, got %v", entry.Timestamp, got.Timestamp)
	}
}

func TestInvalidate(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()
	now := time.Now()

	keys := []string{
		"/users/",
		"/users/?page=2&page_size=25",
		"/users/5/",
		"/trips/",
	}
	for _, k := range keys {
		if err := c.Set(ctx, k, &headlessadmin.Entry{Data: []byte(`{}`), Timestamp: now}); err != nil {
			t.Fatalf("set %s failed: %v", k, err)
		}
	}

	if err := c.Invalidate(ctx, "users"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	for _, k := range keys[:3] {
		if _, err := c.Get(ctx, k); !errors.Is(err, caches.ErrNoEntry) {
			t.Errorf("expected %s to be invalidated, got err %v", k, err)
		}
	}

	if _, err := c.Get(ctx, "/trips/"); err != nil {
		t.Errorf("expected /trips/ to survive, got %v", err)
	}

	if c.Len() != 1 {
		t.Errorf("expected 1 remaining entry, got %d", c.Len())
	}
}
