// Package table is the headless list-view engine of the admin console: it
// manages search, pagination and loading state around a fetch function, and
// leaves rendering to whatever surface sits on top.
package table

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	headlessadmin "github.com/Priya-159/headless-admin"
)

// Mode selects who paginates.
type Mode int

const (
	// ModeClient assumes the fetch function returns the full result set;
	// the table filters and slices locally.
	ModeClient Mode = iota

	// ModeServer passes page, page size and search through to the fetch
	// function and trusts its counts — unless the response is visibly
	// unpaginated, see the degenerate-case handling in view().
	ModeServer
)

const (
	DefaultPageSize = 25

	// DefaultDebounce is applied to server-mode search input so a request
	// is not issued per keystroke.
	DefaultDebounce = 300 * time.Millisecond
)

// Query is what a server-mode fetch receives.
type Query struct {
	Page     int
	PageSize int
	Search   string
}

// FetchFunc retrieves rows. In client mode it is called with the zero Query.
type FetchFunc func(ctx context.Context, q Query) (*headlessadmin.Page, error)

// Config builds a Table.
type Config struct {
	Columns  []Column
	Fetch    FetchFunc
	Mode     Mode
	PageSize int

	// Debounce delays server-mode search fetches. Zero means
	// DefaultDebounce; negative disables debouncing entirely.
	Debounce time.Duration

	Logger *slog.Logger
}

// Table holds one list view's state. All methods are safe for concurrent
// use; a fetch completing after a newer one was dispatched is dropped, so
// rapid page or search changes cannot reorder state.
type Table struct {
	mu       sync.Mutex
	columns  []Column
	fetch    FetchFunc
	mode     Mode
	logger   *slog.Logger
	debounce time.Duration

	rows     []headlessadmin.Row
	page     int
	pageSize int
	search   string
	total    int
	loading  bool

	gen   uint64
	timer *time.Timer
}

func New(cfg Config) *Table {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	} else if debounce < 0 {
		debounce = 0
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Table{
		columns:  cfg.Columns,
		fetch:    cfg.Fetch,
		mode:     cfg.Mode,
		logger:   logger,
		debounce: debounce,
		page:     1,
		pageSize: pageSize,
	}
}

// Load fetches the current view. Call once after construction and again
// whenever the caller wants a hard refresh.
func (t *Table) Load(ctx context.Context) {
	t.mu.Lock()
	gen := t.dispatch()
	q := t.query()
	t.mu.Unlock()

	t.run(ctx, gen, q)
}

// SetPage moves to page n (1-based) and refetches.
func (t *Table) SetPage(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	t.mu.Lock()
	t.page = n
	gen := t.dispatch()
	q := t.query()
	t.mu.Unlock()

	t.run(ctx, gen, q)
}

// SetPageSize changes the page size and refetches.
func (t *Table) SetPageSize(ctx context.Context, size int) {
	if size < 1 {
		size = DefaultPageSize
	}
	t.mu.Lock()
	t.pageSize = size
	gen := t.dispatch()
	q := t.query()
	t.mu.Unlock()

	t.run(ctx, gen, q)
}

// SetSearch updates the search term. In client mode filtering is local and
// immediate. In server mode the page resets to 1 and a refetch is issued
// after the debounce interval; typing again within the interval replaces
// the pending fetch.
func (t *Table) SetSearch(ctx context.Context, term string) {
	t.mu.Lock()
	t.search = term

	if t.mode != ModeServer {
		t.mu.Unlock()
		return
	}

	t.page = 1

	if t.debounce <= 0 {
		gen := t.dispatch()
		q := t.query()
		t.mu.Unlock()
		t.run(ctx, gen, q)
		return
	}

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.debounce, func() {
		t.mu.Lock()
		gen := t.dispatch()
		q := t.query()
		t.mu.Unlock()
		t.run(ctx, gen, q)
	})
	t.mu.Unlock()
}

// Close cancels any pending debounced fetch. Call on unmount.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// dispatch marks a new fetch generation. Callers must hold the lock.
func (t *Table) dispatch() uint64 {
	t.gen++
	t.loading = true
	return t.gen
}

func (t *Table) query() Query {
	if t.mode == ModeServer {
		return Query{Page: t.page, PageSize: t.pageSize, Search: t.search}
	}
	return Query{}
}

// run executes one fetch. A result whose generation is no longer the latest
// is discarded: a slow response can never overwrite the state of a newer
// request. A failed fetch logs and leaves the previous rows showing with
// loading cleared — the table models no error state.
func (t *Table) run(ctx context.Context, gen uint64, q Query) {
	page, err := t.fetch(ctx, q)

	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen {
		t.logger.DebugContext(ctx, "dropping stale fetch result", "generation", gen, "latest", t.gen)
		return
	}

	t.loading = false
	if err != nil {
		t.logger.WarnContext(ctx, "failed to load table data", "error", err)
		return
	}

	t.rows = page.Items
	t.total = page.TotalCount
}

// localView reports whether filtering and slicing happen in the table. True
// in client mode, and in server mode when the backend visibly ignored
// pagination and returned more than one page; that degenerate response is
// handled locally instead of being re-requested.
func (t *Table) localView() bool {
	return t.mode == ModeClient || len(t.rows) > t.pageSize
}

func (t *Table) filtered() []headlessadmin.Row {
	if !t.localView() || t.search == "" {
		return t.rows
	}
	needle := strings.ToLower(t.search)
	var out []headlessadmin.Row
	for _, row := range t.rows {
		for _, v := range row {
			if strings.Contains(strings.ToLower(fmt.Sprint(v)), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// Rows returns the rows of the current page.
func (t *Table) Rows() []headlessadmin.Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.localView() {
		return t.rows
	}

	f := t.filtered()
	start := (t.page - 1) * t.pageSize
	if start > len(f) {
		start = len(f)
	}
	end := start + t.pageSize
	if end > len(f) {
		end = len(f)
	}
	return f[start:end]
}

// TotalCount is the number of rows across all pages, after filtering.
func (t *Table) TotalCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.localView() {
		return len(t.filtered())
	}
	return t.total
}

// TotalPages derives the page count from TotalCount and the page size.
func (t *Table) TotalPages() int {
	count := t.TotalCount()

	t.mu.Lock()
	size := t.pageSize
	t.mu.Unlock()

	return (count + size - 1) / size
}

func (t *Table) CurrentPage() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.page
}

func (t *Table) PageSize() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pageSize
}

func (t *Table) Search() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.search
}

func (t *Table) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

func (t *Table) Columns() []Column {
	return t.columns
}
