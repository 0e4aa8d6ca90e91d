// Command admin-console lists a backend collection from the terminal. It is
// the headless console's reference wiring: transport, cache backend, mock
// fallback and the table engine, driven by flags and environment.
package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	headlessadmin "github.com/Priya-159/headless-admin"
	"github.com/Priya-159/headless-admin/caches/dynamodb"
	"github.com/Priya-159/headless-admin/caches/local"
	"github.com/Priya-159/headless-admin/caches/postgres"
	"github.com/Priya-159/headless-admin/mockapi"
	"github.com/Priya-159/headless-admin/table"
	"github.com/Priya-159/headless-admin/tokens"
)

func main() {
	collection := flag.String("collection", "/admin_users/", "resource endpoint to list")
	page := flag.Int("page", 1, "page to display")
	pageSize := flag.Int("page-size", 25, "rows per page")
	search := flag.String("search", "", "search term")
	serverMode := flag.Bool("server-pagination", true, "let the backend paginate")
	username := flag.String("username", "", "login username (skip login when empty)")
	password := flag.String("password", "", "login password")
	csvOut := flag.Bool("csv", false, "emit CSV instead of a table")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := headlessadmin.ConfigFromEnv()

	store, err := tokenStore()
	if err != nil {
		logger.Error("token store setup failed", "error", err)
		os.Exit(1)
	}

	cache, err := cacheBackend(ctx, logger)
	if err != nil {
		logger.Error("cache setup failed", "error", err)
		os.Exit(1)
	}

	transport := headlessadmin.NewTransport(cfg, store, logger)
	transport.OnAuthExpired = func() {
		logger.Warn("session expired, login required")
	}

	if *username != "" {
		if err := transport.Login(ctx, *username, *password); err != nil {
			logger.Error("login failed", "error", err)
			os.Exit(1)
		}
	}

	client := headlessadmin.NewClient(cfg, transport, cache, mockapi.NewProvider(), nil, logger)
	resource := clientResource(client, *collection)

	mode := table.ModeClient
	if *serverMode {
		mode = table.ModeServer
	}

	t := table.New(table.Config{
		Columns: columnsFor(*collection),
		Fetch: func(ctx context.Context, q table.Query) (*headlessadmin.Page, error) {
			return resource.List(ctx, headlessadmin.ListParams{
				Page:     q.Page,
				PageSize: q.PageSize,
				Search:   q.Search,
			})
		},
		Mode:     mode,
		PageSize: *pageSize,
		Logger:   logger,
	})
	defer t.Close()

	t.Load(ctx)
	if *search != "" {
		t.SetSearch(ctx, *search)
		// Wait out the debounce before reading state.
		time.Sleep(table.DefaultDebounce + 50*time.Millisecond)
	}
	if *page > 1 {
		t.SetPage(ctx, *page)
	}

	if *csvOut {
		if err := t.WriteCSV(os.Stdout); err != nil {
			logger.Error("csv export failed", "error", err)
			os.Exit(1)
		}
		return
	}

	printTable(t)
	fmt.Printf("\npage %d of %d (%d rows)\n", t.CurrentPage(), t.TotalPages(), t.TotalCount())
}

// tokenStore picks the encrypted file store when a key is configured and
// falls back to process memory otherwise.
func tokenStore() (tokens.Store, error) {
	secret := os.Getenv("TOKEN_STORE_SECRET")
	if secret == "" {
		return tokens.NewMemoryStore(), nil
	}

	key := sha256.Sum256([]byte(secret))
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return tokens.NewFileStore(filepath.Join(home, ".headless-admin", "tokens"), key[:])
}

// cacheBackend selects the cache from CACHE_BACKEND: memory (default),
// postgres (DATABASE_URL) or dynamodb (CACHE_TABLE).
func cacheBackend(ctx context.Context, logger *slog.Logger) (headlessadmin.Cache, error) {
	switch os.Getenv("CACHE_BACKEND") {
	case "", "memory":
		return local.New(), nil
	case "postgres":
		db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
		if err != nil {
			return nil, err
		}
		return postgres.New(ctx, db, &postgres.Config{
			DeleteExpiredEntries: true,
		}, logger)
	case "dynamodb":
		awscfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		return dynamodb.New(ctx, awsdynamodb.NewFromConfig(awscfg), &dynamodb.Config{
			Table:                os.Getenv("CACHE_TABLE"),
			DeleteExpiredEntries: true,
		})
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", os.Getenv("CACHE_BACKEND"))
	}
}

// clientResource maps an endpoint flag to the façade's resource for it, so
// the CLI exercises the same surface the console pages use.
func clientResource(c *headlessadmin.Client, endpoint string) *headlessadmin.Resource {
	known := map[string]*headlessadmin.Resource{
		"/admin_users/":                      c.Accounts.Users,
		"/admin_controls/":                   c.Accounts.AdminControls,
		"/countries/":                        c.Accounts.Countries,
		"/states/":                           c.Accounts.States,
		"/subscription_transactions/":        c.Accounts.SubscriptionTransactions,
		"/trip_usages/":                      c.Accounts.TripUsages,
		"/log_books/":                        c.Vehicles.LogBooks,
		"/reminders/":                        c.Vehicles.Reminders,
		"/trips/":                            c.Vehicles.Trips,
		"/user_vehicles/":                    c.Vehicles.UserVehicles,
		"/user_fuel_prices/":                 c.Vehicles.UserFuelPrices,
		"/vehicle_makers/":                   c.Vehicles.Makers,
		"/vehicle_types/":                    c.Vehicles.Types,
		"/scheduled_notification_campaigns/": c.Notifications.ScheduledCampaigns,
		"/scheduled_notification_logs/":      c.Notifications.ScheduledLogs,
		"/message_threads/":                  c.ContactMessages.Threads.Resource,
		"/messages/":                         c.ContactMessages.Messages,
		"/fcm_devices/":                      c.FCM.Devices,
	}
	if r, ok := known[endpoint]; ok {
		return r
	}
	return c.Resource(endpoint)
}

// columnsFor returns a sensible column set per collection, defaulting to
// id plus a name-ish field.
func columnsFor(endpoint string) []table.Column {
	switch strings.Trim(endpoint, "/") {
	case "admin_users":
		return []table.Column{
			{Header: "ID", Accessor: "id"},
			{Header: "Username", Accessor: "username"},
			{Header: "Email", Accessor: "email"},
			{Header: "Active", Accessor: "is_active", Empty: table.DashWhenMissing},
		}
	case "user_vehicles":
		return []table.Column{
			{Header: "ID", Accessor: "id"},
			{Header: "Name", Accessor: "name"},
			{Header: "Maker", Accessor: "maker"},
			{Header: "Type", Accessor: "vehicle_type"},
			{Header: "Mileage", Accessor: "mileage", Empty: table.DashWhenMissing},
		}
	case "fcm_devices":
		return []table.Column{
			{Header: "ID", Accessor: "id"},
			{Header: "Device", Accessor: "device_type"},
			{Header: "Active", Accessor: "active", Empty: table.DashWhenMissing},
		}
	default:
		return []table.Column{
			{Header: "ID", Accessor: "id"},
			{Header: "Name", Accessor: "name"},
			{Header: "Title", Accessor: "title"},
		}
	}
}

func printTable(t *table.Table) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	var header []string
	for _, c := range t.Columns() {
		header = append(header, c.Header)
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, row := range t.Rows() {
		var cells []string
		for _, c := range t.Columns() {
			cells = append(cells, c.Cell(row))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
}
