// Package headlessadmin is the API client behind the fuel-tracking admin
// console. It presents one stable method surface per backend resource and
// hides whether a response came from the live backend, the cache, or the
// mock provider: the shape is identical in all three cases.
package headlessadmin

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

type callFn func(ctx context.Context) (json.RawMessage, error)

// Fallback serves a request from mock data when the backend is unreachable.
// It receives the same method, endpoint and parameters the transport would
// have sent, and must answer in one of the backend's response shapes.
type Fallback interface {
	Call(ctx context.Context, method, endpoint string, params url.Values, body any) (json.RawMessage, error)
}

// Client is the API façade. Construct one per process and share it; the
// cache behind it is the only mutable state.
type Client struct {
	cfg       Config
	transport *Transport
	cache     Cache
	fallback  Fallback
	logger    *slog.Logger
	now       func() time.Time

	Accounts        AccountsService
	Vehicles        VehiclesService
	Notifications   NotificationsService
	ContactMessages ContactMessagesService
	FCM             FCMService
	Dashboard       DashboardService
	Auth            AuthService
}

// NewClient wires the façade. A nil cache disables caching, a nil fallback
// disables mock degradation, a nil now uses time.Now, and a nil logger
// discards output.
func NewClient(cfg Config, transport *Transport, cache Cache, fallback Fallback, now func() time.Time, logger *slog.Logger) *Client {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		cfg:       cfg.withDefaults(),
		transport: transport,
		cache:     cache,
		fallback:  fallback,
		logger:    logger,
		now:       now,
	}

	c.Accounts = AccountsService{
		Users:                    c.resource("/admin_users/"),
		AdminControls:            c.resource("/admin_controls/"),
		APIUsageCounts:           c.resource("/api_usage_counts/"),
		Countries:                c.resource("/countries/"),
		States:                   c.resource("/states/"),
		EmergencyNumbers:         c.resource("/emergency_numbers/"),
		OTPs:                     c.resource("/otps/"),
		SubscriptionTransactions: c.resource("/subscription_transactions/"),
		TripUsages:               c.resource("/trip_usages/"),
	}
	c.Vehicles = VehiclesService{
		LogBooks:       c.resource("/log_books/"),
		Reminders:      c.resource("/reminders/"),
		Trips:          c.resource("/trips/"),
		UserVehicles:   c.resource("/user_vehicles/"),
		UserFuelPrices: c.resource("/user_fuel_prices/"),
		Makers:         c.resource("/vehicle_makers/"),
		Models:         c.resource("/dashboard/vehicle-models/"),
		Types:          c.resource("/vehicle_types/"),
		TipOfDay:       c.resource("/tip_of_day/"),
	}
	c.Notifications = NotificationsService{
		ScheduledCampaigns: c.resource("/scheduled_notification_campaigns/"),
		ScheduledLogs:      c.resource("/scheduled_notification_logs/"),
		CSVCampaigns:       c.resource("/notification/campaigns/"),
		CSVLogs:            c.resource("/csv_notification_logs/"),
		DateRangeCampaigns: c.resource("/date_range_notification_campaigns/"),
		DateRangeLogs:      c.resource("/date_range_notification_logs/"),
	}
	c.ContactMessages = ContactMessagesService{
		Threads:  ThreadsResource{Resource: c.resource("/message_threads/")},
		Messages: c.resource("/messages/"),
		SendSMS:  c.resource("/send_sms/"),
	}
	c.FCM = FCMService{
		Devices: c.resource("/fcm_devices/"),
	}
	c.Dashboard = DashboardService{client: c}
	c.Auth = AuthService{client: c}

	return c
}

// Transport exposes the underlying transport for login/logout flows.
func (c *Client) Transport() *Transport { return c.transport }

func (c *Client) resource(endpoint string) *Resource {
	return &Resource{client: c, endpoint: endpoint}
}

// Resource returns a client for an arbitrary collection endpoint, for the
// rare page that talks to something outside the predefined groups.
func (c *Client) Resource(endpoint string) *Resource {
	return c.resource(endpoint)
}

func (c *Client) fallbackCall(method, endpoint string, params url.Values, body any) callFn {
	if c.fallback == nil {
		return nil
	}
	return func(ctx context.Context) (json.RawMessage, error) {
		return c.fallback.Call(ctx, method, endpoint, params, body)
	}
}

// withFallback is the heart of the façade:
//
//  1. A fresh cache entry short-circuits a cacheable read.
//  2. A write first invalidates every entry under its resource segment.
//  3. The primary call runs; successful cacheable reads are stored.
//  4. Only a *NetworkError falls back to mock data (cached like a real
//     read); every other failure propagates unchanged.
func (c *Client) withFallback(ctx context.Context, method, cacheKey string, primary, fallback callFn) (json.RawMessage, error) {
	cacheable := method == http.MethodGet && cacheKey != "" && c.cache != nil

	if cacheable {
		if entry, err := c.cache.Get(ctx, cacheKey); err == nil {
			if c.now().Sub(entry.Timestamp) < c.cfg.CacheTTL {
				c.logger.DebugContext(ctx, "cache hit", "key", cacheKey)
				return entry.Data, nil
			}
		}
	}

	if method != http.MethodGet && cacheKey != "" && c.cache != nil {
		if err := c.cache.Invalidate(ctx, Segment(cacheKey)); err != nil {
			c.logger.WarnContext(ctx, "cache invalidation failed", "segment", Segment(cacheKey), "error", err)
		}
	}

	res, err := primary(ctx)
	if err == nil {
		c.store(ctx, cacheable, cacheKey, res)
		return res, nil
	}

	if IsNetworkError(err) && fallback != nil {
		c.logger.DebugContext(ctx, "backend unreachable, serving mock data", "key", cacheKey, "error", err)
		res, ferr := fallback(ctx)
		if ferr != nil {
			return nil, ferr
		}
		c.store(ctx, cacheable, cacheKey, res)
		return res, nil
	}

	return nil, err
}

func (c *Client) store(ctx context.Context, cacheable bool, key string, data json.RawMessage) {
	if !cacheable {
		return
	}
	if err := c.cache.Set(ctx, key, &Entry{Data: data, Timestamp: c.now()}); err != nil {
		c.logger.WarnContext(ctx, "caching response failed", "key", key, "error", err)
	}
}

type AccountsService struct {
	Users                    *Resource
	AdminControls            *Resource
	APIUsageCounts           *Resource
	Countries                *Resource
	States                   *Resource
	EmergencyNumbers         *Resource
	OTPs                     *Resource
	SubscriptionTransactions *Resource
	TripUsages               *Resource
}

type VehiclesService struct {
	LogBooks       *Resource
	Reminders      *Resource
	Trips          *Resource
	UserVehicles   *Resource
	UserFuelPrices *Resource
	Makers         *Resource
	Models         *Resource
	Types          *Resource
	TipOfDay       *Resource
}

type NotificationsService struct {
	ScheduledCampaigns *Resource
	ScheduledLogs      *Resource
	CSVCampaigns       *Resource
	CSVLogs            *Resource
	DateRangeCampaigns *Resource
	DateRangeLogs      *Resource
}

// ThreadsResource adds the member actions the message-thread endpoint
// exposes on top of the uniform CRUD surface.
type ThreadsResource struct {
	*Resource
}

func (t ThreadsResource) ToggleBlock(ctx context.Context, id string) (json.RawMessage, error) {
	return t.action(ctx, id, "toggle_block")
}

func (t ThreadsResource) ClearHistory(ctx context.Context, id string) (json.RawMessage, error) {
	return t.action(ctx, id, "clear_history")
}

type ContactMessagesService struct {
	Threads  ThreadsResource
	Messages *Resource
	SendSMS  *Resource
}

type FCMService struct {
	Devices *Resource
}

// DashboardService fetches the chart and stat aggregates. Each read caches
// under its own endpoint+period key and degrades to mock series.
type DashboardService struct {
	client *Client
}

func (d DashboardService) get(ctx context.Context, endpoint, period string) (json.RawMessage, error) {
	var params url.Values
	if period != "" {
		params = url.Values{"period": {period}}
	}
	key := Key(endpoint, params)
	return d.client.withFallback(ctx, http.MethodGet, key,
		func(ctx context.Context) (json.RawMessage, error) {
			return d.client.transport.Get(ctx, endpoint, params)
		},
		d.client.fallbackCall(http.MethodGet, endpoint, params, nil),
	)
}

func (d DashboardService) Stats(ctx context.Context) (json.RawMessage, error) {
	return d.get(ctx, "/dashboard/stats/", "")
}

func (d DashboardService) UsersGrowth(ctx context.Context, period string) (json.RawMessage, error) {
	return d.get(ctx, "/dashboard/users-growth/", period)
}

func (d DashboardService) RevenueChart(ctx context.Context, period string) (json.RawMessage, error) {
	return d.get(ctx, "/dashboard/revenue-chart/", period)
}

func (d DashboardService) VehicleTypes(ctx context.Context) (json.RawMessage, error) {
	return d.get(ctx, "/dashboard/vehicle-types/", "")
}

func (d DashboardService) NotificationsChart(ctx context.Context, period string) (json.RawMessage, error) {
	return d.get(ctx, "/dashboard/notifications-chart/", period)
}

func (d DashboardService) TripStatistics(ctx context.Context, period string) (json.RawMessage, error) {
	return d.get(ctx, "/dashboard/trip-statistics/", period)
}

// AuthService covers the profile operations that live outside the resource
// collections.
type AuthService struct {
	client *Client
}

func (a AuthService) UpdateProfile(ctx context.Context, body any) (json.RawMessage, error) {
	const endpoint = "/user_update_profile"
	return a.client.withFallback(ctx, http.MethodPut, endpoint,
		func(ctx context.Context) (json.RawMessage, error) {
			return a.client.transport.Put(ctx, endpoint, body)
		},
		a.client.fallbackCall(http.MethodPut, endpoint, nil, body),
	)
}

func (a AuthService) ChangePassword(ctx context.Context, body any) (json.RawMessage, error) {
	const endpoint = "/user_change_password"
	return a.client.withFallback(ctx, http.MethodPost, endpoint,
		func(ctx context.Context) (json.RawMessage, error) {
			return a.client.transport.Post(ctx, endpoint, body)
		},
		a.client.fallbackCall(http.MethodPost, endpoint, nil, body),
	)
}
