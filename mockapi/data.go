package mockapi

import (
	"fmt"

	"github.com/google/uuid"

	headlessadmin "github.com/Priya-159/headless-admin"
)

// Namespace for deterministic ids: the same seed always yields the same
// dataset, which keeps tests stable across runs.
var idNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func seededID(collection string, n int) string {
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%s/%d", collection, n))).String()
}

var firstNames = []string{"Aarav", "Meera", "Rohan", "Priya", "Kabir", "Anaya", "Dev", "Isha", "Vikram", "Tara"}
var lastNames = []string{"Sharma", "Patel", "Reddy", "Iyer", "Khan", "Das", "Nair", "Gupta", "Joshi", "Bose"}
var vehicleTypes = []string{"Bike", "Car", "Truck", "Scooter"}
var makers = []string{"Maruti", "Hyundai", "Tata", "Honda", "Hero"}
var fuelTypes = []string{"Petrol", "Diesel", "CNG", "Electric"}

func seedCollections() map[string][]headlessadmin.Row {
	c := make(map[string][]headlessadmin.Row)

	users := make([]headlessadmin.Row, 0, 57)
	for i := 0; i < 57; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames))%len(lastNames)]
		users = append(users, headlessadmin.Row{
			"id":         seededID("admin_users", i),
			"username":   fmt.Sprintf("%s.%s%d", first, last, i),
			"email":      fmt.Sprintf("%s.%s%d@fuelabc.com", first, last, i),
			"first_name": first,
			"last_name":  last,
			"is_active":  i%7 != 0,
			"country":    "India",
		})
	}
	c["admin_users"] = users

	vehicles := make([]headlessadmin.Row, 0, 34)
	for i := 0; i < 34; i++ {
		vehicles = append(vehicles, headlessadmin.Row{
			"id":           seededID("user_vehicles", i),
			"name":         fmt.Sprintf("%s %s %d", makers[i%len(makers)], vehicleTypes[i%len(vehicleTypes)], i),
			"maker":        makers[i%len(makers)],
			"vehicle_type": vehicleTypes[i%len(vehicleTypes)],
			"fuel_type":    fuelTypes[i%len(fuelTypes)],
			"mileage":      12.5 + float64(i%20),
		})
	}
	c["user_vehicles"] = vehicles

	logBooks := make([]headlessadmin.Row, 0, 28)
	for i := 0; i < 28; i++ {
		logBooks = append(logBooks, headlessadmin.Row{
			"id":          seededID("log_books", i),
			"vehicle":     fmt.Sprintf("Vehicle %d", i%34),
			"odometer":    10000 + i*137,
			"fuel_litres": float64(5 + i%40),
			"cost":        float64((5 + i%40) * 102),
		})
	}
	c["log_books"] = logBooks

	campaigns := make([]headlessadmin.Row, 0, 12)
	for i := 0; i < 12; i++ {
		campaigns = append(campaigns, headlessadmin.Row{
			"id":       seededID("scheduled_notification_campaigns", i),
			"title":    fmt.Sprintf("Campaign %d", i),
			"body":     "Fuel prices updated in your area",
			"status":   []string{"scheduled", "sent", "failed"}[i%3],
			"audience": []string{"all", "active", "inactive"}[i%3],
		})
	}
	c["scheduled_notification_campaigns"] = campaigns

	threads := make([]headlessadmin.Row, 0, 19)
	for i := 0; i < 19; i++ {
		threads = append(threads, headlessadmin.Row{
			"id":         seededID("message_threads", i),
			"subject":    fmt.Sprintf("Support request %d", i),
			"user":       fmt.Sprintf("%s.%s%d", firstNames[i%len(firstNames)], lastNames[i%len(lastNames)], i),
			"is_blocked": i%9 == 0,
			"unread":     i % 4,
		})
	}
	c["message_threads"] = threads

	devices := make([]headlessadmin.Row, 0, 41)
	for i := 0; i < 41; i++ {
		devices = append(devices, headlessadmin.Row{
			"id":                  seededID("fcm_devices", i),
			"registration_id":     seededID("fcm_registration", i),
			"device_type":         []string{"android", "ios"}[i%2],
			"active":              i%5 != 0,
			"notification_opt_in": i%3 != 0,
		})
	}
	c["fcm_devices"] = devices

	// States respond as a bare array in the real backend; the mock keeps a
	// small fixed set.
	c["states"] = []headlessadmin.Row{
		{"id": seededID("states", 0), "name": "Karnataka", "code": "KA"},
		{"id": seededID("states", 1), "name": "Maharashtra", "code": "MH"},
		{"id": seededID("states", 2), "name": "Tamil Nadu", "code": "TN"},
		{"id": seededID("states", 3), "name": "Delhi", "code": "DL"},
	}

	return c
}

func seedDashboards() map[string]any {
	months := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

	growth := make([]map[string]any, 0, len(months))
	usersSeries := []int{4000, 5200, 6800, 8400, 10200, 12456}
	for i, m := range months {
		growth = append(growth, map[string]any{"month": m, "users": usersSeries[i]})
	}

	notifications := make([]map[string]any, 0, len(months))
	sent := []int{2400, 3200, 4100, 5000, 4500, 5200}
	for i, m := range months {
		notifications = append(notifications, map[string]any{"month": m, "sent": sent[i], "read": sent[i] - 400})
	}

	trips := make([]map[string]any, 0, len(months))
	tripSeries := []int{1400, 1600, 1800, 2200, 2600, 2900}
	for i, m := range months {
		trips = append(trips, map[string]any{"month": m, "trips": tripSeries[i]})
	}

	revenue := make([]map[string]any, 0, len(months))
	revSeries := []int{84000, 91000, 102000, 118000, 126000, 139000}
	for i, m := range months {
		revenue = append(revenue, map[string]any{"month": m, "revenue": revSeries[i]})
	}

	return map[string]any{
		"/dashboard/stats/": map[string]any{
			"totalUsers":         15234,
			"activeUsers":        12456,
			"totalVehicles":      8923,
			"totalNotifications": 456,
			"totalRevenue":       1234567,
			"newUsersToday":      234,
			"activeTrips":        145,
			"totalMessages":      89,
		},
		"/dashboard/users-growth/":        growth,
		"/dashboard/revenue-chart/":       revenue,
		"/dashboard/notifications-chart/": notifications,
		"/dashboard/trip-statistics/":     trips,
		"/dashboard/vehicle-types/": []map[string]any{
			{"name": "Bike", "value": 3456},
			{"name": "Car", "value": 4234},
			{"name": "Truck", "value": 867},
			{"name": "Scooter", "value": 366},
		},
	}
}
