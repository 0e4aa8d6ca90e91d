package caches

import "time"

var (
	// DefaultRetention is how long backing stores keep an entry before the
	// storage-level sweep may remove it. Independent of the client's TTL,
	// which treats stale entries as absent on read.
	DefaultRetention = 24 * time.Hour

	// DefaultSweepInterval is the default period of the expired-row cleanup
	// task run by stores that support one.
	DefaultSweepInterval = 10 * time.Minute
)
