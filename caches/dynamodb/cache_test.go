//go:build !integration

package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/Priya-159/headless-admin/caches"
)

func TestNewDynamoDBCache(t *testing.T) {
	tests := []struct {
		name          string
		client        *dynamodb.Client
		config        *Config
		expectedCache *Cache
		wantErr       bool
	}{
		{
			name:   "nil client returns error",
			client: nil,
			config: &Config{
				Table:     "test-table",
				Retention: time.Hour,
			},
			expectedCache: nil,
			wantErr:       true,
		},
		{
			name:          "missing table returns error",
			client:        &dynamodb.Client{},
			config:        &Config{},
			expectedCache: nil,
			wantErr:       true,
		},
		{
			name:   "zero retention uses default",
			client: &dynamodb.Client{},
			config: &Config{
				Table: "test-table",
			},
			expectedCache: &Cache{
				table:        "test-table",
				segmentIndex: DefaultSegmentIndex,
				retention:    caches.DefaultRetention,
			},
		},
		{
			name:   "custom retention and index",
			client: &dynamodb.Client{},
			config: &Config{
				Table:        "test-table",
				Retention:    time.Hour,
				SegmentIndex: "by-segment",
			},
			expectedCache: &Cache{
				table:        "test-table",
				segmentIndex: "by-segment",
				retention:    time.Hour,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, err := New(context.Background(), tt.client, tt.config)

			if tt.wantErr {
				var ve caches.ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("expected validation error, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error %v", err)
			}

			if tt.expectedCache == nil {
				if cache != nil {
					t.Error("expected nil cache")
				}
				return
			}

			if cache.table != tt.expectedCache.table {
				t.Errorf("expected table %s, got %s", tt.expectedCache.table, cache.table)
			}

			if cache.segmentIndex != tt.expectedCache.segmentIndex {
				t.Errorf("expected segment index %s, got %s", tt.expectedCache.segmentIndex, cache.segmentIndex)
			}

			if cache.retention != tt.expectedCache.retention {
				t.Errorf("expected retention %v, got %v", tt.expectedCache.retention, cache.retention)
			}
		})
	}
}
