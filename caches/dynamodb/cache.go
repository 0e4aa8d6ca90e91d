package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	headlessadmin "github.com/Priya-159/headless-admin"
	"github.com/Priya-159/headless-admin/caches"
)

// DefaultSegmentIndex is the name of the global secondary index on the
// segment attribute, used to find all entries a write must invalidate.
const DefaultSegmentIndex = "segment-index"

// Config defines the configuration options for the DynamoDB cache implementation.
type Config struct {
	// DeleteExpiredEntries controls whether the expired_at attribute is
	// written so DynamoDB's TTL feature can remove stale rows automatically.
	DeleteExpiredEntries bool

	// Retention is how long rows stay in the table. Independent of the
	// client-side TTL enforced on read.
	Retention time.Duration

	Table string

	// SegmentIndex names the GSI keyed on segment. Defaults to
	// DefaultSegmentIndex.
	SegmentIndex string
}

// Cache implements the headlessadmin.Cache interface using Amazon DynamoDB
// as the storage backend, sharing cached reads across console instances.
type Cache struct {
	client *dynamodb.Client

	table        string
	segmentIndex string
	retention    time.Duration
	writeTTL     bool
	now          func() time.Time
}

type cacheRow struct {
	Key       string `dynamodbav:"key"`
	Segment   string `dynamodbav:"segment"`
	Data      []byte `dynamodbav:"data"`
	CreatedAt int64  `dynamodbav:"created_at"`
	ExpiredAt int64  `dynamodbav:"expired_at,omitempty"`
}

// Get retrieves a cache entry by its key.
func (c *Cache) Get(ctx context.Context, k string) (*headlessadmin.Entry, error) {
	key, err := attributevalue.Marshal(k)
	if err != nil {
		return nil, err
	}

	output, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		Key: map[string]types.AttributeValue{
			"key": key,
		},
		ConsistentRead: aws.Bool(true),
		TableName:      aws.String(c.table),
	})
	if err != nil {
		return nil, err
	}

	if output.Item == nil {
		return nil, caches.ErrNoEntry
	}

	var row cacheRow
	if err := attributevalue.UnmarshalMap(output.Item, &row); err != nil {
		return nil, err
	}

	if row.ExpiredAt != 0 && c.now().UTC().Unix() >= row.ExpiredAt {
		return nil, caches.ErrNoEntry
	}

	return &headlessadmin.Entry{
		Data:      row.Data,
		Timestamp: time.Unix(row.CreatedAt, 0).UTC(),
	}, nil
}

// Set stores a cache entry under the provided key.
func (c *Cache) Set(ctx context.Context, k string, e *headlessadmin.Entry) error {
	row := cacheRow{
		Key:       k,
		Segment:   headlessadmin.Segment(k),
		Data:      e.Data,
		CreatedAt: e.Timestamp.UTC().Unix(),
	}
	if c.writeTTL {
		row.ExpiredAt = c.now().UTC().Add(c.retention).Unix()
	}

	av, err := attributevalue.MarshalMap(row)
	if err != nil {
		return err
	}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      av,
	})
	return err
}

// Invalidate deletes every entry stored under the given resource segment,
// located through the segment GSI.
func (c *Cache) Invalidate(ctx context.Context, segment string) error {
	segAttr, err := attributevalue.Marshal(segment)
	if err != nil {
		return err
	}

	var startKey map[string]types.AttributeValue
	for {
		out, err := c.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(c.table),
			IndexName:                 aws.String(c.segmentIndex),
			KeyConditionExpression:    aws.String("#s = :segment"),
			ExpressionAttributeValues: map[string]types.AttributeValue{":segment": segAttr},
			ProjectionExpression:      aws.String("#k"),
			ExpressionAttributeNames:  map[string]string{"#k": "key", "#s": "segment"},
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return err
		}

		for _, item := range out.Items {
			if _, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(c.table),
				Key:       map[string]types.AttributeValue{"key": item["key"]},
			}); err != nil {
				return err
			}
		}

		if out.LastEvaluatedKey == nil {
			return nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// New creates a new DynamoDB cache instance with the provided configuration.
// It validates the configuration and sets default values where appropriate.
// Returns an error if the client is nil or if the configuration is invalid.
func New(ctx context.Context, client *dynamodb.Client, config *Config) (*Cache, error) {
	if client == nil {
		return nil, caches.ValidationError{
			Reason: "nil client",
		}
	}
	if config == nil || config.Table == "" {
		return nil, caches.ValidationError{
			Reason: "missing table name",
		}
	}

	retention := config.Retention
	if retention == 0 {
		retention = caches.DefaultRetention
	}

	segmentIndex := config.SegmentIndex
	if segmentIndex == "" {
		segmentIndex = DefaultSegmentIndex
	}

	return &Cache{
		client: client,

		table:        config.Table,
		segmentIndex: segmentIndex,
		retention:    retention,
		writeTTL:     config.DeleteExpiredEntries,
		now:          time.Now,
	}, nil
}
