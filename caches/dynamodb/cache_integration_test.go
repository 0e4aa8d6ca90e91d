//go:build integration

package dynamodb

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	headlessadmin "github.com/Priya-159/headless-admin"
)

const testTable = "test"

func setup(t *testing.T) *dynamodb.Client {
	t.Log("setup called")

	awsconfig, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion("local"))
	require.NoError(t, err)

	c := dynamodb.NewFromConfig(awsconfig)
	require.NoError(t, CreateTable(context.Background(), c, testTable))

	return c
}

func cleanup(t *testing.T, c *dynamodb.Client) {
	t.Log("cleanup called")

	output, err := c.ListTables(context.Background(), &dynamodb.ListTablesInput{})
	if err != nil {
		t.Log(err)
		return
	}

	for _, v := range output.TableNames {
		if _, err := c.DeleteTable(context.Background(), &dynamodb.DeleteTableInput{
			TableName: aws.String(v),
		}); err != nil {
			t.Log(err)
		}
	}
}

func TestGetSetIntegration(t *testing.T) {
	c := setup(t)
	t.Cleanup(func() {
		cleanup(t, c)
	})

	ctx := context.Background()
	d, err := New(ctx, c, &Config{
		Table:     testTable,
		Retention: 1 * time.Minute,
	})
	require.NoError(t, err)

	require.NoError(t, d.Set(ctx, "/users/?page=1", &headlessadmin.Entry{
		Data:      []byte(`[{"id":1}]`),
		Timestamp: time.Now().UTC(),
	}))

	tests := []struct {
		name     string
		key      string
		cacheHit bool
	}{
		{
			name:     "golden path - cache hit",
			key:      "/users/?page=1",
			cacheHit: true,
		},
		{
			name:     "golden path - cache miss",
			key:      "/users/?page=2",
			cacheHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := d.Get(ctx, tt.key)
			if tt.cacheHit {
				assert.NoError(t, err)
				assert.NotNil(t, resp)
			} else {
				assert.Error(t, err)
				assert.Nil(t, resp)
			}
		})
	}
}

func TestInvalidateIntegration(t *testing.T) {
	c := setup(t)
	t.Cleanup(func() {
		cleanup(t, c)
	})

	ctx := context.Background()
	d, err := New(ctx, c, &Config{Table: testTable})
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, d.Set(ctx, "/users/?page=1", &headlessadmin.Entry{Data: []byte(`[]`), Timestamp: now}))
	require.NoError(t, d.Set(ctx, "/users/5/", &headlessadmin.Entry{Data: []byte(`{}`), Timestamp: now}))
	require.NoError(t, d.Set(ctx, "/trips/", &headlessadmin.Entry{Data: []byte(`[]`), Timestamp: now}))

	require.NoError(t, d.Invalidate(ctx, "users"))

	_, err = d.Get(ctx, "/users/?page=1")
	assert.Error(t, err)
	_, err = d.Get(ctx, "/users/5/")
	assert.Error(t, err)

	_, err = d.Get(ctx, "/trips/")
	assert.NoError(t, err)
}
