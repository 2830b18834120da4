package cache

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"venue-booking/internal/model"
	"venue-booking/internal/testutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRdb *redis.Client

func TestMain(m *testing.M) {
	rdb, cleanup, err := testutil.SetupRedisOnly()
	if err != nil {
		log.Printf("redis unavailable, cache tests will be skipped: %v", err)
		os.Exit(m.Run())
	}
	testRdb = rdb
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func getTestRdb(t *testing.T) *redis.Client {
	t.Helper()
	if testRdb == nil {
		t.Skip("test redis not reachable")
	}
	return testRdb
}

func sampleTables() []*model.TableAvailability {
	return []*model.TableAvailability{
		{ID: "T1", Name: "Table 1", Capacity: 6, Category: "VIP", Price: 200, Position: 1, IsBooked: true},
		{ID: "T2", Name: "Table 2", Capacity: 4, Category: "Standard", Price: 80, Position: 2},
	}
}

func TestAvailabilityCache_MissThenHit(t *testing.T) {
	ctx := context.Background()
	c := NewRedisAvailabilityCache(getTestRdb(t), time.Minute)
	eventID := uuid.New()

	snap, err := c.Load(ctx, eventID)
	require.NoError(t, err)
	assert.False(t, snap.Hit())
	assert.Equal(t, int64(0), snap.Version)

	stored, err := c.Store(ctx, eventID, snap.Version, sampleTables())
	require.NoError(t, err)
	assert.True(t, stored)

	snap, err = c.Load(ctx, eventID)
	require.NoError(t, err)
	require.True(t, snap.Hit())
	assert.Equal(t, sampleTables(), snap.Tables)
}

func TestAvailabilityCache_InvalidateDropsEntry(t *testing.T) {
	ctx := context.Background()
	c := NewRedisAvailabilityCache(getTestRdb(t), time.Minute)
	eventID := uuid.New()

	_, err := c.Store(ctx, eventID, 0, sampleTables())
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, eventID))

	snap, err := c.Load(ctx, eventID)
	require.NoError(t, err)
	assert.False(t, snap.Hit())
	assert.Equal(t, int64(1), snap.Version)
}

func TestAvailabilityCache_StaleStoreRejected(t *testing.T) {
	ctx := context.Background()
	c := NewRedisAvailabilityCache(getTestRdb(t), time.Minute)
	eventID := uuid.New()

	// reader 在失效前取得版本，之後才寫回
	snap, err := c.Load(ctx, eventID)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, eventID))

	stored, err := c.Store(ctx, eventID, snap.Version, sampleTables())
	require.NoError(t, err)
	assert.False(t, stored)

	snap, err = c.Load(ctx, eventID)
	require.NoError(t, err)
	assert.False(t, snap.Hit())
}

func TestJitter(t *testing.T) {
	base := 10 * time.Second
	for i := 0; i < 50; i++ {
		got := jitter(base)
		assert.GreaterOrEqual(t, got, base)
		assert.LessOrEqual(t, got, 13*time.Second)
	}
}
