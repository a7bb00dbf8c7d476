//go:build integration

package events_test

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/claim-appeal/backend/internal/adapters/events"
	"github.com/zatekoja/claim-appeal/backend/internal/domain/entities"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/claim-appeal/backend/pkg/config"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	port, _ := strconv.Atoi(getEnv("TEST_REDIS_PORT", "6379"))
	client, err := redis.NewClient(context.Background(), &config.RedisConfig{
		Host:     os.Getenv("TEST_REDIS_HOST"),
		Port:     port,
		Password: getEnv("TEST_REDIS_PASSWORD", ""),
	})
	require.NoError(t, err, "Failed to create redis client")
	t.Cleanup(func() { client.Close() })
	return client
}

func waitForClaimEvent(t *testing.T, ch <-chan *entities.ClaimEvent) *entities.ClaimEvent {
	t.Helper()
	select {
	case event := <-ch:
		require.NotNil(t, event)
		return event
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for claim event")
		return nil
	}
}

func TestRedisEventBusFanoutIntegration(t *testing.T) {
	eventBus := events.NewRedisEventBus(newTestRedisClient(t))
	defer eventBus.Close()

	// isolated channel per run
	channel := "claims:test:" + uuid.NewString()

	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel1()
	defer cancel2()

	sub1, err := eventBus.Subscribe(ctx1, channel)
	require.NoError(t, err)
	sub2, err := eventBus.Subscribe(ctx2, channel)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	event := &entities.ClaimEvent{
		ID:                 uuid.NewString(),
		EventType:          entities.ClaimEventAppealGenerated,
		ClaimID:            42,
		PatientName:        "Jane Doe",
		InsuranceCompany:   "Acme Health",
		SuccessProbability: entities.SuccessProbabilityMedium,
		Timestamp:          time.Now().UTC(),
	}
	require.NoError(t, eventBus.Publish(context.Background(), channel, event))

	received1 := waitForClaimEvent(t, sub1)
	received2 := waitForClaimEvent(t, sub2)

	assert.Equal(t, event.ID, received1.ID)
	assert.Equal(t, int64(42), received2.ClaimID)
	assert.Equal(t, entities.SuccessProbabilityMedium, received2.SuccessProbability)
}

func TestRedisEventBusCancelClosesSubscriberIntegration(t *testing.T) {
	eventBus := events.NewRedisEventBus(newTestRedisClient(t))
	defer eventBus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := eventBus.Subscribe(ctx, "claims:test:"+uuid.NewString())
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-sub:
		assert.False(t, ok, "subscriber channel should be closed")
	case <-time.After(3 * time.Second):
		t.Fatal("subscriber channel was not closed after cancel")
	}
}
