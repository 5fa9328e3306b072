package provider

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/venice-quiz-frame/internal/frame"
)

func TestNewRedisPublisherDefaultsChannel(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	assert.Equal(t, "frame:providers", NewRedisPublisher(client, "").channel)
	assert.Equal(t, "custom", NewRedisPublisher(client, "custom").channel)
}

func TestRedisPublisherWrapsErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := NewRedisPublisher(client, "").Publish(ctx, frame.ProviderDetail{UUID: "u1", RDNS: "io.metamask"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish provider")
}
