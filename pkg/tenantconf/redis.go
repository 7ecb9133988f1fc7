package tenantconf

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	invalidationChannel = "canopy:tenantconf:invalidate"

	// invalidateAllToken on the channel purges every cached tenant. Slugs are
	// lowercase identifiers, so the token can never collide with one.
	invalidateAllToken = "*"
)

// InvalidationBus fans cache invalidations out to every running instance
// over a redis pub/sub channel. Delivery is best-effort: a dropped message
// only delays convergence until the cache TTL expires the stale entry.
type InvalidationBus struct {
	client *redis.Client
}

// NewInvalidationBus connects to redis at the given address.
func NewInvalidationBus(addr, password string, db int) (*InvalidationBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &InvalidationBus{client: client}, nil
}

// NewInvalidationBusFromClient wraps an existing client; the caller keeps
// ownership of the client's lifecycle.
func NewInvalidationBusFromClient(client *redis.Client) *InvalidationBus {
	return &InvalidationBus{client: client}
}

// Publish broadcasts the invalidation of one tenant slug, or of everything
// when given the purge-all token.
func (b *InvalidationBus) Publish(ctx context.Context, slug string) error {
	if err := b.client.Publish(ctx, invalidationChannel, slug).Err(); err != nil {
		return fmt.Errorf("failed to publish invalidation for %q: %w", slug, err)
	}
	return nil
}

// Subscribe invokes handler for every invalidation broadcast on the channel,
// including this instance's own, until ctx is cancelled. It blocks; run it
// on its own goroutine.
func (b *InvalidationBus) Subscribe(ctx context.Context, handler func(slug string)) {
	sub := b.client.Subscribe(ctx, invalidationChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			handler(msg.Payload)
		}
	}
}

// Close releases the underlying redis connection.
func (b *InvalidationBus) Close() error {
	return b.client.Close()
}
