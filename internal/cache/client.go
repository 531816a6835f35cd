package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"stakebook/internal/models"
)

// Client fronts wallet point lookups with Redis. It is strictly an
// optimization: the locked mutation path never consults it, and every
// successful save invalidates the wallet's entries synchronously.
// A nil *Client is valid and disables caching.
type Client struct {
	redis rueidis.Client
	ttl   time.Duration
}

// NewClient creates a Redis-backed wallet cache.
func NewClient(ctx context.Context, url string, ttl time.Duration) (*Client, error) {
	opts, err := rueidis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client, err := rueidis.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{redis: client, ttl: ttl}, nil
}

// Close closes the Redis client.
func (c *Client) Close() {
	if c != nil {
		c.redis.Close()
	}
}

// Ping checks if Redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.redis.Do(ctx, c.redis.B().Ping().Build()).Error()
}

func walletKey(id uuid.UUID) string {
	return fmt.Sprintf("wallet:%s", id)
}

func ownerKey(ownerID uuid.UUID, walletType models.WalletType) string {
	return fmt.Sprintf("wallet:owner:%s:%s", ownerID, walletType)
}

// GetWallet returns the cached snapshot for a wallet id, or (nil, nil) on a
// miss.
func (c *Client) GetWallet(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	if c == nil {
		return nil, nil
	}
	return c.get(ctx, walletKey(id))
}

// GetWalletByOwner returns the cached snapshot for an (owner, type) pair, or
// (nil, nil) on a miss.
func (c *Client) GetWalletByOwner(ctx context.Context, ownerID uuid.UUID, walletType models.WalletType) (*models.Wallet, error) {
	if c == nil {
		return nil, nil
	}
	return c.get(ctx, ownerKey(ownerID, walletType))
}

func (c *Client) get(ctx context.Context, key string) (*models.Wallet, error) {
	raw, err := c.redis.Do(ctx, c.redis.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	var w models.Wallet
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode cached wallet: %w", err)
	}
	return &w, nil
}

// SetWallet caches a snapshot under both of its lookup keys.
func (c *Client) SetWallet(ctx context.Context, w *models.Wallet) error {
	if c == nil {
		return nil
	}

	raw, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode wallet: %w", err)
	}

	for _, key := range []string{walletKey(w.ID), ownerKey(w.OwnerID, w.WalletType)} {
		cmd := c.redis.B().Set().Key(key).Value(string(raw)).Ex(c.ttl).Build()
		if err := c.redis.Do(ctx, cmd).Error(); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// InvalidateWallet drops both cache entries for a wallet.
func (c *Client) InvalidateWallet(ctx context.Context, w *models.Wallet) error {
	if c == nil {
		return nil
	}
	cmd := c.redis.B().Del().
		Key(walletKey(w.ID), ownerKey(w.OwnerID, w.WalletType)).
		Build()
	return c.redis.Do(ctx, cmd).Error()
}
