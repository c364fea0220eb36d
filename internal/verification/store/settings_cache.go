package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"bgv/internal/verification/models"
	id "bgv/pkg/domain"
)

const providerKeyPrefix = "bgv:org:provider:"

// OrgSettings is the backing store a cache reads through to.
type OrgSettings interface {
	ActiveProvider(ctx context.Context, orgID id.OrgID) (models.Provider, error)
	SetActiveProvider(ctx context.Context, orgID id.OrgID, p models.Provider) error
}

// CachedOrgSettings caches active providers in Redis in front of another
// OrgSettings. Redis failures fall through to the backing store.
type CachedOrgSettings struct {
	client *redis.Client
	next   OrgSettings
	ttl    time.Duration
	logger *slog.Logger
}

type CacheOption func(*CachedOrgSettings)

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedOrgSettings) {
		c.logger = logger
	}
}

func NewCachedOrgSettings(client *redis.Client, next OrgSettings, ttl time.Duration, opts ...CacheOption) *CachedOrgSettings {
	c := &CachedOrgSettings{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *CachedOrgSettings) ActiveProvider(ctx context.Context, orgID id.OrgID) (models.Provider, error) {
	key := providerKeyPrefix + orgID.String()
	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return models.Provider(cached), nil
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "provider cache read failed", "org_id", orgID.String(), "error", err)
	}

	p, err := c.next.ActiveProvider(ctx, orgID)
	if err != nil {
		return "", err
	}
	if err := c.client.Set(ctx, key, string(p), c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "provider cache write failed", "org_id", orgID.String(), "error", err)
	}
	return p, nil
}

// SetActiveProvider writes through and drops the cached value.
func (c *CachedOrgSettings) SetActiveProvider(ctx context.Context, orgID id.OrgID, p models.Provider) error {
	if err := c.next.SetActiveProvider(ctx, orgID, p); err != nil {
		return err
	}
	return c.client.Del(ctx, providerKeyPrefix+orgID.String()).Err()
}
