package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"recouvro/internal/dossier/models"
	platformredis "recouvro/internal/platform/redis"
	id "recouvro/pkg/domain"
)

// snapshotTTL bounds staleness of cached dossier snapshots. Every write path
// invalidates eagerly, so the TTL only covers writes from other processes.
const snapshotTTL = 5 * time.Minute

// Cached decorates a Store with a Redis snapshot cache for reads. It replaces
// the legacy per-screen mutable caches: the cache lives at the store boundary
// and is invalidated on every write, so core logic never sees stale gates
// after its own mutations.
type Cached struct {
	inner  Store
	redis  *platformredis.Client
	logger *slog.Logger
}

func NewCached(inner Store, redis *platformredis.Client, logger *slog.Logger) *Cached {
	return &Cached{inner: inner, redis: redis, logger: logger}
}

func snapshotKey(dossierID id.DossierID) string {
	return "recouvro:dossier:" + dossierID.String()
}

func (c *Cached) Create(ctx context.Context, dossier *models.Dossier) error {
	if err := c.inner.Create(ctx, dossier); err != nil {
		return err
	}
	c.invalidate(ctx, dossier.ID)
	return nil
}

func (c *Cached) FindByID(ctx context.Context, dossierID id.DossierID) (*models.Dossier, error) {
	key := snapshotKey(dossierID)
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var cached models.Dossier
		if unmarshalErr := json.Unmarshal(raw, &cached); unmarshalErr == nil {
			return &cached, nil
		}
		// A corrupt snapshot falls through to the inner store.
		c.invalidate(ctx, dossierID)
	} else if !errors.Is(err, goredis.Nil) {
		c.logger.WarnContext(ctx, "dossier snapshot read failed", "error", err)
	}

	dossier, err := c.inner.FindByID(ctx, dossierID)
	if err != nil {
		return nil, err
	}

	if raw, marshalErr := json.Marshal(dossier); marshalErr == nil {
		if setErr := c.redis.Set(ctx, key, raw, snapshotTTL).Err(); setErr != nil {
			c.logger.WarnContext(ctx, "dossier snapshot write failed", "error", setErr)
		}
	}
	return dossier, nil
}

func (c *Cached) Execute(ctx context.Context, dossierID id.DossierID,
	validate func(*models.Dossier) error,
	mutate func(*models.Dossier)) (*models.Dossier, error) {

	dossier, err := c.inner.Execute(ctx, dossierID, validate, mutate)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, dossierID)
	return dossier, nil
}

func (c *Cached) invalidate(ctx context.Context, dossierID id.DossierID) {
	if err := c.redis.Del(ctx, snapshotKey(dossierID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "dossier snapshot invalidation failed", "error", err)
	}
}
