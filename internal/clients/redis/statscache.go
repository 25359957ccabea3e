package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/services"
)

// StatsCache keeps SLA dashboard aggregates in redis for a short TTL so the
// stats endpoint does not hit postgres on every poll. Misses and redis
// failures both fall through to the repo; the cache is never authoritative.
type StatsCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewStatsCache(log *logger.Logger, addr string, ttl time.Duration) (*StatsCache, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &StatsCache{
		log: log.With("client", "RedisStatsCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func (c *StatsCache) key(companyID uuid.UUID) string {
	return "sla:stats:" + companyID.String()
}

func (c *StatsCache) Get(ctx context.Context, companyID uuid.UUID) (*services.SLAStats, bool) {
	raw, err := c.rdb.Get(ctx, c.key(companyID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("Stats cache read failed", "error", err)
		}
		return nil, false
	}
	var stats services.SLAStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.log.Warn("Stats cache payload undecodable, ignoring", "error", err)
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) Set(ctx context.Context, companyID uuid.UUID, stats *services.SLAStats) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(companyID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Stats cache write failed", "error", err)
	}
}

func (c *StatsCache) Close() error {
	return c.rdb.Close()
}
