package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

const (
	keyPrefix = "dispatch:location:"
	scanBatch = 256
)

type locationRecord struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recorded_at"`
}

// LocationMirror keeps the last applied position of every online agent in
// Redis so a restarted instance can rebuild its geo index.
type LocationMirror struct {
	client redisClient
	ttl    time.Duration
	logger logx.Logger
}

// NewLocationMirror creates a mirror whose entries expire after ttl.
func NewLocationMirror(client redisClient, ttl time.Duration, logger logx.Logger) *LocationMirror {
	return &LocationMirror{client: client, ttl: ttl, logger: logx.OrNop(logger)}
}

// Connect opens a client and checks it with PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w: %w", addr, apperr.ErrDependencyUnavailable, err)
	}
	return rdb, nil
}

func key(agentID int64) string {
	return keyPrefix + strconv.FormatInt(agentID, 10)
}

// Save stores loc for agentID.
func (m *LocationMirror) Save(ctx context.Context, agentID int64, loc domain.Location) error {
	data, err := json.Marshal(locationRecord{Lat: loc.Lat, Lng: loc.Lng, RecordedAt: loc.RecordedAt.UTC()})
	if err != nil {
		return fmt.Errorf("marshal location: %w", err)
	}
	if err := m.client.Set(ctx, key(agentID), data, m.ttl).Err(); err != nil {
		return fmt.Errorf("redis set agent %d: %w: %w", agentID, apperr.ErrDependencyUnavailable, err)
	}
	return nil
}

// Delete drops the entry for agentID. Missing keys are fine.
func (m *LocationMirror) Delete(ctx context.Context, agentID int64) error {
	if err := m.client.Del(ctx, key(agentID)).Err(); err != nil {
		return fmt.Errorf("redis del agent %d: %w: %w", agentID, apperr.ErrDependencyUnavailable, err)
	}
	return nil
}

// Load returns every mirrored location. Entries that fail to parse are
// skipped with a warning.
func (m *LocationMirror) Load(ctx context.Context) (map[int64]domain.Location, error) {
	out := make(map[int64]domain.Location)
	var cursor uint64
	for {
		keys, next, err := m.client.Scan(ctx, cursor, keyPrefix+"*", scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w: %w", apperr.ErrDependencyUnavailable, err)
		}
		if len(keys) > 0 {
			if err := m.collect(ctx, keys, out); err != nil {
				return nil, err
			}
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}

func (m *LocationMirror) collect(ctx context.Context, keys []string, out map[int64]domain.Location) error {
	values, err := m.client.MGet(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("redis mget: %w: %w", apperr.ErrDependencyUnavailable, err)
	}
	for i, k := range keys {
		raw, ok := values[i].(string)
		if !ok {
			// expired between SCAN and MGET
			continue
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(k, keyPrefix), 10, 64)
		if err != nil {
			m.logger.Warn("skip malformed location key", logx.String("key", k))
			continue
		}
		var rec locationRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			m.logger.Warn("skip malformed location value", logx.String("key", k), logx.Err(err))
			continue
		}
		out[id] = domain.Location{
			Point:      domain.Point{Lat: rec.Lat, Lng: rec.Lng},
			RecordedAt: rec.RecordedAt,
		}
	}
	return nil
}
