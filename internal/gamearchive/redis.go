package gamearchive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/woofer-bot/internal/chessgame"
	"github.com/redis/go-redis/v9"
)

const (
	ttlGame        = 30 * 24 * time.Hour
	maxPerSession  = 50
	maxRecentIndex = 200
)

// RedisArchive keeps each record as JSON under chess:game:<id> and indexes
// ids newest first per session and globally.
type RedisArchive struct {
	rdb *redis.Client
}

func NewRedisArchive(rdb *redis.Client) *RedisArchive { return &RedisArchive{rdb: rdb} }

// OpenRedis connects using a redis:// URL and pings the server.
func OpenRedis(ctx context.Context, redisURL string) (*RedisArchive, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisArchive{rdb: rdb}, nil
}

func keyGame(id string) string          { return "chess:game:" + id }
func keySession(session string) string { return "chess:session:" + strings.TrimSpace(session) + ":games" }
func keyRecent() string                { return "chess:recent" }

func (a *RedisArchive) Save(ctx context.Context, g chessgame.FinishedGame) error {
	if a == nil || a.rdb == nil {
		return nil
	}
	rec := NewRecord(g)
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = a.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, keyGame(rec.ID), raw, ttlGame)
		p.LPush(ctx, keySession(rec.SessionKey), rec.ID)
		p.LTrim(ctx, keySession(rec.SessionKey), 0, maxPerSession-1)
		p.Expire(ctx, keySession(rec.SessionKey), ttlGame)
		p.LPush(ctx, keyRecent(), rec.ID)
		p.LTrim(ctx, keyRecent(), 0, maxRecentIndex-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("archive game %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns up to limit records for sessionKey, newest first. An empty
// key lists games from every session.
func (a *RedisArchive) Recent(ctx context.Context, sessionKey string, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	key := keyRecent()
	if strings.TrimSpace(sessionKey) != "" {
		key = keySession(sessionKey)
	}
	ids, err := a.rdb.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyGame(id)
	}
	vals, err := a.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			// expired
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (a *RedisArchive) Close() error {
	if a == nil || a.rdb == nil {
		return nil
	}
	return a.rdb.Close()
}
