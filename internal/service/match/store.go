package match

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = 24 * time.Hour

// Store persists live sessions in Redis as JSON documents with a TTL, so
// a restarted host can resume games in progress.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// NewStoreFromURL dials Redis from a redis:// URL and pings it.
func NewStoreFromURL(redisURL string, ttl time.Duration) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for match store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewStore(rdb, ttl), nil
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func sessionKey(id string) string { return "match:session:" + strings.TrimSpace(id) }
func roomIdxKey(room string) string { return "match:index:room:" + strings.TrimSpace(room) }

// Save writes the session document and refreshes the room index TTL.
func (s *Store) Save(ctx context.Context, id string, p *sessionPayload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, sessionKey(id), raw, s.ttl).Err(); err != nil {
		return err
	}
	if p.RoomHash != "" {
		if err := s.rdb.SAdd(ctx, roomIdxKey(p.RoomHash), id).Err(); err != nil {
			return err
		}
		_ = s.rdb.Expire(ctx, roomIdxKey(p.RoomHash), s.ttl).Err()
	}
	return nil
}

// Load returns the session document, or (nil, nil) when absent/expired.
func (s *Store) Load(ctx context.Context, id string) (*sessionPayload, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p sessionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes the session document and its room index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	if p, err := s.Load(ctx, id); err == nil && p != nil && p.RoomHash != "" {
		_ = s.rdb.SRem(ctx, roomIdxKey(p.RoomHash), id).Err()
	}
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}

// SessionsByRoom lists live session IDs recorded for a room. Index
// members whose session document already expired are pruned so the
// open-match count never includes dead sessions.
func (s *Store) SessionsByRoom(ctx context.Context, roomHash string) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, roomIdxKey(roomHash)).Result()
	if err != nil {
		return nil, err
	}
	live := ids[:0]
	for _, id := range ids {
		n, err := s.rdb.Exists(ctx, sessionKey(id)).Result()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			_ = s.rdb.SRem(ctx, roomIdxKey(roomHash), id).Err()
			continue
		}
		live = append(live, id)
	}
	return live, nil
}

// update applies fn to the stored session under WATCH, retrying the
// caller on concurrent modification. guard is the ply count the caller
// read; a mismatch means another command won the race.
func (s *Store) update(ctx context.Context, id string, guard int, fn func(*sessionPayload) error) (*sessionPayload, error) {
	key := sessionKey(id)
	var out *sessionPayload
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		var cur sessionPayload
		if err := json.Unmarshal(raw, &cur); err != nil {
			return err
		}
		if cur.Plies != guard {
			return redis.TxFailedErr
		}
		if err := fn(&cur); err != nil {
			return err
		}
		cur.UpdatedAt = time.Now()

		pipe := tx.TxPipeline()
		newRaw, err := json.Marshal(&cur)
		if err != nil {
			return err
		}
		pipe.Set(ctx, key, newRaw, s.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		out = &cur
		return nil
	}, key)
	if err == redis.TxFailedErr {
		return nil, ErrSessionConflict
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
