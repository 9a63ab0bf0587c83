package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key holds no value.
var ErrNotFound = errors.New("not found")

// Redis wraps redis client and keeps per-viewer view state.
type Redis struct {
	Client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to redis with short timeouts. Keys are namespaced by
// prefix and expire after ttl of inactivity (0 keeps them forever).
func NewRedis(addr, prefix string, ttl time.Duration) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	if prefix == "" {
		prefix = "attendview"
	}
	return &Redis{Client: client, prefix: prefix, ttl: ttl}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

func (r *Redis) seqKey(viewer string) string {
	return fmt.Sprintf("%s:viewer:%s:seq", r.prefix, viewer)
}

func (r *Redis) snapshotKey(viewer string) string {
	return fmt.Sprintf("%s:viewer:%s:snapshot", r.prefix, viewer)
}

// NextSeq hands out the next sequence number for viewer.
func (r *Redis) NextSeq(ctx context.Context, viewer string) (int64, error) {
	key := r.seqKey(viewer)
	pipe := r.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if r.ttl > 0 {
		pipe.PExpire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// applyScript stores ARGV[2] only while ARGV[1] is the newest sequence
// number handed out for the viewer (KEYS[2]) and no newer payload is stored.
var applyScript = redis.NewScript(`
local latest = redis.call('GET', KEYS[2])
if latest and tonumber(latest) > tonumber(ARGV[1]) then
	return 0
end
local cur = redis.call('HGET', KEYS[1], 'seq')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'seq', ARGV[1], 'data', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// ApplySnapshot stores payload for viewer unless a later sequence number
// has been handed out or stored. It reports whether the payload was stored.
func (r *Redis) ApplySnapshot(ctx context.Context, viewer string, seq int64, payload []byte) (bool, error) {
	n, err := applyScript.Run(ctx, r.Client, []string{r.snapshotKey(viewer), r.seqKey(viewer)}, seq, payload, r.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Snapshot returns the stored payload for viewer or ErrNotFound.
func (r *Redis) Snapshot(ctx context.Context, viewer string) ([]byte, error) {
	data, err := r.Client.HGet(ctx, r.snapshotKey(viewer), "data").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}
