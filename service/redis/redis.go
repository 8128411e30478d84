package redis

import (
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/escrowapi/base/ctx"
)

// Forever sets a key without expiration
const Forever = time.Duration(-1)

var (
	// ErrNotFound is returned when the requested key does not exist
	ErrNotFound = redis.ErrNil

	// ErrNoTTL is returned when the key exists but has no associated expire
	ErrNoTTL = errors.New("key has no ttl")

	// ErrGapTime is returned when no pool is available for the command
	ErrGapTime = errors.New("no available pool")
)

type Service interface {
	Get(context ctx.Ctx, key string) ([]byte, error)
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	Del(context ctx.Ctx, ks ...string) (int, error)
	Exists(context ctx.Ctx, key string) (bool, error)
	Expire(context ctx.Ctx, key string, ttl time.Duration) error
	TTL(context ctx.Ctx, key string) (int, error)
	Incr(context ctx.Ctx, key string) (int64, error)
	Incrby(context ctx.Ctx, key string, val int) (int64, error)
}
