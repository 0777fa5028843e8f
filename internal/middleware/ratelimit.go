package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/iliyamo/hotel-booking/internal/config"
)

// bucket takes one token for key.
type bucket interface {
	take(ctx context.Context, key string) (allowed bool, remaining int64, retry time.Duration, err error)
}

// NewTokenBucket limits requests per key (see config.RateLimitConfig
// KeyStrategy).  With a Redis client the bucket state is shared across
// instances through a Lua script; without one every process keeps its own
// x/time/rate limiters.  Redis errors let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	var b bucket
	if rdb != nil {
		b = &redisBucket{cfg: cfg, rdb: rdb}
	} else {
		b = newLocalBucket(cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			allowed, remaining, retry, err := b.take(c.Request().Context(), key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("ratelimit: bucket error, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if !allowed {
				secs := int(math.Ceil(retry.Seconds()))
				if secs < 1 {
					secs = 1
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				log.Debug().Str("key", key).Int("retry_after", secs).Msg("ratelimit: blocked")
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"message":     "Too many requests, please try again later",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

var limiterScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])
	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + intervals * refill_tokens)
		last_refill = last_refill + intervals * interval_ms
	end

	local allowed = 0
	local retry_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)
	return { allowed, tokens, retry_ms }
`)

type redisBucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
}

func (b *redisBucket) take(ctx context.Context, key string) (bool, int64, time.Duration, error) {
	vals, err := limiterScript.Run(ctx, b.rdb, []string{key},
		time.Now().UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return false, 0, 0, err
	}
	if len(vals) != 3 {
		return false, 0, 0, fmt.Errorf("unexpected script result %v", vals)
	}
	return vals[0] == 1, vals[1], time.Duration(vals[2]) * time.Millisecond, nil
}

// localBucket keeps one rate.Limiter per key.  Idle limiters are dropped
// after cfg.TTL.
type localBucket struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	limiters map[string]*localEntry
	lastGC   time.Time
}

type localEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLocalBucket(cfg config.RateLimitConfig) *localBucket {
	return &localBucket{
		limit:    rate.Every(cfg.RefillInterval / time.Duration(cfg.RefillTokens)),
		burst:    cfg.Capacity,
		ttl:      cfg.TTL,
		limiters: map[string]*localEntry{},
		lastGC:   time.Now(),
	}
}

func (b *localBucket) take(_ context.Context, key string) (bool, int64, time.Duration, error) {
	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastGC) > b.ttl {
		for k, e := range b.limiters {
			if now.Sub(e.seen) > b.ttl {
				delete(b.limiters, k)
			}
		}
		b.lastGC = now
	}
	e, ok := b.limiters[key]
	if !ok {
		e = &localEntry{lim: rate.NewLimiter(b.limit, b.burst)}
		b.limiters[key] = e
	}
	e.seen = now

	r := e.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay, nil
	}
	return true, int64(math.Floor(e.lim.TokensAt(now))), 0, nil
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := currentUserID(c)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	case "user_route":
		parts = append(parts, "user", uid, "route", route)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
