package middleware

import (
    "fmt"
    "math"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "golang.org/x/time/rate"

    "github.com/shyam-539/GoTicket-server/internal/apperr"
    "github.com/shyam-539/GoTicket-server/internal/config"
    "github.com/shyam-539/GoTicket-server/internal/observability"
)

// bucketScript refills the bucket in whole intervals, takes one token when
// possible and returns {allowed, remaining, retry_after_ms}.
var bucketScript = redis.NewScript(`
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
        tokens = math.min(capacity, tokens + (intervals * refill_tokens))
        last_refill = last_refill + (intervals * interval_ms)
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
    end

    redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)
    return { allowed, tokens, retry_after_ms }
`)

// decision is the outcome of one limiter check.
type decision struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

// RateLimiter is a token bucket shared through Redis.  When Redis is not
// configured or a call fails, an in-process x/time/rate bucket with the
// same capacity and refill rate takes over for that request.
type RateLimiter struct {
    cfg   config.RateLimitConfig
    rdb   *redis.Client
    log   observability.Logger
    local *localBuckets
}

func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, log observability.Logger) *RateLimiter {
    cfg = cfg.Normalized()
    return &RateLimiter{cfg: cfg, rdb: rdb, log: log, local: newLocalBuckets(cfg)}
}

// Middleware applies the limiter to a route group.
func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
    if !l.cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(l.cfg, c)
            d := l.take(c, key)

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
            if l.cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if !d.allowed {
                secs := int(math.Ceil(d.retry.Seconds()))
                h.Set("Retry-After", strconv.Itoa(secs))
                observability.RateLimitExceeded.Inc()
                return apperr.New(apperr.TooManyRequests, "Too many requests, please try again later")
            }
            return next(c)
        }
    }
}

func (l *RateLimiter) take(c echo.Context, key string) decision {
    if l.rdb != nil {
        d, err := l.takeRedis(c, key)
        if err == nil {
            return d
        }
        l.log.WithError(err).WithField("key", key).Warn("rate limiter falling back to local bucket")
    }
    return l.local.take(key, time.Now())
}

func (l *RateLimiter) takeRedis(c echo.Context, key string) (decision, error) {
    args := []interface{}{
        time.Now().UnixMilli(),
        l.cfg.Capacity,
        l.cfg.RefillTokens,
        l.cfg.RefillInterval.Milliseconds(),
        int64(l.cfg.TTL / time.Second),
    }
    vals, err := bucketScript.Run(c.Request().Context(), l.rdb, []string{key}, args...).Result()
    if err != nil {
        return decision{}, err
    }
    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 3 {
        return decision{}, fmt.Errorf("unexpected limiter reply %#v", vals)
    }
    return decision{
        allowed:   asInt64(arr[0]) == 1,
        remaining: asInt64(arr[1]),
        retry:     time.Duration(asInt64(arr[2])) * time.Millisecond,
    }, nil
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

// localBuckets keeps one rate.Limiter per key.  Idle entries are swept
// once they have been unused for the configured TTL.
type localBuckets struct {
    mu        sync.Mutex
    every     rate.Limit
    burst     int
    ttl       time.Duration
    buckets   map[string]*localBucket
    lastSweep time.Time
}

type localBucket struct {
    lim  *rate.Limiter
    seen time.Time
}

func newLocalBuckets(cfg config.RateLimitConfig) *localBuckets {
    return &localBuckets{
        every:   rate.Limit(cfg.PerSecond()),
        burst:   cfg.Capacity,
        ttl:     cfg.TTL,
        buckets: map[string]*localBucket{},
    }
}

func (b *localBuckets) take(key string, now time.Time) decision {
    b.mu.Lock()
    defer b.mu.Unlock()
    if b.ttl > 0 && now.Sub(b.lastSweep) > b.ttl {
        for k, v := range b.buckets {
            if now.Sub(v.seen) > b.ttl {
                delete(b.buckets, k)
            }
        }
        b.lastSweep = now
    }
    lb, ok := b.buckets[key]
    if !ok {
        lb = &localBucket{lim: rate.NewLimiter(b.every, b.burst)}
        b.buckets[key] = lb
    }
    lb.seen = now
    if lb.lim.AllowN(now, 1) {
        return decision{allowed: true, remaining: int64(lb.lim.TokensAt(now))}
    }
    r := lb.lim.ReserveN(now, 1)
    retry := r.DelayFrom(now)
    r.CancelAt(now)
    return decision{retry: retry}
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    uid := identity(c)
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
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
