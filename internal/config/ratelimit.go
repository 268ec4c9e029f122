package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig drives the token-bucket limiter applied to the auth,
// booking and payment routes.  The bucket lives in Redis; when Redis is
// unavailable an in-process limiter with the same capacity and refill rate
// is used instead.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int           // bucket size, i.e. the burst a client may spend at once
    RefillTokens   int           // tokens added every RefillInterval
    RefillInterval time.Duration
    TTL            time.Duration // idle buckets expire after this long
    KeyStrategy    string        // see middleware.buildRateKey
    Prefix         string
    Debug          bool          // echo the bucket key in X-RateLimit-Key
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  RATE_LIMIT_BURST is
// accepted as an alias for RATE_LIMIT_CAPACITY.
func LoadRateLimitConfig() RateLimitConfig {
    capacity := envInt("RATE_LIMIT_CAPACITY", 30)
    if burst := envInt("RATE_LIMIT_BURST", 0); burst > 0 {
        capacity = burst
    }
    return RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       capacity,
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "goticket:rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }.Normalized()
}

// Normalized clamps values so the Lua script never sees a zero interval or
// an empty bucket, and the key outlives a full refill.
func (c RateLimitConfig) Normalized() RateLimitConfig {
    c.Capacity = max(c.Capacity, 1)
    c.RefillTokens = max(c.RefillTokens, 1)
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    c.TTL = max(c.TTL, 5*c.RefillInterval)
    return c
}

// PerSecond is the steady refill rate.
func (c RateLimitConfig) PerSecond() float64 {
    return float64(c.RefillTokens) / c.RefillInterval.Seconds()
}

func envStr(key, def string) string {
    if v, ok := os.LookupEnv(key); ok && v != "" {
        return v
    }
    return def
}

// envBool accepts strconv.ParseBool spellings plus yes/no and on/off.
func envBool(key string, def bool) bool {
    v := os.Getenv(key)
    switch v {
    case "":
        return def
    case "yes", "YES", "on", "ON":
        return true
    case "no", "NO", "off", "OFF":
        return false
    }
    b, err := strconv.ParseBool(v)
    if err != nil {
        return def
    }
    return b
}

func envInt(key string, def int) int {
    n, err := strconv.Atoi(os.Getenv(key))
    if err != nil {
        return def
    }
    return n
}

func envDur(key string, def time.Duration) time.Duration {
    d, err := time.ParseDuration(os.Getenv(key))
    if err != nil {
        return def
    }
    return d
}
