package config

import (
    "strings"
    "time"
)

// CacheConfig defines settings for the response cache middleware that sits
// in front of the public catalogue endpoints (approved movies, show details).
// Seat availability is never cached.  When Enabled is false or no Redis
// client is configured, caching is disabled.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables.  Defaults are used when variables
// are not set.  All methods are upper-cased.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       envStr("CACHE_PREFIX", "goticket:cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
}

// IdempotencyConfig controls the Idempotency-Key replay store used by
// booking creation and payment verification.
type IdempotencyConfig struct {
    Enabled bool
    TTL     time.Duration
    Prefix  string
}

func LoadIdempotencyConfig() IdempotencyConfig {
    return IdempotencyConfig{
        Enabled: envBool("IDEMPOTENCY_ENABLED", true),
        TTL:     envDur("IDEMPOTENCY_TTL", time.Hour),
        Prefix:  envStr("IDEMPOTENCY_PREFIX", "goticket:idemp"),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}
