package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/config"
	"github.com/shyam-539/GoTicket-server/internal/observability"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
	idempotencyPending   = "pending"
	maxIdempotencyKeyLen = 128
)

// Idempotency replays the stored response when a request repeats an
// Idempotency-Key the same caller already used on the same route.  While
// the first request is still running a repeat gets 409.  Server errors
// are not stored, so the client may retry them with the same key.
func Idempotency(cfg config.IdempotencyConfig, rdb *redis.Client, log observability.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			k := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
			if k == "" {
				return next(c)
			}
			if len(k) > maxIdempotencyKeyLen {
				return apperr.Invalidf("%s must be at most %d characters", HeaderIdempotencyKey, maxIdempotencyKeyLen)
			}
			key := strings.Join([]string{cfg.Prefix, identity(c), c.Request().Method, c.Path(), k}, ":")
			ctx := c.Request().Context()

			won, err := rdb.SetNX(ctx, key, idempotencyPending, ttl).Result()
			if err != nil {
				log.WithError(err).Warn("idempotency store unavailable, serving request without it")
				return next(c)
			}
			if !won {
				return replay(c, rdb, key)
			}

			cw := capture(c, 0)
			if err := next(c); err != nil {
				// Render here so the stored payload is what the client saw.
				c.Error(err)
			}

			store, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if cw.status >= http.StatusInternalServerError {
				_ = rdb.Del(store, key).Err()
				return nil
			}
			payload, err := encodePayload(cw.status, snapshotHeader(c.Response().Header()), cw.buf.Bytes())
			if err == nil {
				err = rdb.Set(store, key, payload, ttl).Err()
			}
			if err != nil {
				log.WithError(err).WithField("key", key).Warn("idempotent response not stored")
				_ = rdb.Del(store, key).Err()
			}
			return nil
		}
	}
}

func replay(c echo.Context, rdb *redis.Client, key string) error {
	bs, err := rdb.Get(c.Request().Context(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return apperr.Conflictf("request with this %s expired mid-flight, please retry", HeaderIdempotencyKey)
	}
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "idempotency lookup failed")
	}
	if string(bs) == idempotencyPending {
		return apperr.Conflictf("a request with this %s is still in progress", HeaderIdempotencyKey)
	}
	status, hdr, body, ok := decodePayload(bs)
	if !ok {
		return apperr.New(apperr.Internal, "stored idempotent response is corrupt")
	}
	hdr.Set(headerReplayed, "true")
	writePayload(c, status, hdr, body)
	return nil
}
