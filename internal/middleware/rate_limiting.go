package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"

	"github.com/a1dsv/NOVA-sub002/pkg/auth"
)

// RequestRateLimiter is satisfied by *redis_rate.Limiter.
type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// NewRedisRateLimiter connects a limiter to redis at addr.
func NewRedisRateLimiter(addr, password string, db int) (*redis_rate.Limiter, *redis.Client) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return redis_rate.NewLimiter(client), client
}

// RateLimit allows allowedPerMin requests per caller on the wrapped route.
// A nil limiter disables limiting.
func RateLimit(rateLimiter RequestRateLimiter, routeName string, allowedPerMin int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rateLimiter == nil || allowedPerMin <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := routeName + ":" + callerKey(r)
			res, err := rateLimiter.Allow(r.Context(), key, redis_rate.PerMinute(allowedPerMin))
			if err != nil {
				log.Errorf("rate limit %s: %s", key, err)
				writeJSONError(w, http.StatusInternalServerError, "rate limit internal error", "internal")
				return
			}

			if res.Allowed > 0 {
				next.ServeHTTP(w, r)
				return
			}

			rateLimitedCounter.WithLabelValues(routeName).Inc()
			retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeJSONError(w, http.StatusTooManyRequests, fmt.Sprintf("retry after %d seconds", retryAfter), "rate_limited")
		})
	}
}

func callerKey(r *http.Request) string {
	if claims, ok := auth.FromContext(r.Context()); ok && claims.Subject != "" {
		return claims.Subject
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
