package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var (
	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsocial",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests partitioned by route, method and status.",
	}, []string{"route", "method", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fitsocial",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	panicCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitsocial",
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Handler panics recovered by the server.",
	})

	rateLimitedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsocial",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(requestCounter, requestDuration, panicCounter, rateLimitedCounter)
}

// RequestMetrics records count and latency of every request under route.
func RequestMetrics(route string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			begin := time.Now()
			resp := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(resp, req)

			requestDuration.WithLabelValues(route).Observe(time.Since(begin).Seconds())
			requestCounter.WithLabelValues(route, req.Method, strconv.Itoa(resp.statusCode)).Inc()
		})
	}
}

// LogRequest logs method, path, status and latency at debug level.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			begin := time.Now()
			resp := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(resp, req)

			log.WithFields(log.Fields{
				"method":   req.Method,
				"path":     req.URL.Path,
				"status":   resp.statusCode,
				"duration": time.Since(begin).String(),
			}).Debug("request served")
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseWriter) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// Chain applies middlewares so the first one is the outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
