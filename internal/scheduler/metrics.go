package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	passCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsocial",
		Subsystem: "scheduler",
		Name:      "passes_total",
		Help:      "Scheduler passes partitioned by job and outcome.",
	}, []string{"job", "outcome"})

	recordsTouched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsocial",
		Subsystem: "scheduler",
		Name:      "records_total",
		Help:      "Records changed by scheduler passes.",
	}, []string{"job"})

	passDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fitsocial",
		Subsystem: "scheduler",
		Name:      "pass_duration_seconds",
		Help:      "Duration of scheduler passes.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
)

func init() {
	prometheus.MustRegister(passCounter, recordsTouched, passDuration)
}

func recordPass(job string, n int, err error, took time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	passCounter.WithLabelValues(job, outcome).Inc()
	recordsTouched.WithLabelValues(job).Add(float64(n))
	passDuration.WithLabelValues(job).Observe(took.Seconds())
}
