package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitsocial",
		Subsystem: "persistence",
		Name:      "last_workout_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout persisted.",
	})
	readinessComputations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitsocial",
		Subsystem: "readiness",
		Name:      "computations_total",
		Help:      "Number of readiness reports computed.",
	})
	readinessScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fitsocial",
		Subsystem: "readiness",
		Name:      "overall_score",
		Help:      "Distribution of overall readiness scores.",
		Buckets:   []float64{20, 40, 60, 80, 90, 100},
	})
	goalSyncRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsocial",
		Subsystem: "goalsync",
		Name:      "runs_total",
		Help:      "Goal sync runs partitioned by trigger and outcome.",
	}, []string{"trigger", "outcome"})
	goalsUpdated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsocial",
		Subsystem: "goalsync",
		Name:      "goals_updated_total",
		Help:      "Goals whose progress changed, partitioned by discipline.",
	}, []string{"discipline"})
	goalsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitsocial",
		Subsystem: "goalsync",
		Name:      "goals_completed_total",
		Help:      "Goals that transitioned to completed.",
	})
	notificationsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsocial",
		Subsystem: "notify",
		Name:      "emails_total",
		Help:      "Notification emails partitioned by outcome.",
	}, []string{"outcome"})
	burnMessagesDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitsocial",
		Subsystem: "scheduler",
		Name:      "burn_messages_deleted_total",
		Help:      "Burn-after-read messages removed by cleanup passes.",
	})
)

func init() {
	prometheus.MustRegister(
		workoutPersistGauge,
		readinessComputations,
		readinessScore,
		goalSyncRuns,
		goalsUpdated,
		goalsCompleted,
		notificationsSent,
		burnMessagesDeleted,
	)
}

// RecordWorkoutPersisted updates the persistence watermark gauge.
func RecordWorkoutPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	workoutPersistGauge.Set(float64(ts.Unix()))
}

// RecordReadiness tracks a computed overall score.
func RecordReadiness(overall int) {
	readinessComputations.Inc()
	readinessScore.Observe(float64(overall))
}

// RecordGoalSync tracks one sync run.
func RecordGoalSync(trigger string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	goalSyncRuns.WithLabelValues(trigger, outcome).Inc()
}

// RecordGoalUpdated tracks a goal whose progress changed.
func RecordGoalUpdated(discipline string, completed bool) {
	if discipline == "" {
		discipline = "unknown"
	}
	goalsUpdated.WithLabelValues(discipline).Inc()
	if completed {
		goalsCompleted.Inc()
	}
}

// RecordNotifications tracks the outcome of a notification fan-out.
func RecordNotifications(sent, failed int) {
	notificationsSent.WithLabelValues("sent").Add(float64(sent))
	notificationsSent.WithLabelValues("failed").Add(float64(failed))
}

// RecordBurnCleanup tracks messages removed by a cleanup pass.
func RecordBurnCleanup(deleted int) {
	burnMessagesDeleted.Add(float64(deleted))
}
