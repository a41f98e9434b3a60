package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestRecordGoalSyncPartitionsByOutcome(t *testing.T) {
	okBefore := testutil.ToFloat64(goalSyncRuns.WithLabelValues("test", "success"))
	errBefore := testutil.ToFloat64(goalSyncRuns.WithLabelValues("test", "error"))

	RecordGoalSync("test", nil)
	RecordGoalSync("test", errors.New("boom"))

	require.InDelta(t, okBefore+1, testutil.ToFloat64(goalSyncRuns.WithLabelValues("test", "success")), 0.0001)
	require.InDelta(t, errBefore+1, testutil.ToFloat64(goalSyncRuns.WithLabelValues("test", "error")), 0.0001)
}

func TestRecordGoalUpdatedDefaultsDiscipline(t *testing.T) {
	before := testutil.ToFloat64(goalsUpdated.WithLabelValues("unknown"))
	completedBefore := testutil.ToFloat64(goalsCompleted)

	RecordGoalUpdated("", true)

	require.InDelta(t, before+1, testutil.ToFloat64(goalsUpdated.WithLabelValues("unknown")), 0.0001)
	require.InDelta(t, completedBefore+1, testutil.ToFloat64(goalsCompleted), 0.0001)
}

func TestRecordReadinessObservesScore(t *testing.T) {
	metric := &dto.Metric{}
	require.NoError(t, readinessScore.Write(metric))
	before := metric.GetHistogram().GetSampleCount()

	RecordReadiness(72)

	metric = &dto.Metric{}
	require.NoError(t, readinessScore.Write(metric))
	require.Equal(t, before+1, metric.GetHistogram().GetSampleCount())
}

func TestRecordWorkoutPersistedIgnoresZeroTime(t *testing.T) {
	ts := time.Unix(1_700_000_000, 0)
	RecordWorkoutPersisted(ts)
	RecordWorkoutPersisted(time.Time{})
	require.InDelta(t, float64(ts.Unix()), testutil.ToFloat64(workoutPersistGauge), 0.0001)
}
