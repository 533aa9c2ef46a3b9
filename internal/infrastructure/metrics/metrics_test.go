package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Evacuacion-api/internal/domain/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/infrastructure/metrics"
)

func TestMetrics_Observer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.MovementRecorded("c1")
	m.MovementRecorded("c1")
	m.MovementRecorded("c2")
	m.LockTimeout("c1")
	m.RiskAssessed(occupancy.LevelCritical)
	m.LockWait(20 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MovementsRecorded.WithLabelValues("c1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MovementsRecorded.WithLabelValues("c2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LockTimeouts.WithLabelValues("c1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RiskAssessments.WithLabelValues("CRITICAL")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RiskAssessments.WithLabelValues("LOW")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LockWaitSeconds))
}
