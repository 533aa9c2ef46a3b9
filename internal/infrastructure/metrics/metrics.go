package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	appocc "github.com/jhoicas/Evacuacion-api/internal/application/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain/occupancy"
)

var _ appocc.Observer = (*Metrics)(nil)

// Metrics implementa el Observer del libro y del motor de riesgo con Prometheus.
type Metrics struct {
	MovementsRecorded *prometheus.CounterVec
	LockTimeouts      *prometheus.CounterVec
	RiskAssessments   *prometheus.CounterVec
	LockWaitSeconds   prometheus.Histogram
}

// New registra las métricas en reg. Con nil usa el registro por defecto.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		MovementsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "evac_movements_recorded_total",
			Help: "Movimientos registrados en el libro por centro",
		}, []string{"center_id"}),
		LockTimeouts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "evac_ledger_lock_timeouts_total",
			Help: "Escrituras rechazadas por no obtener el bloqueo del centro a tiempo",
		}, []string{"center_id"}),
		RiskAssessments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "evac_risk_assessments_total",
			Help: "Evaluaciones de riesgo de congestión por nivel",
		}, []string{"level"}),
		LockWaitSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "evac_ledger_lock_wait_seconds",
			Help:    "Espera hasta entrar a la sección exclusiva del centro",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

func (m *Metrics) MovementRecorded(facilityID string) {
	m.MovementsRecorded.WithLabelValues(facilityID).Inc()
}

func (m *Metrics) LockWait(d time.Duration) {
	m.LockWaitSeconds.Observe(d.Seconds())
}

func (m *Metrics) LockTimeout(facilityID string) {
	m.LockTimeouts.WithLabelValues(facilityID).Inc()
}

func (m *Metrics) RiskAssessed(level occupancy.Level) {
	m.RiskAssessments.WithLabelValues(string(level)).Inc()
}
