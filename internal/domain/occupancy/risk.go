package occupancy

import (
	"errors"

	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
)

// Level clasificación ordinal del riesgo de congestión.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelModerate Level = "MODERATE"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Umbrales de clasificación, evaluados en orden.
const (
	criticalPredictedOccupancy = 1.0
	highOccupancy              = 0.95
	highScore                  = 0.90
	moderateScore              = 0.70
)

var recommendations = map[Level]string{
	LevelCritical: "Center likely to exceed capacity soon. Redirect evacuees to nearby centers.",
	LevelHigh:     "High congestion risk. Prepare overflow plan and monitor inflow closely.",
	LevelModerate: "Moderate risk. Continue monitoring and prepare additional resources.",
	LevelLow:      "Low risk. Normal monitoring.",
}

// Recommendation texto fijo asociado a cada nivel.
func Recommendation(l Level) string {
	return recommendations[l]
}

// Weights pesos del puntaje híbrido. Convencionalmente suman 1, no es obligatorio.
type Weights struct {
	Occupancy     float64
	Predicted     float64
	Vulnerability float64
}

// DefaultWeights 0.50 / 0.40 / 0.10.
func DefaultWeights() Weights {
	return Weights{Occupancy: 0.50, Predicted: 0.40, Vulnerability: 0.10}
}

// Validate exige pesos no negativos; de ello depende la monotonía del puntaje.
func (w Weights) Validate() error {
	if w.Occupancy < 0 || w.Predicted < 0 || w.Vulnerability < 0 {
		return errors.New("occupancy: los pesos de riesgo no pueden ser negativos")
	}
	return nil
}

// Inputs datos ya leídos del libro para un centro.
type Inputs struct {
	Capacity       int
	Latest         *entity.MovementEntry // nil si el centro no tiene movimientos
	Flow           entity.FlowSums
	WindowMinutes  int
	HorizonMinutes int
}

// Assessment cifras calculadas sin redondear.
type Assessment struct {
	CurrentTotal       int
	VulnerableTotal    int
	Occupancy          float64
	VulnerabilityRatio float64
	NetRatePerMin      float64
	PredictedTotal     float64
	PredictedOccupancy float64
	Score              float64
	Level              Level
}

// Assess combina capacidad, última instantánea y flujo de la ventana en una evaluación.
// Requiere Capacity > 0 y WindowMinutes > 0; el llamador lo garantiza.
func Assess(in Inputs, w Weights) Assessment {
	capacity := float64(in.Capacity)

	var a Assessment
	if in.Latest != nil {
		a.CurrentTotal = in.Latest.RunningIndividuals
	}
	a.Occupancy = float64(a.CurrentTotal) / capacity

	if in.Latest != nil && a.CurrentTotal > 0 {
		a.VulnerableTotal = in.Latest.VulnerableTotal
		a.VulnerabilityRatio = clamp(float64(a.VulnerableTotal)/float64(a.CurrentTotal), 0, 1)
	}

	// Un flujo neto negativo (la ocupación baja) no reduce el riesgo por debajo de la ocupación actual.
	a.NetRatePerMin = float64(in.Flow.Net()) / float64(in.WindowMinutes)
	if a.NetRatePerMin < 0 {
		a.NetRatePerMin = 0
	}

	a.PredictedTotal = float64(a.CurrentTotal) + a.NetRatePerMin*float64(in.HorizonMinutes)
	a.PredictedOccupancy = a.PredictedTotal / capacity

	a.Score = Score(a.Occupancy, a.PredictedOccupancy, a.VulnerabilityRatio, w)
	a.Level = Classify(a.Occupancy, a.PredictedOccupancy, a.Score)
	return a
}

// Score puntaje híbrido ponderado.
func Score(occupancy, predictedOccupancy, vulnerabilityRatio float64, w Weights) float64 {
	return w.Occupancy*occupancy + w.Predicted*predictedOccupancy + w.Vulnerability*vulnerabilityRatio
}

// Classify aplica las reglas en orden; gana la primera que coincide.
func Classify(occupancy, predictedOccupancy, score float64) Level {
	switch {
	case predictedOccupancy >= criticalPredictedOccupancy:
		return LevelCritical
	case occupancy >= highOccupancy:
		return LevelHigh
	case score >= highScore:
		return LevelHigh
	case score >= moderateScore:
		return LevelModerate
	default:
		return LevelLow
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
