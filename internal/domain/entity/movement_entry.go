package entity

import "time"

// VulnerabilityBreakdown composición vulnerable reportada en un movimiento.
type VulnerabilityBreakdown struct {
	Children  int
	Seniors   int
	PWD       int
	Pregnant  int
	Lactating int
}

// Total suma de las cinco categorías (no acumulativo entre entradas).
func (b VulnerabilityBreakdown) Total() int {
	return b.Children + b.Seniors + b.PWD + b.Pregnant + b.Lactating
}

// MovementEntry registro inmutable del libro de ocupación de un centro.
// Seq es la secuencia de inserción asignada por el almacén; desempata RecordedAt iguales.
type MovementEntry struct {
	ID             string
	Seq            int64
	FacilityID     string
	RecordedAt     time.Time
	FamiliesIn     int
	FamiliesOut    int
	IndividualsIn  int
	IndividualsOut int
	Breakdown      VulnerabilityBreakdown

	// Derivados, calculados al escribir.
	VulnerableTotal    int
	RunningIndividuals int
	RunningFamilies    int

	ReportedBy string
	Remarks    string
	CreatedAt  time.Time
}

// After indica si e ordena después de other bajo (recorded_at, seq).
func (e *MovementEntry) After(other *MovementEntry) bool {
	if other == nil {
		return true
	}
	if !e.RecordedAt.Equal(other.RecordedAt) {
		return e.RecordedAt.After(other.RecordedAt)
	}
	return e.Seq > other.Seq
}

// FlowSums suma de entradas y salidas de individuos en una ventana.
type FlowSums struct {
	SumIn  int
	SumOut int
}

// Net flujo neto (puede ser negativo).
func (f FlowSums) Net() int { return f.SumIn - f.SumOut }
