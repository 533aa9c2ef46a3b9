package occupancy

import "time"

// Report evaluación completa de un centro. Valor inmutable: cada consulta lo recalcula.
type Report struct {
	FacilityID     string
	Capacity       int
	LatestLogTime  *time.Time
	WindowMinutes  int
	HorizonMinutes int
	TotalInWindow  int
	TotalOutWindow int
	Assessment
	Recommendation string
}

// NetFlow flujo neto bruto de la ventana (antes del piso a cero).
func (r *Report) NetFlow() int { return r.TotalInWindow - r.TotalOutWindow }
