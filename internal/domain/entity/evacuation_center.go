package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un centro de evacuación.
const (
	CenterStatusPermanent = "PERMANENT"
	CenterStatusTemporary = "TEMPORARY"
)

// EvacuationCenter representa un centro de evacuación registrado en el directorio.
// IndividualCapacityMax es la capacidad usada por el motor de riesgo.
type EvacuationCenter struct {
	ID                    string
	Name                  string
	Municipality          string
	Barangay              string
	FamilyCapacityMax     int
	IndividualCapacityMax int
	Latitude              decimal.NullDecimal
	Longitude             decimal.NullDecimal
	Status                string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// HasValidCapacity indica si el centro puede evaluarse (capacidad > 0).
func (c *EvacuationCenter) HasValidCapacity() bool {
	return c != nil && c.IndividualCapacityMax > 0
}
