package occupancy

import (
	"context"

	"github.com/jhoicas/Evacuacion-api/internal/application/dto"
	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
)

// RecordMovementFromRequest adapta el request HTTP al caso de uso RecordMovement.
func (uc *RecordMovementUseCase) RecordMovementFromRequest(ctx context.Context, centerID, userID string, in dto.RecordMovementRequest) (*entity.MovementEntry, error) {
	input := MovementInput{
		FacilityID:     centerID,
		FamiliesIn:     in.FamiliesIn,
		FamiliesOut:    in.FamiliesOut,
		IndividualsIn:  in.IndividualsIn,
		IndividualsOut: in.IndividualsOut,
		Breakdown: entity.VulnerabilityBreakdown{
			Children:  in.Children,
			Seniors:   in.Seniors,
			PWD:       in.PWD,
			Pregnant:  in.Pregnant,
			Lactating: in.Lactating,
		},
		ReportedBy: userID,
		Remarks:    in.Remarks,
	}
	if in.RecordedAt != nil {
		input.RecordedAt = *in.RecordedAt
	}
	return uc.RecordMovement(ctx, input)
}
