package contract

import (
	"context"

	"influencer-scout-be/internal/entity"
	"influencer-scout-be/internal/repository/specification"
)

type SummaryHandoffRepository interface {
	Create(ctx context.Context, handoff *entity.SummaryHandoff) error
	Update(ctx context.Context, handoff *entity.SummaryHandoff) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SummaryHandoff, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SummaryHandoff, error)
}
