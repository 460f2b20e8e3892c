package contract

import (
	"context"

	"influencer-scout-be/internal/entity"
	"influencer-scout-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DatasetRepository interface {
	// Upsert replaces a session's dataset if one already exists.
	Upsert(ctx context.Context, dataset *entity.Dataset) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Dataset, error)
}
