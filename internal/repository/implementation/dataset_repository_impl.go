package implementation

import (
	"context"
	"errors"

	"influencer-scout-be/internal/entity"
	"influencer-scout-be/internal/mapper"
	"influencer-scout-be/internal/model"
	"influencer-scout-be/internal/repository/contract"
	"influencer-scout-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DatasetRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PipelineMapper
}

func NewDatasetRepository(db *gorm.DB) contract.DatasetRepository {
	return &DatasetRepositoryImpl{
		db:     db,
		mapper: mapper.NewPipelineMapper(),
	}
}

func (r *DatasetRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Upsert conflicts on chat_session_id so a reprocessed session replaces its
// previous dataset in place.
func (r *DatasetRepositoryImpl) Upsert(ctx context.Context, dataset *entity.Dataset) error {
	m, err := r.mapper.DatasetToModel(dataset)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chat_session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"keywords", "columns", "rows", "grounding_text", "token_count", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	e, err := r.mapper.DatasetToEntity(m)
	if err != nil {
		return err
	}
	*dataset = *e
	return nil
}

func (r *DatasetRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("chat_session_id = ?", sessionId).
		Delete(&model.Dataset{}).Error
}

func (r *DatasetRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Dataset, error) {
	var m model.Dataset
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.DatasetToEntity(&m)
}
