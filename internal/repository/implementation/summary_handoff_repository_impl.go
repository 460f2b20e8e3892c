package implementation

import (
	"context"
	"errors"

	"influencer-scout-be/internal/entity"
	"influencer-scout-be/internal/mapper"
	"influencer-scout-be/internal/model"
	"influencer-scout-be/internal/repository/contract"
	"influencer-scout-be/internal/repository/specification"

	"gorm.io/gorm"
)

type SummaryHandoffRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PipelineMapper
}

func NewSummaryHandoffRepository(db *gorm.DB) contract.SummaryHandoffRepository {
	return &SummaryHandoffRepositoryImpl{
		db:     db,
		mapper: mapper.NewPipelineMapper(),
	}
}

func (r *SummaryHandoffRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SummaryHandoffRepositoryImpl) Create(ctx context.Context, handoff *entity.SummaryHandoff) error {
	m := r.mapper.SummaryHandoffToModel(handoff)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*handoff = *r.mapper.SummaryHandoffToEntity(m)
	return nil
}

func (r *SummaryHandoffRepositoryImpl) Update(ctx context.Context, handoff *entity.SummaryHandoff) error {
	m := r.mapper.SummaryHandoffToModel(handoff)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*handoff = *r.mapper.SummaryHandoffToEntity(m)
	return nil
}

func (r *SummaryHandoffRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SummaryHandoff, error) {
	var m model.SummaryHandoff
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SummaryHandoffToEntity(&m), nil
}

func (r *SummaryHandoffRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SummaryHandoff, error) {
	var models []*model.SummaryHandoff
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SummaryHandoff, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SummaryHandoffToEntity(m)
	}
	return entities, nil
}
