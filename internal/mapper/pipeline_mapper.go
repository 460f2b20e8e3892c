package mapper

import (
	"encoding/json"
	"time"

	"influencer-scout-be/internal/entity"
	"influencer-scout-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PipelineMapper struct{}

func NewPipelineMapper() *PipelineMapper {
	return &PipelineMapper{}
}

// Handoff Mappers

func (m *PipelineMapper) SummaryHandoffToEntity(h *model.SummaryHandoff) *entity.SummaryHandoff {
	if h == nil {
		return nil
	}

	var deletedAt *time.Time
	if h.DeletedAt.Valid {
		t := h.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !h.UpdatedAt.IsZero() {
		t := h.UpdatedAt
		updatedAt = &t
	}

	return &entity.SummaryHandoff{
		Id:            h.Id,
		ChatSessionId: h.ChatSessionId,
		Summary:       h.Summary,
		Status:        h.Status,
		ProcessedAt:   h.ProcessedAt,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     h.DeletedAt.Valid,
	}
}

func (m *PipelineMapper) SummaryHandoffToModel(h *entity.SummaryHandoff) *model.SummaryHandoff {
	if h == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if h.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *h.DeletedAt, Valid: true}
	} else if h.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if h.UpdatedAt != nil {
		updatedAt = *h.UpdatedAt
	}

	return &model.SummaryHandoff{
		Id:            h.Id,
		ChatSessionId: h.ChatSessionId,
		Summary:       h.Summary,
		Status:        h.Status,
		ProcessedAt:   h.ProcessedAt,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

// Dataset Mappers
//
// Keywords, Columns and Rows live as JSONB. Unmarshal failures surface as
// errors so a corrupted row is never silently served as an empty dataset.

func (m *PipelineMapper) DatasetToEntity(d *model.Dataset) (*entity.Dataset, error) {
	if d == nil {
		return nil, nil
	}

	var keywords []string
	if len(d.Keywords) > 0 {
		if err := json.Unmarshal(d.Keywords, &keywords); err != nil {
			return nil, err
		}
	}

	var columns []string
	if len(d.Columns) > 0 {
		if err := json.Unmarshal(d.Columns, &columns); err != nil {
			return nil, err
		}
	}

	var rows []map[string]any
	if len(d.Rows) > 0 {
		if err := json.Unmarshal(d.Rows, &rows); err != nil {
			return nil, err
		}
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Dataset{
		Id:            d.Id,
		ChatSessionId: d.ChatSessionId,
		Keywords:      keywords,
		Columns:       columns,
		Rows:          rows,
		GroundingText: d.GroundingText,
		TokenCount:    d.TokenCount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     d.DeletedAt.Valid,
	}, nil
}

func (m *PipelineMapper) DatasetToModel(d *entity.Dataset) (*model.Dataset, error) {
	if d == nil {
		return nil, nil
	}

	keywords, err := json.Marshal(d.Keywords)
	if err != nil {
		return nil, err
	}
	columns, err := json.Marshal(d.Columns)
	if err != nil {
		return nil, err
	}
	rows, err := json.Marshal(d.Rows)
	if err != nil {
		return nil, err
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Dataset{
		Id:            d.Id,
		ChatSessionId: d.ChatSessionId,
		Keywords:      datatypes.JSON(keywords),
		Columns:       datatypes.JSON(columns),
		Rows:          datatypes.JSON(rows),
		GroundingText: d.GroundingText,
		TokenCount:    d.TokenCount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}, nil
}
