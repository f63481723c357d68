package mapper

import (
	"encoding/json"
	"fmt"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/model"

	"gorm.io/datatypes"
)

type PivotMapper struct{}

func NewPivotMapper() *PivotMapper {
	return &PivotMapper{}
}

func (m *PivotMapper) ToEntity(p *model.Pivot) (*entity.Pivot, error) {
	if p == nil {
		return nil, nil
	}
	pivot := &entity.Pivot{
		ID:          p.Id,
		Enabled:     p.Enabled,
		ResultCount: p.ResultCount,
	}
	if len(p.Fields) > 0 {
		if err := json.Unmarshal(p.Fields, &pivot.Fields); err != nil {
			return nil, fmt.Errorf("pivot %s fields: %w", p.Id, err)
		}
	}
	if len(p.Results) > 0 && string(p.Results) != "null" {
		if err := json.Unmarshal(p.Results, &pivot.Results); err != nil {
			return nil, fmt.Errorf("pivot %s results: %w", p.Id, err)
		}
	}
	if len(p.ResultSummary) > 0 && string(p.ResultSummary) != "null" {
		pivot.ResultSummary = &entity.ResultSummary{}
		if err := json.Unmarshal(p.ResultSummary, pivot.ResultSummary); err != nil {
			return nil, fmt.Errorf("pivot %s summary: %w", p.Id, err)
		}
	}
	return pivot, nil
}

func (m *PivotMapper) ToModel(p *entity.Pivot) (*model.Pivot, error) {
	if p == nil {
		return nil, nil
	}
	fields, err := json.Marshal(p.Fields)
	if err != nil {
		return nil, fmt.Errorf("pivot %s fields: %w", p.ID, err)
	}
	results, err := json.Marshal(p.Results)
	if err != nil {
		return nil, fmt.Errorf("pivot %s results: %w", p.ID, err)
	}
	summary, err := json.Marshal(p.ResultSummary)
	if err != nil {
		return nil, fmt.Errorf("pivot %s summary: %w", p.ID, err)
	}
	return &model.Pivot{
		Id:            p.ID,
		Fields:        datatypes.JSON(fields),
		Enabled:       p.Enabled,
		ResultCount:   p.ResultCount,
		Results:       datatypes.JSON(results),
		ResultSummary: datatypes.JSON(summary),
	}, nil
}

func (m *PivotMapper) ToEntities(models []*model.Pivot) ([]*entity.Pivot, error) {
	out := make([]*entity.Pivot, 0, len(models))
	for _, p := range models {
		e, err := m.ToEntity(p)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
