package mapper

import (
	"time"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/model"
)

type InvestigationMapper struct{}

func NewInvestigationMapper() *InvestigationMapper {
	return &InvestigationMapper{}
}

func (m *InvestigationMapper) ToEntity(i *model.Investigation) *entity.Investigation {
	if i == nil {
		return nil
	}
	inv := entity.NewInvestigation(i.Name, i.PivotIds...)
	inv.ID = i.Id
	if len(i.DetachedPivots) > 0 {
		inv.DetachedPivots = append([]string(nil), i.DetachedPivots...)
	}
	if i.ModifiedOn != nil {
		inv.ModifiedOn = *i.ModifiedOn
	}
	return inv
}

func (m *InvestigationMapper) ToModel(i *entity.Investigation) *model.Investigation {
	if i == nil {
		return nil
	}
	var modifiedOn *time.Time
	if !i.ModifiedOn.IsZero() {
		t := i.ModifiedOn
		modifiedOn = &t
	}
	return &model.Investigation{
		Id:             i.ID,
		Name:           i.Name,
		PivotIds:       i.PivotIDs(),
		DetachedPivots: append([]string{}, i.DetachedPivots...),
		ModifiedOn:     modifiedOn,
	}
}

func (m *InvestigationMapper) ToEntities(models []*model.Investigation) []*entity.Investigation {
	out := make([]*entity.Investigation, 0, len(models))
	for _, i := range models {
		out = append(out, m.ToEntity(i))
	}
	return out
}
