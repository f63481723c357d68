package mapper

import (
	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/model"
	"pivot-graph-be/pkg/jsongraph"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	user := &entity.User{ID: u.Id, Name: u.Name}
	for _, id := range u.InvestigationIds {
		user.Investigations = append(user.Investigations, jsongraph.NewRef(jsongraph.InvestigationsByID, id))
	}
	if u.ActiveInvestigationId != nil {
		user.Activate(*u.ActiveInvestigationId)
	}
	return user
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	ids := make([]string, len(u.Investigations))
	for i, ref := range u.Investigations {
		ids[i] = ref.ID
	}
	var active *string
	if id, ok := u.ActiveID(); ok {
		active = &id
	}
	return &model.User{
		Id:                    u.ID,
		Name:                  u.Name,
		InvestigationIds:      ids,
		ActiveInvestigationId: active,
	}
}
