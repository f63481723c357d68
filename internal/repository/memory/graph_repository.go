package memory

import (
	"context"
	"slices"
	"strings"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/mapper"
	"pivot-graph-be/internal/model"
	"pivot-graph-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// Stored values are models, so callers never share entity state with the
// store.

type InvestigationRepository struct {
	cache  *cache.Cache
	mapper *mapper.InvestigationMapper
}

func NewInvestigationRepository(c *cache.Cache) contract.InvestigationRepository {
	return &InvestigationRepository{cache: c, mapper: mapper.NewInvestigationMapper()}
}

func (r *InvestigationRepository) Upsert(ctx context.Context, investigation *entity.Investigation) error {
	r.cache.Set(investigationKey(investigation.ID), r.mapper.ToModel(investigation), cache.NoExpiration)
	return nil
}

func (r *InvestigationRepository) Delete(ctx context.Context, ids []string) error {
	for _, id := range ids {
		r.cache.Delete(investigationKey(id))
	}
	return nil
}

func (r *InvestigationRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Investigation, error) {
	var out []*entity.Investigation
	for _, id := range ids {
		if x, found := r.cache.Get(investigationKey(id)); found {
			out = append(out, r.mapper.ToEntity(x.(*model.Investigation)))
		}
	}
	return out, nil
}

func (r *InvestigationRepository) FindListingPivots(ctx context.Context, pivotIDs []string) ([]*entity.Investigation, error) {
	var out []*entity.Investigation
	for key, item := range r.cache.Items() {
		if !strings.HasPrefix(key, investigationPrefix) {
			continue
		}
		m := item.Object.(*model.Investigation)
		if slices.ContainsFunc(pivotIDs, func(id string) bool { return slices.Contains(m.PivotIds, id) }) {
			out = append(out, r.mapper.ToEntity(m))
		}
	}
	return out, nil
}

type PivotRepository struct {
	cache  *cache.Cache
	mapper *mapper.PivotMapper
}

func NewPivotRepository(c *cache.Cache) contract.PivotRepository {
	return &PivotRepository{cache: c, mapper: mapper.NewPivotMapper()}
}

func (r *PivotRepository) Upsert(ctx context.Context, pivot *entity.Pivot) error {
	m, err := r.mapper.ToModel(pivot)
	if err != nil {
		return err
	}
	r.cache.Set(pivotKey(pivot.ID), m, cache.NoExpiration)
	return nil
}

func (r *PivotRepository) Delete(ctx context.Context, ids []string) error {
	for _, id := range ids {
		r.cache.Delete(pivotKey(id))
	}
	return nil
}

func (r *PivotRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Pivot, error) {
	var out []*entity.Pivot
	for _, id := range ids {
		x, found := r.cache.Get(pivotKey(id))
		if !found {
			continue
		}
		p, err := r.mapper.ToEntity(x.(*model.Pivot))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type UserRepository struct {
	cache  *cache.Cache
	mapper *mapper.UserMapper
}

func NewUserRepository(c *cache.Cache) contract.UserRepository {
	return &UserRepository{cache: c, mapper: mapper.NewUserMapper()}
}

func (r *UserRepository) Upsert(ctx context.Context, user *entity.User) error {
	r.cache.Set(userKey(user.ID), r.mapper.ToModel(user), cache.NoExpiration)
	return nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	var out []*entity.User
	for _, id := range ids {
		if x, found := r.cache.Get(userKey(id)); found {
			out = append(out, r.mapper.ToEntity(x.(*model.User)))
		}
	}
	return out, nil
}

const investigationPrefix = "investigation:"

func investigationKey(id string) string { return investigationPrefix + id }
func pivotKey(id string) string         { return "pivot:" + id }
func userKey(id string) string          { return "user:" + id }
