package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/pkg/logger"
	"pivot-graph-be/internal/repository/contract"
	"pivot-graph-be/pkg/events"
	"pivot-graph-be/pkg/flow"
	"pivot-graph-be/pkg/jsongraph"
	"pivot-graph-be/pkg/store"
)

type IInvestigationService interface {
	Create(ctx context.Context, sess *store.Session, userID string) (*LifecycleResult, error)
	Clone(ctx context.Context, sess *store.Session, investigationID string) (*LifecycleResult, error)
	Save(ctx context.Context, sess *store.Session, investigationIDs []string) ([]*entity.Investigation, error)
	Remove(ctx context.Context, sess *store.Session, investigationIDs, userIDs []string) (*RemoveResult, error)
	SwitchActive(ctx context.Context, sess *store.Session, userID, investigationID string) (*entity.Investigation, error)
	Close(ctx context.Context, sess *store.Session, investigationIDs []string) error
	InsertPivot(ctx context.Context, sess *store.Session, investigationID string, index int) (int, *entity.Pivot, error)
	SplicePivot(ctx context.Context, sess *store.Session, investigationID string, index int) (string, error)
}

// LifecycleResult describes an investigation that was added to a user.
type LifecycleResult struct {
	User              *entity.User
	Investigation     *entity.Investigation
	NumInvestigations int
}

// UserRemoval is the change of one user's investigation list.
type UserRemoval struct {
	User      *entity.User
	OldLength int
	NewLength int
}

type RemoveResult struct {
	Users          []UserRemoval
	Investigations []*entity.Investigation
	PivotIDs       []string
}

type investigationService struct {
	loaders   contract.GraphLoaderFactory
	publisher IPublisherService
	logger    logger.ILogger
}

func NewInvestigationService(
	loaders contract.GraphLoaderFactory,
	publisher IPublisherService,
	log logger.ILogger,
) IInvestigationService {
	return &investigationService{
		loaders:   loaders,
		publisher: publisher,
		logger:    log,
	}
}

// Create gives the user a new investigation holding one empty pivot and
// makes it active.
func (s *investigationService) Create(ctx context.Context, sess *store.Session, userID string) (*LifecycleResult, error) {
	loader := s.loaders.ForApp(sess.App)

	users, err := loader.LoadUsersById(ctx, []string{userID})
	if err != nil {
		return nil, err
	}
	user := users[0]

	pivot := entity.NewPivot()
	inv := entity.NewInvestigation(entity.DefaultInvestigationName(len(user.Investigations)), pivot.ID)
	sess.App.PutPivots(pivot)
	sess.App.PutInvestigation(inv)
	n := user.AddInvestigation(inv.ID)
	sess.Cache.Reset()

	s.logger.Debug("INVESTIGATION", "Created new investigation", map[string]interface{}{
		"investigation_id": inv.ID,
		"user_id":          user.ID,
	})
	s.publish(ctx, events.NewGraphEvent(events.InvestigationCreated, sess.ID, map[string]interface{}{
		"investigation_id": inv.ID,
		"user_id":          user.ID,
	}))

	return &LifecycleResult{User: user, Investigation: inv, NumInvestigations: n}, nil
}

// Clone copies an investigation and every pivot it references onto new ids
// and adds the copy to the current user.
func (s *investigationService) Clone(ctx context.Context, sess *store.Session, investigationID string) (*LifecycleResult, error) {
	loader := s.loaders.ForApp(sess.App)

	invs, err := loader.LoadInvestigationsById(ctx, []string{investigationID})
	if err != nil {
		return nil, err
	}
	source := invs[0]

	pivots, err := loader.LoadPivotsById(ctx, source.PivotIDs())
	if err != nil {
		return nil, err
	}
	users, err := loader.LoadUsersById(ctx, []string{sess.App.CurrentUser.ID})
	if err != nil {
		return nil, err
	}
	user := users[0]

	cloned := make([]*entity.Pivot, len(pivots))
	ids := make([]string, len(pivots))
	for i, p := range pivots {
		cloned[i] = p.Clone()
		ids[i] = cloned[i].ID
	}
	sess.App.PutPivots(cloned...)
	inv := source.Clone(ids)
	sess.App.PutInvestigation(inv)
	n := user.AddInvestigation(inv.ID)
	sess.Cache.Reset()

	s.logger.Debug("INVESTIGATION", "Cloned investigation", map[string]interface{}{
		"source_id": source.ID,
		"clone_id":  inv.ID,
	})
	s.publish(ctx, events.NewGraphEvent(events.InvestigationCloned, sess.ID, map[string]interface{}{
		"investigation_id": inv.ID,
		"source_id":        source.ID,
		"user_id":          user.ID,
	}))

	return &LifecycleResult{User: user, Investigation: inv, NumInvestigations: n}, nil
}

// Save persists each investigation after its pivots. Detached pivots are
// deleted instead of persisted unless another investigation, loaded or
// stored, still lists them.
func (s *investigationService) Save(ctx context.Context, sess *store.Session, investigationIDs []string) ([]*entity.Investigation, error) {
	loader := s.loaders.ForApp(sess.App)

	invs, err := loader.LoadInvestigationsById(ctx, investigationIDs)
	if err != nil {
		return nil, err
	}

	for _, inv := range invs {
		inv.ModifiedOn = time.Now()

		keep := make([]string, 0, len(inv.Pivots))
		for _, id := range inv.PivotIDs() {
			if !inv.IsDetached(id) {
				keep = append(keep, id)
			}
		}
		if err := flow.Each(ctx, keep, func(ctx context.Context, id string) error {
			return loader.PersistPivotsById(ctx, []string{id})
		}); err != nil {
			return nil, &OperationError{Op: "save", EntityID: inv.ID, Err: err}
		}

		referenced, err := loader.ReferencedPivots(ctx, inv.DetachedPivots, []string{inv.ID})
		if err != nil {
			return nil, &OperationError{Op: "save", EntityID: inv.ID, Err: err}
		}
		var orphans []string
		for _, id := range inv.DetachedPivots {
			if !inv.HasPivot(id) && !referenced[id] {
				orphans = append(orphans, id)
			}
		}
		if err := flow.Each(ctx, orphans, func(ctx context.Context, id string) error {
			return loader.UnlinkPivotsById(ctx, []string{id})
		}); err != nil {
			return nil, &OperationError{Op: "save", EntityID: inv.ID, Err: err}
		}
		inv.DetachedPivots = nil

		if err := loader.PersistInvestigationsById(ctx, []string{inv.ID}); err != nil {
			return nil, &OperationError{Op: "save", EntityID: inv.ID, Err: err}
		}
		if err := loader.PersistUsersById(ctx, s.owners(sess.App, inv.ID)); err != nil {
			return nil, &OperationError{Op: "save", EntityID: inv.ID, Err: err}
		}

		s.logger.Debug("INVESTIGATION", "Saved investigation", map[string]interface{}{
			"investigation_id": inv.ID,
			"pivots":           len(keep),
			"unlinked":         len(orphans),
		})
		s.publish(ctx, events.NewGraphEvent(events.InvestigationSaved, sess.ID, map[string]interface{}{
			"investigation_id": inv.ID,
		}))
	}
	return invs, nil
}

// Remove drops the investigations from the users' lists, reassigning the
// active one when needed, then deletes the investigations and every pivot
// no surviving investigation references. The users' lists are restored when
// the investigations cannot be deleted.
func (s *investigationService) Remove(ctx context.Context, sess *store.Session, investigationIDs, userIDs []string) (*RemoveResult, error) {
	loader := s.loaders.ForApp(sess.App)

	users, err := loader.LoadUsersById(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	result := &RemoveResult{}
	saved := make([]entity.User, len(users))
	for i, user := range users {
		saved[i] = *user
		saved[i].Investigations = slices.Clone(user.Investigations)
		oldLength := len(user.Investigations)
		user.RemoveInvestigations(investigationIDs)
		result.Users = append(result.Users, UserRemoval{
			User:      user,
			OldLength: oldLength,
			NewLength: len(user.Investigations),
		})
	}

	removed, err := loader.UnlinkInvestigationsById(ctx, investigationIDs)
	if err != nil {
		for i, user := range users {
			user.Investigations = saved[i].Investigations
			user.ActiveInvestigation = saved[i].ActiveInvestigation
		}
		return nil, &OperationError{Op: "remove", EntityID: fmt.Sprint(investigationIDs), Err: err}
	}
	result.Investigations = removed

	var candidates []string
	for _, inv := range removed {
		for _, id := range append(inv.PivotIDs(), inv.DetachedPivots...) {
			if !slices.Contains(candidates, id) {
				candidates = append(candidates, id)
			}
		}
	}
	referenced, err := loader.ReferencedPivots(ctx, candidates, investigationIDs)
	if err != nil {
		return nil, &OperationError{Op: "remove", EntityID: fmt.Sprint(investigationIDs), Err: err}
	}
	for _, id := range candidates {
		if !referenced[id] {
			result.PivotIDs = append(result.PivotIDs, id)
		}
	}
	if err := flow.Each(ctx, result.PivotIDs, func(ctx context.Context, id string) error {
		return loader.UnlinkPivotsById(ctx, []string{id})
	}); err != nil {
		return nil, &OperationError{Op: "remove", EntityID: fmt.Sprint(investigationIDs), Err: err}
	}

	if err := loader.PersistUsersById(ctx, userIDs); err != nil {
		return nil, &OperationError{Op: "remove", EntityID: fmt.Sprint(userIDs), Err: err}
	}
	sess.Cache.Reset()

	for _, inv := range removed {
		s.logger.Debug("INVESTIGATION", "Removed investigation", map[string]interface{}{"investigation_id": inv.ID})
		s.publish(ctx, events.NewGraphEvent(events.InvestigationRemoved, sess.ID, map[string]interface{}{
			"investigation_id": inv.ID,
		}))
	}
	return result, nil
}

// SwitchActive closes the user's active investigation and activates
// investigationID, loading it and its pivots.
func (s *investigationService) SwitchActive(ctx context.Context, sess *store.Session, userID, investigationID string) (*entity.Investigation, error) {
	loader := s.loaders.ForApp(sess.App)

	users, err := loader.LoadUsersById(ctx, []string{userID})
	if err != nil {
		return nil, err
	}
	user := users[0]
	if !user.Owns(investigationID) {
		return nil, &jsongraph.InvalidArgumentsError{
			Reason: fmt.Sprintf("user %s does not own investigation %s", userID, investigationID),
		}
	}

	if active, ok := user.ActiveID(); ok && active != investigationID {
		if err := s.Close(ctx, sess, []string{active}); err != nil {
			return nil, err
		}
	}

	invs, err := loader.LoadInvestigationsById(ctx, []string{investigationID})
	if err != nil {
		return nil, err
	}
	inv := invs[0]
	if _, err := loader.LoadPivotsById(ctx, inv.PivotIDs()); err != nil {
		return nil, err
	}
	user.Activate(investigationID)
	sess.Cache.Reset()
	return inv, nil
}

// Close unloads investigations and their pivots from working memory. It
// deletes nothing.
func (s *investigationService) Close(ctx context.Context, sess *store.Session, investigationIDs []string) error {
	loader := s.loaders.ForApp(sess.App)

	invs, err := loader.LoadInvestigationsById(ctx, investigationIDs)
	if err != nil {
		return err
	}
	if err := flow.Each(ctx, invs, func(ctx context.Context, inv *entity.Investigation) error {
		return loader.UnloadPivotsById(ctx, inv.PivotIDs())
	}); err != nil {
		return err
	}
	if err := loader.UnloadInvestigationsById(ctx, investigationIDs); err != nil {
		return err
	}

	for _, inv := range invs {
		s.logger.Info("INVESTIGATION", "Closed investigation", map[string]interface{}{"investigation_id": inv.ID})
		s.publish(ctx, events.NewGraphEvent(events.InvestigationClosed, sess.ID, map[string]interface{}{
			"investigation_id": inv.ID,
		}))
	}
	return nil
}

// InsertPivot adds an empty pivot at index. An index outside the list
// appends. It returns the index used.
func (s *investigationService) InsertPivot(ctx context.Context, sess *store.Session, investigationID string, index int) (int, *entity.Pivot, error) {
	invs, err := s.loaders.ForApp(sess.App).LoadInvestigationsById(ctx, []string{investigationID})
	if err != nil {
		return 0, nil, err
	}
	inv := invs[0]

	pivot := entity.NewPivot()
	sess.App.PutPivots(pivot)
	at := inv.InsertPivot(index, pivot.ID)
	sess.Cache.Shift(at, 1)
	return at, pivot, nil
}

// SplicePivot removes the pivot at index from the list, marks it detached
// and returns its id. The pivot stays in working memory until the next save.
func (s *investigationService) SplicePivot(ctx context.Context, sess *store.Session, investigationID string, index int) (string, error) {
	invs, err := s.loaders.ForApp(sess.App).LoadInvestigationsById(ctx, []string{investigationID})
	if err != nil {
		return "", err
	}
	inv := invs[0]

	ref, ok := inv.SplicePivot(index)
	if !ok {
		return "", &jsongraph.InvalidArgumentsError{
			Reason: fmt.Sprintf("pivot index %d out of range [0, %d)", index, len(inv.Pivots)),
		}
	}
	sess.Cache.Shift(index, -1)
	return ref.ID, nil
}

// owners lists the loaded users whose investigation list holds id.
func (s *investigationService) owners(app *entity.App, id string) []string {
	var out []string
	for _, u := range app.UsersById {
		if u.Owns(id) {
			out = append(out, u.ID)
		}
	}
	return out
}

func (s *investigationService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("INVESTIGATION", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
