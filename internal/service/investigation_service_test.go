package service

import (
	"errors"
	"slices"
	"testing"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/pkg/logger"
	"pivot-graph-be/internal/repository/loader"
	"pivot-graph-be/pkg/events"
	"pivot-graph-be/pkg/jsongraph"
	"pivot-graph-be/pkg/pivot/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOnFreshUser(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Create(f.ctx, f.sess, f.user.ID)
	require.NoError(t, err)

	require.Len(t, res.Investigation.Pivots, 1)
	pivot, err := f.sess.App.Pivot(res.Investigation.Pivots[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, pivot.Fields.Len())

	assert.Equal(t, 1, res.NumInvestigations)
	assert.Len(t, f.user.Investigations, 1)
	active, ok := f.user.ActiveID()
	require.True(t, ok)
	assert.Equal(t, res.Investigation.ID, active)
	assert.Equal(t, entity.DefaultInvestigationName(0), res.Investigation.Name)
	assert.Equal(t, []string{events.InvestigationCreated}, f.publisher.types())
}

func TestCreateUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, f.sess, "nobody")

	var missing *jsongraph.MissingReferenceError
	assert.True(t, errors.As(err, &missing))
}

func TestCloneIsolation(t *testing.T) {
	f := newFixture(t)
	source := f.create(t, 1)

	first, err := f.sess.App.Pivot(source.Pivots[0].ID)
	require.NoError(t, err)
	first.Fields.Set(entity.FieldSearch, "error")
	first.Fields.Set(entity.FieldLinks, []any{"src_ip", "user"})

	res, err := f.svc.Clone(f.ctx, f.sess, source.ID)
	require.NoError(t, err)
	require.Len(t, res.Investigation.Pivots, 2)
	assert.NotEqual(t, source.ID, res.Investigation.ID)
	assert.Equal(t, 2, res.NumInvestigations)

	copied, err := f.sess.App.Pivot(res.Investigation.Pivots[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, copied.ID)

	copied.Fields.Set(entity.FieldSearch, "changed")
	links, _ := copied.Fields.Get(entity.FieldLinks)
	links.([]any)[0] = "dest_ip"

	search, _ := first.Fields.Get(entity.FieldSearch)
	assert.Equal(t, "error", search)
	sourceLinks, _ := first.Fields.Get(entity.FieldLinks)
	assert.Equal(t, []any{"src_ip", "user"}, sourceLinks)

	active, _ := f.user.ActiveID()
	assert.Equal(t, res.Investigation.ID, active)
}

func TestRemoveCascade(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, 1)
	b := f.create(t, 0)

	own, shared := a.Pivots[0].ID, a.Pivots[1].ID
	b.Pivots = append(b.Pivots, jsongraph.NewRef(jsongraph.PivotsByID, shared))

	res, err := f.svc.Remove(f.ctx, f.sess, []string{a.ID}, []string{f.user.ID})
	require.NoError(t, err)

	assert.Equal(t, []string{own}, res.PivotIDs)
	_, err = f.sess.App.Pivot(own)
	assert.Error(t, err)
	_, err = f.sess.App.Pivot(shared)
	assert.NoError(t, err)
	_, err = f.sess.App.Investigation(a.ID)
	assert.Error(t, err)

	require.Len(t, res.Users, 1)
	assert.Equal(t, 2, res.Users[0].OldLength)
	assert.Equal(t, 1, res.Users[0].NewLength)
}

func TestRemoveKeepsPivotsListedByClosedInvestigations(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, 1)
	b := f.create(t, 0)
	own, shared := a.Pivots[0].ID, a.Pivots[1].ID
	b.Pivots = append(b.Pivots, jsongraph.NewRef(jsongraph.PivotsByID, shared))

	_, err := f.svc.Save(f.ctx, f.sess, []string{a.ID, b.ID})
	require.NoError(t, err)
	require.NoError(t, f.svc.Close(f.ctx, f.sess, []string{b.ID}))
	_, err = f.sess.App.Investigation(b.ID)
	require.Error(t, err)

	res, err := f.svc.Remove(f.ctx, f.sess, []string{a.ID}, []string{f.user.ID})
	require.NoError(t, err)

	assert.Equal(t, []string{own}, res.PivotIDs)
	stored := f.storedPivots(t, own, shared)
	require.Len(t, stored, 1)
	assert.Equal(t, shared, stored[0].ID)

	reopened, err := f.loaders.ForApp(f.sess.App).LoadInvestigationsById(f.ctx, []string{b.ID})
	require.NoError(t, err)
	assert.True(t, reopened[0].HasPivot(shared))
}

func TestRemoveRestoresUsersWhenStorageFails(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, 0)
	second := f.create(t, 0)
	before := slices.Clone(f.user.Investigations)

	broken := NewInvestigationService(loader.NewGraphLoaderFactory(brokenDeletes{f.factory}), f.publisher, logger.NewNopLogger())
	_, err := broken.Remove(f.ctx, f.sess, []string{second.ID}, []string{f.user.ID})
	require.ErrorIs(t, err, errStorageDown)

	assert.Equal(t, before, f.user.Investigations)
	active, ok := f.user.ActiveID()
	require.True(t, ok)
	assert.Equal(t, second.ID, active)
	_, err = f.sess.App.Investigation(second.ID)
	assert.NoError(t, err)
	_, err = f.sess.App.Investigation(first.ID)
	assert.NoError(t, err)
	assert.NotContains(t, f.publisher.types(), events.InvestigationRemoved)
}

func TestRemoveActiveReassignment(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, 0)
	second := f.create(t, 0)
	third := f.create(t, 0)

	active, _ := f.user.ActiveID()
	require.Equal(t, third.ID, active)

	_, err := f.svc.Remove(f.ctx, f.sess, []string{third.ID}, []string{f.user.ID})
	require.NoError(t, err)
	active, ok := f.user.ActiveID()
	require.True(t, ok)
	assert.Equal(t, first.ID, active)

	_, err = f.svc.Remove(f.ctx, f.sess, []string{first.ID, second.ID}, []string{f.user.ID})
	require.NoError(t, err)
	_, ok = f.user.ActiveID()
	assert.False(t, ok)
	assert.Empty(t, f.user.Investigations)
}

func TestSaveDeletesDetachedPivots(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 1)
	kept, spliced := inv.Pivots[0].ID, inv.Pivots[1].ID

	_, err := f.svc.Save(f.ctx, f.sess, []string{inv.ID})
	require.NoError(t, err)
	assert.Len(t, f.storedPivots(t, kept, spliced), 2)

	id, err := f.svc.SplicePivot(f.ctx, f.sess, inv.ID, 1)
	require.NoError(t, err)
	require.Equal(t, spliced, id)
	assert.True(t, inv.IsDetached(spliced))

	saved, err := f.svc.Save(f.ctx, f.sess, []string{inv.ID})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.False(t, saved[0].ModifiedOn.IsZero())
	assert.Empty(t, saved[0].DetachedPivots)

	stored := f.storedPivots(t, kept, spliced)
	require.Len(t, stored, 1)
	assert.Equal(t, kept, stored[0].ID)
	_, err = f.sess.App.Pivot(spliced)
	assert.Error(t, err)
}

func TestCloseDiscardsUnsavedChanges(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 0)
	_, err := f.svc.Save(f.ctx, f.sess, []string{inv.ID})
	require.NoError(t, err)

	inv.Name = "renamed"
	require.NoError(t, f.svc.Close(f.ctx, f.sess, []string{inv.ID}))

	_, err = f.sess.App.Investigation(inv.ID)
	assert.Error(t, err)
	_, err = f.sess.App.Pivot(inv.Pivots[0].ID)
	assert.Error(t, err)

	reloaded, err := f.loaders.ForApp(f.sess.App).LoadInvestigationsById(f.ctx, []string{inv.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultInvestigationName(0), reloaded[0].Name)
	assert.Contains(t, f.publisher.types(), events.InvestigationClosed)
}

func TestSwitchActive(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, 0)
	second := f.create(t, 0)

	inv, err := f.svc.SwitchActive(f.ctx, f.sess, f.user.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, inv.ID)

	active, _ := f.user.ActiveID()
	assert.Equal(t, first.ID, active)
	_, err = f.sess.App.Investigation(second.ID)
	assert.Error(t, err, "previously active investigation is closed")
}

func TestSwitchActiveRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	f.create(t, 0)

	_, err := f.svc.SwitchActive(f.ctx, f.sess, f.user.ID, "foreign")

	var argErr *jsongraph.InvalidArgumentsError
	assert.True(t, errors.As(err, &argErr))
}

func TestInsertAndSpliceShiftCache(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 1)

	rows0 := []template.Row{{"host": "a"}}
	rows1 := []template.Row{{"host": "b"}}
	f.sess.Cache.Put(0, rows0)
	f.sess.Cache.Put(1, rows1)

	at, pivot, err := f.svc.InsertPivot(f.ctx, f.sess, inv.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, at)
	assert.Equal(t, pivot.ID, inv.Pivots[1].ID)
	assert.Len(t, inv.Pivots, 3)
	assert.Equal(t, rows0, f.sess.Cache.Rows(0))
	assert.Nil(t, f.sess.Cache.Rows(1))
	assert.Equal(t, rows1, f.sess.Cache.Rows(2))

	_, err = f.svc.SplicePivot(f.ctx, f.sess, inv.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, rows1, f.sess.Cache.Rows(1))

	_, err = f.svc.SplicePivot(f.ctx, f.sess, inv.ID, 7)
	var argErr *jsongraph.InvalidArgumentsError
	assert.True(t, errors.As(err, &argErr))
}

func TestInsertOutOfRangeAppends(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 0)

	at, _, err := f.svc.InsertPivot(f.ctx, f.sess, inv.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, 1, at)
}
