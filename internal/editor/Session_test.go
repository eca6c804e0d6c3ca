package editor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adhvyk/ar-studio/webserver/internal/log"
	"github.com/adhvyk/ar-studio/webserver/internal/models/scene"
)

type memoryStore struct {
	mu      sync.Mutex
	docs    map[string]scene.Document
	saves   int
	failErr error
	// block, when set, holds SaveConfig until it is closed
	block chan struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: map[string]scene.Document{}}
}

func (m *memoryStore) LoadConfig(ctx context.Context, id string) (*scene.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, errors.New("experience not found")
	}
	return &doc, nil
}

func (m *memoryStore) SaveConfig(ctx context.Context, id string, doc scene.Document) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.docs[id] = doc
	m.saves++
	return nil
}

func newTestSession(store Store) *Session {
	return NewSession("exp-1", scene.NewGraph(), store, log.NewNopLogger())
}

func TestSession_StartsIdle(t *testing.T) {
	s := newTestSession(nil)

	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.Dirty())
}

func TestSession_SelectAndRetarget(t *testing.T) {
	s := newTestSession(nil)
	a := s.AddObject(scene.KindPrimitiveBox, "", "")
	b := s.AddObject(scene.KindPrimitiveBox, "", "")

	require.NoError(t, s.Select(a.ID))
	assert.Equal(t, StateSelected, s.State())

	require.NoError(t, s.Select(b.ID))
	assert.Equal(t, StateSelected, s.State())
	assert.Equal(t, b.ID, s.Graph().SelectedID())

	require.NoError(t, s.Deselect())
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_SelectMissingObject(t *testing.T) {
	s := newTestSession(nil)

	assert.ErrorIs(t, s.Select("ghost"), scene.ErrObjectNotFound)
	assert.ErrorIs(t, s.Select(""), scene.ErrObjectNotFound)
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_InvalidTransitions(t *testing.T) {
	s := newTestSession(nil)

	assert.ErrorIs(t, s.Deselect(), ErrInvalidTransition)
	assert.ErrorIs(t, s.BeginDrag(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Drag(scene.Vec3{1, 1, 1}), ErrInvalidTransition)
	assert.ErrorIs(t, s.EndDrag(), ErrInvalidTransition)

	obj := s.AddObject(scene.KindPrimitiveBox, "", "")
	require.NoError(t, s.Select(obj.ID))
	require.NoError(t, s.BeginDrag())

	assert.ErrorIs(t, s.Select(obj.ID), ErrInvalidTransition)
	assert.ErrorIs(t, s.Deselect(), ErrInvalidTransition)
	assert.ErrorIs(t, s.BeginDrag(), ErrInvalidTransition)
	assert.Equal(t, StateDragging, s.State())
}

func TestSession_DragFollowsEditMode(t *testing.T) {
	s := newTestSession(nil)
	obj := s.AddObject(scene.KindModel, "https://cdn.example/a.glb", "")
	require.NoError(t, s.Select(obj.ID))

	require.NoError(t, s.BeginDrag())
	require.NoError(t, s.Drag(scene.Vec3{1, 0, 0}))
	require.NoError(t, s.Drag(scene.Vec3{2, 0, 0}))
	require.NoError(t, s.EndDrag())
	assert.Equal(t, StateSelected, s.State())

	require.NoError(t, s.SetEditMode(scene.EditModeScale))
	require.NoError(t, s.BeginDrag())
	require.NoError(t, s.Drag(scene.Vec3{3, 3, 3}))
	require.NoError(t, s.EndDrag())

	got, _ := s.Graph().Object(obj.ID)
	assert.Equal(t, scene.Vec3{2, 0, 0}, got.Transform.Position)
	assert.Equal(t, scene.DefaultRotation, got.Transform.Rotation)
	assert.Equal(t, scene.Vec3{3, 3, 3}, got.Transform.Scale)
}

func TestSession_SetEditModeDoesNotMoveObjects(t *testing.T) {
	s := newTestSession(nil)
	obj := s.AddObject(scene.KindPrimitiveBox, "", "")
	require.NoError(t, s.Select(obj.ID))
	require.NoError(t, s.BeginDrag())

	require.NoError(t, s.SetEditMode(scene.EditModeRotate))

	got, _ := s.Graph().Object(obj.ID)
	assert.Equal(t, scene.NewTransform(), got.Transform)
	assert.Equal(t, StateDragging, s.State())
	assert.ErrorIs(t, s.SetEditMode("skew"), scene.ErrInvalidEditMode)
}

func TestSession_CancelDragKeepsAppliedDeltas(t *testing.T) {
	s := newTestSession(nil)
	obj := s.AddObject(scene.KindPrimitiveBox, "", "")
	require.NoError(t, s.Select(obj.ID))
	require.NoError(t, s.BeginDrag())
	require.NoError(t, s.Drag(scene.Vec3{5, 5, 5}))

	s.CancelDrag()

	got, _ := s.Graph().Object(obj.ID)
	assert.Equal(t, scene.Vec3{5, 5, 5}, got.Transform.Position)
	assert.Equal(t, StateSelected, s.State())
}

func TestSession_ApplyTransformPatch(t *testing.T) {
	s := newTestSession(nil)
	obj := s.AddObject(scene.KindPrimitiveBox, "", "")
	require.NoError(t, s.Select(obj.ID))
	require.NoError(t, s.BeginDrag())

	pos := scene.Vec3{1, 2, 3}
	rot := scene.Vec3{0, 1, 0}
	require.NoError(t, s.ApplyTransform(scene.TransformPatch{Position: &pos, Rotation: &rot}))

	got, _ := s.Graph().Object(obj.ID)
	assert.Equal(t, pos, got.Transform.Position)
	assert.Equal(t, rot, got.Transform.Rotation)
	assert.Equal(t, scene.DefaultScale, got.Transform.Scale)
}

func TestSession_RemoveSelectedWhileDragging(t *testing.T) {
	s := newTestSession(nil)
	obj := s.AddObject(scene.KindPrimitiveBox, "", "")
	require.NoError(t, s.Select(obj.ID))
	require.NoError(t, s.BeginDrag())

	assert.True(t, s.RemoveObject(obj.ID))

	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, "", s.Graph().SelectedID())
	assert.False(t, s.RemoveObject(obj.ID))
}

func TestSession_UpdateMissingObjectIsDropped(t *testing.T) {
	s := newTestSession(nil)
	name := "late"

	assert.False(t, s.UpdateObject("gone", scene.ObjectPatch{DisplayName: &name}))
	assert.False(t, s.Dirty())
}

func TestSession_OpenSaveReopen(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.docs["exp-1"] = scene.NewDocument()

	s, report, err := Open(ctx, store, "exp-1", log.NewNopLogger())
	require.NoError(t, err)
	require.True(t, report.OK())
	assert.Equal(t, 0, s.Graph().Len())

	obj := s.AddObject(scene.KindModel, "https://cdn.example/a.glb", "")
	name := "Statue"
	s.UpdateObject(obj.ID, scene.ObjectPatch{DisplayName: &name})
	assert.True(t, s.Dirty())

	require.NoError(t, s.Save(ctx))
	assert.False(t, s.Dirty())

	reopened, _, err := Open(ctx, store, "exp-1", log.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, s.Graph().Objects(), reopened.Graph().Objects())
	assert.Equal(t, StateIdle, reopened.State())
}

func TestSession_OpenReportsSkippedEntries(t *testing.T) {
	store := newMemoryStore()
	store.docs["exp-1"] = scene.Document{Objects: []scene.ObjectRecord{
		{ID: "a", Kind: scene.KindPrimitiveBox},
		{Kind: scene.KindModel},
	}}

	s, report, err := Open(context.Background(), store, "exp-1", log.NewNopLogger())

	require.NoError(t, err)
	assert.Equal(t, 1, s.Graph().Len())
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 1, report.Skipped[0].Index)
}

func TestSession_OpenMissingExperience(t *testing.T) {
	_, _, err := Open(context.Background(), newMemoryStore(), "nope", log.NewNopLogger())

	assert.Error(t, err)
}

func TestSession_SaveFailureKeepsDirty(t *testing.T) {
	store := newMemoryStore()
	store.failErr = errors.New("mongo unavailable")
	s := newTestSession(store)
	s.AddObject(scene.KindPrimitiveBox, "", "")

	err := s.Save(context.Background())

	assert.ErrorIs(t, err, store.failErr)
	assert.True(t, s.Dirty())
}

func TestSession_SaveWithoutStore(t *testing.T) {
	s := newTestSession(nil)

	assert.Error(t, s.Save(context.Background()))
}

func TestSession_SaveAsyncDoesNotBlockEditing(t *testing.T) {
	store := newMemoryStore()
	store.block = make(chan struct{})
	s := newTestSession(store)
	first := s.AddObject(scene.KindPrimitiveBox, "", "")

	done := s.SaveAsync(context.Background())

	// keep editing while the save is held
	second := s.AddObject(scene.KindPrimitiveBox, "", "")
	require.NoError(t, s.Select(second.ID))
	require.NoError(t, s.BeginDrag())
	require.NoError(t, s.Drag(scene.Vec3{9, 9, 9}))
	require.NoError(t, s.EndDrag())

	close(store.block)
	require.NoError(t, <-done)

	saved := store.docs["exp-1"]
	require.Len(t, saved.Objects, 1)
	assert.Equal(t, first.ID, saved.Objects[0].ID)
	// edits made after the snapshot are still pending
	assert.True(t, s.Dirty())

	require.NoError(t, s.Save(context.Background()))
	assert.False(t, s.Dirty())
	assert.Len(t, store.docs["exp-1"].Objects, 2)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "selected", StateSelected.String())
	assert.Equal(t, "dragging", StateDragging.String())
}
