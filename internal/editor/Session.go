// This file contains the Session struct, which drives interactive editing of one scene graph.
//
// A session moves between three states:
//
//	Idle     --Select(id)-->  Selected
//	Selected --Select(id)-->  Selected (re-target)
//	Selected --Deselect-->    Idle
//	Selected --BeginDrag-->   Dragging
//	Dragging --Drag(v)-->     Dragging (one whole-vector replacement per call)
//	Dragging --EndDrag-->     Selected
//	Dragging --CancelDrag-->  Selected (deltas already applied are kept)
//
// SetEditMode is valid in every state. A session is driven by one goroutine; only SaveAsync hands work to
// another, and that work only sees an immutable snapshot of the document.

package editor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/adhvyk/ar-studio/webserver/internal/log"
	"github.com/adhvyk/ar-studio/webserver/internal/models/scene"
)

// State is the interaction state of a Session.
type State int

const (
	StateIdle State = iota
	StateSelected
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelected:
		return "selected"
	case StateDragging:
		return "dragging"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrInvalidTransition is returned when an operation is not allowed in the current state.
var ErrInvalidTransition = errors.New("invalid editor transition")

type Session struct {
	experienceID string
	graph        *scene.Graph
	dragging     bool
	store        Store
	logger       *log.Logger

	// revision counts mutations of persisted state; saved is the revision of the last successful save.
	revision int64
	saved    atomic.Int64
}

// NewSession starts an editing session over graph. The session owns the graph from here on.
// store may be nil for a session that is never saved.
func NewSession(experienceID string, graph *scene.Graph, store Store, logger *log.Logger) *Session {
	return &Session{
		experienceID: experienceID,
		graph:        graph,
		store:        store,
		logger:       logger,
	}
}

// Open loads the configuration of an experience from store and starts a session on it.
// Entries of the stored document that cannot be loaded are skipped and returned in the report.
func Open(ctx context.Context, store Store, experienceID string, logger *log.Logger) (*Session, scene.DecodeReport, error) {
	doc, err := store.LoadConfig(ctx, experienceID)
	if err != nil {
		return nil, scene.DecodeReport{}, fmt.Errorf("failed to load experience %s: %w", experienceID, err)
	}

	graph, report := scene.Deserialize(*doc)
	if !report.OK() {
		logger.Infof("Experience %s loaded with %d skipped entries", experienceID, len(report.Skipped))
	}
	for _, n := range report.Notes {
		logger.Debugf("Experience %s object %s: %s", experienceID, n.ID, n.Note)
	}
	return NewSession(experienceID, graph, store, logger), report, nil
}

// Graph exposes the session's graph for read access. Mutate through the session so the
// state machine and dirty tracking stay consistent.
func (s *Session) Graph() *scene.Graph {
	return s.graph
}

func (s *Session) ExperienceID() string {
	return s.experienceID
}

// State returns the current interaction state.
func (s *Session) State() State {
	switch {
	case s.dragging:
		return StateDragging
	case s.graph.SelectedID() != "":
		return StateSelected
	}
	return StateIdle
}

func (s *Session) transitionError(op string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, op, s.State())
}

// Select selects an object, from Idle or Selected.
func (s *Session) Select(id string) error {
	if s.dragging {
		return s.transitionError("select")
	}
	if id == "" {
		return fmt.Errorf("%w: empty object id", scene.ErrObjectNotFound)
	}
	return s.graph.SelectObject(id)
}

// Deselect clears the selection, from Selected.
func (s *Session) Deselect() error {
	if s.State() != StateSelected {
		return s.transitionError("deselect")
	}
	return s.graph.SelectObject("")
}

// BeginDrag starts a transform gesture on the selected object.
func (s *Session) BeginDrag() error {
	if s.State() != StateSelected {
		return s.transitionError("begin drag")
	}
	s.dragging = true
	return nil
}

// Drag replaces the component targeted by the edit mode of the selected object with value.
// This is called for every intermediate pointer move of a gesture.
func (s *Session) Drag(value scene.Vec3) error {
	return s.ApplyTransform(s.graph.EditMode().Patch(value))
}

// ApplyTransform applies patch to the selected object while dragging.
func (s *Session) ApplyTransform(patch scene.TransformPatch) error {
	if !s.dragging {
		return s.transitionError("drag")
	}
	if patch.IsEmpty() {
		return nil
	}
	if s.graph.UpdateObject(s.graph.SelectedID(), scene.ObjectPatch{Transform: &patch}) {
		s.revision++
	}
	return nil
}

// EndDrag finishes the gesture.
func (s *Session) EndDrag() error {
	if !s.dragging {
		return s.transitionError("end drag")
	}
	s.dragging = false
	return nil
}

// CancelDrag abandons the gesture. Deltas applied so far stay in the graph.
func (s *Session) CancelDrag() {
	s.dragging = false
}

// SetEditMode changes which transform component subsequent drags target.
func (s *Session) SetEditMode(mode scene.EditMode) error {
	return s.graph.SetEditMode(mode)
}

// AddObject places a new object. See scene.Graph.AddObject.
func (s *Session) AddObject(kind scene.Kind, contentRef, displayName string) scene.SceneObject {
	obj := s.graph.AddObject(kind, contentRef, displayName)
	s.revision++
	return obj
}

// UpdateObject merges patch into an object. Unknown ids are ignored, they come from edits that raced a delete.
func (s *Session) UpdateObject(id string, patch scene.ObjectPatch) bool {
	if !s.graph.UpdateObject(id, patch) {
		s.logger.Debugf("Dropped update for missing object %s", id)
		return false
	}
	s.revision++
	return true
}

// RemoveObject deletes an object. Removing the selected object ends any gesture on it.
func (s *Session) RemoveObject(id string) bool {
	if !s.graph.RemoveObject(id) {
		return false
	}
	if s.graph.SelectedID() == "" {
		s.dragging = false
	}
	s.revision++
	return true
}

// Dirty reports whether there are edits not covered by a successful save.
func (s *Session) Dirty() bool {
	return s.saved.Load() < s.revision
}

// Snapshot serializes the current graph.
func (s *Session) Snapshot() scene.Document {
	return scene.Serialize(s.graph)
}

// Save writes the current graph to the store and waits for the result.
func (s *Session) Save(ctx context.Context) error {
	return s.save(ctx, s.Snapshot(), s.revision)
}

// SaveAsync snapshots the graph now and writes it in the background, so editing can continue
// while the save is in flight. The channel receives the result and is then closed.
func (s *Session) SaveAsync(ctx context.Context) <-chan error {
	doc, rev := s.Snapshot(), s.revision
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.save(ctx, doc, rev)
	}()
	return done
}

func (s *Session) save(ctx context.Context, doc scene.Document, rev int64) error {
	if s.store == nil {
		return fmt.Errorf("session for experience %s has no store", s.experienceID)
	}
	if err := s.store.SaveConfig(ctx, s.experienceID, doc); err != nil {
		s.logger.Errorf("Failed to save experience %s: %v", s.experienceID, err)
		return fmt.Errorf("failed to save experience %s: %w", s.experienceID, err)
	}

	// Saves may complete out of order; only move the marker forward.
	for {
		cur := s.saved.Load()
		if rev <= cur || s.saved.CompareAndSwap(cur, rev) {
			break
		}
	}
	s.logger.Debugf("Saved experience %s at revision %d (%d objects)", s.experienceID, rev, len(doc.Objects))
	return nil
}
