// This file contains the Graph struct, the in-memory scene being authored.
//
// A Graph is owned by exactly one editing session and is not safe for concurrent use. Objects are kept in
// creation order and there is no reorder operation. Lookups are linear, scenes hold tens of objects.

package scene

import (
	"errors"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrObjectNotFound is returned when selecting an id that is not in the graph.
	ErrObjectNotFound = errors.New("object not found in scene")
	// ErrInvalidEditMode is returned when an edit mode other than translate, rotate or scale is requested.
	ErrInvalidEditMode = errors.New("invalid edit mode")
)

// EditMode selects which transform component interactive edits target.
type EditMode string

const (
	EditModeTranslate EditMode = "translate"
	EditModeRotate    EditMode = "rotate"
	EditModeScale     EditMode = "scale"
)

var editModes = []EditMode{EditModeTranslate, EditModeRotate, EditModeScale}

// Patch returns a TransformPatch that replaces the component this mode targets with v.
func (m EditMode) Patch(v Vec3) TransformPatch {
	switch m {
	case EditModeRotate:
		return TransformPatch{Rotation: &v}
	case EditModeScale:
		return TransformPatch{Scale: &v}
	default:
		return TransformPatch{Position: &v}
	}
}

// Graph is an ordered collection of SceneObjects plus the editor's selection and edit mode.
// Only objects are persisted; selection and edit mode are session state.
type Graph struct {
	objects    []SceneObject
	selectedID string
	editMode   EditMode
	// created counts AddObject calls and drives default names, it never goes down.
	created int
	newID   func() string
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDGenerator overrides how object ids are generated. Used by tests that need stable ids.
func WithIDGenerator(fn func() string) Option {
	return func(g *Graph) {
		g.newID = fn
	}
}

// NewGraph creates an empty graph in translate mode with nothing selected.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		objects:  []SceneObject{},
		editMode: EditModeTranslate,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddObject appends a new object with a fresh id and the default transform, and returns it.
// Any kind is stored as given except the empty one, which becomes KindPrimitiveBox since a document entry
// without a type cannot be loaded back. An empty displayName becomes "Object n", n being the 1-based creation ordinal in this graph.
// Ordinals are never reused, so deleting objects does not renumber later defaults.
func (g *Graph) AddObject(kind Kind, contentRef, displayName string) SceneObject {
	g.created++
	if kind == "" {
		kind = KindPrimitiveBox
	}
	if displayName == "" {
		displayName = defaultDisplayName(g.created)
	}

	obj := SceneObject{
		ID:          g.uniqueID(),
		Kind:        kind,
		ContentRef:  contentRef,
		DisplayName: displayName,
		Transform:   NewTransform(),
	}
	g.objects = append(g.objects, obj)
	return obj
}

// uniqueID draws ids until one is unused. With uuids the loop runs once.
func (g *Graph) uniqueID() string {
	for {
		id := g.newID()
		if g.index(id) == -1 {
			return id
		}
	}
}

// UpdateObject merges patch into the object with the given id.
// Returns false, and changes nothing, if no object has that id.
func (g *Graph) UpdateObject(id string, patch ObjectPatch) bool {
	i := g.index(id)
	if i == -1 {
		return false
	}
	g.objects[i] = patch.apply(g.objects[i])
	return true
}

// RemoveObject deletes the object with the given id, clearing the selection if it was selected.
// Returns false if no object has that id.
func (g *Graph) RemoveObject(id string) bool {
	i := g.index(id)
	if i == -1 {
		return false
	}
	g.objects = slices.Delete(g.objects, i, i+1)
	if g.selectedID == id {
		g.selectedID = ""
	}
	return true
}

// SelectObject sets the selection. An empty id clears it.
// Returns ErrObjectNotFound, keeping the current selection, if id is not in the graph.
func (g *Graph) SelectObject(id string) error {
	if id != "" && g.index(id) == -1 {
		return ErrObjectNotFound
	}
	g.selectedID = id
	return nil
}

// SetEditMode sets the edit mode. It does not touch any transform.
func (g *Graph) SetEditMode(mode EditMode) error {
	if !slices.Contains(editModes, mode) {
		return ErrInvalidEditMode
	}
	g.editMode = mode
	return nil
}

// Objects returns a copy of the objects in creation order.
func (g *Graph) Objects() []SceneObject {
	return slices.Clone(g.objects)
}

// Object returns the object with the given id.
func (g *Graph) Object(id string) (SceneObject, bool) {
	i := g.index(id)
	if i == -1 {
		return SceneObject{}, false
	}
	return g.objects[i], true
}

// Len returns the number of objects.
func (g *Graph) Len() int {
	return len(g.objects)
}

// SelectedID returns the selected object's id, or "" if nothing is selected.
func (g *Graph) SelectedID() string {
	return g.selectedID
}

// Selected returns the selected object, if any.
func (g *Graph) Selected() (SceneObject, bool) {
	if g.selectedID == "" {
		return SceneObject{}, false
	}
	return g.Object(g.selectedID)
}

func (g *Graph) EditMode() EditMode {
	return g.editMode
}

func (g *Graph) index(id string) int {
	return slices.IndexFunc(g.objects, func(o SceneObject) bool {
		return o.ID == id
	})
}
