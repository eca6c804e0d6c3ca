// This file contains the configuration Document, the persisted and transmitted form of a Graph,
// and the codec between the two.
//
// The document is what the experience stores as its config and what the viewer renders:
//
//	{
//	    "objects": [
//	        {
//	            "id": string,
//	            "type": string (primitive-box | model | image | video | ...),
//	            "url": string (optional content reference),
//	            "name": string,
//	            "position": [x, y, z],
//	            "rotation": [x, y, z],
//	            "scale": [x, y, z]
//	        },
//	        ...
//	    ]
//	}
//
// Decoding is lenient: entries without an id or type, or repeating an earlier id, are skipped and reported
// in a DecodeReport while the rest of the scene loads. Validate is the strict check used before a document
// is written.

package scene

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrMalformedDocument is matched (errors.Is) by every *DocumentError.
var ErrMalformedDocument = errors.New("malformed configuration document")

// DocumentError describes why a document could not be decoded or failed validation.
type DocumentError struct {
	Problems []string
	Err      error
}

func (e *DocumentError) Error() string {
	msg := ErrMalformedDocument.Error()
	if len(e.Problems) > 0 {
		msg += ": " + strings.Join(e.Problems, "; ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Document is the configuration of an experience.
type Document struct {
	Objects []ObjectRecord `bson:"objects" json:"objects"`
}

// ObjectRecord is the flat form of a SceneObject. Name and transform components are optional on input
// and always written on output; an empty name is kept, only an absent one is defaulted.
type ObjectRecord struct {
	ID          string `bson:"id" json:"id"`
	Kind        Kind   `bson:"type" json:"type"`
	ContentRef  string `bson:"url,omitempty" json:"url,omitempty"`
	DisplayName *string `bson:"name,omitempty" json:"name,omitempty"`
	Position    *Vec3  `bson:"position,omitempty" json:"position,omitempty"`
	Rotation    *Vec3  `bson:"rotation,omitempty" json:"rotation,omitempty"`
	Scale       *Vec3  `bson:"scale,omitempty" json:"scale,omitempty"`
}

// UnmarshalJSON accepts the editor-side aliases kind, contentRef and displayName
// in addition to the canonical type, url and name keys. Canonical keys win.
func (r *ObjectRecord) UnmarshalJSON(data []byte) error {
	type record ObjectRecord
	var aux struct {
		record
		AltKind        *Kind   `json:"kind"`
		AltContentRef  *string `json:"contentRef"`
		AltDisplayName *string `json:"displayName"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = ObjectRecord(aux.record)
	if r.Kind == "" && aux.AltKind != nil {
		r.Kind = *aux.AltKind
	}
	if r.ContentRef == "" && aux.AltContentRef != nil {
		r.ContentRef = *aux.AltContentRef
	}
	if r.DisplayName == nil {
		r.DisplayName = aux.AltDisplayName
	}
	return nil
}

// NewDocument returns the configuration given to a freshly created experience.
func NewDocument() Document {
	return Document{Objects: []ObjectRecord{}}
}

// SkippedEntry identifies a document entry that could not be loaded.
type SkippedEntry struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// EntryNote flags a loaded entry that will likely render as a placeholder.
type EntryNote struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Note  string `json:"note"`
}

// DecodeReport lists the entries dropped while building a Graph from a document, and notes on
// entries that were loaded but look incomplete.
type DecodeReport struct {
	Skipped []SkippedEntry `json:"skipped,omitempty"`
	Notes   []EntryNote    `json:"notes,omitempty"`
}

// OK reports whether every entry was loaded. Notes do not count.
func (r DecodeReport) OK() bool {
	return len(r.Skipped) == 0
}

func (r *DecodeReport) skip(index int, id, reason string) {
	r.Skipped = append(r.Skipped, SkippedEntry{Index: index, ID: id, Reason: reason})
}

func (r *DecodeReport) note(index int, id, note string) {
	r.Notes = append(r.Notes, EntryNote{Index: index, ID: id, Note: note})
}

// Serialize flattens g into a Document. Selection and edit mode are not included.
func Serialize(g *Graph) Document {
	doc := Document{Objects: make([]ObjectRecord, 0, len(g.objects))}
	for _, obj := range g.objects {
		t, name := obj.Transform, obj.DisplayName
		doc.Objects = append(doc.Objects, ObjectRecord{
			ID:          obj.ID,
			Kind:        obj.Kind,
			ContentRef:  obj.ContentRef,
			DisplayName: &name,
			Position:    &t.Position,
			Rotation:    &t.Rotation,
			Scale:       &t.Scale,
		})
	}
	return doc
}

// Deserialize builds a Graph from doc, with nothing selected and translate mode.
// Missing transform components take their defaults and a missing name becomes "Object n", n being the
// entry's 1-based position in the document. Entries without an id or type, and repeated ids, are skipped.
// Entries of a content kind without a url are loaded and noted.
func Deserialize(doc Document, opts ...Option) (*Graph, DecodeReport) {
	entries := make([]entry, len(doc.Objects))
	for i, rec := range doc.Objects {
		entries[i] = entry{index: i, record: rec}
	}
	var report DecodeReport
	return buildGraph(entries, &report, opts), report
}

// DecodeJSON decodes a JSON configuration document into a Graph.
// An absent, null or empty objects array yields an empty graph. Input that is not a JSON object, or whose
// objects member is not an array, fails with a *DocumentError. Individual entries that cannot be decoded are
// skipped and reported.
func DecodeJSON(data []byte, opts ...Option) (*Graph, DecodeReport, error) {
	var report DecodeReport

	var raw struct {
		Objects json.RawMessage `json:"objects"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, report, &DocumentError{Err: err}
	}

	var elems []json.RawMessage
	if len(raw.Objects) > 0 && !bytes.Equal(raw.Objects, []byte("null")) {
		if err := json.Unmarshal(raw.Objects, &elems); err != nil {
			return nil, report, &DocumentError{Problems: []string{"objects is not an array"}, Err: err}
		}
	}

	entries := make([]entry, 0, len(elems))
	for i, elem := range elems {
		var rec ObjectRecord
		if err := json.Unmarshal(elem, &rec); err != nil {
			report.skip(i, "", fmt.Sprintf("undecodable entry: %v", err))
			continue
		}
		entries = append(entries, entry{index: i, record: rec})
	}

	g := buildGraph(entries, &report, opts)
	slices.SortStableFunc(report.Skipped, func(a, b SkippedEntry) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return g, report, nil
}

// EncodeJSON serializes g and encodes it as JSON.
// encoding/json cannot represent NaN or Inf, so graphs holding them fail here even though the graph itself accepts them.
func EncodeJSON(g *Graph) ([]byte, error) {
	return json.Marshal(Serialize(g))
}

// Validate checks that every entry has an id and a type and that ids are unique.
func (d Document) Validate() error {
	var problems []string
	seen := make(map[string]int, len(d.Objects))
	for i, rec := range d.Objects {
		if rec.ID == "" {
			problems = append(problems, fmt.Sprintf("objects[%d]: missing id", i))
		} else if first, dup := seen[rec.ID]; dup {
			problems = append(problems, fmt.Sprintf("objects[%d]: id %q already used by objects[%d]", i, rec.ID, first))
		} else {
			seen[rec.ID] = i
		}
		if rec.Kind == "" {
			problems = append(problems, fmt.Sprintf("objects[%d]: missing type", i))
		}
	}
	if len(problems) > 0 {
		return &DocumentError{Problems: problems}
	}
	return nil
}

type entry struct {
	index  int
	record ObjectRecord
}

func buildGraph(entries []entry, report *DecodeReport, opts []Option) *Graph {
	g := NewGraph(opts...)
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		rec := e.record
		switch {
		case rec.ID == "":
			report.skip(e.index, "", "missing id")
			continue
		case rec.Kind == "":
			report.skip(e.index, rec.ID, "missing type")
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			report.skip(e.index, rec.ID, "duplicate id")
			continue
		}
		seen[rec.ID] = struct{}{}

		name := defaultDisplayName(e.index + 1)
		if rec.DisplayName != nil {
			name = *rec.DisplayName
		}
		if rec.Kind.RequiresContent() && rec.ContentRef == "" {
			report.note(e.index, rec.ID, fmt.Sprintf("%s without url", rec.Kind))
		}
		t := NewTransform()
		if rec.Position != nil {
			t.Position = *rec.Position
		}
		if rec.Rotation != nil {
			t.Rotation = *rec.Rotation
		}
		if rec.Scale != nil {
			t.Scale = *rec.Scale
		}

		g.objects = append(g.objects, SceneObject{
			ID:          rec.ID,
			Kind:        rec.Kind,
			ContentRef:  rec.ContentRef,
			DisplayName: name,
			Transform:   t,
		})
	}

	g.created = len(g.objects)
	return g
}
