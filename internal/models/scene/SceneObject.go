// This file contains the SceneObject struct, the object kinds known to the editor, and the
// ObjectPatch used to edit an object in place.

package scene

import "fmt"

// Kind identifies what a SceneObject renders. The set below is what the editor knows how to place;
// any other value is kept verbatim so documents written by newer clients survive a round trip.
type Kind string

const (
	KindPrimitiveBox Kind = "primitive-box"
	KindModel        Kind = "model"
	KindImage        Kind = "image"
	KindVideo        Kind = "video"
)

var knownKinds = []Kind{KindPrimitiveBox, KindModel, KindImage, KindVideo}

// Known reports whether k is one of the kinds the editor can place.
func (k Kind) Known() bool {
	for _, known := range knownKinds {
		if k == known {
			return true
		}
	}
	return false
}

// RequiresContent reports whether objects of this kind render external content
// and so are expected to carry a ContentRef.
func (k Kind) RequiresContent() bool {
	switch k {
	case KindModel, KindImage, KindVideo:
		return true
	}
	return false
}

// SceneObject is one placeable entity of a Graph.
type SceneObject struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"type"`
	ContentRef  string    `json:"url,omitempty"`
	DisplayName string    `json:"name"`
	Transform   Transform `json:"transform"`
}

// ObjectPatch holds the editable fields of a SceneObject. Nil fields are left untouched.
// ID and Kind are not editable.
type ObjectPatch struct {
	Transform   *TransformPatch
	DisplayName *string
	ContentRef  *string
}

// apply returns a copy of o with the patch merged in.
func (p ObjectPatch) apply(o SceneObject) SceneObject {
	if p.Transform != nil {
		o.Transform = o.Transform.WithUpdate(*p.Transform)
	}
	if p.DisplayName != nil {
		o.DisplayName = *p.DisplayName
	}
	if p.ContentRef != nil {
		o.ContentRef = *p.ContentRef
	}
	return o
}

// defaultDisplayName is the label given to the n-th object (1-based) when none is supplied.
func defaultDisplayName(n int) string {
	return fmt.Sprintf("Object %d", n)
}
