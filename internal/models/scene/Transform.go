// This file contains the Transform value and its patch type.
// A Transform is always handled by value: updates build a new Transform and replace whole vectors,
// so two transforms can be compared with == to detect a change.

package scene

import (
	"encoding/json"
	"fmt"
)

// Vec3 is a 3-component vector. On the wire it is a JSON/BSON array of three numbers.
type Vec3 [3]float64

// UnmarshalJSON requires exactly three numbers. encoding/json would otherwise zero-fill a short array
// and drop the tail of a long one.
func (v *Vec3) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var parts []float64
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != len(v) {
		return fmt.Errorf("vector needs %d components, got %d", len(v), len(parts))
	}
	copy(v[:], parts)
	return nil
}

// Transform describes the placement of a SceneObject.
type Transform struct {
	Position Vec3 `bson:"position" json:"position"`
	Rotation Vec3 `bson:"rotation" json:"rotation"`
	Scale    Vec3 `bson:"scale" json:"scale"`
}

var (
	DefaultPosition = Vec3{0, 0, 0}
	DefaultRotation = Vec3{0, 0, 0}
	DefaultScale    = Vec3{1, 1, 1}
)

// TransformPatch selects the components to replace in a Transform. Nil components are left untouched.
type TransformPatch struct {
	Position *Vec3 `json:"position,omitempty"`
	Rotation *Vec3 `json:"rotation,omitempty"`
	Scale    *Vec3 `json:"scale,omitempty"`
}

// NewTransform returns the default transform: origin, no rotation, unit scale.
func NewTransform() Transform {
	return Transform{
		Position: DefaultPosition,
		Rotation: DefaultRotation,
		Scale:    DefaultScale,
	}
}

// WithUpdate returns a copy of t with the components present in patch replaced.
// Values are not range checked; NaN and Inf are passed through.
func (t Transform) WithUpdate(patch TransformPatch) Transform {
	if patch.Position != nil {
		t.Position = *patch.Position
	}
	if patch.Rotation != nil {
		t.Rotation = *patch.Rotation
	}
	if patch.Scale != nil {
		t.Scale = *patch.Scale
	}
	return t
}

// IsEmpty reports whether the patch replaces nothing.
func (p TransformPatch) IsEmpty() bool {
	return p.Position == nil && p.Rotation == nil && p.Scale == nil
}
