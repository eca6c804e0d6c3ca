// Package scene contains the scene-object editing model of the AR studio.
// The Graph struct holds the objects of an experience in creation order, plus the editor's selection and edit mode.
// The Transform, SceneObject and Kind types describe a single placed object.
// The Document struct is the configuration persisted with an experience and replayed by the viewer; Serialize and
// Deserialize convert between the two, and DecodeJSON reads documents coming off the wire.
// Nothing in this package blocks or touches the network; persistence is the caller's business.
package scene
