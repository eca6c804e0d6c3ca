// Package experience contains the implementation of interacting with the MongoDB experiences collection.
// The ExperienceManager struct is responsible for interacting with the collection; the Experience struct wraps
// the scene configuration document with its title, owner and publish state.
// Interaction is primarily by ID. BSON is used to interact with the database.
package experience
