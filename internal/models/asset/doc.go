// Package asset contains the implementation of interacting with the MongoDB assets collection.
// The AssetManager struct is CRUD for the collection; the Asset struct describes one uploaded file and its storage key.
package asset
