// Package editor contains the Session, the state machine that turns select, drag and mode-switch events into
// mutations of a scene.Graph, and the Store interface a session loads from and saves to.
// There is one Session per experience being authored; sessions are never shared between goroutines.
package editor
