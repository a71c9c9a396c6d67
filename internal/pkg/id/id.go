// Package id centralizes opaque identifier generation so every subsystem
// that needs one (connection ids, room ids, chat message ids, game record
// ids) draws from the same uuid source instead of rolling its own. Room
// join codes are deliberately not generated here: roommgr.Manager draws
// those from an injected rng.Source so they stay reproducible in tests.
package id

import "github.com/google/uuid"

// New returns a random opaque identifier suitable for a connection id, room
// id, or chat message id.
func New() string {
	return uuid.NewString()
}
