package storage

import "github.com/google/uuid"

// NewResultKey returns a fresh storage key for one generated image. Keys are
// random, never derived from request content, so concurrent unrelated
// requests cannot collide or poison each other's cache entries.
func NewResultKey() string {
	return "results/" + uuid.NewString() + ".png"
}
