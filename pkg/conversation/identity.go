package conversation

import "strings"

// Identity holds the backend-issued conversation id for one room.
//
// It starts absent (or seeded), becomes set when the backend first returns a
// non-empty id, and is overwritten only by a different non-empty id. It never
// reverts to absent. An Identity belongs to a single session and is not safe
// for concurrent use.
type Identity struct {
	id string
}

// NewIdentity creates an Identity, pre-seeded when seed is non-blank.
func NewIdentity(seed string) *Identity {
	return &Identity{id: strings.TrimSpace(seed)}
}

// Current returns the conversation id and whether one is set.
func (i *Identity) Current() (string, bool) {
	return i.id, i.id != ""
}

// Observe records a candidate id from a backend response.
// Blank candidates are ignored. It reports whether the stored id changed.
func (i *Identity) Observe(candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || candidate == i.id {
		return false
	}
	i.id = candidate
	return true
}
