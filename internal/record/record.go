package record

import (
	"regexp"
	"time"
)

// Meta carries the persistence metadata shared by every stored entity.
// Concrete entities embed it and inherit the Entity interface.
type Meta struct {
	ID        string    `json:"id" firestore:"id"`
	OwnerID   string    `json:"ownerId" firestore:"ownerId"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Record returns the embedded metadata, satisfying Entity for embedders.
func (m *Meta) Record() *Meta {
	return m
}

// Entity is any value the persistence gateway can store.
type Entity interface {
	Record() *Meta
}

// Stamp prepares an entity for writing: assigns the owner, rewrites
// UpdatedAt, and sets CreatedAt exactly once.
func Stamp(e Entity, ownerID string, now time.Time) {
	m := e.Record()
	m.OwnerID = ownerID
	m.UpdatedAt = now
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
}

var collectionName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidCollection reports whether name is a well-formed collection name.
// A malformed name is a programming error, not a runtime condition.
func ValidCollection(name string) bool {
	return collectionName.MatchString(name)
}

// MoreRecent orders records by UpdatedAt descending, breaking ties by
// CreatedAt descending. Listing is always sorted on the client so the
// remote store never needs a composite index.
func MoreRecent(a, b Meta) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.CreatedAt.After(b.CreatedAt)
}
