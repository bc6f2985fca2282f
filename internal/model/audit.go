package model

import "time"

// Audit bundles the bookkeeping columns shared by every table in the
// schema.  It is embedded by value in each entity instead of building
// a type hierarchy; repositories apply the soft-delete predicate
// uniformly and free functions below operate on any entity exposing
// the struct.
//
// Fields:
//  CreatedAt – timestamp when the row was inserted.
//  UpdatedAt – timestamp of the last modification.
//  DeletedAt – soft-delete marker; nil while the row is active.
type Audit struct {
	CreatedAt time.Time  // <table>.created_at
	UpdatedAt time.Time  // <table>.updated_at
	DeletedAt *time.Time // <table>.deleted_at (nullable)
}

// IsDeleted reports whether the entity carries a soft-delete marker.
// Deleted rows stay in storage for audit purposes but are excluded
// from default repository queries.
func (a Audit) IsDeleted() bool {
	return a.DeletedAt != nil
}

// MarkDeleted stamps the soft-delete marker with the given time.  It
// is a no-op when the entity is already deleted so that the original
// deletion time is preserved.
func (a *Audit) MarkDeleted(at time.Time) {
	if a.DeletedAt == nil {
		t := at.UTC()
		a.DeletedAt = &t
	}
}
