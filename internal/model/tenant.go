package model

// Tenant represents an organizer account.  Every event, customer and
// user row is scoped to exactly one tenant; cross-tenant access is
// rejected at the handler layer using the tenant claim carried in the
// access token.
//
// Fields:
//  ID   – primary key identifier.
//  Name – display name of the organizer.
//  Slug – unique URL-safe identifier used in public routes.
type Tenant struct {
	ID   uint64 // tenants.id
	Name string // tenants.name
	Slug string // tenants.slug (unique)
	Audit
}
