package model

import "time"

// Event statuses.  Only published events are visible on the public
// browse endpoints; draft events are editable by the organizer and
// ended events stop selling.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusEnded     = "ended"
)

// Event represents a single occasion an organizer sells tickets for.
// An event owns one or more ticket types, each with its own capacity
// pool; the event itself carries no counters.
//
// Fields:
//  ID       – primary key identifier.
//  TenantID – organizer that owns the event.
//  Name     – event title shown to customers.
//  Venue    – free-form venue description.
//  StartsAt – scheduled start time in UTC.
//  Status   – draft, published or ended.
type Event struct {
	ID       uint64    // events.id
	TenantID uint64    // events.tenant_id
	Name     string    // events.name
	Venue    string    // events.venue
	StartsAt time.Time // events.starts_at
	Status   string    // events.status
	Audit
}
