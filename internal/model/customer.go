package model

// Customer records a ticket buyer within a tenant.  Customers are
// created lazily during checkout and identified by email; they do not
// authenticate.  Orders denormalize the contact fields at purchase
// time so later edits to the customer do not rewrite order history.
//
// Fields:
//  ID       – primary key identifier.
//  TenantID – owning tenant.
//  Email    – contact email, unique per tenant.
//  Name     – full name as entered at checkout.
//  Phone    – optional phone number.
type Customer struct {
	ID       uint64 // customers.id
	TenantID uint64 // customers.tenant_id
	Email    string // customers.email
	Name     string // customers.name
	Phone    string // customers.phone
	Audit
}
