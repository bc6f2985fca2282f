package model

// User represents an organizer staff account as stored in the `users`
// table.  Users authenticate with email and password and receive a
// JWT carrying their role and tenant scope.  Customers are not users;
// they are tracked separately in the customers table and never log in.
//
// Fields:
//  ID           – primary key identifier of the user.
//  TenantID     – tenant the user belongs to.
//  Email        – unique email address (normalized to lower case).
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (OWNER or STAFF).
//  IsActive     – whether the account is active.
type User struct {
	ID           uint64 // users.id
	TenantID     uint64 // users.tenant_id
	Email        string // users.email (unique)
	PasswordHash string // users.password_hash
	Role         string // users.role
	IsActive     bool   // users.is_active
	Audit
}
