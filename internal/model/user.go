package model

import "time"

// User is an account that can reserve seats.  Roles are CUSTOMER for
// regular passengers and ADMIN for operators allowed to rebuild the
// seat layout.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique, lower-cased login email.
//  PasswordHash – bcrypt hash of the password.
//  Role         – CUSTOMER or ADMIN.
//  IsActive     – whether the account is enabled.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
