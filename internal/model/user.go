package model

import "time"

// Roles stored in users.role.  A user's role is fixed when the account is
// created; no update path writes the column.
const (
    RoleUser         = "user"
    RoleTheaterOwner = "theater_owner"
    RoleAdmin        = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
    return r == RoleUser || r == RoleTheaterOwner || r == RoleAdmin
}

// User represents a row of the `users` table.  Customers, theater owners
// and administrators share the table and are told apart by Role.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique, lower-cased email address.
//  Phone        – optional contact number.
//  PasswordHash – bcrypt hashed password, never serialised.
//  Role         – user | theater_owner | admin.
//  ProfilePic   – optional avatar URL.
//  IsActive     – false once the account is deactivated.
//  IsVerified   – theater owners start unverified until an admin approves them.
type User struct {
    ID           uint64    `json:"id"`            // users.id
    Name         string    `json:"name"`          // users.name
    Email        string    `json:"email"`         // users.email
    Phone        string    `json:"phone"`         // users.phone
    PasswordHash string    `json:"-"`             // users.password_hash
    Role         string    `json:"role"`          // users.role
    ProfilePic   string    `json:"profilePic"`    // users.profile_pic
    IsActive     bool      `json:"isActive"`      // users.is_active
    IsVerified   bool      `json:"isVerified"`    // users.is_verified
    CreatedAt    time.Time `json:"createdAt"`     // users.created_at
    UpdatedAt    time.Time `json:"updatedAt"`     // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the token handed to the client is stored.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
