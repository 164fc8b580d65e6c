package model

import "time"

// Roles recognised by the API.  They are stored verbatim in users.role
// and carried in the "role" claim of access tokens.
const (
    RoleAdmin  = "ADMIN"
    RoleDriver = "DRIVER"
    RoleUser   = "USER"
)

// User represents an account stored in the `users` table.  Drivers are
// users with the DRIVER role; a vehicle and a scheduled ride reference
// them by id.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  Phone        – phone number used for booking notifications.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN, DRIVER or USER.
//  IsActive     – whether the account is active.
type User struct {
    ID           uint64    // users.id
    Name         string    // users.name
    Email        string    // users.email
    Phone        string    // users.phone
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the token value is stored.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}

// IsValidRole reports whether r is one of the known roles.
func IsValidRole(r string) bool {
    switch r {
    case RoleAdmin, RoleDriver, RoleUser:
        return true
    }
    return false
}
