// Package domain defines the persistence models for the marketplace: user
// accounts, the brand/model/listing catalog, and the interaction records
// (favorites, chats, messages, reviews, notifications). These types are
// mapped with GORM and form the core data layer of the application.
package domain

import "time"

// Roles assignable to a user account. Admins may mutate catalog reference
// data (brands, models, features); everyone else is a regular user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a marketplace account. A user can act as a seller and as a
// buyer at the same time; ownership of listings, favorites, chats, reviews
// and notifications all hang off this record.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username: unique public handle.
//   - Email: unique contact address.
//   - Phone: optional, unique when present.
//   - PasswordHash: bcrypt digest; never serialized.
//   - Role: "user" or "admin" (enforced by DB constraint).
//   - LastSeen: presence timestamp, refreshed on authenticated requests.
type User struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username"   gorm:"type:varchar(150);not null;uniqueIndex:ux_users_username"`
	Email        string    `json:"email"      gorm:"type:varchar(254);not null;uniqueIndex:ux_users_email"`
	Phone        *string   `json:"phone,omitempty" gorm:"type:varchar(15);uniqueIndex:ux_users_phone"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(100);not null"`
	Role         string    `json:"role"       gorm:"type:varchar(16);not null;default:'user';check:role IN ('user','admin')"`
	LastSeen     time.Time `json:"last_seen"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }
