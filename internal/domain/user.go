package domain

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is the identity the backend issued for a session.
type User struct {
	ID        int64     `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"userName"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	Token     string    `db:"-" json:"token"`
	ExpiresAt time.Time `db:"expires_at" json:"-"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

func (u *User) Expired(now time.Time) bool {
	return u == nil || (!u.ExpiresAt.IsZero() && !now.Before(u.ExpiresAt))
}
