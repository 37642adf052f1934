package model

import "time"

// Admin is an account allowed to manage content. Username doubles as the
// address verification codes are mailed to.
type Admin struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"column:username;type:varchar(120);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(256);not null" json:"-"`
	LastLogin    *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName overrides gorm to use the admin table.
func (Admin) TableName() string {
	return "admin"
}

// TwoFactor is a one-time code issued after a successful password check.
// A challenge is usable while it is neither verified, superseded nor expired.
type TwoFactor struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"column:user_id;not null;index:idx_two_factor_user" json:"user_id"`
	VerificationCode string     `gorm:"column:verification_code;type:varchar(10);not null" json:"-"`
	IsVerified       bool       `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	Superseded       bool       `gorm:"column:superseded;not null;default:false" json:"superseded"`
	ExpiresAt        time.Time  `gorm:"column:expires_at;index" json:"expires_at"`
	VerifiedAt       *time.Time `gorm:"column:verified_at" json:"verified_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// TableName overrides gorm to use the two_factor table.
func (TwoFactor) TableName() string {
	return "two_factor"
}

// Usable reports whether the challenge can still be redeemed at now.
func (t *TwoFactor) Usable(now time.Time) bool {
	return !t.IsVerified && !t.Superseded && now.Before(t.ExpiresAt)
}
