package refreshtoken

import (
	"time"
)

// RefreshToken is one entry in a user's refresh-token lineage. Only the
// SHA-256 hash of the opaque secret is ever stored.
type RefreshToken struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	TokenHash  string    `json:"-" gorm:"uniqueIndex;size:255;not null"`
	Used       bool      `json:"used" gorm:"not null;default:false"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at"`
	IPAddress  string    `json:"ip_address" gorm:"size:45"`
	UserAgent  string    `json:"user_agent" gorm:"size:500"`
	DeviceInfo string    `json:"device_info" gorm:"size:255"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// State is the lifecycle position of a stored record. Revoked records do
// not appear here: revocation deletes the row, so a loaded record is never
// in a revoked state.
type State string

const (
	StateIssued  State = "issued"
	StateRotated State = "rotated"
	StateExpired State = "expired"
)

func (t *RefreshToken) State() State {
	if t.Used {
		return StateRotated
	}
	if time.Now().After(t.ExpiresAt) {
		return StateExpired
	}
	return StateIssued
}

type TokenSessionInfo struct {
	IPAddress string
	UserAgent string
}

type RefreshTokenData struct {
	Token     string
	TokenID   uint
	Hash      string
	ExpiresAt time.Time
}

type TokenRotationResult struct {
	UserID         uint
	AccessToken    string
	RefreshToken   string
	RefreshTokenID uint
	OldTokenID     uint
	ExpiresAt      time.Time
}
