package models

import "time"

// OtpType selects the email template and the (email, type) slot a code lives in.
type OtpType string

const (
	OtpVerification   OtpType = "VERIFICATION"
	OtpPasswordChange OtpType = "PASSWORD_CHANGE"
	OtpRecovery       OtpType = "RECOVERY"
)

// Valid reports whether t is one of the known OTP types.
func (t OtpType) Valid() bool {
	switch t {
	case OtpVerification, OtpPasswordChange, OtpRecovery:
		return true
	}
	return false
}

// Otp is one issued code. CodeHash holds a bcrypt hash, never the plain code.
// At most one row per (email, type) is unconsumed and unexpired at a time;
// issuing a new code marks the previous unconsumed rows verified.
type Otp struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CodeHash  string    `json:"-"`
	Type      OtpType   `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}
