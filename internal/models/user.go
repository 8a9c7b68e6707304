package models

// User is an institutional account. PasswordHash never leaves the API.
type User struct {
	ID            int    `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	PasswordHash  string `json:"-"`
	IsActive      bool   `json:"is_active"`
	EmailVerified bool   `json:"email_verified"`
}
