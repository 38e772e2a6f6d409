package users

import (
	"fmt"
	"slices"
	"time"
	"unicode"

	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	Username     oauth2.Username `json:"username,omitempty"`    // Unique username
	Email        string          `json:"email,omitempty"`       // User's email address
	PasswordHash string          `json:"-"`                     // Hashed version of the user's password - never serialize
	DateJoined   time.Time       `json:"date_joined,omitempty"` // Date and time when the user registered
	LastLogin    time.Time       `json:"last_login,omitempty"`  // Last time the user logged in

	// Authorities are the authority codes granted to the user.
	Authorities []string `json:"authorities,omitempty"`

	Verified bool `json:"verified,omitempty"` // Verified, has the user verified who they are
	Blocked  bool `json:"blocked,omitempty"`  // Blocked, has the user been blocked from logging in
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

// Redacted returns a copy of the user without the password hash.
func (u *User) Redacted() *User {
	cp := *u
	cp.PasswordHash = ""
	cp.Authorities = slices.Clone(u.Authorities)
	return &cp
}
