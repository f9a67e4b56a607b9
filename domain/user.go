package domain

import (
	"regexp"
	"strings"
	"time"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

var usernameRegexp = regexp.MustCompile(`^[\w.@+-]+$`)

func (u User) String() string {
	return u.Username
}

// ValidateCredentials checks a signup form before anything is hashed or stored.
func ValidateCredentials(username, password string) error {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return NewValidationError("username", "username is required")
	case len(username) > 150:
		return NewValidationError("username", "username must be at most 150 characters")
	case !usernameRegexp.MatchString(username):
		return NewValidationError("username", "username may contain only letters, digits and @/./+/-/_")
	case len(password) < 6:
		return NewValidationError("password", "password must be at least 6 characters")
	}
	return nil
}
