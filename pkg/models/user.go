package models

import "strings"

// DemoUser is a locally stored demo account. The password is kept in
// plaintext; demo accounts are not real credentials.
type DemoUser struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NormalizeEmail trims and lowercases an email so registry lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
