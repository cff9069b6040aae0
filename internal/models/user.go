// Package models contains data structures for the application's domain models.
package models

import "regexp"

// Roles assigned to users. The privileged role is granted only to the
// well-known creator handle supplied by the identity provider.
const (
	RoleUser    = "User"
	RoleCreator = "Project Creator"
)

// usernameRe matches handles of the form "@name" with a 3-20 character body
// of letters, digits, and underscores.
var usernameRe = regexp.MustCompile(`^@[A-Za-z0-9_]{3,20}$`)

// User represents an entry in the user directory. The username is the stable
// identifier and the directory key; posts and messages embed it as a plain
// string snapshot rather than a live reference.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
	Bio         string `json:"bio,omitempty"`
	IsVerified  bool   `json:"isVerified"`
	Role        string `json:"role"`
}

// ValidUsername reports whether the handle matches the required format.
func ValidUsername(handle string) bool {
	return usernameRe.MatchString(handle)
}

// ProfilePatch carries the profile fields submitted from the settings form.
// All fields are applied on success, including empty avatar/bio (clearing).
type ProfilePatch struct {
	Avatar      string `json:"avatar"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	Bio         string `json:"bio"`
}
