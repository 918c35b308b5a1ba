package domain

import "strings"

// Storage keys under which the token pair is persisted.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Credential is the access/refresh token pair issued by the login endpoint.
// Both tokens are present or the credential does not exist.
type Credential struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// NewCredential builds a Credential, rejecting a pair where only one token is set.
// Two empty tokens are also rejected: an absent credential is represented by
// the caller, not by a zero value.
func NewCredential(access, refresh string) (Credential, error) {
	access = strings.TrimSpace(access)
	refresh = strings.TrimSpace(refresh)
	if access == "" || refresh == "" {
		return Credential{}, ErrPartialCredential
	}
	return Credential{Access: access, Refresh: refresh}, nil
}

// Valid reports whether both tokens are present.
func (c Credential) Valid() bool {
	return c.Access != "" && c.Refresh != ""
}
