package domain

import (
	"strconv"
	"time"
)

// UserID is the server-assigned numeric identity of an account.
type UserID int64

func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Role is exactly one of RoleAdmin or RoleClient. The zero value is not a role.
type Role uint8

const (
	RoleClient Role = iota + 1
	RoleAdmin
)

// RoleFromStaff is the only conversion from the server's is_staff flag.
func RoleFromStaff(isStaff bool) Role {
	if isStaff {
		return RoleAdmin
	}
	return RoleClient
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleClient:
		return "client"
	default:
		return "unknown"
	}
}

// Profile mirrors the fields returned by the profile endpoint.
type Profile struct {
	ID        UserID `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	IsStaff   bool   `json:"is_staff"`
}

// Session is the identity resolved from a Credential. It is derived, never stored.
type Session struct {
	Identity UserID
	Role     Role
	Profile  Profile
	// ExpiresAt is the access token's exp claim when the token is a JWT; zero otherwise.
	ExpiresAt time.Time
}

// OutcomeKind labels a SessionOutcome for logs and metrics.
type OutcomeKind string

const (
	OutcomeResolvedAdmin    OutcomeKind = "resolved_admin"
	OutcomeResolvedClient   OutcomeKind = "resolved_client"
	OutcomeUnauthenticated  OutcomeKind = "unauthenticated"
	OutcomeResolutionFailed OutcomeKind = "resolution_failed"
)

// SessionOutcome is the result of resolving a credential. The only
// implementations are Resolved, Unauthenticated and ResolutionFailed.
type SessionOutcome interface {
	Kind() OutcomeKind
	sessionOutcome()
}

// Resolved carries the session built from a successful profile fetch.
type Resolved struct {
	Session Session
}

// Unauthenticated means no credential was present.
type Unauthenticated struct{}

// ResolutionFailed means a credential was present but the profile fetch failed.
type ResolutionFailed struct {
	Reason error
}

func (r Resolved) Kind() OutcomeKind {
	if r.Session.Role == RoleAdmin {
		return OutcomeResolvedAdmin
	}
	return OutcomeResolvedClient
}

func (Unauthenticated) Kind() OutcomeKind  { return OutcomeUnauthenticated }
func (ResolutionFailed) Kind() OutcomeKind { return OutcomeResolutionFailed }

func (Resolved) sessionOutcome()         {}
func (Unauthenticated) sessionOutcome()  {}
func (ResolutionFailed) sessionOutcome() {}
