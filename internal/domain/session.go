package domain

import "time"

// SessionState classifies who is using the storefront.
type SessionState int

// Session states. Pending lasts until the identity provider answers once.
const (
	SessionPending SessionState = iota
	SessionGuest
	SessionMember
)

func (s SessionState) String() string {
	switch s {
	case SessionGuest:
		return "guest"
	case SessionMember:
		return "member"
	default:
		return "pending"
	}
}

// Identity is a signed-in member as reported by the identity provider.
type Identity struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email,omitempty"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	DisplayName  string    `json:"displayName,omitempty"`
	IDToken      string    `json:"idToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the ID token has expired at now.
func (i *Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// RefreshSkew is how long before ExpiresAt a token stops being handed out,
// so a request never starts with a token about to lapse.
const RefreshSkew = 30 * time.Second

// NeedsRefresh reports whether the token expires within RefreshSkew of now.
func (i *Identity) NeedsRefresh(now time.Time) bool {
	return i.Expired(now.Add(RefreshSkew))
}

// Label is a human readable name for the member.
func (i *Identity) Label() string {
	switch {
	case i.DisplayName != "":
		return i.DisplayName
	case i.Email != "":
		return i.Email
	case i.PhoneNumber != "":
		return i.PhoneNumber
	default:
		return i.UID
	}
}

// Session is the classifier's current view.
type Session struct {
	State    SessionState
	Identity *Identity
}

// IsMember reports whether the session belongs to a signed-in member.
func (s Session) IsMember() bool {
	return s.State == SessionMember && s.Identity != nil
}

// Admin is a back-office account.
type Admin struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AdminTokenKey is the client-local storage key of the admin JWT.
const AdminTokenKey = "adminToken"

// SessionKey is the client-local storage key of the member credentials.
const SessionKey = "session"

// AddressKey returns the client-local storage key of a member's saved address.
func AddressKey(uid string) string {
	return "address_" + uid
}
