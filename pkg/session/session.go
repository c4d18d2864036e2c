package session

import "strings"

// User is the authenticated user's profile as issued by the gateway at login.
// Roles and permissions are opaque strings matched exactly, case-sensitively.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	TenantID    string   `json:"tenantId"`
	TenantName  string   `json:"tenantName"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Session is the current authentication state. Authenticated may be true
// while User is still nil: a session restored from storage is valid before
// the profile has been decoded.
type Session struct {
	User          *User
	AccessToken   string
	RefreshToken  string
	Authenticated bool
}

// MaxSubdomainLength bounds a derived tenant subdomain.
const MaxSubdomainLength = 20

// DeriveSubdomain turns a human-entered company name into a tenant
// subdomain: lowercased, all non-alphanumeric runes stripped, truncated to
// MaxSubdomainLength.
func DeriveSubdomain(companyName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(companyName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == MaxSubdomainLength {
			break
		}
	}
	return b.String()
}
