package api

// LoginRequest is the credential payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for POST /api/auth/register. The tenant
// subdomain is derived client-side from the company name before submission.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	TenantName      string `json:"tenantName"`
	TenantSubdomain string `json:"tenantSubdomain"`
}

// AuthResponse is the data payload returned by both login and register.
// Tokens and the user profile arrive in a single response.
type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	TokenType    string   `json:"tokenType"`
	UserID       string   `json:"userId"`
	Email        string   `json:"email"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	TenantID     string   `json:"tenantId"`
	TenantName   string   `json:"tenantName"`
	Roles        []string `json:"roles"`
	Permissions  []string `json:"permissions"`
}

// RefreshRequest is the payload for POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse is the data payload returned by the refresh endpoint.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// ModuleInfo describes a licensable feature module as returned by
// GET /api/modules/enabled.
type ModuleInfo struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Icon         string `json:"icon,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
	IsEnabled    bool   `json:"isEnabled"`
	IsCoreModule bool   `json:"isCoreModule"`
}
