package gatewaytest

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage-go/pkg/api"
)

func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed login body")
		return
	}

	g.mu.Lock()
	acct, ok := g.accounts[req.Email]
	if !ok || acct.password != req.Password {
		g.mu.Unlock()
		g.writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}
	resp := g.issueLocked(acct)
	g.mu.Unlock()

	g.writeData(w, resp)
}

func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !g.opts.RegistrationEnabled {
		g.writeError(w, http.StatusForbidden, "REGISTRATION_DISABLED", "self-service registration is disabled")
		return
	}

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed register body")
		return
	}
	if req.Email == "" || req.Password == "" || req.TenantSubdomain == "" {
		g.writeError(w, http.StatusBadRequest, "VALIDATION", "email, password and tenant subdomain are required")
		return
	}

	g.mu.Lock()
	if _, exists := g.accounts[req.Email]; exists {
		g.mu.Unlock()
		g.writeError(w, http.StatusConflict, "EMAIL_TAKEN", "an account with this email already exists")
		return
	}
	acct := &account{
		password: req.Password,
		user: api.AuthResponse{
			TokenType:   "Bearer",
			UserID:      uuid.New().String(),
			Email:       req.Email,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			TenantID:    uuid.New().String(),
			TenantName:  req.TenantName,
			Roles:       []string{"ADMIN"},
			Permissions: []string{"leads:read", "leads:write", "hr:manage", "billing:read"},
		},
	}
	g.accounts[req.Email] = acct
	resp := g.issueLocked(acct)
	g.mu.Unlock()

	g.writeData(w, resp)
}

func (g *Gateway) handleRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	g.writeData(w, g.opts.RegistrationEnabled)
}

func (g *Gateway) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed refresh body")
		return
	}

	g.mu.Lock()
	var holder *account
	for _, acct := range g.accounts {
		if acct.refreshTok != "" && acct.refreshTok == req.RefreshToken {
			holder = acct
			break
		}
	}
	if holder == nil {
		g.mu.Unlock()
		g.writeError(w, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "refresh token is invalid or revoked")
		return
	}
	accessToken := uuid.New().String()
	g.access.Add(accessToken, holder.user.Email)
	g.mu.Unlock()

	g.writeData(w, api.RefreshResponse{AccessToken: accessToken})
}

// issueLocked mints a fresh token pair for the account. Callers hold g.mu.
func (g *Gateway) issueLocked(acct *account) api.AuthResponse {
	resp := acct.user
	resp.AccessToken = uuid.New().String()
	resp.RefreshToken = uuid.New().String()
	acct.refreshTok = resp.RefreshToken
	g.access.Add(resp.AccessToken, acct.user.Email)
	return resp
}
