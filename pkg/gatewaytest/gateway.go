package gatewaytest

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/vantagecrm/vantage-go/pkg/api"
)

// DefaultAccessTokenTTL is deliberately short so tests can wait out an
// expiry without faking clocks. Production gateways measure this in minutes.
const DefaultAccessTokenTTL = 5 * time.Minute

// Options configures the fake gateway.
type Options struct {
	// AccessTokenTTL bounds issued access tokens. Zero means
	// DefaultAccessTokenTTL.
	AccessTokenTTL time.Duration

	// RegistrationEnabled is reported by the registration-status endpoint
	// and gates the register handler.
	RegistrationEnabled bool

	// Modules is the enabled-module list served to every tenant.
	Modules []api.ModuleInfo

	Logger *logrus.Logger
}

// account is a seeded credential set.
type account struct {
	password   string
	user       api.AuthResponse
	refreshTok string
}

// Gateway is an in-process stand-in for the Vantage API gateway: the full
// auth surface plus enough of the domain endpoints to exercise the SDK end
// to end. Every response uses the production envelope. Not safe to seed
// while serving; seed first, then serve.
type Gateway struct {
	mu       sync.RWMutex
	accounts map[string]*account
	access   *lru.LRU[string, string]
	opts     Options

	leads         []api.Lead
	calls         []api.Call
	notifications []api.Notification

	router *mux.Router
	logger *logrus.Logger
}

// New creates a fake gateway with its routes registered.
func New(opts Options) *Gateway {
	if opts.AccessTokenTTL == 0 {
		opts.AccessTokenTTL = DefaultAccessTokenTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	g := &Gateway{
		accounts: make(map[string]*account),
		access:   lru.NewLRU[string, string](1024, nil, opts.AccessTokenTTL),
		opts:     opts,
		router:   mux.NewRouter(),
		logger:   logger,
	}
	g.routes()
	return g
}

// ServeHTTP implements http.Handler.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.router.ServeHTTP(w, r)
}

func (g *Gateway) routes() {
	g.router.Use(g.recoverMiddleware)

	g.router.HandleFunc("/api/auth/login", g.handleLogin).Methods(http.MethodPost)
	g.router.HandleFunc("/api/auth/register", g.handleRegister).Methods(http.MethodPost)
	g.router.HandleFunc("/api/auth/registration-status", g.handleRegistrationStatus).Methods(http.MethodGet)
	g.router.HandleFunc("/api/auth/refresh", g.handleRefresh).Methods(http.MethodPost)

	authed := g.router.PathPrefix("/api").Subrouter()
	authed.Use(g.authMiddleware)
	authed.HandleFunc("/modules/enabled", g.handleEnabledModules).Methods(http.MethodGet)
	authed.HandleFunc("/leads", g.handleListLeads).Methods(http.MethodGet)
	authed.HandleFunc("/leads", g.handleCreateLead).Methods(http.MethodPost)
	authed.HandleFunc("/leads/{id}", g.handleGetLead).Methods(http.MethodGet)
	authed.HandleFunc("/leads/{id}", g.handleUpdateLead).Methods(http.MethodPut)
	authed.HandleFunc("/leads/{id}", g.handleDeleteLead).Methods(http.MethodDelete)
	authed.HandleFunc("/calls", g.handleListCalls).Methods(http.MethodGet)
	authed.HandleFunc("/calls", g.handleLogCall).Methods(http.MethodPost)
	authed.HandleFunc("/hr/employees", g.handleEmployees).Methods(http.MethodGet)
	authed.HandleFunc("/hr/payroll-runs", g.handlePayrollRuns).Methods(http.MethodGet)
	authed.HandleFunc("/notifications", g.handleNotifications).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/{id}/read", g.handleMarkRead).Methods(http.MethodPut)
	authed.HandleFunc("/billing/invoices", g.handleInvoices).Methods(http.MethodGet)
	authed.HandleFunc("/reports/summary", g.handleReportSummary).Methods(http.MethodGet)
	authed.HandleFunc("/customers/profile", g.handleCustomerProfile).Methods(http.MethodGet)
}

// SeedUser registers a credential set without going through the register
// endpoint. Roles and permissions land verbatim in the issued profile.
func (g *Gateway) SeedUser(email, password string, roles, permissions []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accounts[email] = &account{
		password: password,
		user: api.AuthResponse{
			TokenType:   "Bearer",
			UserID:      uuid.New().String(),
			Email:       email,
			FirstName:   "Seed",
			LastName:    "User",
			TenantID:    "tenant-seed",
			TenantName:  "Seed Tenant",
			Roles:       roles,
			Permissions: permissions,
		},
	}
}

// SeedLeads preloads the lead list.
func (g *Gateway) SeedLeads(leads ...api.Lead) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.leads = append(g.leads, leads...)
}

// SeedNotifications preloads the notification list.
func (g *Gateway) SeedNotifications(notifications ...api.Notification) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notifications = append(g.notifications, notifications...)
}

// ExpireAccessTokens invalidates every issued access token, forcing the
// next authenticated request into the 401 recovery path. Refresh tokens
// stay valid.
func (g *Gateway) ExpireAccessTokens() {
	g.access.Purge()
}

// RevokeRefreshTokens invalidates every refresh token, so the next refresh
// exchange fails and the client's session expires for good.
func (g *Gateway) RevokeRefreshTokens() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, acct := range g.accounts {
		acct.refreshTok = ""
	}
}

// authMiddleware validates the bearer token and rejects with the production
// 401 envelope on failure.
func (g *Gateway) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			g.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}
		email, ok := g.access.Get(parts[1])
		if !ok {
			g.writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "access token expired")
			return
		}
		r.Header.Set("X-Authenticated-User", email)
		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware turns a handler panic into a 500 envelope instead of a
// dropped connection.
func (g *Gateway) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				g.logger.WithFields(logrus.Fields{
					"path":  r.URL.Path,
					"panic": rec,
				}).Error("handler panicked")
				g.writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) writeData(w http.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		g.writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(api.Envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (g *Gateway) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.Envelope{
		Success:   false,
		Error:     &api.Error{Code: code, Message: message},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
