package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/vantagecrm/vantage-go/pkg/access"
	"github.com/vantagecrm/vantage-go/pkg/config"
	"github.com/vantagecrm/vantage-go/pkg/modules"
	"github.com/vantagecrm/vantage-go/pkg/observability"
	"github.com/vantagecrm/vantage-go/pkg/services"
	"github.com/vantagecrm/vantage-go/pkg/session"
	"github.com/vantagecrm/vantage-go/pkg/transport"
)

// app is the wired client stack every command runs against.
type app struct {
	cfg      *config.Config
	sessions *session.Store
	modules  *modules.Store
	guard    *access.Guard
	registry *services.Registry
}

// buildApp loads configuration, wires the stores and restores any persisted
// session.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	adapter, err := cfg.OpenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open state storage: %w", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stderr)

	client, err := transport.New(transport.Config{
		BaseURL: cfg.Gateway.BaseURL,
		Timeout: cfg.Gateway.Timeout,
		Storage: adapter,
		Logger:  logger,
		OnSessionExpired: func() {
			fmt.Fprintln(os.Stderr, "Session expired. Run 'vantage login' to sign in again.")
		},
		EnableTracing: cfg.Observability.TracingEnabled,
	})
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(client, adapter, logger)
	moduleStore := modules.NewStore(client, adapter, logger)
	sessions.OnLogin(moduleStore.FetchEnabled)
	sessions.OnLogout(moduleStore.Clear)

	if err := sessions.Restore(ctx); err != nil {
		return nil, err
	}
	if err := moduleStore.Restore(ctx); err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		sessions: sessions,
		modules:  moduleStore,
		guard:    access.NewGuard(sessions, logger),
		registry: services.NewRegistry(client, services.Options{CacheTTL: services.DefaultCacheTTL}),
	}, nil
}

// requireAccess evaluates the requirement and translates a denial into a
// command error, mirroring what the web client renders for each state.
func (a *app) requireAccess(req access.Requirement) error {
	switch d := a.guard.Evaluate(req); d.State {
	case access.Granted:
		return nil
	case access.RedirectLogin:
		return fmt.Errorf("not logged in. Run 'vantage login' first")
	case access.Loading:
		return fmt.Errorf("session profile is incomplete. Run 'vantage login' again")
	case access.DeniedPermission:
		return fmt.Errorf("access denied: missing permission %v", d.Missing)
	case access.DeniedRole:
		return fmt.Errorf("access denied: requires one of roles %v", d.Missing)
	default:
		return fmt.Errorf("access denied")
	}
}

// requireModule gates a command on tenant licensing before permissions.
func (a *app) requireModule(code string, req access.Requirement) error {
	guard := access.NewModuleGuard(a.sessions, a.modules, nil)
	switch d := guard.Evaluate(code, req); d.State {
	case access.Granted:
		return nil
	case access.RedirectLogin:
		return fmt.Errorf("not logged in. Run 'vantage login' first")
	case access.DeniedModule:
		return fmt.Errorf("the %s module is not licensed for your tenant", code)
	case access.DeniedPermission, access.DeniedRole:
		return fmt.Errorf("access denied: missing %v", d.Missing)
	default:
		return fmt.Errorf("access denied")
	}
}
