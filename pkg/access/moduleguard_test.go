package access

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/vantagecrm/vantage-go/pkg/api"
	"github.com/vantagecrm/vantage-go/pkg/modules"
	"github.com/vantagecrm/vantage-go/pkg/storage"
	"github.com/vantagecrm/vantage-go/pkg/transport"
)

func seedModules(t *testing.T, enabled []api.ModuleInfo) *modules.Store {
	t.Helper()
	ctx := context.Background()
	adapter := storage.NewMemory()

	blob, err := json.Marshal(map[string]interface{}{"enabledModules": enabled})
	if err != nil {
		t.Fatalf("failed to encode seed modules: %v", err)
	}
	if err := adapter.Set(ctx, storage.KeyModuleStorage, string(blob)); err != nil {
		t.Fatalf("failed to seed storage: %v", err)
	}

	client, err := transport.New(transport.Config{Storage: adapter})
	if err != nil {
		t.Fatalf("failed to create transport: %v", err)
	}
	store := modules.NewStore(client, adapter, nil)
	if err := store.Restore(ctx); err != nil {
		t.Fatalf("failed to restore seed modules: %v", err)
	}
	return store
}

func TestModuleGuardDeniesUnlicensed(t *testing.T) {
	sessions := seedSession(t, salesUser([]string{"hr:manage"}, nil), true)
	moduleStore := seedModules(t, []api.ModuleInfo{
		{Code: "CRM", IsEnabled: true},
	})
	guard := NewModuleGuard(sessions, moduleStore, nil)

	d := guard.Evaluate("HRMS", Requirement{Permissions: []string{"hr:manage"}})
	if d.State != DeniedModule {
		t.Fatalf("expected licensing denial, got %+v", d)
	}
	if len(d.Missing) != 1 || d.Missing[0] != "HRMS" {
		t.Errorf("denial must cite the module code, got %v", d.Missing)
	}
}

// Licensing is reported before permissions: a user who lacks both sees only
// the licensing denial, never the permission names.
func TestModuleGuardLicensingBeforePermission(t *testing.T) {
	sessions := seedSession(t, salesUser(nil, nil), true)
	moduleStore := seedModules(t, nil)
	guard := NewModuleGuard(sessions, moduleStore, nil)

	d := guard.Evaluate("HRMS", Requirement{Permissions: []string{"hr:manage"}})
	if d.State != DeniedModule {
		t.Fatalf("licensing must be checked first, got %+v", d)
	}
	for _, m := range d.Missing {
		if m == "hr:manage" {
			t.Error("licensing denial must not leak required permissions")
		}
	}
}

func TestModuleGuardPermissionRedirect(t *testing.T) {
	sessions := seedSession(t, salesUser([]string{"leads:read"}, nil), true)
	moduleStore := seedModules(t, []api.ModuleInfo{
		{Code: "HRMS", IsEnabled: true},
	})
	guard := NewModuleGuard(sessions, moduleStore, nil)

	d := guard.Evaluate("HRMS", Requirement{Permissions: []string{"hr:manage"}})
	if d.State != DeniedPermission {
		t.Fatalf("expected permission denial, got %+v", d)
	}
	if d.Redirect != AccessDeniedRoute {
		t.Errorf("module permission failures redirect to the access-denied route, got %+v", d)
	}
}

func TestModuleGuardGrants(t *testing.T) {
	sessions := seedSession(t, salesUser([]string{"hr:manage"}, nil), true)
	moduleStore := seedModules(t, []api.ModuleInfo{
		{Code: "HRMS", IsEnabled: true},
	})
	guard := NewModuleGuard(sessions, moduleStore, nil)

	if d := guard.Evaluate("HRMS", Requirement{Permissions: []string{"hr:manage"}}); d.State != Granted {
		t.Errorf("expected access granted, got %+v", d)
	}
}

func TestModuleGuardRequiresLogin(t *testing.T) {
	sessions := seedSession(t, nil, false)
	moduleStore := seedModules(t, []api.ModuleInfo{
		{Code: "HRMS", IsEnabled: true},
	})
	guard := NewModuleGuard(sessions, moduleStore, nil)

	if d := guard.Evaluate("HRMS", Requirement{}); d.State != RedirectLogin {
		t.Errorf("expected login redirect, got %+v", d)
	}
}
