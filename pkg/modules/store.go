package modules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vantagecrm/vantage-go/pkg/api"
	"github.com/vantagecrm/vantage-go/pkg/observability"
	"github.com/vantagecrm/vantage-go/pkg/storage"
	"github.com/vantagecrm/vantage-go/pkg/transport"
)

const enabledModulesPath = "/api/modules/enabled"

// Store holds the tenant's licensed module list. The list is replaced
// wholesale on every fetch; there is no per-module mutation, so a module
// revoked server-side disappears on the next refresh. A failed fetch clears
// the list entirely: with no trustworthy answer the store denies everything
// rather than serving a stale license.
type Store struct {
	mu      sync.RWMutex
	enabled []api.ModuleInfo

	client  *transport.Client
	storage storage.Adapter
	logger  *observability.Logger
}

// persistedState is the module-storage blob layout.
type persistedState struct {
	EnabledModules []api.ModuleInfo `json:"enabledModules"`
}

// NewStore creates a module store over the shared gateway client.
func NewStore(client *transport.Client, adapter storage.Adapter, logger *observability.Logger) *Store {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Store{
		client:  client,
		storage: adapter,
		logger:  logger,
	}
}

// FetchEnabled retrieves the tenant's enabled modules and replaces the held
// list. On any error the list is cleared before the error is returned.
func (s *Store) FetchEnabled(ctx context.Context) error {
	var list []api.ModuleInfo
	if err := s.client.Get(ctx, enabledModulesPath, &list); err != nil {
		s.logger.WithError(err).Warn("module fetch failed, clearing licensed set")
		if clearErr := s.Clear(ctx); clearErr != nil {
			s.logger.WithError(clearErr).Warn("failed to clear module state")
		}
		return err
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].DisplayOrder < list[j].DisplayOrder
	})

	s.mu.Lock()
	s.enabled = list
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.WithField("count", len(list)).Debug("module list refreshed")
	return nil
}

// HasModule reports whether a module with the given code is licensed and
// enabled. Codes match exactly, case-sensitively.
func (s *Store) HasModule(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.enabled {
		if m.Code == code && m.IsEnabled {
			return true
		}
	}
	return false
}

// Enabled returns a snapshot of the licensed modules in display order.
func (s *Store) Enabled() []api.ModuleInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.ModuleInfo, len(s.enabled))
	copy(out, s.enabled)
	return out
}

// Clear empties the module list in memory and storage. Wired as the session
// store's logout hook.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = nil
	if err := s.storage.Delete(ctx, storage.KeyModuleStorage); err != nil {
		return fmt.Errorf("modules: failed to clear persisted state: %w", err)
	}
	return nil
}

// Restore rehydrates the module list from persisted storage at startup. A
// missing blob leaves the list empty; it is not an error.
func (s *Store) Restore(ctx context.Context) error {
	blob, err := s.storage.Get(ctx, storage.KeyModuleStorage)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("modules: failed to read persisted state: %w", err)
	}

	var state persistedState
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return fmt.Errorf("modules: persisted state is corrupt: %w", err)
	}

	s.mu.Lock()
	s.enabled = state.EnabledModules
	s.mu.Unlock()
	return nil
}

// persistLocked writes the module-storage blob. Callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	blob, err := json.Marshal(persistedState{EnabledModules: s.enabled})
	if err != nil {
		return fmt.Errorf("modules: failed to encode state: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyModuleStorage, string(blob)); err != nil {
		return fmt.Errorf("modules: failed to persist state: %w", err)
	}
	return nil
}
