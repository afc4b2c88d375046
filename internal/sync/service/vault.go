// Package service holds the background workers and the application-facing
// operations built on top of the store and the platform clients.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/magsync/internal/sync/store"
	"github.com/aussiebroadwan/magsync/pkg/cryptox"
)

// SettingsVault backs the OAuth token store with the settings table, sealing
// values before they hit disk. Reads tolerate unsealed legacy rows so an
// operator can bootstrap credentials with plain sqlite inserts.
type SettingsVault struct {
	settings store.Settings
	sealer   *cryptox.Sealer
}

func NewSettingsVault(settings store.Settings, sealer *cryptox.Sealer) *SettingsVault {
	return &SettingsVault{settings: settings, sealer: sealer}
}

// Get returns the unsealed value for a key. A missing key is the empty
// string, not an error; storage failures pass through so callers can tell
// the two apart.
func (v *SettingsVault) Get(ctx context.Context, key string) (string, error) {
	setting, err := v.settings.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	value, err := v.sealer.Open(setting.Value)
	if err != nil {
		return "", fmt.Errorf("unseal %s: %w", key, err)
	}
	return value, nil
}

// Update seals every non-nil value and applies the batch as one write.
func (v *SettingsVault) Update(ctx context.Context, values map[string]*string) error {
	sealed := make(map[string]*string, len(values))
	for key, value := range values {
		if value == nil {
			sealed[key] = nil
			continue
		}
		sv, err := v.sealer.Seal(*value)
		if err != nil {
			return fmt.Errorf("seal %s: %w", key, err)
		}
		sealed[key] = &sv
	}
	return v.settings.Update(ctx, sealed)
}
