package vault

import (
	"github.com/aretw0/introspection"
)

// VaultState exposes internal state for observability.
type VaultState struct {
	Root          string `json:"root"`
	WatcherActive bool   `json:"watcher_active"`
}

// State implements introspection.Introspectable.
func (v *Vault) State() any {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return VaultState{
		Root:          v.Root,
		WatcherActive: v.watcherActive,
	}
}

// ComponentType implements introspection.Component.
func (v *Vault) ComponentType() string {
	return "vault"
}

var _ introspection.Introspectable = (*Vault)(nil)
var _ introspection.Component = (*Vault)(nil)
