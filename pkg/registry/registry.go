// Copyright 2025 StakeShield
//
// Package registry builds the immutable yield-id to validator map (spec
// §4's C4): hard-coded chain validators plus one ERC-4626 validator per
// allowed-protocol vault loaded from the embedded vault registry.

package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/stakeshield/txvalidator/pkg/config"
	"github.com/stakeshield/txvalidator/pkg/validator"
)

// Registry is the process-wide immutable yield_id -> validator map.
// Construction happens once at startup (Build); after that it is never
// mutated, so reads need no locking — the mutex here only guards the one
// write that happens during Build itself, mirroring the concurrency
// shape of the teacher's strategy registry without pretending this data
// is ever mutated again afterward.
type Registry struct {
	mu         sync.RWMutex
	validators map[string]validator.Validator
}

// Stats summarizes the registry's contents for diagnostics and for the
// getSupportedYieldIds operation.
type Stats struct {
	ValidatorCount int
	YieldIDs       []string
}

// Build constructs the registry: the three hard-coded chain validators,
// then one ERC-4626 validator per vault entry whose protocol is in the
// allowed set (spec §5). vaultRegistryPath overrides the embedded
// default when non-empty and readable.
func Build(vaultRegistryPath string) (*Registry, error) {
	r := &Registry{validators: make(map[string]validator.Validator)}

	r.register(config.YieldIDLidoStaking, validator.NewLido())
	r.register(config.YieldIDSolanaStaking, validator.NewSolanaStaking())
	r.register(config.YieldIDTronStaking, validator.NewTronStaking())

	entries, err := loadVaultEntries(vaultRegistryPath)
	if err != nil {
		return nil, fmt.Errorf("loading vault registry: %w", err)
	}
	for _, e := range entries {
		if !config.AllowedVaultProtocols[e.Protocol] {
			continue
		}
		if err := r.register(e.YieldID, validator.NewERC4626(toVaultInfo(e))); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Registry) register(yieldID string, v validator.Validator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if yieldID == "" || len(yieldID) > config.MaxYieldIDChars {
		return fmt.Errorf("invalid yield id %q", yieldID)
	}
	if len(v.SupportedOps()) == 0 {
		return fmt.Errorf("validator for %q exposes no supported ops", yieldID)
	}
	if _, exists := r.validators[yieldID]; exists {
		return fmt.Errorf("duplicate yield id %q", yieldID)
	}
	r.validators[yieldID] = v
	return nil
}

// Lookup returns the validator registered for yieldID, if any.
func (r *Registry) Lookup(yieldID string) (validator.Validator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validators[yieldID]
	return v, ok
}

// Stats reports the current registry contents, mirroring the teacher's
// own Registry.GetStats() shape.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.validators))
	for id := range r.validators {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return Stats{ValidatorCount: len(r.validators), YieldIDs: ids}
}
