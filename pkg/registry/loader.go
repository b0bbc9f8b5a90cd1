// Copyright 2025 StakeShield
//
// Vault Registry Document Loader

package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/stakeshield/txvalidator/pkg/validator"
)

//go:embed vaults.json
var embeddedVaultRegistry []byte

type vaultFile struct {
	Version     int          `json:"version"`
	GeneratedAt string       `json:"generatedAt"`
	Vaults      []vaultEntry `json:"vaults"`
}

type vaultEntry struct {
	Address           string   `json:"address"`
	ChainID           int64    `json:"chainId"`
	Protocol          string   `json:"protocol"`
	YieldID           string   `json:"yieldId"`
	InputTokenAddress string   `json:"inputTokenAddress"`
	VaultTokenAddress string   `json:"vaultTokenAddress"`
	Network           string   `json:"network"`
	IsWETHVault       bool     `json:"isWethVault"`
	CanEnter          bool     `json:"canEnter"`
	CanExit           bool     `json:"canExit"`
	AllocatorVaults   []string `json:"allocatorVaults"`
}

// loadVaultEntries reads the vault registry document from path, falling
// back to the compiled-in default when path is empty or unreadable. The
// loader normalizes addresses to lower-case and validates the
// sorted-by-yieldId invariant (spec §6).
func loadVaultEntries(path string) ([]vaultEntry, error) {
	raw := embeddedVaultRegistry
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			raw = data
		}
	}

	var doc vaultFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("malformed vault registry document: %w", err)
	}
	if doc.Version != 1 {
		return nil, fmt.Errorf("unsupported vault registry version %d", doc.Version)
	}

	last := ""
	for i := range doc.Vaults {
		v := &doc.Vaults[i]
		v.Address = strings.ToLower(v.Address)
		v.InputTokenAddress = strings.ToLower(v.InputTokenAddress)
		v.VaultTokenAddress = strings.ToLower(v.VaultTokenAddress)
		for j := range v.AllocatorVaults {
			v.AllocatorVaults[j] = strings.ToLower(v.AllocatorVaults[j])
		}
		if v.YieldID == "" {
			return nil, fmt.Errorf("vault entry at index %d is missing yieldId", i)
		}
		if v.YieldID < last {
			return nil, fmt.Errorf("vault registry is not sorted by yieldId ascending at index %d", i)
		}
		last = v.YieldID
	}
	return doc.Vaults, nil
}

func toVaultInfo(e vaultEntry) validator.VaultInfo {
	return validator.VaultInfo{
		Address:           e.Address,
		ChainID:           e.ChainID,
		Protocol:          e.Protocol,
		YieldID:           e.YieldID,
		InputTokenAddress: e.InputTokenAddress,
		VaultTokenAddress: e.VaultTokenAddress,
		Network:           e.Network,
		IsWETHVault:       e.IsWETHVault,
		CanEnter:          e.CanEnter,
		CanExit:           e.CanExit,
		AllocatorVaults:   e.AllocatorVaults,
	}
}
