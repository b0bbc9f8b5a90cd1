// Package config holds the process-wide constants and small env-driven
// settings this validator needs. Protocol-level constants (§6: addresses,
// the WETH table, size caps) are compiled-in, not environment-overridable,
// because the spec treats any change to them as a behavior change.
package config

// Size caps enforced by the request envelope (spec §6, §8 property 4).
const (
	MaxRequestBytes       = 102400
	MaxUnsignedTxChars    = 102400
	MaxYieldIDChars       = 256
	MaxUserAddressChars   = 128
	MaxArgsStringChars    = 128
	MaxAmountChars        = 78
	MaxArrayItems         = 100
)

// WETHTable maps an EVM chain id to that chain's canonical WETH contract
// address, lower-cased, used by the ERC-4626 validator's WRAP/UNWRAP ops.
var WETHTable = map[int64]string{
	1:     "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
	10:    "0x4200000000000000000000000000000000000006",
	56:    "0x2170ed0880ac9a755fd29b2688956bd959f933f8",
	100:   "0x6a023ccd1ff6f2045c3309768ead9e68f978f6e1",
	130:   "0x4200000000000000000000000000000000000006",
	137:   "0x7ceb23fd6bc0add59e62ac25578270cff1b9f619",
	146:   "0x50c42deacd8fc9773493ed674b675be577f2634b",
	8453:  "0x4200000000000000000000000000000000000006",
	42161: "0x82af49447d8a07e3bd95bd0d56f35241523fbab1",
	43114: "0x49d5c2bdffac6ce2bfdb6640f4f80f226bc10bab",
}

// AllowedVaultProtocols is the closed set of ERC-4626 vault protocols the
// registry loader (C4) will instantiate a validator for; any vault entry
// naming a protocol outside this set is skipped (spec §5).
var AllowedVaultProtocols = map[string]bool{
	"angle":        true,
	"curve":        true,
	"euler":        true,
	"fluid":        true,
	"gearbox":      true,
	"idle-finance": true,
	"lista":        true,
	"morpho":       true,
	"sky":          true,
	"summer-fi":    true,
	"venus-flux":   true,
	"yearn":        true,
	"yo-protocol":  true,
}

// Hard-coded registry yield ids that are not vault-derived (spec §6).
const (
	YieldIDLidoStaking    = "ethereum-eth-lido-staking"
	YieldIDSolanaStaking  = "solana-sol-native-multivalidator-staking"
	YieldIDTronStaking    = "tron-trx-native-staking"
)
