// Package validator implements the per-yield validators (spec §4.3-§4.6):
// Lido stETH, the parametric ERC-4626 vault validator, Solana native
// staking, and Tron native staking. Each is a closed implementation of
// the Validator interface; the dispatch core (pkg/dispatch) is the only
// caller that tries every supported op against a transaction.
package validator

import "github.com/stakeshield/txvalidator/pkg/chain"

// Args mirrors the closed `args` record of the request envelope (spec
// §6). Only a subset is consulted by any one validator; fields unrelated
// to EVM/Solana/Tron staking are carried for envelope-schema completeness
// but read by no validator in this package (see DESIGN.md).
type Args struct {
	ValidatorAddress    string
	ValidatorAddresses  []string
	Amount              string
	TronResource        string
	ProviderID          string
	Duration            *float64
	InputToken          string
	SubnetID            *float64
	FeeConfigurationID  string
	CosmosPubKey        string
	TezosPubKey         string
	NominatorAddress    string
	NFTIds              []string
}

// FeeConfig is one entry of the closed `context.feeConfiguration` array.
type FeeConfig struct {
	DepositFeeBps        *int
	FeeRecipientAddress  string
	AllocatorVaultAddress string
}

// Context mirrors the closed `context` record of the request envelope.
type Context struct {
	FeeConfiguration []FeeConfig
}

// Validator is implemented by every per-yield validator. SupportedOps
// lists the closed set of op kinds this validator can ever match;
// Validate decides whether the given transaction matches exactly that op.
type Validator interface {
	SupportedOps() []chain.Op
	Validate(txBlob string, op chain.Op, userAddress string, args Args, ctx Context) chain.Result
}
