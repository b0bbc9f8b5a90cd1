// Copyright 2025 StakeShield
//
// Solana Native Staking Validator

package validator

import (
	"strconv"

	"github.com/stakeshield/txvalidator/pkg/chain"
	"github.com/stakeshield/txvalidator/pkg/chain/solana"
)

const (
	discSetComputeUnitLimit  = "ComputeBudget.SetComputeUnitLimit"
	discSetComputeUnitPrice  = "ComputeBudget.SetComputeUnitPrice"
	discCreateAccountWithSeed = "System.CreateAccountWithSeed"
	discAllocateWithSeed     = "System.AllocateWithSeed"
	discTransfer             = "System.Transfer"
	discInitialize           = "Stake.Initialize"
	discDelegate             = "Stake.Delegate"
	discDeactivate           = "Stake.Deactivate"
	discWithdraw             = "Stake.Withdraw"
	discSplit                = "Stake.Split"
)

// SolanaStakingValidator implements the native Solana staking flow (spec
// §4.5): every op requires an exact positional instruction sequence, with
// no tolerance for extra or reordered instructions.
type SolanaStakingValidator struct{}

// NewSolanaStaking constructs the single Solana native-staking validator.
func NewSolanaStaking() *SolanaStakingValidator { return &SolanaStakingValidator{} }

func (v *SolanaStakingValidator) SupportedOps() []chain.Op {
	return []chain.Op{chain.OpStake, chain.OpUnstake, chain.OpWithdraw, chain.OpWithdrawAll, chain.OpSplit}
}

func (v *SolanaStakingValidator) Validate(txBlob string, op chain.Op, userAddress string, args Args, ctx Context) chain.Result {
	tx, err := solana.Decode(txBlob)
	if err != nil {
		return chain.Blocked("failed to decode transaction: "+err.Error(), nil)
	}

	switch op {
	case chain.OpStake:
		return v.validateStake(tx, userAddress, args)
	case chain.OpUnstake:
		return v.validateUnstake(tx, userAddress)
	case chain.OpWithdraw:
		return v.validateWithdraw(tx, userAddress)
	case chain.OpWithdrawAll:
		return v.validateWithdrawAll(tx, userAddress)
	case chain.OpSplit:
		return v.validateSplit(tx, userAddress)
	default:
		return chain.Blocked("unsupported operation", nil)
	}
}

func (v *SolanaStakingValidator) validateStake(tx *chain.SolanaTx, userAddress string, args Args) chain.Result {
	instrs := tx.Instructions
	if len(instrs) != 5 {
		return chain.Blocked("expected exactly 5 instructions", nil)
	}
	want := []string{discSetComputeUnitLimit, discSetComputeUnitPrice, discCreateAccountWithSeed, discInitialize, discDelegate}
	if reason, ok := matchSequence(instrs, want); !ok {
		return chain.Blocked(reason, nil)
	}

	createAccountWithSeed, initialize, delegate := instrs[2], instrs[3], instrs[4]

	if solana.Account(createAccountWithSeed, 0) != userAddress {
		return chain.Blocked("CreateAccountWithSeed source does not match user address", nil)
	}
	newStakeAccount := solana.Account(createAccountWithSeed, 1)
	if newStakeAccount == "" {
		return chain.Blocked("CreateAccountWithSeed is missing its created-account position", nil)
	}
	if solana.Account(initialize, 0) != newStakeAccount {
		return chain.Blocked("Initialize stake account does not match the created stake account", nil)
	}
	staker, withdrawer, ok := solana.AuthorizedPubkeys(initialize.Data)
	if !ok {
		return chain.Blocked("could not parse authorized staker/withdrawer from Initialize instruction data", nil)
	}
	if staker != userAddress || withdrawer != userAddress {
		return chain.Blocked("Initialize must authorize both staker and withdrawer to the user address", nil)
	}
	if solana.Account(delegate, 0) != newStakeAccount {
		return chain.Blocked("Delegate stake account does not match the created stake account", nil)
	}
	if solana.Account(delegate, 5) != userAddress {
		return chain.Blocked("Delegate authority does not match user address", nil)
	}
	if args.ValidatorAddress != "" && solana.Account(delegate, 1) != args.ValidatorAddress {
		return chain.Blocked("Delegate vote account does not match the requested validator address", nil)
	}
	return chain.Safe()
}

func (v *SolanaStakingValidator) validateUnstake(tx *chain.SolanaTx, userAddress string) chain.Result {
	instrs := tx.Instructions
	if len(instrs) < 3 || len(instrs) > 12 {
		return chain.Blocked("expected 3 to 12 instructions", nil)
	}
	if instrs[0].Discriminator != discSetComputeUnitLimit || instrs[1].Discriminator != discSetComputeUnitPrice {
		return chain.Blocked("first two instructions must be compute-budget limit and price", nil)
	}
	deactivates := instrs[2:]
	if len(deactivates) < 1 || len(deactivates) > 10 {
		return chain.Blocked("expected 1 to 10 Deactivate instructions", nil)
	}
	for _, instr := range deactivates {
		if instr.Discriminator != discDeactivate {
			return chain.Blocked("every instruction after the compute-budget pair must be Stake.Deactivate", nil)
		}
		if solana.Account(instr, 2) != userAddress {
			return chain.Blocked("Deactivate authority does not match user address", nil)
		}
	}
	return chain.Safe()
}

func (v *SolanaStakingValidator) validateWithdraw(tx *chain.SolanaTx, userAddress string) chain.Result {
	instrs := tx.Instructions
	if len(instrs) != 3 {
		return chain.Blocked("expected exactly 3 instructions", nil)
	}
	if reason, ok := matchSequence(instrs, []string{discSetComputeUnitLimit, discSetComputeUnitPrice, discWithdraw}); !ok {
		return chain.Blocked(reason, nil)
	}
	return withdrawInvariants(instrs[2], userAddress)
}

func (v *SolanaStakingValidator) validateWithdrawAll(tx *chain.SolanaTx, userAddress string) chain.Result {
	instrs := tx.Instructions
	if len(instrs) < 4 {
		return chain.Blocked("expected at least 4 instructions", nil)
	}
	if instrs[0].Discriminator != discSetComputeUnitLimit || instrs[1].Discriminator != discSetComputeUnitPrice {
		return chain.Blocked("first two instructions must be compute-budget limit and price", nil)
	}
	withdraws := instrs[2:]
	if len(withdraws) < 2 {
		return chain.Blocked("expected at least 2 Stake.Withdraw instructions", nil)
	}
	for _, instr := range withdraws {
		if instr.Discriminator != discWithdraw {
			return chain.Blocked("every instruction after the compute-budget pair must be Stake.Withdraw", nil)
		}
		if res := withdrawInvariants(instr, userAddress); !res.IsValid {
			return res
		}
	}
	return chain.Safe()
}

func withdrawInvariants(instr chain.SolanaInstruction, userAddress string) chain.Result {
	if solana.Account(instr, 1) != userAddress {
		return chain.Blocked("Withdraw recipient does not match user address", nil)
	}
	if solana.Account(instr, 4) != userAddress {
		return chain.Blocked("Withdraw authority does not match user address", nil)
	}
	return chain.Safe()
}

func (v *SolanaStakingValidator) validateSplit(tx *chain.SolanaTx, userAddress string) chain.Result {
	instrs := tx.Instructions
	if len(instrs) != 6 {
		return chain.Blocked("expected exactly 6 instructions", nil)
	}
	want := []string{discSetComputeUnitLimit, discSetComputeUnitPrice, discAllocateWithSeed, discTransfer, discSplit, discDeactivate}
	if reason, ok := matchSequence(instrs, want); !ok {
		return chain.Blocked(reason, nil)
	}

	allocate, transfer, split, deactivate := instrs[2], instrs[3], instrs[4], instrs[5]

	if solana.Account(allocate, 1) != userAddress {
		return chain.Blocked("AllocateWithSeed source does not match user address", nil)
	}
	newStakeAccount := solana.Account(allocate, 0)
	if newStakeAccount == "" {
		return chain.Blocked("AllocateWithSeed is missing its target-account position", nil)
	}
	if solana.Account(transfer, 0) != userAddress {
		return chain.Blocked("Transfer source does not match user address", nil)
	}
	if solana.Account(transfer, 1) != newStakeAccount {
		return chain.Blocked("Transfer destination does not match the new stake account", nil)
	}
	if solana.Account(split, 1) != newStakeAccount {
		return chain.Blocked("Split's split-stake account does not match the new stake account", nil)
	}
	if solana.Account(split, 2) != userAddress {
		return chain.Blocked("Split authority does not match user address", nil)
	}
	if solana.Account(deactivate, 0) != newStakeAccount {
		return chain.Blocked("Deactivate stake account does not match the new stake account", nil)
	}
	if solana.Account(deactivate, 2) != userAddress {
		return chain.Blocked("Deactivate authority does not match user address", nil)
	}
	return chain.Safe()
}

// matchSequence reports whether instrs' discriminators equal want
// position-for-position.
func matchSequence(instrs []chain.SolanaInstruction, want []string) (string, bool) {
	for i, d := range want {
		if instrs[i].Discriminator != d {
			return "instruction " + strconv.Itoa(i) + " must be " + d + ", got " + instrs[i].Discriminator, false
		}
	}
	return "", true
}
