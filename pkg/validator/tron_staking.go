// Copyright 2025 StakeShield
//
// Tron Native Staking Validator

package validator

import (
	"math"

	"github.com/stakeshield/txvalidator/pkg/chain"
	"github.com/stakeshield/txvalidator/pkg/chain/tron"
)

const (
	tronContractVoteWitness          = "VoteWitnessContract"
	tronContractFreezeBalanceV2      = "FreezeBalanceV2Contract"
	tronContractUnfreezeBalanceV2    = "UnfreezeBalanceV2Contract"
	tronContractUndelegateResource   = "UnDelegateResourceContract"
	tronContractUnfreezeBalanceLegacy = "UnfreezeBalanceContract"
	tronContractWithdrawExpireUnfreeze = "WithdrawExpireUnfreezeContract"
	tronContractWithdrawBalance      = "WithdrawBalanceContract"

	tronResourceBandwidth = "BANDWIDTH"
	tronResourceEnergy    = "ENERGY"
)

// TronStakingValidator implements Tron native resource staking (spec
// §4.6): voting, freeze/unfreeze of BANDWIDTH/ENERGY, undelegation, and
// reward/unfreeze withdrawal, all keyed off the first contract's type tag.
type TronStakingValidator struct{}

// NewTronStaking constructs the single Tron native-staking validator.
func NewTronStaking() *TronStakingValidator { return &TronStakingValidator{} }

func (v *TronStakingValidator) SupportedOps() []chain.Op {
	return []chain.Op{
		chain.OpVote,
		chain.OpFreezeBandwidth, chain.OpFreezeEnergy,
		chain.OpUnfreezeBandwidth, chain.OpUnfreezeEnergy,
		chain.OpUndelegateBandwidth, chain.OpUndelegateEnergy,
		chain.OpUnfreezeLegacyBandwidth, chain.OpUnfreezeLegacyEnergy,
		chain.OpWithdraw, chain.OpClaimRewards,
	}
}

func (v *TronStakingValidator) Validate(txBlob string, op chain.Op, userAddress string, args Args, ctx Context) chain.Result {
	tx, err := tron.Decode(txBlob)
	if err != nil {
		return chain.Blocked("failed to decode transaction: "+err.Error(), nil)
	}
	contract := tx.Contract

	switch op {
	case chain.OpVote:
		return v.validateVote(contract, userAddress, args)
	case chain.OpFreezeBandwidth:
		return v.validateFreeze(contract, userAddress, tronResourceBandwidth)
	case chain.OpFreezeEnergy:
		return v.validateFreeze(contract, userAddress, tronResourceEnergy)
	case chain.OpUnfreezeBandwidth:
		return v.validateUnfreeze(contract, userAddress, tronResourceBandwidth)
	case chain.OpUnfreezeEnergy:
		return v.validateUnfreeze(contract, userAddress, tronResourceEnergy)
	case chain.OpUndelegateBandwidth:
		return v.validateUndelegate(contract, userAddress, tronResourceBandwidth)
	case chain.OpUndelegateEnergy:
		return v.validateUndelegate(contract, userAddress, tronResourceEnergy)
	case chain.OpUnfreezeLegacyBandwidth:
		return v.validateUnfreezeLegacy(contract, userAddress, tronResourceBandwidth)
	case chain.OpUnfreezeLegacyEnergy:
		return v.validateUnfreezeLegacy(contract, userAddress, tronResourceEnergy)
	case chain.OpWithdraw:
		return v.validateWithdrawExpireUnfreeze(contract, userAddress)
	case chain.OpClaimRewards:
		return v.validateClaimRewards(contract, userAddress)
	default:
		return chain.Blocked("unsupported operation", nil)
	}
}

func ownerMatches(contract chain.TronContract, userAddress string) bool {
	owner, ok := tron.StringField(contract.Value, "owner_address")
	if !ok {
		return false
	}
	return tron.SameAddress(owner, userAddress)
}

// resourceMatches applies the "resource absent ⇒ BANDWIDTH" rule shared
// by freeze/unfreeze/undelegate/legacy-unfreeze ops.
func resourceMatches(contract chain.TronContract, expected string) bool {
	resource, present := tron.StringField(contract.Value, "resource")
	if !present {
		resource = tronResourceBandwidth
	}
	return resource == expected
}

func (v *TronStakingValidator) validateVote(contract chain.TronContract, userAddress string, args Args) chain.Result {
	if contract.Type != tronContractVoteWitness {
		return chain.Blocked("contract type is not VoteWitnessContract", nil)
	}
	if !ownerMatches(contract, userAddress) {
		return chain.Blocked("owner_address does not match user address", nil)
	}
	votes, ok := tron.ArrayField(contract.Value, "votes")
	if !ok || len(votes) < 1 || len(votes) > 30 {
		return chain.Blocked("votes must contain between 1 and 30 entries", nil)
	}

	var total float64
	addresses := make([]string, 0, len(votes))
	for _, raw := range votes {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			return chain.Blocked("vote entry is not an object", nil)
		}
		voteAddr, ok := tron.StringField(entry, "vote_address")
		if !ok {
			return chain.Blocked("vote entry is missing vote_address", nil)
		}
		if !tron.IsValidAddress(voteAddr) {
			return chain.Blocked("vote entry has an invalid address", nil)
		}
		voteCount, ok := tron.NumberField(entry, "vote_count")
		if !ok || math.Floor(voteCount) <= 0 {
			return chain.Blocked("vote entry must have a positive integer vote_count", nil)
		}
		total += voteCount
		addresses = append(addresses, voteAddr)
	}
	if total <= 0 {
		return chain.Blocked("sum of vote_count across entries must be positive", nil)
	}

	if len(args.ValidatorAddresses) > 0 {
		if len(args.ValidatorAddresses) != len(addresses) {
			return chain.Blocked("requested validator address set does not match the vote's address set", nil)
		}
		for _, want := range args.ValidatorAddresses {
			if !containsBase58(addresses, want) {
				return chain.Blocked("requested validator address set does not match the vote's address set", nil)
			}
		}
	}
	return chain.Safe()
}

func containsBase58(addresses []string, want string) bool {
	for _, a := range addresses {
		if tron.SameAddress(a, want) {
			return true
		}
	}
	return false
}

func (v *TronStakingValidator) validateFreeze(contract chain.TronContract, userAddress, resource string) chain.Result {
	if contract.Type != tronContractFreezeBalanceV2 {
		return chain.Blocked("contract type is not FreezeBalanceV2Contract", nil)
	}
	if !resourceMatches(contract, resource) {
		return chain.Blocked("resource field does not match the requested resource type", nil)
	}
	if !ownerMatches(contract, userAddress) {
		return chain.Blocked("owner_address does not match user address", nil)
	}
	if !tron.Present(contract.Value, "frozen_balance") {
		return chain.Blocked("frozen_balance is required", nil)
	}
	return chain.Safe()
}

func (v *TronStakingValidator) validateUnfreeze(contract chain.TronContract, userAddress, resource string) chain.Result {
	if contract.Type != tronContractUnfreezeBalanceV2 {
		return chain.Blocked("contract type is not UnfreezeBalanceV2Contract", nil)
	}
	if !resourceMatches(contract, resource) {
		return chain.Blocked("resource field does not match the requested resource type", nil)
	}
	if !ownerMatches(contract, userAddress) {
		return chain.Blocked("owner_address does not match user address", nil)
	}
	if !tron.Present(contract.Value, "unfreeze_balance") {
		return chain.Blocked("unfreeze_balance is required", nil)
	}
	return chain.Safe()
}

func (v *TronStakingValidator) validateUndelegate(contract chain.TronContract, userAddress, resource string) chain.Result {
	if contract.Type != tronContractUndelegateResource {
		return chain.Blocked("contract type is not UnDelegateResourceContract", nil)
	}
	if !resourceMatches(contract, resource) {
		return chain.Blocked("resource field does not match the requested resource type", nil)
	}
	if !ownerMatches(contract, userAddress) {
		return chain.Blocked("owner_address does not match user address", nil)
	}
	if !tron.Present(contract.Value, "balance") {
		return chain.Blocked("balance is required", nil)
	}
	return chain.Safe()
}

func (v *TronStakingValidator) validateUnfreezeLegacy(contract chain.TronContract, userAddress, resource string) chain.Result {
	if contract.Type != tronContractUnfreezeBalanceLegacy {
		return chain.Blocked("contract type is not UnfreezeBalanceContract", nil)
	}
	if !resourceMatches(contract, resource) {
		return chain.Blocked("resource field does not match the requested resource type", nil)
	}
	if !ownerMatches(contract, userAddress) {
		return chain.Blocked("owner_address does not match user address", nil)
	}
	return chain.Safe()
}

func (v *TronStakingValidator) validateWithdrawExpireUnfreeze(contract chain.TronContract, userAddress string) chain.Result {
	if contract.Type != tronContractWithdrawExpireUnfreeze {
		return chain.Blocked("contract type is not WithdrawExpireUnfreezeContract", nil)
	}
	if !ownerMatches(contract, userAddress) {
		return chain.Blocked("owner_address does not match user address", nil)
	}
	return chain.Safe()
}

func (v *TronStakingValidator) validateClaimRewards(contract chain.TronContract, userAddress string) chain.Result {
	if contract.Type != tronContractWithdrawBalance {
		return chain.Blocked("contract type is not WithdrawBalanceContract", nil)
	}
	if !ownerMatches(contract, userAddress) {
		return chain.Blocked("owner_address does not match user address", nil)
	}
	return chain.Safe()
}
