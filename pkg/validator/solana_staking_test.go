// Copyright 2025 StakeShield
//
// Solana Native Staking Validator Tests

package validator

import (
	"testing"

	"github.com/stakeshield/txvalidator/pkg/chain"
)

// solUser is the base58 encoding of 32 zero bytes — the real value doesn't
// matter, but AuthorizedPubkeys round-trips raw instruction-data bytes
// through solanago's pubkey decoder, so the Initialize fixture below and
// this constant must agree on what 32 zero bytes encode to.
const (
	solUser      = "11111111111111111111111111111111"
	solValidator = "Va11dator111111111111111111111111111111Ab"
	solNewStake  = "NewStake1111111111111111111111111111111Ab"
)

func solInstr(disc string, accounts ...string) chain.SolanaInstruction {
	accs := make([]chain.SolanaAccount, len(accounts))
	for i, a := range accounts {
		accs[i] = chain.SolanaAccount{PubKey: a}
	}
	return chain.SolanaInstruction{Discriminator: disc, Accounts: accs}
}

// initializeStakeData builds the 4-byte-discriminator + staker(32) +
// withdrawer(32) layout AuthorizedPubkeys expects. All zero bytes decode to
// solUser (the base58 encoding of a 32-byte all-zero pubkey).
func initializeStakeData() []byte {
	return make([]byte, 4+32+32)
}

// ============================================================================
// STAKE Tests
// ============================================================================

func solValidStakeInstructions(t *testing.T) []chain.SolanaInstruction {
	t.Helper()
	initialize := solInstr(discInitialize, solNewStake)
	initialize.Data = initializeStakeData()

	return []chain.SolanaInstruction{
		solInstr(discSetComputeUnitLimit),
		solInstr(discSetComputeUnitPrice),
		solInstr(discCreateAccountWithSeed, solUser, solNewStake),
		initialize,
		solInstr(discDelegate, solNewStake, solValidator, "", "", "", solUser),
	}
}

func TestSolanaStaking_Stake_HappyPath(t *testing.T) {
	instrs := solValidStakeInstructions(t)
	v := NewSolanaStaking()
	result := v.validateStake(&chain.SolanaTx{Instructions: instrs}, solUser, Args{})
	if !result.IsValid {
		t.Fatalf("expected a valid STAKE result, got blocked: %s", result.Reason)
	}
}

func TestSolanaStaking_Stake_WrongInstructionCountIsBlocked(t *testing.T) {
	instrs := solValidStakeInstructions(t)[:4]
	v := NewSolanaStaking()
	result := v.validateStake(&chain.SolanaTx{Instructions: instrs}, solUser, Args{})
	if result.IsValid {
		t.Fatal("expected a 4-instruction STAKE transaction to be blocked")
	}
}

func TestSolanaStaking_Stake_WrongSequenceIsBlocked(t *testing.T) {
	instrs := solValidStakeInstructions(t)
	instrs[2], instrs[3] = instrs[3], instrs[2]
	v := NewSolanaStaking()
	result := v.validateStake(&chain.SolanaTx{Instructions: instrs}, solUser, Args{})
	if result.IsValid {
		t.Fatal("expected a reordered instruction sequence to be blocked")
	}
}

func TestSolanaStaking_Stake_DelegateAuthorityMismatchIsBlocked(t *testing.T) {
	instrs := solValidStakeInstructions(t)
	instrs[4] = solInstr(discDelegate, solNewStake, solValidator, "", "", "", "someone-else")
	v := NewSolanaStaking()
	result := v.validateStake(&chain.SolanaTx{Instructions: instrs}, solUser, Args{})
	if result.IsValid {
		t.Fatal("expected a Delegate authority mismatch to be blocked")
	}
}

func TestSolanaStaking_Stake_WrongRequestedValidatorIsBlocked(t *testing.T) {
	instrs := solValidStakeInstructions(t)
	v := NewSolanaStaking()
	result := v.validateStake(&chain.SolanaTx{Instructions: instrs}, solUser, Args{ValidatorAddress: "a-different-validator"})
	if result.IsValid {
		t.Fatal("expected a vote-account mismatch against the requested validator to be blocked")
	}
}

// ============================================================================
// UNSTAKE Tests
// ============================================================================

func TestSolanaStaking_Unstake_HappyPath(t *testing.T) {
	instrs := []chain.SolanaInstruction{
		solInstr(discSetComputeUnitLimit),
		solInstr(discSetComputeUnitPrice),
		solInstr(discDeactivate, "", "", solUser),
	}
	v := NewSolanaStaking()
	result := v.validateUnstake(&chain.SolanaTx{Instructions: instrs}, solUser)
	if !result.IsValid {
		t.Fatalf("expected a valid UNSTAKE result, got blocked: %s", result.Reason)
	}
}

func TestSolanaStaking_Unstake_BatchHappyPath(t *testing.T) {
	instrs := []chain.SolanaInstruction{
		solInstr(discSetComputeUnitLimit),
		solInstr(discSetComputeUnitPrice),
		solInstr(discDeactivate, "", "", solUser),
		solInstr(discDeactivate, "", "", solUser),
		solInstr(discDeactivate, "", "", solUser),
	}
	v := NewSolanaStaking()
	result := v.validateUnstake(&chain.SolanaTx{Instructions: instrs}, solUser)
	if !result.IsValid {
		t.Fatalf("expected a valid batch UNSTAKE result, got blocked: %s", result.Reason)
	}
}

func TestSolanaStaking_Unstake_TooFewInstructionsIsBlocked(t *testing.T) {
	instrs := []chain.SolanaInstruction{
		solInstr(discSetComputeUnitLimit),
		solInstr(discSetComputeUnitPrice),
	}
	v := NewSolanaStaking()
	result := v.validateUnstake(&chain.SolanaTx{Instructions: instrs}, solUser)
	if result.IsValid {
		t.Fatal("expected an UNSTAKE transaction with no Deactivate instructions to be blocked")
	}
}

func TestSolanaStaking_Unstake_AuthorityMismatchIsBlocked(t *testing.T) {
	instrs := []chain.SolanaInstruction{
		solInstr(discSetComputeUnitLimit),
		solInstr(discSetComputeUnitPrice),
		solInstr(discDeactivate, "", "", "someone-else"),
	}
	v := NewSolanaStaking()
	result := v.validateUnstake(&chain.SolanaTx{Instructions: instrs}, solUser)
	if result.IsValid {
		t.Fatal("expected a Deactivate authority mismatch to be blocked")
	}
}

func TestSolanaStaking_Unstake_NonDeactivateTailIsBlocked(t *testing.T) {
	instrs := []chain.SolanaInstruction{
		solInstr(discSetComputeUnitLimit),
		solInstr(discSetComputeUnitPrice),
		solInstr(discDeactivate, "", "", solUser),
		solInstr(discTransfer, solUser, "somewhere"),
	}
	v := NewSolanaStaking()
	result := v.validateUnstake(&chain.SolanaTx{Instructions: instrs}, solUser)
	if result.IsValid {
		t.Fatal("expected a non-Deactivate instruction in the tail to be blocked")
	}
}

// ============================================================================
// WITHDRAW / WITHDRAW_ALL Tests
// ============================================================================

func TestSolanaStaking_Withdraw_HappyPath(t *testing.T) {
	instrs := []chain.SolanaInstruction{
		solInstr(discSetComputeUnitLimit),
		solInstr(discSetComputeUnitPrice),
		solInstr(discWithdraw, "", solUser, "", "", solUser),
	}
	v := NewSolanaStaking()
	result := v.validateWithdraw(&chain.SolanaTx{Instructions: instrs}, solUser)
	if !result.IsValid {
		t.Fatalf("expected a valid WITHDRAW result, got blocked: %s", result.Reason)
	}
}

func TestSolanaStaking_Withdraw_RecipientMismatchIsBlocked(t *testing.T) {
	instrs := []chain.SolanaInstruction{
		solInstr(discSetComputeUnitLimit),
		solInstr(discSetComputeUnitPrice),
		solInstr(discWithdraw, "", "someone-else", "", "", solUser),
	}
	v := NewSolanaStaking()
	result := v.validateWithdraw(&chain.SolanaTx{Instructions: instrs}, solUser)
	if result.IsValid {
		t.Fatal("expected a Withdraw recipient mismatch to be blocked")
	}
}

func TestSolanaStaking_WithdrawAll_RequiresAtLeastTwoWithdraws(t *testing.T) {
	instrs := []chain.SolanaInstruction{
		solInstr(discSetComputeUnitLimit),
		solInstr(discSetComputeUnitPrice),
		solInstr(discWithdraw, "", solUser, "", "", solUser),
	}
	v := NewSolanaStaking()
	result := v.validateWithdrawAll(&chain.SolanaTx{Instructions: instrs}, solUser)
	if result.IsValid {
		t.Fatal("expected a single Withdraw to be rejected as WITHDRAW_ALL (needs at least 2)")
	}
}

func TestSolanaStaking_WithdrawAll_HappyPath(t *testing.T) {
	instrs := []chain.SolanaInstruction{
		solInstr(discSetComputeUnitLimit),
		solInstr(discSetComputeUnitPrice),
		solInstr(discWithdraw, "", solUser, "", "", solUser),
		solInstr(discWithdraw, "", solUser, "", "", solUser),
	}
	v := NewSolanaStaking()
	result := v.validateWithdrawAll(&chain.SolanaTx{Instructions: instrs}, solUser)
	if !result.IsValid {
		t.Fatalf("expected a valid WITHDRAW_ALL result, got blocked: %s", result.Reason)
	}
}

func TestSolanaStaking_WithdrawAll_OneBadInstructionBlocksAll(t *testing.T) {
	instrs := []chain.SolanaInstruction{
		solInstr(discSetComputeUnitLimit),
		solInstr(discSetComputeUnitPrice),
		solInstr(discWithdraw, "", solUser, "", "", solUser),
		solInstr(discWithdraw, "", "someone-else", "", "", solUser),
	}
	v := NewSolanaStaking()
	result := v.validateWithdrawAll(&chain.SolanaTx{Instructions: instrs}, solUser)
	if result.IsValid {
		t.Fatal("expected one mismatched Withdraw among the batch to block the whole WITHDRAW_ALL")
	}
}

// ============================================================================
// SPLIT Tests
// ============================================================================

func TestSolanaStaking_Split_HappyPath(t *testing.T) {
	instrs := []chain.SolanaInstruction{
		solInstr(discSetComputeUnitLimit),
		solInstr(discSetComputeUnitPrice),
		solInstr(discAllocateWithSeed, solNewStake, solUser),
		solInstr(discTransfer, solUser, solNewStake),
		solInstr(discSplit, "", solNewStake, solUser),
		solInstr(discDeactivate, solNewStake, "", solUser),
	}
	v := NewSolanaStaking()
	result := v.validateSplit(&chain.SolanaTx{Instructions: instrs}, solUser)
	if !result.IsValid {
		t.Fatalf("expected a valid SPLIT result, got blocked: %s", result.Reason)
	}
}

func TestSolanaStaking_Split_NewStakeAccountMismatchIsBlocked(t *testing.T) {
	instrs := []chain.SolanaInstruction{
		solInstr(discSetComputeUnitLimit),
		solInstr(discSetComputeUnitPrice),
		solInstr(discAllocateWithSeed, solNewStake, solUser),
		solInstr(discTransfer, solUser, "a-different-account"),
		solInstr(discSplit, "", solNewStake, solUser),
		solInstr(discDeactivate, solNewStake, "", solUser),
	}
	v := NewSolanaStaking()
	result := v.validateSplit(&chain.SolanaTx{Instructions: instrs}, solUser)
	if result.IsValid {
		t.Fatal("expected a Transfer destination mismatched against the new stake account to be blocked")
	}
}

// ============================================================================
// SupportedOps
// ============================================================================

func TestSolanaStaking_SupportedOps(t *testing.T) {
	v := NewSolanaStaking()
	ops := v.SupportedOps()
	if len(ops) != 5 {
		t.Fatalf("expected 5 supported ops, got %d", len(ops))
	}
}
