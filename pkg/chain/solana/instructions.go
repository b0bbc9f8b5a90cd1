// Copyright 2025 StakeShield
//
// Solana Instruction Introspection Helpers

package solana

import (
	solanago "github.com/gagliardetto/solana-go"

	"github.com/stakeshield/txvalidator/pkg/chain"
)

// Discriminators returns the ordered discriminator sequence of a decoded
// transaction — the shape every positional validator in pkg/validator
// matches against (spec §4.5).
func Discriminators(tx *chain.SolanaTx) []string {
	out := make([]string, len(tx.Instructions))
	for i, instr := range tx.Instructions {
		out[i] = instr.Discriminator
	}
	return out
}

// AuthorizedPubkeys parses the staker/withdrawer pubkeys embedded in a
// Stake.Initialize instruction's data. The wire layout (after the 4-byte
// discriminator) is: staker pubkey (32 bytes), withdrawer pubkey (32
// bytes), followed by lockup fields this validator does not inspect.
func AuthorizedPubkeys(data []byte) (staker, withdrawer string, ok bool) {
	if len(data) < 4+32+32 {
		return "", "", false
	}
	stakerKey, err := solanago.PublicKeyFromBytes(data[4:36])
	if err != nil {
		return "", "", false
	}
	withdrawerKey, err := solanago.PublicKeyFromBytes(data[36:68])
	if err != nil {
		return "", "", false
	}
	return stakerKey.String(), withdrawerKey.String(), true
}

// Account returns the pubkey at position i of an instruction's account
// list, or "" if the position is out of range — callers treat a missing
// position as a non-match rather than a panic.
func Account(instr chain.SolanaInstruction, i int) string {
	if i < 0 || i >= len(instr.Accounts) {
		return ""
	}
	return instr.Accounts[i].PubKey
}
