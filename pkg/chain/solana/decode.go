// Copyright 2025 StakeShield
//
// Package solana decodes legacy-serialized Solana transactions and
// resolves each instruction's discriminator per spec §4.1, then exposes
// the positional introspection helpers the native-staking validator
// needs (spec §4.5).

package solana

import (
	"encoding/hex"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"

	"github.com/stakeshield/txvalidator/pkg/chain"
)

// Program ids this validator recognizes (spec §4.1 discriminator table).
const (
	ProgramStake          = "Stake11111111111111111111111111111111111111"
	ProgramSystem         = "11111111111111111111111111111111"
	ProgramComputeBudget  = "ComputeBudget111111111111111111111111111111"
)

// discriminators maps (programID, firstDataByte) to the discriminator name
// used throughout the native-staking validator.
var discriminators = map[string]map[byte]string{
	ProgramStake: {
		0:  "Stake.Initialize",
		1:  "Stake.Authorize",
		2:  "Stake.Delegate",
		3:  "Stake.Split",
		4:  "Stake.Withdraw",
		5:  "Stake.Deactivate",
		10: "Stake.CreateAccountWithSeed",
	},
	ProgramSystem: {
		0: "System.CreateAccount",
		1: "System.Assign",
		2: "System.Transfer",
		3: "System.CreateAccountWithSeed",
		8: "System.Allocate",
		9: "System.AllocateWithSeed",
	},
	ProgramComputeBudget: {
		2: "ComputeBudget.SetComputeUnitLimit",
		3: "ComputeBudget.SetComputeUnitPrice",
	},
}

// Decode parses a hex-encoded legacy Solana transaction into the neutral
// chain.SolanaTx instruction sequence.
func Decode(unsignedTxHex string) (*chain.SolanaTx, error) {
	raw, err := hex.DecodeString(trimHexPrefix(unsignedTxHex))
	if err != nil {
		return nil, &chain.DecodeError{Platform: chain.PlatformSolana, Msg: "invalid hex: " + err.Error()}
	}

	tx, err := solanago.TransactionFromBytes(raw)
	if err != nil {
		return nil, &chain.DecodeError{Platform: chain.PlatformSolana, Msg: "malformed transaction: " + err.Error()}
	}

	out := &chain.SolanaTx{}
	for _, instr := range tx.Message.Instructions {
		if int(instr.ProgramIDIndex) >= len(tx.Message.AccountKeys) {
			return nil, &chain.DecodeError{Platform: chain.PlatformSolana, Msg: "program id index out of range"}
		}
		programID := tx.Message.AccountKeys[instr.ProgramIDIndex].String()

		data := []byte(instr.Data)
		var discriminator string
		if len(data) == 0 {
			discriminator = "unknown"
		} else if byProgram, ok := discriminators[programID]; ok {
			if name, ok := byProgram[data[0]]; ok {
				discriminator = name
			} else {
				discriminator = fmt.Sprintf("%s.unknown(%d)", programID, data[0])
			}
		} else {
			discriminator = "unknown." + programID
		}

		metas, err := instr.ResolveInstructionAccounts(&tx.Message)
		if err != nil {
			return nil, &chain.DecodeError{Platform: chain.PlatformSolana, Msg: "resolve accounts: " + err.Error()}
		}
		accounts := make([]chain.SolanaAccount, 0, len(metas))
		for _, m := range metas {
			accounts = append(accounts, chain.SolanaAccount{
				PubKey:     m.PublicKey.String(),
				IsSigner:   m.IsSigner,
				IsWritable: m.IsWritable,
			})
		}

		out.Instructions = append(out.Instructions, chain.SolanaInstruction{
			ProgramID:     programID,
			Discriminator: discriminator,
			Data:          data,
			Accounts:      accounts,
		})
	}

	return out, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		return s[2:]
	}
	return s
}
