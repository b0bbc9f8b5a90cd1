// Package chain holds the chain-neutral data model shared by every
// per-chain decoder and validator: the operation taxonomy, the parsed
// transaction shapes, and the pass/fail result type validators return.
package chain

import "math/big"

// Platform identifies which blockchain a transaction was decoded from.
type Platform string

const (
	PlatformEVM    Platform = "evm"
	PlatformSolana Platform = "solana"
	PlatformTron   Platform = "tron"
)

// String returns the string representation of the platform.
func (p Platform) String() string {
	return string(p)
}

// IsValid reports whether p is one of the known platforms.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformEVM, PlatformSolana, PlatformTron:
		return true
	default:
		return false
	}
}

// Op is the closed enumeration of operation kinds a validator can detect.
type Op string

const (
	OpStake                     Op = "STAKE"
	OpUnstake                   Op = "UNSTAKE"
	OpClaimUnstaked             Op = "CLAIM_UNSTAKED"
	OpClaimRewards              Op = "CLAIM_REWARDS"
	OpVote                      Op = "VOTE"
	OpWithdraw                  Op = "WITHDRAW"
	OpWithdrawAll               Op = "WITHDRAW_ALL"
	OpSplit                     Op = "SPLIT"
	OpApproval                  Op = "APPROVAL"
	OpSupply                    Op = "SUPPLY"
	OpWrap                      Op = "WRAP"
	OpUnwrap                    Op = "UNWRAP"
	OpFreezeBandwidth           Op = "FREEZE_BANDWIDTH"
	OpFreezeEnergy              Op = "FREEZE_ENERGY"
	OpUnfreezeBandwidth         Op = "UNFREEZE_BANDWIDTH"
	OpUnfreezeEnergy            Op = "UNFREEZE_ENERGY"
	OpUndelegateBandwidth       Op = "UNDELEGATE_BANDWIDTH"
	OpUndelegateEnergy          Op = "UNDELEGATE_ENERGY"
	OpUnfreezeLegacyBandwidth   Op = "UNFREEZE_LEGACY_BANDWIDTH"
	OpUnfreezeLegacyEnergy      Op = "UNFREEZE_LEGACY_ENERGY"
)

// IsValid reports whether op is one of the closed set of operation kinds.
func (op Op) IsValid() bool {
	switch op {
	case OpStake, OpUnstake, OpClaimUnstaked, OpClaimRewards, OpVote,
		OpWithdraw, OpWithdrawAll, OpSplit, OpApproval, OpSupply, OpWrap, OpUnwrap,
		OpFreezeBandwidth, OpFreezeEnergy, OpUnfreezeBandwidth, OpUnfreezeEnergy,
		OpUndelegateBandwidth, OpUndelegateEnergy,
		OpUnfreezeLegacyBandwidth, OpUnfreezeLegacyEnergy:
		return true
	default:
		return false
	}
}

// EVMTx is the normalized, neutral view of a decoded EVM transaction.
// Address fields are always lower-cased; Data is a canonical "0x..." hex
// string; Value is never nil (zero when absent in the source JSON).
type EVMTx struct {
	To      string
	From    string // "absent" when the source JSON omits it
	Value   *big.Int
	Data    string
	ChainID *big.Int
}

// SolanaAccount is one entry in an instruction's ordered account list.
type SolanaAccount struct {
	PubKey     string // base58
	IsSigner   bool
	IsWritable bool
}

// SolanaInstruction is one decoded instruction from a legacy Solana
// transaction, with its discriminator already resolved against the
// program id per the table in spec §4.1.
type SolanaInstruction struct {
	ProgramID     string // base58
	Discriminator string // e.g. "Stake.Initialize", "System.Transfer"
	Data          []byte
	Accounts      []SolanaAccount
}

// SolanaTx is the ordered instruction sequence of a decoded transaction.
type SolanaTx struct {
	Instructions []SolanaInstruction
}

// TronContract is the first (and only supported) contract entry of a
// Tron raw-data envelope: a type tag plus its decoded parameter value.
type TronContract struct {
	Type  string
	Value map[string]interface{}
}

// TronTx is the decoded view of a Tron raw-data JSON envelope.
type TronTx struct {
	Contract TronContract
}

// Result is what every validator's Validate call returns: either a safe
// match for the attempted op, or a blocked outcome with a human-readable
// reason and optional structured details for diagnostics.
type Result struct {
	IsValid    bool
	Reason     string
	Details    map[string]interface{}
	DetectedOp Op
}

// Safe builds a successful validation result.
func Safe() Result {
	return Result{IsValid: true}
}

// SafeOp builds a successful dispatch-level result naming the op that
// uniquely matched (spec §4.7).
func SafeOp(op Op) Result {
	return Result{IsValid: true, DetectedOp: op}
}

// Blocked builds a rejected validation result with a reason and optional
// structured detail.
func Blocked(reason string, details map[string]interface{}) Result {
	return Result{IsValid: false, Reason: reason, Details: details}
}

// DecodeError signals a failure to even parse a transaction blob into its
// neutral structure (C1) — distinct from a Blocked validation outcome,
// which means the transaction parsed fine but did not match the pattern.
type DecodeError struct {
	Platform Platform
	Msg      string
}

func (e *DecodeError) Error() string {
	return string(e.Platform) + " decode: " + e.Msg
}
