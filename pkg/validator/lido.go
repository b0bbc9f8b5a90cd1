// Copyright 2025 StakeShield
//
// Lido stETH Validator

package validator

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stakeshield/txvalidator/pkg/chain"
	"github.com/stakeshield/txvalidator/pkg/chain/evm"
)

const (
	lidoChainID         = 1
	lidoStETHAddress    = "0xae7ab96520de3a18e5e111b5eaab095312d7fe84"
	lidoWithdrawalQueue = "0x889edc2edab5f40e902b864ad4d7ade8e412f9b1"
	lidoReferral        = "0x371240e80bf84ec2ba8b55ae2fd0b467b16db2be"
)

const lidoStETHABI = `[
	{"type":"function","name":"submit","inputs":[{"name":"_referral","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const lidoWithdrawalQueueABI = `[
	{"type":"function","name":"requestWithdrawals","inputs":[{"name":"_amounts","type":"uint256[]"},{"name":"_owner","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"claimWithdrawal","inputs":[{"name":"_requestId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"claimWithdrawals","inputs":[{"name":"_requestIds","type":"uint256[]"},{"name":"_hints","type":"uint256[]"}],"outputs":[]}
]`

var (
	lidoStETHContract      = evm.MustABI(lidoStETHABI)
	lidoWithdrawalContract = evm.MustABI(lidoWithdrawalQueueABI)
)

// LidoValidator implements the Lido stETH staking/unstaking/claim flow
// (spec §4.3): STAKE against the stETH contract's submit(), UNSTAKE and
// CLAIM_UNSTAKED against the Withdrawal Queue.
type LidoValidator struct{}

// NewLido constructs the single Lido validator instance.
func NewLido() *LidoValidator { return &LidoValidator{} }

func (v *LidoValidator) SupportedOps() []chain.Op {
	return []chain.Op{chain.OpStake, chain.OpUnstake, chain.OpClaimUnstaked}
}

func (v *LidoValidator) Validate(txBlob string, op chain.Op, userAddress string, args Args, ctx Context) chain.Result {
	tx, err := evm.Decode(txBlob)
	if err != nil {
		return chain.Blocked("failed to decode transaction: "+err.Error(), nil)
	}
	if tx.ChainID.Cmp(big.NewInt(lidoChainID)) != 0 {
		return chain.Blocked("chain_id must be 1 (Ethereum mainnet)", map[string]interface{}{
			"expected_chain_id": lidoChainID,
			"actual_chain_id":   tx.ChainID.String(),
		})
	}
	if !evm.SameAddress(tx.From, userAddress) {
		return chain.Blocked("transaction sender does not match user address", nil)
	}

	switch op {
	case chain.OpStake:
		return v.validateStake(tx)
	case chain.OpUnstake:
		return v.validateUnstake(tx, userAddress)
	case chain.OpClaimUnstaked:
		return v.validateClaimUnstaked(tx)
	default:
		return chain.Blocked("unsupported operation", nil)
	}
}

func (v *LidoValidator) validateStake(tx *chain.EVMTx) chain.Result {
	if !evm.SameAddress(tx.To, lidoStETHAddress) {
		return chain.Blocked("transaction target is not the stETH contract", nil)
	}
	if tx.Value.Sign() <= 0 {
		return chain.Blocked("stake transaction must carry a positive ETH value", nil)
	}
	call, err := evm.DecodeAndVerify(lidoStETHContract, tx.Data)
	if terr, ok := err.(*evm.TamperError); ok {
		return tamperBlocked(terr)
	}
	if err != nil {
		return chain.Blocked("failed to decode calldata: "+err.Error(), nil)
	}
	if call == nil || call.Method != "submit" {
		return chain.Blocked("calldata does not match submit(address)", nil)
	}
	referral, ok := call.Args[0].(common.Address)
	if !ok || !evm.SameAddress(referral.Hex(), lidoReferral) {
		return chain.Blocked("referral argument must be the fixed Lido referral address", nil)
	}
	return chain.Safe()
}

func (v *LidoValidator) validateUnstake(tx *chain.EVMTx, userAddress string) chain.Result {
	if !evm.SameAddress(tx.To, lidoWithdrawalQueue) {
		return chain.Blocked("transaction target is not the Lido Withdrawal Queue", nil)
	}
	if tx.Value.Sign() != 0 {
		return chain.Blocked("withdrawal request must carry zero ETH value", nil)
	}
	call, err := evm.DecodeAndVerify(lidoWithdrawalContract, tx.Data)
	if terr, ok := err.(*evm.TamperError); ok {
		return tamperBlocked(terr)
	}
	if err != nil {
		return chain.Blocked("failed to decode calldata: "+err.Error(), nil)
	}
	if call == nil || call.Method != "requestWithdrawals" {
		return chain.Blocked("calldata does not match requestWithdrawals(uint256[],address)", nil)
	}
	amounts, ok := call.Args[0].([]*big.Int)
	if !ok || len(amounts) == 0 {
		return chain.Blocked("amounts array must be non-empty", nil)
	}
	owner, ok := call.Args[1].(common.Address)
	if !ok || !evm.SameAddress(owner.Hex(), userAddress) {
		return chain.Blocked("owner argument does not match user address", nil)
	}
	return chain.Safe()
}

func (v *LidoValidator) validateClaimUnstaked(tx *chain.EVMTx) chain.Result {
	if !evm.SameAddress(tx.To, lidoWithdrawalQueue) {
		return chain.Blocked("transaction target is not the Lido Withdrawal Queue", nil)
	}
	if tx.Value.Sign() != 0 {
		return chain.Blocked("claim transaction must carry zero ETH value", nil)
	}
	call, err := evm.DecodeAndVerify(lidoWithdrawalContract, tx.Data)
	if terr, ok := err.(*evm.TamperError); ok {
		return tamperBlocked(terr)
	}
	if err != nil {
		return chain.Blocked("failed to decode calldata: "+err.Error(), nil)
	}
	if call == nil {
		return chain.Blocked("calldata does not match claimWithdrawal(uint256) or claimWithdrawals(uint256[],uint256[])", nil)
	}
	switch call.Method {
	case "claimWithdrawal":
		return chain.Safe()
	case "claimWithdrawals":
		ids, ok := call.Args[0].([]*big.Int)
		if !ok || len(ids) == 0 {
			return chain.Blocked("request ids array must be non-empty", nil)
		}
		hints, ok := call.Args[1].([]*big.Int)
		if !ok || len(hints) != len(ids) {
			return chain.Blocked("hints array length must equal request ids array length", nil)
		}
		return chain.Safe()
	default:
		return chain.Blocked("calldata does not match claimWithdrawal or claimWithdrawals", nil)
	}
}
