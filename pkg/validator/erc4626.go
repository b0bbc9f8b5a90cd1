// Copyright 2025 StakeShield
//
// ERC-4626 Vault Validator

package validator

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stakeshield/txvalidator/pkg/chain"
	"github.com/stakeshield/txvalidator/pkg/chain/evm"
	"github.com/stakeshield/txvalidator/pkg/config"
)

// VaultInfo is one entry of the embedded ERC-4626 vault registry (spec
// §3). Addresses are lower-cased on load.
type VaultInfo struct {
	Address            string
	ChainID             int64
	Protocol            string
	YieldID             string
	InputTokenAddress   string
	VaultTokenAddress   string
	Network             string
	IsWETHVault         bool
	CanEnter            bool
	CanExit             bool
	AllocatorVaults     []string
}

const erc4626ABI = `[
	{"type":"function","name":"approve","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"deposit","inputs":[{"name":"assets","type":"uint256"},{"name":"receiver","type":"address"}],"outputs":[{"name":"shares","type":"uint256"}]},
	{"type":"function","name":"mint","inputs":[{"name":"shares","type":"uint256"},{"name":"receiver","type":"address"}],"outputs":[{"name":"assets","type":"uint256"}]},
	{"type":"function","name":"withdraw","inputs":[{"name":"assets","type":"uint256"},{"name":"receiver","type":"address"},{"name":"owner","type":"address"}],"outputs":[{"name":"shares","type":"uint256"}]},
	{"type":"function","name":"redeem","inputs":[{"name":"shares","type":"uint256"},{"name":"receiver","type":"address"},{"name":"owner","type":"address"}],"outputs":[{"name":"assets","type":"uint256"}]}
]`

const wethABI = `[
	{"type":"function","name":"deposit","inputs":[],"outputs":[]},
	{"type":"function","name":"withdraw","inputs":[{"name":"wad","type":"uint256"}],"outputs":[]}
]`

var (
	erc4626Contract = evm.MustABI(erc4626ABI)
	wethContract    = evm.MustABI(wethABI)
)

// ERC4626Validator is instantiated once per vault (spec §4.4, §5): each
// instance answers for exactly one yield id, scoped to its own VaultInfo.
type ERC4626Validator struct {
	Vault VaultInfo
}

// NewERC4626 constructs a validator scoped to a single vault entry.
func NewERC4626(vault VaultInfo) *ERC4626Validator {
	return &ERC4626Validator{Vault: vault}
}

func (v *ERC4626Validator) SupportedOps() []chain.Op {
	return []chain.Op{chain.OpApproval, chain.OpWrap, chain.OpSupply, chain.OpWithdraw, chain.OpUnwrap}
}

func (v *ERC4626Validator) Validate(txBlob string, op chain.Op, userAddress string, args Args, ctx Context) chain.Result {
	tx, err := evm.Decode(txBlob)
	if err != nil {
		return chain.Blocked("failed to decode transaction: "+err.Error(), nil)
	}
	if tx.ChainID.Int64() != v.Vault.ChainID {
		return chain.Blocked("chain_id does not match this vault's registry entry", map[string]interface{}{
			"expected_chain_id": v.Vault.ChainID,
			"actual_chain_id":   tx.ChainID.String(),
		})
	}

	switch op {
	case chain.OpApproval:
		return v.validateApproval(tx, userAddress)
	case chain.OpWrap:
		return v.validateWrap(tx)
	case chain.OpSupply:
		return v.validateSupply(tx, userAddress)
	case chain.OpWithdraw:
		return v.validateWithdraw(tx, userAddress)
	case chain.OpUnwrap:
		return v.validateUnwrap(tx)
	default:
		return chain.Blocked("unsupported operation", nil)
	}
}

func (v *ERC4626Validator) acceptedSpenders() []string {
	return append([]string{v.Vault.Address}, v.Vault.AllocatorVaults...)
}

func (v *ERC4626Validator) validateApproval(tx *chain.EVMTx, userAddress string) chain.Result {
	if tx.Value.Sign() != 0 {
		return chain.Blocked("approval transaction must carry zero ETH value", nil)
	}
	if !evm.SameAddress(tx.To, v.Vault.InputTokenAddress) {
		return chain.Blocked("transaction target is not the vault's input token", nil)
	}
	call, err := evm.DecodeAndVerify(erc4626Contract, tx.Data)
	if terr, ok := err.(*evm.TamperError); ok {
		return tamperBlocked(terr)
	}
	if err != nil {
		return chain.Blocked("failed to decode calldata: "+err.Error(), nil)
	}
	if call == nil || call.Method != "approve" {
		return chain.Blocked("calldata does not match approve(address,uint256)", nil)
	}
	spender, ok := call.Args[0].(common.Address)
	if !ok {
		return chain.Blocked("spender argument missing", nil)
	}
	if !addressIn(spender.Hex(), v.acceptedSpenders()) {
		return chain.Blocked("spender is not a whitelisted vault", nil)
	}
	amount, ok := call.Args[1].(*big.Int)
	if !ok || amount.Sign() == 0 {
		return chain.Blocked("amount must be non-zero", nil)
	}
	return chain.Safe()
}

func (v *ERC4626Validator) validateWrap(tx *chain.EVMTx) chain.Result {
	if !v.Vault.IsWETHVault {
		return chain.Blocked("No WETH vaults registered for this validator", nil)
	}
	weth, ok := config.WETHTable[v.Vault.ChainID]
	if !ok {
		return chain.Blocked("WETH not configured for this chain", nil)
	}
	if !evm.SameAddress(tx.To, weth) {
		return chain.Blocked("transaction target is not the configured WETH contract", nil)
	}
	if tx.Value.Sign() <= 0 {
		return chain.Blocked("wrap transaction must carry a positive ETH value", nil)
	}
	call, err := evm.DecodeAndVerify(wethContract, tx.Data)
	if terr, ok := err.(*evm.TamperError); ok {
		return tamperBlocked(terr)
	}
	if err != nil {
		return chain.Blocked("failed to decode calldata: "+err.Error(), nil)
	}
	if call == nil || call.Method != "deposit" {
		return chain.Blocked("calldata does not match deposit()", nil)
	}
	return chain.Safe()
}

func (v *ERC4626Validator) validateSupply(tx *chain.EVMTx, userAddress string) chain.Result {
	if !v.Vault.CanEnter {
		return chain.Blocked("vault is not currently accepting deposits", nil)
	}
	if !addressIn(tx.To, v.acceptedSpenders()) {
		return chain.Blocked("transaction target is not a whitelisted vault", nil)
	}
	if tx.Value.Sign() != 0 {
		return chain.Blocked("supply transaction must carry zero ETH value", nil)
	}
	call, err := evm.DecodeAndVerify(erc4626Contract, tx.Data)
	if terr, ok := err.(*evm.TamperError); ok {
		return tamperBlocked(terr)
	}
	if err != nil {
		return chain.Blocked("failed to decode calldata: "+err.Error(), nil)
	}
	if call == nil || (call.Method != "deposit" && call.Method != "mint") {
		return chain.Blocked("calldata does not match deposit(uint256,address) or mint(uint256,address)", nil)
	}
	amount, ok := call.Args[0].(*big.Int)
	if !ok || amount.Sign() == 0 {
		return chain.Blocked("amount must be non-zero", nil)
	}
	receiver, ok := call.Args[1].(common.Address)
	if !ok || !evm.SameAddress(receiver.Hex(), userAddress) {
		return chain.Blocked("receiver argument does not match user address", nil)
	}
	return chain.Safe()
}

func (v *ERC4626Validator) validateWithdraw(tx *chain.EVMTx, userAddress string) chain.Result {
	if !v.Vault.CanExit {
		return chain.Blocked("vault is not currently accepting withdrawals", nil)
	}
	if !addressIn(tx.To, v.acceptedSpenders()) {
		return chain.Blocked("transaction target is not a whitelisted vault", nil)
	}
	if tx.Value.Sign() != 0 {
		return chain.Blocked("withdraw transaction must carry zero ETH value", nil)
	}
	call, err := evm.DecodeAndVerify(erc4626Contract, tx.Data)
	if terr, ok := err.(*evm.TamperError); ok {
		return tamperBlocked(terr)
	}
	if err != nil {
		return chain.Blocked("failed to decode calldata: "+err.Error(), nil)
	}
	if call == nil || (call.Method != "withdraw" && call.Method != "redeem") {
		return chain.Blocked("calldata does not match withdraw(uint256,address,address) or redeem(uint256,address,address)", nil)
	}
	amount, ok := call.Args[0].(*big.Int)
	if !ok || amount.Sign() == 0 {
		return chain.Blocked("amount must be non-zero", nil)
	}
	receiver, ok := call.Args[1].(common.Address)
	if !ok || !evm.SameAddress(receiver.Hex(), userAddress) {
		return chain.Blocked("receiver argument does not match user address", nil)
	}
	owner, ok := call.Args[2].(common.Address)
	if !ok || !evm.SameAddress(owner.Hex(), userAddress) {
		return chain.Blocked("owner argument does not match user address", nil)
	}
	return chain.Safe()
}

func (v *ERC4626Validator) validateUnwrap(tx *chain.EVMTx) chain.Result {
	if !v.Vault.IsWETHVault {
		return chain.Blocked("No WETH vaults registered for this validator", nil)
	}
	weth, ok := config.WETHTable[v.Vault.ChainID]
	if !ok {
		return chain.Blocked("WETH not configured for this chain", nil)
	}
	if !evm.SameAddress(tx.To, weth) {
		return chain.Blocked("transaction target is not the configured WETH contract", nil)
	}
	if tx.Value.Sign() != 0 {
		return chain.Blocked("unwrap transaction must carry zero ETH value", nil)
	}
	call, err := evm.DecodeAndVerify(wethContract, tx.Data)
	if terr, ok := err.(*evm.TamperError); ok {
		return tamperBlocked(terr)
	}
	if err != nil {
		return chain.Blocked("failed to decode calldata: "+err.Error(), nil)
	}
	if call == nil || call.Method != "withdraw" {
		return chain.Blocked("calldata does not match withdraw(uint256)", nil)
	}
	amount, ok := call.Args[0].(*big.Int)
	if !ok || amount.Sign() == 0 {
		return chain.Blocked("amount must be non-zero", nil)
	}
	return chain.Safe()
}

func addressIn(addr string, set []string) bool {
	for _, candidate := range set {
		if evm.SameAddress(addr, candidate) {
			return true
		}
	}
	return false
}
