// Copyright 2025 StakeShield
//
// Auto-Detection Dispatch Tests

package dispatch

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/stakeshield/txvalidator/pkg/chain"
	"github.com/stakeshield/txvalidator/pkg/config"
	"github.com/stakeshield/txvalidator/pkg/registry"
	"github.com/stakeshield/txvalidator/pkg/validator"
)

func buildTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Build("")
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return reg
}

const lidoSubmitABI = `[{"type":"function","name":"submit","inputs":[{"name":"_referral","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}]`

func lidoStakeTxJSONFixture(t *testing.T) string {
	t.Helper()
	parsed, err := ethabi.JSON(strings.NewReader(lidoSubmitABI))
	if err != nil {
		t.Fatalf("failed to parse test ABI: %v", err)
	}
	referral := common.HexToAddress("0x371240e80bf84ec2ba8b55ae2fd0b467b16db2be")
	packed, err := parsed.Pack("submit", referral)
	if err != nil {
		t.Fatalf("failed to pack submit calldata: %v", err)
	}
	raw := map[string]interface{}{
		"to":      "0xae7ab96520de3a18e5e111b5eaab095312d7fe84",
		"from":    "0x1234567890123456789012345678901234567890",
		"value":   "0xde0b6b3a7640000",
		"data":    "0x" + hex.EncodeToString(packed),
		"chainId": 1,
	}
	b, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("failed to marshal test tx: %v", err)
	}
	return string(b)
}

// ============================================================================
// Input validation
// ============================================================================

func TestValidate_EmptyYieldIDIsBlocked(t *testing.T) {
	reg := buildTestRegistry(t)
	result := Validate(reg, "", lidoStakeTxJSONFixture(t), "0x1234567890123456789012345678901234567890", validator.Args{}, validator.Context{})
	if result.IsValid {
		t.Fatal("expected an empty yield id to be blocked")
	}
	if result.Reason != "Unknown yield ID" {
		t.Errorf("unexpected reason: %q", result.Reason)
	}
}

func TestValidate_UnknownYieldIDIsBlocked(t *testing.T) {
	reg := buildTestRegistry(t)
	result := Validate(reg, "no-such-yield-id", lidoStakeTxJSONFixture(t), "0x1234567890123456789012345678901234567890", validator.Args{}, validator.Context{})
	if result.IsValid {
		t.Fatal("expected an unknown yield id to be blocked")
	}
}

func TestValidate_EmptyTxBlobIsBlocked(t *testing.T) {
	reg := buildTestRegistry(t)
	result := Validate(reg, config.YieldIDLidoStaking, "", "0x1234567890123456789012345678901234567890", validator.Args{}, validator.Context{})
	if result.IsValid {
		t.Fatal("expected an empty transaction blob to be blocked")
	}
	if result.Reason != "Invalid request parameters" {
		t.Errorf("unexpected reason: %q", result.Reason)
	}
}

func TestValidate_EmptyUserAddressIsBlocked(t *testing.T) {
	reg := buildTestRegistry(t)
	result := Validate(reg, config.YieldIDLidoStaking, lidoStakeTxJSONFixture(t), "", validator.Args{}, validator.Context{})
	if result.IsValid {
		t.Fatal("expected an empty user address to be blocked")
	}
}

// ============================================================================
// Match-count branching
// ============================================================================

func TestValidate_ExactlyOneMatchReturnsSafe(t *testing.T) {
	reg := buildTestRegistry(t)
	result := Validate(reg, config.YieldIDLidoStaking, lidoStakeTxJSONFixture(t), "0x1234567890123456789012345678901234567890", validator.Args{}, validator.Context{})
	if !result.IsValid {
		t.Fatalf("expected exactly one matching op, got blocked: %s", result.Reason)
	}
	if result.DetectedOp != chain.OpStake {
		t.Errorf("expected detected op STAKE, got %q", result.DetectedOp)
	}
}

func TestValidate_NoMatchIncludesAttemptsTrace(t *testing.T) {
	reg := buildTestRegistry(t)
	garbage := `{"to":"0x0000000000000000000000000000000000000099","from":"0x1234567890123456789012345678901234567890","value":"0x0","data":"0x","chainId":1}`
	result := Validate(reg, config.YieldIDLidoStaking, garbage, "0x1234567890123456789012345678901234567890", validator.Args{}, validator.Context{})
	if result.IsValid {
		t.Fatal("expected a non-matching transaction to be blocked")
	}
	if result.Reason != "No matching operation pattern found for this yield id" {
		t.Errorf("unexpected reason: %q", result.Reason)
	}
	if result.Details == nil {
		t.Fatal("expected details to include the attempts trace")
	}
	if _, ok := result.Details["attempts"]; !ok {
		t.Error("expected details to contain an \"attempts\" key")
	}
	if _, ok := result.Details["supported_types"]; !ok {
		t.Error("expected details to contain a \"supported_types\" key")
	}
}

// ============================================================================
// Panic recovery
// ============================================================================

type panickingValidator struct{}

func (panickingValidator) SupportedOps() []chain.Op {
	return []chain.Op{chain.OpStake}
}

func (panickingValidator) Validate(txBlob string, op chain.Op, userAddress string, args validator.Args, ctx validator.Context) chain.Result {
	panic("boom")
}

func TestRunOp_RecoversFromPanic(t *testing.T) {
	result := runOp(panickingValidator{}, "blob", chain.OpStake, "user", validator.Args{}, validator.Context{})
	if result.IsValid {
		t.Fatal("expected a panicking validator to be recovered into a Blocked result")
	}
	if !strings.Contains(result.Reason, "boom") {
		t.Errorf("expected recovered panic message in reason, got %q", result.Reason)
	}
}

// ============================================================================
// Ambiguous detection
// ============================================================================

type twoMatchValidator struct{}

func (twoMatchValidator) SupportedOps() []chain.Op {
	return []chain.Op{chain.OpStake, chain.OpUnstake}
}

func (twoMatchValidator) Validate(txBlob string, op chain.Op, userAddress string, args validator.Args, ctx validator.Context) chain.Result {
	return chain.SafeOp(op)
}

func TestDetectOne_TwoMatchesIsAmbiguous(t *testing.T) {
	result := detectOne(twoMatchValidator{}, "blob", "user", validator.Args{}, validator.Context{})
	if result.IsValid {
		t.Fatal("expected two matching ops to be blocked as ambiguous")
	}
	if !strings.Contains(result.Reason, "Ambiguous") {
		t.Errorf("expected reason to contain \"Ambiguous\", got %q", result.Reason)
	}
	matched, ok := result.Details["matched_types"]
	if !ok {
		t.Fatal("expected details to contain a \"matched_types\" key")
	}
	types, ok := matched.([]string)
	if !ok || len(types) != 2 {
		t.Errorf("expected matched_types to list both matched ops, got %+v", matched)
	}
}
