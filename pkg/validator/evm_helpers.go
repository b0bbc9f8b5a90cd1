// Copyright 2025 StakeShield
//
// Shared EVM Validator Helpers

package validator

import (
	"github.com/stakeshield/txvalidator/pkg/chain"
	"github.com/stakeshield/txvalidator/pkg/chain/evm"
)

// tamperBlocked turns an evm.TamperError into the exact Blocked shape the
// tampering-equality invariant requires (spec §4.2/§8 property 5):
// reason contains "tampered", details carry the length comparison.
func tamperBlocked(err *evm.TamperError) chain.Result {
	return chain.Blocked(err.Error(), map[string]interface{}{
		"expected_length": err.ExpectedLength,
		"actual_length":   err.ActualLength,
		"length_diff":     err.LengthDiff(),
	})
}
