// Copyright 2025 StakeShield
//
// Package dispatch implements the auto-detection core (spec §4.7): given
// a yield id, it tries every op its validator supports against the
// transaction and requires exactly one match.

package dispatch

import (
	"fmt"

	"github.com/stakeshield/txvalidator/pkg/chain"
	"github.com/stakeshield/txvalidator/pkg/registry"
	"github.com/stakeshield/txvalidator/pkg/validator"
)

// Attempt records the outcome of trying one op against the transaction,
// for the diagnostic `attempts` trace in a no-match or ambiguous result.
type Attempt struct {
	Op     chain.Op
	Result chain.Result
}

// Validate resolves yieldID's validator, tries each of its supported ops
// against txBlob, and returns Safe only when exactly one op matches.
func Validate(reg *registry.Registry, yieldID, txBlob, userAddress string, args validator.Args, ctx validator.Context) chain.Result {
	if yieldID == "" {
		return chain.Blocked("Unknown yield ID", nil)
	}
	v, ok := reg.Lookup(yieldID)
	if !ok {
		return chain.Blocked("Unknown yield ID", nil)
	}
	if txBlob == "" || userAddress == "" {
		return chain.Blocked("Invalid request parameters", nil)
	}

	return detectOne(v, txBlob, userAddress, args, ctx)
}

// detectOne tries every op v supports against txBlob and requires exactly
// one match, per spec §4.7/§8 property 6. Split out from Validate so the
// match-count branching can be exercised directly against a mock
// validator without needing a full registry lookup.
func detectOne(v validator.Validator, txBlob, userAddress string, args validator.Args, ctx validator.Context) chain.Result {
	ops := v.SupportedOps()
	trace := make([]Attempt, 0, len(ops))
	for _, op := range ops {
		trace = append(trace, Attempt{Op: op, Result: runOp(v, txBlob, op, userAddress, args, ctx)})
	}

	var matched []chain.Op
	for _, a := range trace {
		if a.Result.IsValid {
			matched = append(matched, a.Op)
		}
	}

	switch len(matched) {
	case 1:
		return chain.SafeOp(matched[0])
	case 0:
		attempts := make([]map[string]interface{}, len(trace))
		for i, a := range trace {
			attempts[i] = map[string]interface{}{"type": string(a.Op), "reason": a.Result.Reason}
		}
		return chain.Blocked("No matching operation pattern found for this yield id", map[string]interface{}{
			"supported_types": opsToStrings(ops),
			"attempts":        attempts,
		})
	default:
		return chain.Blocked("Ambiguous transaction pattern detected - transaction matches multiple operation types", map[string]interface{}{
			"matched_types": opsToStrings(matched),
		})
	}
}

// runOp invokes the validator for one op, recovering any panic into a
// Blocked result so dispatch never aborts on a misbehaving validator
// (spec §4.7 step 3, §7 propagation policy).
func runOp(v validator.Validator, txBlob string, op chain.Op, userAddress string, args validator.Args, ctx validator.Context) (result chain.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = chain.Blocked(fmt.Sprintf("%v", r), nil)
		}
	}()
	return v.Validate(txBlob, op, userAddress, args, ctx)
}

func opsToStrings(ops []chain.Op) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = string(op)
	}
	return out
}
