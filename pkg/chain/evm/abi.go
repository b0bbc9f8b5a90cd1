// Copyright 2025 StakeShield
//
// ABI Calldata Introspection for EVM Validators

package evm

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// TamperError is returned when a calldata blob decodes against a known
// method signature but re-encoding the decoded arguments does not
// reproduce the original bytes exactly. This is the tampering-equality
// invariant from spec §4.2/§9: re-encoding is the contract, not an
// implementation detail, so it is always surfaced as this distinct type
// rather than folded into a generic decode error.
type TamperError struct {
	Method         string
	ExpectedLength int
	ActualLength   int
}

func (e *TamperError) Error() string {
	return fmt.Sprintf("calldata has been tampered with (method=%s expected_length=%d actual_length=%d)",
		e.Method, e.ExpectedLength, e.ActualLength)
}

// LengthDiff is the signed difference the spec's details payload reports
// alongside a TamperError.
func (e *TamperError) LengthDiff() int {
	return e.ActualLength - e.ExpectedLength
}

// DecodedCall is the result of successfully matching a 4-byte selector to
// a known method and unpacking its arguments.
type DecodedCall struct {
	Method string
	Args   []interface{}
}

// MustABI parses an ABI JSON fragment and panics on malformed input — used
// only at package-init time for the small, hand-written, constant ABI
// fragments each validator embeds (never for caller-controlled data).
func MustABI(abiJSON string) ethabi.ABI {
	parsed, err := ethabi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic("invalid embedded ABI fragment: " + err.Error())
	}
	return parsed
}

// DecodeAndVerify matches the 4-byte selector of dataHex against a method
// in contractABI, unpacks its arguments, then re-encodes (selector + args)
// and compares byte-for-byte against the original calldata.
//
// Returns (nil, nil) when no method in contractABI matches the selector —
// callers treat that as "this op's method does not match" rather than an
// error, since auto-detection tries many ops against the same calldata.
// Returns a *TamperError when the selector matches but re-encoding does
// not reproduce the original bytes.
func DecodeAndVerify(contractABI ethabi.ABI, dataHex string) (*DecodedCall, error) {
	raw, err := decodeHex(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid calldata hex: %w", err)
	}
	if len(raw) < 4 {
		return nil, nil
	}

	selector := raw[:4]
	var method *ethabi.Method
	for _, m := range contractABI.Methods {
		m := m
		if bytes.Equal(m.ID, selector) {
			method = &m
			break
		}
	}
	if method == nil {
		return nil, nil
	}

	argData := raw[4:]
	values, err := method.Inputs.UnpackValues(argData)
	if err != nil {
		// Selector matched but the payload doesn't even decode against the
		// signature shape: treat as tampered, since the only way a
		// well-formed caller reaches this is a corrupted/extended payload.
		return nil, &TamperError{Method: method.Name, ExpectedLength: -1, ActualLength: len(raw)}
	}

	packedArgs, err := method.Inputs.Pack(values...)
	if err != nil {
		return nil, &TamperError{Method: method.Name, ExpectedLength: -1, ActualLength: len(raw)}
	}

	reencoded := append(append([]byte{}, method.ID...), packedArgs...)
	if !bytes.Equal(reencoded, raw) {
		return nil, &TamperError{
			Method:         method.Name,
			ExpectedLength: len(reencoded),
			ActualLength:   len(raw),
		}
	}

	return &DecodedCall{Method: method.Name, Args: values}, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}
