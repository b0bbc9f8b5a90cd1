// Copyright 2025 StakeShield
//
// Package tron decodes Tron raw-data JSON envelopes into the neutral
// chain.TronTx shape and provides hex<->base58check address conversion
// for the native-staking validator (spec §4.1/§4.2).

package tron

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/stakeshield/txvalidator/pkg/chain"
)

// mainnetAddressPrefix is the leading network byte Tron prepends to the
// 20-byte account hash before base58check-encoding an address.
const mainnetAddressPrefix = 0x41

type rawEnvelope struct {
	RawData struct {
		Contract []struct {
			Type      string          `json:"type"`
			Parameter json.RawMessage `json:"parameter"`
		} `json:"contract"`
	} `json:"raw_data"`
}

type rawParameter struct {
	Value map[string]interface{} `json:"value"`
}

// Decode parses a Tron raw-data JSON blob and extracts its first (and
// only supported) contract entry.
func Decode(rawDataJSON string) (*chain.TronTx, error) {
	var env rawEnvelope
	if err := json.Unmarshal([]byte(rawDataJSON), &env); err != nil {
		return nil, &chain.DecodeError{Platform: chain.PlatformTron, Msg: "malformed JSON: " + err.Error()}
	}
	if len(env.RawData.Contract) == 0 {
		return nil, &chain.DecodeError{Platform: chain.PlatformTron, Msg: "raw_data.contract is empty"}
	}

	first := env.RawData.Contract[0]
	var param rawParameter
	if err := json.Unmarshal(first.Parameter, &param); err != nil {
		return nil, &chain.DecodeError{Platform: chain.PlatformTron, Msg: "malformed contract parameter: " + err.Error()}
	}

	return &chain.TronTx{
		Contract: chain.TronContract{
			Type:  first.Type,
			Value: param.Value,
		},
	}, nil
}

// HexToBase58 converts a Tron hex address (network byte + 20-byte hash,
// optionally "0x"-prefixed) to its base58check representation.
func HexToBase58(hexAddr string) (string, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(hexAddr, "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("invalid hex address %q: %w", hexAddr, err)
	}
	if len(raw) != 21 {
		return "", fmt.Errorf("invalid address length %d, want 21 bytes", len(raw))
	}
	return base58.Encode(appendChecksum(raw)), nil
}

// Base58ToHex converts a base58check Tron address back to its hex form
// (network byte + 20-byte hash, no "0x" prefix), validating the checksum
// and the expected mainnet network byte.
func Base58ToHex(b58Addr string) (string, error) {
	decoded, err := base58.Decode(b58Addr)
	if err != nil {
		return "", fmt.Errorf("invalid base58 %q: %w", b58Addr, err)
	}
	if len(decoded) != 25 {
		return "", fmt.Errorf("invalid decoded address length %d", len(decoded))
	}
	payload, checksum := decoded[:21], decoded[21:]
	if !verifyChecksum(payload, checksum) {
		return "", fmt.Errorf("checksum mismatch for %q", b58Addr)
	}
	if payload[0] != mainnetAddressPrefix {
		return "", fmt.Errorf("unexpected network byte 0x%02x", payload[0])
	}
	return hex.EncodeToString(payload), nil
}

// IsValidAddress reports whether addr is a well-formed Tron address in
// either hex or base58check form.
func IsValidAddress(addr string) bool {
	_, err := normalize(addr)
	return err == nil
}

// SameAddress normalizes both inputs to base58check and compares them —
// the canonical comparison form per spec §9's case-normalization policy.
// Accepts either hex or base58 input on either side.
func SameAddress(a, b string) bool {
	na, err := normalize(a)
	if err != nil {
		return false
	}
	nb, err := normalize(b)
	if err != nil {
		return false
	}
	return na == nb
}

func normalize(addr string) (string, error) {
	if looksHex(addr) {
		return HexToBase58(addr)
	}
	if _, err := Base58ToHex(addr); err != nil {
		return "", err
	}
	return addr, nil
}

func looksHex(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 42 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func appendChecksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return append(append([]byte{}, payload...), second[:4]...)
}

func verifyChecksum(payload, checksum []byte) bool {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return string(second[:4]) == string(checksum)
}
