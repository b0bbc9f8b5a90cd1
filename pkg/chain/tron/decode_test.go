// Copyright 2025 StakeShield
//
// Tron Address Conversion and Decode Tests

package tron

import (
	"strings"
	"testing"
)

// ============================================================================
// Address Conversion Tests
// ============================================================================

func TestHexToBase58_RoundTrip(t *testing.T) {
	hexAddr := "41357a7401a0f0ce2bafc2b8d1f6a8d5b1b9a5f3c8"
	b58, err := HexToBase58(hexAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := Base58ToHex(b58)
	if err != nil {
		t.Fatalf("unexpected error converting back: %v", err)
	}
	if back != hexAddr {
		t.Errorf("round trip mismatch: got %q, want %q", back, hexAddr)
	}
}

func TestHexToBase58_RejectsWrongLength(t *testing.T) {
	_, err := HexToBase58("4100")
	if err == nil {
		t.Fatal("expected an error for a too-short address")
	}
}

func TestBase58ToHex_RejectsBadChecksum(t *testing.T) {
	hexAddr := "41357a7401a0f0ce2bafc2b8d1f6a8d5b1b9a5f3c8"
	b58, err := HexToBase58(hexAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Flip the last character to corrupt the checksum.
	corrupted := b58[:len(b58)-1] + flipChar(b58[len(b58)-1])
	if _, err := Base58ToHex(corrupted); err == nil {
		t.Fatal("expected a checksum error for corrupted address")
	}
}

func flipChar(c byte) string {
	if c == 'a' {
		return "b"
	}
	return "a"
}

func TestSameAddress_HexAndBase58Match(t *testing.T) {
	hexAddr := "41357a7401a0f0ce2bafc2b8d1f6a8d5b1b9a5f3c8"
	b58, err := HexToBase58(hexAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !SameAddress(hexAddr, b58) {
		t.Error("expected hex and base58 forms of the same address to match")
	}
}

func TestSameAddress_Mismatch(t *testing.T) {
	a := "41357a7401a0f0ce2bafc2b8d1f6a8d5b1b9a5f3c8"
	b := "410000000000000000000000000000000000000a"
	if SameAddress(a, b) {
		t.Error("expected different addresses to compare unequal")
	}
}

func TestIsValidAddress(t *testing.T) {
	hexAddr := "41357a7401a0f0ce2bafc2b8d1f6a8d5b1b9a5f3c8"
	if !IsValidAddress(hexAddr) {
		t.Error("expected a well-formed hex address to be valid")
	}
	if IsValidAddress("not-an-address") {
		t.Error("expected a garbage string to be invalid")
	}
}

// ============================================================================
// Decode Tests
// ============================================================================

func TestDecode_ExtractsFirstContract(t *testing.T) {
	raw := `{"raw_data":{"contract":[{"type":"VoteWitnessContract","parameter":{"value":{"owner_address":"41357a7401a0f0ce2bafc2b8d1f6a8d5b1b9a5f3c8","votes":[{"vote_address":"41357a7401a0f0ce2bafc2b8d1f6a8d5b1b9a5f3c8","vote_count":5}]}}}]}}`
	tx, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Contract.Type != "VoteWitnessContract" {
		t.Errorf("expected contract type VoteWitnessContract, got %q", tx.Contract.Type)
	}
	owner, ok := StringField(tx.Contract.Value, "owner_address")
	if !ok || owner != "41357a7401a0f0ce2bafc2b8d1f6a8d5b1b9a5f3c8" {
		t.Errorf("expected owner_address field to round-trip, got %q (ok=%v)", owner, ok)
	}
}

func TestDecode_EmptyContractListFails(t *testing.T) {
	_, err := Decode(`{"raw_data":{"contract":[]}}`)
	if err == nil {
		t.Fatal("expected an error for an empty contract list")
	}
}

func TestDecode_MalformedJSONFails(t *testing.T) {
	_, err := Decode(`not json`)
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
	if !strings.Contains(err.Error(), "tron") {
		t.Errorf("expected decode error to identify the platform, got %q", err.Error())
	}
}
