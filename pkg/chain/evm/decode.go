// Copyright 2025 StakeShield
//
// Package evm decodes unsigned EVM transactions from JSON and introspects
// their calldata against compiled ABI method signatures, enforcing the
// re-encode tamper-equality invariant described in spec §4.2.

package evm

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stakeshield/txvalidator/pkg/chain"
)

// rawTx mirrors the caller-supplied JSON shape: a permissive view that
// accepts hex or decimal chainId/value, as produced by typical wallet
// "build unsigned tx" calls.
type rawTx struct {
	To      string      `json:"to"`
	From    string      `json:"from"`
	Value   interface{} `json:"value"`
	Data    string      `json:"data"`
	ChainID interface{} `json:"chainId"`
}

// Decode parses an unsigned EVM transaction JSON blob into the neutral
// chain.EVMTx structure. Addresses are lower-cased, data is canonicalized
// to a "0x"-prefixed hex string, and value defaults to zero when absent.
func Decode(unsignedTxJSON string) (*chain.EVMTx, error) {
	var raw rawTx
	if err := json.Unmarshal([]byte(unsignedTxJSON), &raw); err != nil {
		return nil, &chain.DecodeError{Platform: chain.PlatformEVM, Msg: "malformed JSON: " + err.Error()}
	}

	if raw.ChainID == nil {
		return nil, &chain.DecodeError{Platform: chain.PlatformEVM, Msg: "chain_id missing"}
	}
	chainID, err := parseBigFlexible(raw.ChainID)
	if err != nil {
		return nil, &chain.DecodeError{Platform: chain.PlatformEVM, Msg: "chain_id not numeric: " + err.Error()}
	}

	value := big.NewInt(0)
	if raw.Value != nil {
		value, err = parseBigFlexible(raw.Value)
		if err != nil {
			return nil, &chain.DecodeError{Platform: chain.PlatformEVM, Msg: "value not numeric: " + err.Error()}
		}
	}

	from := "absent"
	if raw.From != "" {
		from = strings.ToLower(raw.From)
	}

	data := strings.ToLower(raw.Data)
	if data == "" {
		data = "0x"
	} else if !strings.HasPrefix(data, "0x") {
		data = "0x" + data
	}

	return &chain.EVMTx{
		To:      strings.ToLower(raw.To),
		From:    from,
		Value:   value,
		Data:    data,
		ChainID: chainID,
	}, nil
}

// parseBigFlexible accepts a JSON number, a decimal string, or a "0x..."
// hex string and returns the corresponding big.Int — mirroring the kind of
// loose numeric input real wallets send for chainId/value fields.
func parseBigFlexible(v interface{}) (*big.Int, error) {
	switch t := v.(type) {
	case float64:
		return big.NewInt(int64(t)), nil
	case json.Number:
		n, ok := new(big.Int).SetString(t.String(), 10)
		if !ok {
			return nil, fmt.Errorf("invalid number %q", t.String())
		}
		return n, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return big.NewInt(0), nil
		}
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			n, ok := new(big.Int).SetString(s[2:], 16)
			if !ok {
				return nil, fmt.Errorf("invalid hex number %q", s)
			}
			return n, nil
		}
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			n, _ := new(big.Int).SetString(s, 10)
			return n, nil
		}
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("invalid decimal number %q", s)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unsupported numeric type %T", v)
	}
}

// SameAddress compares two EVM address strings case-insensitively, the
// way every address comparison in this validator must (spec §9).
func SameAddress(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return common.HexToAddress(a) == common.HexToAddress(b)
}
