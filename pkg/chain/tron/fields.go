// Copyright 2025 StakeShield
//
// Tron Contract Parameter Field Helpers

package tron

import "fmt"

// StringField reads a string field from a decoded contract's parameter
// value, returning ok=false if absent or the wrong type.
func StringField(value map[string]interface{}, key string) (string, bool) {
	v, present := value[key]
	if !present {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// NumberField reads a numeric field (JSON numbers decode as float64).
func NumberField(value map[string]interface{}, key string) (float64, bool) {
	v, present := value[key]
	if !present {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}

// ArrayField reads an array field.
func ArrayField(value map[string]interface{}, key string) ([]interface{}, bool) {
	v, present := value[key]
	if !present {
		return nil, false
	}
	a, ok := v.([]interface{})
	return a, ok
}

// Present reports whether key exists in value at all, regardless of type
// — used for "field present" invariants like frozen_balance/unfreeze_balance/balance.
func Present(value map[string]interface{}, key string) bool {
	_, ok := value[key]
	return ok
}

// AsString stringifies an interface{} value pulled from a decoded JSON
// array entry, for error-detail formatting.
func AsString(v interface{}) string {
	return fmt.Sprintf("%v", v)
}
