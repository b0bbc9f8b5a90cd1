// Copyright 2025 StakeShield
//
// Package envelope implements the request/response surface (spec §4.8,
// §6): closed-schema JSON validation, size caps, request-hash binding,
// and routing to validate/isSupported/getSupportedYieldIds.

package envelope

import "github.com/stakeshield/txvalidator/pkg/validator"

// Error codes, closed set (spec §6).
const (
	ErrParseError              = "PARSE_ERROR"
	ErrSchemaValidationError   = "SCHEMA_VALIDATION_ERROR"
	ErrMissingRequiredField    = "MISSING_REQUIRED_FIELD"
	ErrInternalError           = "INTERNAL_ERROR"
)

const apiVersion = "1.0"

const (
	OperationValidate              = "validate"
	OperationIsSupported           = "isSupported"
	OperationGetSupportedYieldIds  = "getSupportedYieldIds"
)

// Request is the parsed, schema-validated request envelope.
type Request struct {
	APIVersion          string
	Operation           string
	YieldID             string
	UnsignedTransaction string
	UserAddress         string
	Args                validator.Args
	Context             validator.Context
}

// EnvelopeError is an error surfaced at the response's top-level
// `error.code`, distinct from a validation outcome (spec §7).
type EnvelopeError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *EnvelopeError) Error() string { return e.Message }

func schemaErr(message string) *EnvelopeError {
	return &EnvelopeError{Code: ErrSchemaValidationError, Message: message}
}

func missingField(message string) *EnvelopeError {
	return &EnvelopeError{Code: ErrMissingRequiredField, Message: message}
}

// Response is the closed success/error envelope shape (spec §6).
type Response struct {
	OK         bool                   `json:"ok"`
	APIVersion string                 `json:"apiVersion"`
	Result     interface{}            `json:"result,omitempty"`
	Error      *responseError         `json:"error,omitempty"`
	Meta       responseMeta           `json:"meta"`
}

type responseError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type responseMeta struct {
	RequestHash string `json:"requestHash"`
}

// ValidateResult is the `validate` operation's result shape.
type ValidateResult struct {
	IsValid      bool                   `json:"isValid"`
	Reason       string                 `json:"reason,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
	DetectedType string                 `json:"detectedType,omitempty"`
}

// IsSupportedResult is the `isSupported` operation's result shape.
type IsSupportedResult struct {
	Supported bool   `json:"supported"`
	YieldID   string `json:"yieldId"`
}

// GetSupportedYieldIdsResult is the `getSupportedYieldIds` result shape.
type GetSupportedYieldIdsResult struct {
	YieldIDs []string `json:"yieldIds"`
}
