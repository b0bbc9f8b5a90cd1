// Copyright 2025 StakeShield
//
// Request Envelope Pipeline

package envelope

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stakeshield/txvalidator/pkg/config"
	"github.com/stakeshield/txvalidator/pkg/dispatch"
	"github.com/stakeshield/txvalidator/pkg/registry"
	"github.com/stakeshield/txvalidator/pkg/validator"
)

// rawRequest mirrors the closed JSON schema (spec §6). Unknown top-level
// fields are rejected by the decoder's DisallowUnknownFields mode, which
// Go's encoding/json applies recursively to every nested struct target —
// the same closure the nested rawArgs/rawContext structs rely on.
type rawRequest struct {
	APIVersion          *string     `json:"apiVersion"`
	Operation           *string     `json:"operation"`
	YieldID             *string     `json:"yieldId"`
	UnsignedTransaction *string     `json:"unsignedTransaction"`
	UserAddress         *string     `json:"userAddress"`
	Args                *rawArgs    `json:"args"`
	Context             *rawContext `json:"context"`
}

type rawArgs struct {
	ValidatorAddress   *string   `json:"validatorAddress"`
	ValidatorAddresses []string  `json:"validatorAddresses"`
	Amount             *string   `json:"amount"`
	TronResource       *string   `json:"tronResource"`
	ProviderID         *string   `json:"providerId"`
	Duration           *float64  `json:"duration"`
	InputToken         *string   `json:"inputToken"`
	SubnetID           *float64  `json:"subnetId"`
	FeeConfigurationID *string   `json:"feeConfigurationId"`
	CosmosPubKey       *string   `json:"cosmosPubKey"`
	TezosPubKey        *string   `json:"tezosPubKey"`
	NominatorAddress   *string   `json:"nominatorAddress"`
	NFTIds             []string  `json:"nftIds"`
}

type rawContext struct {
	FeeConfiguration []rawFeeConfig `json:"feeConfiguration"`
}

type rawFeeConfig struct {
	DepositFeeBps         *int    `json:"depositFeeBps"`
	FeeRecipientAddress   *string `json:"feeRecipientAddress"`
	AllocatorVaultAddress *string `json:"allocatorVaultAddress"`
}

// RequestHash computes the hex-encoded SHA-256 digest of the raw request
// bytes — echoed in meta.requestHash on every response, success or error,
// binding the response to the exact input that produced it (spec §4.8,
// §8 property 2).
func RequestHash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Handle runs the full request-envelope pipeline (spec §4.8): size cap,
// JSON parse, schema validation, required-field enforcement, then routes
// to the operation handler. It never panics: any unexpected failure
// collapses to INTERNAL_ERROR with a generic message.
func Handle(raw []byte, reg *registry.Registry) (resp *Response) {
	hash := RequestHash(raw)

	defer func() {
		if r := recover(); r != nil {
			resp = errorResponse(hash, &EnvelopeError{
				Code:    ErrInternalError,
				Message: "an internal error occurred while processing the request",
			})
		}
	}()

	req, envErr := parseAndValidate(raw)
	if envErr != nil {
		return errorResponse(hash, envErr)
	}

	result, envErr := route(req, reg)
	if envErr != nil {
		return errorResponse(hash, envErr)
	}
	return successResponse(hash, result)
}

func parseAndValidate(raw []byte) (*Request, *EnvelopeError) {
	if len(raw) > config.MaxRequestBytes {
		return nil, schemaErr(fmt.Sprintf("request exceeds maximum size of %d bytes", config.MaxRequestBytes))
	}

	var rr rawRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rr); err != nil {
		// DisallowUnknownFields folds schema closure into the same decode
		// error path as syntax failures; split them back apart so unknown
		// properties surface as SCHEMA_VALIDATION_ERROR (spec §8 property
		// 3) rather than PARSE_ERROR.
		if strings.Contains(err.Error(), "unknown field") {
			return nil, schemaErr("request contains a field not in the closed schema: " + err.Error())
		}
		return nil, &EnvelopeError{Code: ErrParseError, Message: "request body is not valid JSON: " + err.Error()}
	}
	// A second value after the first complete JSON value (trailing
	// garbage) is also a parse failure.
	if dec.More() {
		return nil, &EnvelopeError{Code: ErrParseError, Message: "request body contains trailing data after the JSON value"}
	}

	if rr.APIVersion == nil || *rr.APIVersion != apiVersion {
		return nil, schemaErr("apiVersion must be \"1.0\"")
	}
	if rr.Operation == nil {
		return nil, missingField("operation is required")
	}
	switch *rr.Operation {
	case OperationValidate, OperationIsSupported, OperationGetSupportedYieldIds:
	default:
		return nil, schemaErr("operation must be one of validate, isSupported, getSupportedYieldIds")
	}

	req := &Request{APIVersion: *rr.APIVersion, Operation: *rr.Operation}

	if rr.YieldID != nil {
		if len(*rr.YieldID) == 0 || len(*rr.YieldID) > config.MaxYieldIDChars {
			return nil, schemaErr(fmt.Sprintf("yieldId must be between 1 and %d characters", config.MaxYieldIDChars))
		}
		req.YieldID = *rr.YieldID
	}
	if rr.UnsignedTransaction != nil {
		if len(*rr.UnsignedTransaction) == 0 || len(*rr.UnsignedTransaction) > config.MaxUnsignedTxChars {
			return nil, schemaErr(fmt.Sprintf("unsignedTransaction must be between 1 and %d characters", config.MaxUnsignedTxChars))
		}
		req.UnsignedTransaction = *rr.UnsignedTransaction
	}
	if rr.UserAddress != nil {
		if len(*rr.UserAddress) == 0 || len(*rr.UserAddress) > config.MaxUserAddressChars {
			return nil, schemaErr(fmt.Sprintf("userAddress must be between 1 and %d characters", config.MaxUserAddressChars))
		}
		req.UserAddress = *rr.UserAddress
	}

	args, envErr := validateArgs(rr.Args)
	if envErr != nil {
		return nil, envErr
	}
	req.Args = args

	ctx, envErr := validateContext(rr.Context)
	if envErr != nil {
		return nil, envErr
	}
	req.Context = ctx

	if envErr := requireFields(*rr.Operation, req); envErr != nil {
		return nil, envErr
	}

	return req, nil
}

func requireFields(op string, req *Request) *EnvelopeError {
	switch op {
	case OperationValidate:
		if req.YieldID == "" {
			return missingField("yieldId is required for validate")
		}
		if req.UnsignedTransaction == "" {
			return missingField("unsignedTransaction is required for validate")
		}
		if req.UserAddress == "" {
			return missingField("userAddress is required for validate")
		}
	case OperationIsSupported:
		if req.YieldID == "" {
			return missingField("yieldId is required for isSupported")
		}
	case OperationGetSupportedYieldIds:
		// No required fields.
	}
	return nil
}

func validateArgs(ra *rawArgs) (validator.Args, *EnvelopeError) {
	var args validator.Args
	if ra == nil {
		return args, nil
	}

	if err := checkStringLen(ra.ValidatorAddress, "args.validatorAddress", config.MaxArgsStringChars); err != nil {
		return args, err
	}
	if len(ra.ValidatorAddresses) > config.MaxArrayItems {
		return args, schemaErr(fmt.Sprintf("args.validatorAddresses must not exceed %d items", config.MaxArrayItems))
	}
	for _, a := range ra.ValidatorAddresses {
		if len(a) > config.MaxArgsStringChars {
			return args, schemaErr("args.validatorAddresses entries must not exceed 128 characters")
		}
	}
	if err := checkStringLen(ra.Amount, "args.amount", config.MaxAmountChars); err != nil {
		return args, err
	}
	if ra.TronResource != nil {
		if *ra.TronResource != "BANDWIDTH" && *ra.TronResource != "ENERGY" {
			return args, schemaErr("args.tronResource must be BANDWIDTH or ENERGY")
		}
	}
	if err := checkStringLen(ra.ProviderID, "args.providerId", config.MaxArgsStringChars); err != nil {
		return args, err
	}
	if ra.Duration != nil && *ra.Duration < 0 {
		return args, schemaErr("args.duration must be >= 0")
	}
	if err := checkStringLen(ra.InputToken, "args.inputToken", config.MaxArgsStringChars); err != nil {
		return args, err
	}
	if ra.SubnetID != nil && *ra.SubnetID < 0 {
		return args, schemaErr("args.subnetId must be >= 0")
	}
	if err := checkStringLen(ra.FeeConfigurationID, "args.feeConfigurationId", config.MaxArgsStringChars); err != nil {
		return args, err
	}
	if err := checkStringLen(ra.CosmosPubKey, "args.cosmosPubKey", config.MaxArgsStringChars); err != nil {
		return args, err
	}
	if err := checkStringLen(ra.TezosPubKey, "args.tezosPubKey", config.MaxArgsStringChars); err != nil {
		return args, err
	}
	if err := checkStringLen(ra.NominatorAddress, "args.nominatorAddress", config.MaxArgsStringChars); err != nil {
		return args, err
	}
	if len(ra.NFTIds) > config.MaxArrayItems {
		return args, schemaErr(fmt.Sprintf("args.nftIds must not exceed %d items", config.MaxArrayItems))
	}

	args = validator.Args{
		ValidatorAddresses: ra.ValidatorAddresses,
		NFTIds:             ra.NFTIds,
	}
	if ra.ValidatorAddress != nil {
		args.ValidatorAddress = *ra.ValidatorAddress
	}
	if ra.Amount != nil {
		args.Amount = *ra.Amount
	}
	if ra.TronResource != nil {
		args.TronResource = *ra.TronResource
	}
	if ra.ProviderID != nil {
		args.ProviderID = *ra.ProviderID
	}
	args.Duration = ra.Duration
	if ra.InputToken != nil {
		args.InputToken = *ra.InputToken
	}
	args.SubnetID = ra.SubnetID
	if ra.FeeConfigurationID != nil {
		args.FeeConfigurationID = *ra.FeeConfigurationID
	}
	if ra.CosmosPubKey != nil {
		args.CosmosPubKey = *ra.CosmosPubKey
	}
	if ra.TezosPubKey != nil {
		args.TezosPubKey = *ra.TezosPubKey
	}
	if ra.NominatorAddress != nil {
		args.NominatorAddress = *ra.NominatorAddress
	}
	return args, nil
}

func validateContext(rc *rawContext) (validator.Context, *EnvelopeError) {
	var ctx validator.Context
	if rc == nil {
		return ctx, nil
	}
	if len(rc.FeeConfiguration) > config.MaxArrayItems {
		return ctx, schemaErr(fmt.Sprintf("context.feeConfiguration must not exceed %d items", config.MaxArrayItems))
	}
	for _, fc := range rc.FeeConfiguration {
		entry := validator.FeeConfig{}
		if fc.DepositFeeBps != nil {
			if *fc.DepositFeeBps < 0 || *fc.DepositFeeBps > 10000 {
				return ctx, schemaErr("context.feeConfiguration[].depositFeeBps must be between 0 and 10000")
			}
			entry.DepositFeeBps = fc.DepositFeeBps
		}
		if err := checkStringLen(fc.FeeRecipientAddress, "context.feeConfiguration[].feeRecipientAddress", config.MaxArgsStringChars); err != nil {
			return ctx, err
		}
		if fc.FeeRecipientAddress != nil {
			entry.FeeRecipientAddress = *fc.FeeRecipientAddress
		}
		if err := checkStringLen(fc.AllocatorVaultAddress, "context.feeConfiguration[].allocatorVaultAddress", config.MaxArgsStringChars); err != nil {
			return ctx, err
		}
		if fc.AllocatorVaultAddress != nil {
			entry.AllocatorVaultAddress = *fc.AllocatorVaultAddress
		}
		ctx.FeeConfiguration = append(ctx.FeeConfiguration, entry)
	}
	return ctx, nil
}

func checkStringLen(s *string, field string, max int) *EnvelopeError {
	if s == nil {
		return nil
	}
	if len(*s) > max {
		return schemaErr(fmt.Sprintf("%s must not exceed %d characters", field, max))
	}
	return nil
}

func route(req *Request, reg *registry.Registry) (interface{}, *EnvelopeError) {
	switch req.Operation {
	case OperationValidate:
		return handleValidate(req, reg)
	case OperationIsSupported:
		_, ok := reg.Lookup(req.YieldID)
		return IsSupportedResult{Supported: ok, YieldID: req.YieldID}, nil
	case OperationGetSupportedYieldIds:
		return GetSupportedYieldIdsResult{YieldIDs: reg.Stats().YieldIDs}, nil
	default:
		return nil, &EnvelopeError{Code: ErrInternalError, Message: "unrouted operation"}
	}
}

func handleValidate(req *Request, reg *registry.Registry) (interface{}, *EnvelopeError) {
	result := dispatch.Validate(reg, req.YieldID, req.UnsignedTransaction, req.UserAddress, req.Args, req.Context)
	out := ValidateResult{IsValid: result.IsValid, Reason: result.Reason, Details: result.Details}
	if result.IsValid {
		out.DetectedType = string(result.DetectedOp)
	}
	return out, nil
}

func errorResponse(hash string, err *EnvelopeError) *Response {
	return &Response{
		OK:         false,
		APIVersion: apiVersion,
		Error: &responseError{
			Code:    err.Code,
			Message: err.Message,
			Details: err.Details,
		},
		Meta: responseMeta{RequestHash: hash},
	}
}

// InternalErrorResponse builds a standalone INTERNAL_ERROR response for
// callers that fail before the Handle pipeline can even run (e.g. the
// CLI's registry construction step). The request hash is empty since
// there is no request to hash at that point.
func InternalErrorResponse(message string) *Response {
	return errorResponse("", &EnvelopeError{Code: ErrInternalError, Message: message})
}

func successResponse(hash string, result interface{}) *Response {
	return &Response{
		OK:         true,
		APIVersion: apiVersion,
		Result:     result,
		Meta:       responseMeta{RequestHash: hash},
	}
}
