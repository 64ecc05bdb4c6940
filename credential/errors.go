package credential

import (
	"errors"
	"sort"
)

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind, Code or RuleID rather than matching error strings.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	KindInput     Kind = "Input"
	KindTemporal  Kind = "Temporal"
	KindSignature Kind = "Signature"
	KindClaims    Kind = "Claims"
	KindEncoding  Kind = "Encoding"
	KindInternal  Kind = "Internal"
)

// Code names the reason a validation run aborted.
type Code string

const (
	CodeInvalidCredentialType Code = "InvalidCredentialType"
	CodeInvalidIssuance       Code = "InvalidIssuance"
	CodeClockSkew             Code = "ClockSkew"
	CodeExpired               Code = "Expired"
	CodeMalformedCredential   Code = "MalformedCredential"
	CodeUnsupportedVersion    Code = "UnsupportedVersion"
	CodeInsufficientClaims    Code = "InsufficientClaims"
	CodeInvalidSignature      Code = "InvalidSignature"
	CodeInvalidPublicKey      Code = "InvalidPublicKey"
	CodeMalformedRecord       Code = "MalformedRecord"
	CodeMalformedOutput       Code = "MalformedOutput"
	CodeInternal              Code = "Internal"
)

// Stable rule identifiers. One RuleID maps to exactly one Kind and Code.
const (
	RuleCredentialType   = "CRED-TYPE-001"
	RuleIssuedAtZero     = "CRED-TIME-001"
	RuleClockSkew        = "CRED-TIME-002"
	RuleExpired          = "CRED-TIME-003"
	RuleSignatureEmpty   = "CRED-SIG-001"
	RuleSignatureShort   = "CRED-SIG-002"
	RuleSignatureInvalid = "CRED-SIG-003"
	RulePubKeyEmpty      = "CRED-SIG-101"
	RulePubKeyLength     = "CRED-SIG-102"
	RulePubKeyInvalid    = "CRED-SIG-103"
	RuleDataTooShort     = "CRED-CLAIM-001"
	RuleVersion          = "CRED-CLAIM-002"
	RuleClaimCount       = "CRED-CLAIM-003"
	RuleRecordTruncated  = "CRED-REC-001"
	RuleRecordTrailing   = "CRED-REC-002"
	RuleRecordOversized  = "CRED-REC-003"
	RuleRecordField      = "CRED-REC-004"
	RuleOutputLength     = "CRED-OUT-001"
	RuleNilVerifier      = "CRED-INTERNAL-001"
	RuleNilRule          = "CRED-INTERNAL-002"
	RuleSchemeUnknown    = "CRED-INTERNAL-003"
)

// RuleInfo describes a registered rule.
type RuleInfo struct {
	ID   string
	Kind Kind
	Code Code
}

var ruleTable = map[string]RuleInfo{
	RuleCredentialType:   {RuleCredentialType, KindInput, CodeInvalidCredentialType},
	RuleIssuedAtZero:     {RuleIssuedAtZero, KindTemporal, CodeInvalidIssuance},
	RuleClockSkew:        {RuleClockSkew, KindTemporal, CodeClockSkew},
	RuleExpired:          {RuleExpired, KindTemporal, CodeExpired},
	RuleSignatureEmpty:   {RuleSignatureEmpty, KindSignature, CodeInvalidSignature},
	RuleSignatureShort:   {RuleSignatureShort, KindSignature, CodeInvalidSignature},
	RuleSignatureInvalid: {RuleSignatureInvalid, KindSignature, CodeInvalidSignature},
	RulePubKeyEmpty:      {RulePubKeyEmpty, KindSignature, CodeInvalidPublicKey},
	RulePubKeyLength:     {RulePubKeyLength, KindSignature, CodeInvalidPublicKey},
	RulePubKeyInvalid:    {RulePubKeyInvalid, KindSignature, CodeInvalidPublicKey},
	RuleDataTooShort:     {RuleDataTooShort, KindClaims, CodeMalformedCredential},
	RuleVersion:          {RuleVersion, KindClaims, CodeUnsupportedVersion},
	RuleClaimCount:       {RuleClaimCount, KindClaims, CodeInsufficientClaims},
	RuleRecordTruncated:  {RuleRecordTruncated, KindInput, CodeMalformedRecord},
	RuleRecordTrailing:   {RuleRecordTrailing, KindInput, CodeMalformedRecord},
	RuleRecordOversized:  {RuleRecordOversized, KindInput, CodeMalformedRecord},
	RuleRecordField:      {RuleRecordField, KindInput, CodeMalformedRecord},
	RuleOutputLength:     {RuleOutputLength, KindEncoding, CodeMalformedOutput},
	RuleNilVerifier:      {RuleNilVerifier, KindInternal, CodeInternal},
	RuleNilRule:          {RuleNilRule, KindInternal, CodeInternal},
	RuleSchemeUnknown:    {RuleSchemeUnknown, KindInternal, CodeInternal},
}

// LookupRule returns the Kind and Code registered for a RuleID.
func LookupRule(ruleID string) (RuleInfo, bool) {
	info, ok := ruleTable[ruleID]
	return info, ok
}

// RuleIDs returns every registered RuleID, sorted.
func RuleIDs() []string {
	out := make([]string, 0, len(ruleTable))
	for id := range ruleTable {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Error is the package's structured error type.
//
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	Code    Code
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError builds a structured error for a registered rule.
// Unknown rule IDs produce a KindInternal error so a typo can never pass as a validation verdict.
func NewError(ruleID, msg string) error {
	return WrapError(ruleID, msg, nil)
}

// WrapError is NewError with an underlying cause.
func WrapError(ruleID, msg string, cause error) error {
	info, ok := ruleTable[ruleID]
	if !ok {
		return &Error{Kind: KindInternal, Code: CodeInternal, RuleID: ruleID, Message: msg, Cause: cause}
	}
	return &Error{Kind: info.Kind, Code: info.Code, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsCode reports whether err is (or wraps) a *Error with the given Code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns the Code of a structured error, or "" if err is not one.
func CodeOf(err error) Code {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
