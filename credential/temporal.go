package credential

import "fmt"

// ValidateCredentialType rejects the reserved type 0.
func ValidateCredentialType(credentialType uint32) error {
	if credentialType == 0 {
		return NewError(RuleCredentialType, "credential type must be positive")
	}
	return nil
}

// ValidateTemporal checks the validity window. Both boundaries are inclusive:
// currentTime == issuedAt and currentTime == expiresAt pass.
// An expiresAt of 0 disables the expiry check.
func ValidateTemporal(issuedAt, expiresAt, currentTime uint64) error {
	if issuedAt == 0 {
		return NewError(RuleIssuedAtZero, "issuance time must be set")
	}
	if currentTime < issuedAt {
		return NewError(RuleClockSkew, fmt.Sprintf("current time %d before issuance %d", currentTime, issuedAt))
	}
	if expiresAt != 0 && currentTime > expiresAt {
		return NewError(RuleExpired, fmt.Sprintf("credential expired at %d (current time %d)", expiresAt, currentTime))
	}
	return nil
}
