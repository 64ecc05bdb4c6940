package credential

// Validator runs the validation pipeline with a chosen signature Verifier.
//
// The zero value uses StructuralVerifier.
type Validator struct {
	Verifier Verifier
}

func (v Validator) verifier() Verifier {
	if v.Verifier == nil {
		return StructuralVerifier
	}
	return v.Verifier
}

// Rules returns the ordered rule list the validator evaluates:
// credential type, temporal window, signature, then claims.
func (v Validator) Rules() []Rule {
	verifier := v.verifier()
	return []Rule{
		{ID: RuleCredentialType, Apply: func(in *CredentialInput) error {
			return ValidateCredentialType(in.CredentialType)
		}},
		{ID: RuleIssuedAtZero, Apply: func(in *CredentialInput) error {
			return ValidateTemporal(in.IssuedAt, in.ExpiresAt, in.CurrentTime)
		}},
		{ID: RuleSignatureInvalid, Apply: func(in *CredentialInput) error {
			return verifier.Verify(in.CredentialData, in.Signature, in.IssuerPubKey)
		}},
		{ID: RuleClaimCount, Apply: func(in *CredentialInput) error {
			return ValidateClaims(in.CredentialData, in.CredentialType)
		}},
	}
}

// Validate checks in and, only if every rule passes, computes the credential
// hash and assembles the public output. On failure the returned output is the
// zero value and must be discarded.
func (v Validator) Validate(in CredentialInput) (PublicOutput, error) {
	if err := ValidateRules(&in, v.Rules()); err != nil {
		return PublicOutput{}, err
	}
	hash := ComputeCredentialHash(in.Subject, in.CredentialType, in.CredentialData, in.IssuerPubKey)
	return Assemble(in.Subject, in.CredentialType, hash, in.IssuedAt, in.ExpiresAt), nil
}

// Diagnose evaluates every rule and returns all violations in rule order.
// It never produces an output.
func (v Validator) Diagnose(in CredentialInput) []error {
	return ValidateRulesAll(&in, v.Rules())
}

// Validate runs the pipeline with the structural signature check.
func Validate(in CredentialInput) (PublicOutput, error) {
	return Validator{}.Validate(in)
}

// Run is the whole harness-facing pass: decode one input record, validate it
// and return the canonical output bytes. It returns either the full 72-byte
// commitment or an error, never both.
func (v Validator) Run(record []byte) ([]byte, error) {
	in, err := DecodeInput(record)
	if err != nil {
		return nil, err
	}
	out, err := v.Validate(in)
	if err != nil {
		return nil, err
	}
	return out.Encode(), nil
}
