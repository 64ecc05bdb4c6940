package credential

// Rule is an explicit, named validation rule.
//
// ID must be a registered RuleID.
// Apply must be deterministic and side-effect free.
type Rule struct {
	ID    string
	Apply func(*CredentialInput) error
}

func (r Rule) apply(in *CredentialInput) error {
	if r.Apply == nil {
		return NewError(RuleNilRule, "nil rule Apply")
	}
	return r.Apply(in)
}

// ValidateRules runs rules in order, returning the first failure.
//
// Rule order is the evaluation order; keep it stable.
func ValidateRules(in *CredentialInput, rules []Rule) error {
	for _, r := range rules {
		if err := r.apply(in); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRulesAll runs all rules in order and returns every violation, in rule order.
// Diagnostics only: a run is still aborted by the first one.
func ValidateRulesAll(in *CredentialInput, rules []Rule) []error {
	var out []error
	for _, r := range rules {
		if err := r.apply(in); err != nil {
			out = append(out, err)
		}
	}
	return out
}
