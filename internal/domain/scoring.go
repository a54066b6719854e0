package domain

// RuleOutcome records the result of evaluating one rule against a candidate.
type RuleOutcome struct {
	Name     string
	Observed string // formatted observed value for reporting
	Weight   float64
	Passed   bool
	Faulted  bool // rule could not evaluate (missing data), distinct from a failed predicate
}

// ScoringResult is the immutable outcome of one scoring pass.
type ScoringResult struct {
	TotalScore        float64
	MaxScore          float64
	Qualified         bool
	Outcomes          []RuleOutcome
	HardStopTriggered bool
	HardStopReason    string // name of the hard-stop rule that fired
}

// FaultedRules returns the names of rules that could not evaluate.
func (r *ScoringResult) FaultedRules() []string {
	var faulted []string
	for _, o := range r.Outcomes {
		if o.Faulted {
			faulted = append(faulted, o.Name)
		}
	}
	return faulted
}
