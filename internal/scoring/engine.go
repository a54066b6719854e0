// Package scoring evaluates a weighted rule registry against candidates.
package scoring

import (
	"errors"
	"fmt"

	"solana-sniper/internal/domain"
)

// RuleFunc evaluates one rule against a candidate. It returns the formatted
// observed value, whether the predicate passed, and an error when the rule
// cannot evaluate at all (missing or invalid data).
type RuleFunc func(c *domain.Candidate) (observed string, passed bool, err error)

// Rule is a named, weighted predicate. Rules are configuration, not state:
// the registry is fixed at engine construction and evaluated in order.
type Rule struct {
	Name     string
	Weight   float64
	HardStop bool // a failing hard-stop rule terminates evaluation
	Eval     RuleFunc
}

var (
	// ErrNoRules is returned when constructing an engine with an empty registry.
	ErrNoRules = errors.New("scoring: rule registry is empty")

	// ErrDuplicateRule is returned when two rules share a name.
	ErrDuplicateRule = errors.New("scoring: duplicate rule name")

	// ErrInvalidWeight is returned for a rule with non-positive weight.
	ErrInvalidWeight = errors.New("scoring: rule weight must be positive")
)

// Engine scores candidates against an ordered rule registry.
// Stateless after construction; safe for concurrent use.
type Engine struct {
	rules           []Rule
	minQualifyScore float64
}

// NewEngine validates the registry and creates an engine.
// Registration order determines evaluation order and hard-stop short-circuit.
func NewEngine(minQualifyScore float64, rules []Rule) (*Engine, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.Name == "" || r.Eval == nil {
			return nil, fmt.Errorf("scoring: rule %q is incomplete", r.Name)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, r.Name)
		}
		seen[r.Name] = true
		if r.Weight <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidWeight, r.Name)
		}
	}
	registry := make([]Rule, len(rules))
	copy(registry, rules)
	return &Engine{rules: registry, minQualifyScore: minQualifyScore}, nil
}

// MinQualifyScore returns the configured qualification threshold.
func (e *Engine) MinQualifyScore() float64 {
	return e.minQualifyScore
}

// Score evaluates all rules in registration order.
//
// A passing rule adds its weight to TotalScore; every rule reached adds its
// weight to MaxScore. A failing hard-stop rule terminates evaluation
// immediately: later rules contribute to neither total. A rule that cannot
// evaluate is skipped (weight counts toward MaxScore only) and reported as
// faulted. Deterministic: identical candidate attributes and registry yield
// an identical result.
func (e *Engine) Score(c *domain.Candidate) *domain.ScoringResult {
	result := &domain.ScoringResult{
		Outcomes: make([]domain.RuleOutcome, 0, len(e.rules)),
	}

	for _, rule := range e.rules {
		observed, passed, err := rule.Eval(c)
		result.MaxScore += rule.Weight

		if err != nil {
			result.Outcomes = append(result.Outcomes, domain.RuleOutcome{
				Name:     rule.Name,
				Observed: fmt.Sprintf("fault: %v", err),
				Weight:   rule.Weight,
				Faulted:  true,
			})
			continue
		}

		result.Outcomes = append(result.Outcomes, domain.RuleOutcome{
			Name:     rule.Name,
			Observed: observed,
			Weight:   rule.Weight,
			Passed:   passed,
		})

		if passed {
			result.TotalScore += rule.Weight
			continue
		}

		if rule.HardStop {
			result.HardStopTriggered = true
			result.HardStopReason = rule.Name
			break
		}
	}

	result.Qualified = !result.HardStopTriggered && result.TotalScore >= e.minQualifyScore
	return result
}
