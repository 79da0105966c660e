package model

import "fmt"

// Defaults for the batch validation gate.
const (
	DefaultMinAssemblies       = 3
	DefaultMinItemsPerAssembly = 10
)

// ValidationPolicy configures the batch validation gate.
type ValidationPolicy struct {
	Enforce             bool `json:"enforce"`                // withhold the summary on any violation
	MinAssemblies       int  `json:"min_assemblies"`         //
	MinItemsPerAssembly int  `json:"min_items_per_assembly"` //
}

// DefaultValidationPolicy requires 3 assemblies of at least 10 items and
// enforces it.
func DefaultValidationPolicy() ValidationPolicy {
	return ValidationPolicy{
		Enforce:             true,
		MinAssemblies:       DefaultMinAssemblies,
		MinItemsPerAssembly: DefaultMinItemsPerAssembly,
	}
}

// AssemblySummary is one row of the cross-assembly summary.
type AssemblySummary struct {
	Name      string     `json:"name"`
	Template  TemplateID `json:"template"`
	Total     float64    `json:"total"`
	PartCount int        `json:"part_count"`
}

// Summary totals a completed batch.
type Summary struct {
	Assemblies   []AssemblySummary `json:"assemblies"`
	OverallTotal float64           `json:"overall_total"`
	Violations   []string          `json:"violations,omitempty"`
}

// Violations lists every way results fail the policy thresholds.
func (p ValidationPolicy) Violations(results []AssemblyResult) []string {
	var v []string
	if len(results) < p.MinAssemblies {
		v = append(v, fmt.Sprintf("need at least %d assemblies, got %d", p.MinAssemblies, len(results)))
	}
	for _, r := range results {
		if len(r.Items) < p.MinItemsPerAssembly {
			v = append(v, fmt.Sprintf("assembly %q has %d parts, need at least %d", r.Name, len(r.Items), p.MinItemsPerAssembly))
		}
	}
	return v
}

// Aggregate builds the per-assembly totals, in input order, and the overall
// total. When the policy is enforced and violated it returns a
// *ValidationError and an empty Summary. Otherwise violations are reported
// on the Summary for information only.
func Aggregate(results []AssemblyResult, policy ValidationPolicy) (Summary, error) {
	violations := policy.Violations(results)
	if policy.Enforce && len(violations) > 0 {
		return Summary{}, &ValidationError{Violations: violations}
	}

	s := Summary{
		Assemblies: make([]AssemblySummary, 0, len(results)),
		Violations: violations,
	}
	var total int64
	for _, r := range results {
		s.Assemblies = append(s.Assemblies, AssemblySummary{
			Name:      r.Name,
			Template:  r.Template,
			Total:     round2(r.GrandTotal),
			PartCount: len(r.Items),
		})
		total += toCents(r.GrandTotal)
	}
	s.OverallTotal = fromCents(total)
	return s, nil
}
