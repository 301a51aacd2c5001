// Package coffee holds the brewing domain: pure validators for generated
// code and the calculation helpers the agents expose as tools. Nothing in
// this package performs I/O; identical input always yields identical output.
package coffee

import "strings"

// ValidationReport is the structured result of one validator invocation.
// It is never mutated after creation; re-validation produces a new report.
type ValidationReport struct {
	Passed bool     `json:"passed"`
	Issues []string `json:"issues,omitempty"`
}

// passedReport returns a passing report with no issues.
func passedReport() ValidationReport {
	return ValidationReport{Passed: true}
}

// failedReport returns a failing report carrying the given issues.
func failedReport(issues ...string) ValidationReport {
	return ValidationReport{Passed: false, Issues: issues}
}

// Summary renders the report as a single line suitable for folding into a
// transcript as critique.
func (r ValidationReport) Summary() string {
	if r.Passed {
		return "passed"
	}
	return "failed: " + strings.Join(r.Issues, "; ")
}
