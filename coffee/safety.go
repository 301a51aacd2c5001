package coffee

import (
	"fmt"
	"strings"
)

// unsafeConstructs are Python constructs that have no place in brewing
// code and fail the safety check outright.
var unsafeConstructs = []string{
	"eval(",
	"exec(",
	"__import__",
	"subprocess.call",
	"subprocess.run",
	"subprocess.Popen",
	"os.system",
}

// ValidateSafety scans code for constructs unsafe in generated brewing
// programs: dynamic evaluation, shell escapes, and raw user input consumed
// without numeric conversion.
func ValidateSafety(code string) ValidationReport {
	var issues []string

	for _, construct := range unsafeConstructs {
		if strings.Contains(code, construct) {
			issues = append(issues, fmt.Sprintf("unsafe operation %q must not appear in generated code", construct))
		}
	}

	if strings.Contains(code, "input(") {
		if !strings.Contains(code, "float(") && !strings.Contains(code, "int(") {
			issues = append(issues, "user input is consumed without numeric conversion or validation")
		}
	}

	if len(issues) > 0 {
		return failedReport(issues...)
	}
	return passedReport()
}
