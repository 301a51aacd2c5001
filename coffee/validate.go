package coffee

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Bounds configures the numeric ranges the validators enforce. The zero
// value is not useful; use DefaultBounds or the settings layer.
type Bounds struct {
	TempMinF float64 // minimum acceptable water temperature (Fahrenheit)
	TempMaxF float64
	TempMinC float64 // equivalent Celsius band
	TempMaxC float64
	RatioMin float64 // minimum water parts per 1 part coffee
	RatioMax float64
}

// DefaultBounds returns the industry-standard brewing ranges.
func DefaultBounds() Bounds {
	return Bounds{
		TempMinF: 195,
		TempMaxF: 205,
		TempMinC: 90,
		TempMaxC: 96,
		RatioMin: 12,
		RatioMax: 18,
	}
}

var (
	// Numeric literals assigned to temperature-like identifiers, plus
	// degree-suffixed literals.
	tempAssignRe = regexp.MustCompile(`(?i)(?:water_temp|brew_temp|temperature|temp)\s*[=:]\s*(\d+(?:\.\d+)?)`)
	tempDegFRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*°?\s*F\b`)
	tempDegCRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*°?\s*C\b`)

	// Ratio literals: explicit assignment or 1:N notation.
	ratioAssignRe = regexp.MustCompile(`(?i)(?:coffee_ratio|brew_ratio|ratio)\s*[=:]\s*(\d+(?:\.\d+)?)`)
	// The left guard keeps clock-time literals like "11:30" from reading
	// as a 1:30 ratio.
	ratioColonRe = regexp.MustCompile(`(?:^|[^\d.])1\s*:\s*(\d+(?:\.\d+)?)`)

	// An explicit validation branch mentioning a temperature identifier.
	tempGuardRe = regexp.MustCompile(`(?i)if\s+[^:\n]*(?:temp|temperature)[^:\n]*[<>=!]`)
)

// ValidateTemperature extracts temperature candidates from code text and
// checks them against the configured band. A candidate outside the band
// passes anyway when the code carries an explicit validation branch for
// temperature, since the generated program then rejects bad values itself.
func ValidateTemperature(code string, bounds Bounds) ValidationReport {
	type candidate struct {
		value   float64
		celsius bool
	}
	var candidates []candidate

	for _, m := range tempAssignRe.FindAllStringSubmatch(code, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		// Disambiguate the scale by magnitude: brewing happens near
		// boiling, so 80-110 reads as Celsius and 150-250 as Fahrenheit.
		switch {
		case v >= 150 && v <= 250:
			candidates = append(candidates, candidate{value: v})
		case v >= 80 && v <= 110:
			candidates = append(candidates, candidate{value: v, celsius: true})
		}
	}
	for _, m := range tempDegFRe.FindAllStringSubmatch(code, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 100 && v <= 250 {
			candidates = append(candidates, candidate{value: v})
		}
	}
	for _, m := range tempDegCRe.FindAllStringSubmatch(code, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 60 && v <= 110 {
			candidates = append(candidates, candidate{value: v, celsius: true})
		}
	}

	guarded := tempGuardRe.MatchString(code)

	var issues []string
	for _, c := range candidates {
		min, max, unit := bounds.TempMinF, bounds.TempMaxF, "°F"
		if c.celsius {
			min, max, unit = bounds.TempMinC, bounds.TempMaxC, "°C"
		}
		if c.value < min || c.value > max {
			if guarded {
				continue
			}
			issues = append(issues, fmt.Sprintf(
				"water temperature %.6g%s outside the %.6g-%.6g%s extraction band and no validation branch guards it",
				c.value, unit, min, max, unit))
		}
	}

	if len(issues) > 0 {
		return failedReport(issues...)
	}
	return passedReport()
}

// ValidateRatio extracts coffee:water ratio literals and fails any outside
// the configured range.
func ValidateRatio(code string, bounds Bounds) ValidationReport {
	seen := map[string]bool{}
	var issues []string

	check := func(v float64) {
		key := strconv.FormatFloat(v, 'g', -1, 64)
		if seen[key] {
			return
		}
		seen[key] = true
		if v < bounds.RatioMin || v > bounds.RatioMax {
			issues = append(issues, fmt.Sprintf(
				"coffee-to-water ratio 1:%.6g outside the recommended 1:%.6g-1:%.6g range",
				v, bounds.RatioMin, bounds.RatioMax))
		}
	}

	for _, m := range ratioAssignRe.FindAllStringSubmatch(code, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 1 {
			check(v)
		}
	}
	for _, m := range ratioColonRe.FindAllStringSubmatch(code, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 1 {
			check(v)
		}
	}

	if len(issues) > 0 {
		return failedReport(issues...)
	}
	return passedReport()
}

// ExtractCodeBlock returns the contents of the last fenced code block in
// text, or "" when none is present. Both ```python and bare ``` fences are
// recognized.
func ExtractCodeBlock(text string) string {
	const fence = "```"
	var last string
	rest := text
	for {
		start := strings.Index(rest, fence)
		if start == -1 {
			break
		}
		rest = rest[start+len(fence):]
		// Skip the language tag on the opening fence line.
		if nl := strings.IndexByte(rest, '\n'); nl != -1 {
			lang := strings.TrimSpace(rest[:nl])
			if lang == "" || isLangTag(lang) {
				rest = rest[nl+1:]
			}
		}
		end := strings.Index(rest, fence)
		if end == -1 {
			break
		}
		block := strings.TrimRight(rest[:end], "\n")
		if strings.TrimSpace(block) != "" {
			last = block
		}
		rest = rest[end+len(fence):]
	}
	return last
}

func isLangTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(s) <= 12
}
