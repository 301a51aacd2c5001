package coffee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTemperature(t *testing.T) {
	bounds := DefaultBounds()

	tests := []struct {
		name   string
		code   string
		passed bool
	}{
		{
			name:   "in band fahrenheit",
			code:   "water_temp = 200\nbrew(water_temp)",
			passed: true,
		},
		{
			name:   "in band celsius",
			code:   "temperature = 93\n",
			passed: true,
		},
		{
			name:   "too cold fahrenheit",
			code:   "water_temp = 180\n",
			passed: false,
		},
		{
			name:   "too hot celsius",
			code:   "temp = 99\n",
			passed: false,
		},
		{
			name:   "degree suffix fahrenheit",
			code:   `print("heat water to 205°F")`,
			passed: true,
		},
		{
			name:   "degree suffix out of band",
			code:   `print("heat water to 212°F")`,
			passed: false,
		},
		{
			name:   "no temperature at all",
			code:   "x = 42\n",
			passed: true,
		},
		{
			name:   "non temperature literal ignored",
			code:   "count = 190\n",
			passed: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ValidateTemperature(tt.code, bounds)
			assert.Equal(t, tt.passed, report.Passed, "issues: %v", report.Issues)
		})
	}
}

func TestValidateTemperatureGuardBranch(t *testing.T) {
	code := `water_temp = 180
if water_temp < 195:
    raise ValueError("too cold")
`
	report := ValidateTemperature(code, DefaultBounds())
	assert.True(t, report.Passed, "a validation branch should excuse out-of-band constants")
}

func TestValidateTemperatureIdempotent(t *testing.T) {
	code := "water_temp = 170\n"
	first := ValidateTemperature(code, DefaultBounds())
	second := ValidateTemperature(code, DefaultBounds())
	assert.Equal(t, first, second)
}

func TestValidateRatio(t *testing.T) {
	bounds := DefaultBounds()

	tests := []struct {
		name   string
		code   string
		passed bool
	}{
		{name: "assignment in range", code: "ratio = 16\n", passed: true},
		{name: "assignment below range", code: "coffee_ratio = 10\n", passed: false},
		{name: "assignment above range", code: "brew_ratio = 20\n", passed: false},
		{name: "colon notation in range", code: `# use a 1:15 ratio`, passed: true},
		{name: "colon notation out of range", code: `# use a 1:22 ratio`, passed: false},
		{name: "no ratio", code: "pass\n", passed: true},
		{name: "clock time not a ratio", code: "brew_start = \"11:30\"\nratio = 16\n", passed: true},
		{name: "timer literal not a ratio", code: "finish_by = \"21:45\"\n", passed: true},
		{name: "colon notation at line start", code: "1:15 works for pour over\n", passed: true},
		{name: "boundary low", code: "ratio = 12\n", passed: true},
		{name: "boundary high", code: "ratio = 18\n", passed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ValidateRatio(tt.code, bounds)
			assert.Equal(t, tt.passed, report.Passed, "issues: %v", report.Issues)
		})
	}
}

func TestValidateRatioDeduplicates(t *testing.T) {
	code := "ratio = 22\n# target 1:22 strength\n"
	report := ValidateRatio(code, DefaultBounds())
	require.False(t, report.Passed)
	assert.Len(t, report.Issues, 1)
}

func TestExtractCodeBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "single python block",
			text: "here you go:\n```python\nx = 1\n```\ndone",
			want: "x = 1",
		},
		{
			name: "last block wins",
			text: "```python\nfirst = 1\n```\nrevised:\n```python\nsecond = 2\n```",
			want: "second = 2",
		},
		{
			name: "bare fence",
			text: "```\ny = 2\n```",
			want: "y = 2",
		},
		{
			name: "no block",
			text: "just prose, no code",
			want: "",
		},
		{
			name: "empty block ignored",
			text: "```python\nreal = 1\n```\n```python\n\n```",
			want: "real = 1",
		},
		{
			name: "unterminated fence",
			text: "```python\ndangling = 1",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCodeBlock(tt.text))
		})
	}
}

func TestReportSummary(t *testing.T) {
	assert.Equal(t, "passed", passedReport().Summary())
	assert.Equal(t, "failed: a; b", failedReport("a", "b").Summary())
}
