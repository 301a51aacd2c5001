package coffee

import (
	"encoding/json"
	"fmt"

	"github.com/martinemde/percolate/llm"
)

// Toolset packages the validators and calculators as tools an agent can
// declare to the model. Execution is synchronous and pure.
type Toolset struct {
	bounds Bounds
}

// NewToolset creates a Toolset enforcing the given bounds.
func NewToolset(bounds Bounds) *Toolset {
	return &Toolset{bounds: bounds}
}

// Bounds returns the bounds this toolset enforces.
func (t *Toolset) Bounds() Bounds { return t.bounds }

func codeParam() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"code": map[string]interface{}{
				"type":        "string",
				"description": "Python source code to check",
			},
		},
		"required": []string{"code"},
	}
}

// ValidatorDefs returns the validator tool definitions (for the analyzer role).
func (t *Toolset) ValidatorDefs() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        "validate_temperature",
			Description: fmt.Sprintf("Check water temperature constants in code against the %.6g-%.6g°F extraction band.", t.bounds.TempMinF, t.bounds.TempMaxF),
			Parameters:  codeParam(),
		},
		{
			Name:        "validate_ratio",
			Description: fmt.Sprintf("Check coffee-to-water ratio constants in code against the 1:%.6g-1:%.6g range.", t.bounds.RatioMin, t.bounds.RatioMax),
			Parameters:  codeParam(),
		},
		{
			Name:        "validate_syntax",
			Description: "Parse code as Python and report the first syntax error with line and column.",
			Parameters:  codeParam(),
		},
		{
			Name:        "validate_safety",
			Description: "Scan code for unsafe constructs: eval/exec, shell escapes, unvalidated user input.",
			Parameters:  codeParam(),
		},
	}
}

// CalculatorDefs returns the brewing calculator tool definitions (for the
// generator role).
func (t *Toolset) CalculatorDefs() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        "calculate_water",
			Description: "Calculate water grams for a coffee weight, ratio, and brew method.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"coffee_grams": map[string]interface{}{"type": "number"},
					"ratio":        map[string]interface{}{"type": "number", "description": "water parts per part of coffee; 0 selects the method standard"},
					"method":       map[string]interface{}{"type": "string"},
				},
				"required": []string{"coffee_grams"},
			},
		},
		{
			Name:        "calculate_coffee",
			Description: "Calculate coffee grams for a water weight, ratio, and brew method.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"water_grams": map[string]interface{}{"type": "number"},
					"ratio":       map[string]interface{}{"type": "number"},
					"method":      map[string]interface{}{"type": "string"},
				},
				"required": []string{"water_grams"},
			},
		},
		{
			Name:        "convert_temperature",
			Description: "Convert a temperature between Fahrenheit and Celsius.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"value": map[string]interface{}{"type": "number"},
					"from":  map[string]interface{}{"type": "string"},
					"to":    map[string]interface{}{"type": "string"},
				},
				"required": []string{"value", "from", "to"},
			},
		},
	}
}

// Execute dispatches a tool call by name. The returned string is the tool
// result content; a non-nil error marks the result as an error for the model.
func (t *Toolset) Execute(name string, args json.RawMessage) (string, error) {
	switch name {
	case "validate_temperature", "validate_ratio", "validate_syntax", "validate_safety":
		var p struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		var report ValidationReport
		switch name {
		case "validate_temperature":
			report = ValidateTemperature(p.Code, t.bounds)
		case "validate_ratio":
			report = ValidateRatio(p.Code, t.bounds)
		case "validate_safety":
			report = ValidateSafety(p.Code)
		default:
			report = ValidateSyntax(p.Code)
		}
		out, err := json.Marshal(report)
		if err != nil {
			return "", err
		}
		return string(out), nil

	case "calculate_water":
		var p struct {
			CoffeeGrams float64 `json:"coffee_grams"`
			Ratio       float64 `json:"ratio"`
			Method      string  `json:"method"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		water, err := WaterNeeded(p.CoffeeGrams, p.Ratio, BrewMethod(p.Method))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%.2f", water), nil

	case "calculate_coffee":
		var p struct {
			WaterGrams float64 `json:"water_grams"`
			Ratio      float64 `json:"ratio"`
			Method     string  `json:"method"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		grams, err := CoffeeNeeded(p.WaterGrams, p.Ratio, BrewMethod(p.Method))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%.2f", grams), nil

	case "convert_temperature":
		var p struct {
			Value float64 `json:"value"`
			From  string  `json:"from"`
			To    string  `json:"to"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		converted, err := ConvertTemperature(p.Value, p.From, p.To)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%.2f", converted), nil

	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}
