package coffee

import (
	"fmt"
	"math"
	"strings"
)

// BrewMethod identifies a supported brewing method.
type BrewMethod string

const (
	Espresso    BrewMethod = "espresso"
	PourOver    BrewMethod = "pour_over"
	FrenchPress BrewMethod = "french_press"
	ColdBrew    BrewMethod = "cold_brew"
	AeroPress   BrewMethod = "aeropress"
	Turkish     BrewMethod = "turkish"
)

// StandardRatios holds industry-standard water:coffee ratios per method.
var StandardRatios = map[BrewMethod]float64{
	Espresso:    2.0,
	PourOver:    16.67,
	FrenchPress: 15.0,
	ColdBrew:    8.0,
	AeroPress:   15.0,
	Turkish:     12.0,
}

// GrindSizes holds grind recommendations per method.
var GrindSizes = map[BrewMethod]string{
	Espresso:    "fine",
	PourOver:    "medium-fine",
	FrenchPress: "coarse",
	ColdBrew:    "extra coarse",
	AeroPress:   "medium",
	Turkish:     "extra fine",
}

// BrewTimes holds brew time recommendations per method, in minutes.
var BrewTimes = map[BrewMethod]float64{
	Espresso:    0.5,
	PourOver:    3.5,
	FrenchPress: 4.0,
	ColdBrew:    60 * 12, // 12 hours
	AeroPress:   2.5,
	Turkish:     5.0,
}

// DefaultRatio is used when a method has no standard ratio entry.
const DefaultRatio = 16.67

// WaterNeeded calculates water grams for a coffee weight. A zero ratio
// selects the method's standard ratio.
func WaterNeeded(coffeeGrams, ratio float64, method BrewMethod) (float64, error) {
	if coffeeGrams <= 0 {
		return 0, fmt.Errorf("coffee weight must be positive, got %.6g", coffeeGrams)
	}
	if ratio == 0 {
		ratio = ratioForMethod(method)
	}
	if ratio < 1 || ratio > 50 {
		return 0, fmt.Errorf("ratio must be between 1:1 and 1:50, got 1:%.6g", ratio)
	}
	return round2(coffeeGrams * ratio), nil
}

// CoffeeNeeded calculates coffee grams for a water weight. A zero ratio
// selects the method's standard ratio.
func CoffeeNeeded(waterGrams, ratio float64, method BrewMethod) (float64, error) {
	if waterGrams <= 0 {
		return 0, fmt.Errorf("water weight must be positive, got %.6g", waterGrams)
	}
	if ratio == 0 {
		ratio = ratioForMethod(method)
	}
	if ratio < 1 || ratio > 50 {
		return 0, fmt.Errorf("ratio must be between 1:1 and 1:50, got 1:%.6g", ratio)
	}
	return round2(waterGrams / ratio), nil
}

// ConvertTemperature converts between Fahrenheit and Celsius. Units are
// "fahrenheit" or "celsius" (case-insensitive, "f"/"c" accepted).
func ConvertTemperature(value float64, fromUnit, toUnit string) (float64, error) {
	from, err := normalizeUnit(fromUnit)
	if err != nil {
		return 0, err
	}
	to, err := normalizeUnit(toUnit)
	if err != nil {
		return 0, err
	}
	if from == to {
		return value, nil
	}
	if from == "fahrenheit" {
		return round2((value - 32) * 5 / 9), nil
	}
	return round2(value*9/5 + 32), nil
}

// GrindRecommendation returns the grind size for a method.
func GrindRecommendation(method BrewMethod) string {
	if g, ok := GrindSizes[method]; ok {
		return g
	}
	return "medium"
}

// BrewTimeRecommendation returns the brew time for a method, in minutes.
func BrewTimeRecommendation(method BrewMethod) float64 {
	if t, ok := BrewTimes[method]; ok {
		return t
	}
	return 3.5
}

// Recipe holds validated brewing parameters.
type Recipe struct {
	Name         string     `json:"name"`
	Method       BrewMethod `json:"brew_method"`
	CoffeeGrams  float64    `json:"coffee_weight"`
	WaterGrams   float64    `json:"water_weight"`
	TemperatureF float64    `json:"water_temperature"`
	GrindSize    string     `json:"grind_size"`
	BrewMinutes  float64    `json:"brew_time"`
}

// Ratio returns water parts per 1 part coffee.
func (r Recipe) Ratio() float64 {
	if r.CoffeeGrams == 0 {
		return 0
	}
	return r.WaterGrams / r.CoffeeGrams
}

// RatioString renders the ratio in 1:X form.
func (r Recipe) RatioString() string {
	return fmt.Sprintf("1:%.2f", r.Ratio())
}

// Validate checks the recipe against brewing bounds.
func (r Recipe) Validate(bounds Bounds) error {
	if r.CoffeeGrams <= 0 || r.WaterGrams <= 0 {
		return fmt.Errorf("weights must be positive")
	}
	if r.TemperatureF < bounds.TempMinF || r.TemperatureF > bounds.TempMaxF {
		return fmt.Errorf("water temperature %.6g°F outside %.6g-%.6g°F",
			r.TemperatureF, bounds.TempMinF, bounds.TempMaxF)
	}
	if ratio := r.Ratio(); ratio < bounds.RatioMin || ratio > bounds.RatioMax {
		return fmt.Errorf("ratio %s outside 1:%.6g-1:%.6g",
			r.RatioString(), bounds.RatioMin, bounds.RatioMax)
	}
	if r.BrewMinutes <= 0 {
		return fmt.Errorf("brew time must be positive")
	}
	return nil
}

func ratioForMethod(method BrewMethod) float64 {
	if r, ok := StandardRatios[method]; ok {
		return r
	}
	return DefaultRatio
}

func normalizeUnit(unit string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "f", "fahrenheit":
		return "fahrenheit", nil
	case "c", "celsius":
		return "celsius", nil
	default:
		return "", fmt.Errorf("unknown temperature unit %q", unit)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
