package coffee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaterNeeded(t *testing.T) {
	water, err := WaterNeeded(20, 15, FrenchPress)
	require.NoError(t, err)
	assert.Equal(t, 300.0, water)

	// Zero ratio selects the method standard.
	water, err = WaterNeeded(18, 0, Espresso)
	require.NoError(t, err)
	assert.Equal(t, 36.0, water)

	_, err = WaterNeeded(0, 15, PourOver)
	assert.Error(t, err)

	_, err = WaterNeeded(20, 80, PourOver)
	assert.Error(t, err)
}

func TestCoffeeNeeded(t *testing.T) {
	grams, err := CoffeeNeeded(300, 15, FrenchPress)
	require.NoError(t, err)
	assert.Equal(t, 20.0, grams)

	grams, err = CoffeeNeeded(500, 0, PourOver)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, grams, 0.01)

	_, err = CoffeeNeeded(-1, 15, PourOver)
	assert.Error(t, err)
}

func TestConvertTemperature(t *testing.T) {
	c, err := ConvertTemperature(200, "F", "C")
	require.NoError(t, err)
	assert.InDelta(t, 93.33, c, 0.01)

	f, err := ConvertTemperature(93, "celsius", "fahrenheit")
	require.NoError(t, err)
	assert.InDelta(t, 199.4, f, 0.01)

	same, err := ConvertTemperature(200, "f", "Fahrenheit")
	require.NoError(t, err)
	assert.Equal(t, 200.0, same)

	_, err = ConvertTemperature(200, "kelvin", "c")
	assert.Error(t, err)
}

func TestRecommendations(t *testing.T) {
	assert.Equal(t, "coarse", GrindRecommendation(FrenchPress))
	assert.Equal(t, "medium", GrindRecommendation(BrewMethod("siphon")))
	assert.Equal(t, 4.0, BrewTimeRecommendation(FrenchPress))
	assert.Equal(t, 3.5, BrewTimeRecommendation(BrewMethod("siphon")))
}

func TestRecipeValidate(t *testing.T) {
	bounds := DefaultBounds()

	good := Recipe{
		Name:         "morning pour over",
		Method:       PourOver,
		CoffeeGrams:  20,
		WaterGrams:   320,
		TemperatureF: 200,
		GrindSize:    "medium-fine",
		BrewMinutes:  3.5,
	}
	require.NoError(t, good.Validate(bounds))
	assert.Equal(t, "1:16.00", good.RatioString())

	cold := good
	cold.TemperatureF = 180
	assert.Error(t, cold.Validate(bounds))

	weak := good
	weak.WaterGrams = 500
	assert.Error(t, weak.Validate(bounds))

	instant := good
	instant.BrewMinutes = 0
	assert.Error(t, instant.Validate(bounds))
}
