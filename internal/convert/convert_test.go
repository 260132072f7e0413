package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvismcp/internal/domain"
)

func TestConvert_Temperature(t *testing.T) {
	got, err := Convert(0, "celsius", "fahrenheit")
	require.NoError(t, err)
	assert.InDelta(t, 32.0, got, 1e-9)

	got, err = Convert(212, "f", "c")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, got, 1e-9)

	got, err = Convert(0, "c", "kelvin")
	require.NoError(t, err)
	assert.InDelta(t, 273.15, got, 1e-9)
}

func TestConvert_FactorCategories(t *testing.T) {
	got, err := Convert(1, "kg", "lb")
	require.NoError(t, err)
	assert.InDelta(t, 2.2046, got, 1e-3)

	got, err = Convert(1, "mile", "km")
	require.NoError(t, err)
	assert.InDelta(t, 1.60934, got, 1e-5)

	got, err = Convert(2, "hours", "minutes")
	require.NoError(t, err)
	assert.InDelta(t, 120.0, got, 1e-9)

	got, err = Convert(60, "mph", "kph")
	require.NoError(t, err)
	assert.InDelta(t, 96.56, got, 0.01)
}

func TestConvert_Aliases(t *testing.T) {
	direct, err := Convert(5, "lb", "kg")
	require.NoError(t, err)

	aliased, err := Convert(5, "pounds", "kilograms")
	require.NoError(t, err)
	assert.Equal(t, direct, aliased)

	spaced, err := Convert(5, " LBS ", "Kilogram")
	require.NoError(t, err)
	assert.Equal(t, direct, spaced)
}

func TestConvert_SameUnit(t *testing.T) {
	got, err := Convert(42, "km", "kilometers")
	require.NoError(t, err)
	assert.Equal(t, 42.0, got)
}

func TestConvert_CrossCategory(t *testing.T) {
	_, err := Convert(1, "kg", "celsius")
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidArguments, domain.CodeFrom(err))
	assert.Contains(t, err.Error(), "incompatible units")
}

func TestConvert_UnsupportedUnit(t *testing.T) {
	_, err := Convert(1, "stone", "kg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported unit: stone")
}

func TestSupportedUnits(t *testing.T) {
	units := SupportedUnits()
	assert.ElementsMatch(t, []string{"celsius", "fahrenheit", "kelvin"}, units["temperature"])
	assert.Contains(t, units["weight"], "kg")
	assert.Contains(t, units["speed"], "m_per_s")
	assert.Len(t, units, 6)
}
