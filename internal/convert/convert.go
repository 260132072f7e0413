// Package convert performs unit conversion across common measurement
// categories. Every category reduces to a base unit with multiplicative
// factors except temperature, which uses explicit formulas.
package convert

import (
	"sort"
	"strings"

	"jarvismcp/internal/domain"
)

// Common names and abbreviations mapped to canonical unit names.
var aliases = map[string]string{
	"c": "celsius",
	"f": "fahrenheit",
	"k": "kelvin",

	"kilogram": "kg", "kilograms": "kg",
	"gram": "g", "grams": "g",
	"milligram": "mg", "milligrams": "mg",
	"pound": "lb", "pounds": "lb", "lbs": "lb",
	"ounce": "oz", "ounces": "oz",

	"cups":       "cup",
	"milliliter": "ml", "milliliters": "ml", "millilitre": "ml", "millilitres": "ml",
	"litre": "liter", "litres": "liter", "liters": "liter", "l": "liter",
	"gallon": "gal", "gallons": "gal",
	"tablespoon": "tbsp", "tablespoons": "tbsp",
	"teaspoon": "tsp", "teaspoons": "tsp",
	"fluid_ounce": "fl_oz", "fluid_ounces": "fl_oz",
	"pint": "pt", "pints": "pt",
	"quart": "qt", "quarts": "qt",

	"meter": "m", "meters": "m", "metre": "m", "metres": "m",
	"kilometer": "km", "kilometers": "km", "kilometre": "km", "kilometres": "km",
	"centimeter": "cm", "centimeters": "cm", "centimetre": "cm", "centimetres": "cm",
	"millimeter": "mm", "millimeters": "mm",
	"mile": "mi", "miles": "mi",
	"foot": "ft", "feet": "ft",
	"inch": "in", "inches": "in",
	"yard": "yd", "yards": "yd",

	"mph": "mi_per_h", "miles_per_hour": "mi_per_h",
	"kph": "km_per_h", "kmh": "km_per_h", "km_per_hour": "km_per_h",
	"meters_per_second": "m_per_s", "mps": "m_per_s",

	"second": "s", "seconds": "s", "sec": "s",
	"minute": "min", "minutes": "min",
	"hour": "h", "hours": "h", "hr": "h",
	"day": "d", "days": "d",
	"week": "wk", "weeks": "wk",
}

// Factors convert a value TO the category's base unit: base = value * factor.
var weightFactors = map[string]float64{
	"g":  1.0,
	"kg": 1000.0,
	"mg": 0.001,
	"lb": 453.592,
	"oz": 28.3495,
}

var volumeFactors = map[string]float64{
	"ml":    1.0,
	"liter": 1000.0,
	"cup":   236.588,
	"gal":   3785.41,
	"tbsp":  14.787,
	"tsp":   4.929,
	"fl_oz": 29.5735,
	"pt":    473.176,
	"qt":    946.353,
}

var distanceFactors = map[string]float64{
	"m":  1.0,
	"km": 1000.0,
	"cm": 0.01,
	"mm": 0.001,
	"mi": 1609.34,
	"ft": 0.3048,
	"in": 0.0254,
	"yd": 0.9144,
}

var speedFactors = map[string]float64{
	"m_per_s":  1.0,
	"km_per_h": 1.0 / 3.6,
	"mi_per_h": 0.44704,
}

var timeFactors = map[string]float64{
	"s":   1.0,
	"min": 60.0,
	"h":   3600.0,
	"d":   86400.0,
	"wk":  604800.0,
}

var temperatureUnits = map[string]struct{}{
	"celsius":    {},
	"fahrenheit": {},
	"kelvin":     {},
}

type category struct {
	name    string
	factors map[string]float64
}

var categories = func() map[string]category {
	byUnit := make(map[string]category)
	add := func(name string, factors map[string]float64) {
		cat := category{name: name, factors: factors}
		for unit := range factors {
			byUnit[unit] = cat
		}
	}
	add("weight", weightFactors)
	add("volume", volumeFactors)
	add("distance", distanceFactors)
	add("speed", speedFactors)
	add("time", timeFactors)
	for unit := range temperatureUnits {
		byUnit[unit] = category{name: "temperature"}
	}
	return byUnit
}()

func normalize(unit string) string {
	unit = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(unit)), " ", "_")
	if canonical, ok := aliases[unit]; ok {
		return canonical
	}
	return unit
}

// Convert converts value from one unit to another. Units in different
// categories are incompatible and rejected.
func Convert(value float64, fromUnit, toUnit string) (float64, error) {
	from := normalize(fromUnit)
	to := normalize(toUnit)
	if from == to {
		return value, nil
	}

	fromCat, ok := categories[from]
	if !ok {
		return 0, domain.Errorf(domain.CodeInvalidArguments, "convert", "unsupported unit: %s", fromUnit)
	}
	toCat, ok := categories[to]
	if !ok {
		return 0, domain.Errorf(domain.CodeInvalidArguments, "convert", "unsupported unit: %s", toUnit)
	}
	if fromCat.name != toCat.name {
		return 0, domain.Errorf(domain.CodeInvalidArguments, "convert",
			"incompatible units: %s (%s) and %s (%s)", fromUnit, fromCat.name, toUnit, toCat.name)
	}

	if fromCat.name == "temperature" {
		return convertTemperature(value, from, to), nil
	}
	return value * fromCat.factors[from] / fromCat.factors[to], nil
}

func convertTemperature(value float64, from, to string) float64 {
	var celsius float64
	switch from {
	case "celsius":
		celsius = value
	case "fahrenheit":
		celsius = (value - 32) * 5 / 9
	case "kelvin":
		celsius = value - 273.15
	}
	switch to {
	case "fahrenheit":
		return celsius*9/5 + 32
	case "kelvin":
		return celsius + 273.15
	default:
		return celsius
	}
}

// SupportedUnits returns category name to sorted canonical unit names.
func SupportedUnits() map[string][]string {
	out := map[string][]string{
		"temperature": keys(map[string]float64{"celsius": 0, "fahrenheit": 0, "kelvin": 0}),
		"weight":      keys(weightFactors),
		"volume":      keys(volumeFactors),
		"distance":    keys(distanceFactors),
		"speed":       keys(speedFactors),
		"time":        keys(timeFactors),
	}
	return out
}

func keys(factors map[string]float64) []string {
	names := make([]string, 0, len(factors))
	for name := range factors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
