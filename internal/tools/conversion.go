package tools

import (
	"context"
	"math"

	"github.com/google/jsonschema-go/jsonschema"

	"jarvismcp/internal/convert"
	"jarvismcp/internal/domain"
	"jarvismcp/internal/registry"
)

// Conversion builds the unit conversion group. It is fully local and needs
// no backend.
func Conversion() registry.Group {
	return registry.Group{
		Name: "conversion",
		Tools: []registry.Tool{
			{
				Descriptor: registry.Descriptor{
					Name: "unit_convert",
					Description: "Convert a value between units. " +
						"Supports temperature (celsius, fahrenheit, kelvin), " +
						"weight (kg, lb, oz, g), volume (cup, ml, liter, gallon, tbsp, tsp), " +
						"distance (km, mile, meter, feet, inch, cm), " +
						"speed (mph, kph, m/s), and time (seconds, minutes, hours, days). " +
						"Accepts common aliases (e.g., 'c' for celsius, 'lbs' for pounds).",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"value":     numberProp("Numeric value to convert."),
						"from_unit": stringProp("Source unit (e.g., 'celsius', 'kg', 'miles', 'cup')."),
						"to_unit":   stringProp("Target unit (e.g., 'fahrenheit', 'lb', 'km', 'ml')."),
					}, "value", "from_unit", "to_unit"),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					fromUnit := argString(args, "from_unit", "")
					toUnit := argString(args, "to_unit", "")
					if _, ok := args["value"]; !ok {
						return "", domain.Errorf(domain.CodeInvalidArguments, "tools.convert", "value is required")
					}
					value := argFloat(args, "value", 0)

					result, err := convert.Convert(value, fromUnit, toUnit)
					if err != nil {
						return "", err
					}
					return marshalIndent(map[string]any{
						"result":    math.Round(result*1e6) / 1e6,
						"value":     value,
						"from_unit": fromUnit,
						"to_unit":   toUnit,
					})
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name: "unit_list",
					Description: "List all supported unit categories and their canonical unit names. " +
						"Useful for discovering what conversions are available.",
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					return marshalIndent(convert.SupportedUnits())
				},
			},
		},
	}
}
