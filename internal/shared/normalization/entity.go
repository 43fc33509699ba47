package normalization

import "strings"

// targetAliases maps accepted spellings of route targets to their canonical form.
var targetAliases = map[string]string{
	"intervals": "intervals",
	"driver":    "drivers",
	"drivers":   "drivers",
	"session":   "sessions",
	"sessions":  "sessions",
	"stint":     "stints",
	"stints":    "stints",
	"pits":      "pit",
	"pit":       "pit",
	"weather":   "weather",
}

// NormalizeEndpoint lowercases and trims an endpoint name and maps hyphens to underscores,
// so "Car-Data" and "car_data" name the same resource.
//
// Example:
//
//	NormalizeEndpoint(" Race-Control ") => "race_control"
func NormalizeEndpoint(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	return strings.ReplaceAll(trimmed, "-", "_")
}

// NormalizeTarget converts a route target spelling into its canonical name.
// Unknown names are returned normalized but otherwise unchanged.
func NormalizeTarget(raw string) string {
	normalized := NormalizeEndpoint(raw)
	if canonical, found := targetAliases[normalized]; found {
		return canonical
	}
	return normalized
}
