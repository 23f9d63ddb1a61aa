package analysis

import (
	apperr "micrograph-analyzer/internal/errors"
)

// Params holds one analysis kind's numeric thresholds and bounds.
// Boolean switches are encoded as 0/1.
type Params map[string]float64

// Value returns a parameter, or 0 when absent.
func (p Params) Value(key string) float64 {
	return p[key]
}

func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Config is an immutable snapshot of every kind's parameters. Overriding
// produces a new Config; existing snapshots are never mutated, so a
// snapshot taken at the start of a run stays valid for its whole duration.
type Config struct {
	version int
	kinds   map[Kind]Params
}

// DefaultConfig returns the built-in defaults for every analysis kind.
func DefaultConfig() Config {
	return Config{
		version: 1,
		kinds: map[Kind]Params{
			KindPorosity: {
				"min_area":              10,
				"max_area":              10000,
				"circularity_threshold": 0.3,
				"contrast_threshold":    0.1,
				"adaptive":              0,
			},
			KindPhases: {
				"n_clusters":       3,
				"min_area":         50,
				"smoothing_factor": 1.0,
			},
			KindInclusions: {
				"min_size":            5,
				"max_size":            500,
				"shape_threshold":     0.6,
				"intensity_threshold": 0.3,
			},
			KindGrainSize: {
				"min_grain_size":           5,
				"max_grain_size":           200,
				"detection_sensitivity":    0.5,
				"watershed_seed_threshold": 0.8,
			},
			KindDendritic: {
				"min_spacing":              10,
				"max_spacing":              500,
				"angle_threshold":          30,
				"line_detection_threshold": 0.1,
			},
			KindParticles: {
				"min_size":            2,
				"max_size":            100,
				"shape_threshold":     0.6,
				"intensity_threshold": 0.3,
			},
			KindNodularity: {
				"min_circularity":        0.7,
				"min_area":               20,
				"max_area":               10000,
				"shape_factor_threshold": 0.8,
			},
			KindFlakes: {
				"min_length":             10,
				"max_length":             500,
				"aspect_ratio_threshold": 3.0,
				"type_classification":    1,
			},
			KindCoating: {
				"min_thickness":         1,
				"max_thickness":         100,
				"detection_sensitivity": 0.5,
				"min_area":              100,
			},
		},
	}
}

// Version identifies this snapshot; it increases with every override.
func (c Config) Version() int {
	return c.version
}

// Kind returns a copy of one kind's parameters. Unknown kinds are rejected
// with a named parameter error, never silently ignored.
func (c Config) Kind(kind Kind) (Params, error) {
	p, ok := c.kinds[kind]
	if !ok {
		return nil, apperr.NewParameterError("unknown analysis kind %q", kind)
	}
	return p.clone(), nil
}

// WithOverrides returns a new Config with the overrides merged over the
// named kind's parameters. Overrides are partial: fields not named keep
// their current values. Unknown kinds, unknown fields, and inadmissible
// values are rejected and the receiver is left untouched.
func (c Config) WithOverrides(kind Kind, overrides Params) (Config, error) {
	current, ok := c.kinds[kind]
	if !ok {
		return Config{}, apperr.NewParameterError("unknown analysis kind %q", kind)
	}

	merged := current.clone()
	for key, value := range overrides {
		if _, known := current[key]; !known {
			return Config{}, apperr.NewParameterError("unknown parameter %q for analysis kind %q", key, kind)
		}
		merged[key] = value
	}
	if err := validateParams(kind, merged); err != nil {
		return Config{}, err
	}

	next := Config{version: c.version + 1, kinds: make(map[Kind]Params, len(c.kinds))}
	for k, p := range c.kinds {
		if k == kind {
			next.kinds[k] = merged
		} else {
			next.kinds[k] = p
		}
	}
	return next, nil
}

// boundPairs lists (lower, upper) parameter pairs that must stay ordered.
var boundPairs = [][2]string{
	{"min_area", "max_area"},
	{"min_size", "max_size"},
	{"min_grain_size", "max_grain_size"},
	{"min_spacing", "max_spacing"},
	{"min_length", "max_length"},
	{"min_thickness", "max_thickness"},
}

// ratioKeys are parameters constrained to [0, 1].
var ratioKeys = map[string]bool{
	"circularity_threshold":    true,
	"contrast_threshold":       true,
	"shape_threshold":          true,
	"intensity_threshold":      true,
	"min_circularity":          true,
	"detection_sensitivity":    true,
	"watershed_seed_threshold": true,
	"line_detection_threshold": true,
}

func validateParams(kind Kind, p Params) error {
	for key, value := range p {
		if value < 0 {
			return apperr.NewParameterError("parameter %q for kind %q must not be negative, got %g", key, kind, value)
		}
		if ratioKeys[key] && value > 1 {
			return apperr.NewParameterError("parameter %q for kind %q must be in [0,1], got %g", key, kind, value)
		}
	}
	for _, pair := range boundPairs {
		lo, hasLo := p[pair[0]]
		hi, hasHi := p[pair[1]]
		if hasLo && hasHi && lo > hi {
			return apperr.NewParameterError("parameter %q (%g) exceeds %q (%g) for kind %q", pair[0], lo, pair[1], hi, kind)
		}
	}
	if n, ok := p["n_clusters"]; ok && n < 2 {
		return apperr.NewParameterError("parameter n_clusters for kind %q must be at least 2, got %g", kind, n)
	}
	return nil
}
