// Package filter implements the configurable multi-stage image filter chain.
//
// A chain is an ordered list of named filter specs. Filters are applied in
// sequence, each consuming the previous output. Unknown filter names and
// filters that fail on the given input are logged and skipped: the chain
// is exploratory, so it always produces a result rather than a hard failure.
package filter

import (
	"sort"

	"micrograph-analyzer/internal/raster"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// Spec names one filter and its parameters.
type Spec struct {
	Name   string         `json:"name" yaml:"name"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Report records which filters in a chain ran and which were skipped.
type Report struct {
	Applied []string
	Skipped []string
}

// filterFunc transforms an image. It must not mutate src and must return a
// new Mat owned by the caller. Output is always 8-bit in the display range.
type filterFunc func(src gocv.Mat, p params) (gocv.Mat, error)

var registry = map[string]filterFunc{
	"gaussian_blur":          gaussianBlur,
	"median_filter":          medianFilter,
	"bilateral_filter":       bilateralFilter,
	"unsharp_mask":           unsharpMask,
	"sharpen":                sharpen,
	"edge_detection":         edgeDetection,
	"morphological_erosion":  morphologicalErosion,
	"morphological_dilation": morphologicalDilation,
	"morphological_opening":  morphologicalOpening,
	"morphological_closing":  morphologicalClosing,
	"fourier_low_pass":       fourierLowPass,
	"fourier_high_pass":      fourierHighPass,
	"fourier_band_pass":      fourierBandPass,
	"histogram_equalization": histogramEqualization,
	"adaptive_threshold":     adaptiveThreshold,
	"otsu_threshold":         otsuThreshold,
	"noise_reduction":        noiseReduction,
	"contrast_enhancement":   contrastEnhancement,
}

// Apply runs the filter chain over src and returns the final image along
// with a report of applied and skipped stages. src is never mutated; the
// caller owns the returned Mat. An error is returned only when the input
// image itself is unusable.
func Apply(log zerolog.Logger, src gocv.Mat, specs []Spec) (gocv.Mat, Report, error) {
	var report Report

	if err := raster.Validate(src); err != nil {
		return gocv.NewMat(), report, err
	}

	current := src.Clone()
	for _, spec := range specs {
		fn, ok := registry[spec.Name]
		if !ok {
			log.Warn().Str("filter", spec.Name).Msg("unsupported filter, skipping")
			report.Skipped = append(report.Skipped, spec.Name)
			continue
		}

		out, err := fn(current, params(spec.Params))
		if err != nil {
			log.Warn().Str("filter", spec.Name).Err(err).Msg("filter failed, skipping")
			report.Skipped = append(report.Skipped, spec.Name)
			continue
		}

		current.Close()
		current = out
		report.Applied = append(report.Applied, spec.Name)
		log.Debug().Str("filter", spec.Name).Msg("applied filter")
	}

	return current, report, nil
}

// Names returns the sorted list of supported filter names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultParams returns the documented default parameters for a filter,
// or nil for filters without tunable parameters or unknown names.
func DefaultParams(name string) map[string]any {
	switch name {
	case "gaussian_blur":
		return map[string]any{"kernel_size": 5, "sigma": 1.0}
	case "median_filter":
		return map[string]any{"kernel_size": 5}
	case "bilateral_filter":
		return map[string]any{"d": 15, "sigma_color": 75.0, "sigma_space": 75.0}
	case "unsharp_mask":
		return map[string]any{"kernel_size": 5, "sigma": 1.0, "amount": 1.0, "threshold": 0.0}
	case "sharpen":
		return map[string]any{"kernel_size": 3, "sigma": 1.0, "amount": 1.0}
	case "edge_detection":
		return map[string]any{"method": "canny", "low_threshold": 50.0, "high_threshold": 150.0}
	case "morphological_erosion", "morphological_dilation":
		return map[string]any{"kernel_size": 3, "iterations": 1}
	case "morphological_opening", "morphological_closing":
		return map[string]any{"kernel_size": 3}
	case "fourier_low_pass", "fourier_high_pass":
		return map[string]any{"cutoff_frequency": 30}
	case "fourier_band_pass":
		return map[string]any{"low_cutoff": 10, "high_cutoff": 50}
	case "adaptive_threshold":
		return map[string]any{"block_size": 11, "c": 2.0}
	case "noise_reduction":
		return map[string]any{"h": 10.0}
	case "contrast_enhancement":
		return map[string]any{"alpha": 1.5, "beta": 0.0}
	default:
		return nil
	}
}
