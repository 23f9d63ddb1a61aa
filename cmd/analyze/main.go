// Command analyze runs one analysis kind on a micrograph and writes the
// results as JSON, plus an annotated review image.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"micrograph-analyzer/internal/analysis"
	"micrograph-analyzer/internal/filter"
	"micrograph-analyzer/internal/logging"
	"micrograph-analyzer/internal/raster"
	"micrograph-analyzer/internal/version"
	"micrograph-analyzer/pkg/config"
)

func main() {
	imagePath := flag.String("image", "", "Path to micrograph (TIFF, PNG, or JPEG)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	kindName := flag.String("kind", "", "Analysis kind: "+kindList())
	configPath := flag.String("config", "", "Optional YAML configuration file")
	outPath := flag.String("out", "", "Write annotated image to this path")
	jsonPath := flag.String("json", "", "Write JSON results to this path (default stdout)")
	scale := flag.Float64("scale", 0, "Microns per pixel (overrides config)")
	overrideFlag := flag.String("set", "", "Parameter overrides, e.g. min_area=20,circularity_threshold=0.5")
	level := flag.String("level", "info", "Log level")
	flag.Parse()

	if *showVersion {
		fmt.Println("analyze " + version.String())
		return
	}

	if *imagePath == "" || *kindName == "" {
		fmt.Println("Usage: analyze -image <path> -kind <kind> [-config cfg.yaml] [-out annotated.png] [-set k=v,...]")
		fmt.Println("Kinds: " + kindList())
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *level != "info" {
		cfg.LogLevel = *level
	}
	log := logging.NewConsole(logging.ParseLevel(cfg.LogLevel))

	registry := analysis.NewRegistry(log)
	if err := cfg.Apply(registry); err != nil {
		fmt.Fprintf(os.Stderr, "Bad parameter override in config: %v\n", err)
		os.Exit(1)
	}

	overrides, err := parseOverrides(*overrideFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad -set value: %v\n", err)
		os.Exit(1)
	}

	src, err := raster.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()
	fmt.Printf("Loaded image: %dx%d pixels\n", src.Cols(), src.Rows())

	// Preprocessing filter chain, when configured.
	input := src
	if len(cfg.Filters) > 0 {
		filtered, report, err := filter.Apply(log, src, cfg.Filters)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Filter chain failed: %v\n", err)
			os.Exit(1)
		}
		defer filtered.Close()
		input = filtered
		fmt.Printf("Filters applied: %s\n", strings.Join(report.Applied, ", "))
		if len(report.Skipped) > 0 {
			fmt.Printf("Filters skipped: %s\n", strings.Join(report.Skipped, ", "))
		}
	}

	cal := cfg.Calibration
	if *scale > 0 {
		cal = analysis.Calibration{MicronsPerPixel: *scale}
	}

	analyzer := analysis.New(log, registry, cal)
	result, err := analyzer.Run(input, analysis.Kind(*kindName), overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}
	defer result.Close()

	fmt.Printf("Detected %d features\n", result.Count)
	for key, pct := range result.Percentages {
		fmt.Printf("  %s: %.2f%%\n", key, pct)
	}

	if *outPath != "" {
		if err := raster.Save(*outPath, result.Annotated); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write annotated image: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Annotated image written to %s\n", *outPath)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode results: %v\n", err)
		os.Exit(1)
	}
	if *jsonPath != "" {
		if err := os.WriteFile(*jsonPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write results: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Results written to %s\n", *jsonPath)
	} else {
		fmt.Println(string(data))
	}
}

func kindList() string {
	names := make([]string, 0, len(analysis.Kinds()))
	for _, k := range analysis.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

// parseOverrides parses "key=value,key=value" into analysis parameters.
func parseOverrides(s string) (analysis.Params, error) {
	if s == "" {
		return nil, nil
	}
	out := analysis.Params{}
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("value for %q is not a number: %v", key, err)
		}
		out[key] = f
	}
	return out, nil
}
