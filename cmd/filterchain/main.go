// Command filterchain applies a preprocessing filter chain to a micrograph
// and writes the result, for tuning filters before running analysis.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"micrograph-analyzer/internal/filter"
	"micrograph-analyzer/internal/logging"
	"micrograph-analyzer/internal/raster"
	"micrograph-analyzer/internal/version"
	"micrograph-analyzer/pkg/config"
)

func main() {
	imagePath := flag.String("image", "", "Path to micrograph (TIFF, PNG, or JPEG)")
	configPath := flag.String("config", "", "YAML configuration file with a filters section")
	chain := flag.String("filters", "", "Comma-separated filter names run with default parameters")
	outPath := flag.String("out", "filtered.png", "Output image path")
	level := flag.String("level", "info", "Log level")
	list := flag.Bool("list", false, "List available filters and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("filterchain " + version.String())
		return
	}

	if *list {
		for _, name := range filter.Names() {
			fmt.Printf("%-24s %v\n", name, filter.DefaultParams(name))
		}
		return
	}

	if *imagePath == "" || (*configPath == "" && *chain == "") {
		fmt.Println("Usage: filterchain -image <path> (-config cfg.yaml | -filters name,name,...) [-out filtered.png]")
		os.Exit(1)
	}

	log := logging.NewConsole(logging.ParseLevel(*level))

	var specs []filter.Spec
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		specs = cfg.Filters
	} else {
		for _, name := range strings.Split(*chain, ",") {
			specs = append(specs, filter.Spec{Name: strings.TrimSpace(name)})
		}
	}

	src, err := raster.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()
	fmt.Printf("Loaded image: %dx%d pixels\n", src.Cols(), src.Rows())

	out, report, err := filter.Apply(log, src, specs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Filter chain failed: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	fmt.Printf("Applied: %s\n", strings.Join(report.Applied, ", "))
	if len(report.Skipped) > 0 {
		fmt.Printf("Skipped: %s\n", strings.Join(report.Skipped, ", "))
	}

	if err := raster.Save(*outPath, out); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Filtered image written to %s\n", *outPath)
}
