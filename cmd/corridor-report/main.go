// Command corridor-report builds corridor profiles from segment and project
// layer files and writes the dashboard validation report.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"corridorcore/internal/core"
	"corridorcore/pkg/domain"
)

func main() {
	segmentsPath := flag.String("segments", "", "path to the segment layer JSON file (required)")
	projectsPath := flag.String("projects", "", "path to the project layer JSON file (optional)")
	format := flag.String("format", "csv", "output format: csv|json")
	outPath := flag.String("out", "", "output file (default stdout)")
	flag.Parse()

	if *segmentsPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *format != "csv" && *format != "json" {
		log.Fatalf("corridor-report: unsupported format %q", *format)
	}

	if err := run(*segmentsPath, *projectsPath, *format, *outPath); err != nil {
		log.Fatalf("corridor-report: %v", err)
	}
}

func run(segmentsPath, projectsPath, format, outPath string) error {
	ctx := context.Background()
	service := core.NewInMemoryService()

	segments, err := loadLayer(segmentsPath)
	if err != nil {
		return fmt.Errorf("load segments: %w", err)
	}
	if _, err := service.PutLayer(ctx, segments); err != nil {
		return fmt.Errorf("store segments: %w", err)
	}

	projectLayer := ""
	if projectsPath != "" {
		projects, err := loadLayer(projectsPath)
		if err != nil {
			return fmt.Errorf("load projects: %w", err)
		}
		if _, err := service.PutLayer(ctx, projects); err != nil {
			return fmt.Errorf("store projects: %w", err)
		}
		projectLayer = projects.Name
	}

	if _, _, err := service.BuildProfiles(ctx, segments.Name, projectLayer); err != nil {
		return fmt.Errorf("build profiles: %w", err)
	}
	report, err := service.ValidationReport(ctx)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	out := io.Writer(os.Stdout)
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Printf("close output: %v", err)
			}
		}()
		out = f
	}

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		return writeCSV(out, report)
	}
}

func loadLayer(path string) (domain.Layer, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return domain.Layer{}, err
	}
	var layer domain.Layer
	if err := json.Unmarshal(payload, &layer); err != nil {
		return domain.Layer{}, err
	}
	if layer.Name == "" {
		return domain.Layer{}, fmt.Errorf("layer in %s has no name", path)
	}
	return layer, nil
}

func writeCSV(out io.Writer, report core.Report) error {
	writer := csv.NewWriter(out)
	headers := make([]string, len(report.Columns))
	for i, column := range report.Columns {
		headers[i] = column.Name
	}
	if err := writer.Write(headers); err != nil {
		return err
	}
	for _, row := range report.Rows {
		record := make([]string, len(report.Columns))
		for i, column := range report.Columns {
			record[i] = row.Formatted[column.Name]
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
