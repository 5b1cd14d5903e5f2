// Package outwriter renders analysis results and file classifications as
// text tables, JSON, CSV or Parquet.
package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/schema"
)

// WriteResults outputs the analysis results, dispatching based on the output format configured.
func WriteResults(results []schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteResultsJSON(w, results, cfg.Precision)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultsCSV(w, results, cfg.Precision)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultsParquet(w, results, cfg.Precision)
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultsText(w, results, cfg, duration)
		}, "Wrote table")
	}
}

// WriteClassifications outputs file categories in the configured format.
func WriteClassifications(rows []schema.FileClassification, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeClassificationsCSV(w, rows)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for classifications")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeClassificationsText(w, rows, cfg)
		}, "Wrote table")
	}
}
