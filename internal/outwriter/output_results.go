package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/internal/parquet"
	"github.com/huangsam/repostats/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// metricColumnWidth covers the longest generated key, e.g.
// "4_weeks_programming_lines_changed_count_entropy".
const metricColumnWidth = 50

// skippedRepo is the JSON form of a repository without enough history.
type skippedRepo struct {
	Repo     string `json:"repo"`
	Commits  int    `json:"commits"`
	Required int    `json:"required"`
	Reason   string `json:"reason"`
}

// jsonResults is the document written for JSON output.
type jsonResults struct {
	Results []*schema.Record `json:"results"`
	Skipped []skippedRepo    `json:"skipped"`
}

// splitResults separates records from repositories that were skipped.
func splitResults(results []schema.AnalysisResult) (records []schema.AnalysisResult, skipped []skippedRepo) {
	for _, res := range results {
		if res.Insufficient != nil {
			skipped = append(skipped, skippedRepo{
				Repo:     res.Repo,
				Commits:  res.Insufficient.Commits,
				Required: res.Insufficient.Required,
				Reason:   res.Insufficient.Error(),
			})
			continue
		}
		if res.Record != nil {
			records = append(records, res)
		}
	}
	return records, skipped
}

// WriteResultsJSON writes one document with every record and every skipped repository.
// Floats are rounded to precision and non-finite values become null.
func WriteResultsJSON(w io.Writer, results []schema.AnalysisResult, precision int) error {
	records, skipped := splitResults(results)
	doc := jsonResults{
		Results: make([]*schema.Record, len(records)),
		Skipped: skipped,
	}
	for i, res := range records {
		doc.Results[i] = roundRecord(res.Record, precision)
	}
	if doc.Skipped == nil {
		doc.Skipped = []skippedRepo{}
	}
	return writeJSON(w, doc)
}

// resultColumns returns the union of record keys in first-seen order.
func resultColumns(records []schema.AnalysisResult) []string {
	seen := make(map[string]struct{})
	var columns []string
	for _, res := range records {
		for _, key := range res.Record.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}
	return columns
}

// writeResultsCSV writes one row per analyzed repository. Keys missing from a
// record are left empty.
func writeResultsCSV(w io.Writer, results []schema.AnalysisResult, precision int) error {
	records, _ := splitResults(results)
	columns := resultColumns(records)

	return writeCSVWithHeader(w, columns, func(cw *csv.Writer) error {
		row := make([]string, len(columns))
		for _, res := range records {
			for i, key := range columns {
				value, _ := res.Record.Get(key)
				row[i] = schema.FormatValue(value, precision)
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row for %s: %w", res.Repo, err)
			}
		}
		return nil
	})
}

// writeResultsParquet writes every record key as one long-form row.
func writeResultsParquet(w io.Writer, results []schema.AnalysisResult, precision int) error {
	records, _ := splitResults(results)
	var rows []parquet.ResultRow
	for _, res := range records {
		rows = append(rows, parquet.ConvertRecord(res.Repo, res.Record, precision)...)
	}
	return parquet.WriteResultRows(w, rows)
}

// writeResultsText renders a two-column table per repository followed by a summary line.
func writeResultsText(w io.Writer, results []schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	header := fmt.Sprint
	key := fmt.Sprint
	warn := fmt.Sprint
	if cfg.UseColors {
		header = contract.HeaderColor.Sprint
		key = contract.KeyColor.Sprint
		warn = contract.WarnColor.Sprint
	}
	valueWidth := getMaxColumnWidth(cfg, metricColumnWidth)

	skippedCount := 0
	for _, res := range results {
		if _, err := fmt.Fprintln(w, header(res.Repo)); err != nil {
			return err
		}
		if res.Insufficient != nil {
			skippedCount++
			if _, err := fmt.Fprintf(w, "%s\n\n", warn("skipped: "+res.Insufficient.Error())); err != nil {
				return err
			}
			continue
		}
		if res.Record == nil {
			continue
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Metric", "Value"})
		table.Configure(func(c *tablewriter.Config) {
			c.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight}
		})

		var data [][]string
		res.Record.Each(func(k string, v any) {
			value := contract.TruncatePath(schema.FormatValue(v, cfg.Precision), valueWidth)
			data = append(data, []string{key(k), value})
		})
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	analyzed := len(results) - skippedCount
	if _, err := fmt.Fprintf(w, "Analyzed %d repositories (%d skipped for insufficient history)\n", analyzed, skippedCount); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend)
	return err
}
