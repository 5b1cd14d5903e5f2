package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/schema"
	"github.com/olekukonko/tablewriter"
)

// categoryColumnWidth fits the longest category name plus padding.
const categoryColumnWidth = 14

// writeClassificationsText renders a Path/Category table and per-category totals.
func writeClassificationsText(w io.Writer, rows []schema.FileClassification, cfg *contract.Config) error {
	pathWidth := getMaxColumnWidth(cfg, categoryColumnWidth)
	counts := make(map[schema.FileCategory]int, len(schema.AllCategories))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Path", "Category"})
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{contract.TruncatePath(r.Path, pathWidth), string(r.Category)}
		counts[r.Category]++
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Classified %d files:", len(rows)); err != nil {
		return err
	}
	for _, cat := range schema.AllCategories {
		if _, err := fmt.Fprintf(w, " %s=%d", cat, counts[cat]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// writeClassificationsCSV writes a path,category row per file.
func writeClassificationsCSV(w io.Writer, rows []schema.FileClassification) error {
	return writeCSVWithHeader(w, []string{"path", "category"}, func(cw *csv.Writer) error {
		for _, r := range rows {
			if err := cw.Write([]string{r.Path, string(r.Category)}); err != nil {
				return err
			}
		}
		return nil
	})
}
