package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/deusflow/newsdesk/internal/news"
)

func writeJSON(w io.Writer, items []news.Item, _ Meta) error {
	if items == nil {
		items = []news.Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(items)
}

// writeCSV starts with a UTF-8 BOM so spreadsheet apps detect Arabic text.
func writeCSV(w io.Writer, items []news.Item, _ Meta) error {
	if _, err := w.Write([]byte("\xEF\xBB\xBF")); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, n := range items {
		if err := cw.Write(row(n)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const sheet = "Sheet1"

func writeXLSX(w io.Writer, items []news.Item, _ Meta) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}

	for i, n := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(n)
		r := make([]interface{}, len(values))
		for j, v := range values {
			r[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	widths := map[string]float64{"A": 20, "B": 18, "C": 60, "D": 50, "E": 14, "F": 12, "G": 80}
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return f.Write(w)
}
