package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/deusflow/newsdesk/internal/news"
)

// writePDF renders a plain list with the core Helvetica font. Characters
// outside Latin-1 cannot be drawn by core fonts and come out as "?".
func writePDF(w io.Writer, items []news.Item, meta Meta) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, latin1(tr, meta.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s, %d items", meta.Generated.Format("2006-01-02 15:04"), len(items)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for i, n := range items {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 5, latin1(tr, fmt.Sprintf("%d. %s", i+1, n.Title)), "", "L", false)

		pdf.SetFont("Helvetica", "", 8)
		line := strings.Join(nonEmpty(formatDate(n), n.Source, n.Category, n.Sentiment), " | ")
		pdf.MultiCell(0, 4, latin1(tr, line), "", "L", false)

		summary := n.Summary
		if n.AISummary != "" {
			summary = n.AISummary
		}
		if summary != "" {
			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(0, 4.5, latin1(tr, summary), "", "L", false)
		}
		pdf.SetFont("Helvetica", "U", 8)
		pdf.SetTextColor(0, 0, 180)
		pdf.MultiCell(0, 4, latin1(tr, n.Link), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(3)
	}
	return pdf.Output(w)
}

func latin1(tr func(string) string, s string) string {
	var b strings.Builder
	for _, r := range s {
		if r > 0xFF {
			b.WriteByte('?')
			continue
		}
		b.WriteRune(r)
	}
	return tr(b.String())
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
