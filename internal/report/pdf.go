package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// PDF renders the markdown summary into a simple A4 PDF. The summary only
// uses headings, bullet lists, tables, and code fences, so a line-based
// rendering is enough.
func PDF(markdown string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)

	inCode := false
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inCode = !inCode
			if inCode {
				pdf.SetFont("Courier", "", 8)
			} else {
				pdf.SetFont("Arial", "", 9)
				pdf.Ln(2)
			}
			continue
		}
		if inCode {
			pdf.CellFormat(0, 4, line, "", 1, "L", false, 0, "")
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "# "):
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 8, strings.TrimPrefix(trimmed, "# "), "", 1, "L", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			pdf.Ln(2)
		case strings.HasPrefix(trimmed, "## "):
			pdf.Ln(2)
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(0, 7, strings.TrimPrefix(trimmed, "## "), "", 1, "L", false, 0, "")
			pdf.SetFont("Arial", "", 9)
		case strings.HasPrefix(trimmed, "### "):
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(0, 6, strings.TrimPrefix(trimmed, "### "), "", 1, "L", false, 0, "")
			pdf.SetFont("Arial", "", 9)
		case strings.HasPrefix(trimmed, "|"):
			if isTableRule(trimmed) {
				continue
			}
			pdf.CellFormat(0, 5, tableRowText(trimmed), "", 1, "L", false, 0, "")
		case strings.HasPrefix(trimmed, "- "):
			pdf.CellFormat(0, 5, "  - "+stripInlineMarkdown(strings.TrimPrefix(trimmed, "- ")), "", 1, "L", false, 0, "")
		case trimmed == "" || trimmed == "---":
			pdf.Ln(2)
		default:
			pdf.MultiCell(0, 5, stripInlineMarkdown(trimmed), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}
	return buf.Bytes(), nil
}

func isTableRule(line string) bool {
	return strings.Trim(line, "|- :") == ""
}

func tableRowText(line string) string {
	cells := strings.Split(strings.Trim(line, "|"), "|")
	for i, c := range cells {
		cells[i] = stripInlineMarkdown(strings.TrimSpace(c))
	}
	return strings.Join(cells, "   ")
}

func stripInlineMarkdown(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
