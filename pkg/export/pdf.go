package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/voidshard/budget/pkg/domain"
	"github.com/voidshard/budget/pkg/report"
)

const (
	pdfFont      = "Helvetica"
	pdfMargin    = 15.0
	pdfLine      = 6.0
	pdfPageWidth = 180.0 // A4 less margins
)

var pdfColumns = []struct {
	title string
	width float64
}{
	{"Timestamp", 36},
	{"Type", 18},
	{"Amount", 22},
	{"Title/Source", 34},
	{"Description", 42},
	{"Splits", 28},
}

func renderPDF(w io.Writer, l *domain.Ledger, o *options) error {
	return buildPDF(l, o).Output(w)
}

// buildPDF lays the report out on A4 pages. The column header is repeated at
// the top of every page and a new page starts when the current one is full.
func buildPDF(l *domain.Ledger, o *options) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetCreationDate(o.now)
	pdf.SetTitle("Budget Report", false)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}
		tableHeader(pdf)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 10, "Budget Report", "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", 10)
	pdf.CellFormat(0, pdfLine, "Generated "+o.now.Format(domain.TimestampLayout), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	sum := report.Summarize(l)
	pdf.SetFont(pdfFont, "B", 11)
	for _, line := range []string{
		"Total Income: " + sum.Income.Dollars(),
		"Total Expenses: " + sum.Expenses.Dollars(),
		"Balance: " + sum.Balance.Dollars(),
	} {
		pdf.CellFormat(0, pdfLine, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(l.Transactions) == 0 {
		pdf.SetFont(pdfFont, "", 10)
		pdf.CellFormat(0, pdfLine, "No transactions recorded.", "", 1, "L", false, 0, "")
	} else {
		tableHeader(pdf)
		pdf.SetFont(pdfFont, "", 8)
		for _, tx := range l.Transactions {
			row := []string{
				tx.Timestamp.Format(domain.TimestampLayout),
				tx.Kind.String(),
				tx.Amount.Dollars(),
				tx.Label,
				tx.Description,
				splits(tx),
			}
			for i, col := range pdfColumns {
				pdf.CellFormat(col.width, pdfLine, tr(fit(pdf, tr, row[i], col.width)), "B", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if o.totals && len(l.ExpenseTotals) > 0 {
		pdf.Ln(4)
		pdf.SetFont(pdfFont, "B", 11)
		pdf.CellFormat(0, pdfLine, "Spending by Category", "", 1, "L", false, 0, "")
		pdf.SetFont(pdfFont, "", 10)
		for _, label := range report.SortedLabels(l.ExpenseTotals) {
			pdf.CellFormat(pdfPageWidth/2, pdfLine, tr(label), "B", 0, "L", false, 0, "")
			pdf.CellFormat(pdfPageWidth/2, pdfLine, l.ExpenseTotals[label].Dollars(), "B", 1, "R", false, 0, "")
		}
	}

	return pdf
}

func tableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont(pdfFont, "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, pdfLine+1, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(pdfFont, "", 8)
}

// fit cuts the UTF-8 string s down until it fits in width once translated,
// marking the cut with "..".
func fit(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(tr(s)) <= limit {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(tr(string(r)+"..")) > limit {
		r = r[:len(r)-1]
	}
	return string(r) + ".."
}
