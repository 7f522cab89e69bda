package export

import (
	"encoding/csv"
	"io"

	"github.com/voidshard/budget/pkg/domain"
	"github.com/voidshard/budget/pkg/report"
)

var csvHeader = []string{"Timestamp", "Type", "Amount", "Title/Source", "Description", "Splits"}

func renderCSV(w io.Writer, l *domain.Ledger, o *options) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, tx := range l.Transactions {
		err := cw.Write([]string{
			tx.Timestamp.Format(domain.TimestampLayout),
			tx.Kind.String(),
			tx.Amount.String(),
			tx.Label,
			tx.Description,
			splits(tx),
		})
		if err != nil {
			return err
		}
	}

	if o.totals {
		sum := report.Summarize(l)
		rows := [][]string{
			{},
			{"Total Income", sum.Income.String()},
			{"Total Expenses", sum.Expenses.String()},
			{"Balance", sum.Balance.String()},
			{},
			{"Category", "Amount"},
		}
		for _, label := range report.SortedLabels(l.ExpenseTotals) {
			rows = append(rows, []string{label, l.ExpenseTotals[label].String()})
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
