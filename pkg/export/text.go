package export

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/voidshard/budget/pkg/domain"
	"github.com/voidshard/budget/pkg/report"
)

// renderText writes plain text tables: transactions, then a summary.
func renderText(w io.Writer, l *domain.Ledger, o *options) error {
	if _, err := fmt.Fprintf(w, "Budget Report (%s)\n\n", o.now.Format(domain.TimestampLayout)); err != nil {
		return err
	}

	if len(l.Transactions) == 0 {
		if _, err := fmt.Fprintln(w, "No transactions recorded."); err != nil {
			return err
		}
	} else {
		TransactionTable(w, l.Transactions)
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	SummaryTable(w, l)

	if o.totals && len(l.ExpenseTotals) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		CategoryTable(w, l.ExpenseTotals)
	}
	return nil
}

// TransactionTable writes one row per transaction.
func TransactionTable(w io.Writer, txs []domain.Transaction) {
	table := newTable(w)
	table.SetHeader(csvHeader)
	for _, tx := range txs {
		table.Append([]string{
			tx.Timestamp.Format(domain.TimestampLayout),
			tx.Kind.String(),
			tx.Amount.Dollars(),
			tx.Label,
			tx.Description,
			splits(tx),
		})
	}
	table.Render()
}

func SummaryTable(w io.Writer, l *domain.Ledger) {
	sum := report.Summarize(l)

	table := newTable(w)
	table.SetHeader([]string{"Total Income", "Total Expenses", "Balance"})
	table.Append([]string{sum.Income.Dollars(), sum.Expenses.Dollars(), sum.Balance.Dollars()})
	table.Render()
}

// CategoryTable writes totals per label, largest first.
func CategoryTable(w io.Writer, totals map[string]domain.Money) {
	table := newTable(w)
	table.SetHeader([]string{"Category", "Amount"})
	for _, label := range report.SortedLabels(totals) {
		table.Append([]string{label, totals[label].Dollars()})
	}
	table.Render()
}

// MonthlyTable writes one row per month, oldest first.
func MonthlyTable(w io.Writer, m report.Monthly) {
	table := newTable(w)
	table.SetHeader([]string{"Month", "Income", "Expenses", "Balance"})
	for _, k := range m.Months() {
		month := m[k]
		table.Append([]string{k, month.Income.Dollars(), month.Expenses.Dollars(), month.Balance.Dollars()})
	}
	table.Render()
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}
