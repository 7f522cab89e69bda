// Package report derives read only views from a Ledger. Nothing here mutates
// or caches; every view is computed from the ledger it is given.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/voidshard/budget/pkg/domain"
)

// Summary is the lifetime position of a ledger.
type Summary struct {
	Income   domain.Money `json:"income"`
	Expenses domain.Money `json:"expenses"`
	Balance  domain.Money `json:"balance"`
}

func (s Summary) String() string {
	return fmt.Sprintf("Income: %s, Expenses: %s, Balance: %s", s.Income.Dollars(), s.Expenses.Dollars(), s.Balance.Dollars())
}

// Summarize totals the ledger. An empty ledger gives all zeros.
func Summarize(l *domain.Ledger) Summary {
	expenses := l.TotalExpenses()
	return Summary{
		Income:   l.TotalIncome,
		Expenses: expenses,
		Balance:  l.TotalIncome.Sub(expenses),
	}
}

// Categories returns a copy of the per label expense totals. It is empty when
// nothing has been spent, check before charting.
func Categories(l *domain.Ledger) map[string]domain.Money {
	out := make(map[string]domain.Money, len(l.ExpenseTotals))
	for k, v := range l.ExpenseTotals {
		out[k] = v
	}
	return out
}

// SortedLabels orders labels by amount, largest first, ties by name.
func SortedLabels(totals map[string]domain.Money) []string {
	labels := make([]string, 0, len(totals))
	for k := range totals {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := totals[labels[i]], totals[labels[j]]
		if a.Cents != b.Cents {
			return a.Cents > b.Cents
		}
		return labels[i] < labels[j]
	})
	return labels
}

// Month is the activity within one calendar month.
type Month struct {
	Income     domain.Money            `json:"income"`
	Expenses   domain.Money            `json:"expenses"`
	Balance    domain.Money            `json:"balance"`
	Categories map[string]domain.Money `json:"categories"`
}

// Monthly maps "YYYY-MM" to that month's activity. Months without
// transactions are absent.
type Monthly map[string]*Month

// MonthlyBreakdown walks the transaction log in order and groups it by the
// month of each timestamp.
//
// Entries that can't be classified are skipped; the returned error joins one
// *domain.EntryError per skipped entry and the breakdown is still complete for
// everything else.
func MonthlyBreakdown(l *domain.Ledger) (Monthly, error) {
	out := Monthly{}
	var errs []error

	for i, tx := range l.Transactions {
		if err := tx.Validate(); err != nil {
			errs = append(errs, &domain.EntryError{Index: i, Entry: tx.String(), Err: err})
			continue
		}

		key := tx.Month()
		m, ok := out[key]
		if !ok {
			m = &Month{Categories: map[string]domain.Money{}}
			out[key] = m
		}

		switch tx.Kind {
		case domain.Income:
			m.Income = m.Income.Add(tx.Amount)
		case domain.Expense:
			m.Categories[tx.Label] = m.Categories[tx.Label].Add(tx.Amount)
			m.Expenses = m.Expenses.Add(tx.Amount)
		}
		m.Balance = m.Income.Sub(m.Expenses)
	}

	return out, errors.Join(errs...)
}

// Months returns the keys in chronological order.
func (m Monthly) Months() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LatestMonth is the most recent month in the breakdown. "YYYY-MM" sorts
// lexically in time order.
func LatestMonth(m Monthly) (string, bool) {
	latest := ""
	for k := range m {
		if k > latest {
			latest = k
		}
	}
	return latest, latest != ""
}

// WriteMonthly prints one line per month, oldest first:
//
//	2024-03: Income: $100.00, Expenses: $20.00, Balance: $80.00
func WriteMonthly(w io.Writer, m Monthly) error {
	for _, k := range m.Months() {
		month := m[k]
		_, err := fmt.Fprintf(
			w, "%s: Income: %s, Expenses: %s, Balance: %s\n",
			k, month.Income.Dollars(), month.Expenses.Dollars(), month.Balance.Dollars(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
