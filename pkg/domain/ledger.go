package domain

import (
	"fmt"
	"math"
)

// Ledger is the whole financial state of one user.
//
// Transactions is the source of truth; TotalIncome and ExpenseTotals are running
// sums over it and are kept in step by Append.
type Ledger struct {
	TotalIncome Money

	// cumulative expense amount per label
	ExpenseTotals map[string]Money

	// append only, in the order recorded
	Transactions []Transaction

	// everyone ever named on a split expense, in order of first appearance
	KnownSplitNames []string
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{ExpenseTotals: map[string]Money{}}
}

// Append adds a transaction to the log and updates the running totals.
func (l *Ledger) Append(t Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if l.ExpenseTotals == nil {
		l.ExpenseTotals = map[string]Money{}
	}

	t.SplitWith = append([]string(nil), t.SplitWith...)
	if len(t.SplitWith) == 0 {
		t.SplitWith = nil
	}

	switch t.Kind {
	case Income:
		if overflows(l.TotalIncome, t.Amount) {
			return fmt.Errorf("%w: total income would overflow", ErrInvalidAmount)
		}
	case Expense:
		if overflows(l.TotalExpenses(), t.Amount) {
			return fmt.Errorf("%w: total expenses would overflow", ErrInvalidAmount)
		}
	}

	switch t.Kind {
	case Income:
		l.TotalIncome = l.TotalIncome.Add(t.Amount)
	case Expense:
		l.ExpenseTotals[t.Label] = l.ExpenseTotals[t.Label].Add(t.Amount)
		l.AddSplitNames(t.SplitWith...)
	}

	l.Transactions = append(l.Transactions, t)
	return nil
}

// overflows reports if total + amount no longer fits in cents. Both are
// positive here, amounts are validated and totals only grow.
func overflows(total, amount Money) bool {
	return total.Cents > math.MaxInt64-amount.Cents
}

// AddSplitNames merges names into KnownSplitNames. Names are never removed.
func (l *Ledger) AddSplitNames(names ...string) {
	l.KnownSplitNames = NormalizeNames(append(l.KnownSplitNames, names...))
}

// TotalExpenses is the sum over all expense labels.
func (l *Ledger) TotalExpenses() Money {
	total := Money{}
	for _, v := range l.ExpenseTotals {
		total = total.Add(v)
	}
	return total
}

// Balance is income minus expenses, negative when overspent.
func (l *Ledger) Balance() Money {
	return l.TotalIncome.Sub(l.TotalExpenses())
}

// IsOverBudget reports if expenses exceed income.
func (l *Ledger) IsOverBudget() bool {
	return l.TotalExpenses().Cents > l.TotalIncome.Cents
}

// IsEmpty is true for a new or reset ledger.
func (l *Ledger) IsEmpty() bool {
	return len(l.Transactions) == 0 && l.TotalIncome.IsZero() && len(l.ExpenseTotals) == 0 && len(l.KnownSplitNames) == 0
}

// Reset drops everything, including known split names.
func (l *Ledger) Reset() {
	*l = *NewLedger()
}

// Clone returns a deep copy that shares nothing with l.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		TotalIncome:     l.TotalIncome,
		ExpenseTotals:   make(map[string]Money, len(l.ExpenseTotals)),
		Transactions:    make([]Transaction, len(l.Transactions)),
		KnownSplitNames: append([]string(nil), l.KnownSplitNames...),
	}
	for k, v := range l.ExpenseTotals {
		c.ExpenseTotals[k] = v
	}
	for i, t := range l.Transactions {
		t.SplitWith = append([]string(nil), t.SplitWith...)
		if len(t.SplitWith) == 0 {
			t.SplitWith = nil
		}
		c.Transactions[i] = t
	}
	return c
}
