package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind says which side of the budget a transaction is on.
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	// TimestampLayout is how timestamps are shown to users and in exports.
	TimestampLayout = "2006-01-02 15:04:05"

	// MonthLayout is the key format of monthly breakdowns.
	MonthLayout = "2006-01"

	// NoDescription stands in for an empty description.
	NoDescription = "N/A"

	// OtherLabel is the catch all category / source.
	OtherLabel = "Other"
)

var (
	// Categories offered for expenses. "Other" lets the user type a custom title.
	Categories = []string{"Food", "Rent", "Entertainment", "Utilities", OtherLabel}

	// Sources offered for income.
	Sources = []string{"Salary", "Freelance", "Investments", "Gift", OtherLabel}
)

// ParseKind accepts "income" or "expense" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Validate()
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
}

// String returns the display form, "Income" or "Expense".
func (k Kind) String() string {
	switch k {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	}
	return string(k)
}

// Transaction is a single recorded income or expense. Once appended to a
// Ledger it is never changed.
type Transaction struct {
	ID string `json:"id"`

	// set by the ledger when the transaction is recorded, second precision
	Timestamp time.Time `json:"timestamp"`

	Kind   Kind  `json:"kind"`
	Amount Money `json:"amount"`

	// category (expense) or source (income)
	Label string `json:"label"`

	Description string `json:"description"`

	// other people sharing an expense; annotation only, amounts are not divided
	SplitWith []string `json:"split_with,omitempty"`
}

// IncomeRequest is what a user submits to record income.
type IncomeRequest struct {
	Amount      Money
	Source      string
	Description string
}

// ExpenseRequest is what a user submits to record an expense.
type ExpenseRequest struct {
	Amount   Money
	Category string

	// used as the label when Category is "Other"
	CustomTitle string

	Description string
	SplitWith   []string
}

// Label resolves the category an expense is filed under.
func (r ExpenseRequest) Label() string {
	title := strings.TrimSpace(r.CustomTitle)
	category := labelOrOther(r.Category)
	if category == OtherLabel && title != "" {
		return title
	}
	return category
}

// NewIncome builds an income transaction stamped at the given time.
func NewIncome(at time.Time, req IncomeRequest) (Transaction, error) {
	return newTransaction(at, Income, req.Amount, labelOrOther(req.Source), req.Description, nil)
}

// NewExpense builds an expense transaction stamped at the given time.
func NewExpense(at time.Time, req ExpenseRequest) (Transaction, error) {
	return newTransaction(at, Expense, req.Amount, req.Label(), req.Description, NormalizeNames(req.SplitWith))
}

func newTransaction(at time.Time, kind Kind, amount Money, label, desc string, split []string) (Transaction, error) {
	t := Transaction{
		ID:          uuid.NewString(),
		Timestamp:   at.Round(0).Truncate(time.Second),
		Kind:        kind,
		Amount:      amount,
		Label:       label,
		Description: descriptionOrDefault(desc),
		SplitWith:   split,
	}
	return t, t.Validate()
}

// Validate checks the invariants every logged transaction holds.
func (t Transaction) Validate() error {
	if t.Timestamp.IsZero() {
		return ErrMissingTime
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Label) == "" {
		return ErrEmptyLabel
	}
	return nil
}

// Month returns the "YYYY-MM" key the transaction falls in.
func (t Transaction) Month() string {
	return t.Timestamp.Format(MonthLayout)
}

// String renders the transaction for display:
//
//	2024-03-05 10:00:00 - Expense: $12.50 - Food - lunch (Split: Ann, Bob)
//
// This is for people to read. It is never parsed back into a Transaction.
func (t Transaction) String() string {
	line := fmt.Sprintf(
		"%s - %s: %s - %s - %s",
		t.Timestamp.Format(TimestampLayout),
		t.Kind,
		t.Amount.Dollars(),
		t.Label,
		t.Description,
	)
	if len(t.SplitWith) > 0 {
		line += fmt.Sprintf(" (Split: %s)", strings.Join(t.SplitWith, ", "))
	}
	return line
}

func (t *Transaction) JSON() ([]byte, error) {
	return json.Marshal(t)
}

// NormalizeNames trims names, drops empty ones and keeps only the first
// occurrence of each, preserving order.
func NormalizeNames(in []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func labelOrOther(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return OtherLabel
	}
	return s
}

func descriptionOrDefault(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoDescription
	}
	return s
}
