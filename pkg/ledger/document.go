package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voidshard/budget/pkg/domain"
)

const documentVersion = 2

// document is the persisted layout. Totals are written for readers of the
// file; on load they are rebuilt from the transactions.
type document struct {
	Version      int                     `json:"version"`
	Income       domain.Money            `json:"income"`
	Expenses     map[string]domain.Money `json:"expenses"`
	Transactions []json.RawMessage       `json:"transactions"`
	SplitNames   []string                `json:"split_names"`
}

type outDocument struct {
	Version      int                     `json:"version"`
	Income       domain.Money            `json:"income"`
	Expenses     map[string]domain.Money `json:"expenses"`
	Transactions []domain.Transaction    `json:"transactions"`
	SplitNames   []string                `json:"split_names"`
}

// decoded is the result of reading a document.
type decoded struct {
	ledger *domain.Ledger

	// entries that could not be used, each an *domain.EntryError
	skipped []error

	// stored totals differ from the ones rebuilt from the log
	mismatch bool

	// written by an older version
	legacy bool
}

func encode(l *domain.Ledger) ([]byte, error) {
	out := outDocument{
		Version:      documentVersion,
		Income:       l.TotalIncome,
		Expenses:     l.ExpenseTotals,
		Transactions: l.Transactions,
		SplitNames:   l.KnownSplitNames,
	}
	if out.Expenses == nil {
		out.Expenses = map[string]domain.Money{}
	}
	if out.Transactions == nil {
		out.Transactions = []domain.Transaction{}
	}
	if out.SplitNames == nil {
		out.SplitNames = []string{}
	}
	return json.MarshalIndent(out, "", "  ")
}

// decode reads a document. Bad entries are skipped and reported, only a
// document that is not JSON at all is an error.
func decode(data []byte, loc *time.Location) (*decoded, error) {
	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("invalid ledger document: %w", err)
	}

	res := &decoded{ledger: domain.NewLedger(), legacy: doc.Version < documentVersion}

	for i, raw := range doc.Transactions {
		tx, err := decodeEntry(raw, loc)
		if err == nil {
			err = res.ledger.Append(tx)
		}
		if err != nil {
			res.skipped = append(res.skipped, &domain.EntryError{Index: i, Entry: entryText(raw), Err: err})
		}
	}

	res.ledger.AddSplitNames(doc.SplitNames...)
	res.mismatch = !sameTotals(res.ledger, doc)
	return res, nil
}

func decodeEntry(raw json.RawMessage, loc *time.Location) (domain.Transaction, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var line string
		if err := json.Unmarshal(raw, &line); err != nil {
			return domain.Transaction{}, fmt.Errorf("%w: %v", domain.ErrUnparseableEntry, err)
		}
		return parseLine(line, loc)
	}

	tx := domain.Transaction{}
	if err := json.Unmarshal(raw, &tx); err != nil {
		return tx, fmt.Errorf("%w: %v", domain.ErrUnparseableEntry, err)
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.SplitWith = domain.NormalizeNames(tx.SplitWith)
	return tx, nil
}

func entryText(raw json.RawMessage) string {
	var line string
	if json.Unmarshal(raw, &line) == nil {
		return line
	}
	return string(raw)
}

func sameTotals(l *domain.Ledger, doc *document) bool {
	if l.TotalIncome != doc.Income || len(l.ExpenseTotals) != len(doc.Expenses) {
		return false
	}
	for k, v := range l.ExpenseTotals {
		if doc.Expenses[k] != v {
			return false
		}
	}
	return true
}
