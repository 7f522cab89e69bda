package ledger

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voidshard/budget/pkg/domain"
)

// Older data files stored each transaction only as a display line. These are
// the shapes that were written:
//
//	2024-03-05 10:00:00 - Expense: $12.50 - Food - lunch (Split: Ann, Bob)
//	2024-03-05 10:00:00 - Income: +$100.00
//	2024-03-05 10:00:00 - Food: -$12.50
var (
	lineFull    = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) - (Income|Expense): \$([0-9.]+) - (.+?) - (.*?)(?: \(Split: (.*)\))?$`)
	lineIncome  = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) - Income: \+\$([0-9.]+)$`)
	lineExpense = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) - (.+): -\$([0-9.]+)$`)
)

// parseLine turns a legacy display line into a Transaction.
func parseLine(line string, loc *time.Location) (domain.Transaction, error) {
	line = strings.TrimSpace(line)

	var (
		stamp, amount string
		tx            domain.Transaction
	)

	if m := lineFull.FindStringSubmatch(line); m != nil {
		kind, err := domain.ParseKind(m[2])
		if err != nil {
			return tx, fmt.Errorf("%w: %v", domain.ErrUnparseableEntry, err)
		}
		stamp, amount = m[1], m[3]
		tx.Kind = kind
		tx.Label = m[4]
		tx.Description = m[5]
		if m[6] != "" {
			tx.SplitWith = domain.NormalizeNames(strings.Split(m[6], ","))
		}
	} else if m := lineIncome.FindStringSubmatch(line); m != nil {
		stamp, amount = m[1], m[2]
		tx.Kind = domain.Income
		tx.Label = domain.OtherLabel
	} else if m := lineExpense.FindStringSubmatch(line); m != nil {
		stamp, amount = m[1], m[3]
		tx.Kind = domain.Expense
		tx.Label = m[2]
	} else {
		return tx, fmt.Errorf("%w: unrecognised format", domain.ErrUnparseableEntry)
	}

	ts, err := time.ParseInLocation(domain.TimestampLayout, stamp, loc)
	if err != nil {
		return tx, fmt.Errorf("%w: %v", domain.ErrUnparseableEntry, err)
	}
	money, err := domain.ParseMoney(amount)
	if err != nil {
		return tx, err
	}

	tx.ID = uuid.NewString()
	tx.Timestamp = ts
	tx.Amount = money
	if strings.TrimSpace(tx.Description) == "" {
		tx.Description = domain.NoDescription
	}
	return tx, nil
}
