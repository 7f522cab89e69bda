package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/voidshard/budget/pkg/domain"
	"github.com/voidshard/budget/pkg/report"
)

type jsonExport struct {
	Generated    time.Time               `json:"generated"`
	Summary      report.Summary          `json:"summary"`
	Categories   map[string]domain.Money `json:"categories"`
	Transactions []domain.Transaction    `json:"transactions"`
}

func renderJSON(w io.Writer, l *domain.Ledger, o *options) error {
	out := jsonExport{
		Generated:    o.now,
		Summary:      report.Summarize(l),
		Categories:   report.Categories(l),
		Transactions: l.Transactions,
	}
	if out.Transactions == nil {
		out.Transactions = []domain.Transaction{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
