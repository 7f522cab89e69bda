package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/voidshard/budget/pkg/crypto"
	"github.com/voidshard/budget/pkg/domain"
	"github.com/voidshard/budget/pkg/export"
	"github.com/voidshard/budget/pkg/ledger"
	"github.com/voidshard/budget/pkg/report"
)

const overBudgetWarning = "Warning: Expenses exceed income!"

type incomeCmd struct {
	Amount      string `arg:"" help:"Amount, eg. 12.50"`
	Source      string `default:"Other" help:"Where the money came from [${sources}]."`
	Description string `short:"d" help:"Optional note."`
}

func (c *incomeCmd) Run(g *globals, a *app) error {
	amount, err := parseAmount(c.Amount)
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, _, err := g.open(ctx, a)
	if err != nil {
		return err
	}
	defer s.Close()

	tx, err := s.RecordIncome(ctx, domain.IncomeRequest{Amount: amount, Source: c.Source, Description: c.Description})
	return recorded(a, s, tx, err)
}

type expenseCmd struct {
	Amount      string   `arg:"" help:"Amount, eg. 12.50"`
	Category    string   `short:"c" default:"Other" help:"Category [${categories}]."`
	Title       string   `short:"t" help:"Title used instead of the category when the category is Other."`
	Description string   `short:"d" help:"Optional note."`
	Split       []string `short:"s" sep:"," help:"Names of people sharing this expense, comma separated."`
}

func (c *expenseCmd) Run(g *globals, a *app) error {
	amount, err := parseAmount(c.Amount)
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, _, err := g.open(ctx, a)
	if err != nil {
		return err
	}
	defer s.Close()

	tx, err := s.RecordExpense(ctx, domain.ExpenseRequest{
		Amount:      amount,
		Category:    c.Category,
		CustomTitle: c.Title,
		Description: c.Description,
		SplitWith:   c.Split,
	})
	return recorded(a, s, tx, err)
}

func parseAmount(s string) (domain.Money, error) {
	amount, err := domain.ParseMoney(s)
	if err != nil {
		return amount, fmt.Errorf("please enter a valid positive amount: %w", err)
	}
	return amount, nil
}

// recorded reports a new transaction. A failed save still recorded the
// transaction for this run, so it is shown along with the error.
func recorded(a *app, s *ledger.Store, tx domain.Transaction, err error) error {
	if tx.ID == "" {
		return err
	}
	fmt.Fprintf(a.out, "Recorded: %s\n", tx)
	if s.IsOverBudget() {
		fmt.Fprintln(a.out, overBudgetWarning)
	}
	if err != nil {
		return fmt.Errorf("transaction was not saved: %w", err)
	}
	return nil
}

type summaryCmd struct{}

func (c *summaryCmd) Run(g *globals, a *app) error {
	s, _, err := g.open(context.Background(), a)
	if err != nil {
		return err
	}
	defer s.Close()

	l := s.Ledger()
	sum := report.Summarize(l)
	fmt.Fprintf(a.out, "Total Income: %s\n", sum.Income.Dollars())
	fmt.Fprintf(a.out, "Total Expenses: %s\n", sum.Expenses.Dollars())
	fmt.Fprintf(a.out, "Balance: %s\n", sum.Balance.Dollars())

	totals := report.Categories(l)
	if len(totals) > 0 {
		fmt.Fprintln(a.out, "\nSpending by Category:")
		for _, label := range report.SortedLabels(totals) {
			fmt.Fprintf(a.out, "  %s: %s\n", label, totals[label].Dollars())
		}
	}
	if l.IsOverBudget() {
		fmt.Fprintln(a.out, overBudgetWarning)
	}
	return nil
}

type historyCmd struct {
	Last int `short:"n" help:"Only show the most recent N transactions."`
}

func (c *historyCmd) Run(g *globals, a *app) error {
	s, _, err := g.open(context.Background(), a)
	if err != nil {
		return err
	}
	defer s.Close()

	txs := s.Ledger().Transactions
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions recorded.")
		return nil
	}
	if c.Last > 0 && c.Last < len(txs) {
		txs = txs[len(txs)-c.Last:]
	}
	export.TransactionTable(a.out, txs)
	return nil
}

type categoriesCmd struct{}

func (c *categoriesCmd) Run(g *globals, a *app) error {
	s, _, err := g.open(context.Background(), a)
	if err != nil {
		return err
	}
	defer s.Close()

	totals := report.Categories(s.Ledger())
	if len(totals) == 0 {
		fmt.Fprintln(a.out, "No expenses to display!")
		return nil
	}
	export.CategoryTable(a.out, totals)
	return nil
}

type namesCmd struct{}

func (c *namesCmd) Run(g *globals, a *app) error {
	s, _, err := g.open(context.Background(), a)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, name := range s.KnownSplitNames() {
		fmt.Fprintln(a.out, name)
	}
	return nil
}

type monthlyCmd struct {
	Chart string `help:"Also draw a pie chart of one month's spending to this PNG file."`
	Month string `help:"Month to chart, YYYY-MM. Defaults to the latest month."`
	Table bool   `help:"Print a table instead of one line per month."`
}

func (c *monthlyCmd) Run(g *globals, a *app) error {
	s, log, err := g.open(context.Background(), a)
	if err != nil {
		return err
	}
	defer s.Close()

	m, err := report.MonthlyBreakdown(s.Ledger())
	if err != nil {
		log.Warn("some transactions were left out of the monthly summary", "error", err)
	}
	if len(m) == 0 {
		fmt.Fprintln(a.out, "No transactions recorded.")
		return nil
	}

	if c.Table {
		export.MonthlyTable(a.out, m)
	} else if err := report.WriteMonthly(a.out, m); err != nil {
		return err
	}

	if c.Chart == "" {
		return nil
	}
	month := c.Month
	if month == "" {
		month, _ = report.LatestMonth(m)
	}
	detail, ok := m[month]
	if !ok {
		return fmt.Errorf("no transactions in %s", month)
	}
	return drawChart(a, c.Chart, "Spending for "+month, detail.Categories)
}

type chartCmd struct {
	Out string `arg:"" optional:"" default:"spending_chart.png" help:"PNG file to write."`
}

func (c *chartCmd) Run(g *globals, a *app) error {
	s, _, err := g.open(context.Background(), a)
	if err != nil {
		return err
	}
	defer s.Close()

	return drawChart(a, c.Out, "Spending Distribution", report.Categories(s.Ledger()))
}

func drawChart(a *app, path, title string, totals map[string]domain.Money) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = export.PieChart(f, title, totals)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if errors.Is(err, export.ErrNothingToChart) {
		os.Remove(path)
		fmt.Fprintln(a.out, "No expenses to display!")
		return nil
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	fmt.Fprintf(a.out, "Chart saved to %s\n", path)
	return nil
}

type exportCmd struct {
	Format string `short:"f" default:"csv" enum:"csv,pdf,json,txt" help:"File format [csv pdf json txt]."`
	Out    string `short:"o" help:"File to write. Defaults to budget_export_<time>.<format>."`
	To     string `help:"Export somewhere other than a file [es8:http://myelasticsearch:9200]."`
	Totals bool   `help:"Include income, expense and category totals."`
}

func (c *exportCmd) Run(g *globals, a *app) error {
	ctx := context.Background()
	s, log, err := g.open(ctx, a)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := []export.Option{export.WithTime(a.now())}
	if c.Totals {
		opts = append(opts, export.WithTotals())
	}

	var sink export.Sink
	if c.To != "" {
		sink, err = export.OpenSink(c.To, log, opts...)
		if err != nil {
			return err
		}
	} else {
		format, err := export.ParseFormat(c.Format)
		if err != nil {
			return err
		}
		out := c.Out
		if out == "" {
			out = export.DefaultFilename(format, a.now())
		}
		sink = export.NewFile(out, format, opts...)
	}

	if err := sink.Write(ctx, s.Ledger()); err != nil {
		return fmt.Errorf("export to %s: %w", sink, err)
	}
	fmt.Fprintf(a.out, "Data exported to %s!\n", sink)
	return nil
}

type clearCmd struct {
	Yes bool `help:"Confirm that all data should be deleted. This can't be undone."`
}

func (c *clearCmd) Run(g *globals, a *app) error {
	if !c.Yes {
		return errors.New("this deletes all recorded data, rerun with --yes to confirm")
	}

	ctx := context.Background()
	s, _, err := g.open(ctx, a)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "All data cleared.")
	return nil
}

type keygenCmd struct{}

func (c *keygenCmd) Run(a *app) error {
	enc, err := crypto.NewRandomKey()
	if err != nil {
		return err
	}
	sig, err := crypto.NewRandomKey()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "BUDGET_ENCRYPTION_KEY=%s\nBUDGET_SIGNING_KEY=%s\n", enc, sig)
	return nil
}
