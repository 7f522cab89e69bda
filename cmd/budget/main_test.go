package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidshard/budget/pkg/domain"
)

type harness struct {
	t     *testing.T
	store string
	now   time.Time
}

func newHarness(t *testing.T) *harness {
	return &harness{
		t:     t,
		store: "jsonfile:" + filepath.Join(t.TempDir(), "budget_data.json"),
		now:   time.Date(2024, 3, 5, 10, 0, 0, 0, time.Local),
	}
}

// run executes one command line, as a separate process would.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()

	var cli CLI
	parser, err := kong.New(&cli, kong.Name("budget"), vars(), kong.Exit(func(int) { h.t.Fatal("unexpected exit") }))
	require.NoError(h.t, err)

	ctx, err := parser.Parse(append([]string{"--store", h.store}, args...))
	require.NoError(h.t, err)

	out := &bytes.Buffer{}
	a := &app{
		out:    out,
		errOut: &bytes.Buffer{},
		now: func() time.Time {
			h.now = h.now.Add(time.Minute)
			return h.now
		},
	}
	err = ctx.Run(&cli.Globals, a)
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, strings.Join(args, " "))
	return out
}

func TestIncomeAndExpense(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("income", "50", "--source", "Salary")
	assert.Contains(t, out, "Income: $50.00 - Salary - N/A")
	assert.NotContains(t, out, overBudgetWarning)

	out = h.mustRun("expense", "100", "--category", "Rent", "--split", "Ann,Bob")
	assert.Contains(t, out, "Expense: $100.00 - Rent - N/A (Split: Ann, Bob)")
	assert.Contains(t, out, overBudgetWarning)

	out = h.mustRun("summary")
	assert.Contains(t, out, "Total Income: $50.00")
	assert.Contains(t, out, "Total Expenses: $100.00")
	assert.Contains(t, out, "Balance: -$50.00")
	assert.Contains(t, out, "Rent: $100.00")

	assert.Equal(t, "Ann\nBob\n", h.mustRun("names"))
}

func TestHelpListsLabels(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("budget"), vars())
	require.NoError(t, err)

	help := func(cmd, flag string) string {
		for _, n := range parser.Model.Children {
			if n.Name != cmd {
				continue
			}
			for _, f := range n.Flags {
				if f.Name == flag {
					return f.Help
				}
			}
		}
		return ""
	}

	assert.Equal(t, "Category [Food Rent Entertainment Utilities Other].", help("expense", "category"))
	assert.Equal(t, "Where the money came from [Salary Freelance Investments Gift Other].", help("income", "source"))
}

func TestInvalidAmount(t *testing.T) {
	h := newHarness(t)

	for _, amount := range []string{"0", "abc", "0.001"} {
		_, err := h.run("income", amount)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, amount)
	}
	assert.Contains(t, h.mustRun("history"), "No transactions recorded.")
}

func TestExpenseCustomTitle(t *testing.T) {
	h := newHarness(t)
	h.mustRun("expense", "9", "--category", "Other", "--title", "Gym")

	out := h.mustRun("categories")
	assert.Contains(t, out, "Gym")
	assert.Contains(t, out, "$9.00")
}

func TestMonthly(t *testing.T) {
	h := newHarness(t)
	h.mustRun("income", "100")
	h.mustRun("expense", "20", "--category", "Food")
	h.now = time.Date(2024, 4, 1, 9, 0, 0, 0, time.Local)
	h.mustRun("expense", "5", "--category", "Food")

	chart := filepath.Join(t.TempDir(), "april.png")
	out := h.mustRun("monthly", "--chart", chart)
	assert.Equal(t,
		"2024-03: Income: $100.00, Expenses: $20.00, Balance: $80.00\n"+
			"2024-04: Income: $0.00, Expenses: $5.00, Balance: -$5.00\n"+
			"Chart saved to "+chart+"\n",
		out,
	)
	assert.FileExists(t, chart)

	_, err := h.run("monthly", "--chart", chart, "--month", "2023-01")
	assert.Error(t, err)
}

func TestChartWithoutExpenses(t *testing.T) {
	h := newHarness(t)
	h.mustRun("income", "100")

	chart := filepath.Join(t.TempDir(), "chart.png")
	assert.Equal(t, "No expenses to display!\n", h.mustRun("chart", chart))
	assert.NoFileExists(t, chart)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("income", "100")
	h.mustRun("expense", "20", "--category", "Food", "-d", "lunch")

	out := filepath.Join(t.TempDir(), "export.csv")
	assert.Equal(t, "Data exported to "+out+"!\n", h.mustRun("export", "--out", out, "--totals"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Expense,20.00,Food,lunch,")
	assert.Contains(t, string(data), "Total Income,100.00")
}

func TestClear(t *testing.T) {
	h := newHarness(t)
	h.mustRun("expense", "20", "--category", "Food", "--split", "Ann")

	_, err := h.run("clear")
	assert.Error(t, err)
	assert.Contains(t, h.mustRun("summary"), "Total Expenses: $20.00")

	assert.Equal(t, "All data cleared.\n", h.mustRun("clear", "--yes"))
	assert.Contains(t, h.mustRun("summary"), "Total Expenses: $0.00")
	assert.Empty(t, h.mustRun("names"))
}

func TestEncryptedStore(t *testing.T) {
	h := newHarness(t)

	keys := h.mustRun("keygen")
	env := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(keys), "\n") {
		bits := strings.SplitN(line, "=", 2)
		require.Len(t, bits, 2)
		env[bits[0]] = bits[1]
	}
	enc, sig := env["BUDGET_ENCRYPTION_KEY"], env["BUDGET_SIGNING_KEY"]
	require.NotEmpty(t, enc)
	require.NotEmpty(t, sig)

	h.mustRun("--encryption-key="+enc, "--signing-key="+sig, "income", "42")
	assert.Contains(t, h.mustRun("--encryption-key="+enc, "--signing-key="+sig, "summary"), "Total Income: $42.00")

	path := strings.TrimPrefix(h.store, "jsonfile:")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "42.00")

	_, err = h.run("--encryption-key="+enc, "income", "1")
	assert.Error(t, err)
}
