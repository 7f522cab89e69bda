/*Basic command structure*/
package main

import (
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/voidshard/budget/pkg/domain"
)

// cli commands / args available
type CLI struct {
	Globals globals `embed:""`

	Income     incomeCmd     `cmd:"" help:"Record income."`
	Expense    expenseCmd    `cmd:"" help:"Record an expense."`
	Summary    summaryCmd    `cmd:"" help:"Show total income, expenses and balance."`
	History    historyCmd    `cmd:"" help:"List recorded transactions."`
	Categories categoriesCmd `cmd:"" help:"Show spending per category."`
	Names      namesCmd      `cmd:"" help:"List everyone expenses have been split with."`
	Monthly    monthlyCmd    `cmd:"" help:"Show income, expenses and balance per month."`
	Chart      chartCmd      `cmd:"" help:"Draw a pie chart of spending per category."`
	Export     exportCmd     `cmd:"" help:"Export all transactions."`
	Clear      clearCmd      `cmd:"" help:"Delete all recorded data."`
	Keygen     keygenCmd     `cmd:"" help:"Print a new pair of encryption keys."`
}

// vars fill the ${...} placeholders in help text.
func vars() kong.Vars {
	return kong.Vars{
		"categories": strings.Join(domain.Categories, " "),
		"sources":    strings.Join(domain.Sources, " "),
	}
}

func main() {
	// a .env file is optional
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(
		&cli,
		kong.Name("budget"),
		kong.Description("Personal budget tracker."),
		kong.UsageOnError(),
		vars(),
	)
	err := ctx.Run(&cli.Globals, &app{out: os.Stdout, errOut: os.Stderr, now: time.Now})
	ctx.FatalIfErrorf(err)
}
