package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dvloznov/finsight/internal/analytics"
	"github.com/dvloznov/finsight/internal/config"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/fees"
	"github.com/rs/zerolog"
)

// loadAnalysis aggregates every report, or only accountID's when set.
func loadAnalysis(cfg *config.Config, log zerolog.Logger, accountID string) domain.FinancialAnalysis {
	ctx, services := openApp(cfg, log)
	defer services.Close()

	data := services.Repo.Load(ctx)
	if accountID == "" {
		return analytics.Aggregate(data.Reports, data.Accounts)
	}
	if _, ok := domain.FindAccount(data.Accounts, accountID); !ok {
		log.Fatal().Str("account_id", accountID).Msg("Account not found")
	}
	return analytics.AggregateAccount(data.Reports, data.Accounts, accountID)
}

func runDashboard(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	accountID := fs.String("account", "", "Only this account")
	fs.Parse(args)

	printDashboard(os.Stdout, loadAnalysis(cfg, log, *accountID))
}

func runFees(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("fees", flag.ExitOnError)
	accountID := fs.String("account", "", "Only this account")
	fs.Parse(args)

	printFees(os.Stdout, fees.Analyze(loadAnalysis(cfg, log, *accountID).Transactions))
}

func runTransactions(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	accountID := fs.String("account", "", "Only this account")
	search := fs.String("search", "", "Match description, category or account name")
	typ := fs.String("type", "", "INCOME or EXPENSE")
	category := fs.String("category", "", "Exact category")
	month := fs.String("month", "", "Month, YYYY-MM")
	year := fs.String("year", "", "Year, YYYY")
	sortKey := fs.String("sort", "date", "date, description, amount, category, type or accountName")
	dir := fs.String("dir", "DESC", "ASC or DESC")
	group := fs.String("group", "NONE", "NONE, MONTH or CATEGORY")
	fs.Parse(args)

	key, err := analytics.ParseSortKey(*sortKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -sort")
	}
	direction, err := analytics.ParseSortDirection(*dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -dir")
	}
	mode, err := analytics.ParseGroupMode(*group)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -group")
	}

	txs := analytics.Query{
		Search:    *search,
		Type:      *typ,
		Category:  *category,
		Month:     *month,
		Year:      *year,
		SortKey:   key,
		Direction: direction,
	}.Apply(loadAnalysis(cfg, log, *accountID).Transactions)

	printGroups(os.Stdout, analytics.GroupTransactions(txs, mode))
}

func printDashboard(w io.Writer, a domain.FinancialAnalysis) {
	s := a.Summary
	fmt.Fprintf(w, "Period:        %s\n", a.StatementPeriod)
	fmt.Fprintf(w, "Income:        %s\n", s.TotalIncome.StringFixed(2))
	fmt.Fprintf(w, "Expenses:      %s\n", s.TotalExpense.StringFixed(2))
	fmt.Fprintf(w, "Net savings:   %s\n", s.NetSavings.StringFixed(2))
	fmt.Fprintf(w, "Top category:  %s\n", s.TopExpenseCategory)
	fmt.Fprintf(w, "Transactions:  %d\n", len(a.Transactions))

	if len(a.SavingsOpportunities) > 0 {
		fmt.Fprintln(w, "\nSavings opportunities:")
		for _, o := range a.SavingsOpportunities {
			fmt.Fprintf(w, "  [%s] %s (~%s/month)\n      %s\n", o.Impact, o.Title, o.EstimatedMonthlySavings.StringFixed(2), o.Description)
		}
	}
	if len(a.SpendingHabits) > 0 {
		fmt.Fprintln(w, "\nSpending habits:")
		for _, h := range a.SpendingHabits {
			fmt.Fprintf(w, "  - %s\n", h)
		}
	}
}

func printFees(w io.Writer, r fees.Report) {
	if !r.HasFees {
		fmt.Fprintln(w, "No fees found.")
		return
	}
	fmt.Fprintf(w, "Total fees:      %s\n", r.TotalFees.StringFixed(2))
	fmt.Fprintf(w, "Avoidable:       %s\n", r.AvoidableTotal.StringFixed(2))
	fmt.Fprintf(w, "Share of spend:  %s%%\n", r.FeePercentage.StringFixed(1))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nCATEGORY\tAMOUNT")
	for _, b := range r.Breakdown {
		fmt.Fprintf(tw, "%s\t%s\n", b.Category, b.Amount.StringFixed(2))
	}
	tw.Flush()
}

func printGroups(w io.Writer, groups []analytics.Group) {
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", g.Label, len(g.Transactions))

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, tx := range g.Transactions {
			sign := "-"
			if tx.IsIncome() {
				sign = "+"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s%s\t%s\n",
				tx.Date, tx.Description, tx.CategoryOrDefault(), sign, tx.Amount.StringFixed(2), tx.AccountName)
		}
		tw.Flush()
	}
}
