package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dvloznov/finsight/internal/config"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/events"
	"github.com/dvloznov/finsight/internal/pipeline"
	"github.com/rs/zerolog"
)

func runAccounts(cfg *config.Config, log zerolog.Logger, args []string) {
	action, rest := subcommand(args, "list")

	fs := flag.NewFlagSet("accounts "+action, flag.ExitOnError)
	name := fs.String("name", "", "Account name (create)")
	typ := fs.String("type", "BANK", "Account type BANK or CREDIT_CARD (create)")
	id := fs.String("id", "", "Account ID (delete)")
	fs.Parse(rest)

	ctx, services := openApp(cfg, log)
	defer services.Close()

	switch action {
	case "list":
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tTYPE\tREPORTS")
		data := services.Repo.Load(ctx)
		for _, a := range data.Accounts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", a.ID, a.Name, a.Type, len(data.ReportsForAccount(a.ID)))
		}
		tw.Flush()

	case "create":
		if *name == "" {
			log.Fatal().Msg("Usage: finsight accounts create -name NAME [-type BANK|CREDIT_CARD]")
		}
		accountType, err := domain.ParseAccountType(*typ)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid account type")
		}
		account, err := services.Repo.CreateAccount(ctx, *name, accountType)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create account")
		}
		fmt.Printf("Created account %s (%s)\n", account.ID, account.Name)

	case "delete":
		if *id == "" {
			log.Fatal().Msg("Usage: finsight accounts delete -id ID")
		}
		data := services.Repo.Load(ctx)
		if _, ok := domain.FindAccount(data.Accounts, *id); !ok {
			log.Fatal().Str("account_id", *id).Msg("Account not found")
		}
		reports := data.ReportsForAccount(*id)

		if err := services.Repo.DeleteAccount(ctx, *id); err != nil {
			log.Fatal().Err(err).Msg("Failed to delete account")
		}
		for _, r := range reports {
			if err := pipeline.RemoveReport(ctx, services.Sinks, r.ID); err != nil {
				log.Warn().Err(err).Str("report_id", r.ID).Msg("Failed to remove exported report")
			}
		}
		e := events.New(events.AccountDeleted)
		e.AccountID = *id
		if err := services.Publisher.Publish(ctx, e); err != nil {
			log.Warn().Err(err).Msg("Failed to publish account deletion")
		}
		fmt.Printf("Deleted account %s and %d report(s)\n", *id, len(reports))

	default:
		log.Fatal().Str("action", action).Msg("Unknown accounts action (list, create, delete)")
	}
}

func runReports(cfg *config.Config, log zerolog.Logger, args []string) {
	action, rest := subcommand(args, "list")

	fs := flag.NewFlagSet("reports "+action, flag.ExitOnError)
	accountID := fs.String("account", "", "Only reports of this account (list)")
	id := fs.String("id", "", "Report ID (delete)")
	fs.Parse(rest)

	ctx, services := openApp(cfg, log)
	defer services.Close()

	switch action {
	case "list":
		data := services.Repo.Load(ctx)
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tACCOUNT\tFILE\tANALYSED\tTRANSACTIONS")
		for _, r := range data.ReportsForAccount(*accountID) {
			account := domain.UnknownAccountName
			if a, ok := domain.FindAccount(data.Accounts, r.AccountID); ok {
				account = a.Name
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", r.ID, account, r.FileName, r.AnalysisDate, len(r.Data.Transactions))
		}
		tw.Flush()

	case "delete":
		if *id == "" {
			log.Fatal().Msg("Usage: finsight reports delete -id ID")
		}
		var report *domain.SavedReport
		for _, r := range services.Repo.Reports(ctx, "") {
			if r.ID == *id {
				report = &r
				break
			}
		}
		if report == nil {
			log.Fatal().Str("report_id", *id).Msg("Report not found")
		}

		if err := services.Repo.DeleteReport(ctx, *id); err != nil {
			log.Fatal().Err(err).Msg("Failed to delete report")
		}
		if err := pipeline.RemoveReport(ctx, services.Sinks, *id); err != nil {
			log.Warn().Err(err).Msg("Failed to remove exported report")
		}
		e := events.New(events.ReportDeleted)
		e.AccountID = report.AccountID
		e.ReportID = report.ID
		e.FileName = report.FileName
		if err := services.Publisher.Publish(ctx, e); err != nil {
			log.Warn().Err(err).Msg("Failed to publish report deletion")
		}
		fmt.Printf("Deleted report %s (%s)\n", report.ID, report.FileName)

	default:
		log.Fatal().Str("action", action).Msg("Unknown reports action (list, delete)")
	}
}
