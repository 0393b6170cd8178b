package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dvloznov/finsight/internal/app"
	"github.com/dvloznov/finsight/internal/config"
	"github.com/dvloznov/finsight/internal/logger"
	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	log := logger.NewWithLevel(cfg.LogLevel, cfg.LogJSON)

	args := os.Args[2:]
	switch os.Args[1] {
	case "accounts":
		runAccounts(cfg, log, args)
	case "upload":
		runUpload(cfg, log, args)
	case "reports":
		runReports(cfg, log, args)
	case "dashboard":
		runDashboard(cfg, log, args)
	case "fees":
		runFees(cfg, log, args)
	case "transactions":
		runTransactions(cfg, log, args)
	case "offers":
		runOffers(cfg, log, args)
	case "cards":
		runCards(cfg, log, args)
	case "export":
		runExport(cfg, log, args)
	case "migrate":
		runMigrate(cfg, log, args)
	case "hash-password":
		runHashPassword(log, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("FinSight CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  finsight <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  accounts       list | create -name NAME -type BANK|CREDIT_CARD | delete -id ID")
	fmt.Println("  upload         Analyse statement PDFs: upload -account ID [-archive] FILE...")
	fmt.Println("  reports        list [-account ID] | delete -id ID")
	fmt.Println("  dashboard      Aggregated summary [-account ID]")
	fmt.Println("  fees           Fee report [-account ID]")
	fmt.Println("  transactions   Filtered transaction list (see -h)")
	fmt.Println("  offers         Offer discovery [-mode my|all] [-term TEXT] [-pages N]")
	fmt.Println("  cards          list | search -q TEXT | add -number N | add-candidate -name -bank -network | delete -id ID")
	fmt.Println("  export         Push reports to BigQuery and Notion [-account ID]")
	fmt.Println("  migrate        Create the SQLite schema and BigQuery tables")
	fmt.Println("  hash-password  Print a bcrypt hash for AUTH_PASSWORD_HASH")
	fmt.Println("  help           Show this help message")
	fmt.Println("\nRun 'finsight <command> -h' for more information on a command.")
}

// openApp validates the configuration and builds the shared services.
// The returned context carries log.
func openApp(cfg *config.Config, log zerolog.Logger) (context.Context, *app.App) {
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := logger.WithContext(context.Background(), log)
	services, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	return ctx, services
}

// subcommand splits "accounts list -x" style arguments into the action
// and its flags. The action defaults to def.
func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 || len(args[0]) == 0 || args[0][0] == '-' {
		return def, args
	}
	return args[0], args[1:]
}
