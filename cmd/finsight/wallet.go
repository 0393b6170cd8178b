package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dvloznov/finsight/internal/cards"
	"github.com/dvloznov/finsight/internal/config"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/offers"
	"github.com/rs/zerolog"
)

func runOffers(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("offers", flag.ExitOnError)
	modeFlag := fs.String("mode", "my", "my (wallet cards) or all")
	term := fs.String("term", "", "Free-text search in all mode")
	pages := fs.Int("pages", 1, "Result pages to load")
	fs.Parse(args)

	mode, err := offers.ParseMode(*modeFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -mode")
	}

	ctx, services := openApp(cfg, log)
	defer services.Close()

	if err := services.RequireAI(); err != nil {
		log.Fatal().Err(err).Msg("Offer search is unavailable")
	}

	feed := offers.NewFeed(services.AI)
	snap := feed.Search(ctx, mode, services.Repo.SavedCards(ctx), *term)
	for i := 1; i < *pages && snap.State == offers.StateResults; i++ {
		before := len(snap.Offers)
		snap = feed.LoadMore(ctx)
		if len(snap.Offers) == before {
			break
		}
	}

	printOffers(os.Stdout, snap)
}

func printOffers(w io.Writer, snap offers.Snapshot) {
	switch snap.State {
	case offers.StateEmptyWallet:
		fmt.Fprintln(w, "Your wallet is empty. Add a card with 'finsight cards add' or use -mode all.")
		return
	case offers.StateNoResults, offers.StateIdle:
		fmt.Fprintln(w, "No offers found.")
		return
	}

	fmt.Fprintf(w, "%d offer(s), %d page(s)\n\n", len(snap.Offers), snap.Page)
	for _, o := range snap.Offers {
		fmt.Fprintf(w, "%s | %s on %s [%s]\n", o.Bank, o.Title, o.Platform, o.Category)
		if o.Description != "" {
			fmt.Fprintf(w, "  %s\n", o.Description)
		}
		if o.Code != "" {
			fmt.Fprintf(w, "  Code: %s\n", o.Code)
		}
		if o.ValidTill != "" {
			fmt.Fprintf(w, "  Valid till: %s\n", o.ValidTill)
		}
		fmt.Fprintf(w, "  %s\n\n", offers.SearchURL(o))
	}
}

func runCards(cfg *config.Config, log zerolog.Logger, args []string) {
	action, rest := subcommand(args, "list")

	fs := flag.NewFlagSet("cards "+action, flag.ExitOnError)
	q := fs.String("q", "", "Card model search text (search)")
	number := fs.String("number", "", "Full card number; only the last four digits are kept (add)")
	name := fs.String("name", "", "Card name (add-candidate)")
	bank := fs.String("bank", "", "Issuing bank (add-candidate)")
	network := fs.String("network", "", "Card network (add-candidate)")
	id := fs.String("id", "", "Card ID (delete)")
	fs.Parse(rest)

	ctx, services := openApp(cfg, log)
	defer services.Close()

	switch action {
	case "list":
		printCards(os.Stdout, services.Repo.SavedCards(ctx))

	case "search":
		if *q == "" {
			log.Fatal().Msg("Usage: finsight cards search -q TEXT")
		}
		if err := services.RequireAI(); err != nil {
			log.Fatal().Err(err).Msg("Card search is unavailable")
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tBANK\tNETWORK")
		for _, c := range services.Catalog.Search(ctx, *q) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Bank, c.Network)
		}
		tw.Flush()

	case "add":
		card, err := cards.FromNumber(*number)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid card number")
		}
		saved, err := services.Repo.SaveCard(ctx, card)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to save card")
		}
		fmt.Printf("Added %s %s ending %s (%s)\n", saved.BankName, saved.Network, saved.Last4, saved.ID)

	case "add-candidate":
		if *name == "" {
			log.Fatal().Msg("Usage: finsight cards add-candidate -name NAME [-bank BANK] [-network NETWORK]")
		}
		saved, err := services.Repo.SaveCard(ctx, cards.FromCandidate(domain.CardCandidate{Name: *name, Bank: *bank, Network: *network}))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to save card")
		}
		fmt.Printf("Added %s (%s)\n", saved.DisplayName(), saved.ID)

	case "delete":
		if *id == "" {
			log.Fatal().Msg("Usage: finsight cards delete -id ID")
		}
		if err := services.Repo.DeleteCard(ctx, *id); err != nil {
			log.Fatal().Err(err).Msg("Failed to delete card")
		}
		fmt.Printf("Deleted card %s\n", *id)

	default:
		log.Fatal().Str("action", action).Msg("Unknown cards action (list, search, add, add-candidate, delete)")
	}
}

func printCards(w io.Writer, saved []domain.SavedCard) {
	if len(saved) == 0 {
		fmt.Fprintln(w, "No cards in the wallet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCARD\tNETWORK\tLAST4")
	for _, c := range saved {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.DisplayName(), c.Network, c.Last4)
	}
	tw.Flush()
}
