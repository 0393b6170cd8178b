// Package offers builds offer-discovery queries, pages through results and
// caches card-model searches.
package offers

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dvloznov/finsight/internal/domain"
)

// Mode selects which offers are searched for.
type Mode string

const (
	// MyOffers searches offers for the cards in the wallet.
	MyOffers Mode = "MY_OFFERS"
	// AllOffers searches offers for a free-text term.
	AllOffers Mode = "ALL_OFFERS"
)

// ParseMode accepts "my", "all" and the canonical names, case-insensitively.
// Empty input is MyOffers.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "MY", string(MyOffers):
		return MyOffers, nil
	case "ALL", string(AllOffers):
		return AllOffers, nil
	default:
		return "", fmt.Errorf("ParseMode: unknown offers mode %q", s)
	}
}

// BuildQuery returns the search query for mode. ok is false in MyOffers
// mode with an empty wallet, when there is nothing to search for; see
// UnsearchableState for what to show then.
func BuildQuery(mode Mode, cards []domain.SavedCard, term string, now time.Time) (query string, ok bool) {
	if mode == MyOffers {
		if len(cards) == 0 {
			return "", false
		}
		return fmt.Sprintf("Current active offers for these specific credit cards: %s in %d.",
			strings.Join(cardNames(cards), ", "), now.Year()), true
	}

	if term = strings.TrimSpace(term); term != "" {
		return "Credit card offers for " + term, true
	}
	return fmt.Sprintf("Top trending credit card offers worldwide %d", now.Year()), true
}

// UnsearchableState is the state for a MyOffers search over an empty
// wallet. The empty-wallet prompt only replaces a blank search; with a
// term typed the user simply sees no results.
func UnsearchableState(term string) State {
	if strings.TrimSpace(term) != "" {
		return StateNoResults
	}
	return StateEmptyWallet
}

// cardNames returns the unique display names of cards in first-seen order.
func cardNames(cards []domain.SavedCard) []string {
	seen := make(map[string]struct{}, len(cards))
	names := make([]string, 0, len(cards))
	for _, c := range cards {
		name := c.DisplayName()
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Merge appends the offers from incoming whose bank-title key is not yet
// present, keeping order. existing is not modified.
func Merge(existing, incoming []domain.BankOffer) []domain.BankOffer {
	out := make([]domain.BankOffer, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, o := range existing {
		seen[o.Key()] = struct{}{}
		out = append(out, o)
	}
	for _, o := range incoming {
		if _, dup := seen[o.Key()]; dup {
			continue
		}
		seen[o.Key()] = struct{}{}
		out = append(out, o)
	}
	return out
}

// SearchURL links to a web search for the offer.
func SearchURL(o domain.BankOffer) string {
	q := fmt.Sprintf("%s %s %s offer", o.Bank, o.Platform, o.Title)
	return "https://www.google.com/search?q=" + url.QueryEscape(q)
}
