package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/logger"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

var errNoJSONArray = errors.New("no JSON array in response")

// FetchBankOffers asks the model, grounded with Google Search, for one
// page of offers matching query. Failures are logged and reported as an
// empty page.
func (c *Client) FetchBankOffers(ctx context.Context, query string, page int) []domain.BankOffer {
	log := logger.FromContext(ctx).With().Str("query", query).Int("page", page).Logger()
	if page < 1 {
		page = 1
	}

	items, err := c.searchArray(ctx, buildOffersPrompt(query, page))
	if err != nil {
		log.Error().Err(err).Msg("Fetch offers failed")
		return []domain.BankOffer{}
	}

	offers := make([]domain.BankOffer, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		o, ok := domain.DecodeOffer(obj)
		if !ok {
			continue
		}
		if strings.TrimSpace(o.ID) == "" {
			o.ID = uuid.NewString()
		}
		offers = append(offers, o)
	}

	log.Debug().Int("offers", len(offers)).Msg("Fetched offers")
	return offers
}

// FindCreditCards asks the model for card models matching query.
// Failures are logged and reported as an empty result.
func (c *Client) FindCreditCards(ctx context.Context, query string) []domain.CardCandidate {
	log := logger.FromContext(ctx).With().Str("query", query).Logger()

	items, err := c.searchArray(ctx, buildCardSearchPrompt(query))
	if err != nil {
		log.Error().Err(err).Msg("Find cards failed")
		return []domain.CardCandidate{}
	}

	found := make([]domain.CardCandidate, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if cand, ok := domain.DecodeCardCandidate(obj); ok {
			found = append(found, cand)
		}
	}
	return found
}

func (c *Client) searchArray(ctx context.Context, prompt string) ([]any, error) {
	text, err := c.generateText(ctx, genai.Text(prompt), searchConfig())
	if err != nil {
		return nil, err
	}
	body := extractArray(text)
	if body == "" {
		return nil, errNoJSONArray
	}
	return domain.DecodeJSONArray([]byte(body))
}
