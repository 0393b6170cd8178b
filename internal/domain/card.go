package domain

// SavedCard is a card the user added to their wallet for offer discovery.
// It is independent of accounts and transactions.
type SavedCard struct {
	ID         string `json:"id"`
	BankName   string `json:"bankName"`
	CardName   string `json:"cardName,omitempty"`
	Network    string `json:"network"`
	CardType   string `json:"cardType"`
	Last4      string `json:"last4"`
	ColorStart string `json:"colorStart"`
	ColorEnd   string `json:"colorEnd"`
}

// DisplayName is the card name when known, otherwise the bank name.
func (c SavedCard) DisplayName() string {
	if c.CardName != "" {
		return c.CardName
	}
	return c.BankName
}

// CardCandidate is a card model returned by card search.
type CardCandidate struct {
	Name    string `json:"name"`
	Bank    string `json:"bank"`
	Network string `json:"network"`
}

// BankOffer is a merchant or bank promotion found by offer search.
type BankOffer struct {
	ID          string `json:"id"`
	Bank        string `json:"bank"`
	Platform    string `json:"platform"`
	LogoURL     string `json:"logoUrl,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code,omitempty"`
	Category    string `json:"category"`
	ValidTill   string `json:"validTill,omitempty"`
}

// Key identifies an offer across result pages.
func (o BankOffer) Key() string {
	return o.Bank + "-" + o.Title
}

// OfferCategoryOther is used when the model returns an unknown category.
const OfferCategoryOther = "Other"

// OfferCategories is the closed set offers are classified into.
var OfferCategories = []string{
	"Groceries",
	"Electronics",
	"Fuel",
	"Flights",
	"Hotels",
	"Dining Apps",
	"Fashion",
	"Entertainment",
	"Utility Bills",
	"Cabs/Travel",
	OfferCategoryOther,
}

func normalizeOfferCategory(s string) string {
	for _, c := range OfferCategories {
		if c == s {
			return c
		}
	}
	return OfferCategoryOther
}
