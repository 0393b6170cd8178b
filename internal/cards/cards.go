package cards

import (
	"errors"
	"strings"

	"github.com/dvloznov/finsight/internal/domain"
)

// MinNumberDigits is the shortest card number accepted by FromNumber.
const MinNumberDigits = 13

const (
	CardTypeCredit = "Credit"
	// MaskedLast4 marks a card added from search, with no number known.
	MaskedLast4 = "****"
)

// ErrCardNumberTooShort is returned for numbers under MinNumberDigits digits.
var ErrCardNumberTooShort = errors.New("cards: card number must have at least 13 digits")

// FromNumber builds a wallet card from a full card number. Only the last
// four digits are kept. The id is left empty for the store to assign.
func FromNumber(number string) (domain.SavedCard, error) {
	digits := Digits(number)
	if len(digits) < MinNumberDigits {
		return domain.SavedCard{}, ErrCardNumberTooShort
	}

	info := DetectCardInfo(digits)
	g := Colors(info.BankName)
	return domain.SavedCard{
		BankName:   info.BankName,
		Network:    info.Network,
		CardType:   CardTypeCredit,
		Last4:      digits[len(digits)-4:],
		ColorStart: g.Start,
		ColorEnd:   g.End,
	}, nil
}

// FromCandidate builds a wallet card from a card-search result.
func FromCandidate(c domain.CardCandidate) domain.SavedCard {
	g := Colors(c.Bank)
	return domain.SavedCard{
		BankName:   strings.TrimSpace(c.Bank),
		CardName:   strings.TrimSpace(c.Name),
		Network:    strings.TrimSpace(c.Network),
		CardType:   CardTypeCredit,
		Last4:      MaskedLast4,
		ColorStart: g.Start,
		ColorEnd:   g.End,
	}
}
