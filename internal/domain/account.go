package domain

import (
	"fmt"
	"strings"
)

// AccountType distinguishes bank accounts from credit cards.
type AccountType string

const (
	AccountTypeBank       AccountType = "BANK"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
)

// ParseAccountType accepts BANK / CREDIT_CARD in any case, plus the short
// forms "bank" and "card".
func ParseAccountType(s string) (AccountType, error) {
	switch normalizeToken(s) {
	case "BANK":
		return AccountTypeBank, nil
	case "CREDIT_CARD", "CREDITCARD", "CARD":
		return AccountTypeCreditCard, nil
	default:
		return "", fmt.Errorf("ParseAccountType: unknown account type %q", s)
	}
}

// Account is a user-defined bank account or card that reports attach to.
type Account struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Type  AccountType `json:"type"`
	Color string      `json:"color"`
}

// UnknownAccountName is shown for reports whose account no longer exists.
const UnknownAccountName = "Unknown Account"

// FindAccount returns the account with the given id.
func FindAccount(accounts []Account, id string) (Account, bool) {
	for _, a := range accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

func normalizeToken(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.ReplaceAll(strings.ReplaceAll(s, "-", "_"), " ", "_")
}
