package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// The decoders in this file are the single boundary where untrusted JSON
// (model responses, persisted blobs) becomes domain values. They never
// fail on shape: wrong types default to zero values, non-object entries
// are dropped.

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decodeObject: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// DecodeJSONArray parses a JSON array whose elements may be anything.
// Numbers are kept as json.Number.
func DecodeJSONArray(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("DecodeJSONArray: %w", err)
	}
	return raw, nil
}

// DecodeJSONObject parses a JSON object. Numbers are kept as json.Number.
func DecodeJSONObject(data []byte) (map[string]any, error) {
	return decodeObject(data)
}

// DecodeAnalysis builds a FinancialAnalysis from a generic JSON object.
// The summary's NetSavings is re-derived rather than read.
func DecodeAnalysis(raw map[string]any) FinancialAnalysis {
	a := FinancialAnalysis{
		StatementPeriod:      getString(raw, "statementPeriod"),
		Transactions:         []Transaction{},
		SavingsOpportunities: []SavingsOpportunity{},
		SpendingHabits:       []string{},
	}

	for _, item := range getSlice(raw, "transactions") {
		if obj, ok := item.(map[string]any); ok {
			a.Transactions = append(a.Transactions, DecodeTransaction(obj))
		}
	}

	for _, item := range getSlice(raw, "savingsOpportunities") {
		if obj, ok := item.(map[string]any); ok {
			a.SavingsOpportunities = append(a.SavingsOpportunities, DecodeOpportunity(obj))
		}
	}

	for _, item := range getSlice(raw, "spendingHabits") {
		if s, ok := item.(string); ok && s != "" {
			a.SpendingHabits = append(a.SpendingHabits, s)
		}
	}

	if obj, ok := raw["summary"].(map[string]any); ok {
		a.Summary = decodeSummary(obj)
	}

	return a
}

// DecodeTransaction builds a Transaction. Amounts are stored as absolute
// values; a non-numeric amount becomes zero.
func DecodeTransaction(obj map[string]any) Transaction {
	return Transaction{
		Date:        strings.TrimSpace(getString(obj, "date")),
		Description: getString(obj, "description"),
		Amount:      getDecimal(obj, "amount").Abs(),
		Category:    strings.TrimSpace(getString(obj, "category")),
		Type:        ParseTransactionType(getString(obj, "type")),
		AccountID:   getString(obj, "accountId"),
		AccountName: getString(obj, "accountName"),
	}
}

// DecodeOpportunity builds a SavingsOpportunity. Unknown impacts become LOW.
func DecodeOpportunity(obj map[string]any) SavingsOpportunity {
	return SavingsOpportunity{
		Title:                   strings.TrimSpace(getString(obj, "title")),
		Description:             getString(obj, "description"),
		EstimatedMonthlySavings: getDecimal(obj, "estimatedMonthlySavings"),
		Impact:                  ParseImpact(getString(obj, "impact")),
	}
}

func decodeSummary(obj map[string]any) Summary {
	income := getDecimal(obj, "totalIncome")
	expense := getDecimal(obj, "totalExpense")
	return Summary{
		TotalIncome:        income,
		TotalExpense:       expense,
		NetSavings:         income.Sub(expense),
		TopExpenseCategory: getString(obj, "topExpenseCategory"),
	}
}

// DecodeAccount builds an Account. Unknown types fall back to BANK.
func DecodeAccount(obj map[string]any) Account {
	t, err := ParseAccountType(getString(obj, "type"))
	if err != nil {
		t = AccountTypeBank
	}
	return Account{
		ID:    getString(obj, "id"),
		Name:  getString(obj, "name"),
		Type:  t,
		Color: getString(obj, "color"),
	}
}

// DecodeReport builds a SavedReport. A missing data object yields an
// empty analysis.
func DecodeReport(obj map[string]any) SavedReport {
	data, ok := obj["data"].(map[string]any)
	if !ok {
		data = map[string]any{}
	}
	return SavedReport{
		ID:           getString(obj, "id"),
		AccountID:    getString(obj, "accountId"),
		FileName:     getString(obj, "fileName"),
		AnalysisDate: getString(obj, "analysisDate"),
		Data:         DecodeAnalysis(data),
	}
}

// DecodeCard builds a SavedCard.
func DecodeCard(obj map[string]any) SavedCard {
	return SavedCard{
		ID:         getString(obj, "id"),
		BankName:   getString(obj, "bankName"),
		CardName:   getString(obj, "cardName"),
		Network:    getString(obj, "network"),
		CardType:   getString(obj, "cardType"),
		Last4:      getString(obj, "last4"),
		ColorStart: getString(obj, "colorStart"),
		ColorEnd:   getString(obj, "colorEnd"),
	}
}

// DecodeAppData builds the root aggregate. Missing arrays become empty.
func DecodeAppData(raw map[string]any) *AppData {
	d := NewAppData()
	for _, item := range getSlice(raw, "accounts") {
		if obj, ok := item.(map[string]any); ok {
			d.Accounts = append(d.Accounts, DecodeAccount(obj))
		}
	}
	for _, item := range getSlice(raw, "reports") {
		if obj, ok := item.(map[string]any); ok {
			d.Reports = append(d.Reports, DecodeReport(obj))
		}
	}
	for _, item := range getSlice(raw, "savedCards") {
		if obj, ok := item.(map[string]any); ok {
			d.SavedCards = append(d.SavedCards, DecodeCard(obj))
		}
	}
	return d
}

// DecodeOffer builds a BankOffer. Offers without a title are rejected.
// The caller assigns an ID when the model did not.
func DecodeOffer(obj map[string]any) (BankOffer, bool) {
	o := BankOffer{
		ID:          getString(obj, "id"),
		Bank:        strings.TrimSpace(getString(obj, "bank")),
		Platform:    strings.TrimSpace(getString(obj, "platform")),
		LogoURL:     getString(obj, "logoUrl"),
		Title:       strings.TrimSpace(getString(obj, "title")),
		Description: getString(obj, "description"),
		Code:        strings.TrimSpace(getString(obj, "code")),
		Category:    normalizeOfferCategory(strings.TrimSpace(getString(obj, "category"))),
		ValidTill:   getString(obj, "validTill"),
	}
	if o.Title == "" {
		return BankOffer{}, false
	}
	return o, true
}

// DecodeCardCandidate builds a CardCandidate. Candidates without a name
// are rejected.
func DecodeCardCandidate(obj map[string]any) (CardCandidate, bool) {
	c := CardCandidate{
		Name:    strings.TrimSpace(getString(obj, "name")),
		Bank:    strings.TrimSpace(getString(obj, "bank")),
		Network: strings.TrimSpace(getString(obj, "network")),
	}
	if c.Name == "" {
		return CardCandidate{}, false
	}
	return c, true
}

func getString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func getSlice(m map[string]any, key string) []any {
	if s, ok := m[key].([]any); ok {
		return s
	}
	return nil
}

func getDecimal(m map[string]any, key string) decimal.Decimal {
	switch v := m[key].(type) {
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}
	return decimal.Zero
}
