// Package fees finds bank charges, taxes and interest in a transaction set.
//
// Categories are open strings assigned by the model, so classification has
// two layers: an exact match against the categories the model is told to
// use for fees, and a keyword fallback that catches everything else
// ("Fuel Surcharge", "GST on fees", typos in the known names).
package fees

import (
	"strings"

	"github.com/dvloznov/finsight/internal/domain"
)

// Fee categories the analysis prompt asks the model to use.
const (
	LatePaymentFee   = "Late Payment Fee"
	InterestCharge   = "Interest Charge"
	ForexFee         = "Forex Fee"
	AnnualRenewalFee = "Annual/Renewal Fee"
	ServiceCharge    = "Service Charge"
	TaxGST           = "Tax/GST"
	OverlimitFee     = "Overlimit Fee"
)

// KnownCategories is the closed set of fee categories, in prompt order.
var KnownCategories = []string{
	LatePaymentFee,
	InterestCharge,
	ForexFee,
	AnnualRenewalFee,
	ServiceCharge,
	TaxGST,
	OverlimitFee,
}

// AvoidableCategories are the fee categories caused by payment behaviour.
var AvoidableCategories = []string{
	LatePaymentFee,
	InterestCharge,
	OverlimitFee,
}

var (
	feeKeywords       = []string{"fee", "tax", "interest", "charge"}
	avoidableKeywords = []string{"late", "interest"}
)

// Classifier decides whether a transaction is a fee and whether that fee
// was avoidable. The zero value is not usable; use NewClassifier.
type Classifier struct {
	known     map[string]struct{}
	avoidable map[string]struct{}
}

// NewClassifier returns a classifier over the standard fee categories.
func NewClassifier() *Classifier {
	return &Classifier{
		known:     toSet(KnownCategories),
		avoidable: toSet(AvoidableCategories),
	}
}

// IsKnownFeeCategory is the exact-match layer.
func (c *Classifier) IsKnownFeeCategory(category string) bool {
	_, ok := c.known[category]
	return ok
}

// MatchesFeeKeyword is the keyword layer: the lower-cased category
// contains fee, tax, interest or charge.
func (c *Classifier) MatchesFeeKeyword(category string) bool {
	return containsAny(strings.ToLower(category), feeKeywords)
}

// IsAvoidableCategory reports whether a fee category is avoidable, by
// exact match or by containing "late" or "interest".
func (c *Classifier) IsAvoidableCategory(category string) bool {
	if _, ok := c.avoidable[category]; ok {
		return true
	}
	return containsAny(strings.ToLower(category), avoidableKeywords)
}

// IsFee reports whether tx is an expense in a fee category.
func (c *Classifier) IsFee(tx domain.Transaction) bool {
	if !tx.IsExpense() {
		return false
	}
	return c.IsKnownFeeCategory(tx.Category) || c.MatchesFeeKeyword(tx.Category)
}

// IsAvoidable reports whether tx is a fee that could have been avoided.
func (c *Classifier) IsAvoidable(tx domain.Transaction) bool {
	return c.IsFee(tx) && c.IsAvoidableCategory(tx.Category)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}
