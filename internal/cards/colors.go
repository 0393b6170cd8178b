package cards

import "strings"

// Gradient is the background a card is drawn with.
type Gradient struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DefaultGradient is used for issuers without a brand colour.
var DefaultGradient = Gradient{Start: "#475569", End: "#1e293b"}

type colorRule struct {
	keywords []string
	gradient Gradient
}

var colorRules = []colorRule{
	{[]string{"hdfc"}, Gradient{"#004c8f", "#002d54"}},
	{[]string{"sbi"}, Gradient{"#280071", "#07b3e6"}},
	{[]string{"icici"}, Gradient{"#f37e21", "#a62e00"}},
	{[]string{"axis"}, Gradient{"#97144d", "#5a0b2e"}},
	{[]string{"kotak"}, Gradient{"#ed1b24", "#990d13"}},
	{[]string{"chase"}, Gradient{"#117aca", "#093c66"}},
	{[]string{"citi"}, Gradient{"#003b70", "#00599a"}},
	{[]string{"america", "boa"}, Gradient{"#e31837", "#680012"}},
	{[]string{"amex", "american"}, Gradient{"#267ac3", "#164875"}},
	{[]string{"hsbc"}, Gradient{"#db0011", "#8a000b"}},
	{[]string{"barclays"}, Gradient{"#00aeef", "#005582"}},
	{[]string{"wells"}, Gradient{"#d71e28", "#761016"}},
	{[]string{"capital"}, Gradient{"#003a6f", "#d03027"}},
	{[]string{"standard", "chartered"}, Gradient{"#0075bf", "#069c41"}},
}

// Colors returns the brand gradient for a bank name, matched by
// case-insensitive substring in rule order.
func Colors(bankName string) Gradient {
	name := strings.ToLower(bankName)
	for _, rule := range colorRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.gradient
			}
		}
	}
	return DefaultGradient
}
