// Package cards turns card numbers and search candidates into wallet
// cards: network and issuer detection from the BIN, and issuer colours.
package cards

import (
	"strings"
	"unicode"
)

const (
	UnknownNetwork = "Unknown"
	UnknownBank    = "Unknown Bank"
)

// Info is what the BIN says about a card.
type Info struct {
	BankName string `json:"bankName"`
	Network  string `json:"network"`
}

type prefixRule struct {
	name     string
	prefixes []string
}

// Checked in order, first match wins.
var networkRules = []prefixRule{
	{"Visa", []string{"4"}},
	{"Mastercard", []string{"51", "52", "53", "54", "55"}},
	{"Amex", []string{"34", "37"}},
	{"Rupay", []string{"60", "6521", "6522"}},
	{"JCB", []string{"35"}},
	{"UnionPay", []string{"62"}},
}

// Checked in order, first match wins. Some prefixes appear under more
// than one issuer; the earlier issuer takes them.
var bankRules = []prefixRule{
	{"HDFC Bank", []string{"4545", "4375", "4162", "5222", "6075"}},
	{"SBI", []string{"5044", "5046", "4591", "5497"}},
	{"ICICI Bank", []string{"4477", "4375", "5399", "4055"}},
	{"Axis Bank", []string{"4426", "4147", "5309", "5241"}},
	{"Kotak Bank", []string{"4166", "4214", "5188"}},
	{"Standard Chartered", []string{"4363", "5196"}},
	{"Chase", []string{"4147", "4246", "4388", "4485", "4716"}},
	{"Citi", []string{"4008", "4128", "4860", "5181", "5424"}},
	{"Bank of America", []string{"4024", "4266", "4400", "4556", "5466"}},
	{"American Express", []string{"37", "34"}},
	{"HSBC", []string{"4312", "4347", "4883", "5301"}},
	{"Barclays", []string{"4929", "4263", "5404"}},
	{"Wells Fargo", []string{"4060", "4136", "4306", "4696", "5135"}},
	{"Capital One", []string{"4264", "4265", "4428"}},
}

// Digits returns number with every non-digit removed.
func Digits(number string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, number)
}

// DetectCardInfo classifies a card by the first six digits of number.
// Separators such as spaces and dashes are ignored.
func DetectCardInfo(number string) Info {
	bin := Digits(number)
	if len(bin) > 6 {
		bin = bin[:6]
	}
	return Info{
		BankName: match(bankRules, bin, UnknownBank),
		Network:  match(networkRules, bin, UnknownNetwork),
	}
}

func match(rules []prefixRule, bin, fallback string) string {
	if bin == "" {
		return fallback
	}
	for _, rule := range rules {
		for _, p := range rule.prefixes {
			if strings.HasPrefix(bin, p) {
				return rule.name
			}
		}
	}
	return fallback
}
