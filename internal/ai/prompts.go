package ai

import (
	"fmt"
	"strings"

	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/fees"
	"google.golang.org/genai"
)

var generalCategories = []string{
	"Groceries", "Utilities", "Dining", "Travel", "Rent", "Salary",
	"UPI/Transfer", "Investment", "Shopping", "Medical",
}

var feeHints = map[string]string{
	fees.LatePaymentFee: "for late penalties",
	fees.InterestCharge: "for finance charges/interest",
	fees.ForexFee:       "for currency markup",
	fees.ServiceCharge:  "for processing fees, atm fees, etc",
	fees.TaxGST:         "for IGST, CGST, SGST, or generic taxes",
}

func buildAnalysisPrompt() string {
	var b strings.Builder
	b.WriteString("You are an expert financial analyst. Analyze the attached PDF statement (INR currency).\n\n")
	b.WriteString("1. Identify the statement period (e.g., \"October 2023\").\n")
	b.WriteString("2. Extract all transactions with date, description, amount, and categorize them.\n")
	b.WriteString("   - General Categories: " + strings.Join(generalCategories, ", ") + ".\n")
	b.WriteString("   - CRITICAL - Fee Categorization: You MUST categorize any bank charges, fees, or taxes into one of these EXACT categories:\n")
	for _, c := range fees.KnownCategories {
		if hint, ok := feeHints[c]; ok {
			fmt.Fprintf(&b, "     - %q (%s)\n", c, hint)
		} else {
			fmt.Fprintf(&b, "     - %q\n", c)
		}
	}
	b.WriteString("3. Identify if a transaction is INCOME (Credit) or EXPENSE (Debit).\n")
	b.WriteString("4. Provide specific \"scope for reduction\" (savings opportunities) based on spending patterns.\n")
	b.WriteString("5. Summarize spending habits in brief bullet points.\n\n")
	b.WriteString("Do not calculate totals. Just extract the raw data accurately.\n")
	b.WriteString("Amounts are positive numbers; the type field carries the direction.\n")
	b.WriteString("Return data strictly in JSON. Dates as YYYY-MM-DD.\n")
	return b.String()
}

func batchInstruction(page int) string {
	if page > 1 {
		return fmt.Sprintf("(Batch #%d: Try to find DIFFERENT or ADDITIONAL offers than the usual top results)", page)
	}
	return fmt.Sprintf("(Batch #%d)", page)
}

func buildOffersPrompt(query string, page int) string {
	quoted := make([]string, len(domain.OfferCategories))
	for i, c := range domain.OfferCategories {
		quoted[i] = "'" + c + "'"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Use Google Search to find ACTIVE and CURRENT credit card and bank offers for: %q.\n", query)
	b.WriteString(batchInstruction(page) + "\n\n")
	b.WriteString("Return a list of 12 distinct relevant offers.\n\n")
	b.WriteString("Format the output as a JSON array of objects with the following keys:\n")
	b.WriteString("- id (generate a random string)\n")
	b.WriteString("- bank (Bank Name, e.g., HDFC, Chase)\n")
	b.WriteString("- platform (Merchant/Platform, e.g., Amazon, Flipkart, Zomato, Indigo, Agoda)\n")
	b.WriteString("- title (Short catchy title, e.g. \"Flat 10% Off\", \"Buy 1 Get 1\")\n")
	b.WriteString("- description (Details of the discount/cashback)\n")
	b.WriteString("- code (Promo code if available, else null)\n")
	b.WriteString("- category (Classify strictly into: " + strings.Join(quoted, ", ") + ")\n")
	b.WriteString("- validTill (Expiry date if available, else null)\n\n")
	b.WriteString("Strictly return ONLY the JSON array. Do not add markdown code blocks.\n")
	return b.String()
}

func buildCardSearchPrompt(query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Use Google Search to find real credit cards matching the query: %q.\n", query)
	b.WriteString("Find 3-5 specific card models.\n\n")
	b.WriteString("Return a JSON array of objects:\n")
	b.WriteString("- name (Full card name, e.g., \"HDFC Regalia Gold\", \"Chase Sapphire Preferred\")\n")
	b.WriteString("- bank (Bank name, e.g., \"HDFC Bank\", \"Chase\")\n")
	b.WriteString("- network (Visa, Mastercard, Amex, Rupay - make a best guess if unknown)\n\n")
	b.WriteString("Strictly return ONLY the JSON array.\n")
	return b.String()
}

// analysisSchema constrains the analysis response. The summary is not
// requested; it is computed locally.
func analysisSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	num := &genai.Schema{Type: genai.TypeNumber}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"statementPeriod": str,
			"transactions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"date":        str,
						"description": str,
						"amount":      num,
						"category":    str,
						"type":        {Type: genai.TypeString, Enum: []string{"INCOME", "EXPENSE"}},
					},
				},
			},
			"savingsOpportunities": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":                   str,
						"description":             str,
						"estimatedMonthlySavings": num,
						"impact":                  {Type: genai.TypeString, Enum: []string{"HIGH", "MEDIUM", "LOW"}},
					},
				},
			},
			"spendingHabits": {
				Type:  genai.TypeArray,
				Items: str,
			},
		},
	}
}

func searchConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
}
