package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dvloznov/finsight/internal/analytics"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	text   string
	err    error
	model  string
	config *genai.GenerateContentConfig
	calls  int
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

const analysisJSON = `{
  "statementPeriod": "January 2024",
  "summary": {"totalIncome": 999999, "totalExpense": 1, "netSavings": 5, "topExpenseCategory": "Bogus"},
  "transactions": [
    {"date": "2024-01-10", "description": "LATE PAYMENT", "amount": 100, "category": "Late Payment Fee", "type": "EXPENSE"},
    {"date": "2024-01-12", "description": "BIGBASKET", "amount": "1,250.50", "category": "Groceries", "type": "EXPENSE"},
    {"date": "2024-01-01", "description": "SALARY", "amount": -50000, "category": "Salary", "type": "INCOME"},
    "garbage"
  ],
  "savingsOpportunities": [{"title": "Pay on time", "description": "Avoid late fees", "estimatedMonthlySavings": 100, "impact": "EXTREME"}],
  "spendingHabits": ["Frequent grocery orders", "", 42]
}`

func TestAnalyzeStatement(t *testing.T) {
	gen := &fakeGenerator{text: analysisJSON}
	client := NewWithGenerator(gen, "")

	got, err := client.AnalyzeStatement(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("AnalyzeStatement: %v", err)
	}

	if gen.model != DefaultModel {
		t.Errorf("model = %q, want %q", gen.model, DefaultModel)
	}
	if gen.config == nil || gen.config.ResponseMIMEType != "application/json" || gen.config.ResponseSchema == nil {
		t.Errorf("config = %+v, want JSON response with schema", gen.config)
	}
	if got.StatementPeriod != "January 2024" {
		t.Errorf("StatementPeriod = %q", got.StatementPeriod)
	}
	if len(got.Transactions) != 3 {
		t.Fatalf("transactions = %d, want 3", len(got.Transactions))
	}
	if got.Transactions[2].Amount.String() != "50000" {
		t.Errorf("income amount = %s, want absolute value", got.Transactions[2].Amount)
	}

	want := analytics.Summarize(got.Transactions)
	if !got.Summary.TotalExpense.Equal(want.TotalExpense) || got.Summary.TopExpenseCategory != "Groceries" {
		t.Errorf("summary = %+v, want recomputed %+v", got.Summary, want)
	}
	if got.Summary.TotalExpense.String() != "1350.5" {
		t.Errorf("TotalExpense = %s, want 1350.5", got.Summary.TotalExpense)
	}
	if got.SavingsOpportunities[0].Impact != "LOW" {
		t.Errorf("impact = %q, want LOW fallback", got.SavingsOpportunities[0].Impact)
	}
	if len(got.SpendingHabits) != 1 {
		t.Errorf("habits = %v", got.SpendingHabits)
	}
}

func TestAnalyzeStatement_DefaultsAndFences(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n{\"transactions\": []}\n```"}
	got, err := NewWithGenerator(gen, "gemini-test").AnalyzeStatement(context.Background(), []byte("pdf"))
	if err != nil {
		t.Fatalf("AnalyzeStatement: %v", err)
	}
	if got.StatementPeriod != UnknownPeriod {
		t.Errorf("StatementPeriod = %q, want %q", got.StatementPeriod, UnknownPeriod)
	}
	if got.Transactions == nil || got.SavingsOpportunities == nil || got.SpendingHabits == nil {
		t.Error("lists should be empty, not nil")
	}
	if got.Summary.TopExpenseCategory != analytics.NoTopCategory {
		t.Errorf("TopExpenseCategory = %q", got.Summary.TopExpenseCategory)
	}
}

func TestAnalyzeStatement_Failures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
		pdf  []byte
	}{
		{"remote error", &fakeGenerator{err: errors.New("quota exceeded")}, []byte("pdf")},
		{"empty response", &fakeGenerator{text: ""}, []byte("pdf")},
		{"not json", &fakeGenerator{text: "I cannot read this file"}, []byte("pdf")},
		{"broken json", &fakeGenerator{text: `{"transactions": [`}, []byte("pdf")},
		{"empty document", &fakeGenerator{text: analysisJSON}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWithGenerator(tt.gen, "").AnalyzeStatement(context.Background(), tt.pdf)
			if !errors.Is(err, ErrAnalysisFailed) {
				t.Fatalf("err = %v, want ErrAnalysisFailed", err)
			}
			if tt.gen.calls > 1 {
				t.Errorf("generator called %d times, want no retry", tt.gen.calls)
			}
		})
	}
}

func TestFetchBankOffers(t *testing.T) {
	gen := &fakeGenerator{text: `Here are the offers:
[
  {"id": "x1", "bank": "HDFC", "platform": "Amazon", "title": "10% off", "category": "Electronics", "code": null},
  {"bank": "SBI", "platform": "Swiggy", "title": "Flat 100 off", "category": "Food"},
  {"bank": "Axis", "platform": "Myntra"},
  7
]
Hope this helps.`}
	client := NewWithGenerator(gen, "")

	got := client.FetchBankOffers(context.Background(), "Credit card offers for travel", 2)

	if len(got) != 2 {
		t.Fatalf("offers = %d, want 2: %+v", len(got), got)
	}
	if got[0].ID != "x1" || got[0].Code != "" {
		t.Errorf("first offer = %+v", got[0])
	}
	if got[1].ID == "" {
		t.Error("missing id should be generated")
	}
	if got[1].Category != "Other" {
		t.Errorf("unknown category = %q, want Other", got[1].Category)
	}
	if len(gen.config.Tools) != 1 || gen.config.Tools[0].GoogleSearch == nil {
		t.Error("offer search should use the Google Search tool")
	}
}

func TestFetchBankOffers_FailureIsEmpty(t *testing.T) {
	for _, gen := range []*fakeGenerator{
		{err: errors.New("network down")},
		{text: "no offers found"},
	} {
		got := NewWithGenerator(gen, "").FetchBankOffers(context.Background(), "q", 1)
		if got == nil || len(got) != 0 {
			t.Errorf("got %v, want empty non-nil slice", got)
		}
	}
}

func TestFindCreditCards(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n[{\"name\": \"HDFC Regalia Gold\", \"bank\": \"HDFC Bank\", \"network\": \"Visa\"}, {\"bank\": \"Nameless\"}]\n```"}

	got := NewWithGenerator(gen, "").FindCreditCards(context.Background(), "regalia")

	if len(got) != 1 || got[0].Name != "HDFC Regalia Gold" {
		t.Errorf("cards = %+v", got)
	}

	failed := NewWithGenerator(&fakeGenerator{err: errors.New("boom")}, "").FindCreditCards(context.Background(), "x")
	if len(failed) != 0 {
		t.Errorf("failure should be empty, got %v", failed)
	}
}

func TestPrompts(t *testing.T) {
	analysis := buildAnalysisPrompt()
	for _, want := range []string{"INR", "\"Late Payment Fee\" (for late penalties)", "\"Overlimit Fee\"", "Do not calculate totals", "YYYY-MM-DD"} {
		if !strings.Contains(analysis, want) {
			t.Errorf("analysis prompt missing %q", want)
		}
	}

	if p := buildOffersPrompt("q", 1); !strings.Contains(p, "(Batch #1)") || strings.Contains(p, "DIFFERENT") {
		t.Errorf("page 1 prompt has wrong batch hint")
	}
	if p := buildOffersPrompt("q", 3); !strings.Contains(p, "Batch #3: Try to find DIFFERENT or ADDITIONAL offers") {
		t.Errorf("page 3 prompt has wrong batch hint")
	}
	if p := buildOffersPrompt("q", 1); !strings.Contains(p, "'Cabs/Travel', 'Other'") || !strings.Contains(p, "12 distinct") {
		t.Errorf("offers prompt missing categories or count")
	}
	if p := buildCardSearchPrompt("q"); !strings.Contains(p, "3-5") {
		t.Errorf("card prompt missing count")
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"[1,2]", "[1,2]"},
		{"```json\n[1]\n```", "[1]"},
		{"```[1]```", "[1]"},
		{"prefix [1, [2]] suffix", "[1, [2]]"},
		{"nothing here", ""},
		{"] backwards [", ""},
	}
	for _, tt := range tests {
		if got := extractArray(tt.in); got != tt.want {
			t.Errorf("extractArray(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
