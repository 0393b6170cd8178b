package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/finsight/internal/analytics"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/logger"
	"google.golang.org/genai"
)

// UnknownPeriod is used when the model does not name the statement period.
const UnknownPeriod = "Unknown Period"

// ErrAnalysisFailed is the one error callers see for any analysis failure.
// The underlying cause is wrapped alongside it.
var ErrAnalysisFailed = errors.New("failed to analyze the document, please ensure it is a clear PDF statement")

// AnalyzeStatement extracts transactions, savings opportunities and
// spending habits from a PDF statement. The summary is computed locally
// from the extracted transactions; any totals the model returns are
// ignored. Nothing is retried.
func (c *Client) AnalyzeStatement(ctx context.Context, pdf []byte) (domain.FinancialAnalysis, error) {
	log := logger.FromContext(ctx)

	if len(pdf) == 0 {
		return domain.FinancialAnalysis{}, analysisFailed(errors.New("empty document"))
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(pdf, "application/pdf"),
			genai.NewPartFromText(buildAnalysisPrompt()),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema(),
	}

	log.Info().Str("model", c.model).Int("pdf_bytes", len(pdf)).Msg("Analyzing statement")

	text, err := c.generateText(ctx, contents, config)
	if err != nil {
		log.Error().Err(err).Msg("Statement analysis request failed")
		return domain.FinancialAnalysis{}, analysisFailed(err)
	}

	analysis, err := parseAnalysis(text)
	if err != nil {
		log.Error().Err(err).Int("response_len", len(text)).Msg("Statement analysis response unusable")
		return domain.FinancialAnalysis{}, analysisFailed(err)
	}

	log.Info().
		Str("statement_period", analysis.StatementPeriod).
		Int("transactions", len(analysis.Transactions)).
		Int("opportunities", len(analysis.SavingsOpportunities)).
		Msg("Statement analyzed")

	return analysis, nil
}

// parseAnalysis decodes a model response into a normalised analysis with
// a locally computed summary.
func parseAnalysis(text string) (domain.FinancialAnalysis, error) {
	body := extractObject(text)
	if body == "" {
		return domain.FinancialAnalysis{}, errors.New("no JSON object in response")
	}
	raw, err := domain.DecodeJSONObject([]byte(body))
	if err != nil {
		return domain.FinancialAnalysis{}, fmt.Errorf("parseAnalysis: %w", err)
	}

	analysis := domain.DecodeAnalysis(raw)
	analysis.Summary = analytics.Summarize(analysis.Transactions)
	if analysis.StatementPeriod == "" {
		analysis.StatementPeriod = UnknownPeriod
	}
	return analysis, nil
}

func analysisFailed(cause error) error {
	return fmt.Errorf("AnalyzeStatement: %w: %w", ErrAnalysisFailed, cause)
}
