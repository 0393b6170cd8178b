package notionsync

import (
	"fmt"
	"strings"

	"github.com/dvloznov/finsight/internal/analytics"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/jomei/notionapi"
)

// Property names of the transactions database.
const (
	PropDescription   = "Description"
	PropTransactionID = "Transaction ID"
	PropReportID      = "Report ID"
	PropDate          = "Date"
	PropAmount        = "Amount"
	PropType          = "Type"
	PropCategory      = "Category"
	PropAccount       = "Account"
	PropFile          = "Statement"
	PropFee           = "Fee"
)

// TransactionID is the stable id of the line-th transaction (1-based) of
// a report.
func TransactionID(reportID string, line int) string {
	return fmt.Sprintf("%s:%d", reportID, line)
}

// TransactionToNotionProperties converts one report transaction to Notion
// properties.
func TransactionToNotionProperties(account domain.Account, report domain.SavedReport, line int, tx domain.Transaction, isFee bool) notionapi.Properties {
	amount, _ := tx.Amount.Float64()

	props := notionapi.Properties{
		PropDescription: notionapi.TitleProperty{
			Title: richText(tx.Description),
		},
		PropTransactionID: notionapi.RichTextProperty{
			RichText: richText(TransactionID(report.ID, line)),
		},
		PropReportID: notionapi.RichTextProperty{
			RichText: richText(report.ID),
		},
		PropAmount: notionapi.NumberProperty{
			Number: amount,
		},
		PropType: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.Type)},
		},
		PropCategory: notionapi.SelectProperty{
			Select: notionapi.Option{Name: selectName(tx.CategoryOrDefault())},
		},
		PropFee: notionapi.CheckboxProperty{
			Checkbox: isFee,
		},
	}

	if t, ok := analytics.ParseDate(tx.Date); ok {
		d := notionapi.Date(t)
		props[PropDate] = notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &d},
		}
	}

	name := account.Name
	if name == "" {
		name = domain.UnknownAccountName
	}
	props[PropAccount] = notionapi.SelectProperty{
		Select: notionapi.Option{Name: selectName(name)},
	}

	if report.FileName != "" {
		props[PropFile] = notionapi.RichTextProperty{
			RichText: richText(report.FileName),
		}
	}

	return props
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}

// selectName makes s usable as a select option; Notion rejects commas.
func selectName(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", " "))
	if s == "" {
		return domain.UncategorizedCategory
	}
	return s
}

// extractTransactionID extracts the transaction ID from a Notion page's properties.
// Returns empty string if not found.
func extractTransactionID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropTransactionID]; ok {
		if rt, ok := prop.(*notionapi.RichTextProperty); ok && len(rt.RichText) > 0 {
			return rt.RichText[0].PlainText
		}
	}
	return ""
}
