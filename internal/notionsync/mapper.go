package notionsync

import (
	"time"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/jomei/notionapi"
)

// Property names used in the mirrored databases.
const (
	propAccountID     = "Account ID"
	propTransactionID = "Transaction ID"
)

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}

// AccountToNotionProperties maps an account to the Accounts database schema:
// Account ID (title), Name, Type, Balance, Color.
func AccountToNotionProperties(acc domain.Account) notionapi.Properties {
	props := notionapi.Properties{
		propAccountID: notionapi.TitleProperty{Title: richText(acc.ID)},
		"Balance":     notionapi.NumberProperty{Number: acc.Balance.InexactFloat64()},
	}

	if acc.Name != "" {
		props["Name"] = notionapi.RichTextProperty{RichText: richText(acc.Name)}
	}
	if acc.Type != "" {
		props["Type"] = notionapi.SelectProperty{Select: notionapi.Option{Name: acc.Type}}
	}
	if acc.Color != "" {
		props["Color"] = notionapi.SelectProperty{Select: notionapi.Option{Name: acc.Color}}
	}

	return props
}

// TransactionToNotionProperties maps a transaction to the Transactions
// database schema. accountName is the resolved account label. Dates that do
// not parse go to "Raw Date" instead of the date property.
func TransactionToNotionProperties(tx domain.Transaction, accountName string) notionapi.Properties {
	description := tx.Description
	if description == "" {
		description = tx.Category
	}

	props := notionapi.Properties{
		"Description":     notionapi.TitleProperty{Title: richText(description)},
		propTransactionID: notionapi.RichTextProperty{RichText: richText(tx.ID)},
		"Amount":          notionapi.NumberProperty{Number: tx.Amount.InexactFloat64()},
		"Type":            notionapi.SelectProperty{Select: notionapi.Option{Name: string(tx.Type)}},
		"Account":         notionapi.RichTextProperty{RichText: richText(accountName)},
	}

	if tx.Category != "" {
		props["Category"] = notionapi.SelectProperty{Select: notionapi.Option{Name: tx.Category}}
	}

	if d, ok := tx.ParsedDate(); ok {
		start := notionapi.Date(d.In(time.UTC))
		props["Date"] = notionapi.DateProperty{Date: &notionapi.DateObject{Start: &start}}
	} else if tx.Date != "" {
		props["Raw Date"] = notionapi.RichTextProperty{RichText: richText(tx.Date)}
	}

	return props
}

// extractTransactionID reads the Transaction ID property of a page, or "".
func extractTransactionID(page notionapi.Page) string {
	if prop, ok := page.Properties[propTransactionID]; ok {
		if rt, ok := prop.(*notionapi.RichTextProperty); ok && len(rt.RichText) > 0 {
			return rt.RichText[0].PlainText
		}
	}
	return ""
}

// extractAccountID reads the Account ID title of a page, or "".
func extractAccountID(page notionapi.Page) string {
	if prop, ok := page.Properties[propAccountID]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok && len(title.Title) > 0 {
			return title.Title[0].PlainText
		}
	}
	return ""
}
