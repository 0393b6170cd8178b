package analytics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dvloznov/finsight/internal/domain"
)

// SortKey is a transaction field the list can be sorted by.
type SortKey string

const (
	SortByDate        SortKey = "date"
	SortByDescription SortKey = "description"
	SortByAmount      SortKey = "amount"
	SortByCategory    SortKey = "category"
	SortByType        SortKey = "type"
	SortByAccountName SortKey = "accountName"
)

// SortDirection orders the list.
type SortDirection string

const (
	Ascending  SortDirection = "ASC"
	Descending SortDirection = "DESC"
)

// GroupMode controls how the list is sectioned.
type GroupMode string

const (
	GroupNone     GroupMode = "NONE"
	GroupMonth    GroupMode = "MONTH"
	GroupCategory GroupMode = "CATEGORY"
)

const (
	allTransactionsLabel = "All Transactions"
	unknownDateLabel     = "Unknown Date"

	// filterAll disables a filter, same as leaving it empty.
	filterAll = "ALL"
)

// ParseSortKey validates a sort key, defaulting to date.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortByDate, nil
	}
	for _, k := range []SortKey{SortByDate, SortByDescription, SortByAmount, SortByCategory, SortByType, SortByAccountName} {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("ParseSortKey: unknown sort key %q", s)
}

// ParseSortDirection validates a direction, defaulting to descending.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "DESC":
		return Descending, nil
	case "ASC":
		return Ascending, nil
	default:
		return "", fmt.Errorf("ParseSortDirection: unknown direction %q", s)
	}
}

// ParseGroupMode validates a group mode, defaulting to none.
func ParseGroupMode(s string) (GroupMode, error) {
	switch GroupMode(strings.ToUpper(strings.TrimSpace(s))) {
	case "", GroupNone:
		return GroupNone, nil
	case GroupMonth:
		return GroupMonth, nil
	case GroupCategory:
		return GroupCategory, nil
	default:
		return "", fmt.Errorf("ParseGroupMode: unknown group mode %q", s)
	}
}

// Query filters and sorts a transaction list. Empty or "ALL" fields
// disable the corresponding filter.
type Query struct {
	Search    string
	Type      string // INCOME or EXPENSE
	Category  string
	Month     string // YYYY-MM
	Year      string // YYYY
	SortKey   SortKey
	Direction SortDirection
}

// Apply returns the matching transactions, sorted. Search is a
// case-insensitive substring match on description, category and account
// name. Transactions without a date never match; transactions with an
// unreadable date only match when no month or year filter is set.
// Missing values sort last in either direction.
func (q Query) Apply(txs []domain.Transaction) []domain.Transaction {
	search := strings.ToLower(q.Search)
	typ := active(q.Type)
	category := active(q.Category)
	month := active(q.Month)
	year := active(q.Year)

	out := []domain.Transaction{}
	for _, tx := range txs {
		if search != "" &&
			!strings.Contains(strings.ToLower(tx.Description), search) &&
			!strings.Contains(strings.ToLower(tx.Category), search) &&
			!strings.Contains(strings.ToLower(tx.AccountName), search) {
			continue
		}
		if typ != "" && !strings.EqualFold(string(tx.Type), typ) {
			continue
		}
		if category != "" && tx.Category != category {
			continue
		}
		if tx.Date == "" {
			continue
		}
		if month != "" || year != "" {
			t, ok := ParseDate(tx.Date)
			if !ok {
				continue
			}
			if month != "" && monthKey(t) != month {
				continue
			}
			if year != "" && yearKey(t) != year {
				continue
			}
		}
		out = append(out, tx)
	}

	key := q.SortKey
	if key == "" {
		key = SortByDate
	}
	desc := q.Direction != Ascending
	slices.SortStableFunc(out, func(a, b domain.Transaction) int {
		return compareField(a, b, key, desc)
	})
	return out
}

func active(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, filterAll) {
		return ""
	}
	return v
}

func compareField(a, b domain.Transaction, key SortKey, desc bool) int {
	if key == SortByAmount {
		c := a.Amount.Cmp(b.Amount)
		if desc {
			return -c
		}
		return c
	}

	av, bv := stringField(a, key), stringField(b, key)
	switch {
	case av == "" && bv == "":
		return 0
	case av == "":
		return 1
	case bv == "":
		return -1
	}
	c := strings.Compare(av, bv)
	if desc {
		return -c
	}
	return c
}

func stringField(tx domain.Transaction, key SortKey) string {
	switch key {
	case SortByDescription:
		return tx.Description
	case SortByCategory:
		return tx.Category
	case SortByType:
		return string(tx.Type)
	case SortByAccountName:
		return tx.AccountName
	default:
		return tx.Date
	}
}

// Group is one section of a grouped transaction list.
type Group struct {
	Label        string               `json:"label"`
	Transactions []domain.Transaction `json:"transactions"`
}

// GroupTransactions sections an already filtered list. Month groups are
// labelled like "January 2024" and ordered newest first with unknown
// dates last; category groups are alphabetical.
func GroupTransactions(txs []domain.Transaction, mode GroupMode) []Group {
	if mode == GroupNone || mode == "" {
		return []Group{{Label: allTransactionsLabel, Transactions: txs}}
	}

	type bucket struct {
		group Group
		month string // YYYY-MM sort key, empty when undated
	}

	var order []string
	buckets := make(map[string]*bucket)
	for _, tx := range txs {
		label, sortKey := domain.UncategorizedCategory, ""
		if mode == GroupMonth {
			label = unknownDateLabel
			if t, ok := ParseDate(tx.Date); ok {
				label = t.Format("January 2006")
				sortKey = monthKey(t)
			}
		} else {
			label = tx.CategoryOrDefault()
		}

		b, ok := buckets[label]
		if !ok {
			b = &bucket{group: Group{Label: label}, month: sortKey}
			buckets[label] = b
			order = append(order, label)
		}
		b.group.Transactions = append(b.group.Transactions, tx)
	}

	slices.SortStableFunc(order, func(x, y string) int {
		if mode == GroupMonth {
			mx, my := buckets[x].month, buckets[y].month
			switch {
			case mx == "" && my == "":
				return 0
			case mx == "":
				return 1
			case my == "":
				return -1
			}
			return strings.Compare(my, mx)
		}
		if c := strings.Compare(strings.ToLower(x), strings.ToLower(y)); c != 0 {
			return c
		}
		return strings.Compare(x, y)
	})

	groups := make([]Group, 0, len(order))
	for _, label := range order {
		groups = append(groups, buckets[label].group)
	}
	return groups
}

// Options lists the values the list filters can take.
type Options struct {
	Categories []string `json:"categories"`
	Months     []string `json:"months"`
	Years      []string `json:"years"`
}

// FilterOptions collects distinct categories (sorted) and months and years
// (newest first) present in the transactions.
func FilterOptions(txs []domain.Transaction) Options {
	categories := map[string]struct{}{}
	months := map[string]struct{}{}
	years := map[string]struct{}{}

	for _, tx := range txs {
		if tx.Category != "" {
			categories[tx.Category] = struct{}{}
		}
		if t, ok := ParseDate(tx.Date); ok {
			months[monthKey(t)] = struct{}{}
			years[yearKey(t)] = struct{}{}
		}
	}

	opts := Options{
		Categories: sortedKeys(categories),
		Months:     sortedKeys(months),
		Years:      sortedKeys(years),
	}
	slices.Reverse(opts.Months)
	slices.Reverse(opts.Years)
	return opts
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
