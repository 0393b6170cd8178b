package analytics

import (
	"testing"

	"github.com/dvloznov/finsight/internal/domain"
)

func sampleList() []domain.Transaction {
	txs := []domain.Transaction{
		expense("2024-01-15", "Groceries", "120"),
		expense("2024-02-03", "Dining", "45"),
		income("2024-02-01", "5000"),
		expense("2023-12-24", "Shopping", "300"),
		expense("", "Dining", "10"),
	}
	txs[0].Description = "BigBasket order"
	txs[1].Description = "Zomato"
	txs[1].AccountName = "HDFC Card"
	return txs
}

func TestQueryApply(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string // dates in result order
	}{
		{
			name:  "default sorts by date descending and drops undated",
			query: Query{},
			want:  []string{"2024-02-03", "2024-02-01", "2024-01-15", "2023-12-24"},
		},
		{
			name:  "search matches account name case-insensitively",
			query: Query{Search: "hdfc"},
			want:  []string{"2024-02-03"},
		},
		{
			name:  "search matches description",
			query: Query{Search: "BASKET"},
			want:  []string{"2024-01-15"},
		},
		{
			name:  "type filter",
			query: Query{Type: "INCOME"},
			want:  []string{"2024-02-01"},
		},
		{
			name:  "ALL disables filters",
			query: Query{Type: "ALL", Category: "ALL", Month: "ALL", Year: "ALL"},
			want:  []string{"2024-02-03", "2024-02-01", "2024-01-15", "2023-12-24"},
		},
		{
			name:  "month filter",
			query: Query{Month: "2024-02"},
			want:  []string{"2024-02-03", "2024-02-01"},
		},
		{
			name:  "year filter ascending",
			query: Query{Year: "2024", Direction: Ascending},
			want:  []string{"2024-01-15", "2024-02-01", "2024-02-03"},
		},
		{
			name:  "sort by amount descending",
			query: Query{SortKey: SortByAmount},
			want:  []string{"2024-02-01", "2023-12-24", "2024-01-15", "2024-02-03"},
		},
		{
			name:  "category filter is exact",
			query: Query{Category: "dining"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.query.Apply(sampleList())
			if len(got) != len(tt.want) {
				t.Fatalf("got %d transactions, want %d", len(got), len(tt.want))
			}
			for i, d := range tt.want {
				if got[i].Date != d {
					t.Errorf("[%d] date = %s, want %s", i, got[i].Date, d)
				}
			}
		})
	}
}

func TestQueryApply_MissingValuesSortLast(t *testing.T) {
	txs := sampleList()[:3]
	for _, dir := range []SortDirection{Ascending, Descending} {
		got := Query{SortKey: SortByAccountName, Direction: dir}.Apply(txs)
		if got[0].AccountName != "HDFC Card" {
			t.Errorf("%s: first = %q, want the only named account first", dir, got[0].AccountName)
		}
	}
}

func TestGroupTransactions(t *testing.T) {
	txs := Query{}.Apply(sampleList())

	none := GroupTransactions(txs, GroupNone)
	if len(none) != 1 || none[0].Label != "All Transactions" || len(none[0].Transactions) != 4 {
		t.Errorf("GroupNone = %+v", none)
	}

	months := GroupTransactions(append(txs, expense("garbage", "Misc", "1")), GroupMonth)
	wantMonths := []string{"February 2024", "January 2024", "December 2023", "Unknown Date"}
	if len(months) != len(wantMonths) {
		t.Fatalf("month groups = %d, want %d", len(months), len(wantMonths))
	}
	for i, w := range wantMonths {
		if months[i].Label != w {
			t.Errorf("month group %d = %q, want %q", i, months[i].Label, w)
		}
	}
	if len(months[0].Transactions) != 2 {
		t.Errorf("February group has %d transactions, want 2", len(months[0].Transactions))
	}

	cats := GroupTransactions(txs, GroupCategory)
	wantCats := []string{"Dining", "Groceries", "Salary", "Shopping"}
	for i, w := range wantCats {
		if cats[i].Label != w {
			t.Errorf("category group %d = %q, want %q", i, cats[i].Label, w)
		}
	}
}

func TestFilterOptions(t *testing.T) {
	opts := FilterOptions(sampleList())

	wantCats := []string{"Dining", "Groceries", "Salary", "Shopping"}
	if len(opts.Categories) != len(wantCats) {
		t.Fatalf("Categories = %v", opts.Categories)
	}
	for i := range wantCats {
		if opts.Categories[i] != wantCats[i] {
			t.Errorf("Categories[%d] = %q, want %q", i, opts.Categories[i], wantCats[i])
		}
	}

	wantMonths := []string{"2024-02", "2024-01", "2023-12"}
	for i := range wantMonths {
		if opts.Months[i] != wantMonths[i] {
			t.Errorf("Months[%d] = %q, want %q", i, opts.Months[i], wantMonths[i])
		}
	}
	if len(opts.Years) != 2 || opts.Years[0] != "2024" {
		t.Errorf("Years = %v", opts.Years)
	}
}

func TestParseSortKey(t *testing.T) {
	if k, err := ParseSortKey("AMOUNT"); err != nil || k != SortByAmount {
		t.Errorf("ParseSortKey(AMOUNT) = %q, %v", k, err)
	}
	if k, err := ParseSortKey(""); err != nil || k != SortByDate {
		t.Errorf("ParseSortKey(\"\") = %q, %v", k, err)
	}
	if _, err := ParseSortKey("balance"); err == nil {
		t.Error("expected error for unknown key")
	}
}
