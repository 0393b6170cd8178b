package analytics

import (
	"fmt"
	"testing"

	"github.com/dvloznov/finsight/internal/domain"
)

func TestSpendingByCategory(t *testing.T) {
	t.Run("sorted and income ignored", func(t *testing.T) {
		got := SpendingByCategory([]domain.Transaction{
			expense("2024-01-01", "Dining", "20"),
			expense("2024-01-02", "Rent", "900"),
			expense("2024-01-03", "Dining", "30"),
			income("2024-01-04", "5000"),
		})
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].Name != "Rent" || got[1].Name != "Dining" || !got[1].Value.Equal(dec("50")) {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("tail folded into others", func(t *testing.T) {
		var txs []domain.Transaction
		for i := 1; i <= 8; i++ {
			txs = append(txs, expense("2024-01-01", fmt.Sprintf("Cat%d", i), fmt.Sprintf("%d", i*10)))
		}
		got := SpendingByCategory(txs)
		if len(got) != 6 {
			t.Fatalf("len = %d, want 6", len(got))
		}
		last := got[5]
		// Cat3 + Cat2 + Cat1
		if last.Name != OthersCategory || !last.Value.Equal(dec("60")) {
			t.Errorf("others = %+v, want 60", last)
		}
		if got[0].Name != "Cat8" {
			t.Errorf("first = %q, want Cat8", got[0].Name)
		}
	})

	t.Run("exactly six categories kept", func(t *testing.T) {
		var txs []domain.Transaction
		for i := 1; i <= 6; i++ {
			txs = append(txs, expense("2024-01-01", fmt.Sprintf("Cat%d", i), "1"))
		}
		if got := SpendingByCategory(txs); len(got) != 6 || got[5].Name == OthersCategory {
			t.Errorf("got %+v", got)
		}
	})
}

func TestSpendingTrend(t *testing.T) {
	t.Run("daily", func(t *testing.T) {
		got := SpendingTrend([]domain.Transaction{
			expense("2024-01-05", "A", "10"),
			expense("2024-01-01", "B", "5"),
			expense("2024-01-05", "C", "1"),
			income("2023-01-01", "1000"),
		})
		if got.View != TrendDaily {
			t.Errorf("View = %s, want Daily", got.View)
		}
		if len(got.Points) != 2 || got.Points[0].Period != "2024-01-01" || !got.Points[1].Amount.Equal(dec("11")) {
			t.Errorf("Points = %+v", got.Points)
		}
	})

	t.Run("monthly over sixty days", func(t *testing.T) {
		got := SpendingTrend([]domain.Transaction{
			expense("2024-01-05", "A", "10"),
			expense("2024-03-20", "B", "5"),
			expense("2024-03-01", "C", "2"),
		})
		if got.View != TrendMonthly {
			t.Errorf("View = %s, want Monthly", got.View)
		}
		if len(got.Points) != 2 || got.Points[1].Period != "2024-03" || !got.Points[1].Amount.Equal(dec("7")) {
			t.Errorf("Points = %+v", got.Points)
		}
	})

	t.Run("no dated expenses", func(t *testing.T) {
		got := SpendingTrend([]domain.Transaction{expense("", "A", "1")})
		if got.View != TrendDaily || len(got.Points) != 0 {
			t.Errorf("got %+v", got)
		}
	})
}
