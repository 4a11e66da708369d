package usecase

import (
	"testing"

	"github.com/precifica/backend/internal/domain"
)

func TestProfitColumns(t *testing.T) {
	pricing := NewPricingService()
	profit := NewProfitService(pricing)

	raw := domain.RawProduct{
		Code:      "REF-10",
		UnitPrice: dec("10.00"),
	}

	t.Run("reproduces pricing formulas exactly", func(t *testing.T) {
		params := baseParams()
		params.Rounding = domain.RoundEnding90

		row := pricing.Price(raw, params)
		columns := profit.Columns(row, params)

		// Net cost 11.20, xapuri price 17.92 -> rounded 18.90. With the
		// 10% promotional discount the effective price is 17.01.
		if !columns.Xapuri.EffectivePrice.Equal(dec("17.01")) {
			t.Errorf("xapuri effective price = %s, want 17.01", columns.Xapuri.EffectivePrice)
		}
		if !columns.Xapuri.Profit.Equal(dec("5.81")) {
			t.Errorf("xapuri profit = %s, want 5.81", columns.Xapuri.Profit)
		}
	})

	t.Run("profit is effective price minus net cost", func(t *testing.T) {
		params := baseParams()

		row := pricing.Price(raw, params)
		columns := profit.Columns(row, params)
		netCost := pricing.NetCost(raw.UnitPrice, params)

		for _, scenario := range []ProfitScenario{columns.Xapuri, columns.Epita} {
			want := scenario.EffectivePrice.Sub(netCost).Round(2)
			if !scenario.Profit.Equal(want) {
				t.Errorf("%s profit = %s, want %s", scenario.Channel, scenario.Profit, want)
			}
		}
	})

	t.Run("applies the fixed per-channel discounts", func(t *testing.T) {
		params := baseParams()

		row := pricing.Price(raw, params)
		columns := profit.Columns(row, params)

		if !columns.Xapuri.Discount.Equal(dec("0.10")) {
			t.Errorf("xapuri discount = %s, want 0.10", columns.Xapuri.Discount)
		}
		if !columns.Epita.Discount.Equal(dec("0.15")) {
			t.Errorf("epita discount = %s, want 0.15", columns.Epita.Discount)
		}
	})

	t.Run("does not modify the priced row", func(t *testing.T) {
		params := baseParams()
		row := pricing.Price(raw, params)
		before := row

		profit.Columns(row, params)

		if !row.PriceXapuri.Equal(before.PriceXapuri) || !row.NetCost.Equal(before.NetCost) {
			t.Error("profit derivation mutated the priced row")
		}
	})
}

func TestProfitColumnsAll(t *testing.T) {
	pricing := NewPricingService()
	profit := NewProfitService(pricing)
	params := baseParams()

	rows := pricing.PriceAll([]domain.RawProduct{
		{Code: "A-01", UnitPrice: dec("5.00")},
		{Code: "B-02", UnitPrice: dec("8.00")},
	}, params)

	columns := profit.ColumnsAll(rows, params)
	if len(columns) != len(rows) {
		t.Fatalf("got %d column sets, want %d", len(columns), len(rows))
	}
	for i := range rows {
		if columns[i].Code != rows[i].Code {
			t.Errorf("position %d holds %q, want %q", i, columns[i].Code, rows[i].Code)
		}
	}
}
