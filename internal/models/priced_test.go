package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPricedAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	unit := NewMoneyPtr(decimal.NewFromInt(20))
	sale := NewMoneyPtr(decimal.NewFromInt(15))

	cases := []struct {
		name     string
		priced   Priced
		onSale   bool
		hasPrice bool
		price    string
	}{
		{name: "sale without window", priced: Priced{UnitPrice: unit, SalePrice: sale}, onSale: true, hasPrice: true, price: "15"},
		{name: "sale starts later", priced: Priced{UnitPrice: unit, SalePrice: sale, SaleFrom: &future}, hasPrice: true, price: "20"},
		{name: "sale already ended", priced: Priced{UnitPrice: unit, SalePrice: sale, SaleTo: &past}, hasPrice: true, price: "20"},
		{name: "inside window", priced: Priced{UnitPrice: unit, SalePrice: sale, SaleFrom: &past, SaleTo: &future}, onSale: true, hasPrice: true, price: "15"},
		{name: "window without sale price", priced: Priced{UnitPrice: unit, SaleFrom: &past, SaleTo: &future}, hasPrice: true, price: "20"},
		{name: "sale price only", priced: Priced{SalePrice: sale}, onSale: true, hasPrice: true, price: "15"},
		{name: "unpriced", priced: Priced{}, price: "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.onSale, tc.priced.OnSaleAt(now))
			require.Equal(t, tc.hasPrice, tc.priced.HasPriceAt(now))
			require.Equal(t, tc.price, tc.priced.PriceAt(now).String())
		})
	}
}

func TestPricedWindowBoundsAreInclusive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	priced := Priced{SalePrice: NewMoneyPtr(decimal.NewFromInt(5)), SaleFrom: &now, SaleTo: &now}
	require.True(t, priced.OnSaleAt(now))
}
