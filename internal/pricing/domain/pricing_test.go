package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/repair-manager/pkg/apperror"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEffectivePrice(t *testing.T) {
	amount := dec("50")
	small := dec("5")
	pct := 25

	tests := []struct {
		name       string
		base       decimal.Decimal
		amount     *decimal.Decimal
		percentage *int
		want       string
	}{
		{"no discount", dec("19.99"), nil, nil, "19.99"},
		{"amount floored at zero", dec("10"), &amount, nil, "0"},
		{"percentage", dec("100"), nil, &pct, "75"},
		{"amount wins over percentage", dec("100"), &small, &pct, "95"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectivePrice(tt.base, tt.amount, tt.percentage)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseItemType(t *testing.T) {
	got, err := ParseItemType("pArT")
	require.NoError(t, err)
	assert.Equal(t, ItemPart, got)

	_, err = ParseItemType("Widget")
	assert.Equal(t, apperror.KindInvalidItemType, apperror.ValidationKind(err))
}

func TestSelectEffective(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	expired := now.Add(-day)

	candidates := []CatalogPricing{
		{ID: 1, BasePrice: dec("10"), EffectiveDate: now.Add(-10 * day)},
		{ID: 2, BasePrice: dec("20"), EffectiveDate: now.Add(-2 * day)},
		{ID: 3, BasePrice: dec("30"), EffectiveDate: now.Add(-2 * day)},
		{ID: 4, BasePrice: dec("40"), EffectiveDate: now.Add(day)},
		{ID: 5, BasePrice: dec("50"), EffectiveDate: now.Add(-day), ExpirationDate: &expired},
	}

	got, ok := SelectEffective(candidates, now)
	require.True(t, ok)
	// 5 has expired and 4 is not effective yet; 2 and 3 tie on date.
	assert.Equal(t, uint(3), got.ID)
	assert.True(t, dec("30").Equal(got.EffectivePrice))

	_, ok = SelectEffective(candidates, now.Add(-30*day))
	assert.False(t, ok)
}

func TestActiveAtBoundaries(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	p := CatalogPricing{EffectiveDate: start, ExpirationDate: &end}

	assert.True(t, p.ActiveAt(start))
	assert.True(t, p.ActiveAt(end))
	assert.False(t, p.ActiveAt(end.Add(time.Second)))
}

func TestSetItemClearsOtherKeys(t *testing.T) {
	p := CatalogPricing{}
	p.SetItem(ItemDevice, 4)
	p.SetItem(ItemService, 9)

	assert.Nil(t, p.DeviceID)
	assert.Nil(t, p.PartID)
	require.NotNil(t, p.ServiceID)
	assert.Equal(t, uint(9), p.ItemID())
}
