// internal/services/seller_service_test.go
package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/horizonglow/marketplace-backend/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEarn(t *testing.T) {
	tests := []struct {
		name    string
		price   string
		percent string
		want    string
	}{
		{"thirty percent platform cut", "19.99", "30", "13.993"},
		{"even split", "100", "50", "50"},
		{"no cut", "19.99", "0", "19.99"},
		{"full cut", "19.99", "100", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seller := &models.Seller{Percent: dec(tt.percent)}
			product := &models.Product{Price: dec(tt.price)}
			assert.True(t, dec(tt.want).Equal(Earn(seller, product)),
				"got %s", Earn(seller, product))
		})
	}
}

func TestEarnRoundsOnApply(t *testing.T) {
	seller := &models.Seller{Percent: dec("30")}
	product := &models.Product{Price: dec("19.99")}

	// The unrounded share is 13.993; the ledger stores cents.
	assert.True(t, dec("13.99").Equal(Earn(seller, product).Round(2)))
}

func TestAlreadyPaid(t *testing.T) {
	seller := &models.Seller{
		TotalEarned: dec("150.75"),
		ToPay:       dec("40.25"),
	}
	assert.True(t, dec("110.50").Equal(AlreadyPaid(seller)))

	fresh := &models.Seller{TotalEarned: decimal.Zero, ToPay: decimal.Zero}
	assert.True(t, AlreadyPaid(fresh).IsZero())
}
