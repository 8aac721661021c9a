package holding

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/connyay/stockfolio/store"
)

// PriceFunc returns the current market price for a symbol.
type PriceFunc func(ctx context.Context, symbol string) (decimal.Decimal, error)

// Value is the current market value of a holding: price × shares.
func Value(h store.Holding, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(h.Shares))
}

// Gain is the paper capital gain of a holding:
// (price − purchase price) × shares.
func Gain(h store.Holding, price decimal.Decimal) decimal.Decimal {
	return price.Sub(h.PurchasePrice).Mul(decimal.NewFromInt(h.Shares))
}

// PortfolioValue sums the market value of every holding. A failed price
// lookup fails the whole computation; no holding is skipped or zeroed.
func PortfolioValue(ctx context.Context, holdings []store.Holding, priceOf PriceFunc) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, h := range holdings {
		price, err := priceOf(ctx, h.Symbol)
		if err != nil {
			return decimal.Zero, fmt.Errorf("price %s: %w", h.Symbol, err)
		}
		total = total.Add(Value(h, price))
	}
	return total, nil
}
