package store

import (
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHolding(id, symbol string, shares int64, price string) Holding {
	return Holding{
		ID:            id,
		Symbol:        symbol,
		Name:          "NA",
		Shares:        shares,
		PurchasePrice: decimal.RequireFromString(price),
		PurchaseDate:  "NA",
	}
}

func TestMemInsertDuplicateSymbol(t *testing.T) {
	ms := NewMem()
	require.NoError(t, ms.Insert(newHolding("1", "AAPL", 1, "10")))
	err := ms.Insert(newHolding("2", "AAPL", 5, "20"))
	assert.ErrorIs(t, err, ErrDuplicateSymbol)
	require.NoError(t, ms.Insert(newHolding("3", "MSFT", 5, "20")))
}

func TestMemRoundTrip(t *testing.T) {
	ms := NewMem()
	want := newHolding("1", "AAPL", 3, "150.25")
	require.NoError(t, ms.Insert(want))
	got, err := ms.Get("1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMemGetNotFound(t *testing.T) {
	ms := NewMem()
	_, err := ms.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemListOrder(t *testing.T) {
	ms := NewMem()
	require.NoError(t, ms.Insert(newHolding("1", "AAA", 1, "1")))
	require.NoError(t, ms.Insert(newHolding("2", "BBB", 2, "2")))
	require.NoError(t, ms.Insert(newHolding("3", "CCC", 3, "3")))
	holdings, err := ms.List(nil)
	require.NoError(t, err)
	require.Len(t, holdings, 3)
	assert.Equal(t, "AAA", holdings[0].Symbol)
	assert.Equal(t, "BBB", holdings[1].Symbol)
	assert.Equal(t, "CCC", holdings[2].Symbol)
}

func TestMemListFilter(t *testing.T) {
	ms := NewMem()
	require.NoError(t, ms.Insert(newHolding("1", "AAA", 10, "5.50")))
	require.NoError(t, ms.Insert(newHolding("2", "BBB", 10, "7")))
	require.NoError(t, ms.Insert(newHolding("3", "CCC", 3, "5.50")))

	holdings, err := ms.List(Filter{"sharesCount": "10"})
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "AAA", holdings[0].Symbol)
	assert.Equal(t, "BBB", holdings[1].Symbol)

	// decimal equality, not string equality
	holdings, err = ms.List(Filter{"purchasePrice": "5.5"})
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	holdings, err = ms.List(Filter{"sharesCount": "10", "purchasePrice": "5.50"})
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "AAA", holdings[0].Symbol)
}

func TestMemListNoMatch(t *testing.T) {
	ms := NewMem()
	require.NoError(t, ms.Insert(newHolding("1", "AAA", 10, "5")))
	_, err := ms.List(Filter{"symbol": "ZZZ"})
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestMemListEmptyStore(t *testing.T) {
	ms := NewMem()
	holdings, err := ms.List(nil)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestMemUpdate(t *testing.T) {
	ms := NewMem()
	require.NoError(t, ms.Insert(newHolding("1", "AAA", 10, "5")))
	updated := newHolding("1", "AAA", 20, "6")
	require.NoError(t, ms.Update("1", updated))
	got, err := ms.Get("1")
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	assert.ErrorIs(t, ms.Update("nope", updated), ErrNotFound)
}

func TestMemDelete(t *testing.T) {
	ms := NewMem()
	require.NoError(t, ms.Insert(newHolding("1", "AAA", 10, "5")))
	require.NoError(t, ms.Delete("1"))
	_, err := ms.Get("1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, ms.Delete("1"), ErrNotFound)
}

func TestParseFilter(t *testing.T) {
	filter, err := ParseFilter(url.Values{"symbol": {"AAA"}, "sharesCount": {"10"}})
	require.NoError(t, err)
	assert.Equal(t, Filter{"symbol": "AAA", "sharesCount": "10"}, filter)

	_, err = ParseFilter(url.Values{"unknownField": {"x"}})
	assert.ErrorIs(t, err, ErrBadFilterField)
}
