package gains

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connyay/stockfolio/pricing"
	"github.com/connyay/stockfolio/store"
)

type fakeSource struct {
	name     string
	holdings []store.Holding
	err      error
}

func (s fakeSource) Name() string { return s.name }
func (s fakeSource) Holdings(context.Context) ([]store.Holding, error) {
	return s.holdings, s.err
}

type fakePricer map[string]string

func (p fakePricer) Price(_ context.Context, symbol string) (decimal.Decimal, error) {
	raw, ok := p[symbol]
	if !ok {
		return decimal.Zero, pricing.ErrUnavailable
	}
	return decimal.RequireFromString(raw), nil
}

func testLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func holdingOf(symbol string, shares int64, price string) store.Holding {
	return store.Holding{
		Symbol:        symbol,
		Shares:        shares,
		PurchasePrice: decimal.RequireFromString(price),
	}
}

func TestReportSinglePortfolio(t *testing.T) {
	engine := NewEngine(fakePricer{"XYZ": "7.00"}, testLog(),
		fakeSource{name: "A", holdings: []store.Holding{holdingOf("XYZ", 10, "5.00")}},
		fakeSource{name: "B", holdings: []store.Holding{holdingOf("OTHER", 1, "1")}},
	)
	report, err := engine.Report(context.Background(), Query{Portfolio: "A"})
	require.NoError(t, err)
	assert.True(t, report.TotalCapitalGain.Equal(decimal.RequireFromString("20.00")),
		"got %s", report.TotalCapitalGain)
	require.Len(t, report.Gains, 1)
	assert.Equal(t, "XYZ", report.Gains[0].Symbol)
}

func TestReportMergeOrder(t *testing.T) {
	engine := NewEngine(fakePricer{"S1": "2", "S2": "3", "S3": "4"}, testLog(),
		fakeSource{name: "A", holdings: []store.Holding{
			holdingOf("S1", 1, "1"),
			holdingOf("S2", 1, "1"),
		}},
		fakeSource{name: "B", holdings: []store.Holding{holdingOf("S3", 1, "1")}},
	)
	report, err := engine.Report(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, report.Gains, 3)
	assert.Equal(t, "S1", report.Gains[0].Symbol)
	assert.Equal(t, "S2", report.Gains[1].Symbol)
	assert.Equal(t, "S3", report.Gains[2].Symbol)
	assert.True(t, report.TotalCapitalGain.Equal(decimal.RequireFromString("6")),
		"got %s", report.TotalCapitalGain)
}

func TestReportUnknownPortfolio(t *testing.T) {
	engine := NewEngine(fakePricer{}, testLog(),
		fakeSource{name: "A", holdings: []store.Holding{holdingOf("S1", 1, "1")}},
	)
	report, err := engine.Report(context.Background(), Query{Portfolio: "nope"})
	require.NoError(t, err)
	assert.Empty(t, report.Gains)
	assert.True(t, report.TotalCapitalGain.IsZero())
}

func TestReportSharesFilters(t *testing.T) {
	gt, lt := int64(5), int64(50)
	engine := NewEngine(fakePricer{"LOW": "1", "MID": "1", "HIGH": "1"}, testLog(),
		fakeSource{name: "A", holdings: []store.Holding{
			holdingOf("LOW", 5, "1"),
			holdingOf("MID", 10, "1"),
			holdingOf("HIGH", 50, "1"),
		}},
	)
	report, err := engine.Report(context.Background(), Query{SharesGT: &gt, SharesLT: &lt})
	require.NoError(t, err)
	require.Len(t, report.Gains, 1)
	assert.Equal(t, "MID", report.Gains[0].Symbol)
}

func TestReportPriceFailFast(t *testing.T) {
	engine := NewEngine(fakePricer{"S1": "2"}, testLog(),
		fakeSource{name: "A", holdings: []store.Holding{
			holdingOf("S1", 1, "1"),
			holdingOf("UNPRICED", 1, "1"),
		}},
	)
	_, err := engine.Report(context.Background(), Query{})
	assert.ErrorIs(t, err, pricing.ErrUnavailable)
}

func TestReportSourceError(t *testing.T) {
	boom := errors.New("connection refused")
	engine := NewEngine(fakePricer{"S1": "2"}, testLog(),
		fakeSource{name: "A", holdings: []store.Holding{holdingOf("S1", 1, "1")}},
		fakeSource{name: "B", err: boom},
	)
	_, err := engine.Report(context.Background(), Query{})
	assert.ErrorIs(t, err, boom)
}

func TestStoreSource(t *testing.T) {
	db := store.NewMem()
	h := holdingOf("AAA", 1, "1")
	h.ID, h.Name, h.PurchaseDate = "1", "NA", "NA"
	require.NoError(t, db.Insert(h))
	src := NewStoreSource("local", db)
	holdings, err := src.Holdings(context.Background())
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "AAA", holdings[0].Symbol)
}
