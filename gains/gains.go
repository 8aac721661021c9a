package gains

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/connyay/stockfolio/holding"
	"github.com/connyay/stockfolio/store"
)

// Pricer is the slice of the pricing client the engine needs.
type Pricer interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Query are the parsed capital-gains request parameters. Nil bounds mean no
// constraint; both bounds combine with AND semantics.
type Query struct {
	Portfolio string
	SharesGT  *int64
	SharesLT  *int64
}

// HoldingGain is the paper gain of a single holding.
type HoldingGain struct {
	Symbol string          `json:"symbol"`
	Gain   decimal.Decimal `json:"gain"`
}

// Report is the aggregate capital-gains result. Gains are ordered by
// portfolio configuration order, then store order within each portfolio.
type Report struct {
	TotalCapitalGain decimal.Decimal `json:"totalCapitalGain"`
	Gains            []HoldingGain   `json:"gains"`
}

// Engine fans out to the configured portfolio sources, merges their
// holdings, filters, and prices each surviving holding.
type Engine struct {
	sources []Source
	pricer  Pricer
	log     *logrus.Logger
}

// NewEngine returns an Engine querying the given sources in order.
func NewEngine(pricer Pricer, log *logrus.Logger, sources ...Source) *Engine {
	return &Engine{sources: sources, pricer: pricer, log: log}
}

// Report runs one aggregation pass. A query naming an unknown portfolio
// yields an empty report rather than an error. Any unreachable source or
// unavailable price fails the whole report; no partial totals.
func (e *Engine) Report(ctx context.Context, q Query) (Report, error) {
	holdings, err := e.fetch(ctx, e.resolve(q.Portfolio))
	if err != nil {
		return Report{}, err
	}
	holdings = filterShares(holdings, q.SharesGT, q.SharesLT)
	gains, err := e.price(ctx, holdings)
	if err != nil {
		return Report{}, err
	}
	report := Report{TotalCapitalGain: decimal.Zero, Gains: gains}
	for _, g := range gains {
		report.TotalCapitalGain = report.TotalCapitalGain.Add(g.Gain)
	}
	return report, nil
}

func (e *Engine) resolve(portfolio string) []Source {
	if portfolio == "" {
		return e.sources
	}
	for _, src := range e.sources {
		if src.Name() == portfolio {
			return []Source{src}
		}
	}
	// unknown portfolio names are tolerated and contribute nothing
	e.log.WithFields(logrus.Fields{
		"portfolio": portfolio,
	}).Warn("unknown portfolio requested")
	return nil
}

// fetch queries every source concurrently, preserving source order in the
// merged result.
func (e *Engine) fetch(ctx context.Context, sources []Source) ([]store.Holding, error) {
	var (
		wg      sync.WaitGroup
		results = make([][]store.Holding, len(sources))
		errs    = make([]error, len(sources))
	)
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i], errs[i] = src.Holdings(ctx)
		}(i, src)
	}
	wg.Wait()
	merged := make([]store.Holding, 0)
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("portfolio %s: %w", sources[i].Name(), err)
		}
		merged = append(merged, results[i]...)
	}
	return merged, nil
}

func filterShares(holdings []store.Holding, gt, lt *int64) []store.Holding {
	filtered := make([]store.Holding, 0, len(holdings))
	for _, h := range holdings {
		if gt != nil && h.Shares <= *gt {
			continue
		}
		if lt != nil && h.Shares >= *lt {
			continue
		}
		filtered = append(filtered, h)
	}
	return filtered
}

// price looks up every holding concurrently, keeping merge order.
func (e *Engine) price(ctx context.Context, holdings []store.Holding) ([]HoldingGain, error) {
	var (
		wg    sync.WaitGroup
		gains = make([]HoldingGain, len(holdings))
		errs  = make([]error, len(holdings))
	)
	for i, h := range holdings {
		wg.Add(1)
		go func(i int, h store.Holding) {
			defer wg.Done()
			price, err := e.pricer.Price(ctx, h.Symbol)
			if err != nil {
				errs[i] = fmt.Errorf("price %s: %w", h.Symbol, err)
				return
			}
			gains[i] = HoldingGain{Symbol: h.Symbol, Gain: holding.Gain(h, price)}
		}(i, h)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return gains, nil
}
