package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the production ticker-price API.
const DefaultBaseURL = "https://api.api-ninjas.com"

// ErrUnavailable is returned whenever a current price could not be obtained,
// regardless of the underlying cause. Callers treat it as a normal outcome.
var ErrUnavailable = errors.New("ticker price unavailable")

// Client looks up current ticker prices from the upstream pricing API. One
// outbound GET per lookup; no retries, no caching.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logrus.Logger
}

func NewClient(baseURL, apiKey string, log *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    http.DefaultClient,
		log:     log,
	}
}

// Price returns the current price for symbol, or ErrUnavailable. Transport
// errors, non-success statuses and responses without a usable price field
// all collapse to ErrUnavailable; the cause is logged, never raised.
func (c *Client) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/v1/stockprice?ticker=%s", c.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, ErrUnavailable
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"err":    err,
			"symbol": symbol,
		}).Warn("price lookup failed")
		return decimal.Zero, ErrUnavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"symbol": symbol,
		}).Warn("price lookup bad status")
		return decimal.Zero, ErrUnavailable
	}
	var body struct {
		Price *decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Price == nil {
		c.log.WithFields(logrus.Fields{
			"err":    err,
			"symbol": symbol,
		}).Warn("price lookup bad body")
		return decimal.Zero, ErrUnavailable
	}
	return *body.Price, nil
}
