package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/connyay/stockfolio/holding"
	"github.com/connyay/stockfolio/store"
)

// Pricer is the slice of the pricing client the valuation handlers need.
type Pricer interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// StockValueHandler handles GET /stock-value/{id}: current price × shares
// for a single holding.
func StockValueHandler(db store.Store, pricer Pricer, log *logrus.Logger) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		h, err := db.Get(chi.URLParam(req, "id"))
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(rw, http.StatusNotFound, kindNotFound, "no such id")
			return
		case err != nil:
			log.WithFields(logrus.Fields{
				"err": err,
			}).Error("failed getting holding")
			writeError(rw, http.StatusInternalServerError, kindStore, "failed getting holding")
			return
		}
		price, err := pricer.Price(req.Context(), h.Symbol)
		if err != nil {
			writeError(rw, http.StatusInternalServerError, kindUpstream, "failed to retrieve ticker price")
			return
		}
		writeJSON(rw, http.StatusOK, map[string]interface{}{
			"symbol":     h.Symbol,
			"ticker":     price,
			"stockValue": holding.Value(h, price),
		}, log)
	}
}

// PortfolioValueHandler handles GET /portfolio-value: the summed market
// value of every holding in the portfolio. Any missing price fails the
// whole request.
func PortfolioValueHandler(db store.Store, pricer Pricer, log *logrus.Logger) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		holdings, err := db.List(nil)
		if err != nil {
			log.WithFields(logrus.Fields{
				"err": err,
			}).Error("failed listing holdings")
			writeError(rw, http.StatusInternalServerError, kindStore, "failed listing holdings")
			return
		}
		total, err := holding.PortfolioValue(req.Context(), holdings, pricer.Price)
		if err != nil {
			writeError(rw, http.StatusInternalServerError, kindUpstream, "failed to retrieve ticker price")
			return
		}
		writeJSON(rw, http.StatusOK, map[string]interface{}{
			"date":           time.Now().Format("2006-01-02"),
			"portfolioValue": total,
		}, log)
	}
}
