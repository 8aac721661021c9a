package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/connyay/stockfolio/api"
	"github.com/connyay/stockfolio/gains"
	"github.com/connyay/stockfolio/pricing"
	"github.com/connyay/stockfolio/store"
)

var cli struct {
	Stocks StocksCmd `cmd:"" default:"1" help:"Start a stocks (holding store) service."`
	Gains  GainsCmd  `cmd:"" help:"Start the capital gains aggregation service."`
}

func main() {
	ctx := kong.Parse(&cli)
	ctx.FatalIfErrorf(ctx.Run())
}

// StocksCmd serves one portfolio's holding store plus its valuation
// endpoints.
type StocksCmd struct {
	Addr       string `help:"Address to listen on." default:"0.0.0.0:8000" env:"LISTEN_ADDR"`
	Store      string `help:"Backing store to use." default:"mem" env:"STORE"`
	DSN        string `help:"DSN to use for backing store." env:"STORE_DSN"`
	PricingURL string `help:"Base URL of the ticker price API." env:"PRICING_URL"`
	PricingKey string `help:"API key for the ticker price API." env:"PRICING_API_KEY"`
}

func (cmd *StocksCmd) Run() error {
	log := logrus.New()
	var (
		db  store.Store
		err error
	)
	switch cmd.Store {
	case "mem":
		db = store.NewMem()
	case "pg":
		db, err = store.NewPG(cmd.DSN)
		if err != nil {
			return fmt.Errorf("%w", err)
		}
	default:
		return fmt.Errorf("unknown store %q", cmd.Store)
	}
	pricer := pricing.NewClient(cmd.PricingURL, cmd.PricingKey, log)

	r := chi.NewRouter()
	r.Use(WithLogging(log))
	r.Use(middleware.Recoverer)
	r.Post("/stocks", api.CreateStockHandler(db, log))
	r.Get("/stocks", api.ListStocksHandler(db, log))
	r.Get("/stocks/{id}", api.GetStockHandler(db, log))
	r.Delete("/stocks/{id}", api.DeleteStockHandler(db, log))
	r.Put("/stocks/{id}", api.UpdateStockHandler(db, log))
	r.Get("/stock-value/{id}", api.StockValueHandler(db, pricer, log))
	r.Get("/portfolio-value", api.PortfolioValueHandler(db, pricer, log))
	return serve(cmd.Addr, r, log)
}

// GainsCmd serves the capital gains aggregator over one or more stocks
// services.
type GainsCmd struct {
	Addr       string   `help:"Address to listen on." default:"0.0.0.0:8080" env:"LISTEN_ADDR"`
	Portfolios []string `help:"Portfolio sources as name=url, in report order." env:"PORTFOLIOS"`
	PricingURL string   `help:"Base URL of the ticker price API." env:"PRICING_URL"`
	PricingKey string   `help:"API key for the ticker price API." env:"PRICING_API_KEY"`
}

func (cmd *GainsCmd) Run() error {
	log := logrus.New()
	sources := make([]gains.Source, 0, len(cmd.Portfolios))
	for _, p := range cmd.Portfolios {
		name, url, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("malformed portfolio %q, want name=url", p)
		}
		sources = append(sources, gains.NewHTTPSource(name, url))
	}
	pricer := pricing.NewClient(cmd.PricingURL, cmd.PricingKey, log)
	engine := gains.NewEngine(pricer, log, sources...)

	r := chi.NewRouter()
	r.Use(WithLogging(log))
	r.Use(middleware.Recoverer)
	r.Get("/capital-gains", api.CapitalGainsHandler(engine, log))
	return serve(cmd.Addr, r, log)
}

// serve runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests. Shutdown is driven by the orchestration layer's signal, not by
// any public endpoint.
func serve(addr string, handler http.Handler, log *logrus.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	log.Printf("Listening on %s", addr)
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Print("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func WithLogging(logger logrus.FieldLogger) func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t1 := time.Now()
			defer func() {
				scheme := "http"
				if r.TLS != nil {
					scheme = "https"
				}
				logger.WithFields(logrus.Fields{
					"status_code":      ww.Status(),
					"bytes":            ww.BytesWritten(),
					"duration":         int64(time.Since(t1)),
					"duration_display": time.Since(t1).String(),
					"proto":            r.Proto,
					"method":           r.Method,
				}).Infof("%s://%s%s", scheme, r.Host, r.RequestURI)
			}()

			h.ServeHTTP(ww, r)
		}

		return http.HandlerFunc(fn)
	}
}
