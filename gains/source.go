package gains

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/connyay/stockfolio/store"
)

// Source is a single portfolio's holding list.
type Source interface {
	Name() string
	Holdings(ctx context.Context) ([]store.Holding, error)
}

// NewHTTPSource returns a Source reading holdings from a peer stocks service
// at baseURL. An unreachable peer or a non-success response is an error, not
// an empty portfolio.
func NewHTTPSource(name, baseURL string) Source {
	return &httpSource{name: name, baseURL: baseURL, http: http.DefaultClient}
}

type httpSource struct {
	name    string
	baseURL string
	http    *http.Client
}

func (s *httpSource) Name() string { return s.name }

func (s *httpSource) Holdings(ctx context.Context) ([]store.Holding, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/stocks", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stocks service returned status %d", resp.StatusCode)
	}
	var holdings []store.Holding
	if err := json.NewDecoder(resp.Body).Decode(&holdings); err != nil {
		return nil, err
	}
	return holdings, nil
}

// NewStoreSource returns a Source backed by a local holding store, for
// running the aggregator in the same process as a stocks service.
func NewStoreSource(name string, db store.Store) Source {
	return &storeSource{name: name, db: db}
}

type storeSource struct {
	name string
	db   store.Store
}

func (s *storeSource) Name() string { return s.name }

func (s *storeSource) Holdings(context.Context) ([]store.Holding, error) {
	return s.db.List(nil)
}
