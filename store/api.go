package store

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

var (
	// ErrDuplicateSymbol is returned when a holding fails to insert due to an
	// existing holding with the same symbol.
	ErrDuplicateSymbol = errors.New("duplicate symbol")
	// ErrNotFound is returned when no holding exists for the given id.
	ErrNotFound = errors.New("holding not found")
	// ErrNoMatch is returned when a non-empty filter matches no holdings.
	ErrNoMatch = errors.New("no holdings match filter")
	// ErrBadFilterField is returned when a filter names a field outside the
	// allowed set.
	ErrBadFilterField = errors.New("invalid filter field")
)

// Store is the required interface for a storage backend to implement. One
// store holds the holdings of a single portfolio.
type Store interface {
	// Insert stores the given holding. Symbol uniqueness is enforced
	// atomically by the backend.
	Insert(holding Holding) error
	// List returns holdings matching the filter, in insertion order. An
	// empty filter returns everything.
	List(filter Filter) ([]Holding, error)
	// Get returns the holding with the given id.
	Get(id string) (Holding, error)
	// Update replaces the holding with the given id.
	Update(id string, holding Holding) error
	// Delete removes the holding with the given id.
	Delete(id string) error
}

// Holding is one tracked stock position within a portfolio.
type Holding struct {
	ID            string          `json:"id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Shares        int64           `json:"sharesCount"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	PurchaseDate  string          `json:"purchaseDate"`
}

// Filter is an exact-equality filter over holding fields.
type Filter map[string]string

var filterFields = map[string]bool{
	"id":            true,
	"name":          true,
	"symbol":        true,
	"sharesCount":   true,
	"purchasePrice": true,
	"purchaseDate":  true,
}

// ParseFilter builds a Filter from request query parameters. Fields outside
// the allowed set are rejected, not ignored.
func ParseFilter(values url.Values) (Filter, error) {
	filter := Filter{}
	for field := range values {
		if !filterFields[field] {
			return nil, fmt.Errorf("%w %q", ErrBadFilterField, field)
		}
		filter[field] = values.Get(field)
	}
	return filter, nil
}

// Matches reports whether the holding satisfies every filter term.
// sharesCount compares as an integer and purchasePrice as a decimal, so
// "5.50" and "5.5" filter the same holdings; an unparseable numeric value
// matches nothing.
func (f Filter) Matches(h Holding) bool {
	for field, value := range f {
		switch field {
		case "id":
			if h.ID != value {
				return false
			}
		case "name":
			if h.Name != value {
				return false
			}
		case "symbol":
			if h.Symbol != value {
				return false
			}
		case "sharesCount":
			shares, err := strconv.ParseInt(value, 10, 64)
			if err != nil || h.Shares != shares {
				return false
			}
		case "purchasePrice":
			price, err := decimal.NewFromString(value)
			if err != nil || !h.PurchasePrice.Equal(price) {
				return false
			}
		case "purchaseDate":
			if h.PurchaseDate != value {
				return false
			}
		}
	}
	return true
}
