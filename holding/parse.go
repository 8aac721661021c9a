package holding

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/connyay/stockfolio/store"
)

// Validation error kinds. These are stable strings surfaced to API clients.
const (
	KindMalformed      = "malformed"
	KindMissingField   = "missing_field"
	KindInvalidSymbol  = "invalid_symbol"
	KindInvalidShares  = "invalid_shares"
	KindInvalidPrice   = "invalid_price"
	KindInvalidDate    = "invalid_date"
	KindInvalidName    = "invalid_name"
	KindImmutableField = "immutable_field"
)

// ValidationError describes why a payload failed to parse into a Holding.
type ValidationError struct {
	Kind  string
	Field string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMalformed:
		return "malformed data"
	case KindMissingField:
		return fmt.Sprintf("missing required field %q", e.Field)
	case KindInvalidSymbol:
		return "symbol must be a string"
	case KindInvalidShares:
		return "sharesCount must be a positive integer"
	case KindInvalidPrice:
		return "purchasePrice must be a positive number"
	case KindInvalidDate:
		return "invalid purchaseDate, use DD-MM-YYYY or NA"
	case KindInvalidName:
		return "name must be a string"
	case KindImmutableField:
		return fmt.Sprintf("%s can not be changed", e.Field)
	}
	return e.Kind
}

// Payload is a decoded but not yet validated request body.
type Payload map[string]interface{}

// Decode reads a JSON object from r. Numbers are kept as json.Number so the
// validators can tell integers, floats and strings apart.
func Decode(r io.Reader) (Payload, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, &ValidationError{Kind: KindMalformed}
	}
	return p, nil
}

// ParseCreate validates a creation payload and returns the holding to store,
// with a freshly assigned id and the symbol upper-cased. name and
// purchaseDate default to the NA sentinel when omitted.
func ParseCreate(p Payload) (store.Holding, error) {
	for _, field := range []string{"symbol", "purchasePrice", "sharesCount"} {
		if _, ok := p[field]; !ok {
			return store.Holding{}, &ValidationError{Kind: KindMissingField, Field: field}
		}
	}
	symbol, ok := p["symbol"].(string)
	if !ok {
		return store.Holding{}, &ValidationError{Kind: KindInvalidSymbol, Field: "symbol"}
	}
	shares, err := parseShares(p["sharesCount"])
	if err != nil {
		return store.Holding{}, err
	}
	price, err := parsePrice(p["purchasePrice"])
	if err != nil {
		return store.Holding{}, err
	}
	name := "NA"
	if raw, ok := p["name"]; ok {
		if name, ok = raw.(string); !ok {
			return store.Holding{}, &ValidationError{Kind: KindInvalidName, Field: "name"}
		}
	}
	date := "NA"
	if raw, ok := p["purchaseDate"]; ok {
		if date, err = parseDate(raw); err != nil {
			return store.Holding{}, err
		}
	}
	return store.Holding{
		ID:            uuid.NewString(),
		Symbol:        strings.ToUpper(symbol),
		Name:          name,
		Shares:        shares,
		PurchasePrice: price,
		PurchaseDate:  date,
	}, nil
}

// ParseUpdate validates a full-replace update payload against the stored
// holding. All six fields must be present, id and symbol must match the
// stored values, and every mutable field is replaced with the payload value.
// NA means "explicitly clear to unknown", never "keep the current value".
func ParseUpdate(p Payload, current store.Holding) (store.Holding, error) {
	for _, field := range []string{"id", "name", "symbol", "purchasePrice", "purchaseDate", "sharesCount"} {
		if _, ok := p[field]; !ok {
			return store.Holding{}, &ValidationError{Kind: KindMissingField, Field: field}
		}
	}
	if id, ok := p["id"].(string); !ok || id != current.ID {
		return store.Holding{}, &ValidationError{Kind: KindImmutableField, Field: "id"}
	}
	symbol, ok := p["symbol"].(string)
	if !ok {
		return store.Holding{}, &ValidationError{Kind: KindInvalidSymbol, Field: "symbol"}
	}
	if strings.ToUpper(symbol) != current.Symbol {
		return store.Holding{}, &ValidationError{Kind: KindImmutableField, Field: "symbol"}
	}
	shares, err := parseShares(p["sharesCount"])
	if err != nil {
		return store.Holding{}, err
	}
	price, err := parsePrice(p["purchasePrice"])
	if err != nil {
		return store.Holding{}, err
	}
	name, ok := p["name"].(string)
	if !ok {
		return store.Holding{}, &ValidationError{Kind: KindInvalidName, Field: "name"}
	}
	date, err := parseDate(p["purchaseDate"])
	if err != nil {
		return store.Holding{}, err
	}
	return store.Holding{
		ID:            current.ID,
		Symbol:        current.Symbol,
		Name:          name,
		Shares:        shares,
		PurchasePrice: price,
		PurchaseDate:  date,
	}, nil
}

func parseShares(raw interface{}) (int64, error) {
	num, ok := raw.(json.Number)
	if !ok {
		return 0, &ValidationError{Kind: KindInvalidShares, Field: "sharesCount"}
	}
	// Int64 rejects fractional literals like 1.5
	shares, err := num.Int64()
	if err != nil || shares <= 0 {
		return 0, &ValidationError{Kind: KindInvalidShares, Field: "sharesCount"}
	}
	return shares, nil
}

func parsePrice(raw interface{}) (decimal.Decimal, error) {
	num, ok := raw.(json.Number)
	if !ok {
		return decimal.Zero, &ValidationError{Kind: KindInvalidPrice, Field: "purchasePrice"}
	}
	price, err := decimal.NewFromString(num.String())
	if err != nil || !price.IsPositive() {
		return decimal.Zero, &ValidationError{Kind: KindInvalidPrice, Field: "purchasePrice"}
	}
	return price.Round(2), nil
}

var datePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

func parseDate(raw interface{}) (string, error) {
	date, ok := raw.(string)
	if !ok {
		return "", &ValidationError{Kind: KindInvalidDate, Field: "purchaseDate"}
	}
	if date == "NA" {
		return date, nil
	}
	if !datePattern.MatchString(date) {
		return "", &ValidationError{Kind: KindInvalidDate, Field: "purchaseDate"}
	}
	// time.Parse rejects impossible dates such as 31-04 or 29-02 outside
	// leap years
	if _, err := time.Parse("02-01-2006", date); err != nil {
		return "", &ValidationError{Kind: KindInvalidDate, Field: "purchaseDate"}
	}
	return date, nil
}
