package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/Boostport/migration"
	"github.com/Boostport/migration/driver/postgres"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"
)

// Create migration source
//go:embed postgres/migrations
var embedFS embed.FS

var embedSource = &migration.EmbedMigrationSource{
	EmbedFS: embedFS,
	Dir:     "postgres/migrations",
}

func NewPG(dsn string) (Store, error) {
	pool, err := pgxpool.Connect(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	s := &pgstore{dsn, pool}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

type pgstore struct {
	dsn  string
	pool *pgxpool.Pool
}

func (pg *pgstore) Insert(h Holding) error {
	// the unique index on symbol makes the duplicate check and the insert a
	// single operation
	tag, err := pg.pool.Exec(context.Background(), `
INSERT INTO holdings (
	id, symbol, name, shares, purchase_price, purchase_date
)
VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (symbol) DO NOTHING
`,
		h.ID, h.Symbol, h.Name, h.Shares, h.PurchasePrice, h.PurchaseDate,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateSymbol
	}
	return nil
}

var filterColumns = map[string]string{
	"id":            "id",
	"name":          "name",
	"symbol":        "symbol",
	"sharesCount":   "shares",
	"purchasePrice": "purchase_price",
	"purchaseDate":  "purchase_date",
}

func (pg *pgstore) List(filter Filter) (holdings []Holding, err error) {
	sql := `
SELECT
	id, symbol, name, shares, purchase_price, purchase_date
FROM holdings`
	args := []interface{}{}
	for field, value := range filter {
		var arg interface{} = value
		switch field {
		case "sharesCount":
			shares, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, ErrNoMatch
			}
			arg = shares
		case "purchasePrice":
			price, err := decimal.NewFromString(value)
			if err != nil {
				return nil, ErrNoMatch
			}
			arg = price
		}
		args = append(args, arg)
		if len(args) == 1 {
			sql += fmt.Sprintf(" WHERE %s = $%d", filterColumns[field], len(args))
		} else {
			sql += fmt.Sprintf(" AND %s = $%d", filterColumns[field], len(args))
		}
	}
	sql += " ORDER BY seq"
	rows, err := pg.pool.Query(context.Background(), sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	holdings = make([]Holding, 0)
	for rows.Next() {
		var h Holding
		if err := rows.Scan(&h.ID, &h.Symbol, &h.Name,
			&h.Shares, &h.PurchasePrice, &h.PurchaseDate); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(holdings) == 0 && len(filter) > 0 {
		return nil, ErrNoMatch
	}
	return holdings, nil
}

func (pg *pgstore) Get(id string) (Holding, error) {
	var h Holding
	err := pg.pool.QueryRow(context.Background(), `
SELECT
	id, symbol, name, shares, purchase_price, purchase_date
FROM holdings WHERE id = $1`, id).
		Scan(&h.ID, &h.Symbol, &h.Name, &h.Shares, &h.PurchasePrice, &h.PurchaseDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Holding{}, ErrNotFound
		}
		return Holding{}, err
	}
	return h, nil
}

func (pg *pgstore) Update(id string, h Holding) error {
	tag, err := pg.pool.Exec(context.Background(), `
UPDATE holdings
SET name = $2, shares = $3, purchase_price = $4, purchase_date = $5
WHERE id = $1`,
		id, h.Name, h.Shares, h.PurchasePrice, h.PurchaseDate,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (pg *pgstore) Delete(id string) error {
	tag, err := pg.pool.Exec(context.Background(), `DELETE FROM holdings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (pg *pgstore) migrate() error {
	driver, err := postgres.New(pg.dsn)
	if err != nil {
		return err
	}
	defer driver.Close()
	_, err = migration.Migrate(driver, embedSource, migration.Up, 0)
	if err != nil {
		return err
	}
	return nil
}
