// README: District store backed by PostgreSQL.
package district

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// FindByLocation returns the district whose location key is the longest prefix of key,
// so a full postcode falls back to its outward code.
func (s *Store) FindByLocation(ctx context.Context, key string) (District, error) {
	row := s.db.QueryRow(ctx, `
        SELECT d.code, d.name, d.region, d.base_multiplier::text
        FROM district_locations l
        JOIN districts d ON d.code = l.district_code
        WHERE $1 = l.location_key OR $1 LIKE l.location_key || ' %'
        ORDER BY length(l.location_key) DESC
        LIMIT 1`, key,
	)
	return scanDistrict(row)
}

func (s *Store) Get(ctx context.Context, code string) (District, error) {
	row := s.db.QueryRow(ctx, `
        SELECT code, name, region, base_multiplier::text
        FROM districts
        WHERE code = $1`, code,
	)
	return scanDistrict(row)
}

func (s *Store) List(ctx context.Context) ([]District, error) {
	rows, err := s.db.Query(ctx, `
        SELECT code, name, region, base_multiplier::text
        FROM districts
        ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []District
	for rows.Next() {
		d, err := scanDistrict(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDistrict(row pgx.Row) (District, error) {
	var d District
	var mult string
	err := row.Scan(&d.Code, &d.Name, &d.Region, &mult)
	if errors.Is(err, pgx.ErrNoRows) {
		return District{}, ErrNotFound
	}
	if err != nil {
		return District{}, err
	}
	if d.BaseMultiplier, err = decimal.NewFromString(mult); err != nil {
		return District{}, err
	}
	return d, nil
}
