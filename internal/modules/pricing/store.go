// README: Pricing store backed by PostgreSQL (rates, rules, customer discounts, volumes).
package pricing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

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

func (s *Store) GetRate(ctx context.Context, vehicleType VehicleType) (Rate, error) {
	row := s.db.QueryRow(ctx, `
        SELECT vehicle_type, base_fare::text, per_km::text, currency
        FROM vehicle_rates
        WHERE vehicle_type = $1`, string(vehicleType),
	)
	var r Rate
	var baseFare, perKm string
	err := row.Scan(&r.VehicleType, &baseFare, &perKm, &r.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, ErrRateNotFound
	}
	if err != nil {
		return Rate{}, err
	}
	if r.BaseFare, err = decimal.NewFromString(baseFare); err != nil {
		return Rate{}, err
	}
	if r.PerKm, err = decimal.NewFromString(perKm); err != nil {
		return Rate{}, err
	}
	return r, nil
}

const ruleColumns = `
        id, name, description, is_active, priority, priority_order,
        conditions, price_type, value::text, created_at, updated_at, created_by`

func (s *Store) ActiveRules(ctx context.Context) ([]PricingRule, error) {
	return s.queryRules(ctx, `SELECT`+ruleColumns+` FROM pricing_rules WHERE is_active ORDER BY id`)
}

func (s *Store) ListRules(ctx context.Context) ([]PricingRule, error) {
	return s.queryRules(ctx, `SELECT`+ruleColumns+` FROM pricing_rules ORDER BY id`)
}

// SetRuleActive soft-enables or soft-disables a rule; rules are never deleted.
func (s *Store) SetRuleActive(ctx context.Context, id string, active bool) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE pricing_rules SET is_active = $1, updated_at = NOW()
        WHERE id = $2`, active, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (s *Store) queryRules(ctx context.Context, query string, args ...any) ([]PricingRule, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PricingRule
	for rows.Next() {
		var r PricingRule
		var description, createdBy sql.NullString
		var conditions []byte
		var value string
		if err := rows.Scan(
			&r.ID, &r.Name, &description, &r.IsActive, &r.Priority, &r.PriorityOrder,
			&conditions, &r.PriceType, &value, &r.CreatedAt, &r.UpdatedAt, &createdBy,
		); err != nil {
			return nil, err
		}
		r.Description = description.String
		r.CreatedBy = createdBy.String
		if len(conditions) > 0 {
			if err := json.Unmarshal(conditions, &r.Conditions); err != nil {
				return nil, err
			}
		}
		if r.Value, err = decimal.NewFromString(value); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const discountColumns = `
        d.id, d.customer_id, c.name, d.name, d.discount_type, d.value::text, d.conditions,
        d.valid_from, d.valid_until, d.min_monthly_volume, d.volume_tiers, c.contract_tier,
        d.is_active, d.created_at, d.updated_at`

// DiscountsByCustomer returns the customer's discounts in their stored order.
func (s *Store) DiscountsByCustomer(ctx context.Context, customerID string) ([]CustomerDiscount, error) {
	return s.queryDiscounts(ctx, `SELECT`+discountColumns+`
        FROM customer_discounts d JOIN customers c ON c.id = d.customer_id
        WHERE d.customer_id = $1
        ORDER BY d.sort_order, d.id`, customerID)
}

func (s *Store) ListDiscounts(ctx context.Context) ([]CustomerDiscount, error) {
	return s.queryDiscounts(ctx, `SELECT`+discountColumns+`
        FROM customer_discounts d JOIN customers c ON c.id = d.customer_id
        ORDER BY c.name, d.sort_order, d.id`)
}

func (s *Store) SetDiscountActive(ctx context.Context, id string, active bool) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE customer_discounts SET is_active = $1, updated_at = NOW()
        WHERE id = $2`, active, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDiscountNotFound
	}
	return nil
}

// MonthlyVolume counts the customer's bookings created since the start of the current
// calendar month, cancelled ones excluded.
func (s *Store) MonthlyVolume(ctx context.Context, customerID string) (int, error) {
	var v int
	err := s.db.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM bookings
        WHERE customer_id = $1
          AND status <> 'cancelled'
          AND created_at >= date_trunc('month', NOW())`, customerID,
	).Scan(&v)
	return v, err
}

func (s *Store) queryDiscounts(ctx context.Context, query string, args ...any) ([]CustomerDiscount, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomerDiscount
	for rows.Next() {
		var d CustomerDiscount
		var name, tier sql.NullString
		var value string
		var conditions, tiers []byte
		var validFrom, validUntil sql.NullTime
		var minVolume sql.NullInt32
		if err := rows.Scan(
			&d.ID, &d.CustomerID, &d.CustomerName, &name, &d.DiscountType, &value, &conditions,
			&validFrom, &validUntil, &minVolume, &tiers, &tier,
			&d.IsActive, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		d.Name = name.String
		d.ContractTier = ContractTier(tier.String)
		d.ValidFrom = toTimePtr(validFrom)
		d.ValidUntil = toTimePtr(validUntil)
		if minVolume.Valid {
			v := int(minVolume.Int32)
			d.MinMonthlyVolume = &v
		}
		if d.Value, err = decimal.NewFromString(value); err != nil {
			return nil, err
		}
		if len(conditions) > 0 {
			if err := json.Unmarshal(conditions, &d.Conditions); err != nil {
				return nil, err
			}
		}
		if len(tiers) > 0 {
			if err := json.Unmarshal(tiers, &d.VolumeTiers); err != nil {
				return nil, err
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
