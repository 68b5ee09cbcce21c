package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Config struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func NewPostgres(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

const recomputeTotalsQuery = `
    UPDATE products p
    SET total_quantity = COALESCE(t.qty, 0),
        total_value = COALESCE(t.value, 0),
        updated_at = NOW()
    FROM (
        SELECT SUM(GREATEST(quantity, 0)) AS qty,
               SUM(GREATEST(quantity, 0) * cost_price) AS value
        FROM product_variants
        WHERE product_id = $1 AND is_active AND variant_type <> 'imei_child'
    ) t
    WHERE p.id = $1
`

// RecomputeProductTotals rewrites products.total_quantity and total_value
// from the product's active, non-child variants. Child rows are units of
// their parent's stock and are not counted twice.
func RecomputeProductTotals(ctx context.Context, db sqlx.ExecerContext, productID string) error {
	_, err := db.ExecContext(ctx, recomputeTotalsQuery, productID)
	return err
}
