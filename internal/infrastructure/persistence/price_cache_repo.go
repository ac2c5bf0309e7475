package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"giftfolio/internal/domain"
	"giftfolio/pkg/errcodes"
)

// PriceCacheRepository is the shared price table keyed by fingerprint.
type PriceCacheRepository struct {
	db *sqlx.DB
}

func NewPriceCacheRepository(db *sqlx.DB) *PriceCacheRepository {
	return &PriceCacheRepository{db: db}
}

// Get returns the stored price and its insertion time. found is false when
// the key has never been written.
func (r *PriceCacheRepository) Get(ctx context.Context, key string) (decimal.Decimal, time.Time, bool, error) {
	query := r.db.Rebind(`SELECT cache_key, price, cached_at FROM global_price_cache WHERE cache_key = ?`)

	var row priceCacheSchema
	if err := r.db.GetContext(ctx, &row, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Decimal{}, time.Time{}, false, nil
		}
		return decimal.Decimal{}, time.Time{}, false, domain.WrapError(err, errcodes.CacheReadFailed, "failed to read price cache")
	}

	return decimal.NewFromFloat(row.Price), time.Unix(row.CachedAt, 0), true, nil
}

// Put overwrites the entry, last write wins.
func (r *PriceCacheRepository) Put(ctx context.Context, key string, price decimal.Decimal, at time.Time) error {
	query := `
		INSERT INTO global_price_cache (cache_key, price, cached_at)
		VALUES (:cache_key, :price, :cached_at)
		ON CONFLICT (cache_key) DO UPDATE SET
			price = excluded.price,
			cached_at = excluded.cached_at`

	row := priceCacheSchema{
		CacheKey: key,
		Price:    price.InexactFloat64(),
		CachedAt: at.Unix(),
	}

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return domain.WrapError(err, errcodes.CacheWriteFailed, "failed to write price cache")
	}
	return nil
}

// Prune deletes entries inserted before the cutoff.
func (r *PriceCacheRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	query := r.db.Rebind(`DELETE FROM global_price_cache WHERE cached_at < ?`)

	res, err := r.db.ExecContext(ctx, query, before.Unix())
	if err != nil {
		return 0, domain.WrapError(err, errcodes.CacheWriteFailed, "failed to prune price cache")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, domain.WrapError(err, errcodes.CacheWriteFailed, "failed to check rows")
	}

	return rows, nil
}
