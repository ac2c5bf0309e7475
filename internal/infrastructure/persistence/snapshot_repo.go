package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/entity"
	"giftfolio/pkg/errcodes"
)

type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.SnapshotNotStored, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.SnapshotNotStored, "failed to commit")
	}
	return nil
}

// Upsert stores the snapshot, replacing an earlier one for the same user and day.
func (r *SnapshotRepository) Upsert(ctx context.Context, snapshot entity.Snapshot) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO portfolio_snapshots (
				user_id, snapshot_date, snapshot_timestamp, total_value, gift_count,
				upgraded_count, unupgraded_count, upgraded_value, unupgraded_value
			) VALUES (
				:user_id, :snapshot_date, :snapshot_timestamp, :total_value, :gift_count,
				:upgraded_count, :unupgraded_count, :upgraded_value, :unupgraded_value
			)
			ON CONFLICT (user_id, snapshot_date) DO UPDATE SET
				snapshot_timestamp = excluded.snapshot_timestamp,
				total_value = excluded.total_value,
				gift_count = excluded.gift_count,
				upgraded_count = excluded.upgraded_count,
				unupgraded_count = excluded.unupgraded_count,
				upgraded_value = excluded.upgraded_value,
				unupgraded_value = excluded.unupgraded_value`

		if _, err := tx.NamedExecContext(ctx, query, fromSnapshot(snapshot)); err != nil {
			return domain.WrapError(err, errcodes.SnapshotNotStored, "failed to upsert snapshot")
		}
		return nil
	})
}

func (r *SnapshotRepository) Get(ctx context.Context, userID int64, date string) (entity.Snapshot, error) {
	query := r.db.Rebind(`SELECT * FROM portfolio_snapshots WHERE user_id = ? AND snapshot_date = ?`)

	var row snapshotSchema
	if err := r.db.GetContext(ctx, &row, query, userID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Snapshot{}, domain.NewError(errcodes.NotFound, "snapshot not found")
		}
		return entity.Snapshot{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get snapshot")
	}

	return row.toDomain(), nil
}

// History lists a user's snapshots, newest first.
func (r *SnapshotRepository) History(ctx context.Context, userID int64, limit int) ([]entity.Snapshot, error) {
	query := r.db.Rebind(`
		SELECT * FROM portfolio_snapshots
		WHERE user_id = ?
		ORDER BY snapshot_date DESC
		LIMIT ?`)

	var rows []snapshotSchema
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list snapshots")
	}

	result := make([]entity.Snapshot, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}
