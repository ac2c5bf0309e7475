package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/entity"
	"giftfolio/internal/infrastructure/persistence"
	"giftfolio/pkg/dbtest"
	"giftfolio/pkg/errcodes"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db := dbtest.NewSQLite(t, persistence.Migrate, persistence.Migrate)
	require.NoError(t, persistence.Migrate(context.Background(), db))
}

func TestPriceCacheRepository(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewPriceCacheRepository(dbtest.NewSQLite(t, persistence.Migrate))

	const key = "lunarsnake|python dev|roman silver"

	_, _, found, err := repo.Get(ctx, key)
	rq.NoError(err)
	rq.False(found)

	t0 := time.Unix(1_760_000_000, 0)
	rq.NoError(repo.Put(ctx, key, decimal.RequireFromString("15"), t0))
	rq.NoError(repo.Put(ctx, key, decimal.RequireFromString("15.5"), t0.Add(time.Minute)))

	price, at, found, err := repo.Get(ctx, key)
	rq.NoError(err)
	rq.True(found)
	rq.True(price.Equal(decimal.RequireFromString("15.5")), price.String())
	rq.Equal(t0.Add(time.Minute).Unix(), at.Unix())

	rq.NoError(repo.Put(ctx, "old|x|", decimal.NewFromInt(1), t0.Add(-time.Hour)))

	pruned, err := repo.Prune(ctx, t0)
	rq.NoError(err)
	rq.EqualValues(1, pruned)

	_, _, found, err = repo.Get(ctx, "old|x|")
	rq.NoError(err)
	rq.False(found)

	_, _, found, err = repo.Get(ctx, key)
	rq.NoError(err)
	rq.True(found)
}

func TestSnapshotRepositoryUpsert(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewSnapshotRepository(dbtest.NewSQLite(t, persistence.Migrate))

	morning := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	snapshot := entity.Snapshot{
		UserID:          42,
		Date:            morning.Format(entity.SnapshotDateLayout),
		Timestamp:       morning,
		TotalValue:      decimal.RequireFromString("15.9"),
		GiftCount:       2,
		UpgradedCount:   1,
		UnupgradedCount: 1,
		UpgradedValue:   decimal.RequireFromString("15"),
		UnupgradedValue: decimal.RequireFromString("0.9"),
	}
	rq.NoError(repo.Upsert(ctx, snapshot))

	evening := morning.Add(10 * time.Hour)
	snapshot.Timestamp = evening
	snapshot.TotalValue = decimal.RequireFromString("20")
	snapshot.UpgradedValue = decimal.RequireFromString("19.1")
	rq.NoError(repo.Upsert(ctx, snapshot))

	got, err := repo.Get(ctx, 42, "2026-10-15")
	rq.NoError(err)
	rq.Equal(evening.Unix(), got.Timestamp.Unix())
	rq.True(got.TotalValue.Equal(decimal.NewFromInt(20)))
	rq.Equal(2, got.GiftCount)

	history, err := repo.History(ctx, 42, 10)
	rq.NoError(err)
	rq.Len(history, 1)

	_, err = repo.Get(ctx, 42, "2026-10-14")
	rq.True(domain.HasCode(err, errcodes.NotFound))
}
