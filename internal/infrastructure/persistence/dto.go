package persistence

import (
	"time"

	"github.com/shopspring/decimal"

	"giftfolio/internal/domain/entity"
)

type priceCacheSchema struct {
	CacheKey string  `db:"cache_key"`
	Price    float64 `db:"price"`
	CachedAt int64   `db:"cached_at"`
}

type snapshotSchema struct {
	UserID            int64   `db:"user_id"`
	SnapshotDate      string  `db:"snapshot_date"`
	SnapshotTimestamp int64   `db:"snapshot_timestamp"`
	TotalValue        float64 `db:"total_value"`
	GiftCount         int     `db:"gift_count"`
	UpgradedCount     int     `db:"upgraded_count"`
	UnupgradedCount   int     `db:"unupgraded_count"`
	UpgradedValue     float64 `db:"upgraded_value"`
	UnupgradedValue   float64 `db:"unupgraded_value"`
}

func fromSnapshot(s entity.Snapshot) snapshotSchema {
	return snapshotSchema{
		UserID:            s.UserID,
		SnapshotDate:      s.Date,
		SnapshotTimestamp: s.Timestamp.Unix(),
		TotalValue:        s.TotalValue.InexactFloat64(),
		GiftCount:         s.GiftCount,
		UpgradedCount:     s.UpgradedCount,
		UnupgradedCount:   s.UnupgradedCount,
		UpgradedValue:     s.UpgradedValue.InexactFloat64(),
		UnupgradedValue:   s.UnupgradedValue.InexactFloat64(),
	}
}

func (s snapshotSchema) toDomain() entity.Snapshot {
	return entity.Snapshot{
		UserID:          s.UserID,
		Date:            s.SnapshotDate,
		Timestamp:       time.Unix(s.SnapshotTimestamp, 0),
		TotalValue:      decimal.NewFromFloat(s.TotalValue),
		GiftCount:       s.GiftCount,
		UpgradedCount:   s.UpgradedCount,
		UnupgradedCount: s.UnupgradedCount,
		UpgradedValue:   decimal.NewFromFloat(s.UpgradedValue),
		UnupgradedValue: decimal.NewFromFloat(s.UnupgradedValue),
	}
}
