package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is the assembled result for one peer.
type Portfolio struct {
	UserID     int64
	Gifts      []Gift
	TotalCount int
	TotalValue decimal.Decimal
}

func (p *Portfolio) NFTCount() int {
	var n int
	for i := range p.Gifts {
		if p.Gifts[i].IsUpgraded {
			n++
		}
	}
	return n
}

// Snapshot is the daily roll-up persisted per (user, date).
type Snapshot struct {
	UserID          int64
	Date            string
	Timestamp       time.Time
	TotalValue      decimal.Decimal
	GiftCount       int
	UpgradedCount   int
	UnupgradedCount int
	UpgradedValue   decimal.Decimal
	UnupgradedValue decimal.Decimal
}

const SnapshotDateLayout = time.DateOnly

// NewSnapshot sums priced gifts per class. Unupgradeable and unupgraded gifts
// both count as unupgraded.
func NewSnapshot(p *Portfolio, now time.Time) Snapshot {
	s := Snapshot{
		UserID:    p.UserID,
		Date:      now.Format(SnapshotDateLayout),
		Timestamp: now,
		GiftCount: len(p.Gifts),
	}

	for i := range p.Gifts {
		g := &p.Gifts[i]
		if g.IsUpgraded {
			s.UpgradedCount++
			if g.Price != nil {
				s.UpgradedValue = s.UpgradedValue.Add(*g.Price)
			}
			continue
		}

		s.UnupgradedCount++
		if g.Price != nil {
			s.UnupgradedValue = s.UnupgradedValue.Add(*g.Price)
		}
	}

	s.TotalValue = s.UpgradedValue.Add(s.UnupgradedValue)

	return s
}

// SumPrices adds every non-null price.
func SumPrices(gifts []Gift) decimal.Decimal {
	total := decimal.Zero
	for i := range gifts {
		if gifts[i].Price != nil {
			total = total.Add(*gifts[i].Price)
		}
	}
	return total
}

// GiftPage is one page of a peer's saved gifts in server order.
type GiftPage struct {
	Gifts      []Gift
	Count      int
	NextOffset string
}
