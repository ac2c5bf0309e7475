package server

import (
	"github.com/shopspring/decimal"

	"giftfolio/internal/domain/entity"
	"giftfolio/internal/domain/value"
	"giftfolio/pkg/rest"
)

func newRESTSnapshot(s entity.Snapshot) rest.Snapshot {
	return rest.Snapshot{
		Date:            s.Date,
		Timestamp:       s.Timestamp.Unix(),
		TotalValue:      s.TotalValue,
		GiftCount:       s.GiftCount,
		UpgradedCount:   s.UpgradedCount,
		UnupgradedCount: s.UnupgradedCount,
		UpgradedValue:   s.UpgradedValue,
		UnupgradedValue: s.UnupgradedValue,
	}
}

func newDomainFingerprint(item rest.QuoteItem) value.Fingerprint {
	return value.NewFingerprint(value.CollectionFromTitle(item.GiftName), item.Model, item.Backdrop)
}

func newRESTQuote(item rest.QuoteItem, fp value.Fingerprint, price *decimal.Decimal) rest.Quote {
	return rest.Quote{
		QuoteItem:   item,
		Fingerprint: fp.Key(),
		Price:       price,
	}
}
