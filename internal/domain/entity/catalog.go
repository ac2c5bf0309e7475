package entity

import "github.com/shopspring/decimal"

// CatalogEntry is static reference data for a gift type.
type CatalogEntry struct {
	ID         int64           `json:"-"`
	ShortName  string          `json:"short_name"`
	FullName   string          `json:"full_name"`
	Supply     int             `json:"supply"`
	FloorPrice decimal.Decimal `json:"floor_price"`
}
