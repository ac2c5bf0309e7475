// Package rest holds the request and response bodies of the HTTP API.
package rest

import "github.com/shopspring/decimal"

// QuoteItem is one gift to price by its collection and visible traits.
type QuoteItem struct {
	GiftName string `json:"gift_name" validate:"required,max=64"`
	Model    string `json:"model,omitempty" validate:"max=64"`
	Backdrop string `json:"backdrop,omitempty" validate:"max=64"`
}

type QuoteRequest struct {
	Items []QuoteItem `json:"items" validate:"required,min=1,dive"`
}

type Quote struct {
	QuoteItem

	Fingerprint string           `json:"fingerprint"`
	Price       *decimal.Decimal `json:"price"`
}

type QuoteResponse struct {
	Success bool    `json:"success"`
	Quotes  []Quote `json:"quotes"`
}

type Snapshot struct {
	Date            string          `json:"date"`
	Timestamp       int64           `json:"timestamp"`
	TotalValue      decimal.Decimal `json:"total_value"`
	GiftCount       int             `json:"gift_count"`
	UpgradedCount   int             `json:"upgraded_count"`
	UnupgradedCount int             `json:"unupgraded_count"`
	UpgradedValue   decimal.Decimal `json:"upgraded_value"`
	UnupgradedValue decimal.Decimal `json:"unupgraded_value"`
}

type SnapshotHistory struct {
	Success   bool       `json:"success"`
	UserID    int64      `json:"user_id"`
	Snapshots []Snapshot `json:"snapshots"`
}
