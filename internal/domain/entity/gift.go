package entity

import (
	"github.com/shopspring/decimal"

	"giftfolio/internal/domain/value"
)

//nolint:gochecknoinits
func init() {
	// TON amounts are rendered as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// GiftClass is the mutually exclusive upgrade state of a saved gift.
type GiftClass int

const (
	ClassUpgraded GiftClass = iota + 1
	ClassUnupgradeable
	ClassUnupgraded
)

func (c GiftClass) String() string {
	switch c {
	case ClassUpgraded:
		return "upgraded"
	case ClassUnupgradeable:
		return "unupgradeable"
	case ClassUnupgraded:
		return "unupgraded"
	default:
		return "unknown"
	}
}

type Gift struct {
	Slug               string           `json:"slug,omitempty"`
	GiftID             int64            `json:"gift_id,omitempty"`
	Pinned             bool             `json:"pinned"`
	IsUpgraded         bool             `json:"is_upgraded"`
	IsUnupgradeable    bool             `json:"is_unupgradeable"`
	IsUnupgraded       bool             `json:"is_unupgraded"`
	Title              string           `json:"title"`
	Num                int              `json:"num,omitempty"`
	AvailabilityIssued int              `json:"availability_issued"`
	AvailabilityTotal  int              `json:"availability_total"`
	Model              *value.Attribute `json:"model"`
	Backdrop           *value.Attribute `json:"backdrop"`
	Pattern            *value.Attribute `json:"pattern"`
	ImageURL           string           `json:"image_url"`
	Link               string           `json:"link,omitempty"`
	Price              *decimal.Decimal `json:"price"`
}

func (g *Gift) Class() GiftClass {
	switch {
	case g.IsUpgraded:
		return ClassUpgraded
	case g.IsUnupgradeable:
		return ClassUnupgradeable
	case g.IsUnupgraded:
		return ClassUnupgraded
	default:
		return 0
	}
}

// SetClass keeps exactly one class flag set.
func (g *Gift) SetClass(c GiftClass) {
	g.IsUpgraded = c == ClassUpgraded
	g.IsUnupgradeable = c == ClassUnupgradeable
	g.IsUnupgraded = c == ClassUnupgraded
}

func (g *Gift) Attributes() value.GiftAttributes {
	return value.GiftAttributes{Model: g.Model, Backdrop: g.Backdrop, Pattern: g.Pattern}
}

// Fingerprint returns the pricing key. ok is false for gifts that are not
// priced through the primary marketplace.
func (g *Gift) Fingerprint() (value.Fingerprint, bool) {
	switch g.Class() {
	case ClassUpgraded:
		attrs := g.Attributes()
		return value.NewFingerprint(value.CollectionFromSlug(g.Slug), attrs.ModelName(), attrs.BackdropName()), true
	case ClassUnupgraded:
		if g.Title == "" {
			return value.Fingerprint{}, false
		}
		return value.NewFingerprint(value.CollectionFromTitle(g.Title), "", ""), true
	default:
		return value.Fingerprint{}, false
	}
}

// SetPrice stores p; negative prices are treated as unknown.
func (g *Gift) SetPrice(p *decimal.Decimal) {
	if p == nil || p.IsNegative() {
		g.Price = nil
		return
	}
	price := *p
	g.Price = &price
}
