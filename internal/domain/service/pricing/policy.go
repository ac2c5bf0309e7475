package pricing

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/value"
)

// Filter is one marketplace listing query. Empty fields are not filtered on.
type Filter struct {
	Collection string
	Model      string
	Backdrop   string
}

// Querier returns the cheapest listing matching a filter, or nil when nothing
// is listed.
type Querier interface {
	Lowest(ctx context.Context, f Filter) (*decimal.Decimal, error)
}

// Backdrops whose combo listing is authoritative even when cheaper than the model floor.
//
//nolint:gochecknoglobals
var specialBackdrops = map[string]struct{}{
	"onyx black": {},
	"black 2":    {},
}

func IsSpecialBackdrop(backdrop string) bool {
	_, ok := specialBackdrops[backdrop]
	return ok
}

// Quote prices one fingerprint through q.
func Quote(ctx context.Context, q Querier, fp value.Fingerprint) (*decimal.Decimal, error) {
	floor := Filter{Collection: fp.Collection}

	switch {
	case IsSpecialBackdrop(fp.Backdrop):
		return quoteSpecial(ctx, q, fp)
	case fp.Model != "" && fp.Backdrop != "":
		return quoteMax(ctx, q, fp)
	case fp.Model != "":
		return q.Lowest(ctx, Filter{Collection: fp.Collection, Model: fp.Model})
	case fp.Backdrop != "":
		return q.Lowest(ctx, Filter{Collection: fp.Collection, Backdrop: fp.Backdrop})
	default:
		return q.Lowest(ctx, floor)
	}
}

// quoteSpecial cascades combo, backdrop only, then the collection floor.
func quoteSpecial(ctx context.Context, q Querier, fp value.Fingerprint) (*decimal.Decimal, error) {
	cascade := []Filter{
		{Collection: fp.Collection, Backdrop: fp.Backdrop},
		{Collection: fp.Collection},
	}
	if fp.Model != "" {
		cascade = append([]Filter{{Collection: fp.Collection, Model: fp.Model, Backdrop: fp.Backdrop}}, cascade...)
	}

	for _, f := range cascade {
		price, err := q.Lowest(ctx, f)
		if err != nil {
			return nil, err
		}

		if price != nil {
			return price, nil
		}
	}

	return nil, nil //nolint:nilnil
}

// quoteMax runs the model-only and combo queries together and keeps the
// higher price so an underpriced combo listing never lowers the estimate.
func quoteMax(ctx context.Context, q Querier, fp value.Fingerprint) (*decimal.Decimal, error) {
	var (
		modelPrice, comboPrice *decimal.Decimal
		modelErr, comboErr     error
		g                      errgroup.Group
	)

	g.Go(func() error {
		modelPrice, modelErr = q.Lowest(ctx, Filter{Collection: fp.Collection, Model: fp.Model})
		return nil
	})
	g.Go(func() error {
		comboPrice, comboErr = q.Lowest(ctx, Filter{Collection: fp.Collection, Model: fp.Model, Backdrop: fp.Backdrop})
		return nil
	})
	_ = g.Wait()

	switch {
	case modelPrice != nil && comboPrice != nil:
		if comboPrice.GreaterThan(*modelPrice) {
			return comboPrice, nil
		}
		return modelPrice, nil
	case modelPrice != nil:
		return modelPrice, nil
	case comboPrice != nil:
		return comboPrice, nil
	}

	if err := firstError(modelErr, comboErr); err != nil {
		return nil, err
	}

	return q.Lowest(ctx, Filter{Collection: fp.Collection})
}

// firstError prefers a rate-limit rejection so callers can back off harder.
func firstError(errs ...error) error {
	for _, err := range errs {
		if errors.Is(err, domain.ErrMarketplaceRateLimited) {
			return err
		}
	}

	return errors.Join(errs...)
}
