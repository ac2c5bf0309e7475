package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/value"
	"giftfolio/pkg/errcodes"
	"giftfolio/pkg/httpx/reply"
	"giftfolio/pkg/httpx/req"
	"giftfolio/pkg/lox"
	"giftfolio/pkg/rest"
)

type priceBatcher interface {
	PriceMany(ctx context.Context, fps []value.Fingerprint) map[string]*decimal.Decimal
}

type QuoteServer struct {
	prices    priceBatcher
	maxQuotes int
}

func NewQuoteServer(prices priceBatcher, maxQuotes int) QuoteServer {
	return QuoteServer{
		prices:    prices,
		maxQuotes: maxQuotes,
	}
}

func (s QuoteServer) postV1Quotes(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.QuoteRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if len(request.Items) > s.maxQuotes {
		return domain.NewError(errcodes.ValidationError, fmt.Sprintf("at most %d items per request", s.maxQuotes))
	}

	fps := lox.Map(request.Items, newDomainFingerprint)
	prices := s.prices.PriceMany(ctx, fps)

	quotes := make([]rest.Quote, len(request.Items))
	for i, item := range request.Items {
		quotes[i] = newRESTQuote(item, fps[i], prices[fps[i].Key()])
	}

	reply.JSON(ctx, w, http.StatusOK, rest.QuoteResponse{Success: true, Quotes: quotes})

	return nil
}
