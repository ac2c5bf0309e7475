package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"giftfolio/pkg/logx"
	"giftfolio/pkg/middlewarex"
)

// Server groups the HTTP handlers of each resource.
type Server struct {
	PortfolioServer
	QuoteServer
}

func NewServer(
	portfolioServer PortfolioServer,
	quoteServer QuoteServer,
) Server {
	return Server{
		PortfolioServer: portfolioServer,
		QuoteServer:     quoteServer,
	}
}

type RouterOptions struct {
	Masker         logx.SensitiveDataMaskerInterface
	LogFieldMaxLen int
	DumpBodies     bool
}

// Router wires middleware and routes into one handler.
func (s Server) Router(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewarex.TraceID)
	r.Use(middlewarex.Logger)
	r.Use(middlewarex.Recovery)

	if opts.DumpBodies && opts.Masker != nil {
		r.Use(middlewarex.RequestLogging(opts.Masker, opts.LogFieldMaxLen))
		r.Use(middlewarex.ResponseLogging(opts.Masker, opts.LogFieldMaxLen))
	}

	s.RegisterRoutes(r)

	return r
}
