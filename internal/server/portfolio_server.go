package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/entity"
	"giftfolio/internal/domain/service/portfolio"
	"giftfolio/pkg/errcodes"
	"giftfolio/pkg/httpx/reply"
	"giftfolio/pkg/lox"
	"giftfolio/pkg/rest"
)

const (
	defaultHistory = 30
	maxHistory     = 365
)

type assembler interface {
	Assemble(ctx context.Context, rawPeer string) (*entity.Portfolio, error)
}

type snapshotHistory interface {
	History(ctx context.Context, userID int64, limit int) ([]entity.Snapshot, error)
}

type PortfolioServer struct {
	assembler assembler
	snapshots snapshotHistory
}

func NewPortfolioServer(assembler assembler, snapshots snapshotHistory) PortfolioServer {
	return PortfolioServer{
		assembler: assembler,
		snapshots: snapshots,
	}
}

func (s PortfolioServer) getV1Portfolio(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	p, err := s.assembler.Assemble(ctx, chi.URLParam(r, "peer"))
	if err != nil {
		return fmt.Errorf("assembler.Assemble: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, portfolio.NewResult(p))

	return nil
}

func (s PortfolioServer) getV1Snapshots(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil || userID <= 0 {
		return domain.NewError(errcodes.ValidationError, "user_id must be a positive integer")
	}

	limit := defaultHistory
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxHistory {
			return domain.NewError(errcodes.ValidationError, fmt.Sprintf("limit must be between 1 and %d", maxHistory))
		}
	}

	history, err := s.snapshots.History(ctx, userID, limit)
	if err != nil {
		return fmt.Errorf("snapshots.History: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.SnapshotHistory{
		Success:   true,
		UserID:    userID,
		Snapshots: lox.Map(history, newRESTSnapshot),
	})

	return nil
}
