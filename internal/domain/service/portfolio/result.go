package portfolio

import (
	"github.com/shopspring/decimal"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/entity"
)

// Result is the JSON document printed by the CLI and served over HTTP.
type Result struct {
	Success    bool            `json:"success"`
	Total      int             `json:"total"`
	NFTCount   int             `json:"nft_count"`
	TotalValue decimal.Decimal `json:"total_value"`
	Gifts      []entity.Gift   `json:"gifts"`
}

func NewResult(p *entity.Portfolio) Result {
	gifts := p.Gifts
	if gifts == nil {
		gifts = []entity.Gift{}
	}

	return Result{
		Success:    true,
		Total:      len(gifts),
		NFTCount:   p.NFTCount(),
		TotalValue: p.TotalValue,
		Gifts:      gifts,
	}
}

// FailureResult carries the user-facing message of the outermost domain error.
type FailureResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func NewFailureResult(err error) FailureResult {
	return FailureResult{Error: domain.UserMessage(err)}
}
