package reply

import (
	"context"
	"errors"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	jsoniter "github.com/json-iterator/go"

	"giftfolio/pkg/contextx"
	"giftfolio/pkg/errcodes"
	"giftfolio/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// errorResponse keeps the failure document shape of the CLI and adds the code
// and support id for API clients.
type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	SupportID string `json:"supportId"`
}

func (e *errorResponse) WithDefaultCode(code failure.ErrorCode) {
	if e.Code == "" {
		e.Code = code.String()
	}
}

type codedError interface {
	error
	ErrCode() failure.ErrorCode
	UserMessage() string
}

//nolint:gochecknoglobals
var codeStatuses = map[failure.ErrorCode]int{
	errcodes.ValidationError:         http.StatusBadRequest,
	errcodes.NotFound:                http.StatusNotFound,
	errcodes.PeerNotFound:            http.StatusNotFound,
	errcodes.PeerInvalid:             http.StatusBadRequest,
	errcodes.PeerPrivate:             http.StatusForbidden,
	errcodes.SessionNotAuthenticated: http.StatusServiceUnavailable,
	errcodes.PoolDegraded:            http.StatusServiceUnavailable,
	errcodes.MarketplaceRateLimited:  http.StatusTooManyRequests,
	errcodes.MarketplaceUnavailable:  http.StatusBadGateway,
	errcodes.MarketplaceAuthRejected: http.StatusBadGateway,
	errcodes.TimeoutExceeded:         http.StatusGatewayTimeout,
}

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func OK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

func JSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger(ctx).Error("json.Encode", logx.Error(err))
	}
}

func Error(ctx context.Context, w http.ResponseWriter, err error) {
	logger(ctx).Error("error", logx.Error(err))

	response := errorResponse{
		Success:   false,
		SupportID: supportID(ctx),
	}

	var coded codedError
	if errors.As(err, &coded) {
		response.Code = coded.ErrCode().String()
		response.Error = coded.UserMessage()

		status, ok := codeStatuses[coded.ErrCode()]
		if !ok {
			status = http.StatusInternalServerError
		}

		JSON(ctx, w, status, response)

		return
	}

	response.Code = failure.Code(err).String()
	response.Error = failure.Description(err)

	switch {
	case failure.IsInvalidArgumentError(err):
		response.WithDefaultCode(errcodes.ValidationError)
		JSON(ctx, w, http.StatusBadRequest, response)
	case failure.IsNotFoundError(err):
		response.WithDefaultCode(errcodes.NotFound)
		JSON(ctx, w, http.StatusNotFound, response)
	case errors.Is(err, context.DeadlineExceeded):
		response.Code = errcodes.TimeoutExceeded.String()
		response.Error = "request timed out"
		JSON(ctx, w, http.StatusGatewayTimeout, response)
	default:
		response.WithDefaultCode(errcodes.InternalServerError)
		if response.Error == "" {
			response.Error = "internal error"
		}
		JSON(ctx, w, http.StatusInternalServerError, response)
	}
}

func supportID(ctx context.Context) string {
	traceID, err := contextx.TraceIDFromContext(ctx)
	if err != nil {
		return "unsupported"
	}

	return traceID.String()
}
