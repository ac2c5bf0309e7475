package domain

import (
	"errors"
	"fmt"

	"git.appkode.ru/pub/go/failure"

	"giftfolio/pkg/errcodes"
)

// AppError представляет доменную ошибку приложения с машиночитаемым кодом.
type AppError struct {
	Code    failure.ErrorCode
	Message string
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) ErrCode() failure.ErrorCode {
	return e.Code
}

// UserMessage возвращает сообщение без технической причины.
func (e *AppError) UserMessage() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is сравнивает ошибки по коду, поэтому sentinel-ошибки работают как виды.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func NewError(code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func WrapError(err error, code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   err,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode извлекает код внешней AppError в цепочке.
func GetCode(err error) (failure.ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// HasCode проверяет, есть ли в цепочке AppError с этим кодом.
func HasCode(err error, code failure.ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.cause
	}
	return false
}

var (
	ErrSessionNotAuthenticated = NewError(errcodes.SessionNotAuthenticated, "telegram session is not authenticated")
	ErrMarketplaceAuthRejected = NewError(errcodes.MarketplaceAuthRejected, "marketplace rejected the session token")
	ErrMarketplaceRateLimited  = NewError(errcodes.MarketplaceRateLimited, "marketplace rate limit reached")
	ErrPoolDegraded            = NewError(errcodes.PoolDegraded, "no marketplace session could be authenticated")
)

// PeerError создаёт одну из трёх фатальных ошибок пира. Текст сообщения
// показывается пользователю как есть.
func PeerError(code failure.ErrorCode, peer string, cause error) *AppError {
	var msg string
	switch code {
	case errcodes.PeerNotFound:
		msg = "User not found: " + peer
	default:
		msg = "User ID invalid, private, or blocked: " + peer
	}

	return &AppError{Code: code, Message: msg, cause: cause}
}

// UserMessage возвращает текст для документа об ошибке: сообщение AppError
// без технической причины, если она есть.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
