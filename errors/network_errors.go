package errors

import (
	stderrors "errors"

	"github.com/web4asset/w4t/dispatch"
	"github.com/web4asset/w4t/jsonx"
	"github.com/web4asset/w4t/ledger"
	"github.com/web4asset/w4t/mint"
	"github.com/web4asset/w4t/origin"
	"github.com/web4asset/w4t/types"
)

// NetworkErrorCode represents standardized error codes for network operations
type NetworkErrorCode string

const (
	// General errors
	ErrCodeInternal NetworkErrorCode = "internal_error"

	// Validation errors
	ErrCodeInvalidRequest   NetworkErrorCode = "invalid_request"
	ErrCodeInvalidSignature NetworkErrorCode = "invalid_signature"
	ErrCodeInvalidAddress   NetworkErrorCode = "invalid_address"
	ErrCodeInvalidNonce     NetworkErrorCode = "invalid_nonce"

	// Business logic errors
	ErrCodeUnauthorized NetworkErrorCode = "unauthorized"
	ErrCodeNotMinter    NetworkErrorCode = "not_minter"
	ErrCodeOverflow     NetworkErrorCode = "overflow"

	// System errors
	ErrCodeQueueFull   NetworkErrorCode = "queue_full"
	ErrCodeUnavailable NetworkErrorCode = "unavailable"
)

// NetworkError represents a standardized network error
type NetworkError struct {
	Code    NetworkErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	err, _ := jsonx.Marshal(NetworkError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(err)
}

// Error message constants - user-friendly and concise
const (
	ErrMsgInvalidRequest   = "Request format is invalid"
	ErrMsgInvalidSignature = "Call signature is invalid"
	ErrMsgInvalidAddress   = "Account address is invalid"
	ErrMsgInvalidNonce     = "Call nonce is invalid"
	ErrMsgUnauthorized     = "Call must carry a verified signature"
	ErrMsgNotMinter        = "Caller is not allowed to mint"
	ErrMsgOverflow         = "Amount would overflow the balance or total supply"
	ErrMsgQueueFull        = "Ledger is busy, please try again"
	ErrMsgUnavailable      = "Ledger is shutting down"
	ErrMsgInternal         = "Server error, please try again"
)

// NewError creates a new NetworkError and returns it as error interface
func NewError(code NetworkErrorCode, message string) error {
	return &NetworkError{
		Code:    code,
		Message: message,
	}
}

// Classify maps a ledger, mint, origin or dispatch error to its network error.
// Errors that are already NetworkErrors are returned unchanged.
func Classify(err error) *NetworkError {
	if err == nil {
		return nil
	}
	var ne *NetworkError
	if stderrors.As(err, &ne) {
		return ne
	}

	switch {
	case stderrors.Is(err, mint.ErrUnauthorized), stderrors.Is(err, origin.ErrMissingSignature):
		return &NetworkError{Code: ErrCodeUnauthorized, Message: ErrMsgUnauthorized}
	case stderrors.Is(err, mint.ErrNotMinter):
		return &NetworkError{Code: ErrCodeNotMinter, Message: ErrMsgNotMinter}
	case stderrors.Is(err, origin.ErrInvalidSignature):
		return &NetworkError{Code: ErrCodeInvalidSignature, Message: ErrMsgInvalidSignature}
	case stderrors.Is(err, origin.ErrMalformedCaller),
		stderrors.Is(err, ledger.ErrInvalidAccount),
		stderrors.Is(err, types.ErrEmptyAccountID):
		return &NetworkError{Code: ErrCodeInvalidAddress, Message: ErrMsgInvalidAddress}
	case stderrors.Is(err, dispatch.ErrInvalidNonce):
		return &NetworkError{Code: ErrCodeInvalidNonce, Message: ErrMsgInvalidNonce}
	case stderrors.Is(err, ledger.ErrOverflow):
		return &NetworkError{Code: ErrCodeOverflow, Message: ErrMsgOverflow}
	case stderrors.Is(err, dispatch.ErrQueueFull):
		return &NetworkError{Code: ErrCodeQueueFull, Message: ErrMsgQueueFull}
	case stderrors.Is(err, dispatch.ErrStopped):
		return &NetworkError{Code: ErrCodeUnavailable, Message: ErrMsgUnavailable}
	default:
		return &NetworkError{Code: ErrCodeInternal, Message: ErrMsgInternal}
	}
}
