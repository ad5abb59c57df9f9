package market

import (
	"errors"

	"github.com/radicleart/bigmarket-dao/consts"
)

var (
	ErrNotPermitted  = errors.New("caller is not a permitted market creator")
	ErrTokenMismatch = errors.New("token does not match the market's settlement token")
	ErrZeroAmount    = errors.New("stake amount must be positive")
	ErrInvalidState  = errors.New("market is not in a state that allows this operation")
	ErrNotFound      = errors.New("market not found")
	ErrNotEntitled   = errors.New("no winning stake to claim")
	ErrUnauthorized  = errors.New("caller is not authorized for this operation")
	ErrOverflow      = errors.New("amount overflows")
)

var errorCodes = []struct {
	err  error
	code uint32
}{
	{ErrNotPermitted, consts.ErrCodeNotPermitted},
	{ErrTokenMismatch, consts.ErrCodeTokenMismatch},
	{ErrZeroAmount, consts.ErrCodeZeroAmount},
	{ErrInvalidState, consts.ErrCodeInvalidState},
	{ErrNotFound, consts.ErrCodeNotFound},
	{ErrNotEntitled, consts.ErrCodeNotEntitled},
	{ErrUnauthorized, consts.ErrCodeUnauthorized},
	{ErrOverflow, consts.ErrCodeOverflow},
}

// Code returns the numeric code of the settlement error wrapped by err. Errors that
// come from elsewhere (storage, the token gateway) have no code.
func Code(err error) (uint32, bool) {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code, true
		}
	}
	return 0, false
}
