package actions

import "errors"

var (
	ErrUnmarshalEmptyAction = errors.New("cannot unmarshal empty bytes as an action")
	ErrUnexpectedTypeID     = errors.New("unexpected type id")
	ErrProofTooLong         = errors.New("gating proof is too long")
	ErrStaleMarketID        = errors.New("market id is not the next id to allocate")
)
