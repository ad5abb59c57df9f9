package storage

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/keys"
	"github.com/ava-labs/hypersdk/state"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/radicleart/bigmarket-dao/consts"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// BalanceKey returns the state key for an address's native (fee) token balance.
// Format: BalancePrefix | Address | chunks -> uint64
func BalanceKey(addr codec.Address) []byte {
	key := make([]byte, 1+codec.AddressLen)
	key[0] = consts.BalancePrefix
	copy(key[1:], addr[:])
	return keys.EncodeChunks(key, consts.BalanceChunks)
}

// GetBalance retrieves the native token balance for a given address.
func GetBalance(ctx context.Context, im state.Immutable, addr codec.Address) (uint64, error) {
	valBytes, err := im.GetValue(ctx, BalanceKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil // Address has no balance, treat as 0
	}
	if err != nil {
		return 0, err
	}
	return database.ParseUInt64(valBytes)
}

// SetBalance sets the native token balance for a given address.
func SetBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount uint64) error {
	return mu.Insert(ctx, BalanceKey(addr), database.PackUInt64(amount))
}

// DeductBalance subtracts an amount from an address's native token balance.
// It returns ErrInsufficientBalance if the deduction is not possible.
func DeductBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount uint64) error {
	currentBalance, err := GetBalance(ctx, mu, addr)
	if err != nil {
		return err
	}
	if currentBalance < amount {
		return ErrInsufficientBalance
	}
	return SetBalance(ctx, mu, addr, currentBalance-amount)
}

// AddBalance adds an amount to an address's native token balance.
func AddBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount uint64) error {
	currentBalance, err := GetBalance(ctx, mu, addr)
	if err != nil {
		return err
	}
	newBalance, err := smath.Add(currentBalance, amount)
	if err != nil {
		return err
	}
	return SetBalance(ctx, mu, addr, newBalance)
}
