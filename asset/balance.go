package asset

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/keys"
	"github.com/ava-labs/hypersdk/state"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/radicleart/bigmarket-dao/consts"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceOverflow     = errors.New("balance overflow")
)

// BalanceKey returns the state key for an account's balance of a settlement token.
// Key format: AssetBalancePrefix | address | token | chunks
func BalanceKey(addr codec.Address, token ids.ID) []byte {
	key := make([]byte, 0, 1+codec.AddressLen+ids.IDLen+consts.Uint16Len)
	key = append(key, consts.AssetBalancePrefix)
	key = append(key, addr[:]...)
	key = append(key, token[:]...)
	return keys.EncodeChunks(key, consts.BalanceChunks)
}

// GetBalance retrieves the balance of token held by addr. A missing entry is a zero balance.
func GetBalance(ctx context.Context, im state.Immutable, addr codec.Address, token ids.ID) (uint64, error) {
	valBytes, err := im.GetValue(ctx, BalanceKey(addr, token))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get %s balance of %s: %w", token, addr, err)
	}
	return database.ParseUInt64(valBytes)
}

// SetBalance stores the balance of token held by addr. Zero balances are removed.
func SetBalance(ctx context.Context, mu state.Mutable, addr codec.Address, token ids.ID, balance uint64) error {
	key := BalanceKey(addr, token)
	if balance == 0 {
		if err := mu.Remove(ctx, key); err != nil && !errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("failed to remove zero %s balance of %s: %w", token, addr, err)
		}
		return nil
	}
	return mu.Insert(ctx, key, database.PackUInt64(balance))
}

// AddBalance credits amount of token to addr.
func AddBalance(ctx context.Context, mu state.Mutable, addr codec.Address, token ids.ID, amount uint64) error {
	current, err := GetBalance(ctx, mu, addr, token)
	if err != nil {
		return err
	}
	updated, err := smath.Add(current, amount)
	if err != nil {
		return fmt.Errorf("%w: %s balance of %s is %d, adding %d", ErrBalanceOverflow, token, addr, current, amount)
	}
	return SetBalance(ctx, mu, addr, token, updated)
}

// DeductBalance debits amount of token from addr.
// It returns ErrInsufficientBalance if the deduction is not possible.
func DeductBalance(ctx context.Context, mu state.Mutable, addr codec.Address, token ids.ID, amount uint64) error {
	current, err := GetBalance(ctx, mu, addr, token)
	if err != nil {
		return err
	}
	if current < amount {
		return fmt.Errorf("%w: %s has %d of %s, needs %d", ErrInsufficientBalance, addr, current, token, amount)
	}
	return SetBalance(ctx, mu, addr, token, current-amount)
}
