package escrow

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

	"github.com/radicleart/bigmarket-dao/asset"
	"github.com/radicleart/bigmarket-dao/consts"
)

var (
	ErrInsufficientFundsInEscrow = errors.New("insufficient funds in escrow")
	ErrAmountCannotBeZero        = errors.New("amount cannot be zero")
	ErrEscrowOverflow            = errors.New("escrow overflow")

	_ Gateway = StateGateway{}
)

// Gateway moves settlement-token amounts between participants and contract custody.
// It never mints or burns: every Pull is matched by a debit of from and every Push by
// a debit of custody.
type Gateway interface {
	Pull(ctx context.Context, mu state.Mutable, token ids.ID, from codec.Address, amount uint64) error
	Push(ctx context.Context, mu state.Mutable, token ids.ID, to codec.Address, amount uint64) error
}

// StateGateway keeps custody as one balance per token under EscrowPrefix and moves
// participant balances held by the asset package.
type StateGateway struct{}

// Key returns the custody key for token.
// Key: EscrowPrefix | token | chunks
func Key(token ids.ID) []byte {
	key := make([]byte, 1+ids.IDLen)
	key[0] = consts.EscrowPrefix
	copy(key[1:], token[:])
	return keys.EncodeChunks(key, consts.CustodyChunks)
}

// Pull locks amount of token from the participant into custody.
func (StateGateway) Pull(ctx context.Context, mu state.Mutable, token ids.ID, from codec.Address, amount uint64) error {
	if amount == 0 {
		return ErrAmountCannotBeZero
	}
	held, err := Custody(ctx, mu, token)
	if err != nil {
		return err
	}
	newHeld, err := smath.Add(held, amount)
	if err != nil {
		return fmt.Errorf("%w: custody of %s holds %d, adding %d", ErrEscrowOverflow, token, held, amount)
	}
	if err := asset.DeductBalance(ctx, mu, from, token, amount); err != nil {
		return fmt.Errorf("failed to pull %d of %s from %s: %w", amount, token, from, err)
	}
	return setCustody(ctx, mu, token, newHeld)
}

// Push releases amount of token from custody to the recipient.
func (StateGateway) Push(ctx context.Context, mu state.Mutable, token ids.ID, to codec.Address, amount uint64) error {
	if amount == 0 {
		return ErrAmountCannotBeZero
	}
	held, err := Custody(ctx, mu, token)
	if err != nil {
		return err
	}
	if held < amount {
		return fmt.Errorf("%w: custody of %s holds %d, needs to release %d",
			ErrInsufficientFundsInEscrow, token, held, amount)
	}
	if err := setCustody(ctx, mu, token, held-amount); err != nil {
		return err
	}
	if err := asset.AddBalance(ctx, mu, to, token, amount); err != nil {
		return fmt.Errorf("failed to push %d of %s to %s: %w", amount, token, to, err)
	}
	return nil
}

// Custody returns the amount of token held by the contract.
func Custody(ctx context.Context, im state.Immutable, token ids.ID) (uint64, error) {
	val, err := im.GetValue(ctx, Key(token))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get custody of %s: %w", token, err)
	}
	amount, err := database.ParseUInt64(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse custody of %s: %w", token, err)
	}
	return amount, nil
}

func setCustody(ctx context.Context, mu state.Mutable, token ids.ID, amount uint64) error {
	key := Key(token)
	if amount == 0 {
		if err := mu.Remove(ctx, key); err != nil && !errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("failed to remove emptied custody of %s: %w", token, err)
		}
		return nil
	}
	if err := mu.Insert(ctx, key, database.PackUInt64(amount)); err != nil {
		return fmt.Errorf("failed to update custody of %s: %w", token, err)
	}
	return nil
}
