package market

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/state"
	"go.uber.org/zap"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/radicleart/bigmarket-dao/consts"
	"github.com/radicleart/bigmarket-dao/storage"
)

// PredictYesStake stakes amount of token on YES.
func (e *Engine) PredictYesStake(ctx context.Context, mu state.Mutable, call Call, marketID uint64, amount uint64, token ids.ID) error {
	return e.Stake(ctx, mu, call, marketID, consts.YesSide, amount, token)
}

// PredictNoStake stakes amount of token on NO.
func (e *Engine) PredictNoStake(ctx context.Context, mu state.Mutable, call Call, marketID uint64, amount uint64, token ids.ID) error {
	return e.Stake(ctx, mu, call, marketID, consts.NoSide, amount, token)
}

// Stake locks amount of token in custody and credits it to the caller's position on
// side. Positions accumulate and may be held on both sides.
func (e *Engine) Stake(ctx context.Context, mu state.Mutable, call Call, marketID uint64, side uint8, amount uint64, token ids.ID) error {
	m, err := loadMarket(ctx, mu, marketID)
	if err != nil {
		return err
	}
	if m.State != consts.Open {
		return fmt.Errorf("%w: market %d is %s", ErrInvalidState, marketID, m.State)
	}
	if token != m.Token {
		return fmt.Errorf("%w: market %d settles in %s, got %s", ErrTokenMismatch, marketID, m.Token, token)
	}
	if amount == 0 {
		return ErrZeroAmount
	}

	balance, err := storage.GetStake(ctx, mu, marketID, call.Caller)
	if err != nil {
		return err
	}
	total, err := smath.Add(m.YesPool, m.NoPool)
	if err != nil {
		return fmt.Errorf("%w: total pool of market %d", ErrOverflow, marketID)
	}
	if _, err := smath.Add(total, amount); err != nil {
		return fmt.Errorf("%w: total pool of market %d", ErrOverflow, marketID)
	}
	// Both sums are bounded by the total pool checked above.
	newPool := m.Pool(side) + amount
	newStake := balance.Amount(side) + amount

	if err := e.gateway.Pull(ctx, mu, token, call.Caller, amount); err != nil {
		return fmt.Errorf("failed to lock stake in market %d: %w", marketID, err)
	}
	balance.SetAmount(side, newStake)
	if err := storage.SetStake(ctx, mu, marketID, call.Caller, balance); err != nil {
		return err
	}
	m.SetPool(side, newPool)
	if err := storage.SetMarket(ctx, mu, m); err != nil {
		return err
	}

	e.log.Debug("stake placed",
		zap.Uint64("marketID", marketID),
		zap.String("side", consts.SideToString(side)),
		zap.Stringer("participant", call.Caller),
		zap.Uint64("amount", amount),
	)
	return nil
}
