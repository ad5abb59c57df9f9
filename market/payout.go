package market

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/state"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/radicleart/bigmarket-dao/consts"
	"github.com/radicleart/bigmarket-dao/storage"
)

var basisPoints = uint256.NewInt(consts.BasisPoints)

// NetPool applies each fee rate of schedule, in order, to what is left of total.
// Each fee is rounded down.
func NetPool(total uint64, schedule []uint64) uint64 {
	net := uint256.NewInt(total)
	for _, bips := range schedule {
		bips = min(bips, consts.BasisPoints)
		// net*bips/10000 never exceeds net, so it can't overflow.
		fee, _ := new(uint256.Int).MulDivOverflow(net, uint256.NewInt(bips), basisPoints)
		net.Sub(net, fee)
	}
	return net.Uint64()
}

// Payout returns floor(netPool*stake/winningPool) using a 256-bit intermediate.
func Payout(netPool, stake, winningPool uint64) (uint64, error) {
	if stake > winningPool {
		return 0, fmt.Errorf("%w: stake %d exceeds winning pool %d", ErrInvalidState, stake, winningPool)
	}
	payout, overflow := new(uint256.Int).MulDivOverflow(
		uint256.NewInt(netPool),
		uint256.NewInt(stake),
		uint256.NewInt(winningPool),
	)
	if overflow || !payout.IsUint64() {
		return 0, fmt.Errorf("%w: payout of %d from %d", ErrOverflow, stake, netPool)
	}
	return payout.Uint64(), nil
}

// ClaimWinnings pays the caller's share of a concluded market and returns the amount
// paid. The claimed stake is zeroed first, so a second claim finds nothing.
func (e *Engine) ClaimWinnings(ctx context.Context, mu state.Mutable, call Call, marketID uint64, token ids.ID) (uint64, error) {
	m, err := loadMarket(ctx, mu, marketID)
	if err != nil {
		return 0, err
	}
	if !m.Concluded {
		return 0, fmt.Errorf("%w: market %d is %s", ErrInvalidState, marketID, m.State)
	}
	if token != m.Token {
		return 0, fmt.Errorf("%w: market %d settles in %s, got %s", ErrTokenMismatch, marketID, m.Token, token)
	}
	balance, err := storage.GetStake(ctx, mu, marketID, call.Caller)
	if err != nil {
		return 0, err
	}

	s := m.Settlement
	side := consts.SideOf(m.Outcome)
	if s.Refund {
		// Nobody backed the outcome, so every stake is on the other side.
		side = consts.SideOf(!m.Outcome)
	}
	stake := balance.Amount(side)
	if stake == 0 {
		return 0, fmt.Errorf("%w: %s in market %d", ErrNotEntitled, call.Caller, marketID)
	}

	payout := stake
	if !s.Refund {
		payout, err = Payout(s.NetPool, stake, s.WinningPool)
		if err != nil {
			return 0, err
		}
	}

	balance.SetAmount(side, 0)
	if err := storage.SetStake(ctx, mu, marketID, call.Caller, balance); err != nil {
		return 0, err
	}
	pool, err := smath.Sub(m.Pool(side), stake)
	if err != nil {
		return 0, fmt.Errorf("%w: pool of market %d is below claimed stake %d", ErrInvalidState, marketID, stake)
	}
	m.SetPool(side, pool)
	paid, err := smath.Add(s.Paid, payout)
	if err != nil || paid > s.NetPool {
		return 0, fmt.Errorf("%w: market %d would pay out more than its net pool", ErrOverflow, marketID)
	}
	m.Settlement.Paid = paid
	if err := storage.SetMarket(ctx, mu, m); err != nil {
		return 0, err
	}
	if payout > 0 {
		if err := e.gateway.Push(ctx, mu, token, call.Caller, payout); err != nil {
			return 0, fmt.Errorf("failed to release winnings of market %d: %w", marketID, err)
		}
	}

	e.log.Debug("winnings claimed",
		zap.Uint64("marketID", marketID),
		zap.Stringer("participant", call.Caller),
		zap.Uint64("stake", stake),
		zap.Uint64("payout", payout),
		zap.Bool("refund", s.Refund),
	)
	return payout, nil
}
