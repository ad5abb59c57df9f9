package market

import (
	"context"
	"fmt"

	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"
	"go.uber.org/zap"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/radicleart/bigmarket-dao/consts"
	"github.com/radicleart/bigmarket-dao/governance"
	"github.com/radicleart/bigmarket-dao/storage"
)

// ProposeResolution records a proposed outcome for an open market whose resolution
// window has opened. Staking stops once a proposal lands.
func (e *Engine) ProposeResolution(ctx context.Context, mu state.Mutable, call Call, marketID uint64, outcome bool) error {
	params, err := governance.Get(ctx, mu)
	if err != nil {
		return err
	}
	m, err := loadMarket(ctx, mu, marketID)
	if err != nil {
		return err
	}
	if m.State != consts.Open {
		return fmt.Errorf("%w: market %d is %s", ErrInvalidState, marketID, m.State)
	}
	if params.ResolutionAgent != codec.EmptyAddress && call.Caller != params.ResolutionAgent {
		return fmt.Errorf("%w: %s may not propose resolutions", ErrUnauthorized, call.Caller)
	}
	if call.Height < m.ResolvesAt {
		return fmt.Errorf("%w: market %d resolves at %d, height is %d", ErrInvalidState, marketID, m.ResolvesAt, call.Height)
	}

	m.State = consts.ResolutionProposed
	m.Outcome = outcome
	m.ProposedAt = call.Height
	if err := storage.SetMarket(ctx, mu, m); err != nil {
		return err
	}
	e.log.Info("resolution proposed",
		zap.Uint64("marketID", marketID),
		zap.Bool("outcome", outcome),
		zap.Uint64("height", call.Height),
	)
	return nil
}

// Dispute challenges a proposed outcome while the dispute window is open. Only
// participants with stake in the market may dispute.
func (e *Engine) Dispute(ctx context.Context, mu state.Mutable, call Call, marketID uint64) error {
	params, err := governance.Get(ctx, mu)
	if err != nil {
		return err
	}
	m, err := loadMarket(ctx, mu, marketID)
	if err != nil {
		return err
	}
	if m.State != consts.ResolutionProposed {
		return fmt.Errorf("%w: market %d is %s", ErrInvalidState, marketID, m.State)
	}
	if closes := heightAfter(m.ProposedAt, params.DisputeWindow); call.Height >= closes {
		return fmt.Errorf("%w: dispute window of market %d closed at %d", ErrInvalidState, marketID, closes)
	}
	balance, err := storage.GetStake(ctx, mu, marketID, call.Caller)
	if err != nil {
		return err
	}
	if balance.IsZero() {
		return fmt.Errorf("%w: %s holds no stake in market %d", ErrUnauthorized, call.Caller, marketID)
	}

	m.State = consts.Disputed
	m.Disputer = call.Caller
	if err := storage.SetMarket(ctx, mu, m); err != nil {
		return err
	}
	e.log.Info("resolution disputed",
		zap.Uint64("marketID", marketID),
		zap.Stringer("disputer", call.Caller),
	)
	return nil
}

// FinalizeUndisputed concludes a market with its proposed outcome once the dispute
// window has elapsed.
func (e *Engine) FinalizeUndisputed(ctx context.Context, mu state.Mutable, call Call, marketID uint64) error {
	params, err := governance.Get(ctx, mu)
	if err != nil {
		return err
	}
	m, err := loadMarket(ctx, mu, marketID)
	if err != nil {
		return err
	}
	if m.State != consts.ResolutionProposed {
		return fmt.Errorf("%w: market %d is %s", ErrInvalidState, marketID, m.State)
	}
	if closes := heightAfter(m.ProposedAt, params.DisputeWindow); call.Height < closes {
		return fmt.Errorf("%w: dispute window of market %d is open until %d", ErrInvalidState, marketID, closes)
	}
	return e.conclude(ctx, mu, m, m.Outcome, params.FeeSchedule)
}

// FinalizeDisputed concludes a disputed market with the dispute resolver's ruling.
func (e *Engine) FinalizeDisputed(ctx context.Context, mu state.Mutable, call Call, marketID uint64, ruling bool) error {
	params, err := governance.Get(ctx, mu)
	if err != nil {
		return err
	}
	m, err := loadMarket(ctx, mu, marketID)
	if err != nil {
		return err
	}
	if m.State != consts.Disputed {
		return fmt.Errorf("%w: market %d is %s", ErrInvalidState, marketID, m.State)
	}
	if params.DisputeResolver == codec.EmptyAddress || call.Caller != params.DisputeResolver {
		return fmt.Errorf("%w: %s may not rule on disputes", ErrUnauthorized, call.Caller)
	}
	return e.conclude(ctx, mu, m, ruling, params.FeeSchedule)
}

// conclude fixes the outcome and freezes the settlement snapshot. When nobody backed
// the outcome the market settles in refund mode: no fees, stakes returned in full.
func (e *Engine) conclude(ctx context.Context, mu state.Mutable, m *storage.Market, outcome bool, schedule []uint64) error {
	total, err := smath.Add(m.YesPool, m.NoPool)
	if err != nil {
		return fmt.Errorf("%w: total pool of market %d", ErrOverflow, m.ID)
	}
	winning := m.Pool(consts.SideOf(outcome))

	m.State = consts.Concluded
	m.Concluded = true
	m.Outcome = outcome
	if winning == 0 {
		m.Settlement = storage.Settlement{
			TotalPool: total,
			NetPool:   total,
			Refund:    true,
		}
	} else {
		net := NetPool(total, schedule)
		m.Settlement = storage.Settlement{
			TotalPool:   total,
			WinningPool: winning,
			NetPool:     net,
			FeeAmount:   total - net,
		}
	}
	if err := storage.SetMarket(ctx, mu, m); err != nil {
		return err
	}

	e.log.Info("market concluded",
		zap.Uint64("marketID", m.ID),
		zap.Bool("outcome", outcome),
		zap.Uint64("totalPool", total),
		zap.Uint64("winningPool", winning),
		zap.Uint64("netPool", m.Settlement.NetPool),
		zap.Bool("refund", m.Settlement.Refund),
	)
	return nil
}
