package market

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/state"
	"go.uber.org/zap"

	"github.com/radicleart/bigmarket-dao/consts"
	"github.com/radicleart/bigmarket-dao/governance"
	"github.com/radicleart/bigmarket-dao/storage"
)

// CreateRequest describes a new market.
type CreateRequest struct {
	// RequestedID is accepted for compatibility and ignored; ids are allocated sequentially.
	RequestedID uint64
	MarketType  uint32
	Token       ids.ID
	// ContentHash is the sha256 of the off-chain market description.
	ContentHash ids.ID
	// Proof is the caller's audit path in the permitted-creator tree. Unused when
	// gating is off.
	Proof []ids.ID
}

// CreateMarket registers an open market and returns its id.
func (e *Engine) CreateMarket(ctx context.Context, mu state.Mutable, call Call, req CreateRequest) (uint64, error) {
	params, err := governance.Get(ctx, mu)
	if err != nil {
		return 0, err
	}
	if params.GatingEnabled && !e.verifier.Verify(params.PermittedCreatorsRoot, call.Caller, req.Proof) {
		return 0, fmt.Errorf("%w: %s", ErrNotPermitted, call.Caller)
	}

	id, err := storage.NextMarketID(ctx, mu)
	if err != nil {
		return 0, err
	}
	m := &storage.Market{
		ID:          id,
		Creator:     call.Caller,
		MarketType:  req.MarketType,
		Token:       req.Token,
		ContentHash: req.ContentHash,
		State:       consts.Open,
		CreatedAt:   call.Height,
		ResolvesAt:  heightAfter(call.Height, params.MarketDuration),
	}
	if err := storage.SetMarket(ctx, mu, m); err != nil {
		return 0, err
	}

	e.log.Debug("market created",
		zap.Uint64("marketID", id),
		zap.Stringer("creator", call.Caller),
		zap.Stringer("token", req.Token),
		zap.Uint64("resolvesAt", m.ResolvesAt),
	)
	return id, nil
}
