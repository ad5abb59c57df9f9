// Package market settles binary staked prediction markets.
//
// A market collects stakes on YES and NO, moves through a proposal and optional dispute
// to a concluded outcome, and then pays each winner a share of the fee-reduced total
// pool proportional to their winning stake. Every entry point takes the state it runs
// against; atomicity is the caller's job (a hypersdk transaction or a ledger batch).
package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"

	"github.com/radicleart/bigmarket-dao/escrow"
	"github.com/radicleart/bigmarket-dao/gating"
	"github.com/radicleart/bigmarket-dao/storage"
)

// Engine carries the external collaborators of the settlement core.
type Engine struct {
	verifier gating.Verifier
	gateway  escrow.Gateway
	log      logging.Logger
}

// New returns an engine using the given creator verifier and token gateway.
func New(verifier gating.Verifier, gateway escrow.Gateway, log logging.Logger) *Engine {
	return &Engine{
		verifier: verifier,
		gateway:  gateway,
		log:      log,
	}
}

// NewDefault returns an engine with Merkle gating and state-backed custody.
func NewDefault(log logging.Logger) *Engine {
	return New(gating.MerkleVerifier{}, escrow.StateGateway{}, log)
}

// Call identifies who invokes an entry point and at which height.
type Call struct {
	Caller codec.Address
	Height uint64
}

func loadMarket(ctx context.Context, im state.Immutable, marketID uint64) (*storage.Market, error) {
	m, err := storage.GetMarket(ctx, im, marketID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, marketID)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// heightAfter returns base+delta, saturating at the largest height.
func heightAfter(base, delta uint64) uint64 {
	if sum := base + delta; sum >= base {
		return sum
	}
	return ^uint64(0)
}
