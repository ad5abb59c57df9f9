// Package ledger runs the settlement engine outside of a chain. Entry points are
// serialised and each one runs in its own versiondb batch over the backing database,
// committed only if the entry point succeeds.
package ledger

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"
	"go.uber.org/zap"

	"github.com/radicleart/bigmarket-dao/asset"
	"github.com/radicleart/bigmarket-dao/escrow"
	"github.com/radicleart/bigmarket-dao/governance"
	"github.com/radicleart/bigmarket-dao/market"
	"github.com/radicleart/bigmarket-dao/storage"
)

var _ state.Mutable = (*dbState)(nil)

// dbState exposes a database as hypersdk state.
type dbState struct {
	db database.KeyValueReaderWriterDeleter
}

func (s *dbState) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return s.db.Get(key)
}

func (s *dbState) Insert(_ context.Context, key []byte, value []byte) error {
	return s.db.Put(key, value)
}

func (s *dbState) Remove(_ context.Context, key []byte) error {
	return s.db.Delete(key)
}

type Ledger struct {
	lock   sync.RWMutex
	db     database.Database
	engine *market.Engine
	log    logging.Logger

	height uint64
}

func New(db database.Database, engine *market.Engine, log logging.Logger) *Ledger {
	return &Ledger{
		db:     db,
		engine: engine,
		log:    log,
	}
}

// update runs fn against a fresh batch and commits it if fn succeeds.
func (l *Ledger) update(caller codec.Address, fn func(mu state.Mutable, call market.Call) error) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	batch := versiondb.New(l.db)
	if err := fn(&dbState{db: batch}, market.Call{Caller: caller, Height: l.height}); err != nil {
		batch.Abort()
		l.log.Debug("rolled back ledger update",
			zap.Stringer("caller", caller),
			zap.Error(err),
		)
		return err
	}
	return batch.Commit()
}

func (l *Ledger) view() (state.Immutable, func()) {
	l.lock.RLock()
	return &dbState{db: l.db}, l.lock.RUnlock
}

// Advance moves the ledger height forward by n and returns the new height.
func (l *Ledger) Advance(n uint64) uint64 {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.height += n
	return l.height
}

func (l *Ledger) Height() uint64 {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.height
}

// SetParams replaces the governance parameters read by subsequent entry points.
func (l *Ledger) SetParams(ctx context.Context, params *governance.Params) error {
	return l.update(codec.EmptyAddress, func(mu state.Mutable, _ market.Call) error {
		return governance.Put(ctx, mu, params)
	})
}

// Credit gives addr amount of token outside of any market.
func (l *Ledger) Credit(ctx context.Context, addr codec.Address, token ids.ID, amount uint64) error {
	return l.update(addr, func(mu state.Mutable, _ market.Call) error {
		return asset.AddBalance(ctx, mu, addr, token, amount)
	})
}

func (l *Ledger) CreateMarket(ctx context.Context, caller codec.Address, req market.CreateRequest) (uint64, error) {
	var id uint64
	err := l.update(caller, func(mu state.Mutable, call market.Call) error {
		var err error
		id, err = l.engine.CreateMarket(ctx, mu, call, req)
		return err
	})
	return id, err
}

func (l *Ledger) PredictYesStake(ctx context.Context, caller codec.Address, marketID uint64, amount uint64, token ids.ID) error {
	return l.update(caller, func(mu state.Mutable, call market.Call) error {
		return l.engine.PredictYesStake(ctx, mu, call, marketID, amount, token)
	})
}

func (l *Ledger) PredictNoStake(ctx context.Context, caller codec.Address, marketID uint64, amount uint64, token ids.ID) error {
	return l.update(caller, func(mu state.Mutable, call market.Call) error {
		return l.engine.PredictNoStake(ctx, mu, call, marketID, amount, token)
	})
}

func (l *Ledger) ProposeResolution(ctx context.Context, caller codec.Address, marketID uint64, outcome bool) error {
	return l.update(caller, func(mu state.Mutable, call market.Call) error {
		return l.engine.ProposeResolution(ctx, mu, call, marketID, outcome)
	})
}

func (l *Ledger) Dispute(ctx context.Context, caller codec.Address, marketID uint64) error {
	return l.update(caller, func(mu state.Mutable, call market.Call) error {
		return l.engine.Dispute(ctx, mu, call, marketID)
	})
}

func (l *Ledger) FinalizeUndisputed(ctx context.Context, caller codec.Address, marketID uint64) error {
	return l.update(caller, func(mu state.Mutable, call market.Call) error {
		return l.engine.FinalizeUndisputed(ctx, mu, call, marketID)
	})
}

func (l *Ledger) FinalizeDisputed(ctx context.Context, caller codec.Address, marketID uint64, ruling bool) error {
	return l.update(caller, func(mu state.Mutable, call market.Call) error {
		return l.engine.FinalizeDisputed(ctx, mu, call, marketID, ruling)
	})
}

func (l *Ledger) ClaimWinnings(ctx context.Context, caller codec.Address, marketID uint64, token ids.ID) (uint64, error) {
	var payout uint64
	err := l.update(caller, func(mu state.Mutable, call market.Call) error {
		var err error
		payout, err = l.engine.ClaimWinnings(ctx, mu, call, marketID, token)
		return err
	})
	return payout, err
}

func (l *Ledger) Market(ctx context.Context, marketID uint64) (*storage.Market, error) {
	im, done := l.view()
	defer done()
	return market.GetMarket(ctx, im, marketID)
}

func (l *Ledger) StakeBalance(ctx context.Context, marketID uint64, participant codec.Address) (storage.StakeBalance, error) {
	im, done := l.view()
	defer done()
	return market.GetStakeBalance(ctx, im, marketID, participant)
}

func (l *Ledger) MarketCount(ctx context.Context) (uint64, error) {
	im, done := l.view()
	defer done()
	return market.MarketCount(ctx, im)
}

func (l *Ledger) Params(ctx context.Context) (*governance.Params, error) {
	im, done := l.view()
	defer done()
	return governance.Get(ctx, im)
}

// Balance returns the amount of token addr holds outside of custody.
func (l *Ledger) Balance(ctx context.Context, addr codec.Address, token ids.ID) (uint64, error) {
	im, done := l.view()
	defer done()
	return asset.GetBalance(ctx, im, addr, token)
}

// Custody returns the amount of token locked in markets.
func (l *Ledger) Custody(ctx context.Context, token ids.ID) (uint64, error) {
	im, done := l.view()
	defer done()
	return escrow.Custody(ctx, im, token)
}

func (l *Ledger) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.db.Close()
}
