package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"
	"github.com/stretchr/testify/require"

	"github.com/radicleart/bigmarket-dao/consts"
	"github.com/radicleart/bigmarket-dao/escrow"
	"github.com/radicleart/bigmarket-dao/gating"
	"github.com/radicleart/bigmarket-dao/governance"
	"github.com/radicleart/bigmarket-dao/market"
)

var errPushFailed = errors.New("push failed")

// failingPush locks stakes normally but can't release them.
type failingPush struct {
	escrow.StateGateway
}

func (failingPush) Push(context.Context, state.Mutable, ids.ID, codec.Address, uint64) error {
	return errPushFailed
}

func newLedger(t *testing.T, gateway escrow.Gateway) *Ledger {
	l := New(memdb.New(), market.New(gating.MerkleVerifier{}, gateway, logging.NoLog{}), logging.NoLog{})
	params := governance.DefaultParams()
	params.MarketDuration = 3
	params.DisputeWindow = 2
	require.NoError(t, l.SetParams(context.Background(), params))
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLedger_Scenario(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newLedger(t, escrow.StateGateway{})
	token := ids.GenerateTestID()
	alice := codec.CreateAddress(0, ids.GenerateTestID())
	bob := codec.CreateAddress(0, ids.GenerateTestID())

	require.NoError(l.Credit(ctx, alice, token, 100_000_000))
	require.NoError(l.Credit(ctx, bob, token, 100_000_000))

	id, err := l.CreateMarket(ctx, alice, market.CreateRequest{Token: token})
	require.NoError(err)
	require.NoError(l.PredictYesStake(ctx, alice, id, 100_000_000, token))
	require.NoError(l.PredictNoStake(ctx, bob, id, 100_000_000, token))

	require.ErrorIs(l.ProposeResolution(ctx, alice, id, true), market.ErrInvalidState)
	require.Equal(uint64(3), l.Advance(3))
	require.NoError(l.ProposeResolution(ctx, alice, id, true))
	require.ErrorIs(l.FinalizeUndisputed(ctx, alice, id), market.ErrInvalidState)
	l.Advance(2)
	require.NoError(l.FinalizeUndisputed(ctx, bob, id))

	m, err := l.Market(ctx, id)
	require.NoError(err)
	require.Equal(consts.Concluded, m.State)

	payout, err := l.ClaimWinnings(ctx, alice, id, token)
	require.NoError(err)
	require.Equal(uint64(192_080_000), payout)
	_, err = l.ClaimWinnings(ctx, alice, id, token)
	require.ErrorIs(err, market.ErrNotEntitled)

	bal, err := l.Balance(ctx, alice, token)
	require.NoError(err)
	require.Equal(uint64(192_080_000), bal)
	held, err := l.Custody(ctx, token)
	require.NoError(err)
	require.Equal(uint64(7_920_000), held)

	count, err := l.MarketCount(ctx)
	require.NoError(err)
	require.Equal(uint64(1), count)
}

func TestLedger_FailedClaimRollsBack(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newLedger(t, failingPush{})
	token := ids.GenerateTestID()
	alice := codec.CreateAddress(0, ids.GenerateTestID())

	require.NoError(l.Credit(ctx, alice, token, 50))
	id, err := l.CreateMarket(ctx, alice, market.CreateRequest{Token: token})
	require.NoError(err)
	require.NoError(l.PredictYesStake(ctx, alice, id, 50, token))
	l.Advance(3)
	require.NoError(l.ProposeResolution(ctx, alice, id, true))
	l.Advance(2)
	require.NoError(l.FinalizeUndisputed(ctx, alice, id))

	// The engine zeroes the stake before pushing; the failed push discards that write.
	_, err = l.ClaimWinnings(ctx, alice, id, token)
	require.ErrorIs(err, errPushFailed)

	balance, err := l.StakeBalance(ctx, id, alice)
	require.NoError(err)
	require.Equal(uint64(50), balance.Amount(consts.YesSide))
	m, err := l.Market(ctx, id)
	require.NoError(err)
	require.Equal(uint64(50), m.YesPool)
	require.Zero(m.Settlement.Paid)
}

func TestLedger_InvalidParamsRejected(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, escrow.StateGateway{})

	bad := governance.DefaultParams()
	bad.FeeSchedule = []uint64{10_001}
	require.ErrorIs(t, l.SetParams(ctx, bad), governance.ErrInvalidParams)

	params, err := l.Params(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(3), params.MarketDuration)
}

func TestLedger_ConcurrentStakes(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newLedger(t, escrow.StateGateway{})
	token := ids.GenerateTestID()
	creator := codec.CreateAddress(0, ids.GenerateTestID())
	id, err := l.CreateMarket(ctx, creator, market.CreateRequest{Token: token})
	require.NoError(err)

	const stakers = 16
	addrs := make([]codec.Address, stakers)
	for i := range addrs {
		addrs[i] = codec.CreateAddress(0, ids.GenerateTestID())
		require.NoError(l.Credit(ctx, addrs[i], token, 10))
	}

	var wg sync.WaitGroup
	errs := make(chan error, stakers)
	for i, addr := range addrs {
		wg.Add(1)
		go func(yes bool, addr codec.Address) {
			defer wg.Done()
			if yes {
				errs <- l.PredictYesStake(ctx, addr, id, 10, token)
				return
			}
			errs <- l.PredictNoStake(ctx, addr, id, 10, token)
		}(i%2 == 0, addr)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(err)
	}

	m, err := l.Market(ctx, id)
	require.NoError(err)
	require.Equal(uint64(80), m.YesPool)
	require.Equal(uint64(80), m.NoPool)
	held, err := l.Custody(ctx, token)
	require.NoError(err)
	require.Equal(uint64(160), held)
}
