package storage

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/chain/chaintest"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/keys"
	"github.com/stretchr/testify/require"

	"github.com/radicleart/bigmarket-dao/consts"
)

func TestSetGetMarket(t *testing.T) {
	ctx := context.Background()
	creator := codec.CreateAddress(0, ids.GenerateTestID())
	disputer := codec.CreateAddress(1, ids.GenerateTestID())

	base := Market{
		ID:          7,
		Creator:     creator,
		MarketType:  1,
		Token:       ids.GenerateTestID(),
		ContentHash: ids.GenerateTestID(),
		YesPool:     150_000_000,
		NoPool:      220_000_000,
		CreatedAt:   10,
		ResolvesAt:  154,
	}

	testCases := []struct {
		name   string
		mutate func(*Market)
	}{
		{"Open", func(*Market) {}},
		{"Proposed", func(m *Market) {
			m.State = consts.ResolutionProposed
			m.Outcome = true
			m.ProposedAt = 160
		}},
		{"Disputed", func(m *Market) {
			m.State = consts.Disputed
			m.ProposedAt = 160
			m.Disputer = disputer
		}},
		{"Concluded", func(m *Market) {
			m.State = consts.Concluded
			m.Concluded = true
			m.Settlement = Settlement{
				TotalPool:   370_000_000,
				WinningPool: 220_000_000,
				NetPool:     355_348_000,
				FeeAmount:   14_652_000,
				Paid:        323_043_636,
			}
		}},
		{"ConcludedRefund", func(m *Market) {
			m.State = consts.Concluded
			m.Concluded = true
			m.Settlement = Settlement{TotalPool: 370_000_000, Refund: true}
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require := require.New(t)
			st := chaintest.NewInMemoryStore()

			original := base
			tc.mutate(&original)
			require.NoError(SetMarket(ctx, st, &original))

			retrieved, err := GetMarket(ctx, st, original.ID)
			require.NoError(err)
			require.Equal(&original, retrieved)
		})
	}
}

func TestGetMarket_NotFound(t *testing.T) {
	st := chaintest.NewInMemoryStore()
	_, err := GetMarket(context.Background(), st, 3)
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestNextMarketID(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	st := chaintest.NewInMemoryStore()

	count, err := MarketCount(ctx, st)
	require.NoError(err)
	require.Zero(count)

	for want := uint64(0); want < 4; want++ {
		id, err := NextMarketID(ctx, st)
		require.NoError(err)
		require.Equal(want, id)
	}
	count, err = MarketCount(ctx, st)
	require.NoError(err)
	require.Equal(uint64(4), count)
}

func TestStakeBalance(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	st := chaintest.NewInMemoryStore()
	alice := codec.CreateAddress(0, ids.GenerateTestID())
	bob := codec.CreateAddress(0, ids.GenerateTestID())

	balance, err := GetStake(ctx, st, 0, alice)
	require.NoError(err)
	require.True(balance.IsZero())

	balance.SetAmount(consts.YesSide, 100)
	balance.SetAmount(consts.NoSide, 40)
	require.NoError(SetStake(ctx, st, 0, alice, balance))

	got, err := GetStake(ctx, st, 0, alice)
	require.NoError(err)
	require.Equal(uint64(100), got.Amount(consts.YesSide))
	require.Equal(uint64(40), got.Amount(consts.NoSide))

	// Stakes are scoped per market and per participant.
	other, err := GetStake(ctx, st, 1, alice)
	require.NoError(err)
	require.True(other.IsZero())
	other, err = GetStake(ctx, st, 0, bob)
	require.NoError(err)
	require.True(other.IsZero())

	// Zeroing both sides removes the entry.
	require.NoError(SetStake(ctx, st, 0, alice, StakeBalance{}))
	_, err = st.GetValue(ctx, StakeKey(0, alice))
	require.ErrorIs(err, database.ErrNotFound)
}

func TestMarketPools(t *testing.T) {
	require := require.New(t)
	m := &Market{}
	m.SetPool(consts.YesSide, 5)
	m.SetPool(consts.NoSide, 9)
	require.Equal(uint64(5), m.YesPool)
	require.Equal(uint64(9), m.Pool(consts.NoSide))
}

func TestNativeBalance(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	st := chaintest.NewInMemoryStore()
	addr := codec.CreateAddress(0, ids.GenerateTestID())

	require.NoError(AddBalance(ctx, st, addr, 50))
	require.ErrorIs(DeductBalance(ctx, st, addr, 51), ErrInsufficientBalance)
	require.NoError(DeductBalance(ctx, st, addr, 20))
	bal, err := GetBalance(ctx, st, addr)
	require.NoError(err)
	require.Equal(uint64(30), bal)
}

func TestKeyChunks(t *testing.T) {
	addr := codec.CreateAddress(0, ids.GenerateTestID())
	tests := []struct {
		name   string
		key    []byte
		chunks uint16
	}{
		{"counter", RegistryCounterKey(), consts.CounterChunks},
		{"market", MarketKey(0), consts.MarketChunks},
		{"stake", StakeKey(0, addr), consts.StakeChunks},
		{"balance", BalanceKey(addr), consts.BalanceChunks},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, ok := keys.MaxChunks(tt.key)
			require.True(t, ok)
			require.Equal(t, tt.chunks, chunks)
		})
	}
}

func TestMarketValueFitsKey(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	st := chaintest.NewInMemoryStore()
	addr := codec.CreateAddress(0, ids.GenerateTestID())

	m := &Market{
		ID:          ^uint64(0),
		Creator:     addr,
		Token:       ids.GenerateTestID(),
		ContentHash: ids.GenerateTestID(),
		YesPool:     ^uint64(0),
		NoPool:      ^uint64(0),
		State:       consts.Concluded,
		Concluded:   true,
		Disputer:    addr,
		Settlement: Settlement{
			TotalPool: ^uint64(0),
			NetPool:   ^uint64(0),
			Paid:      ^uint64(0),
		},
	}
	require.NoError(SetMarket(ctx, st, m))
	raw, err := st.GetValue(ctx, MarketKey(m.ID))
	require.NoError(err)
	require.True(keys.VerifyValue(MarketKey(m.ID), raw))

	require.NoError(SetStake(ctx, st, 0, addr, StakeBalance{YesAmount: ^uint64(0), NoAmount: ^uint64(0)}))
	raw, err = st.GetValue(ctx, StakeKey(0, addr))
	require.NoError(err)
	require.True(keys.VerifyValue(StakeKey(0, addr), raw))
}
