package escrow

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/chain/chaintest"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"
	"github.com/ava-labs/hypersdk/state/tstate"
	"github.com/stretchr/testify/require"

	"github.com/radicleart/bigmarket-dao/asset"
)

func TestPull_MovesBalanceIntoCustody(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := chaintest.NewInMemoryStore()

	token := ids.GenerateTestID()
	actor := codec.Address{0x01}
	require.NoError(asset.SetBalance(ctx, mu, actor, token, 1000))

	gw := StateGateway{}
	require.NoError(gw.Pull(ctx, mu, token, actor, 400))
	require.NoError(gw.Pull(ctx, mu, token, actor, 100))

	held, err := Custody(ctx, mu, token)
	require.NoError(err)
	require.Equal(uint64(500), held)

	balance, err := asset.GetBalance(ctx, mu, actor, token)
	require.NoError(err)
	require.Equal(uint64(500), balance)
}

func TestPull_InsufficientActorBalance(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := chaintest.NewInMemoryStore()

	token := ids.GenerateTestID()
	actor := codec.Address{0x02}
	require.NoError(asset.SetBalance(ctx, mu, actor, token, 10))

	err := StateGateway{}.Pull(ctx, mu, token, actor, 11)
	require.ErrorIs(err, asset.ErrInsufficientBalance)

	held, err := Custody(ctx, mu, token)
	require.NoError(err)
	require.Zero(held)
}

func TestPush_ReleasesFromCustody(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := chaintest.NewInMemoryStore()

	token := ids.GenerateTestID()
	staker := codec.Address{0x03}
	recipient := codec.Address{0x04}
	require.NoError(asset.SetBalance(ctx, mu, staker, token, 1000))

	gw := StateGateway{}
	require.NoError(gw.Pull(ctx, mu, token, staker, 1000))
	require.NoError(gw.Push(ctx, mu, token, recipient, 1000))

	held, err := Custody(ctx, mu, token)
	require.NoError(err)
	require.Zero(held)

	balance, err := asset.GetBalance(ctx, mu, recipient, token)
	require.NoError(err)
	require.Equal(uint64(1000), balance)
}

func TestPush_InsufficientCustody(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := chaintest.NewInMemoryStore()

	token := ids.GenerateTestID()
	err := StateGateway{}.Push(ctx, mu, token, codec.Address{0x05}, 1)
	require.ErrorIs(err, ErrInsufficientFundsInEscrow)
}

func TestZeroAmountRejected(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := chaintest.NewInMemoryStore()

	token := ids.GenerateTestID()
	gw := StateGateway{}
	require.ErrorIs(gw.Pull(ctx, mu, token, codec.Address{0x06}, 0), ErrAmountCannotBeZero)
	require.ErrorIs(gw.Push(ctx, mu, token, codec.Address{0x06}, 0), ErrAmountCannotBeZero)
}

func TestCustodyIsPerToken(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := chaintest.NewInMemoryStore()

	tokenA := ids.GenerateTestID()
	tokenB := ids.GenerateTestID()
	actor := codec.Address{0x07}
	require.NoError(asset.SetBalance(ctx, mu, actor, tokenA, 50))

	require.NoError(StateGateway{}.Pull(ctx, mu, tokenA, actor, 50))
	err := StateGateway{}.Push(ctx, mu, tokenB, actor, 1)
	require.ErrorIs(err, ErrInsufficientFundsInEscrow)
}

func TestPullPush_WithinScopedView(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	base := chaintest.NewInMemoryStore()
	token := ids.GenerateTestID()
	actor := codec.CreateAddress(0, ids.GenerateTestID())
	require.NoError(asset.AddBalance(ctx, base, actor, token, 100))

	scope := state.Keys{
		string(asset.BalanceKey(actor, token)): state.All,
		string(Key(token)):                     state.All,
	}
	_, ok := scope.ChunkSizes()
	require.True(ok)

	view := tstate.New(len(scope)).NewView(scope, base, len(scope))
	gateway := StateGateway{}
	require.NoError(gateway.Pull(ctx, view, token, actor, 100))
	require.NoError(gateway.Push(ctx, view, token, actor, 40))

	held, err := Custody(ctx, view, token)
	require.NoError(err)
	require.Equal(uint64(60), held)
	bal, err := asset.GetBalance(ctx, view, actor, token)
	require.NoError(err)
	require.Equal(uint64(40), bal)
}
