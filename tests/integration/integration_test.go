// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package integration_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/hypersdk/chain/chaintest"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"
	"github.com/ava-labs/hypersdk/state/tstate"
	"github.com/stretchr/testify/require"

	hgenesis "github.com/ava-labs/hypersdk/genesis"

	"github.com/radicleart/bigmarket-dao/asset"
	"github.com/radicleart/bigmarket-dao/consts"
	"github.com/radicleart/bigmarket-dao/controller"
	"github.com/radicleart/bigmarket-dao/escrow"
	"github.com/radicleart/bigmarket-dao/genesis"
	"github.com/radicleart/bigmarket-dao/governance"
	"github.com/radicleart/bigmarket-dao/market"
	"github.com/radicleart/bigmarket-dao/storage"
	"github.com/radicleart/bigmarket-dao/tests/workload"
	"github.com/radicleart/bigmarket-dao/vm"
)

func TestIntegration(t *testing.T) {
	for _, seed := range []int64{1, 7, 42} {
		params := governance.DefaultParams()
		params.MarketDuration = 100
		params.DisputeWindow = 50
		params.DisputeResolver = codec.CreateAddress(0, ids.GenerateTestID())

		w := workload.Generate(workload.Config{
			Seed:         seed,
			Markets:      4,
			Participants: 6,
			StakesEach:   5,
			MaxStake:     1_000_000,
			DisputeEvery: 2,
			Params:       params,
		})
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			runWorkload(t, w, params)
		})
	}
}

func runWorkload(t *testing.T, w *workload.Workload, params *governance.Params) {
	require := require.New(t)
	ctx := context.Background()
	base := chaintest.NewInMemoryStore()
	ts := tstate.New(0)

	g := &genesis.Genesis{
		DefaultGenesis: hgenesis.NewDefaultGenesis(nil),
		Governance:     params,
	}
	for _, p := range w.Participants {
		addr, err := genesis.FormatAddress(p)
		require.NoError(err)
		g.TokenAllocations = append(g.TokenAllocations, &genesis.TokenAllocation{
			Address: addr,
			Token:   w.Token,
			Balance: w.Funds,
		})
	}
	genesisView := ts.NewView(state.CompletePermissions, base, 0)
	require.NoError(g.InitializeState(ctx, trace.Noop, genesisView, controller.New()))
	genesisView.Commit()
	supply := w.Funds * uint64(len(w.Participants))

	for i, step := range w.Steps {
		action, err := vm.ActionParser.Unmarshal(step.Action.Bytes())
		require.NoError(err)
		require.Equal(step.Action, action)

		actionID := ids.GenerateTestID()
		stateKeys := action.StateKeys(step.Actor, actionID)
		_, ok := stateKeys.ChunkSizes()
		require.True(ok, "step %d: %T declares a key without a chunk suffix", i, action)

		view := ts.NewView(stateKeys, base, len(stateKeys))
		_, err = action.Execute(ctx, nil, view, step.Timestamp, step.Actor, actionID)
		if err != nil {
			// Participants claim every market; only the ones without a winning stake fail.
			require.ErrorIs(err, market.ErrNotEntitled, "step %d: %T", i, action)
			continue
		}
		view.Commit()
	}
	store := ts.NewView(state.CompletePermissions, base, 0)

	count, err := storage.MarketCount(ctx, store)
	require.NoError(err)

	var held uint64
	for _, p := range w.Participants {
		bal, err := asset.GetBalance(ctx, store, p, w.Token)
		require.NoError(err)
		held += bal
	}
	custody, err := escrow.Custody(ctx, store, w.Token)
	require.NoError(err)
	require.Equal(supply, held+custody)

	var retained uint64
	for id := range count {
		m, err := storage.GetMarket(ctx, store, id)
		require.NoError(err)
		require.Equal(consts.Concluded, m.State)
		require.True(m.Concluded)
		require.LessOrEqual(m.Settlement.Paid, m.Settlement.NetPool)
		require.Zero(m.Pool(consts.SideOf(m.Outcome)), "market %d has unclaimed winners", id)
		retained += m.Settlement.TotalPool - m.Settlement.Paid
	}
	require.Equal(retained, custody)
}
