// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/radicleart/bigmarket-dao/actions"
)

type encodable interface {
	GetTypeID() uint8
	Bytes() []byte
}

func TestActionParser(t *testing.T) {
	token := ids.GenerateTestID()
	tests := []encodable{
		&actions.CreateMarket{MarketID: 2, Token: token, Proof: []ids.ID{ids.GenerateTestID()}},
		&actions.PredictYesStake{MarketID: 2, Amount: 10, Token: token},
		&actions.PredictNoStake{MarketID: 2, Amount: 20, Token: token},
		&actions.ProposeResolution{MarketID: 2, Outcome: true},
		&actions.DisputeResolution{MarketID: 2},
		&actions.FinalizeUndisputed{MarketID: 2},
		&actions.FinalizeDisputed{MarketID: 2, Ruling: true},
		&actions.ClaimWinnings{MarketID: 2, Token: token},
	}
	for _, action := range tests {
		parsed, err := ActionParser.Unmarshal(action.Bytes())
		require.NoError(t, err)
		require.Equal(t, action, parsed)
	}
}

func TestOutputParser(t *testing.T) {
	tests := []encodable{
		&actions.CreateMarketResult{MarketID: 1, ResolvesAt: 99},
		&actions.PredictYesStakeResult{MarketID: 1, Staked: 5, YesPool: 5},
		&actions.PredictNoStakeResult{MarketID: 1, Staked: 7, NoPool: 7},
		&actions.ProposeResolutionResult{MarketID: 1, State: 1, Outcome: true},
		&actions.DisputeResolutionResult{MarketID: 1, State: 2},
		&actions.FinalizeUndisputedResult{MarketID: 1, TotalPool: 12, WinningPool: 5, NetPool: 11},
		&actions.FinalizeDisputedResult{MarketID: 1, Refund: true, TotalPool: 7, NetPool: 7},
		&actions.ClaimWinningsResult{MarketID: 1, Payout: 11},
	}
	for _, output := range tests {
		parsed, err := OutputParser.Unmarshal(output.Bytes())
		require.NoError(t, err)
		require.Equal(t, output, parsed)
	}
}
