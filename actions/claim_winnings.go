package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"

	"github.com/radicleart/bigmarket-dao/consts"
	"github.com/radicleart/bigmarket-dao/market"
)

const (
	ClaimWinningsSize       = 1 + consts.Uint64Len + ids.IDLen
	ClaimWinningsResultSize = 1 + 2*consts.Uint64Len + 1
)

var (
	_ chain.Action = (*ClaimWinnings)(nil)
	_ codec.Typed  = (*ClaimWinningsResult)(nil)
)

// ClaimWinnings pays the actor's share of a concluded market in Token.
type ClaimWinnings struct {
	MarketID uint64 `serialize:"true" json:"marketId"`
	Token    ids.ID `serialize:"true" json:"token"`
}

func (*ClaimWinnings) GetTypeID() uint8 {
	return consts.ClaimWinningsID
}

func (c *ClaimWinnings) StateKeys(actor codec.Address, _ ids.ID) state.Keys {
	return stakeKeys(c.MarketID, c.Token, actor)
}

func (c *ClaimWinnings) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	payout, err := engine.ClaimWinnings(ctx, mu, call(timestamp, actor), c.MarketID, c.Token)
	if err != nil {
		return nil, err
	}
	m, err := market.GetMarket(ctx, mu, c.MarketID)
	if err != nil {
		return nil, err
	}
	result := &ClaimWinningsResult{
		MarketID: c.MarketID,
		Payout:   payout,
		Refund:   m.Settlement.Refund,
	}
	return result.Bytes(), nil
}

func (*ClaimWinnings) ComputeUnits(chain.Rules) uint64 {
	return ClaimWinningsComputeUnits
}

func (*ClaimWinnings) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (c *ClaimWinnings) Bytes() []byte {
	return marshal(consts.ClaimWinningsID, c, ClaimWinningsSize)
}

func UnmarshalClaimWinnings(bytes []byte) (chain.Action, error) {
	c := &ClaimWinnings{}
	if err := unmarshal(consts.ClaimWinningsID, bytes, c); err != nil {
		return nil, err
	}
	return c, nil
}

type ClaimWinningsResult struct {
	MarketID uint64 `serialize:"true" json:"marketId"`
	Payout   uint64 `serialize:"true" json:"payout"`
	Refund   bool   `serialize:"true" json:"refund"`
}

func (*ClaimWinningsResult) GetTypeID() uint8 {
	return consts.ClaimWinningsID
}

func (r *ClaimWinningsResult) Bytes() []byte {
	return marshal(consts.ClaimWinningsID, r, ClaimWinningsResultSize)
}

func UnmarshalClaimWinningsResult(b []byte) (codec.Typed, error) {
	r := &ClaimWinningsResult{}
	if err := unmarshal(consts.ClaimWinningsID, b, r); err != nil {
		return nil, err
	}
	return r, nil
}
