package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"

	"github.com/radicleart/bigmarket-dao/consts"
	"github.com/radicleart/bigmarket-dao/governance"
	"github.com/radicleart/bigmarket-dao/market"
	"github.com/radicleart/bigmarket-dao/storage"
)

const (
	// MaxCreateMarketSize covers the type byte, the fixed fields and a full-length proof.
	MaxCreateMarketSize = 1 + consts.Uint64Len + 4 + 2*ids.IDLen + 4 + consts.MaxProofLength*ids.IDLen

	CreateMarketResultSize = 1 + 2*consts.Uint64Len
)

var (
	_ chain.Action = (*CreateMarket)(nil)
	_ codec.Typed  = (*CreateMarketResult)(nil)
)

// CreateMarket opens a new market settling in Token.
type CreateMarket struct {
	// MarketID must equal the current market count: the market key has to be declared
	// before execution. Allocation itself stays sequential; a stale id fails with
	// ErrStaleMarketID.
	MarketID    uint64   `serialize:"true" json:"marketId"`
	MarketType  uint32   `serialize:"true" json:"marketType"`
	Token       ids.ID   `serialize:"true" json:"token"`
	ContentHash ids.ID   `serialize:"true" json:"contentHash"`
	Proof       []ids.ID `serialize:"true" json:"proof"`
}

func (*CreateMarket) GetTypeID() uint8 {
	return consts.CreateMarketID
}

func (c *CreateMarket) StateKeys(codec.Address, ids.ID) state.Keys {
	return state.Keys{
		string(governance.Key()):              state.Read,
		string(storage.RegistryCounterKey()):  state.All,
		string(storage.MarketKey(c.MarketID)): state.All,
	}
}

func (c *CreateMarket) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	next, err := storage.MarketCount(ctx, mu)
	if err != nil {
		return nil, err
	}
	if c.MarketID != next {
		return nil, fmt.Errorf("%w: declared %d, next is %d", ErrStaleMarketID, c.MarketID, next)
	}
	id, err := engine.CreateMarket(ctx, mu, call(timestamp, actor), market.CreateRequest{
		RequestedID: c.MarketID,
		MarketType:  c.MarketType,
		Token:       c.Token,
		ContentHash: c.ContentHash,
		Proof:       c.Proof,
	})
	if err != nil {
		return nil, err
	}
	m, err := market.GetMarket(ctx, mu, id)
	if err != nil {
		return nil, err
	}
	result := &CreateMarketResult{
		MarketID:   id,
		ResolvesAt: m.ResolvesAt,
	}
	return result.Bytes(), nil
}

func (*CreateMarket) ComputeUnits(chain.Rules) uint64 {
	return CreateMarketComputeUnits
}

func (*CreateMarket) ValidRange(chain.Rules) (int64, int64) {
	// Returning -1, -1 means that the action is always valid.
	return -1, -1
}

func (c *CreateMarket) Bytes() []byte {
	return marshal(consts.CreateMarketID, c, MaxCreateMarketSize)
}

func UnmarshalCreateMarket(bytes []byte) (chain.Action, error) {
	c := &CreateMarket{}
	if err := unmarshal(consts.CreateMarketID, bytes, c); err != nil {
		return nil, err
	}
	if len(c.Proof) > consts.MaxProofLength {
		return nil, ErrProofTooLong
	}
	return c, nil
}

type CreateMarketResult struct {
	MarketID   uint64 `serialize:"true" json:"marketId"`
	ResolvesAt uint64 `serialize:"true" json:"resolvesAt"`
}

func (*CreateMarketResult) GetTypeID() uint8 {
	return consts.CreateMarketID
}

func (r *CreateMarketResult) Bytes() []byte {
	return marshal(consts.CreateMarketID, r, CreateMarketResultSize)
}

func UnmarshalCreateMarketResult(b []byte) (codec.Typed, error) {
	r := &CreateMarketResult{}
	if err := unmarshal(consts.CreateMarketID, b, r); err != nil {
		return nil, err
	}
	return r, nil
}
