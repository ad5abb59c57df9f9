package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"

	"github.com/radicleart/bigmarket-dao/asset"
	"github.com/radicleart/bigmarket-dao/consts"
	"github.com/radicleart/bigmarket-dao/escrow"
	"github.com/radicleart/bigmarket-dao/market"
	"github.com/radicleart/bigmarket-dao/storage"
)

const (
	StakeSize       = 1 + 2*consts.Uint64Len + ids.IDLen
	StakeResultSize = 1 + 4*consts.Uint64Len
)

var (
	_ chain.Action = (*PredictYesStake)(nil)
	_ chain.Action = (*PredictNoStake)(nil)
	_ codec.Typed  = (*PredictYesStakeResult)(nil)
	_ codec.Typed  = (*PredictNoStakeResult)(nil)
)

// stakeKeys declares everything a stake can touch: the market, the actor's stake
// entry, the actor's token balance and the token's custody.
func stakeKeys(marketID uint64, token ids.ID, actor codec.Address) state.Keys {
	return state.Keys{
		string(storage.MarketKey(marketID)):       state.Read | state.Write,
		string(storage.StakeKey(marketID, actor)): state.All,
		string(asset.BalanceKey(actor, token)):    state.All,
		string(escrow.Key(token)):                 state.All,
	}
}

// executeStake runs the stake and reports the actor's resulting position.
func executeStake(ctx context.Context, mu state.Mutable, timestamp int64, actor codec.Address, marketID uint64, side uint8, amount uint64, token ids.ID) (*storage.Market, storage.StakeBalance, error) {
	if err := engine.Stake(ctx, mu, call(timestamp, actor), marketID, side, amount, token); err != nil {
		return nil, storage.StakeBalance{}, err
	}
	m, err := market.GetMarket(ctx, mu, marketID)
	if err != nil {
		return nil, storage.StakeBalance{}, err
	}
	balance, err := market.GetStakeBalance(ctx, mu, marketID, actor)
	if err != nil {
		return nil, storage.StakeBalance{}, err
	}
	return m, balance, nil
}

// PredictYesStake stakes Amount of Token on YES.
type PredictYesStake struct {
	MarketID uint64 `serialize:"true" json:"marketId"`
	Amount   uint64 `serialize:"true" json:"amount"`
	Token    ids.ID `serialize:"true" json:"token"`
}

func (*PredictYesStake) GetTypeID() uint8 {
	return consts.PredictYesStakeID
}

func (s *PredictYesStake) StateKeys(actor codec.Address, _ ids.ID) state.Keys {
	return stakeKeys(s.MarketID, s.Token, actor)
}

func (s *PredictYesStake) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	m, balance, err := executeStake(ctx, mu, timestamp, actor, s.MarketID, consts.YesSide, s.Amount, s.Token)
	if err != nil {
		return nil, err
	}
	result := &PredictYesStakeResult{
		MarketID: s.MarketID,
		Staked:   balance.YesAmount,
		YesPool:  m.YesPool,
		NoPool:   m.NoPool,
	}
	return result.Bytes(), nil
}

func (*PredictYesStake) ComputeUnits(chain.Rules) uint64 {
	return StakeComputeUnits
}

func (*PredictYesStake) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (s *PredictYesStake) Bytes() []byte {
	return marshal(consts.PredictYesStakeID, s, StakeSize)
}

func UnmarshalPredictYesStake(bytes []byte) (chain.Action, error) {
	s := &PredictYesStake{}
	if err := unmarshal(consts.PredictYesStakeID, bytes, s); err != nil {
		return nil, err
	}
	return s, nil
}

// PredictYesStakeResult reports the actor's total YES stake and both pools.
type PredictYesStakeResult struct {
	MarketID uint64 `serialize:"true" json:"marketId"`
	Staked   uint64 `serialize:"true" json:"staked"`
	YesPool  uint64 `serialize:"true" json:"yesPool"`
	NoPool   uint64 `serialize:"true" json:"noPool"`
}

func (*PredictYesStakeResult) GetTypeID() uint8 {
	return consts.PredictYesStakeID
}

func (r *PredictYesStakeResult) Bytes() []byte {
	return marshal(consts.PredictYesStakeID, r, StakeResultSize)
}

func UnmarshalPredictYesStakeResult(b []byte) (codec.Typed, error) {
	r := &PredictYesStakeResult{}
	if err := unmarshal(consts.PredictYesStakeID, b, r); err != nil {
		return nil, err
	}
	return r, nil
}

// PredictNoStake stakes Amount of Token on NO.
type PredictNoStake struct {
	MarketID uint64 `serialize:"true" json:"marketId"`
	Amount   uint64 `serialize:"true" json:"amount"`
	Token    ids.ID `serialize:"true" json:"token"`
}

func (*PredictNoStake) GetTypeID() uint8 {
	return consts.PredictNoStakeID
}

func (s *PredictNoStake) StateKeys(actor codec.Address, _ ids.ID) state.Keys {
	return stakeKeys(s.MarketID, s.Token, actor)
}

func (s *PredictNoStake) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	m, balance, err := executeStake(ctx, mu, timestamp, actor, s.MarketID, consts.NoSide, s.Amount, s.Token)
	if err != nil {
		return nil, err
	}
	result := &PredictNoStakeResult{
		MarketID: s.MarketID,
		Staked:   balance.NoAmount,
		YesPool:  m.YesPool,
		NoPool:   m.NoPool,
	}
	return result.Bytes(), nil
}

func (*PredictNoStake) ComputeUnits(chain.Rules) uint64 {
	return StakeComputeUnits
}

func (*PredictNoStake) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (s *PredictNoStake) Bytes() []byte {
	return marshal(consts.PredictNoStakeID, s, StakeSize)
}

func UnmarshalPredictNoStake(bytes []byte) (chain.Action, error) {
	s := &PredictNoStake{}
	if err := unmarshal(consts.PredictNoStakeID, bytes, s); err != nil {
		return nil, err
	}
	return s, nil
}

// PredictNoStakeResult reports the actor's total NO stake and both pools.
type PredictNoStakeResult struct {
	MarketID uint64 `serialize:"true" json:"marketId"`
	Staked   uint64 `serialize:"true" json:"staked"`
	YesPool  uint64 `serialize:"true" json:"yesPool"`
	NoPool   uint64 `serialize:"true" json:"noPool"`
}

func (*PredictNoStakeResult) GetTypeID() uint8 {
	return consts.PredictNoStakeID
}

func (r *PredictNoStakeResult) Bytes() []byte {
	return marshal(consts.PredictNoStakeID, r, StakeResultSize)
}

func UnmarshalPredictNoStakeResult(b []byte) (codec.Typed, error) {
	r := &PredictNoStakeResult{}
	if err := unmarshal(consts.PredictNoStakeID, b, r); err != nil {
		return nil, err
	}
	return r, nil
}
