package actions

import (
	"context"

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
	ProposeResolutionSize  = 1 + consts.Uint64Len + 1
	DisputeResolutionSize  = 1 + consts.Uint64Len
	FinalizeUndisputedSize = 1 + consts.Uint64Len
	FinalizeDisputedSize   = 1 + consts.Uint64Len + 1

	ResolutionResultSize = 1 + consts.Uint64Len + 2
	SettlementResultSize = 1 + 4*consts.Uint64Len + 2
)

var (
	_ chain.Action = (*ProposeResolution)(nil)
	_ chain.Action = (*DisputeResolution)(nil)
	_ chain.Action = (*FinalizeUndisputed)(nil)
	_ chain.Action = (*FinalizeDisputed)(nil)

	_ codec.Typed = (*ProposeResolutionResult)(nil)
	_ codec.Typed = (*DisputeResolutionResult)(nil)
	_ codec.Typed = (*FinalizeUndisputedResult)(nil)
	_ codec.Typed = (*FinalizeDisputedResult)(nil)
)

func resolutionKeys(marketID uint64) state.Keys {
	return state.Keys{
		string(governance.Key()):            state.Read,
		string(storage.MarketKey(marketID)): state.Read | state.Write,
	}
}

// ProposeResolution proposes Outcome for a market whose resolution window is open.
type ProposeResolution struct {
	MarketID uint64 `serialize:"true" json:"marketId"`
	Outcome  bool   `serialize:"true" json:"outcome"`
}

func (*ProposeResolution) GetTypeID() uint8 {
	return consts.ProposeResolutionID
}

func (p *ProposeResolution) StateKeys(codec.Address, ids.ID) state.Keys {
	return resolutionKeys(p.MarketID)
}

func (p *ProposeResolution) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	if err := engine.ProposeResolution(ctx, mu, call(timestamp, actor), p.MarketID, p.Outcome); err != nil {
		return nil, err
	}
	result := &ProposeResolutionResult{
		MarketID: p.MarketID,
		State:    uint8(consts.ResolutionProposed),
		Outcome:  p.Outcome,
	}
	return result.Bytes(), nil
}

func (*ProposeResolution) ComputeUnits(chain.Rules) uint64 {
	return ProposeResolutionComputeUnits
}

func (*ProposeResolution) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (p *ProposeResolution) Bytes() []byte {
	return marshal(consts.ProposeResolutionID, p, ProposeResolutionSize)
}

func UnmarshalProposeResolution(bytes []byte) (chain.Action, error) {
	p := &ProposeResolution{}
	if err := unmarshal(consts.ProposeResolutionID, bytes, p); err != nil {
		return nil, err
	}
	return p, nil
}

type ProposeResolutionResult struct {
	MarketID uint64 `serialize:"true" json:"marketId"`
	State    uint8  `serialize:"true" json:"resolutionState"`
	Outcome  bool   `serialize:"true" json:"outcome"`
}

func (*ProposeResolutionResult) GetTypeID() uint8 {
	return consts.ProposeResolutionID
}

func (r *ProposeResolutionResult) Bytes() []byte {
	return marshal(consts.ProposeResolutionID, r, ResolutionResultSize)
}

func UnmarshalProposeResolutionResult(b []byte) (codec.Typed, error) {
	r := &ProposeResolutionResult{}
	if err := unmarshal(consts.ProposeResolutionID, b, r); err != nil {
		return nil, err
	}
	return r, nil
}

// DisputeResolution challenges a proposed outcome. The actor must hold stake in the market.
type DisputeResolution struct {
	MarketID uint64 `serialize:"true" json:"marketId"`
}

func (*DisputeResolution) GetTypeID() uint8 {
	return consts.DisputeResolutionID
}

func (d *DisputeResolution) StateKeys(actor codec.Address, _ ids.ID) state.Keys {
	keys := resolutionKeys(d.MarketID)
	keys.Add(string(storage.StakeKey(d.MarketID, actor)), state.Read)
	return keys
}

func (d *DisputeResolution) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	if err := engine.Dispute(ctx, mu, call(timestamp, actor), d.MarketID); err != nil {
		return nil, err
	}
	m, err := market.GetMarket(ctx, mu, d.MarketID)
	if err != nil {
		return nil, err
	}
	result := &DisputeResolutionResult{
		MarketID: d.MarketID,
		State:    uint8(m.State),
		Outcome:  m.Outcome,
	}
	return result.Bytes(), nil
}

func (*DisputeResolution) ComputeUnits(chain.Rules) uint64 {
	return DisputeResolutionComputeUnits
}

func (*DisputeResolution) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (d *DisputeResolution) Bytes() []byte {
	return marshal(consts.DisputeResolutionID, d, DisputeResolutionSize)
}

func UnmarshalDisputeResolution(bytes []byte) (chain.Action, error) {
	d := &DisputeResolution{}
	if err := unmarshal(consts.DisputeResolutionID, bytes, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DisputeResolutionResult carries the disputed proposal.
type DisputeResolutionResult struct {
	MarketID uint64 `serialize:"true" json:"marketId"`
	State    uint8  `serialize:"true" json:"resolutionState"`
	Outcome  bool   `serialize:"true" json:"proposedOutcome"`
}

func (*DisputeResolutionResult) GetTypeID() uint8 {
	return consts.DisputeResolutionID
}

func (r *DisputeResolutionResult) Bytes() []byte {
	return marshal(consts.DisputeResolutionID, r, ResolutionResultSize)
}

func UnmarshalDisputeResolutionResult(b []byte) (codec.Typed, error) {
	r := &DisputeResolutionResult{}
	if err := unmarshal(consts.DisputeResolutionID, b, r); err != nil {
		return nil, err
	}
	return r, nil
}

// FinalizeUndisputed concludes a market with its proposed outcome once the dispute
// window has passed. Anyone may finalize.
type FinalizeUndisputed struct {
	MarketID uint64 `serialize:"true" json:"marketId"`
}

func (*FinalizeUndisputed) GetTypeID() uint8 {
	return consts.FinalizeUndisputedID
}

func (f *FinalizeUndisputed) StateKeys(codec.Address, ids.ID) state.Keys {
	return resolutionKeys(f.MarketID)
}

func (f *FinalizeUndisputed) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	if err := engine.FinalizeUndisputed(ctx, mu, call(timestamp, actor), f.MarketID); err != nil {
		return nil, err
	}
	m, err := market.GetMarket(ctx, mu, f.MarketID)
	if err != nil {
		return nil, err
	}
	result := &FinalizeUndisputedResult{
		MarketID:    m.ID,
		Outcome:     m.Outcome,
		TotalPool:   m.Settlement.TotalPool,
		WinningPool: m.Settlement.WinningPool,
		NetPool:     m.Settlement.NetPool,
		Refund:      m.Settlement.Refund,
	}
	return result.Bytes(), nil
}

func (*FinalizeUndisputed) ComputeUnits(chain.Rules) uint64 {
	return FinalizeUndisputedComputeUnits
}

func (*FinalizeUndisputed) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (f *FinalizeUndisputed) Bytes() []byte {
	return marshal(consts.FinalizeUndisputedID, f, FinalizeUndisputedSize)
}

func UnmarshalFinalizeUndisputed(bytes []byte) (chain.Action, error) {
	f := &FinalizeUndisputed{}
	if err := unmarshal(consts.FinalizeUndisputedID, bytes, f); err != nil {
		return nil, err
	}
	return f, nil
}

// FinalizeUndisputedResult carries the frozen settlement snapshot.
type FinalizeUndisputedResult struct {
	MarketID    uint64 `serialize:"true" json:"marketId"`
	Outcome     bool   `serialize:"true" json:"outcome"`
	TotalPool   uint64 `serialize:"true" json:"totalPool"`
	WinningPool uint64 `serialize:"true" json:"winningPool"`
	NetPool     uint64 `serialize:"true" json:"netPool"`
	Refund      bool   `serialize:"true" json:"refund"`
}

func (*FinalizeUndisputedResult) GetTypeID() uint8 {
	return consts.FinalizeUndisputedID
}

func (r *FinalizeUndisputedResult) Bytes() []byte {
	return marshal(consts.FinalizeUndisputedID, r, SettlementResultSize)
}

func UnmarshalFinalizeUndisputedResult(b []byte) (codec.Typed, error) {
	r := &FinalizeUndisputedResult{}
	if err := unmarshal(consts.FinalizeUndisputedID, b, r); err != nil {
		return nil, err
	}
	return r, nil
}

// FinalizeDisputed concludes a disputed market with Ruling. Only the dispute
// resolver named in governance may rule.
type FinalizeDisputed struct {
	MarketID uint64 `serialize:"true" json:"marketId"`
	Ruling   bool   `serialize:"true" json:"ruling"`
}

func (*FinalizeDisputed) GetTypeID() uint8 {
	return consts.FinalizeDisputedID
}

func (f *FinalizeDisputed) StateKeys(codec.Address, ids.ID) state.Keys {
	return resolutionKeys(f.MarketID)
}

func (f *FinalizeDisputed) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	if err := engine.FinalizeDisputed(ctx, mu, call(timestamp, actor), f.MarketID, f.Ruling); err != nil {
		return nil, err
	}
	m, err := market.GetMarket(ctx, mu, f.MarketID)
	if err != nil {
		return nil, err
	}
	result := &FinalizeDisputedResult{
		MarketID:    m.ID,
		Outcome:     m.Outcome,
		TotalPool:   m.Settlement.TotalPool,
		WinningPool: m.Settlement.WinningPool,
		NetPool:     m.Settlement.NetPool,
		Refund:      m.Settlement.Refund,
	}
	return result.Bytes(), nil
}

func (*FinalizeDisputed) ComputeUnits(chain.Rules) uint64 {
	return FinalizeDisputedComputeUnits
}

func (*FinalizeDisputed) ValidRange(chain.Rules) (int64, int64) {
	return -1, -1
}

func (f *FinalizeDisputed) Bytes() []byte {
	return marshal(consts.FinalizeDisputedID, f, FinalizeDisputedSize)
}

func UnmarshalFinalizeDisputed(bytes []byte) (chain.Action, error) {
	f := &FinalizeDisputed{}
	if err := unmarshal(consts.FinalizeDisputedID, bytes, f); err != nil {
		return nil, err
	}
	return f, nil
}

type FinalizeDisputedResult struct {
	MarketID    uint64 `serialize:"true" json:"marketId"`
	Outcome     bool   `serialize:"true" json:"outcome"`
	TotalPool   uint64 `serialize:"true" json:"totalPool"`
	WinningPool uint64 `serialize:"true" json:"winningPool"`
	NetPool     uint64 `serialize:"true" json:"netPool"`
	Refund      bool   `serialize:"true" json:"refund"`
}

func (*FinalizeDisputedResult) GetTypeID() uint8 {
	return consts.FinalizeDisputedID
}

func (r *FinalizeDisputedResult) Bytes() []byte {
	return marshal(consts.FinalizeDisputedID, r, SettlementResultSize)
}

func UnmarshalFinalizeDisputedResult(b []byte) (codec.Typed, error) {
	r := &FinalizeDisputedResult{}
	if err := unmarshal(consts.FinalizeDisputedID, b, r); err != nil {
		return nil, err
	}
	return r, nil
}
