package api

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/codec"

	"github.com/radicleart/bigmarket-dao/consts"
	"github.com/radicleart/bigmarket-dao/genesis"
	"github.com/radicleart/bigmarket-dao/storage"
)

type MarketList struct {
	Count   uint64       `json:"count"`
	Markets []MarketView `json:"markets"`
}

// MarketView is a market as rendered to clients: bech32 addresses and a named state.
type MarketView struct {
	ID          uint64 `json:"id"`
	Creator     string `json:"creator"`
	MarketType  uint32 `json:"marketType"`
	Token       ids.ID `json:"token"`
	ContentHash ids.ID `json:"contentHash"`
	YesPool     uint64 `json:"yesPool"`
	NoPool      uint64 `json:"noPool"`

	ResolutionState     uint8  `json:"resolutionState"`
	ResolutionStateName string `json:"resolutionStateName"`
	Concluded           bool   `json:"concluded"`
	Outcome             *bool  `json:"outcome,omitempty"`

	CreatedAt  uint64 `json:"createdAt"`
	ResolvesAt uint64 `json:"resolvesAt"`
	ProposedAt uint64 `json:"proposedAt,omitempty"`
	Disputer   string `json:"disputer,omitempty"`

	Settlement *storage.Settlement `json:"settlement,omitempty"`
	// Unclaimed is the net pool not yet paid out. Once every winner has claimed only
	// rounding residue is left.
	Unclaimed uint64 `json:"unclaimed,omitempty"`
}

type StakeView struct {
	MarketID    uint64 `json:"marketId"`
	Participant string `json:"participant"`
	YesAmount   uint64 `json:"yesAmount"`
	NoAmount    uint64 `json:"noAmount"`
}

func NewMarketView(m *storage.Market) MarketView {
	v := MarketView{
		ID:                  m.ID,
		Creator:             address(m.Creator),
		MarketType:          m.MarketType,
		Token:               m.Token,
		ContentHash:         m.ContentHash,
		YesPool:             m.YesPool,
		NoPool:              m.NoPool,
		ResolutionState:     uint8(m.State),
		ResolutionStateName: m.State.String(),
		Concluded:           m.Concluded,
		CreatedAt:           m.CreatedAt,
		ResolvesAt:          m.ResolvesAt,
		ProposedAt:          m.ProposedAt,
	}
	if m.Disputer != codec.EmptyAddress {
		v.Disputer = address(m.Disputer)
	}
	if m.State != consts.Open {
		outcome := m.Outcome
		v.Outcome = &outcome
	}
	if m.Concluded {
		settlement := m.Settlement
		v.Settlement = &settlement
		v.Unclaimed = settlement.NetPool - settlement.Paid
	}
	return v
}

func address(addr codec.Address) string {
	s, err := genesis.FormatAddress(addr)
	if err != nil {
		return addr.String()
	}
	return s
}
