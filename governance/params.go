// Package governance holds the parameters the settlement core reads but never writes.
// Whatever owns governance (genesis, a DAO, an operator tool) stores them with Put; the
// core takes a snapshot with Get at the start of every entry point.
package governance

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/keys"
	"github.com/ava-labs/hypersdk/state"
	"github.com/go-playground/validator/v10"

	"github.com/radicleart/bigmarket-dao/consts"
)

const (
	// MaxParamsSize bounds the marshaled parameter record.
	MaxParamsSize = 512

	ParamsChunks uint16 = MaxParamsSize / consts.ChunkSize

	// Default durations are in ledger heights (one per Advance). Genesis overrides them
	// with block-timestamp milliseconds.
	DefaultFeeBips        uint64 = 200
	DefaultMarketDuration uint64 = 144
	DefaultDisputeWindow  uint64 = 144
)

var (
	ErrInvalidParams = errors.New("invalid governance params")
	ErrMissingRoot   = errors.New("gating enabled without a permitted-creators root")

	validate = validator.New()
)

// Params is the governance-owned configuration snapshot.
type Params struct {
	// FeeSchedule lists fee rates in basis points, applied one after the other to the
	// total pool when a market concludes.
	FeeSchedule []uint64 `serialize:"true" json:"feeSchedule" validate:"max=8,dive,max=10000"`

	GatingEnabled         bool   `serialize:"true" json:"gatingEnabled"`
	PermittedCreatorsRoot ids.ID `serialize:"true" json:"permittedCreatorsRoot"`

	// MarketDuration is how many heights after creation the resolution window opens.
	MarketDuration uint64 `serialize:"true" json:"marketDuration"`
	// DisputeWindow is how many heights after a proposal a dispute may be raised.
	DisputeWindow uint64 `serialize:"true" json:"disputeWindow"`

	// ResolutionAgent, when set, is the only principal allowed to propose outcomes.
	ResolutionAgent codec.Address `serialize:"true" json:"resolutionAgent"`
	// DisputeResolver is the arbitration principal ruling on disputed markets.
	DisputeResolver codec.Address `serialize:"true" json:"disputeResolver"`
}

// DefaultParams returns two 2% fees, no gating and permissionless resolution. Its
// durations count ledger heights; on chain, heights are block timestamps in
// milliseconds, so use genesis.DefaultGovernance there.
func DefaultParams() *Params {
	return &Params{
		FeeSchedule:    []uint64{DefaultFeeBips, DefaultFeeBips},
		MarketDuration: DefaultMarketDuration,
		DisputeWindow:  DefaultDisputeWindow,
	}
}

// Validate checks the fee schedule bounds and the gating configuration.
func (p *Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if p.GatingEnabled && p.PermittedCreatorsRoot == ids.Empty {
		return ErrMissingRoot
	}
	return nil
}

// Key is the single state key holding the params.
// Key: GovernancePrefix | chunks
func Key() []byte {
	return keys.EncodeChunks([]byte{consts.GovernancePrefix}, ParamsChunks)
}

// Get returns the stored params, or DefaultParams if governance never stored any.
func Get(ctx context.Context, im state.Immutable) (*Params, error) {
	valBytes, err := im.GetValue(ctx, Key())
	if errors.Is(err, database.ErrNotFound) {
		return DefaultParams(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get governance params: %w", err)
	}
	p := &Params{}
	if err := codec.LinearCodec.UnmarshalFrom(&wrappers.Packer{Bytes: valBytes}, p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal governance params: %w", err)
	}
	return p, nil
}

// Put validates and stores params.
func Put(ctx context.Context, mu state.Mutable, params *Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	p := &wrappers.Packer{
		Bytes:   make([]byte, 0, MaxParamsSize),
		MaxSize: MaxParamsSize,
	}
	if err := codec.LinearCodec.MarshalInto(params, p); err != nil {
		return fmt.Errorf("failed to marshal governance params: %w", err)
	}
	return mu.Insert(ctx, Key(), p.Bytes)
}
