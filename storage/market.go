package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/keys"
	"github.com/ava-labs/hypersdk/state"

	"github.com/radicleart/bigmarket-dao/consts"
)

// Settlement is the pool snapshot frozen when a market concludes. Claims read it and
// never change TotalPool, WinningPool or NetPool.
type Settlement struct {
	TotalPool   uint64 `serialize:"true" json:"totalPool"`
	WinningPool uint64 `serialize:"true" json:"winningPool"`
	NetPool     uint64 `serialize:"true" json:"netPool"`
	FeeAmount   uint64 `serialize:"true" json:"feeAmount"`
	// Paid is the running sum of payouts; NetPool-Paid is still in custody.
	Paid uint64 `serialize:"true" json:"paid"`
	// Refund is set when nobody backed the outcome and stakes are returned instead.
	Refund bool `serialize:"true" json:"refund"`
}

// Market is a binary staking pool.
// Key: MarketPrefix | id -> Market
type Market struct {
	ID          uint64        `serialize:"true" json:"id"`
	Creator     codec.Address `serialize:"true" json:"creator"`
	MarketType  uint32        `serialize:"true" json:"marketType"`
	Token       ids.ID        `serialize:"true" json:"token"`
	ContentHash ids.ID        `serialize:"true" json:"contentHash"`

	YesPool uint64 `serialize:"true" json:"yesPool"`
	NoPool  uint64 `serialize:"true" json:"noPool"`

	State     consts.ResolutionState `serialize:"true" json:"resolutionState"`
	Concluded bool                   `serialize:"true" json:"concluded"`
	Outcome   bool                   `serialize:"true" json:"outcome"`

	CreatedAt  uint64        `serialize:"true" json:"createdAt"`
	ResolvesAt uint64        `serialize:"true" json:"resolvesAt"`
	ProposedAt uint64        `serialize:"true" json:"proposedAt"`
	Disputer   codec.Address `serialize:"true" json:"disputer"`

	Settlement Settlement `serialize:"true" json:"settlement"`
}

// Pool returns the live pool on side.
func (m *Market) Pool(side uint8) uint64 {
	if side == consts.YesSide {
		return m.YesPool
	}
	return m.NoPool
}

// SetPool replaces the live pool on side.
func (m *Market) SetPool(side uint8, amount uint64) {
	if side == consts.YesSide {
		m.YesPool = amount
		return
	}
	m.NoPool = amount
}

// StakeBalance is what a participant has staked on each side of one market.
// Key: StakePrefix | marketID | participant -> StakeBalance
type StakeBalance struct {
	YesAmount uint64 `serialize:"true" json:"yesAmount"`
	NoAmount  uint64 `serialize:"true" json:"noAmount"`
}

// Amount returns the stake on side.
func (b StakeBalance) Amount(side uint8) uint64 {
	if side == consts.YesSide {
		return b.YesAmount
	}
	return b.NoAmount
}

// SetAmount replaces the stake on side.
func (b *StakeBalance) SetAmount(side uint8, amount uint64) {
	if side == consts.YesSide {
		b.YesAmount = amount
		return
	}
	b.NoAmount = amount
}

// IsZero reports whether nothing is staked on either side.
func (b StakeBalance) IsZero() bool {
	return b.YesAmount == 0 && b.NoAmount == 0
}

// RegistryCounterKey holds the next market id.
// Format: RegistryCounterPrefix | chunks
func RegistryCounterKey() []byte {
	return keys.EncodeChunks([]byte{consts.RegistryCounterPrefix}, consts.CounterChunks)
}

// MarketKey generates the state key for a given market ID.
// Format: MarketPrefix | MarketID (big endian uint64) | chunks
func MarketKey(marketID uint64) []byte {
	key := make([]byte, 1+consts.Uint64Len)
	key[0] = consts.MarketPrefix
	binary.BigEndian.PutUint64(key[1:], marketID)
	return keys.EncodeChunks(key, consts.MarketChunks)
}

// StakeKey generates the state key for a participant's stake in a market.
// Format: StakePrefix | MarketID (big endian uint64) | participant | chunks
func StakeKey(marketID uint64, participant codec.Address) []byte {
	key := make([]byte, 1+consts.Uint64Len+codec.AddressLen)
	key[0] = consts.StakePrefix
	binary.BigEndian.PutUint64(key[1:], marketID)
	copy(key[1+consts.Uint64Len:], participant[:])
	return keys.EncodeChunks(key, consts.StakeChunks)
}

// MarketCount returns how many market ids have been allocated.
func MarketCount(ctx context.Context, im state.Immutable) (uint64, error) {
	valBytes, err := im.GetValue(ctx, RegistryCounterKey())
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get market counter: %w", err)
	}
	return database.ParseUInt64(valBytes)
}

// NextMarketID allocates the next sequential market id.
func NextMarketID(ctx context.Context, mu state.Mutable) (uint64, error) {
	id, err := MarketCount(ctx, mu)
	if err != nil {
		return 0, err
	}
	if err := mu.Insert(ctx, RegistryCounterKey(), database.PackUInt64(id+1)); err != nil {
		return 0, fmt.Errorf("failed to advance market counter past %d: %w", id, err)
	}
	return id, nil
}

// GetMarket retrieves a market by its ID from the state. A missing market is reported
// as a wrapped database.ErrNotFound.
func GetMarket(ctx context.Context, im state.Immutable, marketID uint64) (*Market, error) {
	valBytes, err := im.GetValue(ctx, MarketKey(marketID))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("market %d not found: %w", marketID, err)
		}
		return nil, err
	}
	market := &Market{}
	if err := codec.LinearCodec.UnmarshalFrom(&wrappers.Packer{Bytes: valBytes}, market); err != nil {
		return nil, fmt.Errorf("failed to unmarshal market %d: %w", marketID, err)
	}
	return market, nil
}

// SetMarket stores a market into the state.
func SetMarket(ctx context.Context, mu state.Mutable, market *Market) error {
	p := &wrappers.Packer{
		Bytes:   make([]byte, 0, consts.MaxMarketDataSize),
		MaxSize: consts.MaxMarketDataSize,
	}
	if err := codec.LinearCodec.MarshalInto(market, p); err != nil {
		return fmt.Errorf("failed to marshal market %d: %w", market.ID, err)
	}
	return mu.Insert(ctx, MarketKey(market.ID), p.Bytes)
}

// GetStake retrieves a participant's stake balance. Absent entries are zero balances.
func GetStake(ctx context.Context, im state.Immutable, marketID uint64, participant codec.Address) (StakeBalance, error) {
	var balance StakeBalance
	valBytes, err := im.GetValue(ctx, StakeKey(marketID, participant))
	if errors.Is(err, database.ErrNotFound) {
		return balance, nil
	}
	if err != nil {
		return balance, fmt.Errorf("failed to get stake of %s in market %d: %w", participant, marketID, err)
	}
	if err := codec.LinearCodec.UnmarshalFrom(&wrappers.Packer{Bytes: valBytes}, &balance); err != nil {
		return balance, fmt.Errorf("failed to unmarshal stake of %s in market %d: %w", participant, marketID, err)
	}
	return balance, nil
}

// SetStake stores a participant's stake balance. If both sides are zero, the key is removed.
func SetStake(ctx context.Context, mu state.Mutable, marketID uint64, participant codec.Address, balance StakeBalance) error {
	key := StakeKey(marketID, participant)
	if balance.IsZero() {
		err := mu.Remove(ctx, key)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("failed to remove empty stake of %s in market %d: %w", participant, marketID, err)
		}
		return nil
	}
	p := &wrappers.Packer{
		Bytes:   make([]byte, 0, 2*consts.Uint64Len),
		MaxSize: 2 * consts.Uint64Len,
	}
	if err := codec.LinearCodec.MarshalInto(&balance, p); err != nil {
		return fmt.Errorf("failed to marshal stake of %s in market %d: %w", participant, marketID, err)
	}
	return mu.Insert(ctx, key, p.Bytes)
}
