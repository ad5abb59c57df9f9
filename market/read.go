package market

import (
	"context"

	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state"

	"github.com/radicleart/bigmarket-dao/storage"
)

// GetMarket returns the market record, including its settlement snapshot once concluded.
func GetMarket(ctx context.Context, im state.Immutable, marketID uint64) (*storage.Market, error) {
	return loadMarket(ctx, im, marketID)
}

// GetStakeBalance returns what participant has staked on each side. Unknown markets
// and participants report zero.
func GetStakeBalance(ctx context.Context, im state.Immutable, marketID uint64, participant codec.Address) (storage.StakeBalance, error) {
	return storage.GetStake(ctx, im, marketID, participant)
}

// MarketCount returns the number of markets created so far.
func MarketCount(ctx context.Context, im state.Immutable) (uint64, error) {
	return storage.MarketCount(ctx, im)
}
