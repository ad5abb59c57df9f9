package genesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/state"

	hgenesis "github.com/ava-labs/hypersdk/genesis"

	"github.com/radicleart/bigmarket-dao/asset"
	"github.com/radicleart/bigmarket-dao/governance"
)

var (
	ErrUnexpectedGenesis = errors.New("unexpected base genesis type")

	_ hgenesis.Genesis               = (*Genesis)(nil)
	_ hgenesis.GenesisAndRuleFactory = (*Factory)(nil)
)

// TokenAllocation credits a settlement token balance at genesis.
type TokenAllocation struct {
	Address string `json:"address"` // Bech32 address
	Token   ids.ID `json:"token"`
	Balance uint64 `json:"balance"`
}

// Genesis extends the default hypersdk genesis (native fee allocations and rules)
// with governance params and settlement token balances.
type Genesis struct {
	*hgenesis.DefaultGenesis

	Governance       *governance.Params `json:"governance"`
	TokenAllocations []*TokenAllocation `json:"tokenAllocations"`
}

// DefaultGovernance is used when the genesis carries no governance params. Heights are
// block timestamps in milliseconds.
func DefaultGovernance() *governance.Params {
	params := governance.DefaultParams()
	params.MarketDuration = uint64((7 * 24 * time.Hour).Milliseconds())
	params.DisputeWindow = uint64((24 * time.Hour).Milliseconds())
	return params
}

func (g *Genesis) InitializeState(ctx context.Context, tracer trace.Tracer, mu state.Mutable, bh chain.BalanceHandler) error {
	if err := g.DefaultGenesis.InitializeState(ctx, tracer, mu, bh); err != nil {
		return err
	}

	params := g.Governance
	if params == nil {
		params = DefaultGovernance()
	}
	if err := governance.Put(ctx, mu, params); err != nil {
		return fmt.Errorf("failed to store genesis governance params: %w", err)
	}

	for _, alloc := range g.TokenAllocations {
		addr, err := ParseAddress(alloc.Address)
		if err != nil {
			return err
		}
		if err := asset.AddBalance(ctx, mu, addr, alloc.Token, alloc.Balance); err != nil {
			return fmt.Errorf("failed to allocate %s to %s: %w", alloc.Token, alloc.Address, err)
		}
	}
	return nil
}

// Factory loads a Genesis and takes its rules from the default hypersdk factory.
type Factory struct{}

func (Factory) Load(genesisBytes []byte, upgradeBytes []byte, networkID uint32, chainID ids.ID) (hgenesis.Genesis, chain.RuleFactory, error) {
	base, ruleFactory, err := (&hgenesis.DefaultGenesisFactory{}).Load(genesisBytes, upgradeBytes, networkID, chainID)
	if err != nil {
		return nil, nil, err
	}
	defaultGenesis, ok := base.(*hgenesis.DefaultGenesis)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %T", ErrUnexpectedGenesis, base)
	}

	g := &Genesis{}
	if err := json.Unmarshal(genesisBytes, g); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal genesis: %w", err)
	}
	g.DefaultGenesis = defaultGenesis
	if g.Governance != nil {
		if err := g.Governance.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return g, ruleFactory, nil
}
