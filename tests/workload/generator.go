// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package workload

import (
	"math/rand"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"

	"github.com/radicleart/bigmarket-dao/actions"
	"github.com/radicleart/bigmarket-dao/governance"
)

// Config shapes a generated workload.
type Config struct {
	Seed         int64
	Markets      int
	Participants int
	StakesEach   int
	MaxStake     uint64

	// DisputeEvery disputes every n-th market; 0 disputes none.
	DisputeEvery int
	Params       *governance.Params
}

// Step is one action issued by Actor at Timestamp.
type Step struct {
	Actor     codec.Address
	Timestamp int64
	Action    chain.Action
}

type Workload struct {
	Token        ids.ID
	Creator      codec.Address
	Resolver     codec.Address
	Participants []codec.Address

	// Funds is what each participant holds of Token before the first step.
	Funds uint64

	Steps []Step
}

// Generate builds a full market lifecycle: creation, random stakes, resolution with
// some disputes, then a claim from every participant on every market. Claims from
// participants without a winning stake are expected to fail.
func Generate(cfg Config) *Workload {
	r := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec
	w := &Workload{
		Token:    ids.GenerateTestID(),
		Creator:  codec.CreateAddress(0, ids.GenerateTestID()),
		Resolver: cfg.Params.DisputeResolver,
		Funds:    uint64(cfg.StakesEach) * cfg.MaxStake,
	}
	for range cfg.Participants {
		w.Participants = append(w.Participants, codec.CreateAddress(0, ids.GenerateTestID()))
	}

	duration := int64(cfg.Params.MarketDuration)
	window := int64(cfg.Params.DisputeWindow)

	for i := range cfg.Markets {
		w.add(w.Creator, 0, &actions.CreateMarket{
			MarketID:    uint64(i),
			Token:       w.Token,
			ContentHash: ids.GenerateTestID(),
		})
	}

	for _, p := range w.Participants {
		for range cfg.StakesEach {
			marketID := uint64(r.Intn(cfg.Markets))
			amount := 1 + uint64(r.Int63n(int64(cfg.MaxStake)))
			ts := 1 + r.Int63n(duration-1)
			if r.Intn(2) == 0 {
				w.add(p, ts, &actions.PredictYesStake{MarketID: marketID, Amount: amount, Token: w.Token})
			} else {
				w.add(p, ts, &actions.PredictNoStake{MarketID: marketID, Amount: amount, Token: w.Token})
			}
		}
	}
	sortSteps(w.Steps)

	for i := range cfg.Markets {
		marketID := uint64(i)
		outcome := r.Intn(2) == 0
		w.add(w.Creator, duration, &actions.ProposeResolution{MarketID: marketID, Outcome: outcome})
		if cfg.DisputeEvery > 0 && i%cfg.DisputeEvery == 0 {
			// Only stakers may dispute; the first participant to stake anything
			// is the disputer, so a market nobody staked in stays undisputed.
			if disputer, ok := w.firstStaker(marketID); ok {
				w.add(disputer, duration+1, &actions.DisputeResolution{MarketID: marketID})
				w.add(w.Resolver, duration+2, &actions.FinalizeDisputed{MarketID: marketID, Ruling: !outcome})
				continue
			}
		}
		w.add(w.Creator, duration+window, &actions.FinalizeUndisputed{MarketID: marketID})
	}

	for i := range cfg.Markets {
		for _, p := range w.Participants {
			w.add(p, duration+window+1, &actions.ClaimWinnings{MarketID: uint64(i), Token: w.Token})
		}
	}
	return w
}

func (w *Workload) add(actor codec.Address, ts int64, action chain.Action) {
	w.Steps = append(w.Steps, Step{Actor: actor, Timestamp: ts, Action: action})
}

func (w *Workload) firstStaker(marketID uint64) (codec.Address, bool) {
	for _, step := range w.Steps {
		switch a := step.Action.(type) {
		case *actions.PredictYesStake:
			if a.MarketID == marketID {
				return step.Actor, true
			}
		case *actions.PredictNoStake:
			if a.MarketID == marketID {
				return step.Actor, true
			}
		}
	}
	return codec.EmptyAddress, false
}

// sortSteps orders steps by timestamp, keeping issue order for equal timestamps.
func sortSteps(steps []Step) {
	for i := 1; i < len(steps); i++ {
		for j := i; j > 0 && steps[j].Timestamp < steps[j-1].Timestamp; j-- {
			steps[j], steps[j-1] = steps[j-1], steps[j]
		}
	}
}
