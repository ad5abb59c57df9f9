package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/hypersdk/codec"

	"github.com/radicleart/bigmarket-dao/gating"
	"github.com/radicleart/bigmarket-dao/genesis"
	"github.com/radicleart/bigmarket-dao/governance"
	"github.com/radicleart/bigmarket-dao/ledger"
	"github.com/radicleart/bigmarket-dao/market"
)

var (
	ErrUnknownOp        = errors.New("unknown scenario op")
	ErrUnexpectedResult = errors.New("scenario step did not go as expected")
)

// Scenario is a scripted sequence of entry point calls against a fresh ledger.
type Scenario struct {
	Token      string           `toml:"token"`
	Decimals   uint32           `toml:"decimals"`
	Governance GovernanceConfig `toml:"governance"`
	Accounts   []Account        `toml:"accounts"`
	Steps      []Step           `toml:"steps"`
}

type GovernanceConfig struct {
	FeeSchedule    []uint64 `toml:"fee_schedule"`
	MarketDuration uint64   `toml:"market_duration"`
	DisputeWindow  uint64   `toml:"dispute_window"`
	// PermittedCreators enables gating when non-empty.
	PermittedCreators []string `toml:"permitted_creators"`
	ResolutionAgent   string   `toml:"resolution_agent"`
	DisputeResolver   string   `toml:"dispute_resolver"`
}

type Account struct {
	Name    string `toml:"name"`
	Balance uint64 `toml:"balance"`
}

// Step is one call. Op is one of create, yes, no, propose, dispute, finalize, rule,
// claim or advance.
type Step struct {
	Op      string `toml:"op"`
	Caller  string `toml:"caller"`
	Market  uint64 `toml:"market"`
	Amount  uint64 `toml:"amount"`
	Outcome bool   `toml:"outcome"`
	Blocks  uint64 `toml:"blocks"`

	// ExpectError is the numeric error code the step must fail with.
	ExpectError  uint32  `toml:"expect_error"`
	ExpectPayout *uint64 `toml:"expect_payout"`
}

// StepResult records what a step did.
type StepResult struct {
	Step   Step
	Err    error
	Payout uint64
	Height uint64
}

func DefaultScenario() Scenario {
	params := governance.DefaultParams()
	return Scenario{
		Token:    "sBTC",
		Decimals: 8,
		Governance: GovernanceConfig{
			FeeSchedule:    params.FeeSchedule,
			MarketDuration: params.MarketDuration,
			DisputeWindow:  params.DisputeWindow,
		},
	}
}

// LoadScenario reads a TOML scenario on top of DefaultScenario.
func LoadScenario(path string) (*Scenario, error) {
	s := DefaultScenario()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario %s: %w", path, err)
	}
	return &s, nil
}

// Participant resolves a scenario name to an address. Bech32 addresses are used as is;
// any other name is hashed into a stable address.
func Participant(name string) codec.Address {
	if addr, err := genesis.ParseAddress(name); err == nil {
		return addr
	}
	return codec.CreateAddress(0, ids.ID(hashing.ComputeHash256Array([]byte(name))))
}

// TokenID derives the settlement token id from its symbol.
func TokenID(symbol string) ids.ID {
	return ids.ID(hashing.ComputeHash256Array([]byte(symbol)))
}

type Runner struct {
	scenario *Scenario
	ledger   *ledger.Ledger
	token    ids.ID
	tree     *gating.Tree
}

// NewRunner funds the scenario accounts and stores its governance params.
func NewRunner(ctx context.Context, s *Scenario, l *ledger.Ledger) (*Runner, error) {
	r := &Runner{
		scenario: s,
		ledger:   l,
		token:    TokenID(s.Token),
	}

	params := &governance.Params{
		FeeSchedule:    s.Governance.FeeSchedule,
		MarketDuration: s.Governance.MarketDuration,
		DisputeWindow:  s.Governance.DisputeWindow,
	}
	if s.Governance.ResolutionAgent != "" {
		params.ResolutionAgent = Participant(s.Governance.ResolutionAgent)
	}
	if s.Governance.DisputeResolver != "" {
		params.DisputeResolver = Participant(s.Governance.DisputeResolver)
	}
	if len(s.Governance.PermittedCreators) > 0 {
		creators := make([]codec.Address, len(s.Governance.PermittedCreators))
		for i, name := range s.Governance.PermittedCreators {
			creators[i] = Participant(name)
		}
		tree, err := gating.BuildTree(creators)
		if err != nil {
			return nil, err
		}
		r.tree = tree
		params.GatingEnabled = true
		params.PermittedCreatorsRoot = tree.Root()
	}
	if err := l.SetParams(ctx, params); err != nil {
		return nil, err
	}

	for _, account := range s.Accounts {
		if err := l.Credit(ctx, Participant(account.Name), r.token, account.Balance); err != nil {
			return nil, fmt.Errorf("failed to fund %s: %w", account.Name, err)
		}
	}
	return r, nil
}

func (r *Runner) Token() ids.ID {
	return r.token
}

// Run executes every step in order and stops at the first step that does not match
// its expectation.
func (r *Runner) Run(ctx context.Context, onStep func(StepResult)) ([]StepResult, error) {
	results := make([]StepResult, 0, len(r.scenario.Steps))
	for i, step := range r.scenario.Steps {
		payout, err := r.apply(ctx, step)
		if errors.Is(err, ErrUnknownOp) {
			return results, fmt.Errorf("step %d: %w", i, err)
		}
		result := StepResult{Step: step, Err: err, Payout: payout, Height: r.ledger.Height()}
		results = append(results, result)
		if onStep != nil {
			onStep(result)
		}
		if err := check(step, result); err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}
	return results, nil
}

func (r *Runner) apply(ctx context.Context, step Step) (uint64, error) {
	caller := Participant(step.Caller)
	switch step.Op {
	case "create":
		req := market.CreateRequest{
			RequestedID: step.Market,
			Token:       r.token,
			ContentHash: ids.ID(hashing.ComputeHash256Array([]byte(fmt.Sprintf("%s/%d", step.Caller, step.Market)))),
		}
		if r.tree != nil {
			// Outsiders have no proof and are rejected by the engine.
			req.Proof, _ = r.tree.Proof(caller)
		}
		_, err := r.ledger.CreateMarket(ctx, caller, req)
		return 0, err
	case "yes":
		return 0, r.ledger.PredictYesStake(ctx, caller, step.Market, step.Amount, r.token)
	case "no":
		return 0, r.ledger.PredictNoStake(ctx, caller, step.Market, step.Amount, r.token)
	case "propose":
		return 0, r.ledger.ProposeResolution(ctx, caller, step.Market, step.Outcome)
	case "dispute":
		return 0, r.ledger.Dispute(ctx, caller, step.Market)
	case "finalize":
		return 0, r.ledger.FinalizeUndisputed(ctx, caller, step.Market)
	case "rule":
		return 0, r.ledger.FinalizeDisputed(ctx, caller, step.Market, step.Outcome)
	case "claim":
		return r.ledger.ClaimWinnings(ctx, caller, step.Market, r.token)
	case "advance":
		r.ledger.Advance(step.Blocks)
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOp, step.Op)
	}
}

func check(step Step, result StepResult) error {
	if step.ExpectError != 0 {
		code, _ := market.Code(result.Err)
		if code != step.ExpectError {
			return fmt.Errorf("%w: expected error %d, got %v", ErrUnexpectedResult, step.ExpectError, result.Err)
		}
		return nil
	}
	if result.Err != nil {
		return result.Err
	}
	if step.ExpectPayout != nil && *step.ExpectPayout != result.Payout {
		return fmt.Errorf("%w: expected payout %d, got %d", ErrUnexpectedResult, *step.ExpectPayout, result.Payout)
	}
	return nil
}
