package cmd

import (
	"fmt"
	"io"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/radicleart/bigmarket-dao/ledger"
	"github.com/radicleart/bigmarket-dao/market"
)

var runCmd = &cobra.Command{
	Use:   "run [scenario.toml]",
	Short: "Runs a settlement scenario against an in-memory ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := runScenario(cmd, args[0])
		if err != nil {
			return err
		}
		return l.Close()
	},
}

// runScenario loads and runs a scenario, printing each step, and returns the ledger
// it ran against.
func runScenario(cmd *cobra.Command, path string) (*ledger.Ledger, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	s, err := LoadScenario(path)
	if err != nil {
		return nil, err
	}

	l := ledger.New(memdb.New(), market.NewDefault(log), log)
	runner, err := NewRunner(cmd.Context(), s, l)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s (%s)\n", headingColor("scenario"), path, runner.Token())
	step := 0
	_, err = runner.Run(cmd.Context(), func(r StepResult) {
		printStep(out, step, r, s.Decimals)
		step++
	})
	if err != nil {
		return nil, err
	}
	log.Info("scenario complete",
		zap.String("path", path),
		zap.Int("steps", step),
	)
	if err := printSummary(cmd, out, l, runner, s); err != nil {
		return nil, err
	}
	return l, nil
}

func printSummary(cmd *cobra.Command, out io.Writer, l *ledger.Ledger, runner *Runner, s *Scenario) error {
	ctx := cmd.Context()
	fmt.Fprintln(out, headingColor("balances"))
	for _, account := range s.Accounts {
		bal, err := l.Balance(ctx, Participant(account.Name), runner.Token())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-10s %s\n", account.Name, FormatAmount(bal, s.Decimals))
	}
	held, err := l.Custody(ctx, runner.Token())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  %-10s %s\n", "custody", FormatAmount(held, s.Decimals))
	return nil
}
