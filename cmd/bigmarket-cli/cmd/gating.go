package cmd

import (
	"fmt"

	"github.com/ava-labs/hypersdk/codec"
	"github.com/spf13/cobra"

	"github.com/radicleart/bigmarket-dao/gating"
	"github.com/radicleart/bigmarket-dao/genesis"
)

var gatingCmd = &cobra.Command{
	Use:   "gating-root [creator...]",
	Short: "Builds the permitted-creator tree and prints its root and every proof",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		creators := make([]codec.Address, len(args))
		for i, name := range args {
			creators[i] = Participant(name)
		}
		tree, err := gating.BuildTree(creators)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", headingColor("root"), tree.Root())
		for i, creator := range creators {
			proof, err := tree.Proof(creator)
			if err != nil {
				return err
			}
			addr, err := genesis.FormatAddress(creator)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", okColor(args[i]), addr)
			for _, sibling := range proof {
				fmt.Fprintf(out, "  %s\n", sibling)
			}
		}
		return nil
	},
}

var addressCmd = &cobra.Command{
	Use:   "address [name...]",
	Short: "Prints the address a scenario name resolves to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			addr, err := genesis.FormatAddress(Participant(name))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", name, addr)
		}
		return nil
	},
}
