// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/ulimit"
	"github.com/ava-labs/avalanchego/vms/rpcchainvm"
	"github.com/spf13/cobra"

	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/snow"

	"github.com/radicleart/bigmarket-dao/consts"
	"github.com/radicleart/bigmarket-dao/vm"
)

var rootCmd = &cobra.Command{
	Use:        consts.Name,
	Short:      "Staked binary prediction market VM",
	SuggestFor: []string{consts.Name},
	RunE:       runFunc,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the VM name, ID and version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.Printf("%s@%s [%s]\n", consts.Name, consts.Version, consts.ID)
		return nil
	},
}

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed %v\n", consts.Name, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func runFunc(*cobra.Command, []string) error {
	if err := ulimit.Set(ulimit.DefaultFDLimit, logging.NoLog{}); err != nil {
		return fmt.Errorf("%w: failed to set fd limit correctly", err)
	}

	v, err := vm.New()
	if err != nil {
		return err
	}

	return rpcchainvm.Serve(context.TODO(), snow.NewSnowVM[*chain.ExecutionBlock, *chain.OutputBlock, *chain.OutputBlock](consts.Version.String(), v))
}
