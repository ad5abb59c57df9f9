// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "bigmarket-cli" runs settlement scenarios and inspects their read model.
package main

import (
	"os"

	"github.com/ava-labs/hypersdk/utils"

	"github.com/radicleart/bigmarket-dao/cmd/bigmarket-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		utils.Outf("{{red}}bigmarket-cli exited with error:{{/}} %+v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
