// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"errors"

	"github.com/ava-labs/hypersdk/auth"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/state/metadata"
	"github.com/ava-labs/hypersdk/vm"
	"github.com/ava-labs/hypersdk/vm/defaultvm"

	"github.com/radicleart/bigmarket-dao/actions"
	"github.com/radicleart/bigmarket-dao/controller"
	"github.com/radicleart/bigmarket-dao/genesis"
)

var (
	ActionParser *codec.TypeParser[chain.Action]
	AuthParser   *codec.TypeParser[chain.Auth]
	OutputParser *codec.TypeParser[codec.Typed]

	AuthProvider *auth.AuthProvider

	Parser *chain.TxTypeParser
)

// Setup types
func init() {
	ActionParser = codec.NewTypeParser[chain.Action]()
	AuthParser = codec.NewTypeParser[chain.Auth]()
	OutputParser = codec.NewTypeParser[codec.Typed]()
	AuthProvider = auth.NewAuthProvider()

	if err := auth.WithDefaultPrivateKeyFactories(AuthProvider); err != nil {
		panic(err)
	}

	if err := errors.Join(
		ActionParser.Register(&actions.CreateMarket{}, actions.UnmarshalCreateMarket),
		ActionParser.Register(&actions.PredictYesStake{}, actions.UnmarshalPredictYesStake),
		ActionParser.Register(&actions.PredictNoStake{}, actions.UnmarshalPredictNoStake),
		ActionParser.Register(&actions.ProposeResolution{}, actions.UnmarshalProposeResolution),
		ActionParser.Register(&actions.DisputeResolution{}, actions.UnmarshalDisputeResolution),
		ActionParser.Register(&actions.FinalizeUndisputed{}, actions.UnmarshalFinalizeUndisputed),
		ActionParser.Register(&actions.FinalizeDisputed{}, actions.UnmarshalFinalizeDisputed),
		ActionParser.Register(&actions.ClaimWinnings{}, actions.UnmarshalClaimWinnings),

		AuthParser.Register(&auth.ED25519{}, auth.UnmarshalED25519),
		AuthParser.Register(&auth.SECP256R1{}, auth.UnmarshalSECP256R1),
		AuthParser.Register(&auth.BLS{}, auth.UnmarshalBLS),

		OutputParser.Register(&actions.CreateMarketResult{}, actions.UnmarshalCreateMarketResult),
		OutputParser.Register(&actions.PredictYesStakeResult{}, actions.UnmarshalPredictYesStakeResult),
		OutputParser.Register(&actions.PredictNoStakeResult{}, actions.UnmarshalPredictNoStakeResult),
		OutputParser.Register(&actions.ProposeResolutionResult{}, actions.UnmarshalProposeResolutionResult),
		OutputParser.Register(&actions.DisputeResolutionResult{}, actions.UnmarshalDisputeResolutionResult),
		OutputParser.Register(&actions.FinalizeUndisputedResult{}, actions.UnmarshalFinalizeUndisputedResult),
		OutputParser.Register(&actions.FinalizeDisputedResult{}, actions.UnmarshalFinalizeDisputedResult),
		OutputParser.Register(&actions.ClaimWinningsResult{}, actions.UnmarshalClaimWinningsResult),
	); err != nil {
		panic(err)
	}

	Parser = chain.NewTxTypeParser(ActionParser, AuthParser)
}

// New returns a VM with the specified options
func New(options ...vm.Option) (*vm.VM, error) {
	factory := NewFactory()
	return factory.New(options...)
}

func NewFactory() *vm.Factory {
	options := defaultvm.NewDefaultOptions()
	return vm.NewFactory(
		&genesis.Factory{},
		controller.New(),
		metadata.NewDefaultManager(),
		ActionParser,
		AuthParser,
		OutputParser,
		auth.DefaultEngines(),
		options...,
	)
}
