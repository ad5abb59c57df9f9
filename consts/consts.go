// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/version"
)

const (
	Name   = "bigmarketvm"
	Symbol = "BIG"
	HRP    = "big"

	// MaxMarketDataSize defines the maximum expected size for marshaled market data.
	MaxMarketDataSize = 1024

	// MaxProofLength bounds the audit path accepted by gated market creation.
	// 32 levels covers any realistic allow-list.
	MaxProofLength = 32
)

// Action and output type IDs. Outputs reuse the ID of the action that emits them.
const (
	CreateMarketID uint8 = iota
	PredictYesStakeID
	PredictNoStakeID
	ProposeResolutionID
	DisputeResolutionID
	FinalizeUndisputedID
	FinalizeDisputedID
	ClaimWinningsID
)

// State values are metered in 64-byte chunks. Every key ends with the most chunks its
// value may occupy.
const (
	ChunkSize = 64

	BalanceChunks uint16 = 1
	CounterChunks uint16 = 1
	CustodyChunks uint16 = 1
	StakeChunks   uint16 = 1
	MarketChunks  uint16 = MaxMarketDataSize / ChunkSize
)

// Storage prefixes
const (
	BalancePrefix byte = iota // native fee token
	AssetBalancePrefix
	EscrowPrefix
	RegistryCounterPrefix
	MarketPrefix
	StakePrefix
	GovernancePrefix
)

const (
	// CodecVersionDefault is the default version for marshalling/unmarshalling.
	CodecVersionDefault uint16 = 0

	Uint16Len = 2
	Uint64Len = 8

	// BasisPoints is the denominator of every fee rate.
	BasisPoints uint64 = 10_000
)

// Stake sides
const (
	YesSide uint8 = 0
	NoSide  uint8 = 1
)

// SideToString converts a stake side to its string representation.
func SideToString(side uint8) string {
	switch side {
	case YesSide:
		return "YES"
	case NoSide:
		return "NO"
	default:
		return "UnknownSide"
	}
}

// SideOf returns the side that an outcome pays.
func SideOf(outcome bool) uint8 {
	if outcome {
		return YesSide
	}
	return NoSide
}

// ResolutionState is the numeric resolution-state code stored with each market.
type ResolutionState uint8

const (
	Open               ResolutionState = 0
	ResolutionProposed ResolutionState = 1
	Disputed           ResolutionState = 2
	Concluded          ResolutionState = 3
)

func (s ResolutionState) String() string {
	switch s {
	case Open:
		return "Open"
	case ResolutionProposed:
		return "ResolutionProposed"
	case Disputed:
		return "Disputed"
	case Concluded:
		return "Concluded"
	default:
		return fmt.Sprintf("UnknownResolutionState:%d", uint8(s))
	}
}

// Error codes reported by the settlement entry points.
const (
	ErrCodeNotPermitted  uint32 = 10001
	ErrCodeTokenMismatch uint32 = 10002
	ErrCodeZeroAmount    uint32 = 10003
	ErrCodeInvalidState  uint32 = 10004
	ErrCodeNotFound      uint32 = 10005
	ErrCodeNotEntitled   uint32 = 10006
	ErrCodeUnauthorized  uint32 = 10007
	ErrCodeOverflow      uint32 = 10008
)

var ID ids.ID

func init() {
	b := make([]byte, ids.IDLen)
	copy(b, []byte(Name))
	vmID, err := ids.ToID(b)
	if err != nil {
		panic(err)
	}
	ID = vmID
}

var Version = &version.Semantic{
	Major: 0,
	Minor: 1,
	Patch: 0,
}
