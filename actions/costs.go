package actions

const (
	CreateMarketComputeUnits       uint64 = 5
	StakeComputeUnits              uint64 = 3
	ProposeResolutionComputeUnits  uint64 = 2
	DisputeResolutionComputeUnits  uint64 = 2
	FinalizeUndisputedComputeUnits uint64 = 3
	FinalizeDisputedComputeUnits   uint64 = 3
	ClaimWinningsComputeUnits      uint64 = 3
)
