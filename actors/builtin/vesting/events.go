package vesting

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
)

// Records appended to the call's event log for external observers and indexers.
// Events are emitted only by calls that complete successfully.

type GrantCreatedEvent struct {
	Recipient     addr.Address
	Total         abi.TokenAmount
	StartEpoch    abi.ChainEpoch
	Duration      abi.ChainEpoch
	CliffDuration abi.ChainEpoch
}

type GrantUpdatedEvent struct {
	Recipient addr.Address
	NewTotal  abi.TokenAmount
	// The increase over the previous total, pulled into custody by the update.
	AdditionalAmount abi.TokenAmount
	NewDuration      abi.ChainEpoch
	NewCliffDuration abi.ChainEpoch
}

type FundsClaimedEvent struct {
	Recipient addr.Address
	Gross     abi.TokenAmount
	Fee       abi.TokenAmount
	Net       abi.TokenAmount
}

type GrantRevokedEvent struct {
	Recipient addr.Address
	// Vested but not yet claimed at revocation; remains claimable by the recipient.
	VestedUnclaimed abi.TokenAmount
	// Returned to the admin's token balance.
	UnvestedReturned abi.TokenAmount
}

type PauseToggledEvent struct {
	Caller addr.Address
	Paused bool
}
