package vesting

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	big "github.com/filecoin-project/go-state-types/big"

	"github.com/tokenvest/vesting-actors/actors/builtin"
	"github.com/tokenvest/vesting-actors/actors/util/adt"
)

type StateSummary struct {
	GrantCount        uint64
	ActiveGrantCount  uint64
	RevokedGrantCount uint64
	// Sum of Total-Claimed over all grants, the amount the actor must still hold
	// in token custody.
	OutstandingObligations abi.TokenAmount
}

// Checks internal invariants of the vesting state.
func CheckStateInvariants(st *State, store adt.Store) (*StateSummary, *builtin.MessageAccumulator) {
	acc := &builtin.MessageAccumulator{}
	sum := &StateSummary{
		OutstandingObligations: big.Zero(),
	}

	acc.Require(st.Token != addr.Undef, "token ledger address is undefined")
	acc.Require(st.Admin != addr.Undef, "admin address is undefined")
	acc.Require(st.FeeRecipient != addr.Undef, "fee recipient address is undefined")
	acc.Require(st.FeeBasisPoints <= MaxFeeBasisPoints,
		"fee basis points %d exceeds maximum %d", st.FeeBasisPoints, MaxFeeBasisPoints)
	// The claim lock is only held across the sends of an in-flight claim; a
	// committed state must never carry it.
	acc.Require(!st.Locked, "claim lock held at rest")

	grants, err := adt.AsMap(store, st.Grants, builtin.DefaultHamtBitwidth)
	if err != nil {
		acc.Addf("error loading grants map: %v", err)
		return sum, acc
	}

	var grant Grant
	err = grants.ForEach(&grant, func(key string) error {
		recipient, err := addr.NewFromBytes([]byte(key))
		acc.RequireNoError(err, "error deserializing grant key %x", []byte(key))
		acc := acc.WithPrefix("grant %v: ", recipient) // nolint:govet

		acc.Require(grant.Status == GrantStatusActive || grant.Status == GrantStatusRevoked,
			"unexpected status %d", grant.Status)
		acc.Require(grant.Claimed <= grant.Total,
			"claimed %d exceeds total %d", grant.Claimed, grant.Total)
		if grant.Status == GrantStatusActive {
			acc.Require(grant.Duration > 0, "non-positive duration %d", grant.Duration)
			acc.Require(grant.CliffDuration <= grant.Duration,
				"cliff %d exceeds duration %d", grant.CliffDuration, grant.Duration)
			sum.ActiveGrantCount++
		} else {
			sum.RevokedGrantCount++
		}
		sum.GrantCount++
		sum.OutstandingObligations = big.Add(sum.OutstandingObligations,
			big.NewIntUnsigned(grant.Total-grant.Claimed))
		return nil
	})
	acc.RequireNoError(err, "error iterating grants")

	return sum, acc
}
