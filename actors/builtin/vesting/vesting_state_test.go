package vesting_test

import (
	"context"
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	big "github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenvest/vesting-actors/actors/builtin/vesting"
	"github.com/tokenvest/vesting-actors/support/ipld"
	tutil "github.com/tokenvest/vesting-actors/support/testing"
)

func TestVestedAmount(t *testing.T) {
	// 100,000 units vesting over 365 epochs with a 90 epoch cliff.
	grant := vesting.Grant{
		Total:         100_000,
		Claimed:       0,
		StartEpoch:    abi.ChainEpoch(1000),
		Duration:      abi.ChainEpoch(365),
		CliffDuration: abi.ChainEpoch(90),
		Status:        vesting.GrantStatusActive,
	}

	testCases := []struct {
		name   string
		now    abi.ChainEpoch
		vested int64
	}{
		{"before start", 999, 0},
		{"at start", 1000, 0},
		{"last epoch of cliff", 1089, 0},
		// The cliff ends and everything the linear formula has accrued so far
		// becomes vested at once.
		{"cliff elapsed", 1090, 24_657}, // floor(100000 * 90 / 365)
		{"mid schedule", 1180, 49_315},  // floor(100000 * 180 / 365)
		{"one epoch short", 1364, 99_726},
		{"fully vested", 1365, 100_000},
		{"long after end", 10_000, 100_000},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, big.NewInt(tc.vested), grant.VestedAmount(tc.now))
		})
	}
}

func TestVestedAmountMonotonic(t *testing.T) {
	grant := vesting.Grant{
		Total:         999_983, // co-prime with the duration, to exercise rounding
		StartEpoch:    abi.ChainEpoch(0),
		Duration:      abi.ChainEpoch(730),
		CliffDuration: abi.ChainEpoch(100),
		Status:        vesting.GrantStatusActive,
	}

	prev := big.Zero()
	for now := abi.ChainEpoch(0); now <= 800; now++ {
		vested := grant.VestedAmount(now)
		require.True(t, prev.LessThanEqual(vested),
			"vested amount decreased from %v to %v at epoch %v", prev, vested, now)
		require.True(t, vested.LessThanEqual(big.NewIntUnsigned(grant.Total)))
		prev = vested
	}
	assert.Equal(t, big.NewIntUnsigned(grant.Total), prev)
}

func TestVestedAmountRevoked(t *testing.T) {
	// A revoked grant's total has been re-based to the frozen remainder, which is
	// vested in full regardless of the schedule fields.
	grant := vesting.Grant{
		Total:         12_345,
		Claimed:       0,
		StartEpoch:    abi.ChainEpoch(1000),
		Duration:      abi.ChainEpoch(365),
		CliffDuration: abi.ChainEpoch(90),
		Status:        vesting.GrantStatusRevoked,
	}

	assert.Equal(t, big.NewInt(12_345), grant.VestedAmount(0))
	assert.Equal(t, big.NewInt(12_345), grant.VestedAmount(1180))
	assert.Equal(t, big.NewInt(12_345), grant.VestedAmount(10_000))
}

func TestClaimable(t *testing.T) {
	grant := vesting.Grant{
		Total:         100_000,
		Claimed:       24_657,
		StartEpoch:    abi.ChainEpoch(1000),
		Duration:      abi.ChainEpoch(365),
		CliffDuration: abi.ChainEpoch(90),
		Status:        vesting.GrantStatusActive,
	}

	// Nothing new has vested since the last claim.
	assert.True(t, grant.Claimable(1090).Equals(big.Zero()))
	assert.True(t, grant.Claimable(1180).Equals(big.NewInt(49_315-24_657)))
	assert.True(t, grant.Claimable(2000).Equals(big.NewInt(100_000-24_657)))
}

func TestFeeAndNet(t *testing.T) {
	testCases := []struct {
		name  string
		gross int64
		bps   uint64
		fee   int64
		net   int64
	}{
		{"zero fee rate", 49_315, 0, 0, 49_315},
		{"max fee rate", 10_000, 500, 500, 9_500},
		{"fee rounds down", 49_315, 250, 1_232, 48_083}, // floor(49315 * 250 / 10000)
		{"gross too small for any fee", 39, 250, 0, 39},
		{"zero gross", 0, 250, 0, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fee, net := vesting.FeeAndNet(big.NewInt(tc.gross), tc.bps)
			assert.True(t, fee.Equals(big.NewInt(tc.fee)), "fee %v", fee)
			assert.True(t, net.Equals(big.NewInt(tc.net)), "net %v", net)
			assert.True(t, big.Add(fee, net).Equals(big.NewInt(tc.gross)))
		})
	}
}

func TestGrantRoundTrip(t *testing.T) {
	store := ipld.NewADTStore(context.Background())
	tokenAddr := tutil.NewIDAddr(t, 100)
	admin := tutil.NewIDAddr(t, 101)
	feeRecipient := tutil.NewIDAddr(t, 102)
	recipient := tutil.NewIDAddr(t, 103)

	st, err := vesting.ConstructState(store, tokenAddr, admin, feeRecipient, 250)
	require.NoError(t, err)

	_, found, err := st.GetGrant(store, recipient)
	require.NoError(t, err)
	assert.False(t, found)

	grant := &vesting.Grant{
		Total:         100_000,
		Claimed:       0,
		StartEpoch:    abi.ChainEpoch(1000),
		Duration:      abi.ChainEpoch(365),
		CliffDuration: abi.ChainEpoch(90),
		Status:        vesting.GrantStatusActive,
	}
	require.NoError(t, st.PutGrant(store, recipient, grant))

	loaded, found, err := st.GetGrant(store, recipient)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, grant, loaded)

	// Overwrite with updated claim progress.
	grant.Claimed = 24_657
	require.NoError(t, st.PutGrant(store, recipient, grant))
	loaded, found, err = st.GetGrant(store, recipient)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(24_657), loaded.Claimed)

	_, acc := vesting.CheckStateInvariants(st, store)
	assert.True(t, acc.IsEmpty(), acc.Messages())
}
