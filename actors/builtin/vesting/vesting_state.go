package vesting

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	big "github.com/filecoin-project/go-state-types/big"
	cid "github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/tokenvest/vesting-actors/actors/builtin"
	"github.com/tokenvest/vesting-actors/actors/util/adt"
)

// GrantStatus is the explicit lifecycle tag of a grant record.
// A recipient with no record in the grants map has no grant at all; status is never
// inferred from incidental zero values of other fields.
type GrantStatus int64

const (
	// Zero value; never persisted.
	GrantStatusUnknown GrantStatus = iota
	// Vesting accrues by formula; claims and updates are permitted.
	GrantStatusActive
	// Terminal. Accrual is frozen; the remaining total is claimable as-is.
	GrantStatusRevoked
)

type State struct {
	// The fungible-token ledger actor holding the vault's funds.
	Token addr.Address

	// Sole authorizer of privileged methods. Grant funding is pulled from this
	// address's token balance, against a pre-authorized allowance.
	Admin addr.Address

	// Receives the protocol fee deducted from each claim.
	FeeRecipient addr.Address

	// Fee rate in basis points of each gross payout, at most MaxFeeBasisPoints.
	FeeBasisPoints uint64

	// While true, claims fail. Mutable by the admin only.
	Paused bool

	// Held for the duration of a single claim. A claim arriving while the lock is
	// held (i.e. re-entered from within a transfer) fails rather than double-spend.
	Locked bool

	// Grant records by recipient address. HAMT[addr.Address]Grant.
	// At most one grant ever exists per recipient; records are never deleted.
	Grants cid.Cid
}

// A recipient's vesting allocation.
// Amounts are persisted at fixed width; all accounting arithmetic is performed on
// wide integers and narrowed back with an explicit bounds check.
type Grant struct {
	// Total tokens allocated to vest. After revocation this is re-based to the
	// vested-but-unclaimed remainder and frozen.
	Total uint64

	// Cumulative amount already paid out. Claimed <= Total always.
	Claimed uint64

	// Epoch at which vesting begins. Nothing is vested before it.
	StartEpoch abi.ChainEpoch

	// Total vesting span, in epochs. Always positive.
	Duration abi.ChainEpoch

	// Span after StartEpoch during which nothing vests, including amounts the
	// linear formula would otherwise have accrued. At most Duration.
	CliffDuration abi.ChainEpoch

	Status GrantStatus
}

func ConstructState(store adt.Store, tokenAddr, admin, feeRecipient addr.Address, feeBasisPoints uint64) (*State, error) {
	emptyGrantsCid, err := adt.StoreEmptyMap(store, builtin.DefaultHamtBitwidth)
	if err != nil {
		return nil, xerrors.Errorf("failed to create empty grants map: %w", err)
	}

	return &State{
		Token:          tokenAddr,
		Admin:          admin,
		FeeRecipient:   feeRecipient,
		FeeBasisPoints: feeBasisPoints,
		Paused:         false,
		Locked:         false,
		Grants:         emptyGrantsCid,
	}, nil
}

// Loads the grant record for a recipient.
// A missing record means no grant was ever created for that recipient.
func (st *State) GetGrant(store adt.Store, recipient addr.Address) (*Grant, bool, error) {
	grants, err := adt.AsMap(store, st.Grants, builtin.DefaultHamtBitwidth)
	if err != nil {
		return nil, false, xerrors.Errorf("failed to load grants: %w", err)
	}

	var grant Grant
	found, err := grants.Get(abi.AddrKey(recipient), &grant)
	if err != nil {
		return nil, false, xerrors.Errorf("failed to get grant for %v: %w", recipient, err)
	}
	if !found {
		return nil, false, nil
	}
	return &grant, true, nil
}

// Stores a grant record for a recipient, overwriting any existing record.
func (st *State) PutGrant(store adt.Store, recipient addr.Address, grant *Grant) error {
	grants, err := adt.AsMap(store, st.Grants, builtin.DefaultHamtBitwidth)
	if err != nil {
		return xerrors.Errorf("failed to load grants: %w", err)
	}

	if err := grants.Put(abi.AddrKey(recipient), grant); err != nil {
		return xerrors.Errorf("failed to put grant for %v: %w", recipient, err)
	}

	st.Grants, err = grants.Root()
	if err != nil {
		return xerrors.Errorf("failed to flush grants: %w", err)
	}
	return nil
}

// VestedAmount returns the amount vested at epoch `now`.
//
// For an active grant this is the linear formula with cliff semantics: zero before
// the start epoch and throughout the cliff, the full total once the duration has
// elapsed, and floor(Total * elapsed / Duration) in between. Multiplication before
// division preserves precision; truncation means the recipient never over-receives
// from rounding.
//
// For a revoked grant the formula no longer applies: the frozen total is itself the
// vested amount.
func (g *Grant) VestedAmount(now abi.ChainEpoch) abi.TokenAmount {
	if g.Status == GrantStatusRevoked {
		return big.NewIntUnsigned(g.Total)
	}
	if now < g.StartEpoch {
		return big.Zero()
	}
	elapsed := now - g.StartEpoch
	if elapsed < g.CliffDuration {
		return big.Zero()
	}
	if elapsed >= g.Duration {
		return big.NewIntUnsigned(g.Total)
	}
	return big.Div(
		big.Mul(big.NewIntUnsigned(g.Total), big.NewInt(int64(elapsed))),
		big.NewInt(int64(g.Duration)),
	)
}

// Claimable returns the amount available to claim at epoch `now`: vested minus
// already claimed.
func (g *Grant) Claimable(now abi.ChainEpoch) abi.TokenAmount {
	return big.Sub(g.VestedAmount(now), big.NewIntUnsigned(g.Claimed))
}
