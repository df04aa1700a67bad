package vesting

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	big "github.com/filecoin-project/go-state-types/big"
	"github.com/filecoin-project/go-state-types/cbor"
	"github.com/filecoin-project/go-state-types/exitcode"
	rtt "github.com/filecoin-project/go-state-types/rt"
	cid "github.com/ipfs/go-cid"

	"github.com/tokenvest/vesting-actors/actors/builtin"
	"github.com/tokenvest/vesting-actors/actors/builtin/token"
	"github.com/tokenvest/vesting-actors/actors/runtime"
	"github.com/tokenvest/vesting-actors/actors/util/adt"
	"github.com/tokenvest/vesting-actors/actors/util/math"
)

// The vesting actor administers time-based linear vesting of fungible-token grants,
// one grant per recipient. Funds are pulled from the admin's token balance into the
// actor's custody at grant creation, accrue to the recipient linearly (after an
// optional cliff), and are paid out on claim minus a protocol fee. The admin may
// revoke an active grant, freezing the vested remainder for the recipient and
// reclaiming the unvested portion.
type Actor struct{}

func (a Actor) Exports() []interface{} {
	return []interface{}{
		builtin.MethodConstructor: a.Constructor,
		2:                         a.CreateGrant,
		3:                         a.UpdateGrant,
		4:                         a.Revoke,
		5:                         a.Claim,
		6:                         a.SetPaused,
	}
}

func (a Actor) Code() cid.Cid {
	return builtin.VestingActorCodeID
}

func (a Actor) IsSingleton() bool {
	return false
}

func (a Actor) State() cbor.Er {
	return new(State)
}

var _ runtime.VMActor = Actor{}

type ConstructorParams struct {
	Token          addr.Address
	Admin          addr.Address
	FeeRecipient   addr.Address
	FeeBasisPoints uint64
}

func (a Actor) Constructor(rt runtime.Runtime, params *ConstructorParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerIs(builtin.InitActorAddr)

	builtin.RequireParam(rt, params.Token != addr.Undef, "token ledger address is empty")
	builtin.RequireParam(rt, params.Admin != addr.Undef, "admin address is empty")
	builtin.RequireParam(rt, params.FeeRecipient != addr.Undef, "fee recipient address is empty")
	builtin.RequireParam(rt, params.FeeBasisPoints <= MaxFeeBasisPoints,
		"fee of %d bps exceeds maximum of %d", params.FeeBasisPoints, MaxFeeBasisPoints)

	st, err := ConstructState(adt.AsStore(rt), params.Token, params.Admin, params.FeeRecipient, params.FeeBasisPoints)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to construct state")
	rt.State().Create(st)
	return nil
}

type CreateGrantParams struct {
	Recipient     addr.Address
	Total         abi.TokenAmount
	StartEpoch    abi.ChainEpoch
	Duration      abi.ChainEpoch
	CliffDuration abi.ChainEpoch
}

func (a Actor) CreateGrant(rt runtime.Runtime, params *CreateGrantParams) *abi.EmptyValue {
	var st State
	rt.State().Readonly(&st)
	rt.ValidateImmediateCallerIs(st.Admin)

	builtin.RequireParam(rt, params.Recipient != addr.Undef, "recipient address is empty")
	builtin.RequireParam(rt, params.Total.GreaterThan(big.Zero()), "grant total must be positive, got %v", params.Total)
	builtin.RequireParam(rt, params.Duration > 0, "vesting duration must be positive, got %v", params.Duration)
	builtin.RequireParam(rt, params.CliffDuration <= params.Duration,
		"cliff duration %v exceeds vesting duration %v", params.CliffDuration, params.Duration)
	builtin.RequireParam(rt, params.StartEpoch >= rt.CurrEpoch(),
		"start epoch %v is in the past (current epoch %v)", params.StartEpoch, rt.CurrEpoch())

	total, err := math.Uint64(params.Total)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalArgument, "grant total does not fit the grant record")

	// The full grant must be covered by a pre-authorized allowance before any state
	// is committed.
	allowance := requestAllowance(rt, st.Token, st.Admin, rt.Message().Receiver())
	if allowance.LessThan(params.Total) {
		rt.Abortf(exitcode.ErrInsufficientFunds, "token allowance %v is less than grant total %v", allowance, params.Total)
	}

	rt.State().Transaction(&st, func() {
		_, found, err := st.GetGrant(adt.AsStore(rt), params.Recipient)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to load grant for %v", params.Recipient)
		if found {
			// Also covers fully-claimed and revoked grants; there is no reset.
			rt.Abortf(exitcode.ErrIllegalArgument, "grant already exists for %v", params.Recipient)
		}

		err = st.PutGrant(adt.AsStore(rt), params.Recipient, &Grant{
			Total:         total,
			Claimed:       0,
			StartEpoch:    params.StartEpoch,
			Duration:      params.Duration,
			CliffDuration: params.CliffDuration,
			Status:        GrantStatusActive,
		})
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to store grant for %v", params.Recipient)
	})

	// Pull the full grant from the admin's balance into vault custody. A failed
	// transfer aborts the call and rolls back the record above.
	_, code := rt.Send(st.Token, builtin.MethodsToken.TransferFrom, &token.TransferFromParams{
		From:   st.Admin,
		To:     rt.Message().Receiver(),
		Amount: params.Total,
	}, big.Zero())
	builtin.RequireSuccess(rt, code, "failed to pull grant funds into custody")

	rt.EmitEvent(&GrantCreatedEvent{
		Recipient:     params.Recipient,
		Total:         params.Total,
		StartEpoch:    params.StartEpoch,
		Duration:      params.Duration,
		CliffDuration: params.CliffDuration,
	})
	rt.Log(rtt.INFO, "created grant of %v for %v vesting over %v epochs", params.Total, params.Recipient, params.Duration)
	return nil
}

type UpdateGrantParams struct {
	Recipient        addr.Address
	NewTotal         abi.TokenAmount
	NewDuration      abi.ChainEpoch
	NewCliffDuration abi.ChainEpoch
}

// UpdateGrant loosens an active grant in the recipient's favour: the total may only
// grow, the duration may only grow, and the cliff may only shrink. Any increase in
// total is pulled into custody like the original funding.
func (a Actor) UpdateGrant(rt runtime.Runtime, params *UpdateGrantParams) *abi.EmptyValue {
	var st State
	rt.State().Readonly(&st)
	rt.ValidateImmediateCallerIs(st.Admin)

	builtin.RequireParam(rt, params.NewCliffDuration <= params.NewDuration,
		"cliff duration %v exceeds vesting duration %v", params.NewCliffDuration, params.NewDuration)

	grant, found, err := st.GetGrant(adt.AsStore(rt), params.Recipient)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to load grant for %v", params.Recipient)
	if !found {
		rt.Abortf(exitcode.ErrNotFound, "no grant for %v", params.Recipient)
	}
	if grant.Status != GrantStatusActive {
		rt.Abortf(exitcode.ErrForbidden, "grant for %v is revoked", params.Recipient)
	}

	newTotal, err := math.Uint64(params.NewTotal)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalArgument, "grant total does not fit the grant record")
	builtin.RequireParam(rt, newTotal >= grant.Total,
		"grant total may only increase, got %d < %d", newTotal, grant.Total)
	builtin.RequireParam(rt, params.NewDuration >= grant.Duration,
		"vesting duration may only increase, got %v < %v", params.NewDuration, grant.Duration)
	builtin.RequireParam(rt, params.NewCliffDuration <= grant.CliffDuration,
		"cliff duration may only decrease, got %v > %v", params.NewCliffDuration, grant.CliffDuration)

	additional := big.NewIntUnsigned(newTotal - grant.Total)
	if additional.GreaterThan(big.Zero()) {
		allowance := requestAllowance(rt, st.Token, st.Admin, rt.Message().Receiver())
		if allowance.LessThan(additional) {
			rt.Abortf(exitcode.ErrInsufficientFunds, "token allowance %v is less than grant increase %v", allowance, additional)
		}
	}

	rt.State().Transaction(&st, func() {
		grant, _, err := st.GetGrant(adt.AsStore(rt), params.Recipient)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to load grant for %v", params.Recipient)

		grant.Total = newTotal
		grant.Duration = params.NewDuration
		grant.CliffDuration = params.NewCliffDuration
		err = st.PutGrant(adt.AsStore(rt), params.Recipient, grant)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to store grant for %v", params.Recipient)
	})

	if additional.GreaterThan(big.Zero()) {
		_, code := rt.Send(st.Token, builtin.MethodsToken.TransferFrom, &token.TransferFromParams{
			From:   st.Admin,
			To:     rt.Message().Receiver(),
			Amount: additional,
		}, big.Zero())
		builtin.RequireSuccess(rt, code, "failed to pull grant increase into custody")
	}

	rt.EmitEvent(&GrantUpdatedEvent{
		Recipient:        params.Recipient,
		NewTotal:         params.NewTotal,
		AdditionalAmount: additional,
		NewDuration:      params.NewDuration,
		NewCliffDuration: params.NewCliffDuration,
	})
	return nil
}

// Revoke terminates further accrual on an active grant. The vested-but-unclaimed
// remainder is frozen in place for the recipient to claim; the unvested portion is
// returned to the admin.
func (a Actor) Revoke(rt runtime.Runtime, recipient *addr.Address) *abi.EmptyValue {
	var st State
	rt.State().Readonly(&st)
	rt.ValidateImmediateCallerIs(st.Admin)

	var vestedUnclaimed, unvested abi.TokenAmount
	rt.State().Transaction(&st, func() {
		grant, found, err := st.GetGrant(adt.AsStore(rt), *recipient)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to load grant for %v", recipient)
		if !found {
			rt.Abortf(exitcode.ErrNotFound, "no grant for %v", recipient)
		}
		if grant.Status != GrantStatusActive {
			rt.Abortf(exitcode.ErrForbidden, "grant for %v is already revoked", recipient)
		}

		vested := grant.VestedAmount(rt.CurrEpoch())
		unvested = big.Sub(big.NewIntUnsigned(grant.Total), vested)
		vestedUnclaimed = big.Sub(vested, big.NewIntUnsigned(grant.Claimed))

		// Re-base the record: the frozen total is exactly the still-unclaimed vested
		// remainder. The original allocation is recoverable only from emitted records.
		newTotal, err := math.Uint64(vestedUnclaimed)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "vested remainder does not fit the grant record")
		grant.Total = newTotal
		grant.Claimed = 0
		grant.Status = GrantStatusRevoked
		err = st.PutGrant(adt.AsStore(rt), *recipient, grant)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to store grant for %v", recipient)
	})

	if unvested.GreaterThan(big.Zero()) {
		_, code := rt.Send(st.Token, builtin.MethodsToken.Transfer, &token.TransferParams{
			To:     st.Admin,
			Amount: unvested,
		}, big.Zero())
		builtin.RequireSuccess(rt, code, "failed to return unvested funds")
	}

	rt.EmitEvent(&GrantRevokedEvent{
		Recipient:        *recipient,
		VestedUnclaimed:  vestedUnclaimed,
		UnvestedReturned: unvested,
	})
	rt.Log(rtt.INFO, "revoked grant for %v, froze %v, returned %v", recipient, vestedUnclaimed, unvested)
	return nil
}

type ClaimReturn struct {
	Gross abi.TokenAmount
	Fee   abi.TokenAmount
	Net   abi.TokenAmount
}

// Claim pays out everything currently available to the caller: the vested amount
// (or the frozen remainder of a revoked grant) minus what was already claimed,
// split into protocol fee and net payout.
func (a Actor) Claim(rt runtime.Runtime, _ *abi.EmptyValue) *ClaimReturn {
	rt.ValidateImmediateCallerType(builtin.CallerTypesSignable...)
	claimant := rt.Message().Caller()

	var st State
	var gross, fee, net abi.TokenAmount
	rt.State().Transaction(&st, func() {
		if st.Paused {
			rt.Abortf(exitcode.ErrForbidden, "claims are paused")
		}
		if st.Locked {
			rt.Abortf(exitcode.ErrForbidden, "reentrant claim rejected")
		}

		grant, found, err := st.GetGrant(adt.AsStore(rt), claimant)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to load grant for %v", claimant)
		if !found {
			rt.Abortf(exitcode.ErrNotFound, "no grant for %v", claimant)
		}

		gross = grant.Claimable(rt.CurrEpoch())
		if gross.LessThanEqual(big.Zero()) {
			rt.Abortf(exitcode.ErrIllegalState, "nothing to claim for %v", claimant)
		}
		fee, net = FeeAndNet(gross, st.FeeBasisPoints)

		// Commit the claimed total and take the claim lock before any transfer goes
		// out. A reentrant claim arriving mid-transfer observes zero remaining
		// availability and a held lock.
		available, err := math.Uint64(gross)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "claimable amount does not fit the grant record")
		newClaimed, err := math.AddUint64(grant.Claimed, available)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "claimed total overflow")
		if newClaimed > grant.Total {
			rt.Abortf(exitcode.ErrIllegalState, "claimed total %d exceeds grant total %d", newClaimed, grant.Total)
		}
		grant.Claimed = newClaimed
		err = st.PutGrant(adt.AsStore(rt), claimant, grant)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to store grant for %v", claimant)

		st.Locked = true
	})

	// A failed transfer aborts the call; the state commit above, the lock, and any
	// earlier transfer are all rolled back together.
	if fee.GreaterThan(big.Zero()) {
		_, code := rt.Send(st.Token, builtin.MethodsToken.Transfer, &token.TransferParams{
			To:     st.FeeRecipient,
			Amount: fee,
		}, big.Zero())
		builtin.RequireSuccess(rt, code, "failed to transfer protocol fee")
	}
	if net.GreaterThan(big.Zero()) {
		_, code := rt.Send(st.Token, builtin.MethodsToken.Transfer, &token.TransferParams{
			To:     claimant,
			Amount: net,
		}, big.Zero())
		builtin.RequireSuccess(rt, code, "failed to transfer payout")
	}

	rt.State().Transaction(&st, func() {
		st.Locked = false
	})

	rt.EmitEvent(&FundsClaimedEvent{
		Recipient: claimant,
		Gross:     gross,
		Fee:       fee,
		Net:       net,
	})
	rt.Log(rtt.DEBUG, "claim by %v: gross %v, fee %v, net %v", claimant, gross, fee, net)
	return &ClaimReturn{Gross: gross, Fee: fee, Net: net}
}

type SetPausedParams struct {
	Paused bool
}

// SetPaused sets the global claim pause flag. Setting the current value again is a
// no-op that still emits a record.
func (a Actor) SetPaused(rt runtime.Runtime, params *SetPausedParams) *abi.EmptyValue {
	var st State
	rt.State().Readonly(&st)
	rt.ValidateImmediateCallerIs(st.Admin)

	rt.State().Transaction(&st, func() {
		st.Paused = params.Paused
	})

	rt.EmitEvent(&PauseToggledEvent{
		Caller: rt.Message().Caller(),
		Paused: params.Paused,
	})
	return nil
}

func requestAllowance(rt runtime.Runtime, tokenAddr, owner, spender addr.Address) abi.TokenAmount {
	ret, code := rt.Send(tokenAddr, builtin.MethodsToken.Allowance, &token.AllowanceParams{
		Owner:   owner,
		Spender: spender,
	}, big.Zero())
	builtin.RequireSuccess(rt, code, "failed to query token allowance")

	var allowance abi.TokenAmount
	err := ret.Into(&allowance)
	builtin.RequireNoErr(rt, err, exitcode.ErrSerialization, "failed to deserialize token allowance")
	return allowance
}
