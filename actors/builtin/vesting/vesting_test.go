package vesting_test

import (
	"context"
	"testing"

	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	big "github.com/filecoin-project/go-state-types/big"
	"github.com/filecoin-project/go-state-types/exitcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenvest/vesting-actors/actors/builtin"
	"github.com/tokenvest/vesting-actors/actors/builtin/token"
	"github.com/tokenvest/vesting-actors/actors/builtin/vesting"
	"github.com/tokenvest/vesting-actors/actors/util/adt"
	"github.com/tokenvest/vesting-actors/support/mock"
	tutil "github.com/tokenvest/vesting-actors/support/testing"
)

func TestExports(t *testing.T) {
	mock.CheckActorExports(t, vesting.Actor{})
}

func TestConstruction(t *testing.T) {
	actor := vesting.Actor{}
	receiver := tutil.NewIDAddr(t, 100)
	tokenAddr := tutil.NewIDAddr(t, 80)
	admin := tutil.NewIDAddr(t, 81)
	feeRecipient := tutil.NewIDAddr(t, 82)

	builder := mock.NewBuilder(context.Background(), receiver).
		WithCaller(builtin.InitActorAddr, builtin.InitActorCodeID)

	t.Run("simple construction", func(t *testing.T) {
		rt := builder.Build(t)
		params := vesting.ConstructorParams{
			Token:          tokenAddr,
			Admin:          admin,
			FeeRecipient:   feeRecipient,
			FeeBasisPoints: 250,
		}

		rt.ExpectValidateCallerAddr(builtin.InitActorAddr)
		ret := rt.Call(actor.Constructor, &params)
		assert.Nil(t, ret)
		rt.Verify()

		var st vesting.State
		rt.GetState(&st)
		assert.Equal(t, tokenAddr, st.Token)
		assert.Equal(t, admin, st.Admin)
		assert.Equal(t, feeRecipient, st.FeeRecipient)
		assert.Equal(t, uint64(250), st.FeeBasisPoints)
		assert.False(t, st.Paused)
		assert.False(t, st.Locked)

		_, acc := vesting.CheckStateInvariants(&st, adt.AsStore(rt))
		assert.True(t, acc.IsEmpty(), acc.Messages())
	})

	t.Run("fails with excessive fee", func(t *testing.T) {
		rt := builder.Build(t)
		params := vesting.ConstructorParams{
			Token:          tokenAddr,
			Admin:          admin,
			FeeRecipient:   feeRecipient,
			FeeBasisPoints: 501,
		}

		rt.ExpectValidateCallerAddr(builtin.InitActorAddr)
		rt.ExpectAbort(exitcode.ErrIllegalArgument, func() {
			rt.Call(actor.Constructor, &params)
		})
	})

	t.Run("fails with undefined token address", func(t *testing.T) {
		rt := builder.Build(t)
		params := vesting.ConstructorParams{
			Token:          addr.Undef,
			Admin:          admin,
			FeeRecipient:   feeRecipient,
			FeeBasisPoints: 250,
		}

		rt.ExpectValidateCallerAddr(builtin.InitActorAddr)
		rt.ExpectAbort(exitcode.ErrIllegalArgument, func() {
			rt.Call(actor.Constructor, &params)
		})
	})
}

func TestCreateGrant(t *testing.T) {
	startEpoch := abi.ChainEpoch(1000)
	duration := abi.ChainEpoch(365)
	cliff := abi.ChainEpoch(90)
	total := abi.NewTokenAmount(100_000)

	t.Run("simple create", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		h.createGrant(rt, h.recipient, total, startEpoch, duration, cliff)

		grant := h.getGrant(rt, h.recipient)
		assert.Equal(t, uint64(100_000), grant.Total)
		assert.Equal(t, uint64(0), grant.Claimed)
		assert.Equal(t, startEpoch, grant.StartEpoch)
		assert.Equal(t, duration, grant.Duration)
		assert.Equal(t, cliff, grant.CliffDuration)
		assert.Equal(t, vesting.GrantStatusActive, grant.Status)
		h.checkState(rt)
	})

	t.Run("fails when caller is not admin", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		rt.SetCaller(h.recipient, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAddr(h.admin)
		rt.ExpectAbort(exitcode.SysErrForbidden, func() {
			rt.Call(h.CreateGrant, &vesting.CreateGrantParams{
				Recipient:     h.recipient,
				Total:         total,
				StartEpoch:    startEpoch,
				Duration:      duration,
				CliffDuration: cliff,
			})
		})
		h.checkState(rt)
	})

	t.Run("fails with non-positive total", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		h.expectCreateAbort(rt, exitcode.ErrIllegalArgument, &vesting.CreateGrantParams{
			Recipient:     h.recipient,
			Total:         big.Zero(),
			StartEpoch:    startEpoch,
			Duration:      duration,
			CliffDuration: cliff,
		})
	})

	t.Run("fails with non-positive duration", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		h.expectCreateAbort(rt, exitcode.ErrIllegalArgument, &vesting.CreateGrantParams{
			Recipient:     h.recipient,
			Total:         total,
			StartEpoch:    startEpoch,
			Duration:      0,
			CliffDuration: 0,
		})
	})

	t.Run("fails with cliff exceeding duration", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		h.expectCreateAbort(rt, exitcode.ErrIllegalArgument, &vesting.CreateGrantParams{
			Recipient:     h.recipient,
			Total:         total,
			StartEpoch:    startEpoch,
			Duration:      duration,
			CliffDuration: duration + 1,
		})
	})

	t.Run("fails with start epoch in the past", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		rt.SetEpoch(startEpoch + 1)
		h.expectCreateAbort(rt, exitcode.ErrIllegalArgument, &vesting.CreateGrantParams{
			Recipient:     h.recipient,
			Total:         total,
			StartEpoch:    startEpoch,
			Duration:      duration,
			CliffDuration: cliff,
		})
	})

	t.Run("fails with insufficient allowance", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAddr(h.admin)
		h.expectAllowanceQuery(rt, big.Sub(total, big.NewInt(1)))
		rt.ExpectAbort(exitcode.ErrInsufficientFunds, func() {
			rt.Call(h.CreateGrant, &vesting.CreateGrantParams{
				Recipient:     h.recipient,
				Total:         total,
				StartEpoch:    startEpoch,
				Duration:      duration,
				CliffDuration: cliff,
			})
		})
		h.checkState(rt)
	})

	t.Run("fails for duplicate recipient", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		h.createGrant(rt, h.recipient, total, startEpoch, duration, cliff)

		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAddr(h.admin)
		h.expectAllowanceQuery(rt, total)
		rt.ExpectAbort(exitcode.ErrIllegalArgument, func() {
			rt.Call(h.CreateGrant, &vesting.CreateGrantParams{
				Recipient:     h.recipient,
				Total:         total,
				StartEpoch:    startEpoch,
				Duration:      duration,
				CliffDuration: cliff,
			})
		})
		h.checkState(rt)
	})

	t.Run("failed funding transfer rolls back the grant", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAddr(h.admin)
		h.expectAllowanceQuery(rt, total)
		rt.ExpectSend(h.token, builtin.MethodsToken.TransferFrom, &token.TransferFromParams{
			From:   h.admin,
			To:     h.receiver,
			Amount: total,
		}, big.Zero(), nil, exitcode.ErrInsufficientFunds)
		rt.ExpectAbort(exitcode.ErrInsufficientFunds, func() {
			rt.Call(h.CreateGrant, &vesting.CreateGrantParams{
				Recipient:     h.recipient,
				Total:         total,
				StartEpoch:    startEpoch,
				Duration:      duration,
				CliffDuration: cliff,
			})
		})
		rt.Verify()

		var st vesting.State
		rt.GetState(&st)
		_, found, err := st.GetGrant(adt.AsStore(rt), h.recipient)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestClaim(t *testing.T) {
	startEpoch := abi.ChainEpoch(1000)
	duration := abi.ChainEpoch(365)
	cliff := abi.ChainEpoch(90)
	total := abi.NewTokenAmount(100_000)

	setupWithGrant := func(t *testing.T, feeBps uint64) (*actorHarness, *mock.Runtime) {
		h, rt := setupHarness(t, feeBps)
		h.createGrant(rt, h.recipient, total, startEpoch, duration, cliff)
		return h, rt
	}

	t.Run("claim mid schedule pays fee and net", func(t *testing.T) {
		h, rt := setupWithGrant(t, 250)
		rt.SetEpoch(startEpoch + 180)

		// floor(100000 * 180 / 365) = 49315; fee floor(49315 * 250 / 10000) = 1232.
		ret := h.claim(rt, h.recipient, big.NewInt(49_315), big.NewInt(1_232), big.NewInt(48_083))
		assert.Equal(t, big.NewInt(49_315), ret.Gross)
		assert.Equal(t, big.NewInt(1_232), ret.Fee)
		assert.Equal(t, big.NewInt(48_083), ret.Net)

		grant := h.getGrant(rt, h.recipient)
		assert.Equal(t, uint64(49_315), grant.Claimed)
		h.checkState(rt)
	})

	t.Run("claim after full vesting pays out the remainder", func(t *testing.T) {
		h, rt := setupWithGrant(t, 250)
		rt.SetEpoch(startEpoch + 180)
		h.claim(rt, h.recipient, big.NewInt(49_315), big.NewInt(1_232), big.NewInt(48_083))

		rt.SetEpoch(startEpoch + duration + 100)
		h.claim(rt, h.recipient, big.NewInt(50_685), big.NewInt(1_267), big.NewInt(49_418))

		grant := h.getGrant(rt, h.recipient)
		assert.Equal(t, uint64(100_000), grant.Claimed)
		h.checkState(rt)
	})

	t.Run("no fee transfer when fee rate is zero", func(t *testing.T) {
		h, rt := setupWithGrant(t, 0)
		rt.SetEpoch(startEpoch + 180)
		h.claim(rt, h.recipient, big.NewInt(49_315), big.Zero(), big.NewInt(49_315))
		h.checkState(rt)
	})

	t.Run("fails before the cliff", func(t *testing.T) {
		h, rt := setupWithGrant(t, 250)
		rt.SetEpoch(startEpoch + cliff - 1)
		h.expectClaimAbort(rt, h.recipient, exitcode.ErrIllegalState)
	})

	t.Run("fails when nothing new has vested", func(t *testing.T) {
		h, rt := setupWithGrant(t, 250)
		rt.SetEpoch(startEpoch + 180)
		h.claim(rt, h.recipient, big.NewInt(49_315), big.NewInt(1_232), big.NewInt(48_083))
		h.expectClaimAbort(rt, h.recipient, exitcode.ErrIllegalState)
	})

	t.Run("fails with no grant", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		h.expectClaimAbort(rt, h.recipient, exitcode.ErrNotFound)
	})

	t.Run("fails while paused", func(t *testing.T) {
		h, rt := setupWithGrant(t, 250)
		h.setPaused(rt, true)
		rt.SetEpoch(startEpoch + 180)
		h.expectClaimAbort(rt, h.recipient, exitcode.ErrForbidden)

		// Unpause and the same claim succeeds.
		h.setPaused(rt, false)
		h.claim(rt, h.recipient, big.NewInt(49_315), big.NewInt(1_232), big.NewInt(48_083))
		h.checkState(rt)
	})

	t.Run("fails while claim lock is held", func(t *testing.T) {
		h, rt := setupWithGrant(t, 250)
		rt.SetEpoch(startEpoch + 180)

		var st vesting.State
		rt.GetState(&st)
		st.Locked = true
		rt.ReplaceState(&st)

		h.expectClaimAbort(rt, h.recipient, exitcode.ErrForbidden)
	})

	t.Run("failed payout transfer rolls back claim state", func(t *testing.T) {
		h, rt := setupWithGrant(t, 250)
		rt.SetEpoch(startEpoch + 180)

		rt.SetCaller(h.recipient, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerType(builtin.CallerTypesSignable...)
		rt.ExpectSend(h.token, builtin.MethodsToken.Transfer, &token.TransferParams{
			To:     h.feeRecipient,
			Amount: big.NewInt(1_232),
		}, big.Zero(), nil, exitcode.Ok)
		rt.ExpectSend(h.token, builtin.MethodsToken.Transfer, &token.TransferParams{
			To:     h.recipient,
			Amount: big.NewInt(48_083),
		}, big.Zero(), nil, exitcode.ErrInsufficientFunds)
		rt.ExpectAbort(exitcode.ErrInsufficientFunds, func() {
			rt.Call(h.Claim, nil)
		})
		rt.Verify()

		// The claimed amount and the lock are both rolled back.
		grant := h.getGrant(rt, h.recipient)
		assert.Equal(t, uint64(0), grant.Claimed)
		h.checkState(rt)
	})
}

func TestUpdateGrant(t *testing.T) {
	startEpoch := abi.ChainEpoch(1000)
	duration := abi.ChainEpoch(365)
	cliff := abi.ChainEpoch(90)
	total := abi.NewTokenAmount(100_000)

	setupWithGrant := func(t *testing.T) (*actorHarness, *mock.Runtime) {
		h, rt := setupHarness(t, 250)
		h.createGrant(rt, h.recipient, total, startEpoch, duration, cliff)
		return h, rt
	}

	t.Run("increase total pulls the difference into custody", func(t *testing.T) {
		h, rt := setupWithGrant(t)
		newTotal := abi.NewTokenAmount(150_000)
		h.updateGrant(rt, h.recipient, newTotal, duration, cliff, big.NewInt(50_000))

		grant := h.getGrant(rt, h.recipient)
		assert.Equal(t, uint64(150_000), grant.Total)
		h.checkState(rt)
	})

	t.Run("extend duration and shorten cliff without new funds", func(t *testing.T) {
		h, rt := setupWithGrant(t)
		h.updateGrant(rt, h.recipient, total, duration+100, cliff-30, big.Zero())

		grant := h.getGrant(rt, h.recipient)
		assert.Equal(t, duration+100, grant.Duration)
		assert.Equal(t, cliff-30, grant.CliffDuration)
		h.checkState(rt)
	})

	t.Run("fails to decrease total", func(t *testing.T) {
		h, rt := setupWithGrant(t)
		h.expectUpdateAbort(rt, exitcode.ErrIllegalArgument, &vesting.UpdateGrantParams{
			Recipient:        h.recipient,
			NewTotal:         big.Sub(total, big.NewInt(1)),
			NewDuration:      duration,
			NewCliffDuration: cliff,
		})
	})

	t.Run("fails to shorten duration", func(t *testing.T) {
		h, rt := setupWithGrant(t)
		h.expectUpdateAbort(rt, exitcode.ErrIllegalArgument, &vesting.UpdateGrantParams{
			Recipient:        h.recipient,
			NewTotal:         total,
			NewDuration:      duration - 1,
			NewCliffDuration: cliff,
		})
	})

	t.Run("fails to lengthen cliff", func(t *testing.T) {
		h, rt := setupWithGrant(t)
		h.expectUpdateAbort(rt, exitcode.ErrIllegalArgument, &vesting.UpdateGrantParams{
			Recipient:        h.recipient,
			NewTotal:         total,
			NewDuration:      duration,
			NewCliffDuration: cliff + 1,
		})
	})

	t.Run("fails with no grant", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		h.expectUpdateAbort(rt, exitcode.ErrNotFound, &vesting.UpdateGrantParams{
			Recipient:        h.recipient,
			NewTotal:         total,
			NewDuration:      duration,
			NewCliffDuration: cliff,
		})
	})

	t.Run("fails on a revoked grant", func(t *testing.T) {
		h, rt := setupWithGrant(t)
		h.revoke(rt, h.recipient, big.Zero(), total)
		h.expectUpdateAbort(rt, exitcode.ErrForbidden, &vesting.UpdateGrantParams{
			Recipient:        h.recipient,
			NewTotal:         total,
			NewDuration:      duration,
			NewCliffDuration: cliff,
		})
	})
}

func TestRevoke(t *testing.T) {
	startEpoch := abi.ChainEpoch(1000)
	duration := abi.ChainEpoch(365)
	cliff := abi.ChainEpoch(90)
	total := abi.NewTokenAmount(100_000)

	setupWithGrant := func(t *testing.T) (*actorHarness, *mock.Runtime) {
		h, rt := setupHarness(t, 250)
		h.createGrant(rt, h.recipient, total, startEpoch, duration, cliff)
		return h, rt
	}

	t.Run("revoke before the cliff returns everything", func(t *testing.T) {
		h, rt := setupWithGrant(t)
		rt.SetEpoch(startEpoch + cliff - 1)
		h.revoke(rt, h.recipient, big.Zero(), total)

		grant := h.getGrant(rt, h.recipient)
		assert.Equal(t, uint64(0), grant.Total)
		assert.Equal(t, vesting.GrantStatusRevoked, grant.Status)
		h.checkState(rt)
	})

	t.Run("revoke mid schedule freezes the vested remainder", func(t *testing.T) {
		h, rt := setupWithGrant(t)

		// Claim at the cliff, then revoke later.
		rt.SetEpoch(startEpoch + cliff)
		h.claim(rt, h.recipient, big.NewInt(24_657), big.NewInt(616), big.NewInt(24_041))

		rt.SetEpoch(startEpoch + 180)
		// vested = 49315, claimed = 24657, unvested = 50685.
		h.revoke(rt, h.recipient, big.NewInt(24_658), big.NewInt(50_685))

		grant := h.getGrant(rt, h.recipient)
		assert.Equal(t, uint64(24_658), grant.Total)
		assert.Equal(t, uint64(0), grant.Claimed)
		assert.Equal(t, vesting.GrantStatusRevoked, grant.Status)
		h.checkState(rt)

		// The frozen remainder stays claimable, and no more ever accrues.
		rt.SetEpoch(startEpoch + duration + 100)
		h.claim(rt, h.recipient, big.NewInt(24_658), big.NewInt(616), big.NewInt(24_042))
		h.expectClaimAbort(rt, h.recipient, exitcode.ErrIllegalState)
	})

	t.Run("revoke after full vesting returns nothing", func(t *testing.T) {
		h, rt := setupWithGrant(t)
		rt.SetEpoch(startEpoch + duration)
		h.revoke(rt, h.recipient, total, big.Zero())

		grant := h.getGrant(rt, h.recipient)
		assert.Equal(t, uint64(100_000), grant.Total)
		assert.Equal(t, vesting.GrantStatusRevoked, grant.Status)
		h.checkState(rt)
	})

	t.Run("fails with no grant", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAddr(h.admin)
		rt.ExpectAbort(exitcode.ErrNotFound, func() {
			rt.Call(h.Revoke, &h.recipient)
		})
	})

	t.Run("fails when already revoked", func(t *testing.T) {
		h, rt := setupWithGrant(t)
		h.revoke(rt, h.recipient, big.Zero(), total)

		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAddr(h.admin)
		rt.ExpectAbort(exitcode.ErrForbidden, func() {
			rt.Call(h.Revoke, &h.recipient)
		})
		h.checkState(rt)
	})

	t.Run("fails when caller is not admin", func(t *testing.T) {
		h, rt := setupWithGrant(t)
		rt.SetCaller(h.recipient, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAddr(h.admin)
		rt.ExpectAbort(exitcode.SysErrForbidden, func() {
			rt.Call(h.Revoke, &h.recipient)
		})
	})
}

func TestSetPaused(t *testing.T) {
	t.Run("toggles the flag", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		h.setPaused(rt, true)

		var st vesting.State
		rt.GetState(&st)
		assert.True(t, st.Paused)

		h.setPaused(rt, false)
		rt.GetState(&st)
		assert.False(t, st.Paused)
		h.checkState(rt)
	})

	t.Run("setting the current value is a no-op", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		h.setPaused(rt, false)

		var st vesting.State
		rt.GetState(&st)
		assert.False(t, st.Paused)
	})

	t.Run("fails when caller is not admin", func(t *testing.T) {
		h, rt := setupHarness(t, 250)
		rt.SetCaller(h.recipient, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAddr(h.admin)
		rt.ExpectAbort(exitcode.SysErrForbidden, func() {
			rt.Call(h.SetPaused, &vesting.SetPausedParams{Paused: true})
		})
	})
}

//
// Test harness
//

type actorHarness struct {
	vesting.Actor
	t *testing.T

	receiver     addr.Address
	token        addr.Address
	admin        addr.Address
	feeRecipient addr.Address
	recipient    addr.Address
	feeBps       uint64
}

func setupHarness(t *testing.T, feeBps uint64) (*actorHarness, *mock.Runtime) {
	h := &actorHarness{
		t:            t,
		receiver:     tutil.NewIDAddr(t, 100),
		token:        tutil.NewIDAddr(t, 80),
		admin:        tutil.NewIDAddr(t, 81),
		feeRecipient: tutil.NewIDAddr(t, 82),
		recipient:    tutil.NewIDAddr(t, 101),
		feeBps:       feeBps,
	}

	rt := mock.NewBuilder(context.Background(), h.receiver).
		WithCaller(builtin.InitActorAddr, builtin.InitActorCodeID).
		Build(t)
	h.constructAndVerify(rt)
	return h, rt
}

func (h *actorHarness) constructAndVerify(rt *mock.Runtime) {
	rt.ExpectValidateCallerAddr(builtin.InitActorAddr)
	ret := rt.Call(h.Constructor, &vesting.ConstructorParams{
		Token:          h.token,
		Admin:          h.admin,
		FeeRecipient:   h.feeRecipient,
		FeeBasisPoints: h.feeBps,
	})
	assert.Nil(h.t, ret)
	rt.Verify()
}

func (h *actorHarness) expectAllowanceQuery(rt *mock.Runtime, allowance abi.TokenAmount) {
	rt.ExpectSend(h.token, builtin.MethodsToken.Allowance, &token.AllowanceParams{
		Owner:   h.admin,
		Spender: h.receiver,
	}, big.Zero(), &allowance, exitcode.Ok)
}

func (h *actorHarness) createGrant(rt *mock.Runtime, recipient addr.Address, total abi.TokenAmount,
	start, duration, cliff abi.ChainEpoch) {
	rt.SetCaller(h.admin, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerAddr(h.admin)
	h.expectAllowanceQuery(rt, total)
	rt.ExpectSend(h.token, builtin.MethodsToken.TransferFrom, &token.TransferFromParams{
		From:   h.admin,
		To:     h.receiver,
		Amount: total,
	}, big.Zero(), nil, exitcode.Ok)
	rt.ExpectEmittedEvent(&vesting.GrantCreatedEvent{
		Recipient:     recipient,
		Total:         total,
		StartEpoch:    start,
		Duration:      duration,
		CliffDuration: cliff,
	})
	rt.Call(h.CreateGrant, &vesting.CreateGrantParams{
		Recipient:     recipient,
		Total:         total,
		StartEpoch:    start,
		Duration:      duration,
		CliffDuration: cliff,
	})
	rt.Verify()
}

func (h *actorHarness) expectCreateAbort(rt *mock.Runtime, code exitcode.ExitCode, params *vesting.CreateGrantParams) {
	rt.SetCaller(h.admin, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerAddr(h.admin)
	rt.ExpectAbort(code, func() {
		rt.Call(h.CreateGrant, params)
	})
	rt.Verify()
}

func (h *actorHarness) updateGrant(rt *mock.Runtime, recipient addr.Address, newTotal abi.TokenAmount,
	newDuration, newCliff abi.ChainEpoch, additional abi.TokenAmount) {
	rt.SetCaller(h.admin, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerAddr(h.admin)
	if additional.GreaterThan(big.Zero()) {
		h.expectAllowanceQuery(rt, additional)
		rt.ExpectSend(h.token, builtin.MethodsToken.TransferFrom, &token.TransferFromParams{
			From:   h.admin,
			To:     h.receiver,
			Amount: additional,
		}, big.Zero(), nil, exitcode.Ok)
	}
	rt.ExpectEmittedEvent(&vesting.GrantUpdatedEvent{
		Recipient:        recipient,
		NewTotal:         newTotal,
		AdditionalAmount: additional,
		NewDuration:      newDuration,
		NewCliffDuration: newCliff,
	})
	rt.Call(h.UpdateGrant, &vesting.UpdateGrantParams{
		Recipient:        recipient,
		NewTotal:         newTotal,
		NewDuration:      newDuration,
		NewCliffDuration: newCliff,
	})
	rt.Verify()
}

func (h *actorHarness) expectUpdateAbort(rt *mock.Runtime, code exitcode.ExitCode, params *vesting.UpdateGrantParams) {
	rt.SetCaller(h.admin, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerAddr(h.admin)
	rt.ExpectAbort(code, func() {
		rt.Call(h.UpdateGrant, params)
	})
	rt.Verify()
}

func (h *actorHarness) claim(rt *mock.Runtime, claimant addr.Address, gross, fee, net abi.TokenAmount) *vesting.ClaimReturn {
	rt.SetCaller(claimant, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerType(builtin.CallerTypesSignable...)
	if fee.GreaterThan(big.Zero()) {
		rt.ExpectSend(h.token, builtin.MethodsToken.Transfer, &token.TransferParams{
			To:     h.feeRecipient,
			Amount: fee,
		}, big.Zero(), nil, exitcode.Ok)
	}
	if net.GreaterThan(big.Zero()) {
		rt.ExpectSend(h.token, builtin.MethodsToken.Transfer, &token.TransferParams{
			To:     claimant,
			Amount: net,
		}, big.Zero(), nil, exitcode.Ok)
	}
	rt.ExpectEmittedEvent(&vesting.FundsClaimedEvent{
		Recipient: claimant,
		Gross:     gross,
		Fee:       fee,
		Net:       net,
	})
	ret := rt.Call(h.Claim, nil).(*vesting.ClaimReturn)
	rt.Verify()
	require.NotNil(h.t, ret)
	return ret
}

func (h *actorHarness) expectClaimAbort(rt *mock.Runtime, claimant addr.Address, code exitcode.ExitCode) {
	rt.SetCaller(claimant, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerType(builtin.CallerTypesSignable...)
	rt.ExpectAbort(code, func() {
		rt.Call(h.Claim, nil)
	})
	rt.Verify()
}

func (h *actorHarness) revoke(rt *mock.Runtime, recipient addr.Address, vestedUnclaimed, unvested abi.TokenAmount) {
	rt.SetCaller(h.admin, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerAddr(h.admin)
	if unvested.GreaterThan(big.Zero()) {
		rt.ExpectSend(h.token, builtin.MethodsToken.Transfer, &token.TransferParams{
			To:     h.admin,
			Amount: unvested,
		}, big.Zero(), nil, exitcode.Ok)
	}
	rt.ExpectEmittedEvent(&vesting.GrantRevokedEvent{
		Recipient:        recipient,
		VestedUnclaimed:  vestedUnclaimed,
		UnvestedReturned: unvested,
	})
	rt.Call(h.Revoke, &recipient)
	rt.Verify()
}

func (h *actorHarness) setPaused(rt *mock.Runtime, paused bool) {
	rt.SetCaller(h.admin, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerAddr(h.admin)
	rt.ExpectEmittedEvent(&vesting.PauseToggledEvent{
		Caller: h.admin,
		Paused: paused,
	})
	rt.Call(h.SetPaused, &vesting.SetPausedParams{Paused: paused})
	rt.Verify()
}

func (h *actorHarness) getGrant(rt *mock.Runtime, recipient addr.Address) *vesting.Grant {
	var st vesting.State
	rt.GetState(&st)
	grant, found, err := st.GetGrant(adt.AsStore(rt), recipient)
	require.NoError(h.t, err)
	require.True(h.t, found)
	return grant
}

func (h *actorHarness) checkState(rt *mock.Runtime) {
	var st vesting.State
	rt.GetState(&st)
	_, acc := vesting.CheckStateInvariants(&st, adt.AsStore(rt))
	assert.True(h.t, acc.IsEmpty(), acc.Messages())
}
