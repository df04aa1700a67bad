package main

import (
	gen "github.com/whyrusleeping/cbor-gen"

	token "github.com/tokenvest/vesting-actors/actors/builtin/token"
	vesting "github.com/tokenvest/vesting-actors/actors/builtin/vesting"
)

func main() {
	if err := gen.WriteTupleEncodersToFile("./actors/builtin/vesting/cbor_gen.go", "vesting",
		// actor state
		vesting.State{},
		vesting.Grant{},
		// method params and returns
		vesting.ConstructorParams{},
		vesting.CreateGrantParams{},
		vesting.UpdateGrantParams{},
		vesting.SetPausedParams{},
		vesting.ClaimReturn{},
		// event records
		vesting.GrantCreatedEvent{},
		vesting.GrantUpdatedEvent{},
		vesting.FundsClaimedEvent{},
		vesting.GrantRevokedEvent{},
		vesting.PauseToggledEvent{},
	); err != nil {
		panic(err)
	}

	if err := gen.WriteTupleEncodersToFile("./actors/builtin/token/cbor_gen.go", "token",
		// method params
		token.TransferParams{},
		token.TransferFromParams{},
		token.ApproveParams{},
		token.AllowanceParams{},
	); err != nil {
		panic(err)
	}
}
