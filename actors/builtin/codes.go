package builtin

import (
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// The built-in actor code IDs
var SystemActorCodeID cid.Cid
var InitActorCodeID cid.Cid
var AccountActorCodeID cid.Cid
var MultisigActorCodeID cid.Cid
var TokenActorCodeID cid.Cid
var VestingActorCodeID cid.Cid
var CallerTypesSignable []cid.Cid

func init() {
	builder := cid.V1Builder{Codec: cid.Raw, MhType: mh.IDENTITY}
	makeBuiltin := func(s string) cid.Cid {
		c, err := builder.Sum([]byte(s))
		if err != nil {
			panic(err)
		}
		return c
	}

	SystemActorCodeID = makeBuiltin("vest/1/system")
	InitActorCodeID = makeBuiltin("vest/1/init")
	AccountActorCodeID = makeBuiltin("vest/1/account")
	MultisigActorCodeID = makeBuiltin("vest/1/multisig")
	TokenActorCodeID = makeBuiltin("vest/1/token")
	VestingActorCodeID = makeBuiltin("vest/1/vesting")

	// Set of actor code types that can represent external signing parties.
	CallerTypesSignable = []cid.Cid{AccountActorCodeID, MultisigActorCodeID}
}
