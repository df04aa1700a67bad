package ipld

import (
	"context"

	ipldcbor "github.com/ipfs/go-ipld-cbor"

	"github.com/tokenvest/vesting-actors/actors/util/adt"
)

// Creates an ADT store backed by an in-memory IPLD store, for testing.
func NewADTStore(ctx context.Context) adt.Store {
	return adt.WrapStore(ctx, ipldcbor.NewMemCborStore())
}
