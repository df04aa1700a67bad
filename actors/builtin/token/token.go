// Package token defines the wire interface of the fungible-token ledger actor that
// holds and moves vested funds. The ledger itself lives outside this repo; the
// vesting actor depends only on these message shapes and on the all-or-nothing
// semantics of its transfer methods (a failed transfer returns a non-Ok exit code
// and moves nothing).
package token

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
)

type TransferParams struct {
	To     addr.Address
	Amount abi.TokenAmount
}

type TransferFromParams struct {
	From   addr.Address
	To     addr.Address
	Amount abi.TokenAmount
}

type ApproveParams struct {
	Spender addr.Address
	Amount  abi.TokenAmount
}

// AllowanceParams queries the amount `Spender` may pull from `Owner`'s balance.
// The return value is a bare token amount.
type AllowanceParams struct {
	Owner   addr.Address
	Spender addr.Address
}
