package builtin

import (
	"github.com/filecoin-project/go-state-types/abi"
)

const (
	MethodSend        = abi.MethodNum(0)
	MethodConstructor = abi.MethodNum(1)
)

type vestingMethods struct {
	Constructor abi.MethodNum
	CreateGrant abi.MethodNum
	UpdateGrant abi.MethodNum
	Revoke      abi.MethodNum
	Claim       abi.MethodNum
	SetPaused   abi.MethodNum
}

var MethodsVesting = vestingMethods{MethodConstructor, 2, 3, 4, 5, 6}

// Method numbers of the fungible-token ledger actor. The ledger is external to this
// repo; these numbers define the wire interface the vesting actor calls against.
type tokenMethods struct {
	Constructor  abi.MethodNum
	Transfer     abi.MethodNum
	TransferFrom abi.MethodNum
	Approve      abi.MethodNum
	Allowance    abi.MethodNum
	BalanceOf    abi.MethodNum
}

var MethodsToken = tokenMethods{MethodConstructor, 2, 3, 4, 5, 6}
