package vesting

import (
	"github.com/filecoin-project/go-state-types/abi"
	big "github.com/filecoin-project/go-state-types/big"
)

// The protocol fee rate is expressed in basis points of the gross payout.
const BasisPointsDenominator = 10000

// MaxFeeBasisPoints caps the protocol fee at 5%.
// Construction with a higher rate fails.
const MaxFeeBasisPoints = 500

// FeeAndNet splits a gross payout into the protocol fee and the net amount owed to
// the recipient. The fee is floored, so fee + net == gross exactly and rounding
// always favours the recipient over the fee recipient.
func FeeAndNet(gross abi.TokenAmount, feeBasisPoints uint64) (fee abi.TokenAmount, net abi.TokenAmount) {
	fee = big.Div(big.Mul(gross, big.NewIntUnsigned(feeBasisPoints)), big.NewInt(BasisPointsDenominator))
	net = big.Sub(gross, fee)
	return fee, net
}
