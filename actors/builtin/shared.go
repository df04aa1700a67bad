package builtin

import (
	"fmt"

	"github.com/filecoin-project/go-state-types/exitcode"

	"github.com/tokenvest/vesting-actors/actors/runtime"
)

///// Code shared by multiple built-in actors. /////

// Default bitwidth for the HAMTs holding actor collections.
const DefaultHamtBitwidth = 5

// Propagates a failed send by aborting the current method with the same exit code.
func RequireSuccess(rt runtime.Runtime, e exitcode.ExitCode, msg string, args ...interface{}) {
	if !e.IsSuccess() {
		rt.Abortf(e, msg, args...)
	}
}

// Aborts with a formatted message if predicate is false.
// The predicate is expected to be a validation of method parameters.
func RequireParam(rt runtime.Runtime, predicate bool, msg string, args ...interface{}) {
	if !predicate {
		rt.Abortf(exitcode.ErrIllegalArgument, msg, args...)
	}
}

// Aborts with the provided exit code and a message drawn from err, if err is non-nil.
func RequireNoErr(rt runtime.Runtime, err error, code exitcode.ExitCode, msg string, args ...interface{}) {
	if err != nil {
		rt.Abortf(code, "%s: %s", fmt.Sprintf(msg, args...), err)
	}
}
