package runtime

import (
	"context"

	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/cbor"
	"github.com/filecoin-project/go-state-types/exitcode"
	rtt "github.com/filecoin-project/go-state-types/rt"
	cid "github.com/ipfs/go-cid"
)

// Runtime is the VM's internal runtime object.
// This is everything that is accessible to actor code, beyond parameters.
// Calls are processed one at a time to completion; an abort rolls back every
// state change made by the enclosing call.
type Runtime interface {
	// Information related to the current message being executed.
	Message() Message

	// The current chain epoch number, which acts as a proxy for time within the VM.
	CurrEpoch() abi.ChainEpoch

	// Validates the caller against some predicate.
	// Exported actor methods must invoke at least one caller validation before returning.
	ValidateImmediateCallerAcceptAny()
	ValidateImmediateCallerIs(addrs ...addr.Address)
	ValidateImmediateCallerType(types ...cid.Cid)

	// The balance of the receiver.
	CurrentBalance() abi.TokenAmount

	// Provides a handle for the actor's state object.
	State() StateHandle

	// Retrieves and deserializes an object from the store into `o`. Returns whether successful.
	StoreGet(c cid.Cid, o cbor.Unmarshaler) bool

	// Serializes and stores an object, returning its CID.
	StorePut(x cbor.Marshaler) cid.Cid

	// Sends a message to another actor, returning the exit code and return value envelope.
	// If the invoked method does not return successfully, its state changes (and those of
	// any messages it sent in turn) will be rolled back.
	Send(toAddr addr.Address, methodNum abi.MethodNum, params cbor.Marshaler, value abi.TokenAmount) (SendReturn, exitcode.ExitCode)

	// Halts execution upon an error from which the receiver cannot recover.
	// The caller will receive the exitcode and an empty return value.
	// State changes made within this call will be rolled back.
	// This method does not return.
	Abortf(errExitCode exitcode.ExitCode, msg string, args ...interface{})

	// Appends a record to the call's event log for external observers and indexers.
	// Events are discarded if the enclosing call aborts.
	EmitEvent(evt cbor.Marshaler)

	// Provides a Go context for use by HAMT, etc.
	// The VM is intended to provide an idealised machine abstraction, with infinite
	// storage etc., so this context should not be used by actor code directly.
	Context() context.Context

	// Diagnostic logging; not part of consensus state.
	Log(level rtt.LogLevel, msg string, args ...interface{})
}

// Message contains information available to the actor about the executing message.
type Message interface {
	// The address of the immediate calling actor. Always an ID-address.
	Caller() addr.Address

	// The address of the actor receiving the message. Always an ID-address.
	Receiver() addr.Address

	// The value attached to the message being processed, implicitly added to
	// CurrentBalance() before method invocation.
	ValueReceived() abi.TokenAmount
}

// StateHandle provides mutable, exclusive access to actor state.
type StateHandle interface {
	// Create initializes the state object.
	// This is only valid in a constructor function and when the state has not yet
	// been initialized.
	Create(obj cbor.Marshaler)

	// Readonly loads a readonly copy of the state into the argument.
	// Any modification to the state is illegal and will result in an abort.
	Readonly(obj cbor.Unmarshaler)

	// Transaction loads a mutable version of the state into the `obj` argument and
	// protects the execution from side effects (including message send).
	// If the state is modified after this function returns, execution will abort.
	Transaction(obj cbor.Er, f func())
}

// SendReturn is the return value from a message send from one actor to another.
// This abstracts over the internal representation of the return, in particular
// whether it has been serialized to bytes or just passed through.
type SendReturn interface {
	Into(cbor.Unmarshaler) error
}

// VMActor is a concrete implementation of an actor, to be invoked by the VM.
type VMActor interface {
	// Exports returns a method dispatch table: method number to method implementation.
	Exports() []interface{}

	// Code returns the code ID for this actor.
	Code() cid.Cid

	// State returns a new State object for this actor.
	State() cbor.Er

	// IsSingleton returns true if this actor may have only one instance.
	IsSingleton() bool
}
