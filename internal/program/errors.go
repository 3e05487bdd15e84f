package program

import (
	"errors"
	"fmt"

	"github.com/rzbill/blocklog/internal/accounts"
	"github.com/rzbill/blocklog/internal/eventlog"
	"github.com/rzbill/blocklog/internal/instruction"
	"github.com/rzbill/blocklog/internal/locator"
)

// Kind groups errors by how a client should react.
type Kind int

const (
	// KindPrecondition means the request does not fit the current state.
	KindPrecondition Kind = iota + 1
	// KindCapacity means a fixed bound would be exceeded.
	KindCapacity
	// KindExhaustion means no storage address could be produced.
	KindExhaustion
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindCapacity:
		return "capacity"
	case KindExhaustion:
		return "exhaustion"
	default:
		return "unknown"
	}
}

// Code is the stable numeric error code.
type Code uint32

const (
	CodeSlotAlreadyExists Code = 6000 + iota
	CodeSlotMissing
	CodeKeyMismatch
	CodeLogFull
	CodePayloadTooLarge
	CodeAddressSpaceExhausted
	CodeDerivationMismatch
	CodeAccountOwnedByWrongProgram
	CodeAccountDidNotDeserialize
	CodeMissingSigner
	CodePolicyDenied
	CodeInvalidInstruction
)

var codeInfo = map[Code]struct {
	name string
	kind Kind
	msg  string
}{
	CodeSlotAlreadyExists:          {"SlotAlreadyExists", KindPrecondition, "an event log already exists for this key"},
	CodeSlotMissing:                {"SlotMissing", KindPrecondition, "no event log exists for this key"},
	CodeKeyMismatch:                {"KeyMismatch", KindPrecondition, "stored key does not match the requested key"},
	CodeLogFull:                    {"LogFull", KindCapacity, "event log is full"},
	CodePayloadTooLarge:            {"PayloadTooLarge", KindCapacity, "event payload exceeds the size limit"},
	CodeAddressSpaceExhausted:      {"AddressSpaceExhausted", KindExhaustion, "no valid address could be derived for this key"},
	CodeDerivationMismatch:         {"DerivationMismatch", KindPrecondition, "stored tag does not derive the slot address"},
	CodeAccountOwnedByWrongProgram: {"AccountOwnedByWrongProgram", KindPrecondition, "slot is owned by a different program"},
	CodeAccountDidNotDeserialize:   {"AccountDidNotDeserialize", KindPrecondition, "slot does not hold an event log"},
	CodeMissingSigner:              {"MissingSigner", KindPrecondition, "request has no caller"},
	CodePolicyDenied:               {"PolicyDenied", KindPrecondition, "caller is not allowed to perform this instruction"},
	CodeInvalidInstruction:         {"InvalidInstruction", KindPrecondition, "instruction could not be decoded"},
}

// Name returns the symbolic name of the code.
func (c Code) Name() string {
	if info, ok := codeInfo[c]; ok {
		return info.name
	}
	return fmt.Sprintf("Code(%d)", uint32(c))
}

// Kind returns the error kind of the code.
func (c Code) Kind() Kind { return codeInfo[c].kind }

// Error is a program rejection. Errors compare equal under errors.Is when
// their codes match, so the exported sentinels can be used as targets.
type Error struct {
	Code Code
	// Detail optionally adds request specifics to the message.
	Detail string
	cause  error
}

// Sentinel targets for errors.Is.
var (
	ErrSlotAlreadyExists          = &Error{Code: CodeSlotAlreadyExists}
	ErrSlotMissing                = &Error{Code: CodeSlotMissing}
	ErrKeyMismatch                = &Error{Code: CodeKeyMismatch}
	ErrLogFull                    = &Error{Code: CodeLogFull}
	ErrPayloadTooLarge            = &Error{Code: CodePayloadTooLarge}
	ErrAddressSpaceExhausted      = &Error{Code: CodeAddressSpaceExhausted}
	ErrDerivationMismatch         = &Error{Code: CodeDerivationMismatch}
	ErrAccountOwnedByWrongProgram = &Error{Code: CodeAccountOwnedByWrongProgram}
	ErrAccountDidNotDeserialize   = &Error{Code: CodeAccountDidNotDeserialize}
	ErrMissingSigner              = &Error{Code: CodeMissingSigner}
	ErrPolicyDenied               = &Error{Code: CodePolicyDenied}
	ErrInvalidInstruction         = &Error{Code: CodeInvalidInstruction}
)

func newError(code Code, cause error) *Error {
	e := &Error{Code: code, cause: cause}
	if cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s (%d): %s", e.Code.Name(), uint32(e.Code), codeInfo[e.Code].msg)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Kind returns the error kind.
func (e *Error) Kind() Kind { return e.Code.Kind() }

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// AsError extracts the program error from err, if any.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// classify maps lower-layer sentinels onto program errors. Errors it does not
// recognise (storage failures, cancellation) are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, accounts.ErrAccountExists):
		return newError(CodeSlotAlreadyExists, err)
	case errors.Is(err, accounts.ErrAccountNotFound):
		return newError(CodeSlotMissing, err)
	case errors.Is(err, accounts.ErrCorruptAccount):
		return newError(CodeAccountDidNotDeserialize, err)
	case errors.Is(err, eventlog.ErrKeyMismatch):
		return newError(CodeKeyMismatch, err)
	case errors.Is(err, eventlog.ErrLogFull):
		return newError(CodeLogFull, err)
	case errors.Is(err, eventlog.ErrPayloadTooLarge):
		return newError(CodePayloadTooLarge, err)
	case errors.Is(err, eventlog.ErrDiscriminatorMismatch), errors.Is(err, eventlog.ErrCorrupt):
		return newError(CodeAccountDidNotDeserialize, err)
	case errors.Is(err, locator.ErrAddressSpaceExhausted):
		return newError(CodeAddressSpaceExhausted, err)
	case errors.Is(err, instruction.ErrUnknownInstruction), errors.Is(err, instruction.ErrInvalidData):
		return newError(CodeInvalidInstruction, err)
	}
	return err
}
