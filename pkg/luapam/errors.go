package luapam

import (
	"errors"
	"fmt"

	"github.com/hsiuhsiu/luapam-go/internal/bindings"
)

var (
	// ErrNotBuilt is returned by Native when libpam is not linked in.
	ErrNotBuilt = bindings.ErrNotBuilt

	// ErrNotImplemented is raised by entry points the binding declares but
	// does not provide.
	ErrNotImplemented = errors.New("Not implemented")

	// ErrNoRegistration means the framework re-entered the conversation for a
	// runtime that never registered one.
	ErrNoRegistration = errors.New("no conversation registered for this Lua state")

	// errConversation is what the framework sees when the Lua callback failed
	// at the domain level. The detail travels through the error channel.
	errConversation = errors.New("conversation failed")
)

// ShapeError is a value of the wrong type crossing from Lua into the
// binding. It is always raised, never returned.
type ShapeError struct {
	Field string
	Want  string
	Got   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("bad %s (%s expected, got %s)", e.Field, e.Want, e.Got)
}

// CountMismatchError is a response sequence that does not line up with the
// messages of its exchange.
type CountMismatchError struct {
	Got  int
	Want int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("Number of responses (%d) does not match number of messages (%d)", e.Got, e.Want)
}

// ProtocolError is an error channel state that cannot be folded into a
// single message.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "unexpected error shape from conversation callback: " + e.Reason
}
