package luapam

import (
	"fmt"

	"github.com/Shopify/go-lua"
)

// detail is one piece of error information left by a failed conversation.
// Only string details can be merged into a result; anything else keeps its
// Lua type name for the protocol error.
type detail struct {
	text     string
	isString bool
	typeName string
}

// errorChannel carries what the conversation bridge learned during one
// blocking native call back to the code that issued the call. It is created
// before the call and read once after it returns.
type errorChannel struct {
	details   []detail
	fatal     error
	exchanges int
}

// record appends the Lua value at index as a detail.
func (c *errorChannel) record(l *lua.State, index int) {
	if l.IsString(index) {
		s, _ := l.ToString(index)
		c.details = append(c.details, detail{text: s, isString: true})
		return
	}
	c.details = append(c.details, detail{typeName: lua.TypeNameOf(l, index)})
}

func (c *errorChannel) recordString(s string) {
	c.details = append(c.details, detail{text: s, isString: true})
}

// fail stores an error that must be raised in Lua once the native call has
// returned. The first one wins.
func (c *errorChannel) fail(err error) {
	if c.fatal == nil {
		c.fatal = err
	}
}

// merge folds the pending details into the framework's own error string.
func (c *errorChannel) merge(primary string) (string, error) {
	switch {
	case len(c.details) == 0:
		return primary, nil
	case len(c.details) > 1:
		return "", &ProtocolError{Reason: fmt.Sprintf("expected 1 error message, received %d", len(c.details))}
	case !c.details[0].isString:
		return "", &ProtocolError{Reason: "error message should be a string, got " + c.details[0].typeName}
	default:
		return primary + ": " + c.details[0].text, nil
	}
}
