package luapam

import (
	"github.com/Shopify/go-lua"
	"github.com/google/uuid"
)

// conversationsKey names the Lua registry table holding the {callback,
// context} table of every registered runtime, keyed by the runtime itself.
const conversationsKey = "luapam.conversations"

// Registration is the bookkeeping for the conversation a Lua state most
// recently registered. The callback and context stay in Lua; Session tags
// the start call that registered them.
type Registration struct {
	Session uuid.UUID
}

// Registry maps a Lua runtime to its conversation. A state has at most one
// live registration: Set replaces the previous one, and registrations outlive
// the handles they were created for.
//
// Registry is not safe for concurrent use. Running start on the same Lua
// state from several goroutines, or nesting transactions on one state, is
// unsupported and is the caller's responsibility to avoid.
type Registry struct {
	entries map[*lua.State]Registration
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[*lua.State]Registration)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry is the process-wide registry used when Config.Registry is
// nil.
func DefaultRegistry() *Registry { return defaultRegistry }

// Set registers the conversation table at index for l.
func (r *Registry) Set(l *lua.State, index int, session uuid.UUID) {
	index = l.AbsIndex(index)
	pushConversations(l)
	l.PushLightUserData(l)
	l.PushValue(index)
	l.RawSet(-3)
	l.Pop(1)
	r.entries[l] = Registration{Session: session}
}

// Get returns the registration for l.
func (r *Registry) Get(l *lua.State) (Registration, bool) {
	reg, ok := r.entries[l]
	return reg, ok
}

// Len reports how many runtimes hold a registration.
func (r *Registry) Len() int { return len(r.entries) }

// push pushes the registered callback and context of l, in that order.
func (r *Registry) push(l *lua.State) bool {
	if _, ok := r.entries[l]; !ok {
		return false
	}
	pushConversations(l)
	l.PushLightUserData(l)
	l.RawGet(-2)
	if !l.IsTable(-1) {
		l.Pop(2)
		return false
	}
	l.RawGetInt(-1, 1)
	l.RawGetInt(-2, 2)
	l.Remove(-3)
	l.Remove(-3)
	return true
}

func pushConversations(l *lua.State) {
	l.Field(lua.RegistryIndex, conversationsKey)
	if l.IsTable(-1) {
		return
	}
	l.Pop(1)
	l.NewTable()
	l.PushValue(-1)
	l.SetField(lua.RegistryIndex, conversationsKey)
}
