package luapam

import (
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/google/uuid"
)

const handleTypeName = "pam_handle_t"

// handle is the userdata behind a Lua pam_handle_t value. It holds the native
// identity only; the framework owns the transaction and the script must
// release it with pam.end. It has no __gc.
//
// The native pam_handle_t pointer stays inside the bindings package, so the
// debug form of a handle shows the framework's transaction id instead of a C
// address. Ids are unique among live transactions of one framework.
type handle struct {
	native  Handle
	service string
	session uuid.UUID
}

// String renders "pam_handle_t: 0x<id>" where id is the framework Handle.
func (h *handle) String() string {
	return fmt.Sprintf("%s: %#x", handleTypeName, uintptr(h.native))
}

func pushHandle(l *lua.State, h *handle) {
	l.PushUserData(h)
	lua.SetMetaTableNamed(l, handleTypeName)
}

// checkHandle raises a Lua argument error unless the value at index is a
// pam_handle_t.
func checkHandle(l *lua.State, index int) *handle {
	h, ok := lua.CheckUserData(l, index, handleTypeName).(*handle)
	if !ok || h == nil {
		lua.ArgumentError(l, index, handleTypeName+" expected")
	}
	return h
}

func handleToString(l *lua.State) int {
	h := checkHandle(l, 1)
	l.PushString(h.String())
	return 1
}

var handleMethods = []lua.RegistryFunction{
	{Name: "__tostring", Function: handleToString},
}
