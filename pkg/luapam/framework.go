package luapam

import "github.com/hsiuhsiu/luapam-go/internal/bindings"

// Framework is the native authentication framework as seen by the Lua
// module. Calls are blocking and may invoke the Conversation passed to Start
// any number of times before returning, on the calling goroutine.
//
// Native returns the libpam implementation; pamtest provides an in-process
// one.
type Framework interface {
	Start(service string, user *string, conv Conversation) (Handle, Status)
	End(h Handle, status Status) Status
	Authenticate(h Handle, flags Flags) Status
	SetCred(h Handle, flags Flags) Status
	AcctMgmt(h Handle, flags Flags) Status
	ChAuthTok(h Handle, flags Flags) Status
	OpenSession(h Handle, flags Flags) Status
	CloseSession(h Handle, flags Flags) Status
	SetItem(h Handle, item Item, value string) Status
	GetItem(h Handle, item Item) (string, bool, Status)
	PutEnv(h Handle, nameValue string) Status
	GetEnv(h Handle, name string) (string, bool)
	GetEnvList(h Handle) ([]string, Status)
	StrError(h Handle, status Status) string
}

// Native returns the libpam-backed Framework, or ErrNotBuilt when the binary
// was compiled without cgo or outside Linux.
func Native() (Framework, error) {
	if !bindings.Built() {
		return nil, ErrNotBuilt
	}
	return nativeFramework{}, nil
}

type nativeFramework struct{}

func (nativeFramework) Start(service string, user *string, conv Conversation) (Handle, Status) {
	return bindings.Start(service, user, conv)
}

func (nativeFramework) End(h Handle, status Status) Status { return bindings.End(h, status) }

func (nativeFramework) Authenticate(h Handle, flags Flags) Status {
	return bindings.Authenticate(h, flags)
}

func (nativeFramework) SetCred(h Handle, flags Flags) Status { return bindings.SetCred(h, flags) }

func (nativeFramework) AcctMgmt(h Handle, flags Flags) Status { return bindings.AcctMgmt(h, flags) }

func (nativeFramework) ChAuthTok(h Handle, flags Flags) Status { return bindings.ChAuthTok(h, flags) }

func (nativeFramework) OpenSession(h Handle, flags Flags) Status {
	return bindings.OpenSession(h, flags)
}

func (nativeFramework) CloseSession(h Handle, flags Flags) Status {
	return bindings.CloseSession(h, flags)
}

func (nativeFramework) SetItem(h Handle, item Item, value string) Status {
	return bindings.SetItem(h, item, value)
}

func (nativeFramework) GetItem(h Handle, item Item) (string, bool, Status) {
	return bindings.GetItem(h, item)
}

func (nativeFramework) PutEnv(h Handle, nameValue string) Status {
	return bindings.PutEnv(h, nameValue)
}

func (nativeFramework) GetEnv(h Handle, name string) (string, bool) {
	return bindings.GetEnv(h, name)
}

func (nativeFramework) GetEnvList(h Handle) ([]string, Status) { return bindings.GetEnvList(h) }

func (nativeFramework) StrError(h Handle, status Status) string {
	return bindings.StrError(h, status)
}
