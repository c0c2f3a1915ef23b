//go:build !cgo || !linux

package bindings

// Stub implementations for builds without cgo or outside Linux. They compile
// so the rest of the module can be used with a Go framework implementation,
// and report failure when called.

func Built() bool { return false }

func Start(string, *string, Conversation) (Handle, Status) { return 0, SystemErr }

func End(Handle, Status) Status { return SystemErr }

func Authenticate(Handle, Flags) Status { return SystemErr }

func SetCred(Handle, Flags) Status { return SystemErr }

func AcctMgmt(Handle, Flags) Status { return SystemErr }

func ChAuthTok(Handle, Flags) Status { return SystemErr }

func OpenSession(Handle, Flags) Status { return SystemErr }

func CloseSession(Handle, Flags) Status { return SystemErr }

func SetItem(Handle, Item, string) Status { return SystemErr }

func GetItem(Handle, Item) (string, bool, Status) { return "", false, SystemErr }

func PutEnv(Handle, string) Status { return SystemErr }

func GetEnv(Handle, string) (string, bool) { return "", false }

func GetEnvList(Handle) ([]string, Status) { return nil, SystemErr }

func StrError(_ Handle, status Status) string { return status.Text() }
