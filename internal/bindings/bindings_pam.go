//go:build cgo && linux

package bindings

/*
#include <stdint.h>
#include <stdlib.h>
#include <string.h>
#include <security/pam_appl.h>

extern int luapamGoConv(int, struct pam_message **, struct pam_response **, uintptr_t);

char *luapam_dup(const char *s, size_t n) {
	char *out = malloc(n + 1);
	if (out == NULL) {
		return NULL;
	}
	if (n > 0) {
		memcpy(out, s, n);
	}
	out[n] = '\0';
	return out;
}

void luapam_wipe_free(char *s) {
	memset(s, 0, strlen(s));
	free(s);
}

static int luapam_conv(int n, const struct pam_message **msg,
                       struct pam_response **resp, void *appdata) {
	return luapamGoConv(n, (struct pam_message **)msg, resp, (uintptr_t)appdata);
}

// pam_start copies the pam_conv struct, so it can live on this stack frame.
static int luapam_start(const char *service, const char *user,
                        uintptr_t appdata, pam_handle_t **pamh) {
	struct pam_conv conv = {luapam_conv, (void *)appdata};
	return pam_start(service, user, &conv, pamh);
}

static int luapam_set_item(pam_handle_t *pamh, int item, const char *value) {
	return pam_set_item(pamh, item, value);
}

static int luapam_get_item(pam_handle_t *pamh, int item, const char **out) {
	const void *v = NULL;
	int rc = pam_get_item(pamh, item, &v);
	*out = (const char *)v;
	return rc;
}

static char *luapam_env_at(char **env, int i) {
	return env[i];
}

static void luapam_free_envlist(char **env) {
	for (char **p = env; *p != NULL; p++) {
		free(*p);
	}
	free(env);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

func init() {
	checks := [...]struct {
		native C.int
		ours   int
	}{
		{C.PAM_SUCCESS, int(Success)},
		{C.PAM_AUTH_ERR, int(AuthErr)},
		{C.PAM_CONV_ERR, int(ConvErr)},
		{C.PAM_BUF_ERR, int(BufErr)},
		{C.PAM_USER_UNKNOWN, int(UserUnknown)},
		{C.PAM_INCOMPLETE, int(Incomplete)},
		{C.PAM_PROMPT_ECHO_OFF, int(PromptEchoOff)},
		{C.PAM_TEXT_INFO, int(TextInfo)},
		{C.PAM_CONV, int(ItemConv)},
		{C.PAM_AUTHTOK_TYPE, int(ItemAuthtokType)},
		{C.PAM_SILENT, int(Silent)},
	}
	for _, c := range checks {
		if int(c.native) != c.ours {
			panic(fmt.Sprintf("luapam/internal/bindings: libpam constant %d does not match %d", int(c.native), c.ours))
		}
	}
}

// Built reports whether libpam is linked into this binary.
func Built() bool { return true }

func lookup(h Handle) (*nativeSession, bool) {
	v, ok := get(h)
	if !ok {
		return nil, false
	}
	s, ok := v.(*nativeSession)
	if !ok || s.pamh == nil {
		return nil, false
	}
	return s, true
}

// Start calls pam_start with a conversation that re-enters conv. A nil user
// lets the modules ask for one. The returned Handle must be released with
// End.
func Start(service string, user *string, conv Conversation) (Handle, Status) {
	if conv == nil {
		return 0, SystemErr
	}

	s := &nativeSession{conv: conv}
	h := put(s)

	cService := C.CString(service)
	defer C.free(unsafe.Pointer(cService))
	var cUser *C.char
	if user != nil {
		cUser = C.CString(*user)
		defer C.free(unsafe.Pointer(cUser))
	}

	var pamh *C.pam_handle_t
	rc := C.luapam_start(cService, cUser, C.uintptr_t(h), &pamh)
	if rc != C.PAM_SUCCESS {
		del(h)
		return 0, Status(rc)
	}
	s.pamh = pamh
	return h, Success
}

// End calls pam_end and forgets h. h must not be used afterwards.
func End(h Handle, status Status) Status {
	s, ok := lookup(h)
	if !ok {
		return SystemErr
	}
	rc := C.pam_end(s.pamh, C.int(status))
	s.pamh = nil
	del(h)
	return Status(rc)
}

func Authenticate(h Handle, flags Flags) Status {
	s, ok := lookup(h)
	if !ok {
		return SystemErr
	}
	return Status(C.pam_authenticate(s.pamh, C.int(flags)))
}

func SetCred(h Handle, flags Flags) Status {
	s, ok := lookup(h)
	if !ok {
		return SystemErr
	}
	return Status(C.pam_setcred(s.pamh, C.int(flags)))
}

func AcctMgmt(h Handle, flags Flags) Status {
	s, ok := lookup(h)
	if !ok {
		return SystemErr
	}
	return Status(C.pam_acct_mgmt(s.pamh, C.int(flags)))
}

func ChAuthTok(h Handle, flags Flags) Status {
	s, ok := lookup(h)
	if !ok {
		return SystemErr
	}
	return Status(C.pam_chauthtok(s.pamh, C.int(flags)))
}

func OpenSession(h Handle, flags Flags) Status {
	s, ok := lookup(h)
	if !ok {
		return SystemErr
	}
	return Status(C.pam_open_session(s.pamh, C.int(flags)))
}

func CloseSession(h Handle, flags Flags) Status {
	s, ok := lookup(h)
	if !ok {
		return SystemErr
	}
	return Status(C.pam_close_session(s.pamh, C.int(flags)))
}

// SetItem sets a string-valued item. PAM_CONV and PAM_FAIL_DELAY carry
// pointers to C structures and are rejected by the caller before reaching
// this point.
func SetItem(h Handle, item Item, value string) Status {
	s, ok := lookup(h)
	if !ok {
		return SystemErr
	}
	cValue := C.CString(value)
	defer C.free(unsafe.Pointer(cValue))
	return Status(C.luapam_set_item(s.pamh, C.int(item), cValue))
}

// GetItem reads a string-valued item. The bool is false when PAM has no
// value for it.
func GetItem(h Handle, item Item) (string, bool, Status) {
	s, ok := lookup(h)
	if !ok {
		return "", false, SystemErr
	}
	var out *C.char
	rc := C.luapam_get_item(s.pamh, C.int(item), &out)
	if rc != C.PAM_SUCCESS {
		return "", false, Status(rc)
	}
	if out == nil {
		return "", false, Success
	}
	return C.GoString(out), true, Success
}

func PutEnv(h Handle, nameValue string) Status {
	s, ok := lookup(h)
	if !ok {
		return SystemErr
	}
	cNameValue := C.CString(nameValue)
	defer C.free(unsafe.Pointer(cNameValue))
	return Status(C.pam_putenv(s.pamh, cNameValue))
}

func GetEnv(h Handle, name string) (string, bool) {
	s, ok := lookup(h)
	if !ok {
		return "", false
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	v := C.pam_getenv(s.pamh, cName)
	if v == nil {
		return "", false
	}
	return C.GoString(v), true
}

// GetEnvList returns the PAM environment as NAME=value strings.
func GetEnvList(h Handle) ([]string, Status) {
	s, ok := lookup(h)
	if !ok {
		return nil, SystemErr
	}
	env := C.pam_getenvlist(s.pamh)
	if env == nil {
		return nil, BufErr
	}
	defer C.luapam_free_envlist(env)

	var out []string
	for i := 0; ; i++ {
		p := C.luapam_env_at(env, C.int(i))
		if p == nil {
			break
		}
		out = append(out, C.GoString(p))
	}
	return out, Success
}

// StrError calls pam_strerror. An unknown or released handle is passed as
// NULL, which Linux-PAM accepts.
func StrError(h Handle, status Status) string {
	var pamh *C.pam_handle_t
	if s, ok := lookup(h); ok {
		pamh = s.pamh
	}
	return C.GoString(C.pam_strerror(pamh, C.int(status)))
}
