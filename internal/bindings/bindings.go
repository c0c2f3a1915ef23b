//go:build cgo && linux

package bindings

/*
#cgo LDFLAGS: -lpam
#include <stdint.h>
#include <stdlib.h>
#include <security/pam_appl.h>

char *luapam_dup(const char *s, size_t n);
void luapam_wipe_free(char *s);
*/
import "C"

import "unsafe"

// nativeSession is the registry value behind a Handle in cgo builds.
type nativeSession struct {
	pamh *C.pam_handle_t
	conv Conversation
}

//export luapamGoConv
func luapamGoConv(n C.int, msg **C.struct_pam_message, resp **C.struct_pam_response, appdata C.uintptr_t) (rc C.int) {
	// A panic must not unwind through libpam's frames.
	defer func() {
		if recover() != nil {
			rc = C.PAM_CONV_ERR
		}
	}()

	v, ok := get(Handle(appdata))
	if !ok {
		return C.PAM_CONV_ERR
	}
	s, ok := v.(*nativeSession)
	if !ok || s.conv == nil {
		return C.PAM_CONV_ERR
	}
	if n <= 0 || msg == nil || resp == nil {
		return C.PAM_CONV_ERR
	}

	count := int(n)
	msgs := make([]Message, count)
	for i, m := range unsafe.Slice(msg, count) {
		msgs[i] = Message{Style: Style(m.msg_style), Text: C.GoString(m.msg)}
	}

	out, err := s.conv(msgs)
	if err != nil || len(out) != count {
		return C.PAM_CONV_ERR
	}

	arr, status := newResponseArray(out, cAllocator)
	if status != Success {
		return C.int(status)
	}
	*resp = arr
	return C.PAM_SUCCESS
}

// allocator owns the C strings of a response array.
type allocator struct {
	dup  func(src *C.char, n C.size_t) *C.char
	free func(s *C.char)
}

var cAllocator = allocator{
	dup:  func(src *C.char, n C.size_t) *C.char { return C.luapam_dup(src, n) },
	free: func(s *C.char) { C.luapam_wipe_free(s) },
}

// newResponseArray copies rs into a calloc'd pam_response array. Ownership of
// the array and of every resp string passes to libpam. If an allocation fails
// part way, everything allocated for this exchange is released before
// returning.
func newResponseArray(rs []Response, a allocator) (*C.struct_pam_response, Status) {
	size := C.size_t(unsafe.Sizeof(C.struct_pam_response{}))
	arr := (*C.struct_pam_response)(C.calloc(C.size_t(len(rs)), size))
	if arr == nil {
		return nil, BufErr
	}
	slots := unsafe.Slice(arr, len(rs))
	for i, r := range rs {
		var src *C.char
		if len(r.Text) > 0 {
			src = (*C.char)(unsafe.Pointer(unsafe.StringData(r.Text)))
		}
		text := a.dup(src, C.size_t(len(r.Text)))
		if text == nil {
			freeResponses(arr, i, a)
			return nil, BufErr
		}
		slots[i].resp = text
		slots[i].resp_retcode = C.int(r.RetCode)
	}
	return arr, Success
}

// freeResponses wipes and frees the first n resp strings and then the array.
func freeResponses(arr *C.struct_pam_response, n int, a allocator) {
	for _, r := range unsafe.Slice(arr, n) {
		if r.resp != nil {
			a.free(r.resp)
		}
	}
	C.free(unsafe.Pointer(arr))
}
