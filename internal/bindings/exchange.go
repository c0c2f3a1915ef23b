//go:build cgo && linux

package bindings

/*
#include <stdint.h>
#include <stdlib.h>
#include <security/pam_appl.h>
*/
import "C"

import "unsafe"

// exchange runs one conversation through luapamGoConv with C-allocated
// messages, the way libpam calls it, and returns the responses copied back to
// Go. The response array is freed before returning.
func exchange(h Handle, msgs []Message) ([]Response, Status) {
	n := max(len(msgs), 1)
	structs := (*C.struct_pam_message)(C.calloc(C.size_t(n), C.size_t(unsafe.Sizeof(C.struct_pam_message{}))))
	ptrs := (**C.struct_pam_message)(C.calloc(C.size_t(n), C.size_t(unsafe.Sizeof(uintptr(0)))))
	defer C.free(unsafe.Pointer(structs))
	defer C.free(unsafe.Pointer(ptrs))

	ss, ps := unsafe.Slice(structs, n), unsafe.Slice(ptrs, n)
	for i, m := range msgs {
		ss[i].msg_style = C.int(m.Style)
		ss[i].msg = C.CString(m.Text)
		defer C.free(unsafe.Pointer(ss[i].msg))
		ps[i] = &ss[i]
	}

	var resp *C.struct_pam_response
	if rc := luapamGoConv(C.int(len(msgs)), ptrs, &resp, C.uintptr_t(h)); rc != C.PAM_SUCCESS {
		return nil, Status(rc)
	}
	defer freeResponses(resp, len(msgs), cAllocator)
	return readResponses(resp, len(msgs)), Success
}

// buildResponses builds a response array from rs with an allocator whose
// failAt'th dup fails (negative never fails), reads it back and frees it. live
// is the number of resp strings still allocated once it returns.
func buildResponses(rs []Response, failAt int) (out []Response, live int, st Status) {
	calls := 0
	a := allocator{
		dup: func(src *C.char, n C.size_t) *C.char {
			defer func() { calls++ }()
			if calls == failAt {
				return nil
			}
			live++
			return cAllocator.dup(src, n)
		},
		free: func(s *C.char) {
			live--
			cAllocator.free(s)
		},
	}

	arr, st := newResponseArray(rs, a)
	if st != Success {
		return nil, live, st
	}
	out = readResponses(arr, len(rs))
	freeResponses(arr, len(rs), a)
	return out, live, Success
}

func readResponses(arr *C.struct_pam_response, n int) []Response {
	out := make([]Response, n)
	for i, r := range unsafe.Slice(arr, n) {
		out[i] = Response{Text: C.GoString(r.resp), RetCode: int(r.resp_retcode)}
	}
	return out
}
