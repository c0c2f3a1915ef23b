package luapam

import "runtime"

// ZeroizeBytes overwrites buf with zeros. Callers use it on password buffers
// read from a terminal once the bytes have been handed to Lua.
//
// Go strings made from buf are copies and are not cleared.
func ZeroizeBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	// Prevent dead store elimination per golang/go#33325
	runtime.KeepAlive(buf)
}
