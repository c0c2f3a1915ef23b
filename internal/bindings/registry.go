package bindings

import "sync"

// The C ABI only carries a void* appdata back into the conversation callback.
// Handing libpam a Go pointer is not allowed, so every transaction gets a small
// integer id and the Go state lives here.

var (
	mu   sync.Mutex
	next Handle = 1
	reg         = map[Handle]any{}
)

func put(v any) Handle {
	mu.Lock()
	h := next
	next++
	reg[h] = v
	mu.Unlock()
	return h
}

func get(h Handle) (any, bool) {
	mu.Lock()
	v, ok := reg[h]
	mu.Unlock()
	return v, ok
}

func del(h Handle) {
	mu.Lock()
	delete(reg, h)
	mu.Unlock()
}

func live() int {
	mu.Lock()
	defer mu.Unlock()
	return len(reg)
}
