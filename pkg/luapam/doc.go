// Package luapam exposes a PAM-style authentication framework to Lua scripts
// running on github.com/Shopify/go-lua.
//
// Open installs a module table named pam (and the global of the same name);
// Preload makes it available to require "pam" instead:
//
//	l := lua.NewState()
//	lua.OpenLibraries(l)
//	if err := luapam.Open(l, luapam.Config{}); err != nil {
//	    return err // ErrNotBuilt without cgo or outside Linux
//	}
//
// A script starts a transaction with a conversation table whose first entry is
// the callback and whose second is an arbitrary context value:
//
//	local function conv(msgs, ctx)
//	    local out = {}
//	    for i, m in ipairs(msgs) do
//	        -- m[1] is the style, m[2] the prompt text
//	        out[i] = {answer_for(m), 0}
//	    end
//	    return out
//	end
//	local h = assert(pam.start("login", "alice", {conv, ctx}))
//	local ok, err = h:authenticate()
//	pam["end"](h, ok and pam.SUCCESS or pam.AUTH_ERR)
//
// # Errors
//
// Operations return their result, or nil and a message. The message is the
// framework's own error string, followed by ": " and the detail a failed
// conversation reported: the value the callback raised, the second value it
// returned with nil, or a response count mismatch. Values of the wrong type
// crossing into the binding raise a Lua error instead.
//
// # Conversations and runtimes
//
// The conversation callback is registered per Lua state: a second pam.start
// on the same state replaces the callback of the first for every transaction
// on that state. Nesting transactions or driving one state from several
// goroutines is unsupported.
//
// Frameworks other than libpam can be supplied through Config.Framework; the
// pamtest package provides an in-process one.
package luapam
