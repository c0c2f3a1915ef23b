// Package pamtest provides an in-process authentication framework for tests
// and local runs of Lua scripts.
//
// Framework implements luapam.Framework without libpam. Each Service names
// its users and the prompts Authenticate sends; the conversation is invoked
// synchronously from the calling goroutine, exactly as libpam does.
//
//	fw := pamtest.New(pamtest.Service{
//	    Name:  "login",
//	    Users: map[string]string{"alice": "secret123"},
//	})
//	l := lua.NewState()
//	lua.OpenLibraries(l)
//	if err := luapam.Open(l, luapam.Config{Framework: fw}); err != nil {
//	    return err
//	}
//
// Status forces any operation's result, which is how tests reach failure
// paths that involve no conversation:
//
//	pamtest.Service{Name: "login", Status: map[pamtest.Op]luapam.Status{
//	    pamtest.OpAcctMgmt: luapam.AcctExpired,
//	}}
//
// Passwords are compared in constant time. The fake is not a security
// boundary and is not meant for production use.
package pamtest
