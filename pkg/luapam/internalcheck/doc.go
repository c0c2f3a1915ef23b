// Package internalcheck holds static policy tests over the luapam packages.
//
// The tests load the module's packages with golang.org/x/tools/go/packages
// and walk their syntax trees. They check that conversation responses never
// reach a logger or formatter, and that credentials in the fake framework
// are only compared with crypto/subtle. The package has no exported API.
package internalcheck
