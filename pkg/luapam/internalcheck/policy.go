package internalcheck

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"
)

const (
	modulePath   = "github.com/hsiuhsiu/luapam-go"
	bindingsPath = modulePath + "/internal/bindings"
	loggingPath  = modulePath + "/pkg/luapam/logging"
)

// load parses and type-checks the given package patterns.
func load(mode packages.LoadMode, patterns ...string) ([]*packages.Package, error) {
	return packages.Load(&packages.Config{Mode: mode}, patterns...)
}

// isResponse reports whether typ is a bindings.Response, a pointer to one, or
// a slice of them.
func isResponse(typ types.Type) bool {
	switch tt := typ.(type) {
	case *types.Named:
		obj := tt.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() == bindingsPath && obj.Name() == "Response" {
			return true
		}
		return false
	case *types.Pointer:
		return isResponse(tt.Elem())
	case *types.Slice:
		return isResponse(tt.Elem())
	default:
		return false
	}
}

// isResponseText reports whether e reads the Text field of a Response.
func isResponseText(info *types.Info, e ast.Expr) bool {
	sel, ok := e.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Text" {
		return false
	}
	return isResponse(info.TypeOf(sel.X))
}

// isCredential reports whether e holds a password: a response text, an
// entry of a Users map, or a variable named like a password.
func isCredential(info *types.Info, e ast.Expr) bool {
	switch ex := e.(type) {
	case *ast.ParenExpr:
		return isCredential(info, ex.X)
	case *ast.IndexExpr:
		if sel, ok := ex.X.(*ast.SelectorExpr); ok && sel.Sel.Name == "Users" {
			return true
		}
		return isResponseText(info, ex.X)
	case *ast.SelectorExpr:
		return isResponseText(info, ex)
	case *ast.Ident:
		name := strings.ToLower(ex.Name)
		return strings.Contains(name, "password") || strings.Contains(name, "authtok")
	default:
		return false
	}
}

func isConstant(info *types.Info, e ast.Expr) bool {
	tv, ok := info.Types[e]
	return ok && tv.Value != nil
}

// sinkIndex returns the index of the first argument that is written out by
// the function or method obj, or false if obj is not a log or format sink.
func sinkIndex(obj types.Object) (int, bool) {
	if obj == nil || obj.Pkg() == nil {
		return 0, false
	}
	switch obj.Pkg().Path() {
	case "fmt":
		switch obj.Name() {
		case "Errorf", "Printf", "Sprintf", "Print", "Println", "Sprint", "Sprintln":
			return 0, true
		case "Fprintf", "Fprint", "Fprintln":
			return 1, true
		}
	case "log":
		switch obj.Name() {
		case "Printf", "Print", "Println", "Fatalf", "Fatal", "Panicf", "Panic":
			return 0, true
		}
	case "log/slog":
		switch obj.Name() {
		case "Debug", "Info", "Warn", "Error", "With", "Any", "String":
			return 0, true
		case "DebugContext", "InfoContext", "WarnContext", "ErrorContext":
			return 1, true
		}
	case loggingPath:
		switch obj.Name() {
		case "Debug", "Info", "Warn", "Error":
			return 1, true
		case "With":
			return 0, true
		}
	}
	return 0, false
}
