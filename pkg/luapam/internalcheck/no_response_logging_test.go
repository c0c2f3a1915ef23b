package internalcheck

import (
	"fmt"
	"go/ast"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

func TestNoResponseLogging(t *testing.T) {
	pkgs, err := load(
		packages.NeedSyntax|packages.NeedTypes|packages.NeedTypesInfo|packages.NeedFiles|packages.NeedName,
		modulePath+"/pkg/luapam",
		modulePath+"/pkg/luapam/pamtest",
		modulePath+"/cmd/luapam",
		bindingsPath,
	)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var findings []string
	for _, pkg := range pkgs {
		info := pkg.TypesInfo
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				var ident *ast.Ident
				switch fn := call.Fun.(type) {
				case *ast.SelectorExpr:
					ident = fn.Sel
				case *ast.Ident:
					ident = fn
				default:
					return true
				}
				first, ok := sinkIndex(info.Uses[ident])
				if !ok {
					return true
				}
				for _, arg := range call.Args[min(first, len(call.Args)):] {
					if isResponse(info.TypeOf(arg)) || isResponseText(info, arg) {
						pos := pkg.Fset.Position(arg.Pos())
						findings = append(findings, fmt.Sprintf("%s: conversation response passed to %s; use logging.Redacted", pos, ident.Name))
					}
				}
				return true
			})
		}
	}

	if len(findings) > 0 {
		t.Fatalf("secret logging policy violation:\n%s", strings.Join(findings, "\n"))
	}
}
