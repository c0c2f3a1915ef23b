package internalcheck

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkSource(t *testing.T, src string) (*ast.File, *types.Info) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "x.go", src, 0)
	require.NoError(t, err)
	info := &types.Info{Types: map[ast.Expr]types.TypeAndValue{}, Uses: map[*ast.Ident]types.Object{}}
	conf := types.Config{Importer: importer.Default()}
	_, err = conf.Check("x", fset, []*ast.File{file}, info)
	require.NoError(t, err)
	return file, info
}

func TestIsCredential(t *testing.T) {
	file, info := checkSource(t, `package x

type svc struct{ Users map[string]string }

func f(s svc, password, name string) bool {
	_ = s.Users[name] == name
	_ = password != name
	_ = name == "x"
	return password == ""
}
`)

	var got []bool
	ast.Inspect(file, func(n ast.Node) bool {
		if be, ok := n.(*ast.BinaryExpr); ok {
			flagged := !isConstant(info, be.X) && !isConstant(info, be.Y) &&
				(isCredential(info, be.X) || isCredential(info, be.Y))
			got = append(got, flagged)
		}
		return true
	})
	assert.Equal(t, []bool{true, true, false, false}, got)
}
