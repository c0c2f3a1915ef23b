package luapam

import (
	"testing"

	"github.com/Shopify/go-lua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval(t *testing.T, l *lua.State, expr string) {
	t.Helper()
	require.NoError(t, lua.DoString(l, "return "+expr))
}

func TestDecodeResponses(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		n     int
		want  []Response
		count *CountMismatchError
		shape string
	}{
		{name: "exact", expr: `{{"a", 0}, {"b", 3}}`, n: 2, want: []Response{{Text: "a", RetCode: 0}, {Text: "b", RetCode: 3}}},
		{name: "empty exchange", expr: `{}`, n: 0, want: []Response{}},
		{name: "numeric text", expr: `{{12, 0}}`, n: 1, want: []Response{{Text: "12", RetCode: 0}}},
		{name: "negative retcode", expr: `{{"a", -1}}`, n: 1, want: []Response{{Text: "a", RetCode: -1}}},
		{name: "short", expr: `{{"a", 0}}`, n: 3, count: &CountMismatchError{Got: 1, Want: 3}},
		{name: "long", expr: `{{"a", 0}, {"b", 0}}`, n: 1, count: &CountMismatchError{Got: 2, Want: 1}},
		{name: "not a table", expr: `true`, n: 1, shape: "bad responses (table expected, got boolean)"},
		{name: "bad entry", expr: `{{"a", 0}, 5}`, n: 2, shape: "bad responses[2] (table expected, got number)"},
		{name: "bad text", expr: `{{false, 0}}`, n: 1, shape: "bad responses[1].resp (string expected, got boolean)"},
		{name: "fractional retcode", expr: `{{"a", 0.5}}`, n: 1, shape: "bad responses[1].resp_retcode (integer expected, got number)"},
		{name: "huge retcode", expr: `{{"a", 2^40}}`, n: 1, shape: "bad responses[1].resp_retcode (integer expected, got number)"},
		{name: "string retcode", expr: `{{"a", "0"}}`, n: 1, shape: "bad responses[1].resp_retcode (integer expected, got string)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := lua.NewState()
			eval(t, l, tt.expr)
			top := l.Top()

			got, err := decodeResponses(l, -1, tt.n)
			assert.Equal(t, top, l.Top())

			switch {
			case tt.count != nil:
				var count *CountMismatchError
				require.ErrorAs(t, err, &count)
				assert.Equal(t, *tt.count, *count)
			case tt.shape != "":
				var shape *ShapeError
				require.ErrorAs(t, err, &shape)
				assert.Equal(t, tt.shape, err.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestOptFlags(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		want  Flags
		shape bool
	}{
		{name: "nil", expr: `nil`, want: 0},
		{name: "integer", expr: `32768`, want: Silent},
		{name: "table", expr: `{32768, 1}`, want: Silent | DisallowNullAuthtok},
		{name: "empty table", expr: `{}`, want: 0},
		{name: "string", expr: `"silent"`, shape: true},
		{name: "table of strings", expr: `{"silent"}`, shape: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := lua.NewState()
			eval(t, l, tt.expr)
			top := l.Top()

			got, err := optFlags(l, -1)
			assert.Equal(t, top, l.Top())
			if tt.shape {
				var shape *ShapeError
				assert.ErrorAs(t, err, &shape)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptFlagsAbsent(t *testing.T) {
	l := lua.NewState()
	got, err := optFlags(l, 2)
	require.NoError(t, err)
	assert.Equal(t, Flags(0), got)
}
