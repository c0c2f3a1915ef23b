package luapam

import (
	"fmt"
	"math"

	"github.com/Shopify/go-lua"
)

// This file is the one place where values produced by Lua code are checked
// before they are handed to the native side. Every check returns a typed
// error; the callers decide whether it is raised or recorded.

// decodeResponses reads exactly n responses from the sequence at index.
// Entries are consumed with next, so a table literal yields them in order.
// A sequence holding fewer or more than n entries is a CountMismatchError;
// a wrongly shaped entry is a ShapeError and stops validation immediately.
func decodeResponses(l *lua.State, index, n int) ([]Response, error) {
	index = l.AbsIndex(index)
	if l.TypeOf(index) != lua.TypeTable {
		return nil, &ShapeError{Field: "responses", Want: "table", Got: lua.TypeNameOf(l, index)}
	}

	out := make([]Response, 0, n)
	l.PushNil()
	for len(out) < n {
		if !l.Next(index) {
			return nil, &CountMismatchError{Got: len(out), Want: n}
		}
		r, err := decodeResponse(l, l.Top(), len(out)+1)
		l.Pop(1)
		if err != nil {
			l.Pop(1)
			return nil, err
		}
		out = append(out, r)
	}

	extra := 0
	for l.Next(index) {
		l.Pop(1)
		extra++
	}
	if extra > 0 {
		return nil, &CountMismatchError{Got: n + extra, Want: n}
	}
	return out, nil
}

func decodeResponse(l *lua.State, index, position int) (Response, error) {
	field := fmt.Sprintf("responses[%d]", position)
	if l.TypeOf(index) != lua.TypeTable {
		return Response{}, &ShapeError{Field: field, Want: "table", Got: lua.TypeNameOf(l, index)}
	}

	l.RawGetInt(index, 1)
	text, ok := stringAt(l, -1)
	if !ok {
		err := &ShapeError{Field: field + ".resp", Want: "string", Got: lua.TypeNameOf(l, -1)}
		l.Pop(1)
		return Response{}, err
	}
	l.Pop(1)

	l.RawGetInt(index, 2)
	code, ok := integerAt(l, -1)
	if !ok {
		err := &ShapeError{Field: field + ".resp_retcode", Want: "integer", Got: lua.TypeNameOf(l, -1)}
		l.Pop(1)
		return Response{}, err
	}
	l.Pop(1)

	return Response{Text: text, RetCode: code}, nil
}

// stringAt accepts strings and numbers, as Lua's own string coercion does.
func stringAt(l *lua.State, index int) (string, bool) {
	if !l.IsString(index) {
		return "", false
	}
	return l.ToString(index)
}

// integerAt accepts numbers with no fractional part.
func integerAt(l *lua.State, index int) (int, bool) {
	if l.TypeOf(index) != lua.TypeNumber {
		return 0, false
	}
	f, _ := l.ToNumber(index)
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// optFlags reads an optional flags argument: nil, an integer, or a table of
// integers that are OR-ed together.
func optFlags(l *lua.State, index int) (Flags, error) {
	if l.IsNoneOrNil(index) {
		return 0, nil
	}
	if v, ok := integerAt(l, index); ok {
		return Flags(v), nil
	}
	if l.TypeOf(index) != lua.TypeTable {
		return 0, &ShapeError{Field: "flags", Want: "integer or table", Got: lua.TypeNameOf(l, index)}
	}

	index = l.AbsIndex(index)
	var flags Flags
	l.PushNil()
	for l.Next(index) {
		v, ok := integerAt(l, -1)
		if !ok {
			err := &ShapeError{Field: "flags[i]", Want: "integer", Got: lua.TypeNameOf(l, -1)}
			l.Pop(2)
			return 0, err
		}
		flags |= Flags(v)
		l.Pop(1)
	}
	return flags, nil
}
