package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Shopify/go-lua"
	"golang.org/x/term"

	"github.com/hsiuhsiu/luapam-go/pkg/luapam"
)

// terminal answers conversation prompts from the command's stdin. Echo is
// disabled for passwords only when stdin is a terminal.
type terminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

func newTerminal(in io.Reader, out io.Writer) *terminal {
	t := &terminal{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
	}
	return t
}

func (t *terminal) readLine(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *terminal) readPassword(prompt string) (string, error) {
	if t.fd < 0 {
		return t.readLine(prompt)
	}
	fmt.Fprint(t.out, prompt)
	buf, err := term.ReadPassword(t.fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", err
	}
	defer luapam.ZeroizeBytes(buf)
	return string(buf), nil
}

// register installs readline and readpassword as Lua globals. Both return
// the answer, or nil and a message when input is exhausted. print is
// replaced so that script output goes to the terminal's writer.
func (t *terminal) register(l *lua.State) {
	l.Register("readline", luaReader(t.readLine))
	l.Register("readpassword", luaReader(t.readPassword))
	l.Register("print", t.print)
}

func (t *terminal) print(l *lua.State) int {
	n := l.Top()
	l.Global("tostring")
	for i := 1; i <= n; i++ {
		l.PushValue(-1)
		l.PushValue(i)
		l.Call(1, 1)
		s, ok := l.ToString(-1)
		if !ok {
			lua.Errorf(l, "'tostring' must return a string to 'print'")
		}
		if i > 1 {
			fmt.Fprint(t.out, "\t")
		}
		fmt.Fprint(t.out, s)
		l.Pop(1)
	}
	fmt.Fprintln(t.out)
	return 0
}

func luaReader(read func(string) (string, error)) lua.Function {
	return func(l *lua.State) int {
		prompt := lua.OptString(l, 1, "")
		answer, err := read(prompt)
		if err != nil {
			l.PushNil()
			l.PushString(err.Error())
			return 2
		}
		l.PushString(answer)
		return 1
	}
}
