package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/luapam-go/pkg/luapam"
)

func fakeEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LUAPAM_SERVICE", "login")
	t.Setenv("LUAPAM_USER", "")
	t.Setenv("LUAPAM_FAKE", "true")
	t.Setenv("LUAPAM_FAKE_USERS", "alice:secret123")
	t.Setenv("LUAPAM_LOG_LEVEL", "error")
	t.Setenv("LUAPAM_LOG_FORMAT", "text")
	t.Setenv("LUAPAM_OTEL_ENDPOINT", "")
	t.Setenv("LUAPAM_OTEL_ENABLED", "false")
}

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func TestLoginScript(t *testing.T) {
	fakeEnv(t)
	out, err := runCmd(t, "secret123\n", "-user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "authenticated")
}

func TestLoginScriptPromptsForUser(t *testing.T) {
	fakeEnv(t)
	out, err := runCmd(t, "alice\nsecret123")
	require.NoError(t, err)
	assert.Contains(t, out, "login: ")
	assert.Contains(t, out, "authenticated")
}

func TestLoginScriptFailures(t *testing.T) {
	tests := []struct {
		name, stdin, want string
	}{
		{"wrong password", "nope\n", "Authentication failure"},
		{"no input", "", "Conversation error: EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeEnv(t)
			out, err := runCmd(t, tt.stdin, "-user", "alice")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.NotContains(t, out, "authenticated")
		})
	}
}

func TestScriptFile(t *testing.T) {
	fakeEnv(t)
	out, err := runCmd(t, "secret123\n", "-user", "alice", "testdata/session.lua")
	require.NoError(t, err)
	assert.Contains(t, out, "env\t1\ttty\t/dev/pts/9")
}

func TestScriptPathEscapes(t *testing.T) {
	fakeEnv(t)
	_, err := runCmd(t, "", "../../go.mod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes working directory")
}

func TestTooManyScripts(t *testing.T) {
	fakeEnv(t)
	_, err := runCmd(t, "", "a.lua", "b.lua")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	fakeEnv(t)
	out, err := runCmd(t, "", "-version")
	require.NoError(t, err)
	assert.Equal(t, "luapam "+luapam.Version+"\n", out)
}

func TestNativeUnavailable(t *testing.T) {
	if _, err := luapam.Native(); err == nil {
		t.Skip("libpam is linked in")
	}
	fakeEnv(t)
	t.Setenv("LUAPAM_FAKE", "false")
	_, err := runCmd(t, "", "-user", "alice")
	assert.ErrorIs(t, err, luapam.ErrNotBuilt)
}

func TestSecurePath(t *testing.T) {
	p, err := securePath("testdata/session.lua")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p, "testdata/session.lua"))

	_, err = securePath("..")
	assert.Error(t, err)
}

func TestTerminalWithoutTTY(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(strings.NewReader("one\r\ntwo"), &out)

	got, err := term.readLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "one", got)

	got, err = term.readPassword("pw: ")
	require.NoError(t, err)
	assert.Equal(t, "two", got)
	assert.Equal(t, "> pw: ", out.String())

	_, err = term.readLine("> ")
	assert.Error(t, err)
}
