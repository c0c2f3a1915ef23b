package luapam

import (
	"testing"

	"github.com/Shopify/go-lua"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hsiuhsiu/luapam-go/pkg/luapam/logging"
)

func testModule(t *testing.T) *module {
	t.Helper()
	m, err := newModule(Config{
		Framework:      nativeFramework{},
		Logger:         logging.Discard(),
		TracerProvider: noop.NewTracerProvider(),
		Registry:       NewRegistry(),
	})
	require.NoError(t, err)
	return m
}

func register(t *testing.T, m *module, l *lua.State, src string) uuid.UUID {
	t.Helper()
	require.NoError(t, lua.DoString(l, "return "+src))
	id := uuid.New()
	m.registry.Set(l, -1, id)
	l.Pop(1)
	return id
}

var onePrompt = []Message{{Style: PromptEchoOff, Text: "Password: "}}

func TestRegistrySetGet(t *testing.T) {
	m := testModule(t)
	l := lua.NewState()

	_, ok := m.registry.Get(l)
	assert.False(t, ok)

	first := register(t, m, l, `{function() return {{"a", 0}} end, "one"}`)
	reg, ok := m.registry.Get(l)
	require.True(t, ok)
	assert.Equal(t, first, reg.Session)

	second := register(t, m, l, `{function() return {{"b", 0}} end, "two"}`)
	reg, _ = m.registry.Get(l)
	assert.Equal(t, second, reg.Session)
	assert.Equal(t, 1, m.registry.Len())

	top := l.Top()
	require.True(t, m.registry.push(l))
	assert.Equal(t, top+2, l.Top())
	assert.True(t, l.IsFunction(-2))
	ctx, _ := l.ToString(-1)
	assert.Equal(t, "two", ctx)
	l.SetTop(top)
}

func TestRegistryKeyedByState(t *testing.T) {
	m := testModule(t)
	l1, l2 := lua.NewState(), lua.NewState()
	register(t, m, l1, `{function() end}`)
	register(t, m, l2, `{function() end}`)
	assert.Equal(t, 2, m.registry.Len())
	assert.False(t, m.registry.push(lua.NewState()))
}

func TestConverseWithoutRegistration(t *testing.T) {
	m := testModule(t)
	l := lua.NewState()

	ch := &errorChannel{}
	_, err := m.converse(l, ch, onePrompt)
	assert.ErrorIs(t, err, ErrNoRegistration)
	assert.ErrorIs(t, ch.fatal, ErrNoRegistration)
	assert.Equal(t, 1, ch.exchanges)
}

func TestConverseRestoresStack(t *testing.T) {
	m := testModule(t)
	l := lua.NewState()
	lua.OpenLibraries(l)
	register(t, m, l, `{function(msgs, ctx) return {{msgs[1][2] .. ctx, 7}} end, "!"}`)

	l.PushString("sentinel")
	top := l.Top()
	resps, err := m.converse(l, &errorChannel{}, onePrompt)
	require.NoError(t, err)
	assert.Equal(t, []Response{{Text: "Password: !", RetCode: 7}}, resps)
	assert.Equal(t, top, l.Top())
	s, _ := l.ToString(-1)
	assert.Equal(t, "sentinel", s)
}

func TestConversationOutsideCall(t *testing.T) {
	m := testModule(t)
	l := lua.NewState()
	register(t, m, l, `{function() return nil, "ignored" end}`)

	resps, err := m.conversation(l)(onePrompt)
	assert.Nil(t, resps)
	assert.ErrorIs(t, err, errConversation)
	assert.Empty(t, m.pending)
}

func TestConverseRecordsCountMismatch(t *testing.T) {
	m := testModule(t)
	l := lua.NewState()
	register(t, m, l, `{function() return {} end}`)

	ch := &errorChannel{}
	_, err := m.converse(l, ch, onePrompt)
	var count *CountMismatchError
	require.ErrorAs(t, err, &count)
	assert.Equal(t, CountMismatchError{Got: 0, Want: 1}, *count)
	assert.Nil(t, ch.fatal)
	require.Len(t, ch.details, 1)
	assert.Equal(t, "Number of responses (0) does not match number of messages (1)", ch.details[0].text)
}

func TestErrorChannelMerge(t *testing.T) {
	tests := []struct {
		name    string
		details []detail
		want    string
		wantErr string
	}{
		{name: "no detail", want: "Authentication failure"},
		{
			name:    "string detail",
			details: []detail{{text: "custom detail", isString: true}},
			want:    "Authentication failure: custom detail",
		},
		{
			name:    "two details",
			details: []detail{{text: "a", isString: true}, {text: "b", isString: true}},
			wantErr: "expected 1 error message, received 2",
		},
		{
			name:    "non-string detail",
			details: []detail{{typeName: "table"}},
			wantErr: "error message should be a string, got table",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &errorChannel{details: tt.details}
			got, err := ch.merge("Authentication failure")
			if tt.wantErr != "" {
				var perr *ProtocolError
				require.ErrorAs(t, err, &perr)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorChannelFirstFatalWins(t *testing.T) {
	ch := &errorChannel{}
	first := &ShapeError{Field: "responses", Want: "table", Got: "nil"}
	ch.fail(first)
	ch.fail(ErrNoRegistration)
	assert.Same(t, first, ch.fatal)
}

func TestPendingChannelsNest(t *testing.T) {
	m := testModule(t)
	outer := &errorChannel{}
	inner := &errorChannel{}

	m.call(outer, func() (Handle, Status) {
		assert.Same(t, outer, m.channel())
		m.call(inner, func() (Handle, Status) {
			assert.Same(t, inner, m.channel())
			return 0, Success
		})
		assert.Same(t, outer, m.channel())
		return 0, Success
	})
	assert.Nil(t, m.channel())
}
