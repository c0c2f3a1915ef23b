package luapam

import (
	"context"
	"errors"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hsiuhsiu/luapam-go/pkg/luapam/logging"
)

// ModuleName is the name scripts require.
const ModuleName = "pam"

const instrumentationName = "github.com/hsiuhsiu/luapam-go/pkg/luapam"

// Config wires the Lua module to its collaborators. The zero value uses
// libpam, slog.Default, the global tracer provider and the process-wide
// registry.
type Config struct {
	Framework      Framework
	Logger         logging.Logger
	TracerProvider trace.TracerProvider
	Registry       *Registry
}

type module struct {
	fw       Framework
	log      logging.Logger
	tracer   trace.Tracer
	registry *Registry

	// pending holds one error channel per blocking call in progress,
	// innermost last.
	pending []*errorChannel
}

func newModule(cfg Config) (*module, error) {
	m := &module{
		fw:       cfg.Framework,
		log:      cfg.Logger,
		registry: cfg.Registry,
	}
	if m.fw == nil {
		fw, err := Native()
		if err != nil {
			return nil, err
		}
		m.fw = fw
	}
	if m.log == nil {
		m.log = logging.New(nil)
	}
	if m.registry == nil {
		m.registry = defaultRegistry
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	m.tracer = tp.Tracer(instrumentationName)
	return m, nil
}

// Open loads the pam module into l and sets the global pam. The stack is
// left unchanged.
func Open(l *lua.State, cfg Config) error {
	m, err := newModule(cfg)
	if err != nil {
		return err
	}
	lua.Require(l, ModuleName, m.open, true)
	l.Pop(1)
	return nil
}

// Preload registers the module in package.preload so that scripts load it
// with require "pam". The package library must already be open.
func Preload(l *lua.State, cfg Config) error {
	m, err := newModule(cfg)
	if err != nil {
		return err
	}
	l.Global("package")
	if !l.IsTable(-1) {
		l.Pop(1)
		return errors.New("luapam: package library not open")
	}
	l.Field(-1, "preload")
	if !l.IsTable(-1) {
		l.Pop(2)
		return errors.New("luapam: package.preload missing")
	}
	l.PushGoFunction(m.open)
	l.SetField(-2, ModuleName)
	l.Pop(2)
	return nil
}

func (m *module) open(l *lua.State) int {
	lua.NewMetaTable(l, handleTypeName)
	lua.SetFunctions(l, handleMethods, 0)

	lua.NewLibrary(l, m.functions())
	setConstants(l)

	// Handles index into the library, so h:authenticate() works.
	l.PushValue(-1)
	l.SetField(-3, "__index")
	l.Remove(-2)
	return 1
}

func (m *module) functions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "start", Function: m.start},
		{Name: "end", Function: m.endTransaction},
		{Name: "endx", Function: m.endTransaction},

		{Name: "authenticate", Function: m.flagOp("authenticate", m.fw.Authenticate)},
		{Name: "setcred", Function: m.flagOp("setcred", m.fw.SetCred)},
		{Name: "acct_mgmt", Function: m.flagOp("acct_mgmt", m.fw.AcctMgmt)},
		{Name: "chauthtok", Function: m.flagOp("chauthtok", m.fw.ChAuthTok)},
		{Name: "open_session", Function: m.flagOp("open_session", m.fw.OpenSession)},
		{Name: "close_session", Function: m.flagOp("close_session", m.fw.CloseSession)},

		{Name: "set_item", Function: m.setItem},
		{Name: "get_item", Function: m.getItem},
		{Name: "get_user", Function: notImplemented},
		{Name: "set_data", Function: notImplemented},
		{Name: "get_data", Function: notImplemented},

		{Name: "putenv", Function: m.putEnv},
		{Name: "getenv", Function: m.getEnv},
		{Name: "getenvlist", Function: m.getEnvList},

		{Name: "strerror", Function: m.strError},
	}
}

func (m *module) channel() *errorChannel {
	if n := len(m.pending); n > 0 {
		return m.pending[n-1]
	}
	return nil
}

// call runs f with ch as the innermost error channel.
func (m *module) call(ch *errorChannel, f func() (Handle, Status)) (Handle, Status) {
	m.pending = append(m.pending, ch)
	defer func() { m.pending = m.pending[:len(m.pending)-1] }()
	return f()
}

// invoke runs one native call that may re-enter the conversation bridge.
// On success it returns whatever push leaves on the stack. On failure it
// returns nil and the framework's error string, merged with the detail a
// failed conversation left behind. Shape violations from the bridge, and
// error channel states that cannot be merged, are raised.
func (m *module) invoke(l *lua.State, op string, h *handle, f func() (Handle, Status), push func(Handle) int) int {
	ctx, span := m.tracer.Start(context.Background(), "pam."+op, trace.WithAttributes(
		attribute.String("pam.service", h.service),
		attribute.String("pam.session", h.session.String()),
	))
	log := m.log.With("op", op, "service", h.service, "session", h.session.String())

	ch := &errorChannel{}
	native, status := m.call(ch, f)
	span.SetAttributes(
		attribute.Int("pam.status", int(status)),
		attribute.Int("pam.conversation.exchanges", ch.exchanges),
	)

	if ch.fatal != nil {
		span.RecordError(ch.fatal)
		span.SetStatus(codes.Error, ch.fatal.Error())
		span.End()
		log.Error(ctx, "conversation callback misbehaved", "error", ch.fatal)
		return raise(l, ch.fatal)
	}

	if status == Success {
		span.End()
		log.Debug(ctx, "pam call", "status", status.String(), "exchanges", ch.exchanges)
		return push(native)
	}

	msg, err := ch.merge(m.fw.StrError(native, status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		log.Error(ctx, "pam call failed", "status", status.String(), "error", err)
		return raise(l, err)
	}
	span.SetStatus(codes.Error, msg)
	span.End()
	log.Info(ctx, "pam call failed", "status", status.String(), "exchanges", ch.exchanges)

	l.PushNil()
	l.PushString(msg)
	return 2
}

func (m *module) start(l *lua.State) int {
	service := lua.CheckString(l, 1)
	var user *string
	if !l.IsNoneOrNil(2) {
		u := lua.CheckString(l, 2)
		user = &u
	}
	lua.CheckType(l, 3, lua.TypeTable)
	l.RawGetInt(3, 1)
	if !l.IsFunction(-1) {
		return raise(l, &ShapeError{Field: "pam_conversation[1]", Want: "function", Got: lua.TypeNameOf(l, -1)})
	}
	l.Pop(1)

	h := &handle{service: service, session: uuid.New()}
	m.registry.Set(l, 3, h.session)
	conv := m.conversation(l)

	return m.invoke(l, "start", h,
		func() (Handle, Status) { return m.fw.Start(service, user, conv) },
		func(native Handle) int {
			h.native = native
			pushHandle(l, h)
			return 1
		})
}

func (m *module) endTransaction(l *lua.State) int {
	h := checkHandle(l, 1)
	status := Status(lua.CheckInteger(l, 2))
	return m.invoke(l, "end", h,
		func() (Handle, Status) { return h.native, m.fw.End(h.native, status) },
		pushTrue(l))
}

// flagOp builds the Lua function for a blocking call taking only flags.
func (m *module) flagOp(op string, f func(Handle, Flags) Status) lua.Function {
	return func(l *lua.State) int {
		h := checkHandle(l, 1)
		flags, err := optFlags(l, 2)
		if err != nil {
			return raise(l, err)
		}
		return m.invoke(l, op, h,
			func() (Handle, Status) { return h.native, f(h.native, flags) },
			pushTrue(l))
	}
}

func (m *module) setItem(l *lua.State) int {
	h := checkHandle(l, 1)
	item := Item(lua.CheckInteger(l, 2))
	// PAM_CONV would need the conversation registered by start; PAM_FAIL_DELAY
	// needs a delay_fn wrapper.
	if item == ItemConv || item == ItemFailDelay {
		return raise(l, ErrNotImplemented)
	}
	value := lua.CheckString(l, 3)
	return m.invoke(l, "set_item", h,
		func() (Handle, Status) { return h.native, m.fw.SetItem(h.native, item, value) },
		pushTrue(l))
}

func (m *module) getItem(l *lua.State) int {
	h := checkHandle(l, 1)
	item := Item(lua.CheckInteger(l, 2))
	if item == ItemConv || item == ItemFailDelay || item == ItemXAuthData {
		return raise(l, ErrNotImplemented)
	}
	var (
		value string
		set   bool
	)
	return m.invoke(l, "get_item", h,
		func() (Handle, Status) {
			var st Status
			value, set, st = m.fw.GetItem(h.native, item)
			return h.native, st
		},
		func(Handle) int {
			if !set {
				l.PushNil()
				return 1
			}
			l.PushString(value)
			return 1
		})
}

func (m *module) putEnv(l *lua.State) int {
	h := checkHandle(l, 1)
	nameValue := lua.CheckString(l, 2)
	return m.invoke(l, "putenv", h,
		func() (Handle, Status) { return h.native, m.fw.PutEnv(h.native, nameValue) },
		pushTrue(l))
}

func (m *module) getEnv(l *lua.State) int {
	h := checkHandle(l, 1)
	name := lua.CheckString(l, 2)
	value, ok := m.fw.GetEnv(h.native, name)
	if !ok {
		l.PushNil()
		return 1
	}
	l.PushString(value)
	return 1
}

// getEnvList returns the PAM environment as a {NAME = value} table.
func (m *module) getEnvList(l *lua.State) int {
	h := checkHandle(l, 1)
	var env []string
	return m.invoke(l, "getenvlist", h,
		func() (Handle, Status) {
			var st Status
			env, st = m.fw.GetEnvList(h.native)
			return h.native, st
		},
		func(Handle) int {
			l.CreateTable(0, len(env))
			for _, kv := range env {
				name, value, _ := strings.Cut(kv, "=")
				l.PushString(value)
				l.SetField(-2, name)
			}
			return 1
		})
}

func (m *module) strError(l *lua.State) int {
	h := checkHandle(l, 1)
	code := Status(lua.CheckInteger(l, 2))
	l.PushString(m.fw.StrError(h.native, code))
	return 1
}

func notImplemented(l *lua.State) int {
	return raise(l, ErrNotImplemented)
}

func pushTrue(l *lua.State) func(Handle) int {
	return func(Handle) int {
		l.PushBoolean(true)
		return 1
	}
}

// raise throws err as a Lua error. It does not return.
func raise(l *lua.State, err error) int {
	lua.Errorf(l, "%s", err.Error())
	return 0
}
