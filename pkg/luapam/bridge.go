package luapam

import (
	"context"
	"errors"

	"github.com/Shopify/go-lua"

	"github.com/hsiuhsiu/luapam-go/pkg/luapam/logging"
)

// conversation returns the Conversation handed to the framework for
// transactions started from l. l is the runtime identity the registry is
// consulted with on every re-entry.
func (m *module) conversation(l *lua.State) Conversation {
	return func(msgs []Message) ([]Response, error) {
		ch := m.channel()
		if ch == nil {
			// Re-entered outside a wrapped call; nobody will read the
			// details, so only a fatal error is worth reporting.
			ch = &errorChannel{}
			defer func() {
				if ch.fatal != nil {
					m.log.Warn(context.Background(), "conversation failed outside a pam call", "error", ch.fatal)
				}
			}()
		}
		return m.converse(l, ch, msgs)
	}
}

// converse runs one exchange: it calls the registered Lua callback with the
// messages and context and validates what comes back.
//
// Domain failures (the callback raised, returned nil, or returned the wrong
// number of responses) are recorded as details on ch. Shape violations are
// stored as ch's fatal error so they can be raised once the native call has
// unwound. Either way the framework only sees a non-nil error.
func (m *module) converse(l *lua.State, ch *errorChannel, msgs []Message) ([]Response, error) {
	ctx := context.Background()
	ch.exchanges++

	reg, ok := m.registry.Get(l)
	if !ok {
		ch.fail(ErrNoRegistration)
		return nil, ErrNoRegistration
	}
	log := m.log.With("session", reg.Session.String())

	base := l.Top()
	defer l.SetTop(base)

	if !m.registry.push(l) {
		ch.fail(ErrNoRegistration)
		return nil, ErrNoRegistration
	}
	pushMessages(l, msgs)
	l.Insert(-2)

	log.Debug(ctx, "conversation", "messages", len(msgs), "styles", styles(msgs))

	if err := l.ProtectedCall(2, 2, 0); err != nil {
		ch.record(l, -1)
		log.Debug(ctx, "conversation callback raised", "error", err)
		return nil, errConversation
	}

	primary := base + 1
	if l.IsNil(primary) {
		if !l.IsNil(primary + 1) {
			ch.record(l, primary+1)
		} else {
			ch.recordString("Unknown error")
		}
		return nil, errConversation
	}

	resps, err := decodeResponses(l, primary, len(msgs))
	if err != nil {
		var count *CountMismatchError
		if errors.As(err, &count) {
			ch.recordString(count.Error())
			return nil, err
		}
		ch.fail(err)
		return nil, err
	}

	log.Debug(ctx, "conversation answered", "responses", len(resps), logging.Redacted("response"))
	return resps, nil
}

// pushMessages pushes { {style, text}, ... } in message order.
func pushMessages(l *lua.State, msgs []Message) {
	l.CreateTable(len(msgs), 0)
	for i, msg := range msgs {
		l.CreateTable(2, 0)
		l.PushInteger(int(msg.Style))
		l.RawSetInt(-2, 1)
		l.PushString(msg.Text)
		l.RawSetInt(-2, 2)
		l.RawSetInt(-2, i+1)
	}
}

func styles(msgs []Message) []int {
	out := make([]int, len(msgs))
	for i, msg := range msgs {
		out[i] = int(msg.Style)
	}
	return out
}
