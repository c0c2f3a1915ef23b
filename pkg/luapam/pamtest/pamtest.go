package pamtest

import (
	"crypto/subtle"
	"strings"
	"sync"

	"github.com/hsiuhsiu/luapam-go/pkg/luapam"
)

// Op names a framework operation whose result a Service can force.
type Op string

const (
	OpStart        Op = "start"
	OpEnd          Op = "end"
	OpAuthenticate Op = "authenticate"
	OpSetCred      Op = "setcred"
	OpAcctMgmt     Op = "acct_mgmt"
	OpChAuthTok    Op = "chauthtok"
	OpOpenSession  Op = "open_session"
	OpCloseSession Op = "close_session"
)

const (
	loginPrompt   = "login: "
	passwdPrompt  = "Password: "
	newPrompt     = "New password: "
	confirmPrompt = "Retype new password: "
)

// Service is one service configuration known to the fake.
type Service struct {
	Name string
	// Users maps user names to passwords.
	Users map[string]string
	// Prompts are sent in a single exchange by Authenticate. The first
	// PromptEchoOff answer is the password. Empty means one "Password: ".
	Prompts []luapam.Message
	// Status forces the result of an operation without running it.
	Status map[Op]luapam.Status
}

type session struct {
	service *Service
	user    string
	hasUser bool
	conv    luapam.Conversation

	items      map[luapam.Item]string
	envNames   []string
	env        map[string]string
	open       bool
	cred       bool
	transcript [][]luapam.Message
}

// Framework is an in-process luapam.Framework. It is safe for concurrent
// use and never holds its lock while a conversation runs.
type Framework struct {
	mu       sync.Mutex
	services map[string]*Service
	sessions map[luapam.Handle]*session
	next     luapam.Handle
}

var _ luapam.Framework = (*Framework)(nil)

// New returns a Framework serving the given services. Users maps are
// copied, so ChAuthTok does not write through to the caller.
func New(services ...Service) *Framework {
	f := &Framework{
		services: make(map[string]*Service, len(services)),
		sessions: make(map[luapam.Handle]*session),
	}
	for _, svc := range services {
		svc := svc
		users := make(map[string]string, len(svc.Users))
		for u, p := range svc.Users {
			users[u] = p
		}
		svc.Users = users
		f.services[svc.Name] = &svc
	}
	return f
}

func (f *Framework) lookup(h luapam.Handle) (*session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[h]
	return s, ok
}

func (f *Framework) forced(s *session, op Op) (luapam.Status, bool) {
	st, ok := s.service.Status[op]
	return st, ok
}

// converse runs one exchange and records it. A conversation error or a
// short answer is PAM_CONV_ERR.
func (f *Framework) converse(s *session, msgs []luapam.Message) ([]luapam.Response, luapam.Status) {
	f.mu.Lock()
	s.transcript = append(s.transcript, append([]luapam.Message(nil), msgs...))
	conv := s.conv
	f.mu.Unlock()

	resps, err := conv(msgs)
	if err != nil || len(resps) != len(msgs) {
		return nil, luapam.ConvErr
	}
	return resps, luapam.Success
}

// ensureUser prompts for the user name when the transaction has none.
func (f *Framework) ensureUser(s *session) (string, luapam.Status) {
	f.mu.Lock()
	user, ok := s.user, s.hasUser
	f.mu.Unlock()
	if ok {
		return user, luapam.Success
	}

	resps, st := f.converse(s, []luapam.Message{{Style: luapam.PromptEchoOn, Text: loginPrompt}})
	if st != luapam.Success {
		return "", st
	}
	user = resps[0].Text

	f.mu.Lock()
	s.user, s.hasUser = user, true
	s.items[luapam.ItemUser] = user
	f.mu.Unlock()
	return user, luapam.Success
}

func (f *Framework) Start(service string, user *string, conv luapam.Conversation) (luapam.Handle, luapam.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	svc, ok := f.services[service]
	if !ok || conv == nil {
		return 0, luapam.SystemErr
	}
	if st, ok := svc.Status[OpStart]; ok {
		return 0, st
	}

	s := &session{
		service: svc,
		conv:    conv,
		items:   map[luapam.Item]string{luapam.ItemService: service},
		env:     make(map[string]string),
	}
	if user != nil {
		s.user, s.hasUser = *user, true
		s.items[luapam.ItemUser] = *user
	}
	f.next++
	f.sessions[f.next] = s
	return f.next, luapam.Success
}

func (f *Framework) End(h luapam.Handle, status luapam.Status) luapam.Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[h]
	if !ok {
		return luapam.SystemErr
	}
	delete(f.sessions, h)
	if st, ok := s.service.Status[OpEnd]; ok {
		return st
	}
	return luapam.Success
}

func (f *Framework) Authenticate(h luapam.Handle, flags luapam.Flags) luapam.Status {
	s, ok := f.lookup(h)
	if !ok {
		return luapam.SystemErr
	}
	if st, ok := f.forced(s, OpAuthenticate); ok {
		return st
	}

	user, st := f.ensureUser(s)
	if st != luapam.Success {
		return st
	}

	prompts := s.service.Prompts
	if len(prompts) == 0 {
		prompts = []luapam.Message{{Style: luapam.PromptEchoOff, Text: passwdPrompt}}
	}
	resps, st := f.converse(s, prompts)
	if st != luapam.Success {
		return st
	}

	password, found := "", false
	for i, p := range prompts {
		if p.Style == luapam.PromptEchoOff {
			password, found = resps[i].Text, true
			break
		}
	}
	if !found {
		return luapam.AuthErr
	}
	if password == "" && flags&luapam.DisallowNullAuthtok != 0 {
		return luapam.AuthErr
	}

	f.mu.Lock()
	want, known := s.service.Users[user]
	f.mu.Unlock()
	if !known {
		return luapam.UserUnknown
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(want)) != 1 {
		return luapam.AuthErr
	}
	return luapam.Success
}

func (f *Framework) SetCred(h luapam.Handle, flags luapam.Flags) luapam.Status {
	s, ok := f.lookup(h)
	if !ok {
		return luapam.SystemErr
	}
	if st, ok := f.forced(s, OpSetCred); ok {
		return st
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case flags&luapam.DeleteCred != 0:
		s.cred = false
	default:
		s.cred = true
	}
	return luapam.Success
}

func (f *Framework) AcctMgmt(h luapam.Handle, _ luapam.Flags) luapam.Status {
	s, ok := f.lookup(h)
	if !ok {
		return luapam.SystemErr
	}
	if st, ok := f.forced(s, OpAcctMgmt); ok {
		return st
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !s.hasUser {
		return luapam.UserUnknown
	}
	if _, known := s.service.Users[s.user]; !known {
		return luapam.UserUnknown
	}
	return luapam.Success
}

func (f *Framework) ChAuthTok(h luapam.Handle, _ luapam.Flags) luapam.Status {
	s, ok := f.lookup(h)
	if !ok {
		return luapam.SystemErr
	}
	if st, ok := f.forced(s, OpChAuthTok); ok {
		return st
	}

	user, st := f.ensureUser(s)
	if st != luapam.Success {
		return st
	}
	resps, st := f.converse(s, []luapam.Message{
		{Style: luapam.PromptEchoOff, Text: newPrompt},
		{Style: luapam.PromptEchoOff, Text: confirmPrompt},
	})
	if st != luapam.Success {
		return st
	}
	if subtle.ConstantTimeCompare([]byte(resps[0].Text), []byte(resps[1].Text)) != 1 {
		return luapam.AuthtokErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, known := s.service.Users[user]; !known {
		return luapam.UserUnknown
	}
	s.service.Users[user] = resps[0].Text
	return luapam.Success
}

func (f *Framework) OpenSession(h luapam.Handle, _ luapam.Flags) luapam.Status {
	s, ok := f.lookup(h)
	if !ok {
		return luapam.SystemErr
	}
	if st, ok := f.forced(s, OpOpenSession); ok {
		return st
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	s.open = true
	return luapam.Success
}

func (f *Framework) CloseSession(h luapam.Handle, _ luapam.Flags) luapam.Status {
	s, ok := f.lookup(h)
	if !ok {
		return luapam.SystemErr
	}
	if st, ok := f.forced(s, OpCloseSession); ok {
		return st
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !s.open {
		return luapam.SessionErr
	}
	s.open = false
	return luapam.Success
}

func validItem(item luapam.Item) bool {
	return item >= luapam.ItemService && item <= luapam.ItemAuthtokType
}

func (f *Framework) SetItem(h luapam.Handle, item luapam.Item, value string) luapam.Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[h]
	if !ok {
		return luapam.SystemErr
	}
	if !validItem(item) {
		return luapam.BadItem
	}
	s.items[item] = value
	if item == luapam.ItemUser {
		s.user, s.hasUser = value, true
	}
	return luapam.Success
}

func (f *Framework) GetItem(h luapam.Handle, item luapam.Item) (string, bool, luapam.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[h]
	if !ok {
		return "", false, luapam.SystemErr
	}
	if !validItem(item) {
		return "", false, luapam.BadItem
	}
	v, set := s.items[item]
	return v, set, luapam.Success
}

func (f *Framework) PutEnv(h luapam.Handle, nameValue string) luapam.Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[h]
	if !ok {
		return luapam.SystemErr
	}
	name, value, assign := strings.Cut(nameValue, "=")
	if name == "" {
		return luapam.BadItem
	}

	_, exists := s.env[name]
	if !assign {
		if !exists {
			return luapam.BadItem
		}
		delete(s.env, name)
		for i, n := range s.envNames {
			if n == name {
				s.envNames = append(s.envNames[:i], s.envNames[i+1:]...)
				break
			}
		}
		return luapam.Success
	}
	if !exists {
		s.envNames = append(s.envNames, name)
	}
	s.env[name] = value
	return luapam.Success
}

func (f *Framework) GetEnv(h luapam.Handle, name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[h]
	if !ok {
		return "", false
	}
	v, ok := s.env[name]
	return v, ok
}

func (f *Framework) GetEnvList(h luapam.Handle) ([]string, luapam.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[h]
	if !ok {
		return nil, luapam.SystemErr
	}
	out := make([]string, 0, len(s.envNames))
	for _, n := range s.envNames {
		out = append(out, n+"="+s.env[n])
	}
	return out, luapam.Success
}

func (f *Framework) StrError(_ luapam.Handle, status luapam.Status) string {
	return status.Text()
}

// Sessions reports how many transactions have been started and not ended.
func (f *Framework) Sessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

// Transcript returns every exchange sent to h's conversation, in order.
func (f *Framework) Transcript(h luapam.Handle) [][]luapam.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[h]
	if !ok {
		return nil
	}
	out := make([][]luapam.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// SessionOpen reports whether open_session has been called on h without a
// matching close_session.
func (f *Framework) SessionOpen(h luapam.Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[h]
	return ok && s.open
}

// Verify reports whether password is the current credential of user.
func (f *Framework) Verify(service, user, password string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	svc, ok := f.services[service]
	if !ok {
		return false
	}
	want, ok := svc.Users[user]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(want)) == 1
}
