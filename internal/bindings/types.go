package bindings

import (
	"errors"
	"fmt"
)

// Handle is an opaque identifier for one native PAM transaction. It indexes
// the session table kept by this package; the pam_handle_t pointer itself
// never leaves the cgo layer.
type Handle uintptr

// Status is a PAM return code.
type Status int

// Style is the pam_message msg_style of a conversation message.
type Style int

// Item is a pam_set_item/pam_get_item item type.
type Item int

// Flags are the flags argument of the blocking PAM calls.
type Flags int

// Values mirror the Linux-PAM headers. The cgo build checks them against the
// real header at init time.
const (
	Success             Status = 0
	OpenErr             Status = 1
	SymbolErr           Status = 2
	ServiceErr          Status = 3
	SystemErr           Status = 4
	BufErr              Status = 5
	PermDenied          Status = 6
	AuthErr             Status = 7
	CredInsufficient    Status = 8
	AuthinfoUnavail     Status = 9
	UserUnknown         Status = 10
	MaxTries            Status = 11
	NewAuthtokReqd      Status = 12
	AcctExpired         Status = 13
	SessionErr          Status = 14
	CredUnavail         Status = 15
	CredExpired         Status = 16
	CredErr             Status = 17
	NoModuleData        Status = 18
	ConvErr             Status = 19
	AuthtokErr          Status = 20
	AuthtokRecoveryErr  Status = 21
	AuthtokLockBusy     Status = 22
	AuthtokDisableAging Status = 23
	TryAgain            Status = 24
	Ignore              Status = 25
	Abort               Status = 26
	AuthtokExpired      Status = 27
	ModuleUnknown       Status = 28
	BadItem             Status = 29
	ConvAgain           Status = 30
	Incomplete          Status = 31
)

const (
	PromptEchoOff Style = 1
	PromptEchoOn  Style = 2
	ErrorMsg      Style = 3
	TextInfo      Style = 4
)

const (
	ItemService     Item = 1
	ItemUser        Item = 2
	ItemTTY         Item = 3
	ItemRHost       Item = 4
	ItemConv        Item = 5
	ItemAuthtok     Item = 6
	ItemOldAuthtok  Item = 7
	ItemRUser       Item = 8
	ItemUserPrompt  Item = 9
	ItemFailDelay   Item = 10
	ItemXDisplay    Item = 11
	ItemXAuthData   Item = 12
	ItemAuthtokType Item = 13
)

const (
	DisallowNullAuthtok  Flags = 0x0001
	EstablishCred        Flags = 0x0002
	DeleteCred           Flags = 0x0004
	ReinitializeCred     Flags = 0x0008
	RefreshCred          Flags = 0x0010
	ChangeExpiredAuthtok Flags = 0x0020
	Silent               Flags = 0x8000
)

var statusText = map[Status]string{
	Success:             "Success",
	OpenErr:             "Failed to load module",
	SymbolErr:           "Symbol not found",
	ServiceErr:          "Error in service module",
	SystemErr:           "System error",
	BufErr:              "Memory buffer error",
	PermDenied:          "Permission denied",
	AuthErr:             "Authentication failure",
	CredInsufficient:    "Insufficient credentials to access authentication data",
	AuthinfoUnavail:     "Authentication service cannot retrieve authentication info",
	UserUnknown:         "User not known to the underlying authentication module",
	MaxTries:            "Have exhausted maximum number of retries for service",
	NewAuthtokReqd:      "Authentication token is no longer valid; new one required",
	AcctExpired:         "User account has expired",
	SessionErr:          "Cannot make/remove an entry for the specified session",
	CredUnavail:         "Authentication service cannot retrieve user credentials",
	CredExpired:         "User credentials expired",
	CredErr:             "Failure setting user credentials",
	NoModuleData:        "No module specific data is present",
	ConvErr:             "Conversation error",
	AuthtokErr:          "Authentication token manipulation error",
	AuthtokRecoveryErr:  "Authentication information cannot be recovered",
	AuthtokLockBusy:     "Authentication token lock busy",
	AuthtokDisableAging: "Authentication token aging disabled",
	TryAgain:            "Failed preliminary check by password service",
	Ignore:              "The return value should be ignored by PAM dispatch",
	Abort:               "Critical error - immediate abort",
	AuthtokExpired:      "Authentication token expired",
	ModuleUnknown:       "Module is unknown",
	BadItem:             "Bad item passed to pam_*_item()",
	ConvAgain:           "Conversation is waiting for event",
	Incomplete:          "Application needs to call libpam again",
}

// Text returns the Linux-PAM description of s without consulting libpam.
func (s Status) Text() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return fmt.Sprintf("Unknown PAM error %d", int(s))
}

// Error lets a non-success status travel as a Go error.
func (s Status) Error() string { return s.Text() }

func (s Status) String() string { return s.Text() }

// Message is one prompt handed to the conversation function. Text is a copy
// of the native string.
type Message struct {
	Style Style
	Text  string
}

// Response answers the Message at the same position.
type Response struct {
	Text    string
	RetCode int
}

// Conversation is the Go side of a pam_conv callback. It runs synchronously
// on the goroutine that issued the blocking PAM call. A nil error must come
// with exactly one Response per Message; anything else is reported to the
// framework as PAM_CONV_ERR.
type Conversation func([]Message) ([]Response, error)

var (
	// ErrNotBuilt reports that libpam was not linked into the current binary.
	ErrNotBuilt = errors.New("luapam/internal/bindings: native bindings not built")
)
