package luapam

import "github.com/hsiuhsiu/luapam-go/internal/bindings"

// Native types re-exported so Framework implementations outside this module
// can name them.

type (
	Handle       = bindings.Handle
	Status       = bindings.Status
	Style        = bindings.Style
	Item         = bindings.Item
	Flags        = bindings.Flags
	Message      = bindings.Message
	Response     = bindings.Response
	Conversation = bindings.Conversation
)

const (
	Success             = bindings.Success
	OpenErr             = bindings.OpenErr
	SymbolErr           = bindings.SymbolErr
	ServiceErr          = bindings.ServiceErr
	SystemErr           = bindings.SystemErr
	BufErr              = bindings.BufErr
	PermDenied          = bindings.PermDenied
	AuthErr             = bindings.AuthErr
	CredInsufficient    = bindings.CredInsufficient
	AuthinfoUnavail     = bindings.AuthinfoUnavail
	UserUnknown         = bindings.UserUnknown
	MaxTries            = bindings.MaxTries
	NewAuthtokReqd      = bindings.NewAuthtokReqd
	AcctExpired         = bindings.AcctExpired
	SessionErr          = bindings.SessionErr
	CredUnavail         = bindings.CredUnavail
	CredExpired         = bindings.CredExpired
	CredErr             = bindings.CredErr
	NoModuleData        = bindings.NoModuleData
	ConvErr             = bindings.ConvErr
	AuthtokErr          = bindings.AuthtokErr
	AuthtokRecoveryErr  = bindings.AuthtokRecoveryErr
	AuthtokLockBusy     = bindings.AuthtokLockBusy
	AuthtokDisableAging = bindings.AuthtokDisableAging
	TryAgain            = bindings.TryAgain
	Ignore              = bindings.Ignore
	Abort               = bindings.Abort
	AuthtokExpired      = bindings.AuthtokExpired
	ModuleUnknown       = bindings.ModuleUnknown
	BadItem             = bindings.BadItem
	ConvAgain           = bindings.ConvAgain
	Incomplete          = bindings.Incomplete
)

const (
	PromptEchoOff = bindings.PromptEchoOff
	PromptEchoOn  = bindings.PromptEchoOn
	ErrorMsg      = bindings.ErrorMsg
	TextInfo      = bindings.TextInfo
)

const (
	ItemService     = bindings.ItemService
	ItemUser        = bindings.ItemUser
	ItemTTY         = bindings.ItemTTY
	ItemRHost       = bindings.ItemRHost
	ItemConv        = bindings.ItemConv
	ItemAuthtok     = bindings.ItemAuthtok
	ItemOldAuthtok  = bindings.ItemOldAuthtok
	ItemRUser       = bindings.ItemRUser
	ItemUserPrompt  = bindings.ItemUserPrompt
	ItemFailDelay   = bindings.ItemFailDelay
	ItemXDisplay    = bindings.ItemXDisplay
	ItemXAuthData   = bindings.ItemXAuthData
	ItemAuthtokType = bindings.ItemAuthtokType
)

const (
	DisallowNullAuthtok  = bindings.DisallowNullAuthtok
	EstablishCred        = bindings.EstablishCred
	DeleteCred           = bindings.DeleteCred
	ReinitializeCred     = bindings.ReinitializeCred
	RefreshCred          = bindings.RefreshCred
	ChangeExpiredAuthtok = bindings.ChangeExpiredAuthtok
	Silent               = bindings.Silent
)
