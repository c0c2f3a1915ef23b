package luapam

import "github.com/Shopify/go-lua"

var constants = []struct {
	name  string
	value int
}{
	// Return codes
	{"ABORT", int(Abort)},
	{"ACCT_EXPIRED", int(AcctExpired)},
	{"AUTHINFO_UNAVAIL", int(AuthinfoUnavail)},
	{"AUTHTOK_DISABLE_AGING", int(AuthtokDisableAging)},
	{"AUTHTOK_ERR", int(AuthtokErr)},
	{"AUTHTOK_EXPIRED", int(AuthtokExpired)},
	{"AUTHTOK_LOCK_BUSY", int(AuthtokLockBusy)},
	{"AUTHTOK_RECOVERY_ERR", int(AuthtokRecoveryErr)},
	{"AUTH_ERR", int(AuthErr)},
	{"BAD_ITEM", int(BadItem)},
	{"BUF_ERR", int(BufErr)},
	{"CONV_AGAIN", int(ConvAgain)},
	{"CONV_ERR", int(ConvErr)},
	{"CRED_ERR", int(CredErr)},
	{"CRED_EXPIRED", int(CredExpired)},
	{"CRED_INSUFFICIENT", int(CredInsufficient)},
	{"CRED_UNAVAIL", int(CredUnavail)},
	{"IGNORE", int(Ignore)},
	{"INCOMPLETE", int(Incomplete)},
	{"MAXTRIES", int(MaxTries)},
	{"MODULE_UNKNOWN", int(ModuleUnknown)},
	{"NEW_AUTHTOK_REQD", int(NewAuthtokReqd)},
	{"NO_MODULE_DATA", int(NoModuleData)},
	{"OPEN_ERR", int(OpenErr)},
	{"PERM_DENIED", int(PermDenied)},
	{"SERVICE_ERR", int(ServiceErr)},
	{"SESSION_ERR", int(SessionErr)},
	{"SUCCESS", int(Success)},
	{"SYMBOL_ERR", int(SymbolErr)},
	{"SYSTEM_ERR", int(SystemErr)},
	{"TRY_AGAIN", int(TryAgain)},
	{"USER_UNKNOWN", int(UserUnknown)},

	// Conversation message styles
	{"PROMPT_ECHO_OFF", int(PromptEchoOff)},
	{"PROMPT_ECHO_ON", int(PromptEchoOn)},
	{"ERROR_MSG", int(ErrorMsg)},
	{"TEXT_INFO", int(TextInfo)},

	// Item types
	{"SERVICE", int(ItemService)},
	{"USER", int(ItemUser)},
	{"USER_PROMPT", int(ItemUserPrompt)},
	{"TTY", int(ItemTTY)},
	{"RUSER", int(ItemRUser)},
	{"RHOST", int(ItemRHost)},
	{"AUTHTOK", int(ItemAuthtok)},
	{"OLDAUTHTOK", int(ItemOldAuthtok)},
	{"CONV", int(ItemConv)},
	{"FAIL_DELAY", int(ItemFailDelay)},
	{"XDISPLAY", int(ItemXDisplay)},
	{"XAUTHDATA", int(ItemXAuthData)},
	{"AUTHTOK_TYPE", int(ItemAuthtokType)},

	// Flags
	{"SILENT", int(Silent)},
	{"DISALLOW_NULL_AUTHTOK", int(DisallowNullAuthtok)},
	{"ESTABLISH_CRED", int(EstablishCred)},
	{"DELETE_CRED", int(DeleteCred)},
	{"REINITIALIZE_CRED", int(ReinitializeCred)},
	{"REFRESH_CRED", int(RefreshCred)},
	{"CHANGE_EXPIRED_AUTHTOK", int(ChangeExpiredAuthtok)},
}

// setConstants stores every constant on the table at the top of the stack.
func setConstants(l *lua.State) {
	for _, c := range constants {
		l.PushInteger(c.value)
		l.SetField(-2, c.name)
	}
}
