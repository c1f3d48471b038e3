package common

import "time"

const (
	// UserAgent is sent on every outbound request.
	UserAgent = "Spectre/2.0"

	DefaultAPIBase     = "https://api.vrchat.cloud/api/1"
	DefaultWebBase     = "https://vrchat.com/api/1"
	DefaultPipelineURL = "wss://pipeline.vrchat.cloud/"

	DefaultHTTPTimeout = 30 * time.Second
	DefaultRPCPort     = 40601
)

// Files kept in the data directory.
const (
	CookieFile   = ".cookies.dat"
	SettingsFile = ".settings.dat"
	GameLogFile  = "spectre.db"
)

// RPCMethod is the name of a JSON-RPC method exposed to the UI.
type RPCMethod string

const (
	RPC_SYSTEM_VERSION    RPCMethod = "system.getVersion"
	RPC_SERVER_TIME       RPCMethod = "vrc.getServerTime"
	RPC_VISITOR_COUNT     RPCMethod = "vrc.getVisitorCount"
	RPC_REQUEST           RPCMethod = "vrc.request"
	RPC_CALL              RPCMethod = "vrc.call"
	RPC_ENDPOINTS         RPCMethod = "vrc.endpoints"
	RPC_LOGIN             RPCMethod = "auth.login"
	RPC_VERIFY_TOTP       RPCMethod = "auth.verifyTotp"
	RPC_VERIFY_EMAIL_OTP  RPCMethod = "auth.verifyEmailOtp"
	RPC_LOGOUT            RPCMethod = "auth.logout"
	RPC_AUTH_STATUS       RPCMethod = "auth.status"
	RPC_COOKIES_LOAD      RPCMethod = "cookies.load"
	RPC_COOKIES_SAVE      RPCMethod = "cookies.save"
	RPC_COOKIES_LOAD_OTP  RPCMethod = "cookies.loadOtp"
	RPC_COOKIES_SAVE_OTP  RPCMethod = "cookies.saveOtp"
	RPC_COOKIES_CLEAR     RPCMethod = "cookies.clear"
	RPC_COOKIES_IMPORT    RPCMethod = "cookies.import"
	RPC_SETTINGS_GET      RPCMethod = "settings.get"
	RPC_SETTINGS_SET      RPCMethod = "settings.set"
	RPC_GAMELOG_ADD       RPCMethod = "gamelog.add"
	RPC_GAMELOG_LIST      RPCMethod = "gamelog.list"
)
