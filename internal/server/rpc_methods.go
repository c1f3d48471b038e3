package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelware-net/spectre/common"
	"github.com/angelware-net/spectre/internal/browsercookies"
	"github.com/angelware-net/spectre/internal/gamelog"
	"github.com/angelware-net/spectre/pkg/auth"
	"github.com/angelware-net/spectre/pkg/catalog"
	"github.com/angelware-net/spectre/pkg/cookiestore"
	"github.com/angelware-net/spectre/pkg/kvstore"
	"github.com/angelware-net/spectre/pkg/logger"
	"github.com/angelware-net/spectre/pkg/vrchat"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
)

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required -- empty means every call is rejected)
	ListenAll bool   // If true, bind to 0.0.0.0 instead of 127.0.0.1
	Port      int
	Version   string
	Commit    string
	BuildType string
}

// Services are the components the RPC methods dispatch to. GameLog may be
// nil, in which case the gamelog methods fail. A nil Browser reads the
// installed browsers with the server's logger.
type Services struct {
	Client   *vrchat.Client
	Auth     *auth.Controller
	Catalog  *catalog.Catalog
	Cookies  *cookiestore.Store
	Settings *kvstore.Store
	GameLog  *gamelog.Store
	Browser  *browsercookies.Reader
}

// RPCServer exposes Services as JSON-RPC 2.0 methods. Every call is handled
// on its own; nothing about the session is cached between calls.
type RPCServer struct {
	methods   handler.Map
	bridge    jhttp.Bridge
	secret    string
	version   string
	commit    string
	buildType string
	svc       *Services
	browser   *browsercookies.Reader
	log       logger.Logger
}

// NewRPCServer creates a new RPCServer with method handlers and HTTP bridge.
func NewRPCServer(cfg *RPCConfig, svc *Services, l logger.Logger) *RPCServer {
	rs := &RPCServer{
		secret:    cfg.Secret,
		version:   cfg.Version,
		commit:    cfg.Commit,
		buildType: cfg.BuildType,
		svc:       svc,
		log:       logger.OrNop(l),
	}
	rs.browser = svc.Browser
	if rs.browser == nil {
		rs.browser = browsercookies.New(rs.log)
	}

	rs.methods = handler.Map{
		string(common.RPC_SYSTEM_VERSION):   handler.New(rs.systemGetVersion),
		string(common.RPC_SERVER_TIME):      handler.New(rs.vrcServerTime),
		string(common.RPC_VISITOR_COUNT):    handler.New(rs.vrcVisitorCount),
		string(common.RPC_REQUEST):          handler.New(rs.vrcRequest),
		string(common.RPC_CALL):             handler.New(rs.vrcCall),
		string(common.RPC_ENDPOINTS):        handler.New(rs.vrcEndpoints),
		string(common.RPC_LOGIN):            handler.New(rs.authLogin),
		string(common.RPC_VERIFY_TOTP):      handler.New(rs.authVerifyTotp),
		string(common.RPC_VERIFY_EMAIL_OTP): handler.New(rs.authVerifyEmailOtp),
		string(common.RPC_LOGOUT):           handler.New(rs.authLogout),
		string(common.RPC_AUTH_STATUS):      handler.New(rs.authStatus),
		string(common.RPC_COOKIES_LOAD):     handler.New(rs.cookiesLoad),
		string(common.RPC_COOKIES_SAVE):     handler.New(rs.cookiesSave),
		string(common.RPC_COOKIES_LOAD_OTP): handler.New(rs.cookiesLoadOtp),
		string(common.RPC_COOKIES_SAVE_OTP): handler.New(rs.cookiesSaveOtp),
		string(common.RPC_COOKIES_CLEAR):    handler.New(rs.cookiesClear),
		string(common.RPC_COOKIES_IMPORT):   handler.New(rs.cookiesImport),
		string(common.RPC_SETTINGS_GET):     handler.New(rs.settingsGet),
		string(common.RPC_SETTINGS_SET):     handler.New(rs.settingsSet),
		string(common.RPC_GAMELOG_ADD):      handler.New(rs.gamelogAdd),
		string(common.RPC_GAMELOG_LIST):     handler.New(rs.gamelogList),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

// Handler returns the HTTP surface: POST /jsonrpc and GET /jsonrpc/ws, both
// behind the bearer token.
func (rs *RPCServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/jsonrpc", requireToken(rs.secret, rs.bridge))
	mux.Handle("/jsonrpc/ws", requireToken(rs.secret, http.HandlerFunc(rs.serveWS)))
	return mux
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*common.VersionResult, error) {
	return &common.VersionResult{
		Version:   rs.version,
		Commit:    rs.commit,
		BuildType: rs.buildType,
	}, nil
}

func (rs *RPCServer) vrcServerTime(ctx context.Context) (*common.BodyResult, error) {
	body, err := rs.svc.Client.ServerTime(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.BodyResult{Body: body}, nil
}

func (rs *RPCServer) vrcVisitorCount(ctx context.Context) (*common.CountResult, error) {
	n, err := rs.svc.Client.VisitorCount(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.CountResult{Count: n}, nil
}

// vrcRequest sends an arbitrary authenticated request.
func (rs *RPCServer) vrcRequest(ctx context.Context, p *common.RequestParams) (*common.BodyResult, error) {
	body, err := rs.svc.Client.Send(ctx, &vrchat.Request{
		URL:     p.URL,
		Method:  p.Method,
		Headers: vrchat.HeadersFromMap(p.Headers),
		Body:    p.Body,
	})
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.BodyResult{Body: body}, nil
}

// vrcCall dispatches a catalog endpoint by name.
func (rs *RPCServer) vrcCall(ctx context.Context, p *common.CallParams) (*common.BodyResult, error) {
	body, err := rs.svc.Catalog.Call(ctx, p.Endpoint, p.Params)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.BodyResult{Body: body}, nil
}

func (rs *RPCServer) vrcEndpoints(_ context.Context) (*common.EndpointsResult, error) {
	list := catalog.List()
	out := make([]*common.EndpointInfo, 0, len(list))
	for _, e := range list {
		out = append(out, &common.EndpointInfo{
			Name:   e.Name,
			Method: e.Method,
			Path:   e.Path,
			Params: e.Params(),
		})
	}
	return &common.EndpointsResult{Endpoints: out}, nil
}

func (rs *RPCServer) authLogin(ctx context.Context, p *common.LoginParams) (*common.BodyResult, error) {
	body, err := rs.svc.Auth.Login(ctx, p.Username, p.Password)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.BodyResult{Body: body}, nil
}

func (rs *RPCServer) authVerifyTotp(ctx context.Context, p *common.CodeParams) (*common.BodyResult, error) {
	body, err := rs.svc.Auth.VerifyTotp(ctx, p.Code)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.BodyResult{Body: body}, nil
}

func (rs *RPCServer) authVerifyEmailOtp(ctx context.Context, p *common.CodeParams) (*common.BodyResult, error) {
	body, err := rs.svc.Auth.VerifyEmailOtp(ctx, p.Code)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.BodyResult{Body: body}, nil
}

func (rs *RPCServer) authLogout(ctx context.Context) (*common.BodyResult, error) {
	body, err := rs.svc.Auth.Logout(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.BodyResult{Body: body}, nil
}

func (rs *RPCServer) authStatus(_ context.Context) (*common.StatusResult, error) {
	state, ss, err := rs.svc.Auth.Status()
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.StatusResult{
		State:        state.String(),
		HasAuth:      ss.HasAuth,
		HasTwoFactor: ss.HasOTP,
	}, nil
}

func (rs *RPCServer) cookiesLoad(_ context.Context) (*common.ValueResult, error) {
	return valueResult(rs.svc.Cookies.LoadLoginCookies())
}

func (rs *RPCServer) cookiesSave(_ context.Context, p *common.ValueParams) (*common.EmptyResult, error) {
	if strings.TrimSpace(p.Value) == "" {
		return nil, errEmptyCookie
	}
	if err := rs.svc.Cookies.SaveLoginCookies(p.Value); err != nil {
		return nil, rpcError(err)
	}
	return &common.EmptyResult{}, nil
}

func (rs *RPCServer) cookiesLoadOtp(_ context.Context) (*common.ValueResult, error) {
	return valueResult(rs.svc.Cookies.LoadOTPCookies())
}

func (rs *RPCServer) cookiesSaveOtp(_ context.Context, p *common.ValueParams) (*common.EmptyResult, error) {
	if strings.TrimSpace(p.Value) == "" {
		return nil, errEmptyCookie
	}
	if err := rs.svc.Cookies.SaveOTPCookies(p.Value); err != nil {
		return nil, rpcError(err)
	}
	return &common.EmptyResult{}, nil
}

func (rs *RPCServer) cookiesClear(_ context.Context) (*common.EmptyResult, error) {
	if err := rs.svc.Cookies.Clear(); err != nil {
		return nil, rpcError(err)
	}
	return &common.EmptyResult{}, nil
}

func (rs *RPCServer) cookiesImport(ctx context.Context, p *common.ImportParams) (*common.ImportResult, error) {
	src, hasOTP, err := rs.browser.ImportSession(ctx, p.Path, rs.svc.Cookies)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.ImportResult{Browser: src.Browser, HasTwoFactor: hasOTP}, nil
}

func (rs *RPCServer) settingsGet(_ context.Context, p *common.KeyParams) (*common.ValueResult, error) {
	return valueResult(rs.svc.Settings.GetString(p.Key))
}

func (rs *RPCServer) settingsSet(_ context.Context, p *common.SettingParams) (*common.EmptyResult, error) {
	if err := rs.svc.Settings.Set(p.Key, p.Value); err != nil {
		return nil, rpcError(err)
	}
	return &common.EmptyResult{}, nil
}

func (rs *RPCServer) gamelogAdd(ctx context.Context, p *common.LineParams) (*common.AddLogResult, error) {
	if rs.svc.GameLog == nil {
		return nil, errGameLogDisabled
	}
	ok, err := rs.svc.GameLog.Add(ctx, p.Line)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.AddLogResult{Stored: ok}, nil
}

func (rs *RPCServer) gamelogList(ctx context.Context, p *common.GameLogListParams) (*common.GameLogListResult, error) {
	if rs.svc.GameLog == nil {
		return nil, errGameLogDisabled
	}
	entries, err := rs.svc.GameLog.List(ctx, p.Limit, gamelog.Type(p.Type))
	if err != nil {
		return nil, rpcError(err)
	}
	out := make([]*common.GameLogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, &common.GameLogEntry{
			ID:      e.ID,
			Time:    e.Time.Format("2006-01-02T15:04:05Z07:00"),
			Type:    string(e.Type),
			Message: e.Message,
		})
	}
	return &common.GameLogListResult{Entries: out}, nil
}

func valueResult(value string, ok bool, err error) (*common.ValueResult, error) {
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.ValueResult{Value: value, Found: ok}, nil
}

// Blank cookies are refused; they would read back as a stored session.
var errEmptyCookie = &jrpc2.Error{Code: codeInvalidParams, Message: "cookie value cannot be empty, use cookies.clear"}

var errGameLogDisabled = &jrpc2.Error{Code: jrpc2.Code(-32603), Message: "game log is not enabled"}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
