package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/angelware-net/spectre/common"
	"github.com/angelware-net/spectre/internal/gamelog"
	"github.com/angelware-net/spectre/pkg/auth"
	"github.com/angelware-net/spectre/pkg/catalog"
	"github.com/angelware-net/spectre/pkg/cookiestore"
	"github.com/angelware-net/spectre/pkg/kvstore"
	"github.com/angelware-net/spectre/pkg/logger"
	"github.com/angelware-net/spectre/pkg/session"
	"github.com/angelware-net/spectre/pkg/vrchat"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

// config is read from the environment on every command.
type config struct {
	Dir         string
	APIBase     string
	WebBase     string
	PipelineURL string
	Proxy       string
	Timeout     time.Duration
	RPCSecret   string
	RPCPort     int
	ListenAll   bool
	LogFile     string
	Debug       bool
}

// configDir returns SPECTRE_CONFIG_DIR or <user config dir>/spectre.
func configDir() (string, error) {
	if dir := os.Getenv(common.ConfigDirEnv); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate config directory, set %s: %w", common.ConfigDirEnv, err)
	}
	return filepath.Join(base, "spectre"), nil
}

func loadConfig() (*config, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	cfg := &config{
		Dir:         dir,
		APIBase:     os.Getenv(common.APIBaseEnv),
		WebBase:     os.Getenv(common.WebBaseEnv),
		PipelineURL: os.Getenv(common.PipelineURLEnv),
		Proxy:       os.Getenv(common.ProxyEnv),
		Timeout:     common.DefaultHTTPTimeout,
		RPCSecret:   os.Getenv(common.RPCSecretEnv),
		RPCPort:     common.DefaultRPCPort,
		LogFile:     os.Getenv(common.LogFileEnv),
	}
	if v := os.Getenv(common.HTTPTimeoutEnv); v != "" {
		cfg.Timeout, err = time.ParseDuration(v)
		if err != nil || cfg.Timeout < 0 {
			return nil, fmt.Errorf("invalid %s %q", common.HTTPTimeoutEnv, v)
		}
	}
	if v := os.Getenv(common.RPCPortEnv); v != "" {
		cfg.RPCPort, err = strconv.Atoi(v)
		if err != nil || cfg.RPCPort < 0 || cfg.RPCPort > 65535 {
			return nil, fmt.Errorf("invalid %s %q", common.RPCPortEnv, v)
		}
	}
	if v := os.Getenv(common.RPCListenAllEnv); v != "" {
		cfg.ListenAll, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", common.RPCListenAllEnv, v)
		}
	}
	if v := os.Getenv(common.DebugEnv); v != "" {
		cfg.Debug, _ = strconv.ParseBool(v)
	}
	return cfg, nil
}

// backend is the set of components a command works with. Nothing in it
// holds session state; the cookie file is read again on every call.
type backend struct {
	cfg      *config
	log      logger.Logger
	cookies  *cookiestore.Store
	settings *kvstore.Store
	sessions *session.Manager
	client   *vrchat.Client
	auth     *auth.Controller
	catalog  *catalog.Catalog
}

func newBackend(cfg *config) (*backend, error) {
	var l logger.Logger = logger.New(os.Stderr, cfg.Debug)
	if cfg.LogFile != "" {
		fl, err := logger.OpenFile(cfg.LogFile, cfg.Debug)
		if err != nil {
			return nil, err
		}
		l = logger.NewMultiLogger(l, fl)
	}
	b, err := assemble(cfg, l)
	if err != nil {
		l.Close()
		return nil, err
	}
	return b, nil
}

func assemble(cfg *config, l logger.Logger) (*backend, error) {
	fs := afero.NewOsFs()
	cookies, err := cookiestore.Open(fs, cfg.Dir, l)
	if err != nil {
		return nil, err
	}
	settings, err := kvstore.Open(fs, cfg.Dir, common.SettingsFile)
	if err != nil {
		return nil, err
	}
	settings.SetLogger(l)
	sessions := session.NewManager(cookies, l)
	client, err := vrchat.NewClient(sessions, &vrchat.Options{
		APIBase:  cfg.APIBase,
		WebBase:  cfg.WebBase,
		Timeout:  cfg.Timeout,
		ProxyURL: cfg.Proxy,
		Logger:   l,
	})
	if err != nil {
		return nil, err
	}
	return &backend{
		cfg:      cfg,
		log:      l,
		cookies:  cookies,
		settings: settings,
		sessions: sessions,
		client:   client,
		auth:     auth.NewController(client, cookies, l),
		catalog:  catalog.New(client),
	}, nil
}

// close releases the log file, if any.
func (b *backend) close() {
	b.log.Close()
}

func (b *backend) openGameLog() (*gamelog.Store, error) {
	return gamelog.Open(b.cfg.Dir, b.log)
}

// getBackend loads the configuration and builds the backend, printing
// any failure in the runtime error format. A nil backend means the error
// was already reported. Callers close a non-nil backend.
func getBackend(ctx *cli.Context, cmd string) *backend {
	cfg, err := loadConfig()
	if err != nil {
		printRuntimeErr(ctx, cmd, "load_config", err)
		return nil
	}
	b, err := newBackend(cfg)
	if err != nil {
		printRuntimeErr(ctx, cmd, "init", err)
		return nil
	}
	return b
}
