package cmd

import (
	"github.com/angelware-net/spectre/internal/server"
	"github.com/urfave/cli"
)

var (
	daemonPort      int
	daemonListenAll bool
	daemonSecret    string
	daemonSidecar   string

	daemonFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "port, p",
			Usage:       "TCP port of the JSON-RPC endpoint (default: $SPECTRE_RPC_PORT or 40601)",
			Destination: &daemonPort,
		},
		cli.BoolFlag{
			Name:        "listen-all",
			Usage:       "bind to all interfaces instead of 127.0.0.1",
			Destination: &daemonListenAll,
		},
		cli.StringFlag{
			Name:        "secret, s",
			Usage:       "bearer token required by every call (default: $SPECTRE_RPC_SECRET)",
			Destination: &daemonSecret,
		},
		cli.StringFlag{
			Name:        "sidecar",
			Usage:       "websocket URL of the log reader sidecar, e.g. ws://127.0.0.1:40602",
			Destination: &daemonSidecar,
		},
	}
)

func daemon(ctx *cli.Context) error {
	b := getBackend(ctx, "daemon")
	if b == nil {
		return nil
	}
	defer b.close()
	cfg := &server.RPCConfig{
		Secret:    b.cfg.RPCSecret,
		ListenAll: b.cfg.ListenAll || daemonListenAll,
		Port:      b.cfg.RPCPort,
		Version:   buildInfo.Version,
		Commit:    buildInfo.Commit,
		BuildType: buildInfo.BuildType,
	}
	if ctx.IsSet("port") {
		cfg.Port = daemonPort
	}
	if daemonSecret != "" {
		cfg.Secret = daemonSecret
	}
	if cfg.Secret == "" {
		b.log.Warning("no rpc secret configured, every call will be rejected")
	}

	gl, err := b.openGameLog()
	if err != nil {
		printRuntimeErr(ctx, "daemon", "open_gamelog", err)
		return nil
	}
	defer gl.Close()

	sctx, cancel := runContext()
	defer cancel()

	followed := make(chan struct{})
	if daemonSidecar == "" {
		close(followed)
	} else {
		go func(url string) {
			defer close(followed)
			n, err := gl.Follow(sctx, url)
			if err != nil {
				b.log.Warning("gamelog: sidecar %s: %v", url, err)
			}
			b.log.Info("gamelog: stored %d lines from sidecar", n)
		}(daemonSidecar)
	}

	serv := server.NewServer(cfg, &server.Services{
		Client:   b.client,
		Auth:     b.auth,
		Catalog:  b.catalog,
		Cookies:  b.cookies,
		Settings: b.settings,
		GameLog:  gl,
	}, b.log)
	if err := serv.Start(sctx); err != nil {
		printRuntimeErr(ctx, "daemon", "start", err)
	}
	cancel()
	<-followed
	return nil
}
