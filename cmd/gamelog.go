package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/angelware-net/spectre/cmd/common"
	"github.com/angelware-net/spectre/internal/gamelog"
	"github.com/urfave/cli"
)

var (
	gamelogLimit   int
	gamelogType    string
	gamelogSidecar string

	gamelogListFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "limit, n",
			Usage:       "maximum number of events",
			Value:       gamelog.DefaultListLimit,
			Destination: &gamelogLimit,
		},
		cli.StringFlag{
			Name:        "type, t",
			Usage:       "only list events of this type (Error, OnPlayerJoined, OnPlayerLeft)",
			Destination: &gamelogType,
		},
	}
	gamelogFollowFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "url",
			Usage:       "websocket URL of the log reader sidecar",
			Value:       gamelog.DefaultSidecarURL,
			Destination: &gamelogSidecar,
		},
	}
)

func gamelogIngest(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no file provided"))
	}
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			printRuntimeErr(ctx, "gamelog", "open_file", err)
			return nil
		}
		defer f.Close()
		r = f
	}
	b := getBackend(ctx, "gamelog")
	if b == nil {
		return nil
	}
	defer b.close()
	gl, err := b.openGameLog()
	if err != nil {
		printRuntimeErr(ctx, "gamelog", "open_db", err)
		return nil
	}
	defer gl.Close()
	n, err := gl.Ingest(context.Background(), r)
	if err != nil {
		printRuntimeErr(ctx, "gamelog", "ingest", err)
	}
	fmt.Printf("Stored %d events\n", n)
	return nil
}

func gamelogList(ctx *cli.Context) error {
	b := getBackend(ctx, "gamelog")
	if b == nil {
		return nil
	}
	defer b.close()
	gl, err := b.openGameLog()
	if err != nil {
		printRuntimeErr(ctx, "gamelog", "open_db", err)
		return nil
	}
	defer gl.Close()
	entries, err := gl.List(context.Background(), gamelogLimit, gamelog.Type(gamelogType))
	if err != nil {
		printRuntimeErr(ctx, "gamelog", "list", err)
		return nil
	}
	if len(entries) == 0 {
		fmt.Println("No events stored")
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tTYPE\tMESSAGE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.ID, e.Time.Format("2006-01-02 15:04:05"), e.Type, e.Message)
	}
	return tw.Flush()
}

func gamelogFollow(ctx *cli.Context) error {
	b := getBackend(ctx, "gamelog")
	if b == nil {
		return nil
	}
	defer b.close()
	gl, err := b.openGameLog()
	if err != nil {
		printRuntimeErr(ctx, "gamelog", "open_db", err)
		return nil
	}
	defer gl.Close()
	sctx, cancel := runContext()
	defer cancel()
	fmt.Printf("Following %s, press Ctrl+C to stop\n", gamelogSidecar)
	n, err := gl.Follow(sctx, gamelogSidecar)
	if err != nil {
		printRuntimeErr(ctx, "gamelog", "follow", err)
	}
	fmt.Printf("Stored %d events\n", n)
	return nil
}
