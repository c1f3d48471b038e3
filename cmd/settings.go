package cmd

import (
	"errors"
	"fmt"

	"github.com/angelware-net/spectre/cmd/common"
	"github.com/urfave/cli"
)

func settingsGet(ctx *cli.Context) error {
	key := ctx.Args().First()
	if key == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no key provided"))
	}
	b := getBackend(ctx, "settings")
	if b == nil {
		return nil
	}
	defer b.close()
	v, ok, err := b.settings.GetString(key)
	if err != nil {
		printRuntimeErr(ctx, "settings", "get", err)
		return nil
	}
	if !ok {
		fmt.Printf("%s is not set\n", key)
		return nil
	}
	fmt.Println(v)
	return nil
}

func settingsSet(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		return common.PrintErrWithCmdHelp(ctx, errors.New("expected a key and a value"))
	}
	b := getBackend(ctx, "settings")
	if b == nil {
		return nil
	}
	defer b.close()
	key := ctx.Args().Get(0)
	if err := b.settings.Set(key, ctx.Args().Get(1)); err != nil {
		printRuntimeErr(ctx, "settings", "set", err)
		return nil
	}
	fmt.Printf("Saved %s\n", key)
	return nil
}
