package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli"
)

func serverTime(ctx *cli.Context) error {
	b := getBackend(ctx, "time")
	if b == nil {
		return nil
	}
	defer b.close()
	t, err := b.client.ServerTime(context.Background())
	if err != nil {
		printRuntimeErr(ctx, "time", "get", err)
		return nil
	}
	fmt.Println(t)
	return nil
}

func visits(ctx *cli.Context) error {
	b := getBackend(ctx, "visits")
	if b == nil {
		return nil
	}
	defer b.close()
	n, err := b.client.VisitorCount(context.Background())
	if err != nil {
		printRuntimeErr(ctx, "visits", "get", err)
		return nil
	}
	fmt.Println(n)
	return nil
}
