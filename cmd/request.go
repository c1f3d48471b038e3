package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/angelware-net/spectre/cmd/common"
	"github.com/angelware-net/spectre/pkg/catalog"
	"github.com/angelware-net/spectre/pkg/vrchat"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli"
)

var (
	requestMethod string
	requestData   string

	requestFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "method, X",
			Usage:       "HTTP method (default: GET)",
			Destination: &requestMethod,
		},
		cli.StringSliceFlag{
			Name:  "header, H",
			Usage: `extra header as "Name: value", repeatable`,
		},
		cli.StringFlag{
			Name:        "data, d",
			Usage:       "JSON request body",
			Destination: &requestData,
		},
	}
)

func request(ctx *cli.Context) error {
	url := ctx.Args().First()
	if url == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no url provided"))
	}
	headers, err := common.ParsePairs(ctx.StringSlice("header"), ":")
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	req := &vrchat.Request{
		URL:     url,
		Method:  requestMethod,
		Headers: vrchat.HeadersFromMap(headers),
	}
	if requestData != "" {
		if !gjson.Valid(requestData) {
			return common.PrintErrWithCmdHelp(ctx, errors.New("request body is not valid JSON"))
		}
		req.Body = json.RawMessage(requestData)
	}
	b := getBackend(ctx, "request")
	if b == nil {
		return nil
	}
	defer b.close()
	body, err := b.client.Send(context.Background(), req)
	if err != nil {
		printRuntimeErr(ctx, "request", "send", err)
		return nil
	}
	fmt.Println(body)
	return nil
}

func call(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no endpoint provided"))
	}
	params, err := common.ParsePairs(ctx.Args().Tail(), "=")
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	b := getBackend(ctx, "call")
	if b == nil {
		return nil
	}
	defer b.close()
	body, err := b.catalog.Call(context.Background(), name, params)
	if err != nil {
		printRuntimeErr(ctx, "call", name, err)
		return nil
	}
	fmt.Println(body)
	return nil
}

func endpoints(ctx *cli.Context) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMETHOD\tPATH\tPARAMS")
	for _, ep := range catalog.List() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ep.Name, ep.Method, ep.Path, strings.Join(ep.Params(), ","))
	}
	return tw.Flush()
}
