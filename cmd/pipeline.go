package cmd

import (
	"fmt"

	"github.com/angelware-net/spectre/internal/pipeline"
	"github.com/urfave/cli"
)

func pipelineRun(ctx *cli.Context) error {
	b := getBackend(ctx, "pipeline")
	if b == nil {
		return nil
	}
	defer b.close()
	sctx, cancel := runContext()
	defer cancel()
	p := pipeline.New(b.sessions, b.cfg.PipelineURL, nil, b.log)
	err := p.Run(sctx, func(ev pipeline.Event) {
		fmt.Printf("%s %s\n", ev.Type, ev.Content)
	})
	if err != nil {
		printRuntimeErr(ctx, "pipeline", "run", err)
	}
	return nil
}
