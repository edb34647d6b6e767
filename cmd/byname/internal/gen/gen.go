package gen

import (
	"context"
	"os"

	"github.com/fatih/color"

	"github.com/broady/byname/bynamegen/sink"
	"github.com/broady/byname/cmd/byname/internal/pipeline"
)

type Cmd struct {
	pipeline.Options

	DryRun bool `help:"Print generated files instead of writing them." name:"dry-run" short:"n"`
}

func (c *Cmd) Run(ctx context.Context, version pipeline.BuildVersion) error {
	run, err := c.Execute(ctx, version)
	if err != nil {
		return err
	}

	var out sink.OutputSink = sink.NewFilesystemSink(run.Root)
	if c.DryRun {
		out = &sink.WriterSink{W: os.Stdout}
	}
	if err := run.Generator.Write(ctx, out, run.Root, run.Result.Units); err != nil {
		return err
	}

	if !c.DryRun {
		color.New(color.FgGreen).Fprintf(os.Stderr, "✓ Generated %d file(s)\n", len(run.Result.Units))
	}
	return nil
}
