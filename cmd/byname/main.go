package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/broady/byname/cmd/byname/internal/check"
	"github.com/broady/byname/cmd/byname/internal/gen"
	"github.com/broady/byname/cmd/byname/internal/pipeline"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate lookup-by-name accessors."`
	Check   check.Cmd  `cmd:"" help:"Report generated files that are out of date."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("byname"),
		kong.Description("Generate lookup-by-name accessors for Go enum types."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(pipeline.BuildVersion(HeaderVersion())),
	)
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}
