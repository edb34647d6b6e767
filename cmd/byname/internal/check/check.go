package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/broady/byname/cmd/byname/internal/pipeline"
)

type Cmd struct {
	pipeline.Options
}

func (c *Cmd) Run(ctx context.Context, version pipeline.BuildVersion) error {
	run, err := c.Execute(ctx, version)
	if err != nil {
		return err
	}

	stale := run.Generator.Stale(run.Result.Units, os.ReadFile)
	for _, u := range stale {
		p, err := u.Path(run.Root)
		if err != nil {
			p = filepath.Join(u.Container.Dir, u.Filename)
		}
		color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s is out of date\n", p)
	}
	if len(stale) > 0 {
		return fmt.Errorf("%d of %d generated file(s) out of date; run byname gen", len(stale), len(run.Result.Units))
	}

	color.New(color.FgGreen).Fprintf(os.Stderr, "✓ %d generated file(s) up to date\n", len(run.Result.Units))
	return nil
}
