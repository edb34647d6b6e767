// Package pipeline holds the steps shared by the gen and check commands:
// loading configuration, discovering requests, generating and reporting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/broady/byname/bynamegen"
	"github.com/broady/byname/bynamegen/ir"
	"github.com/broady/byname/bynamegen/provider"
)

// BuildVersion is the version recorded in generated files, bound into
// command Run methods.
type BuildVersion string

// Options are the flags common to gen and check.
type Options struct {
	Patterns []string `arg:"" optional:"" help:"Package patterns to scan (default: packages from the config file, or \".\")."`
	Config   string   `help:"Configuration file (default: byname.yaml if present)." short:"c" type:"path"`
	Strategy string   `help:"Strategy for directives that name none." short:"s"`
	LogLevel string   `help:"Log level: debug, info, warn or error." name:"log-level"`
}

// ErrDiagnostics is returned when generation reported errors.
var ErrDiagnostics = errors.New("generation reported errors")

// Run is the outcome of a pipeline run.
type Run struct {
	Config    *bynamegen.Config
	Generator *bynamegen.Generator
	Result    *bynamegen.Result
	Logger    *slog.Logger

	// Root is the directory unit paths are relative to.
	Root string
}

// Execute loads configuration, discovers requests and generates units.
// Diagnostics are printed to stderr.
func (o *Options) Execute(ctx context.Context, version BuildVersion) (*Run, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	root, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	p := &provider.SourceProvider{Logger: logger}
	discovered, diags, err := p.Discover(ctx, provider.SourceOptions{
		Packages:        cfg.Packages,
		Strategy:        cfg.Strategy,
		GeneratedSuffix: cfg.Suffix,
	})
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	batches := append(cfg.Batches(), discovered...)
	logger.Debug("discovered", "batches", len(batches), "patterns", cfg.Packages)

	g := bynamegen.New(*cfg,
		bynamegen.WithLogger(logger),
		bynamegen.WithVersion(string(version)))
	res, err := g.Generate(ctx, batches)
	if err != nil {
		return nil, err
	}
	res.Diagnostics = append(diags, res.Diagnostics...)

	if n := Report(os.Stderr, res.Diagnostics); n > 0 {
		return nil, fmt.Errorf("%w: %d error(s)", ErrDiagnostics, n)
	}

	return &Run{
		Config:    cfg,
		Generator: g,
		Result:    res,
		Logger:    logger,
		Root:      root,
	}, nil
}

func (o *Options) loadConfig() (*bynamegen.Config, error) {
	file := o.Config
	if file == "" {
		if _, err := os.Stat(bynamegen.DefaultConfigFile); err == nil {
			file = bynamegen.DefaultConfigFile
		}
	}

	cfg := bynamegen.DefaultConfig()
	if file != "" {
		var err error
		if cfg, err = bynamegen.LoadConfig(file); err != nil {
			return nil, err
		}
	}

	if len(o.Patterns) > 0 {
		cfg.Packages = o.Patterns
	}
	if o.Strategy != "" {
		cfg.Strategy = o.Strategy
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger returns a text logger writing to w at the named level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

var (
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

// Report prints diagnostics to w and returns the number of errors.
func Report(w io.Writer, diags []ir.Diagnostic) int {
	var errs int
	for _, d := range diags {
		c := warnColor
		if d.Severity == ir.SeverityError {
			c = errorColor
			errs++
		}
		fmt.Fprintf(w, "%s: ", d.Source)
		c.Fprintf(w, "%s", d.Severity)
		fmt.Fprintf(w, ": %s [%s]\n", d.Message, d.Code)
	}
	return errs
}
