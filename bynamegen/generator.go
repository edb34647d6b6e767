// Package bynamegen generates lookup-by-name accessors for Go enum types.
//
// A container type opts in with one directive per enum:
//
//	//byname:enum Color strategy=lazy
//	//byname:enum Shade
//	type Palette struct{}
//
// Generation writes palette_byname.go next to the declaration, adding one
// method per canonical member of each enum to Palette:
//
//	func (Palette) Red() Color
//
// Aliased members (Crimson = Red) and members repeating an earlier value
// get no accessor. See package resolve for the exact rules.
package bynamegen

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/broady/byname/bynamegen/golang"
	"github.com/broady/byname/bynamegen/ir"
	"github.com/broady/byname/bynamegen/resolve"
	"github.com/broady/byname/bynamegen/sink"
)

// ToolName identifies the generator in the provenance header of generated files.
const ToolName = "byname"

// Version is the generator release, without the leading "v".
const Version = "0.1.0"

// Generator assembles generated units from generation requests.
// A Generator is safe for concurrent use.
type Generator struct {
	cfg     Config
	logger  *slog.Logger
	version string
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithVersion sets the version recorded in the provenance header.
// The default is "v" + Version.
func WithVersion(version string) Option {
	return func(g *Generator) { g.version = version }
}

// New creates a Generator. Unset configuration fields take their defaults.
func New(cfg Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:     *applyConfigDefaults(&cfg),
		logger:  slog.New(slog.DiscardHandler),
		version: "v" + Version,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Unit is one generated source file.
type Unit struct {
	Container ir.Container

	// Filename is the file name, relative to Container.Dir.
	Filename string

	// Source is the formatted Go source.
	Source []byte

	// Requests is the number of requests emitted into the unit.
	Requests int
}

// Path returns the unit's path relative to root, using forward slashes.
func (u *Unit) Path(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absFile, err := filepath.Abs(filepath.Join(u.Container.Dir, u.Filename))
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absRoot, absFile)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Result is the outcome of generating several batches.
type Result struct {
	// Units are the generated files, in batch order. Rejected batches have no unit.
	Units []*Unit

	Diagnostics []ir.Diagnostic
}

// Generate assembles every batch, running up to Config.Parallelism batches
// at once. Problems with single requests or containers are reported as
// diagnostics; the returned error is only set when ctx is done.
func (g *Generator) Generate(ctx context.Context, batches []ir.Batch) (*Result, error) {
	units := make([]*Unit, len(batches))
	diags := make([][]ir.Diagnostic, len(batches))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Parallelism)
	for i, batch := range batches {
		eg.Go(func() error {
			unit, d, err := g.Assemble(ctx, batch)
			units[i], diags[i] = unit, d
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{}
	for i := range batches {
		if units[i] != nil {
			res.Units = append(res.Units, units[i])
		}
		res.Diagnostics = append(res.Diagnostics, diags[i]...)
	}
	return res, nil
}

// Assemble resolves and emits the requests of one container and wraps them
// into a formatted Go file.
//
// A container that cannot host accessors yields no unit and an error
// diagnostic. Requests fail independently: a failing request is reported and
// left out while the others are still emitted. ctx is checked before each
// request; the returned error is ctx.Err() when it is done.
func (g *Generator) Assemble(ctx context.Context, batch ir.Batch) (*Unit, []ir.Diagnostic, error) {
	container := batch.Container
	logger := g.logger.With("container", container.Name, "package", container.Package)

	if d, ok := checkContainer(container); !ok {
		return nil, []ir.Diagnostic{d}, nil
	}

	var (
		diags     []ir.Diagnostic
		body      bytes.Buffer
		summary   []string
		accessors = make(map[string]string) // accessor name -> enum
		emitter   = golang.NewEmitter(golang.Config{
			RuntimeImport: g.cfg.RuntimeImport,
			EmitComments:  *g.cfg.Comments,
		}, container)
		slot int
	)

	for _, req := range batch.Requests {
		if err := ctx.Err(); err != nil {
			return nil, diags, err
		}

		strategy, d := g.strategyFor(req)
		if d != nil {
			diags = append(diags, *d)
		}
		req.Strategy = strategy

		resolved := resolve.Members(req.Enum.Members)

		var block bytes.Buffer
		if err := emitter.Emit(&block, req, resolved, slot); err != nil {
			diags = append(diags, ir.Diagnostic{
				Severity:  ir.SeverityError,
				Code:      ir.CodeInternal,
				Message:   err.Error(),
				Source:    req.Source,
				Container: container.Name,
			})
			continue
		}

		for _, m := range resolved {
			if prev, ok := accessors[m.Name]; ok {
				diags = append(diags, ir.Diagnostic{
					Severity:  ir.SeverityWarning,
					Code:      ir.CodeDuplicateAccessor,
					Message:   fmt.Sprintf("accessor %s.%s is generated for both %s and %s", container.Name, m.Name, prev, req.Enum.Name),
					Source:    req.Source,
					Container: container.Name,
				})
				continue
			}
			accessors[m.Name] = req.Enum.Name
		}

		if slot > 0 {
			body.WriteString("\n")
		}
		body.Write(block.Bytes())
		summary = append(summary, fmt.Sprintf("%s (%s)", req.Enum.Name, strategy))

		logger.Debug("emitted request",
			"enum", req.Enum.Name,
			"strategy", strategy.String(),
			"slot", slot,
			"members", len(req.Enum.Members),
			"accessors", len(resolved))
		slot++
	}

	if slot == 0 {
		return nil, diags, nil
	}

	var file bytes.Buffer
	fmt.Fprintf(&file, "// Code generated by %s %s. DO NOT EDIT.\n", ToolName, g.version)
	fmt.Fprintf(&file, "//\n// Accessors of %s (%s): %s.\n\n", container.Name, container.Visibility, strings.Join(summary, ", "))
	fmt.Fprintf(&file, "package %s\n\n", container.PackageName)
	emitter.Imports().WriteBlock(&file)
	file.Write(body.Bytes())

	filename := g.filename(container)
	src, err := imports.Process(filename, file.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		diags = append(diags, ir.Diagnostic{
			Severity:  ir.SeverityError,
			Code:      ir.CodeInternal,
			Message:   fmt.Sprintf("format generated source: %v", err),
			Source:    container.Source,
			Container: container.Name,
		})
		return nil, diags, nil
	}

	logger.Info("generated", "file", filename, "requests", slot)
	return &Unit{
		Container: container,
		Filename:  filename,
		Source:    src,
		Requests:  slot,
	}, diags, nil
}

// checkContainer rejects containers that cannot host accessors.
func checkContainer(c ir.Container) (ir.Diagnostic, bool) {
	var msg string
	switch {
	case !golang.IsIdentifier(c.Name):
		msg = fmt.Sprintf("container name %q is not a Go identifier", c.Name)
	case !golang.IsIdentifier(c.PackageName):
		msg = fmt.Sprintf("container %s has invalid package name %q", c.Name, c.PackageName)
	case c.Visibility == ir.VisibilityPrivate:
		msg = fmt.Sprintf("container %s is private and cannot host accessors", c.Name)
	case !c.Visibility.Valid():
		msg = fmt.Sprintf("container %s has unsupported visibility %v", c.Name, c.Visibility)
	default:
		return ir.Diagnostic{}, true
	}
	return ir.Diagnostic{
		Severity:  ir.SeverityError,
		Code:      ir.CodeInvalidContainer,
		Message:   msg,
		Source:    c.Source,
		Container: c.Name,
	}, false
}

// strategyFor returns the strategy to emit req with. Unknown strategies
// fall back to ir.DefaultStrategy and produce a warning.
func (g *Generator) strategyFor(req ir.Request) (ir.Strategy, *ir.Diagnostic) {
	unknown := func(name string) *ir.Diagnostic {
		return &ir.Diagnostic{
			Severity:  ir.SeverityWarning,
			Code:      ir.CodeUnknownStrategy,
			Message:   fmt.Sprintf("unknown strategy %s for %s, using %s", name, req.Enum.Name, ir.DefaultStrategy),
			Source:    req.Source,
			Container: req.Container.Name,
		}
	}

	if req.StrategyName != "" {
		s, ok := ir.ParseStrategy(req.StrategyName)
		if !ok {
			return ir.DefaultStrategy, unknown(fmt.Sprintf("%q", req.StrategyName))
		}
		return s, nil
	}
	if !req.Strategy.Valid() {
		return ir.DefaultStrategy, unknown(req.Strategy.String())
	}
	return req.Strategy, nil
}

func (g *Generator) filename(c ir.Container) string {
	return strings.ToLower(c.Name) + g.cfg.Suffix
}

// Write writes units to s at their paths relative to root.
func (g *Generator) Write(ctx context.Context, s sink.OutputSink, root string, units []*Unit) error {
	for _, u := range units {
		p, err := u.Path(root)
		if err != nil {
			return fmt.Errorf("%s: %w", u.Filename, err)
		}
		if err := s.WriteFile(ctx, p, u.Source); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
		g.logger.Debug("wrote", "path", p, "bytes", len(u.Source))
	}
	return nil
}

// Stale returns the units whose content differs from what read returns for
// their path. A read error counts as stale.
func (g *Generator) Stale(units []*Unit, read func(path string) ([]byte, error)) []*Unit {
	var stale []*Unit
	for _, u := range units {
		current, err := read(filepath.Join(u.Container.Dir, u.Filename))
		if err != nil || !bytes.Equal(current, u.Source) {
			stale = append(stale, u)
		}
	}
	return stale
}
