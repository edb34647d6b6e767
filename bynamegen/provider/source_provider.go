// Package provider discovers generation requests in Go source code.
package provider

import (
	"context"
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/byname/bynamegen/ir"
	"github.com/broady/byname/internal/directive"
)

// SourceProvider finds //byname:enum directives by loading and type-checking packages.
type SourceProvider struct {
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// SourceOptions configures discovery.
type SourceOptions struct {
	// Packages are package patterns in go command syntax.
	Packages []string

	// Dir is the directory patterns are resolved in. Empty means the current directory.
	Dir string

	// Strategy is the strategy name used by directives that name none.
	Strategy string

	// GeneratedSuffix identifies files produced by an earlier run. Type
	// errors in them are ignored, since they may be stale.
	GeneratedSuffix string
}

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo

// Discover loads the packages matching opts.Packages and returns one batch
// per annotated container, in package and source order. Problems with
// individual directives are returned as diagnostics; the error is reserved
// for packages that cannot be loaded at all.
func (p *SourceProvider) Discover(ctx context.Context, opts SourceOptions) ([]ir.Batch, []ir.Diagnostic, error) {
	if len(opts.Packages) == 0 {
		return nil, nil, fmt.Errorf("no packages specified")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     opts.Dir,
	}
	pkgs, err := packages.Load(cfg, opts.Packages...)
	if err != nil {
		return nil, nil, fmt.Errorf("load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, nil, fmt.Errorf("no packages found matching %v", opts.Packages)
	}

	d := &discoverer{
		logger:   p.Logger,
		opts:     opts,
		loaded:   make(map[string]*packages.Package),
		ordering: make(map[string]ordering),
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	for _, pkg := range pkgs {
		d.loaded[pkg.PkgPath] = pkg
	}

	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if err := d.checkErrors(pkg); err != nil {
			return nil, nil, err
		}
		d.discoverPackage(pkg)
	}
	return d.batches, d.diags, nil
}

type discoverer struct {
	logger  *slog.Logger
	opts    SourceOptions
	loaded  map[string]*packages.Package
	batches []ir.Batch
	diags   []ir.Diagnostic

	// ordering caches member declaration data per enum, keyed by pkgpath.Name.
	ordering map[string]ordering
}

// ordering records, per constant name, its declaration index and the
// constant its value expression names, if any.
type ordering struct {
	index   map[string]int
	aliasOf map[string]string
}

func (d *discoverer) checkErrors(pkg *packages.Package) error {
	for _, e := range pkg.Errors {
		file, _, _ := strings.Cut(e.Pos, ":")
		if d.opts.GeneratedSuffix != "" && strings.HasSuffix(file, d.opts.GeneratedSuffix) {
			d.logger.Debug("ignoring error in generated file", "package", pkg.PkgPath, "error", e.Msg)
			continue
		}
		return fmt.Errorf("package %s: %v", pkg.PkgPath, e)
	}
	return nil
}

func (d *discoverer) discoverPackage(pkg *packages.Package) {
	batchIndex := make(map[string]int) // type position -> index into d.batches

	for _, file := range pkg.Syntax {
		directives, errs := directive.ParseFile(pkg.Fset, file)
		for _, err := range errs {
			d.diags = append(d.diags, ir.Diagnostic{
				Severity: ir.SeverityError,
				Code:     ir.CodeInvalidDirective,
				Message:  err.Msg,
				Source:   source(err.Pos),
			})
		}

		for _, dir := range directives {
			container, ok := d.container(pkg, dir)
			if !ok {
				continue
			}
			req, ok := d.request(pkg, file, dir, container)
			if !ok {
				continue
			}

			key := dir.TypePos.String()
			i, ok := batchIndex[key]
			if !ok {
				i = len(d.batches)
				batchIndex[key] = i
				d.batches = append(d.batches, ir.Batch{Container: container})
			}
			d.batches[i].Requests = append(d.batches[i].Requests, req)
			d.logger.Debug("found request",
				"container", container.Name,
				"enum", req.Enum.Name,
				"members", len(req.Enum.Members),
				"source", req.Source.String())
		}
	}
}

// container describes the type annotated by dir.
func (d *discoverer) container(pkg *packages.Package, dir directive.Directive) (ir.Container, bool) {
	c := ir.Container{
		Name:        dir.TypeName,
		Package:     pkg.PkgPath,
		PackageName: pkg.Name,
		Dir:         filepath.Dir(dir.TypePos.Filename),
		Scope:       pkg.Types.Scope().Names(),
		Source:      source(dir.TypePos),
	}

	switch {
	case dir.Local:
		c.Visibility = ir.VisibilityPrivate
		return c, true
	case token.IsExported(dir.TypeName):
		c.Visibility = ir.VisibilityPublic
	default:
		c.Visibility = ir.VisibilityInternal
	}

	obj, _ := pkg.Types.Scope().Lookup(dir.TypeName).(*types.TypeName)
	if obj == nil {
		d.fail(ir.CodeInternal, dir.TypePos, dir.TypeName, "type %s not found in package scope", dir.TypeName)
		return c, false
	}
	if obj.IsAlias() {
		d.fail(ir.CodeInvalidContainer, dir.TypePos, dir.TypeName, "container %s is a type alias; declare a defined type", dir.TypeName)
		return c, false
	}
	named := obj.Type().(*types.Named)
	switch {
	case named.TypeParams().Len() > 0:
		d.fail(ir.CodeInvalidContainer, dir.TypePos, dir.TypeName, "container %s is generic", dir.TypeName)
		return c, false
	case types.IsInterface(named):
		d.fail(ir.CodeInvalidContainer, dir.TypePos, dir.TypeName, "container %s is an interface and cannot have methods", dir.TypeName)
		return c, false
	}
	if _, ok := named.Underlying().(*types.Pointer); ok {
		d.fail(ir.CodeInvalidContainer, dir.TypePos, dir.TypeName, "container %s is a pointer type and cannot have methods", dir.TypeName)
		return c, false
	}
	return c, true
}

// request resolves the enum named by dir and builds its member list.
func (d *discoverer) request(pkg *packages.Package, file *ast.File, dir directive.Directive, container ir.Container) (ir.Request, bool) {
	req := ir.Request{
		Container:    container,
		StrategyName: dir.Params.Strategy,
		Source:       source(dir.Pos),
	}
	if req.StrategyName == "" {
		req.StrategyName = d.opts.Strategy
	}
	req.Strategy, _ = ir.ParseStrategy(req.StrategyName)

	if container.Visibility == ir.VisibilityPrivate {
		// Rejected during assembly; the enum is still recorded for the report.
		_, name := directive.SplitEnum(dir.Enum)
		req.Enum = ir.EnumType{Name: name, Package: pkg.PkgPath, PackageName: pkg.Name}
		return req, true
	}

	enumPkg, named, ok := d.lookupEnum(pkg, file, dir)
	if !ok {
		return req, false
	}

	req.Enum = ir.EnumType{
		Name:        named.Obj().Name(),
		Package:     enumPkg.Path(),
		PackageName: enumPkg.Name(),
		Members:     d.members(pkg.Fset, enumPkg, named, enumPkg.Path() != pkg.PkgPath),
	}
	return req, true
}

func (d *discoverer) lookupEnum(pkg *packages.Package, file *ast.File, dir directive.Directive) (*types.Package, *types.Named, bool) {
	qualifier, name := directive.SplitEnum(dir.Enum)

	var enumPkg *types.Package
	switch {
	case qualifier == "" || qualifier == pkg.PkgPath || qualifier == pkg.Name:
		enumPkg = pkg.Types
	default:
		enumPkg = importedPackage(pkg, file, qualifier)
	}
	if enumPkg == nil {
		d.fail(ir.CodeUnknownEnum, dir.Pos, dir.TypeName, "package %s of enum %s is not imported by %s", qualifier, dir.Enum, filepath.Base(dir.Pos.Filename))
		return nil, nil, false
	}

	obj, _ := enumPkg.Scope().Lookup(name).(*types.TypeName)
	if obj == nil {
		d.fail(ir.CodeUnknownEnum, dir.Pos, dir.TypeName, "enum type %s not found in %s", name, enumPkg.Path())
		return nil, nil, false
	}
	if enumPkg.Path() != pkg.PkgPath && !obj.Exported() {
		d.fail(ir.CodeUnknownEnum, dir.Pos, dir.TypeName, "enum type %s.%s is not exported", enumPkg.Path(), name)
		return nil, nil, false
	}

	named, ok := types.Unalias(obj.Type()).(*types.Named)
	if !ok {
		d.fail(ir.CodeUnknownEnum, dir.Pos, dir.TypeName, "%s is not a defined type", dir.Enum)
		return nil, nil, false
	}
	if named.TypeParams().Len() > 0 {
		d.fail(ir.CodeUnknownEnum, dir.Pos, dir.TypeName, "enum type %s is generic", dir.Enum)
		return nil, nil, false
	}
	if _, ok := named.Underlying().(*types.Basic); !ok {
		d.fail(ir.CodeUnknownEnum, dir.Pos, dir.TypeName, "enum type %s must have a basic underlying type, not %s", dir.Enum, named.Underlying())
		return nil, nil, false
	}
	return named.Obj().Pkg(), named, true
}

// importedPackage finds the package qualifier refers to, as an import name
// of file or as an import path of pkg.
func importedPackage(pkg *packages.Package, file *ast.File, qualifier string) *types.Package {
	for _, spec := range file.Imports {
		pn := pkg.TypesInfo.PkgNameOf(spec)
		if pn != nil && pn.Name() == qualifier {
			return pn.Imported()
		}
	}
	for _, imp := range pkg.Types.Imports() {
		if imp.Path() == qualifier {
			return imp
		}
	}
	return nil
}

// members returns the constants of type named declared in enumPkg, in
// declaration order. Unexported constants are left out when the enum is
// used from another package.
func (d *discoverer) members(fset *token.FileSet, enumPkg *types.Package, named *types.Named, foreign bool) []ir.EnumMember {
	type found struct {
		c   *types.Const
		pos token.Position
	}
	var consts []found

	scope := enumPkg.Scope()
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok || !isType(c.Type(), named) {
			continue
		}
		if foreign && !c.Exported() {
			continue
		}
		consts = append(consts, found{c, fset.Position(c.Pos())})
	}

	ord := d.declarationOrder(enumPkg.Path(), named)
	sort.SliceStable(consts, func(i, j int) bool {
		a, b := consts[i], consts[j]
		ia, oka := ord.index[a.c.Name()]
		ib, okb := ord.index[b.c.Name()]
		if oka && okb {
			return ia < ib
		}
		if a.pos.Filename != b.pos.Filename {
			return a.pos.Filename < b.pos.Filename
		}
		if a.pos.Line != b.pos.Line {
			return a.pos.Line < b.pos.Line
		}
		return a.pos.Column < b.pos.Column
	})

	members := make([]ir.EnumMember, len(consts))
	for i, f := range consts {
		members[i] = ir.EnumMember{
			Name:    f.c.Name(),
			Order:   i,
			Value:   constantValue(f.c.Val()),
			AliasOf: ord.aliasOf[f.c.Name()],
		}
	}
	return members
}

// declarationOrder walks the syntax of a loaded package and records the
// constants of type named in the order they are written. Packages loaded
// only from export data yield an empty ordering.
func (d *discoverer) declarationOrder(pkgPath string, named *types.Named) ordering {
	key := pkgPath + "." + named.Obj().Name()
	if ord, ok := d.ordering[key]; ok {
		return ord
	}

	ord := ordering{index: make(map[string]int), aliasOf: make(map[string]string)}
	d.ordering[key] = ord

	pkg := d.loaded[pkgPath]
	if pkg == nil || pkg.TypesInfo == nil {
		return ord
	}

	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.CONST {
				continue
			}
			for _, spec := range gen.Specs {
				vs := spec.(*ast.ValueSpec)
				for i, ident := range vs.Names {
					c, ok := pkg.TypesInfo.Defs[ident].(*types.Const)
					if !ok || !isType(c.Type(), named) {
						continue
					}
					ord.index[c.Name()] = len(ord.index)
					if i < len(vs.Values) {
						if target := aliasTarget(pkg.TypesInfo, vs.Values[i], named); target != "" {
							ord.aliasOf[c.Name()] = target
						}
					}
				}
			}
		}
	}
	return ord
}

// aliasTarget returns the name of the constant expr refers to when expr is
// a bare identifier naming another constant of type named.
func aliasTarget(info *types.Info, expr ast.Expr, named *types.Named) string {
	ident, ok := ast.Unparen(expr).(*ast.Ident)
	if !ok {
		return ""
	}
	c, ok := info.Uses[ident].(*types.Const)
	if !ok || !isType(c.Type(), named) {
		return ""
	}
	return c.Name()
}

// isType reports whether t is the defined type named. Packages loaded from
// source and from export data carry distinct type objects, so identity is
// decided by package path and name.
func isType(t types.Type, named *types.Named) bool {
	n, ok := types.Unalias(t).(*types.Named)
	if !ok || n.Obj().Pkg() == nil {
		return false
	}
	return n.Obj().Name() == named.Obj().Name() && n.Obj().Pkg().Path() == named.Obj().Pkg().Path()
}

// constantValue converts a constant to int64, uint64, float64, string or bool.
func constantValue(v constant.Value) any {
	switch v.Kind() {
	case constant.String:
		return constant.StringVal(v)
	case constant.Int:
		if i, ok := constant.Int64Val(v); ok {
			return i
		}
		if u, ok := constant.Uint64Val(v); ok {
			return u
		}
		return v.ExactString()
	case constant.Float:
		f, _ := constant.Float64Val(v)
		return f
	case constant.Bool:
		return constant.BoolVal(v)
	default:
		return v.ExactString()
	}
}

func (d *discoverer) fail(code string, pos token.Position, container, format string, args ...any) {
	d.diags = append(d.diags, ir.Diagnostic{
		Severity:  ir.SeverityError,
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Source:    source(pos),
		Container: container,
	})
}

func source(pos token.Position) ir.Source {
	return ir.Source{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}
