package golang

import (
	"bytes"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/broady/byname/bynamegen/ir"
	"github.com/broady/byname/bynamegen/resolve"
)

var palette = ir.Container{
	Name:        "Palette",
	Visibility:  ir.VisibilityPublic,
	Package:     "example.com/paint",
	PackageName: "paint",
}

var color = ir.EnumType{
	Name:        "Color",
	Package:     "example.com/paint",
	PackageName: "paint",
	Members: []ir.EnumMember{
		{Name: "Red", Order: 0, Value: int64(1)},
		{Name: "Crimson", Order: 1, Value: int64(1), AliasOf: "Red"},
		{Name: "Blue", Order: 2, Value: int64(2)},
		{Name: "Navy", Order: 3, Value: int64(2)},
	},
}

// emitFile emits one request and wraps it into a parseable file.
func emitFile(t *testing.T, cfg Config, container ir.Container, req ir.Request) (string, *ast.File) {
	t.Helper()

	e := NewEmitter(cfg, container)
	var body bytes.Buffer
	if err := e.Emit(&body, req, resolve.Members(req.Enum.Members), 0); err != nil {
		t.Fatalf("Emit() error: %v", err)
	}

	var file bytes.Buffer
	file.WriteString("package " + container.PackageName + "\n\n")
	e.Imports().WriteBlock(&file)
	file.Write(body.Bytes())

	src := file.String()
	f, err := parser.ParseFile(token.NewFileSet(), "out.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, src)
	}
	return src, f
}

// methods returns the names of methods declared on recv, in order.
func methods(f *ast.File, recv string) []string {
	var out []string
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil {
			continue
		}
		if id, ok := fn.Recv.List[0].Type.(*ast.Ident); ok && id.Name == recv {
			out = append(out, fn.Name.Name)
		}
	}
	return out
}

func TestEmit_Strategies(t *testing.T) {
	tests := []struct {
		strategy ir.Strategy
		contains []string
		absent   []string
	}{
		{
			strategy: ir.StrategyAllOnce,
			contains: []string{
				`_Palette_0_m_Red = byname.Must(_Palette_0_lookup, "Red")`,
				`_Palette_0_m_Blue = byname.Must(_Palette_0_lookup, "Blue")`,
				`func (Palette) Red() Color { return _Palette_0_m_Red }`,
				`func (Palette) Blue() Color { return _Palette_0_m_Blue }`,
			},
			absent: []string{"Lazy(", "NewCache("},
		},
		{
			strategy: ir.StrategyEachTime,
			contains: []string{
				`func (Palette) Red() Color { return byname.Must(_Palette_0_lookup, "Red") }`,
				`func (Palette) Blue() Color { return byname.Must(_Palette_0_lookup, "Blue") }`,
			},
			absent: []string{"var (", "Lazy(", "NewCache("},
		},
		{
			strategy: ir.StrategyLazy,
			contains: []string{
				`_Palette_0_m_Red = byname.Lazy(_Palette_0_lookup, "Red")`,
				`func (Palette) Red() Color { return _Palette_0_m_Red() }`,
				`func (Palette) Blue() Color { return _Palette_0_m_Blue() }`,
			},
			absent: []string{"NewCache("},
		},
		{
			strategy: ir.StrategyDictionaryCache,
			contains: []string{
				`var _Palette_0_cache = byname.NewCache(_Palette_0_lookup)`,
				`func (Palette) Red() Color { return _Palette_0_cache.Get("Red") }`,
				`func (Palette) Blue() Color { return _Palette_0_cache.Get("Blue") }`,
			},
			absent: []string{"Lazy(", "Must("},
		},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			src, f := emitFile(t, Config{}, palette, ir.Request{Container: palette, Enum: color, Strategy: tt.strategy})

			got := methods(f, "Palette")
			if strings.Join(got, ",") != "Red,Blue" {
				t.Errorf("accessors = %v, want [Red Blue]", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(src, want) {
					t.Errorf("output missing %q\n%s", want, src)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(src, unwanted) {
					t.Errorf("output should not contain %q\n%s", unwanted, src)
				}
			}
			for _, alias := range []string{"Crimson", "Navy"} {
				if strings.Contains(src, alias) {
					t.Errorf("output should not mention %s\n%s", alias, src)
				}
			}
		})
	}
}

func TestEmit_SwitchLookup(t *testing.T) {
	src, _ := emitFile(t, Config{}, palette, ir.Request{Container: palette, Enum: color, Strategy: ir.StrategyLazy})

	for _, want := range []string{
		"func _Palette_0_lookup(name string) (Color, error) {",
		"\tcase \"Red\":\n\t\treturn Red, nil",
		"\tcase \"Blue\":\n\t\treturn Blue, nil",
		`return zero, byname.NotFound("Color", name)`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q\n%s", want, src)
		}
	}
}

// topLevel counts the package-level declarations of f by name.
func topLevel(f *ast.File) map[string]int {
	names := make(map[string]int)
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil {
				names[d.Name.Name]++
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				if vs, ok := spec.(*ast.ValueSpec); ok {
					for _, id := range vs.Names {
						names[id.Name]++
					}
				}
			}
		}
	}
	return names
}

func TestEmit_MembersNamedLikeHelpers(t *testing.T) {
	enum := ir.EnumType{
		Name:        "Op",
		Package:     "example.com/paint",
		PackageName: "paint",
		Members: []ir.EnumMember{
			{Name: "lookup", Order: 0, Value: int64(0)},
			{Name: "cache", Order: 1, Value: int64(1)},
			{Name: "m_lookup", Order: 2, Value: int64(2)},
		},
	}

	for _, strategy := range ir.Strategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			src, f := emitFile(t, Config{}, palette, ir.Request{Container: palette, Enum: enum, Strategy: strategy})

			for name, n := range topLevel(f) {
				if n > 1 {
					t.Errorf("%s declared %d times\n%s", name, n, src)
				}
			}
			if got := strings.Join(methods(f, "Palette"), ","); got != "lookup,cache,m_lookup" {
				t.Errorf("accessors = %s", got)
			}
		})
	}
}

func TestEmit_ReservedScopeNames(t *testing.T) {
	ui := ir.Container{
		Name:        "Theme",
		Package:     "example.com/ui",
		PackageName: "ui",
		Scope:       []string{"Theme", "byname", "paint"},
	}

	src, f := emitFile(t, Config{}, ui, ir.Request{Container: ui, Enum: color, Strategy: ir.StrategyEachTime})

	if !strings.Contains(src, `byname2 "github.com/broady/byname"`) {
		t.Errorf("runtime import should be renamed\n%s", src)
	}
	if !strings.Contains(src, `paint2 "example.com/paint"`) {
		t.Errorf("enum import should be renamed\n%s", src)
	}
	if !strings.Contains(src, "func (Theme) Red() paint2.Color { return byname2.Must(_Theme_0_lookup, \"Red\") }") {
		t.Errorf("references should use the renamed imports\n%s", src)
	}
	for _, imp := range f.Imports {
		if imp.Name == nil {
			t.Errorf("import %s is not renamed", imp.Path.Value)
		}
	}
}

func TestEmit_LookupLocalsDoNotShadowImports(t *testing.T) {
	ui := ir.Container{Name: "Theme", Package: "example.com/ui", PackageName: "ui"}
	enum := color
	enum.Package, enum.PackageName = "example.com/name", "name"

	src, _ := emitFile(t, Config{}, ui, ir.Request{Container: ui, Enum: enum, Strategy: ir.StrategyEachTime})

	if !strings.Contains(src, "return name2.Red, nil") {
		t.Errorf("enum package should not be named after the lookup parameter\n%s", src)
	}
}

func TestEmit_CrossPackageEnum(t *testing.T) {
	ui := ir.Container{Name: "Theme", Package: "example.com/ui", PackageName: "ui"}

	src, f := emitFile(t, Config{}, ui, ir.Request{Container: ui, Enum: color, Strategy: ir.StrategyEachTime})

	if !strings.Contains(src, `"example.com/paint"`) {
		t.Errorf("missing enum package import\n%s", src)
	}
	if !strings.Contains(src, "func (Theme) Red() paint.Color") {
		t.Errorf("enum type should be qualified\n%s", src)
	}
	if !strings.Contains(src, "return paint.Red, nil") {
		t.Errorf("enum member should be qualified\n%s", src)
	}
	if len(f.Imports) != 2 {
		t.Errorf("imports = %d, want 2", len(f.Imports))
	}
}

func TestEmit_SlotNamespacing(t *testing.T) {
	e := NewEmitter(Config{}, palette)
	resolved := resolve.Members(color.Members)

	var buf bytes.Buffer
	for slot := range 2 {
		req := ir.Request{Container: palette, Enum: color, Strategy: ir.StrategyDictionaryCache}
		if err := e.Emit(&buf, req, resolved, slot); err != nil {
			t.Fatalf("Emit(slot %d) error: %v", slot, err)
		}
	}

	src := buf.String()
	for _, want := range []string{"_Palette_0_cache", "_Palette_1_cache", "_Palette_0_lookup", "_Palette_1_lookup"} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestEmit_Comments(t *testing.T) {
	src, _ := emitFile(t, Config{EmitComments: true}, palette, ir.Request{Container: palette, Enum: color, Strategy: ir.StrategyLazy})

	if !strings.Contains(src, `// Red returns the Color member named "Red".`) {
		t.Errorf("missing accessor comment\n%s", src)
	}
}

func TestEmit_EmptyMemberSet(t *testing.T) {
	empty := ir.EnumType{Name: "Nothing", Package: palette.Package, PackageName: "paint"}

	for _, s := range ir.Strategies() {
		t.Run(s.String(), func(t *testing.T) {
			_, f := emitFile(t, Config{}, palette, ir.Request{Container: palette, Enum: empty, Strategy: s})
			if got := methods(f, "Palette"); len(got) != 0 {
				t.Errorf("accessors = %v, want none", got)
			}
		})
	}
}

func TestEmit_DuplicateNamesRejected(t *testing.T) {
	e := NewEmitter(Config{}, palette)
	dup := []ir.EnumMember{{Name: "Red"}, {Name: "Red"}}

	err := e.Emit(&bytes.Buffer{}, ir.Request{Container: palette, Enum: color, Strategy: ir.StrategyLazy}, dup, 0)
	if !errors.Is(err, resolve.ErrDuplicateName) {
		t.Errorf("Emit() error = %v, want ErrDuplicateName", err)
	}
}

func TestEmit_UnsupportedStrategy(t *testing.T) {
	e := NewEmitter(Config{}, palette)
	err := e.Emit(&bytes.Buffer{}, ir.Request{Container: palette, Enum: color, Strategy: ir.Strategy(99)}, nil, 0)
	if err == nil {
		t.Error("expected error for unsupported strategy")
	}
}

func TestEmit_CustomRuntimeImport(t *testing.T) {
	src, _ := emitFile(t, Config{RuntimeImport: "example.com/vendored/byname"}, palette,
		ir.Request{Container: palette, Enum: color, Strategy: ir.StrategyLazy})

	if !strings.Contains(src, `"example.com/vendored/byname"`) {
		t.Errorf("missing custom runtime import\n%s", src)
	}
}
