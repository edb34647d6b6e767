// Package directive parses byname directives from Go syntax trees.
//
// A directive is a line comment in the doc comment of a type declaration:
//
//	//byname:enum Color
//	//byname:enum paint.Shade strategy=lazy
//	type Palette struct{}
//
// The first argument names the enum type, optionally qualified by a package
// name or import path. The remaining arguments are key=value parameters.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

const prefix = "//byname:"

// Directive is one //byname:enum line attached to a type declaration.
type Directive struct {
	Enum     string         // enum reference as written
	Params   Params         // decoded key=value arguments
	TypeName string         // name of the annotated type
	Local    bool           // the type is declared inside a function body
	Pos      token.Position // position of the directive comment
	TypePos  token.Position // position of the type name
}

// Params are the optional key=value arguments of a directive.
type Params struct {
	// Strategy names the accessor strategy. Empty selects the configured default.
	Strategy string `schema:"strategy"`
}

// Error reports a malformed or misplaced directive.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(false)
	return d
}()

// ParseFile returns the directives of f in source order. Directives that
// cannot be used are reported as errors; the remaining ones are still returned.
func ParseFile(fset *token.FileSet, f *ast.File) ([]Directive, []*Error) {
	var (
		directives []Directive
		errs       []*Error
		attached   = make(map[*ast.Comment]bool)
	)

	visitTypes(f, func(spec *ast.TypeSpec, doc *ast.CommentGroup, local bool) {
		if doc == nil {
			return
		}
		for _, c := range doc.List {
			if !strings.HasPrefix(c.Text, prefix) {
				continue
			}
			attached[c] = true

			pos := fset.Position(c.Pos())
			d, err := parseLine(strings.TrimPrefix(c.Text, prefix))
			if err != nil {
				errs = append(errs, &Error{Pos: pos, Msg: err.Error()})
				continue
			}
			d.TypeName = spec.Name.Name
			d.Local = local
			d.Pos = pos
			d.TypePos = fset.Position(spec.Name.Pos())
			directives = append(directives, d)
		}
	})

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if strings.HasPrefix(c.Text, prefix) && !attached[c] {
				errs = append(errs, &Error{
					Pos: fset.Position(c.Pos()),
					Msg: "//byname directive must be in the doc comment of a type declaration",
				})
			}
		}
	}

	return directives, errs
}

// visitTypes calls fn for every type spec in f, including those declared in
// function bodies, together with its doc comment.
func visitTypes(f *ast.File, fn func(spec *ast.TypeSpec, doc *ast.CommentGroup, local bool)) {
	visitDecl := func(gen *ast.GenDecl, local bool) {
		if gen.Tok != token.TYPE {
			return
		}
		for _, s := range gen.Specs {
			spec := s.(*ast.TypeSpec)
			doc := spec.Doc
			if doc == nil && !gen.Lparen.IsValid() {
				doc = gen.Doc
			}
			fn(spec, doc, local)
		}
	}

	for _, decl := range f.Decls {
		switch decl := decl.(type) {
		case *ast.GenDecl:
			visitDecl(decl, false)
		case *ast.FuncDecl:
			if decl.Body == nil {
				continue
			}
			ast.Inspect(decl.Body, func(n ast.Node) bool {
				if stmt, ok := n.(*ast.DeclStmt); ok {
					if gen, ok := stmt.Decl.(*ast.GenDecl); ok {
						visitDecl(gen, true)
					}
				}
				return true
			})
		}
	}
}

// parseLine parses the text following "//byname:".
func parseLine(text string) (Directive, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Directive{}, fmt.Errorf("empty //byname directive")
	}
	if fields[0] != "enum" {
		return Directive{}, fmt.Errorf("unknown directive //byname:%s", fields[0])
	}
	if len(fields) < 2 || strings.Contains(fields[1], "=") {
		return Directive{}, fmt.Errorf("//byname:enum requires an enum type name")
	}

	d := Directive{Enum: fields[1]}
	if err := decodeParams(fields[2:], &d.Params); err != nil {
		return Directive{}, err
	}
	return d, nil
}

func decodeParams(args []string, p *Params) error {
	values := url.Values{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return fmt.Errorf("malformed parameter %q, want key=value", arg)
		}
		if values.Has(key) {
			return fmt.Errorf("parameter %q given more than once", key)
		}
		values.Set(key, value)
	}
	if err := decoder.Decode(p, values); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

// SplitEnum splits an enum reference into its qualifier and type name.
// The qualifier is empty for unqualified names, a package name for
// "paint.Color" and an import path for "example.com/paint.Color".
func SplitEnum(ref string) (qualifier, name string) {
	i := strings.LastIndex(ref, ".")
	if i < 0 {
		return "", ref
	}
	return ref[:i], ref[i+1:]
}
