// Package golang emits Go source for lookup-by-name accessors.
package golang

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/broady/byname/bynamegen/ir"
	"github.com/broady/byname/bynamegen/resolve"
)

// DefaultRuntimeImport is the import path of the runtime support package.
const DefaultRuntimeImport = "github.com/broady/byname"

// Config controls emission.
type Config struct {
	// RuntimeImport is the import path of the byname runtime package.
	// Default: DefaultRuntimeImport.
	RuntimeImport string

	// EmitComments adds a doc comment to every generated accessor.
	EmitComments bool
}

// Emitter writes the accessor declarations of the requests bound to one container.
// An Emitter is not safe for concurrent use; create one per generated file.
type Emitter struct {
	config    Config
	container ir.Container
	imports   *ImportSet
}

// NewEmitter creates an Emitter for declarations hosted by container.
func NewEmitter(config Config, container ir.Container) *Emitter {
	if config.RuntimeImport == "" {
		config.RuntimeImport = DefaultRuntimeImport
	}
	imports := NewImportSet(container.Package)
	imports.Reserve(container.Name)
	// Locals of the generated lookup shadow imports of the same name.
	imports.Reserve("name")
	imports.Reserve("zero")
	for _, name := range container.Scope {
		imports.Reserve(name)
	}
	return &Emitter{
		config:    config,
		container: container,
		imports:   imports,
	}
}

// Imports returns the imports required by everything emitted so far.
func (e *Emitter) Imports() *ImportSet { return e.imports }

// Emit writes the accessors of one request. slot distinguishes the private
// helpers of different requests on the same container.
//
// resolved must already be deduplicated by the resolve package; Emit
// returns an error wrapping resolve.ErrDuplicateName otherwise.
func (e *Emitter) Emit(buf *bytes.Buffer, req ir.Request, resolved []ir.EnumMember, slot int) error {
	if err := resolve.CheckUnique(resolved); err != nil {
		return fmt.Errorf("emit %s accessors for %s: %w", req.Enum.Name, e.container.Name, err)
	}

	b := &block{
		Emitter:  e,
		buf:      buf,
		req:      req,
		members:  resolved,
		prefix:   "_" + e.container.Name + "_" + strconv.Itoa(slot),
		enumType: e.imports.Qualify(req.Enum.Package, req.Enum.PackageName, req.Enum.Name),
	}

	fmt.Fprintf(buf, "// %s accessors (%s).\n\n", req.Enum.Name, req.Strategy)

	switch req.Strategy {
	case ir.StrategyAllOnce:
		b.emitAllOnce()
	case ir.StrategyEachTime:
		b.emitEachTime()
	case ir.StrategyLazy:
		b.emitLazy()
	case ir.StrategyDictionaryCache:
		b.emitDictionaryCache()
	default:
		return fmt.Errorf("emit %s accessors for %s: unsupported strategy %v", req.Enum.Name, e.container.Name, req.Strategy)
	}

	b.emitLookup()
	return nil
}

// block holds the state of one request's emission.
type block struct {
	*Emitter
	buf      *bytes.Buffer
	req      ir.Request
	members  []ir.EnumMember
	prefix   string // private helper prefix, e.g. "_Palette_0"
	enumType string // enum type as referenced from the generated file
}

func (b *block) lookupName() string { return b.prefix + "_lookup" }

// cellName returns the per-member variable, kept apart from the helpers by "_m_".
func (b *block) cellName(member string) string { return b.prefix + "_m_" + member }

// rt qualifies an identifier of the runtime package.
func (b *block) rt(ident string) string {
	return b.imports.Qualify(b.config.RuntimeImport, "byname", ident)
}

// emitAllOnce binds every member during package initialization.
func (b *block) emitAllOnce() {
	b.emitVars(func(m ir.EnumMember) string {
		return fmt.Sprintf("%s(%s, %s)", b.rt("Must"), b.lookupName(), strconv.Quote(m.Name))
	})
	for _, m := range b.members {
		b.emitAccessor(m, b.cellName(m.Name))
	}
}

// emitEachTime looks the member up on every call.
func (b *block) emitEachTime() {
	for _, m := range b.members {
		b.emitAccessor(m, fmt.Sprintf("%s(%s, %s)", b.rt("Must"), b.lookupName(), strconv.Quote(m.Name)))
	}
}

// emitLazy gives every member its own initialize-once cell.
func (b *block) emitLazy() {
	b.emitVars(func(m ir.EnumMember) string {
		return fmt.Sprintf("%s(%s, %s)", b.rt("Lazy"), b.lookupName(), strconv.Quote(m.Name))
	})
	for _, m := range b.members {
		b.emitAccessor(m, b.cellName(m.Name)+"()")
	}
}

// emitDictionaryCache shares one name-keyed cache between the request's members.
func (b *block) emitDictionaryCache() {
	cache := b.prefix + "_cache"
	fmt.Fprintf(b.buf, "var %s = %s(%s)\n\n", cache, b.rt("NewCache"), b.lookupName())
	for _, m := range b.members {
		b.emitAccessor(m, fmt.Sprintf("%s.Get(%s)", cache, strconv.Quote(m.Name)))
	}
}

func (b *block) emitVars(init func(ir.EnumMember) string) {
	if len(b.members) == 0 {
		return
	}
	b.buf.WriteString("var (\n")
	for _, m := range b.members {
		fmt.Fprintf(b.buf, "\t%s = %s\n", b.cellName(m.Name), init(m))
	}
	b.buf.WriteString(")\n\n")
}

func (b *block) emitAccessor(m ir.EnumMember, expr string) {
	if b.config.EmitComments {
		fmt.Fprintf(b.buf, "// %s returns the %s member named %q.\n", m.Name, b.req.Enum.Name, m.Name)
	}
	fmt.Fprintf(b.buf, "func (%s) %s() %s { return %s }\n\n", b.container.Name, m.Name, b.enumType, expr)
}

// emitLookup writes the private by-name lookup backing the accessors.
// Members are referenced by identifier so that a changed constant value is
// picked up without regenerating.
func (b *block) emitLookup() {
	fmt.Fprintf(b.buf, "func %s(name string) (%s, error) {\n", b.lookupName(), b.enumType)
	if len(b.members) > 0 {
		b.buf.WriteString("\tswitch name {\n")
		for _, m := range b.members {
			fmt.Fprintf(b.buf, "\tcase %s:\n\t\treturn %s, nil\n", strconv.Quote(m.Name),
				b.imports.Qualify(b.req.Enum.Package, b.req.Enum.PackageName, m.Name))
		}
		b.buf.WriteString("\t}\n")
	}
	fmt.Fprintf(b.buf, "\tvar zero %s\n", b.enumType)
	fmt.Fprintf(b.buf, "\treturn zero, %s(%s, name)\n}\n", b.rt("NotFound"), strconv.Quote(b.req.Enum.Name))
}
