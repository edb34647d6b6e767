package golang

import (
	"bytes"
	"path"
	"slices"
	"strconv"
	"strings"
)

// Import is one entry of a generated import block.
type Import struct {
	Path string
	Name string // local name used to qualify references
}

// ImportSet assigns collision-free local names to the packages a generated
// file refers to. References to the file's own package are unqualified.
type ImportSet struct {
	self    string
	byPath  map[string]string
	taken   map[string]bool
	ordered []Import
}

// NewImportSet creates an ImportSet for a file in package self.
func NewImportSet(self string) *ImportSet {
	return &ImportSet{
		self:   self,
		byPath: make(map[string]string),
		taken:  make(map[string]bool),
	}
}

// Add registers pkgPath, whose package clause says name, and returns the
// local name to qualify its identifiers with. It returns "" for the file's
// own package.
func (s *ImportSet) Add(pkgPath, name string) string {
	if pkgPath == s.self {
		return ""
	}
	if local, ok := s.byPath[pkgPath]; ok {
		return local
	}

	if name == "" {
		name = path.Base(pkgPath)
	}
	base := sanitizeIdentifier(name)
	local := base
	for i := 2; s.taken[local]; i++ {
		local = base + strconv.Itoa(i)
	}

	s.byPath[pkgPath] = local
	s.taken[local] = true
	s.ordered = append(s.ordered, Import{Path: pkgPath, Name: local})
	return local
}

// Qualify returns ident as referenced from the file, e.g. "paint.Color".
func (s *ImportSet) Qualify(pkgPath, name, ident string) string {
	if local := s.Add(pkgPath, name); local != "" {
		return local + "." + ident
	}
	return ident
}

// Imports returns the registered imports sorted by path.
func (s *ImportSet) Imports() []Import {
	out := slices.Clone(s.ordered)
	slices.SortFunc(out, func(a, b Import) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

// Reserve marks a file-scope identifier that no import may be named after.
func (s *ImportSet) Reserve(ident string) {
	s.taken[ident] = true
}

// WriteBlock writes the import block. Nothing is written for an empty set.
func (s *ImportSet) WriteBlock(buf *bytes.Buffer) {
	imports := s.Imports()
	if len(imports) == 0 {
		return
	}

	buf.WriteString("import (\n")
	for _, imp := range imports {
		buf.WriteString("\t")
		if imp.Name != path.Base(imp.Path) {
			buf.WriteString(imp.Name)
			buf.WriteString(" ")
		}
		buf.WriteString(strconv.Quote(imp.Path))
		buf.WriteString("\n")
	}
	buf.WriteString(")\n\n")
}
