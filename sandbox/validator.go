package sandbox

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// ImportPolicy is the Layer 1 import whitelist. Any import not in Allowed is
// rejected; Allowed is consulted only when Allowed is non-empty, so callers
// can pass an empty policy during tests to mean "parse only".
type ImportPolicy struct {
	Allowed map[string]bool
}

// DefaultImportPolicy returns the package's baseline whitelist: pure
// computation and text/data handling, nothing that touches the filesystem,
// network, or process table.
func DefaultImportPolicy() ImportPolicy {
	return ImportPolicy{Allowed: map[string]bool{
		"fmt":             true,
		"strings":         true,
		"strconv":         true,
		"math":            true,
		"math/rand":       true,
		"sort":            true,
		"time":            true,
		"errors":          true,
		"regexp":          true,
		"unicode":         true,
		"unicode/utf8":    true,
		"bytes":           true,
		"encoding/json":   true,
		"encoding/base64": true,
	}}
}

// denylistedCalls are qualified-identifier calls rejected regardless of
// whether the package that owns them made it past the import whitelist —
// defense in depth for a whitelisted package that also exposes a dangerous
// call (e.g. a future addition to the allowed set).
var denylistedCalls = map[string]bool{
	"os.Open":          true,
	"os.OpenFile":      true,
	"os.Create":        true,
	"os.Remove":        true,
	"os.RemoveAll":     true,
	"os.Exit":          true,
	"os.Getenv":        true,
	"os.Setenv":        true,
	"exec.Command":     true,
	"exec.CommandContext": true,
	"net.Dial":         true,
	"net.Listen":       true,
	"http.Get":         true,
	"http.Post":        true,
	"http.NewRequest":  true,
	"plugin.Open":      true,
	"unsafe.Pointer":   true,
	"reflect.NewAt":    true,
}

// Violation describes one reason Layer 1 rejected a program.
type Violation struct {
	Reason string
	Pos    token.Position
}

func (v Violation) String() string {
	if v.Pos.IsValid() {
		return fmt.Sprintf("%s (%s)", v.Reason, v.Pos)
	}
	return v.Reason
}

// Validator is the sandbox's Layer 1: it parses source into an AST and
// walks it for disallowed imports and calls before any code is ever
// compiled or interpreted.
type Validator struct {
	policy ImportPolicy
}

// NewValidator builds a Layer 1 validator against the given import policy.
func NewValidator(policy ImportPolicy) *Validator {
	return &Validator{policy: policy}
}

// Validate parses src as a Go source file and returns every violation
// found. An empty result means the program may proceed to Layer 2.
func (v *Validator) Validate(src string) ([]Violation, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "submission.go", src, parser.ParseComments)
	if err != nil {
		return nil, &parseError{err: err}
	}

	var violations []Violation

	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		if len(v.policy.Allowed) > 0 && !v.policy.Allowed[path] {
			violations = append(violations, Violation{
				Reason: fmt.Sprintf("import %q is not on the allowed list", path),
				Pos:    fset.Position(imp.Pos()),
			})
		}
	}

	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		pkgIdent, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		qualified := pkgIdent.Name + "." + sel.Sel.Name
		if denylistedCalls[qualified] {
			violations = append(violations, Violation{
				Reason: fmt.Sprintf("call to %s is not permitted", qualified),
				Pos:    fset.Position(call.Pos()),
			})
		}
		return true
	})

	ast.Inspect(file, func(n ast.Node) bool {
		if g, ok := n.(*ast.GoStmt); ok {
			violations = append(violations, Violation{
				Reason: "go statements are not permitted in sandboxed code",
				Pos:    fset.Position(g.Pos()),
			})
		}
		return true
	})

	return violations, nil
}

type parseError struct{ err error }

func (e *parseError) Error() string { return fmt.Sprintf("source does not parse: %v", e.err) }
func (e *parseError) Unwrap() error { return e.err }
