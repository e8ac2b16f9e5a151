package lang

import (
	"strings"

	"github.com/expr-lang/expr/ast"
)

// namePatcher makes identifiers of manifest expression bodies
// case-insensitive, as they are in scripts, and records which parameters a
// body reads.
type namePatcher struct {
	params map[string]bool
	used   map[string]bool
}

func newNamePatcher(params []ManifestParam) *namePatcher {
	p := &namePatcher{
		params: make(map[string]bool, len(params)),
		used:   make(map[string]bool, len(params)),
	}

	for _, param := range params {
		p.params[strings.ToLower(param.Name)] = true
	}

	return p
}

// Visit implements ast.Visitor.
func (p *namePatcher) Visit(node *ast.Node) {
	ident, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}

	name := strings.ToLower(ident.Value)
	if p.params[name] {
		p.used[name] = true
	}

	if name != ident.Value {
		ast.Patch(node, &ast.IdentifierNode{Value: name})
	}
}

// unused returns the declared parameters the body never reads, in
// declaration order.
func (p *namePatcher) unused(params []ManifestParam) []string {
	var names []string

	for _, param := range params {
		if !p.used[strings.ToLower(param.Name)] {
			names = append(names, param.Name)
		}
	}

	return names
}
