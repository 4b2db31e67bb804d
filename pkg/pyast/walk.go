package pyast

import gotreesitter "github.com/odvcencio/gotreesitter"

// IdentifierVisit describes one identifier-reference occurrence found by
// WalkIdentifiers.
type IdentifierVisit struct {
	Node *gotreesitter.Node
	Text string

	// IsCallCallee is true when this identifier is the bare (non-attribute)
	// function expression of a call: `name(...)`. pkg/normalize uses this to
	// decide between an ordinary identifier rename and a pool-import
	// call-site rewrite (spec.md §4.1 call-rewrite rule).
	IsCallCallee bool
	Call         *gotreesitter.Node
}

// WalkIdentifiers visits every identifier node in node's subtree that is a
// genuine name *reference* or *binding* site, in left-to-right pre-order.
// It deliberately does not descend into:
//
//   - import_statement / import_from_statement subtrees: pkg/normalize
//     rewrites these wholesale from pyast.Import data, not token by token.
//   - the attribute-name half of an "attribute" node (`obj.attr`): attr is
//     not an independent binding, it is resolved dynamically on obj.
//   - the keyword-name half of a "keyword_argument" node (`f(x=1)`): x here
//     names a parameter slot on the callee, not a local binding.
func (m *Module) WalkIdentifiers(node *gotreesitter.Node, visit func(IdentifierVisit)) {
	if node == nil {
		return
	}
	m.walk(node, nil, visit)
}

func (m *Module) walk(node *gotreesitter.Node, enclosingCall *gotreesitter.Node, visit func(IdentifierVisit)) {
	t := m.Tree.NodeType(node)

	switch t {
	case "import_statement", "import_from_statement":
		return
	case "identifier":
		visit(IdentifierVisit{
			Node:         node,
			Text:         m.Tree.NodeText(node),
			IsCallCallee: enclosingCall != nil,
			Call:         enclosingCall,
		})
		return
	case "attribute":
		if obj := node.NamedChild(0); obj != nil {
			m.walk(obj, nil, visit)
		}
		return
	case "keyword_argument":
		if value := node.NamedChild(1); value != nil {
			m.walk(value, nil, visit)
		}
		return
	case "call":
		fn := node.NamedChild(0)
		if fn != nil {
			if m.Tree.NodeType(fn) == "identifier" {
				m.walk(fn, node, visit)
			} else {
				m.walk(fn, nil, visit)
			}
		}
		count := node.NamedChildCount()
		for i := 1; i < count; i++ {
			m.walk(node.NamedChild(i), nil, visit)
		}
		return
	}

	count := node.NamedChildCount()
	for i := 0; i < count; i++ {
		m.walk(node.NamedChild(i), nil, visit)
	}
}

// IsDocstringStatement reports whether the first statement of a function
// body is a bare string-literal expression statement (a docstring), and
// returns its enclosing expression_statement node and string node.
func (m *Module) IsDocstringStatement(body *gotreesitter.Node) (stmt, str *gotreesitter.Node, ok bool) {
	if body == nil || body.NamedChildCount() == 0 {
		return nil, nil, false
	}
	first := body.NamedChild(0)
	if m.Tree.NodeType(first) != "expression_statement" {
		return nil, nil, false
	}
	if first.NamedChildCount() != 1 {
		return nil, nil, false
	}
	inner := first.NamedChild(0)
	if m.Tree.NodeType(inner) != "string" {
		return nil, nil, false
	}
	return first, inner, true
}

// StringValue extracts the text between a "string" node's quote delimiters,
// stripping a leading string-prefix (e.g. r, b, f) and one, two, or three
// matching quote characters from each end.
func (m *Module) StringValue(str *gotreesitter.Node) string {
	raw := m.Tree.NodeText(str)
	return stripStringQuotes(raw)
}

func stripStringQuotes(raw string) string {
	i := 0
	for i < len(raw) && isStringPrefixByte(raw[i]) {
		i++
	}
	rest := raw[i:]
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if len(rest) >= 2*len(q) && rest[:len(q)] == q && rest[len(rest)-len(q):] == q {
			return rest[len(q) : len(rest)-len(q)]
		}
	}
	return rest
}

func isStringPrefixByte(b byte) bool {
	switch b {
	case 'r', 'R', 'b', 'B', 'f', 'F', 'u', 'U':
		return true
	default:
		return false
	}
}
