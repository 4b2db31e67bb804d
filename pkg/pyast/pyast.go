// Package pyast parses a single Python function definition with tree-sitter
// and exposes it as a light structural view: the function header, its
// parameters (classified by binding kind), its body, and every import
// statement found anywhere in the source (top-level or nested inside the
// function). It does not build or rebuild source text; pkg/normalize and
// pkg/denorm consume the node ranges this package resolves and splice the
// original bytes directly, the same "entity = byte range" discipline the
// teacher's pkg/entity/extract.go uses for structural extraction.
package pyast

import (
	"fmt"

	gotreesitter "github.com/odvcencio/gotreesitter"
	"github.com/odvcencio/gotreesitter/grammars"
	classify "github.com/odvcencio/gts-suite/pkg/lang/treesitter"
)

// commentNodeTypes/importNodeTypes alias the teacher's shared, multi-language
// node-type classification sets (pkg/entity/extract.go aliases the same
// package the same way), used here for the two top-level dispatch categories
// that are genuinely language-agnostic. Everything past that point — which
// import/function shape, which parameter kind, which string is a docstring —
// is Python-specific and has no corresponding shared set (see DESIGN.md).
var (
	commentNodeTypes = classify.CommentNodeTypes
	importNodeTypes  = classify.ImportNodeTypes
)

// ParamKind classifies how a parameter binds arguments (spec.md §4.1: a
// parameter's declaration position and kind, not its name, determines its
// canonical ordinal).
type ParamKind int

const (
	ParamPositionalOnly ParamKind = iota
	ParamPositionalOrKeyword
	ParamVarArgs
	ParamKeywordOnly
	ParamKwArgs
)

// Param is one declared parameter.
type Param struct {
	Name         string
	Kind         ParamKind
	NameNode     *gotreesitter.Node // the identifier node to rewrite; nil for bare separators
	HasDefault   bool
	DefaultStart uint32 // byte offset of the default-value expression, if HasDefault
	DefaultEnd   uint32
}

// Import is one import statement found anywhere in the source.
type Import struct {
	Node   *gotreesitter.Node // import_statement or import_from_statement
	Start  uint32
	End    uint32
	FromModule string // dotted module path text for "from X import ...", else ""
	IsFrom bool
}

// Function is the single function definition this source holds.
type Function struct {
	OuterNode *gotreesitter.Node // decorated_definition if present, else DefNode
	DefNode   *gotreesitter.Node // the function_definition node
	NameNode  *gotreesitter.Node
	Name      string
	IsAsync   bool
	Params    []Param
	ParamsEnd uint32 // byte offset just past the closing ')'
	BodyNode  *gotreesitter.Node // the "block" node
	Decorators []*gotreesitter.Node
}

// Module is the parsed result of one source file.
type Module struct {
	Tree   *gotreesitter.BoundTree
	Source []byte

	// TopImports are import statements that are direct children of the
	// module (outside the function body).
	TopImports []Import

	// Function is the single function definition found, if exactly one.
	Function *Function

	// FunctionCount is the number of function-definition-like top-level
	// nodes encountered (including decorated ones); callers use this to
	// detect zero-or-many before trusting Function.
	FunctionCount int

	// UnsupportedNodes are top-level node types neither import nor
	// function/decorated-function (e.g. class_definition, a bare
	// expression_statement). Non-empty means the input uses a construct
	// spec.md's single-function grammar does not accept.
	UnsupportedNodes []*gotreesitter.Node
}

// Release frees the underlying tree-sitter tree. Callers must call this once
// done with a parsed Module.
func (m *Module) Release() {
	if m.Tree != nil {
		m.Tree.Release()
	}
}

// NodeType reports a tree-sitter node's grammar type through the module's
// bound tree.
func (m *Module) NodeType(n *gotreesitter.Node) string { return m.Tree.NodeType(n) }

// NodeText reports a tree-sitter node's source text through the module's
// bound tree.
func (m *Module) NodeText(n *gotreesitter.Node) string { return m.Tree.NodeText(n) }

// Parse parses a Python source buffer and locates its function definition
// and import statements. filename only needs a ".py" suffix; it is never
// read from disk (grammars.ParseFile uses it solely to pick a grammar, the
// same contract pkg/entity/extract.go relies on).
func Parse(source []byte) (*Module, error) {
	bt, err := grammars.ParseFile("function.py", source)
	if err != nil {
		return nil, fmt.Errorf("pyast: parse error: %w", err)
	}

	m := &Module{Tree: bt, Source: source}
	root := bt.RootNode()
	if root == nil {
		return m, nil
	}

	childCount := root.ChildCount()
	for i := 0; i < childCount; i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		childType := bt.NodeType(child)
		switch {
		case commentNodeTypes[childType]:
			// Ignored: carries no structural content for this grammar.
			continue
		case importNodeTypes[childType]:
			m.TopImports = append(m.TopImports, newImport(bt, child))
			continue
		}

		switch childType {
		case "function_definition":
			m.FunctionCount++
			if m.Function == nil {
				m.Function = newFunction(bt, child, nil)
			}
		case "decorated_definition":
			if fn := unwrapDecorated(bt, child); fn != nil {
				m.FunctionCount++
				if m.Function == nil {
					m.Function = fn
				}
				continue
			}
			m.UnsupportedNodes = append(m.UnsupportedNodes, child)
		default:
			m.UnsupportedNodes = append(m.UnsupportedNodes, child)
		}
	}

	return m, nil
}

func unwrapDecorated(bt *gotreesitter.BoundTree, outer *gotreesitter.Node) *Function {
	var decorators []*gotreesitter.Node
	named := outer.NamedChildCount()
	for i := 0; i < named; i++ {
		child := outer.NamedChild(i)
		switch bt.NodeType(child) {
		case "decorator":
			decorators = append(decorators, child)
		case "function_definition":
			fn := newFunction(bt, child, decorators)
			fn.OuterNode = outer
			return fn
		}
	}
	return nil
}

func newFunction(bt *gotreesitter.BoundTree, def *gotreesitter.Node, decorators []*gotreesitter.Node) *Function {
	fn := &Function{
		OuterNode:  def,
		DefNode:    def,
		Decorators: decorators,
	}

	named := def.NamedChildCount()
	for i := 0; i < named; i++ {
		child := def.NamedChild(i)
		switch bt.NodeType(child) {
		case "identifier":
			if fn.NameNode == nil {
				fn.NameNode = child
				fn.Name = bt.NodeText(child)
			}
		case "parameters":
			fn.Params = classifyParameters(bt, child)
			fn.ParamsEnd = child.EndByte()
		case "block":
			fn.BodyNode = child
		}
	}

	full := def.ChildCount()
	for i := 0; i < full; i++ {
		if bt.NodeType(def.Child(i)) == "async" {
			fn.IsAsync = true
			break
		}
	}

	return fn
}

func newImport(bt *gotreesitter.BoundTree, node *gotreesitter.Node) Import {
	imp := Import{Node: node, Start: node.StartByte(), End: node.EndByte()}
	if bt.NodeType(node) != "import_from_statement" {
		return imp
	}
	imp.IsFrom = true
	named := node.NamedChildCount()
	for i := 0; i < named; i++ {
		child := node.NamedChild(i)
		switch bt.NodeType(child) {
		case "dotted_name", "relative_import":
			imp.FromModule = bt.NodeText(child)
		}
		if imp.FromModule != "" {
			break
		}
	}
	return imp
}

// classifyParameters walks a "parameters" node's children, classifying each
// by declaration-order binding kind. tree-sitter-python represents bare "*"
// and "/" separators as keyword_separator/positional_separator nodes; the
// walk also accepts the raw "*"/"/" tokens, and uses ChildCount/Child (not
// the Named variants) so that either shape is seen.
func classifyParameters(bt *gotreesitter.BoundTree, params *gotreesitter.Node) []Param {
	var out []Param
	seenStar := false

	count := params.ChildCount()
	for i := 0; i < count; i++ {
		child := params.Child(i)
		if child == nil {
			continue
		}
		t := bt.NodeType(child)

		switch t {
		case "(", ")", ",":
			continue
		case "/", "positional_separator":
			for j := range out {
				out[j].Kind = ParamPositionalOnly
			}
			continue
		case "*", "keyword_separator":
			seenStar = true
			continue
		case "list_splat_pattern":
			out = append(out, Param{
				Name:     bt.NodeText(firstIdentifier(bt, child)),
				Kind:     ParamVarArgs,
				NameNode: firstIdentifier(bt, child),
			})
			seenStar = true
			continue
		case "dictionary_splat_pattern":
			out = append(out, Param{
				Name:     bt.NodeText(firstIdentifier(bt, child)),
				Kind:     ParamKwArgs,
				NameNode: firstIdentifier(bt, child),
			})
			continue
		case "identifier":
			out = append(out, Param{
				Name:     bt.NodeText(child),
				Kind:     paramKindFor(seenStar),
				NameNode: child,
			})
		case "typed_parameter":
			nameNode := firstIdentifier(bt, child)
			out = append(out, Param{
				Name:     bt.NodeText(nameNode),
				Kind:     paramKindFor(seenStar),
				NameNode: nameNode,
			})
		case "default_parameter", "typed_default_parameter":
			p := Param{Kind: paramKindFor(seenStar)}
			namedCount := child.NamedChildCount()
			if namedCount >= 1 {
				nameNode := child.NamedChild(0)
				if bt.NodeType(nameNode) == "typed_parameter" {
					nameNode = firstIdentifier(bt, nameNode)
				}
				p.NameNode = nameNode
				p.Name = bt.NodeText(nameNode)
			}
			if namedCount >= 2 {
				def := child.NamedChild(namedCount - 1)
				p.HasDefault = true
				p.DefaultStart = def.StartByte()
				p.DefaultEnd = def.EndByte()
			}
			out = append(out, p)
		}
	}
	return out
}

func paramKindFor(seenStar bool) ParamKind {
	if seenStar {
		return ParamKeywordOnly
	}
	return ParamPositionalOrKeyword
}

func firstIdentifier(bt *gotreesitter.BoundTree, node *gotreesitter.Node) *gotreesitter.Node {
	if bt.NodeType(node) == "identifier" {
		return node
	}
	count := node.NamedChildCount()
	for i := 0; i < count; i++ {
		if found := firstIdentifier(bt, node.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}
