// Package normalize implements the AST normalizer: it turns one parsed
// Python function into the canonical form spec.md §4.2 defines — identifiers
// replaced by positional canonical names, imports classified and sorted,
// the docstring extracted and sentinelized, pool-import call sites rewritten
// to their hash-addressed form — using tree-sitter node ranges from
// pkg/pyast and a byte-range splice over the original source rather than
// AST-to-text regeneration, so the canonical output is always exactly the
// author's bytes outside the spans this package deliberately rewrites.
package normalize

import (
	"fmt"
	"sort"

	"github.com/odvcencio/codepool/pkg/canon"
	"github.com/odvcencio/codepool/pkg/pyast"
	gotreesitter "github.com/odvcencio/gotreesitter"
)

// DefaultDocstringSentinel is the fixed, non-empty placeholder docstring
// text canonical code carries in place of the author's real docstring
// (spec.md §4.2 step 2).
const DefaultDocstringSentinel = "canonical function"

// Options configures one Normalize call. The zero value is usable; it fills
// in DefaultDocstringSentinel.
type Options struct {
	DocstringSentinel string
}

func (o Options) sentinel() string {
	if o.DocstringSentinel == "" {
		return DefaultDocstringSentinel
	}
	return o.DocstringSentinel
}

// Result is the NormalizationResult spec.md §4.2 defines.
type Result struct {
	NormalizedCode            string
	NormalizedCodeNoDocstring string
	Docstring                 string
	IsAsync                   bool
	NameMapping               map[string]string
	NameOrder                 []string
	AliasMapping              map[string]string
}

// Normalize parses source (expected to hold exactly one Python function
// definition, plus optional import statements) and produces its canonical
// form.
func Normalize(source []byte, opts Options) (*Result, error) {
	m, err := pyast.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	defer m.Release()

	if m.FunctionCount != 1 {
		return nil, &MultipleDefinitionsError{Count: m.FunctionCount}
	}
	if len(m.UnsupportedNodes) > 0 {
		n := m.UnsupportedNodes[0]
		return nil, &UnsupportedConstructError{
			Construct: m.NodeType(n),
			Start:     n.StartByte(),
			End:       n.EndByte(),
		}
	}

	fn := m.Function

	var findYield func(n *gotreesitter.Node) *gotreesitter.Node
	findYield = func(n *gotreesitter.Node) *gotreesitter.Node {
		if n == nil || m.NodeType(n) == "yield" {
			return n
		}
		count := n.NamedChildCount()
		for i := 0; i < count; i++ {
			if y := findYield(n.NamedChild(i)); y != nil {
				return y
			}
		}
		return nil
	}
	if y := findYield(fn.BodyNode); y != nil {
		return nil, &UnsupportedConstructError{Construct: "yield", Start: y.StartByte(), End: y.EndByte()}
	}

	allImports := append([]pyast.Import{}, m.TopImports...)
	nested := collectNestedImports(m, fn.BodyNode)
	allImports = append(allImports, nested...)

	doNotRename := map[string]bool{}
	poolAliasToHash := map[string]string{}
	plans := make(map[*gotreesitter.Node]importPlan, len(allImports))
	for _, imp := range allImports {
		plan := planImport(m, imp)
		plans[imp.Node] = plan
		for _, n := range plan.BoundNames {
			doNotRename[n] = true
		}
		if plan.PoolHash != "" {
			poolAliasToHash[plan.PoolAlias] = plan.PoolHash
		}
	}

	aliasToImported := map[string]string{} // standard-import "as" alias -> imported name
	for _, imp := range allImports {
		if imp.IsFrom && imp.FromModule == PoolImportModule {
			continue
		}
		for _, n := range parseImportList(m, imp.Node, imp.IsFrom) {
			if n.Alias != "" {
				aliasToImported[n.Alias] = n.Dotted
			}
		}
	}

	skip := make(map[string]bool, len(doNotRename)+len(pyast.Builtins))
	for k := range pyast.Builtins {
		skip[k] = true
	}
	for k := range doNotRename {
		skip[k] = true
	}

	alloc := canon.New(skip)
	alloc.AssignFunctionName(fn.Name)
	for _, p := range fn.Params {
		if p.Name != "" {
			alloc.AssignParam(p.Name)
		}
	}

	outerStart := fn.OuterNode.StartByte()
	outerEnd := fn.OuterNode.EndByte()

	var commonEdits []edit
	usedHashes := map[string]bool{}

	visit := func(v pyast.IdentifierVisit) {
		if v.IsCallCallee {
			if hash, ok := poolAliasToHash[v.Text]; ok {
				usedHashes[hash] = true
				commonEdits = append(commonEdits, edit{
					Start: v.Node.StartByte(),
					End:   v.Node.EndByte(),
					Text:  fmt.Sprintf("object_%s.%s", hash, canon.Name(0)),
				})
				return
			}
		}
		if imported, ok := aliasToImported[v.Text]; ok {
			commonEdits = append(commonEdits, edit{Start: v.Node.StartByte(), End: v.Node.EndByte(), Text: imported})
			return
		}
		canonical := alloc.Resolve(v.Text)
		if canonical != v.Text {
			commonEdits = append(commonEdits, edit{Start: v.Node.StartByte(), End: v.Node.EndByte(), Text: canonical})
		}
	}

	for _, dec := range fn.Decorators {
		m.WalkIdentifiers(dec, visit)
	}
	m.WalkIdentifiers(fn.DefNode, visit)

	// Nested (function-local) imports are rewritten in place; top-level
	// imports are relocated into the sorted preamble instead (spec.md §4.2
	// step 7), so only nested ones get an edit inside the decl span.
	for _, imp := range nested {
		plan := plans[imp.Node]
		commonEdits = append(commonEdits, edit{Start: imp.Start, End: imp.End, Text: plan.CanonicalText})
	}

	var preambleParts []string
	for _, imp := range m.TopImports {
		preambleParts = append(preambleParts, plans[imp.Node].CanonicalText)
	}
	sort.Strings(preambleParts)
	preamble := ""
	if len(preambleParts) > 0 {
		for _, p := range preambleParts {
			preamble += p + "\n"
		}
		preamble += "\n"
	}

	docstring := ""
	var sentinelEdits, noDocstringEdits []edit
	if stmt, str, ok := m.IsDocstringStatement(fn.BodyNode); ok {
		docstring = m.StringValue(str)
		sentinelEdits = []edit{{
			Start: str.StartByte(),
			End:   str.EndByte(),
			Text:  `"""` + opts.sentinel() + `"""`,
		}}
		lineStart, lineEnd := lineSpan(source, stmt.StartByte(), stmt.EndByte())
		noDocstringEdits = []edit{{Start: lineStart, End: lineEnd, Text: ""}}
	}

	withSentinel := append(append([]edit{}, commonEdits...), sentinelEdits...)
	withoutDocstring := append(append([]edit{}, commonEdits...), noDocstringEdits...)

	declWithSentinel := spliceSpan(source, outerStart, outerEnd, withSentinel)
	declNoDocstring := spliceSpan(source, outerStart, outerEnd, withoutDocstring)

	aliasMapping := map[string]string{}
	for hash := range usedHashes {
		for _, imp := range allImports {
			if p := plans[imp.Node]; p.PoolHash == hash {
				aliasMapping[hash] = p.PoolAlias
			}
		}
	}

	return &Result{
		NormalizedCode:            preamble + declWithSentinel,
		NormalizedCodeNoDocstring: preamble + declNoDocstring,
		Docstring:                 docstring,
		IsAsync:                   fn.IsAsync,
		NameMapping:               alloc.NameMapping(),
		NameOrder:                 alloc.Order(),
		AliasMapping:              aliasMapping,
	}, nil
}

func spliceSpan(source []byte, start, end uint32, edits []edit) string {
	rel := make([]edit, len(edits))
	for i, e := range edits {
		rel[i] = edit{Start: e.Start - start, End: e.End - start, Text: e.Text}
	}
	return string(splice(source[start:end], rel))
}

// collectNestedImports finds import statements anywhere inside node's
// subtree (function-local imports). It does not need to guard against
// descending into an already-found import statement's own children, since
// tree-sitter-python import nodes never nest another import statement.
func collectNestedImports(m *pyast.Module, node *gotreesitter.Node) []pyast.Import {
	if node == nil {
		return nil
	}
	var out []pyast.Import
	var walk func(n *gotreesitter.Node)
	walk = func(n *gotreesitter.Node) {
		switch m.NodeType(n) {
		case "import_statement":
			out = append(out, pyast.Import{Node: n, Start: n.StartByte(), End: n.EndByte()})
			return
		case "import_from_statement":
			imp := pyast.Import{Node: n, Start: n.StartByte(), End: n.EndByte(), IsFrom: true}
			count := n.NamedChildCount()
			for i := 0; i < count; i++ {
				c := n.NamedChild(i)
				t := m.NodeType(c)
				if t == "dotted_name" || t == "relative_import" {
					imp.FromModule = m.NodeText(c)
					break
				}
			}
			out = append(out, imp)
			return
		}
		count := n.NamedChildCount()
		for i := 0; i < count; i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)
	return out
}

// lineSpan widens [start,end) to cover the full physical line(s) it sits on,
// including leading indentation and one trailing newline, so deleting a
// docstring statement does not leave a blank, indented line behind.
func lineSpan(source []byte, start, end uint32) (uint32, uint32) {
	lineStart := start
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	lineEnd := end
	if int(lineEnd) < len(source) && source[lineEnd] == '\n' {
		lineEnd++
	}
	return lineStart, lineEnd
}
