// Package denorm implements the denormalizer: the inverse of pkg/normalize.
// Given canonical code plus one language's name_mapping and alias_mapping,
// it reconstructs author-visible source in that language (spec.md §4.5).
package denorm

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/odvcencio/codepool/pkg/canon"
	"github.com/odvcencio/codepool/pkg/pyast"
	gotreesitter "github.com/odvcencio/gotreesitter"
)

// PoolImportModule mirrors pkg/normalize's marker module path. Duplicated
// rather than imported so pkg/denorm has no dependency on pkg/normalize —
// the two packages are each other's inverse, not a pipeline.
const PoolImportModule = "pool.import"

var poolObjectPattern = regexp.MustCompile(`^object_[0-9a-f]+$`)

// Input is the per-language data needed to reconstruct source (spec.md §4.5
// input: normalized code + chosen name_mapping + alias_mapping).
type Input struct {
	NormalizedCode string
	NameMapping    map[string]string // canonical -> original
	AliasMapping   map[string]string // hash -> alias
	Docstring      string
}

type denormEdit struct {
	Start uint32
	End   uint32
	Text  string
}

// Denormalize reconstructs author-visible source from canonical code and one
// language mapping.
func Denormalize(in Input) (string, error) {
	m, err := pyast.Parse([]byte(in.NormalizedCode))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidNormalizedForm, err)
	}
	defer m.Release()

	if m.FunctionCount != 1 || m.Function == nil {
		return "", ErrInvalidNormalizedForm
	}
	fn := m.Function

	var edits []denormEdit

	renameErr := error(nil)
	visit := func(v pyast.IdentifierVisit) {
		if renameErr != nil {
			return
		}
		if orig, ok := in.NameMapping[v.Text]; ok {
			if orig != v.Text {
				edits = append(edits, denormEdit{Start: v.Node.StartByte(), End: v.Node.EndByte(), Text: orig})
			}
			return
		}
		if canon.IsCanonical(v.Text) {
			renameErr = &MappingIncompleteError{Canonical: v.Text}
		}
	}
	for _, dec := range fn.Decorators {
		m.WalkIdentifiers(dec, visit)
	}
	m.WalkIdentifiers(fn.DefNode, visit)
	if renameErr != nil {
		return "", renameErr
	}

	edits = append(edits, poolCallSiteEdits(m, fn.DefNode, in.AliasMapping)...)
	for _, dec := range fn.Decorators {
		edits = append(edits, poolCallSiteEdits(m, dec, in.AliasMapping)...)
	}

	for _, imp := range m.TopImports {
		if e, ok := poolImportAliasEdit(m, imp, in.AliasMapping); ok {
			edits = append(edits, e)
		}
	}

	if stmt, str, ok := m.IsDocstringStatement(fn.BodyNode); ok {
		if in.Docstring == "" {
			lineStart, lineEnd := lineSpan(in.NormalizedCode, stmt.StartByte(), stmt.EndByte())
			edits = append(edits, denormEdit{Start: lineStart, End: lineEnd, Text: ""})
		} else {
			edits = append(edits, denormEdit{Start: str.StartByte(), End: str.EndByte(), Text: `"""` + in.Docstring + `"""`})
		}
	}

	return splice([]byte(in.NormalizedCode), edits), nil
}

// poolCallSiteEdits finds calls of the form object_<H>._bb_v_0(args) inside
// node's subtree and, when H is a known alias, rewrites the callee to
// alias(args) (spec.md §4.5 step 4).
func poolCallSiteEdits(m *pyast.Module, node *gotreesitter.Node, aliasMapping map[string]string) []denormEdit {
	if node == nil {
		return nil
	}
	var out []denormEdit
	var walk func(n *gotreesitter.Node)
	walk = func(n *gotreesitter.Node) {
		if m.NodeType(n) == "call" {
			if fnExpr := n.NamedChild(0); fnExpr != nil && m.NodeType(fnExpr) == "attribute" {
				obj := fnExpr.NamedChild(0)
				attr := fnExpr.NamedChild(1)
				if obj != nil && attr != nil &&
					m.NodeType(obj) == "identifier" && m.NodeType(attr) == "identifier" &&
					m.NodeText(attr) == canon.Name(0) {
					objText := m.NodeText(obj)
					if poolObjectPattern.MatchString(objText) {
						hash := objText[len("object_"):]
						if alias, ok := aliasMapping[hash]; ok {
							out = append(out, denormEdit{Start: obj.StartByte(), End: fnExpr.EndByte(), Text: alias})
						}
					}
				}
			}
		}
		count := n.NamedChildCount()
		for i := 0; i < count; i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)
	return out
}

// poolImportAliasEdit reattaches "as <alias>" to a top-level pool import
// when its hash has a known alias (spec.md §4.5 step 3).
func poolImportAliasEdit(m *pyast.Module, imp pyast.Import, aliasMapping map[string]string) (denormEdit, bool) {
	if !imp.IsFrom || imp.FromModule != PoolImportModule {
		return denormEdit{}, false
	}
	count := imp.Node.NamedChildCount()
	var nameNode *gotreesitter.Node
	skippedModule := false
	for i := 0; i < count; i++ {
		c := imp.Node.NamedChild(i)
		if m.NodeType(c) != "dotted_name" {
			continue
		}
		if !skippedModule {
			skippedModule = true
			continue
		}
		nameNode = c
		break
	}
	if nameNode == nil {
		return denormEdit{}, false
	}
	objText := m.NodeText(nameNode)
	if !poolObjectPattern.MatchString(objText) {
		return denormEdit{}, false
	}
	hash := objText[len("object_"):]
	alias, ok := aliasMapping[hash]
	if !ok {
		return denormEdit{}, false
	}
	return denormEdit{
		Start: imp.Start,
		End:   imp.End,
		Text:  "from " + imp.FromModule + " import " + objText + " as " + alias,
	}, true
}

func lineSpan(source string, start, end uint32) (uint32, uint32) {
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

func splice(source []byte, edits []denormEdit) string {
	sorted := make([]denormEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out []byte
	var cursor uint32
	for _, e := range sorted {
		if e.Start < cursor {
			continue // overlapping edits: keep the earlier one, drop the redundant one
		}
		out = append(out, source[cursor:e.Start]...)
		out = append(out, e.Text...)
		cursor = e.End
	}
	out = append(out, source[cursor:]...)
	return string(out)
}
