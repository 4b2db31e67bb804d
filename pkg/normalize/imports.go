package normalize

import (
	"strings"

	gotreesitter "github.com/odvcencio/gotreesitter"
	"github.com/odvcencio/codepool/pkg/pyast"
)

// PoolImportModule is the fixed module path that marks a pool import (spec.md
// §4.2 step 3, §REDESIGN note "the marker module path is a configuration
// constant"). It is compared against the raw dotted-module text of a
// from-import, never against a parsed/interpreted module identity.
const PoolImportModule = "pool.import"

// importPlan is the canonicalization decision for one import statement:
// the text it becomes in canonical form, and what it contributes to the
// do-not-rename set / pool alias table.
type importPlan struct {
	Node          *gotreesitter.Node
	CanonicalText string
	BoundNames    []string // local names this import binds; excluded from renaming
	PoolHash      string   // non-empty if this is a pool import
	PoolAlias     string   // effective local call name bound to PoolHash
}

// importName is one dotted_name or aliased_import entry inside an import
// list.
type importName struct {
	Dotted string
	Alias  string // "" if unaliased
}

func parseImportList(m *pyast.Module, node *gotreesitter.Node, skipFirstDotted bool) []importName {
	var out []importName
	skipped := false
	count := node.NamedChildCount()
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		switch m.NodeType(child) {
		case "dotted_name":
			if skipFirstDotted && !skipped {
				skipped = true
				continue
			}
			out = append(out, importName{Dotted: m.NodeText(child)})
		case "aliased_import":
			var dotted, alias string
			nc := child.NamedChildCount()
			for j := 0; j < nc; j++ {
				gc := child.NamedChild(j)
				switch m.NodeType(gc) {
				case "dotted_name":
					dotted = m.NodeText(gc)
				case "identifier":
					alias = m.NodeText(gc)
				}
			}
			out = append(out, importName{Dotted: dotted, Alias: alias})
		}
	}
	return out
}

func firstSegment(dotted string) string {
	if i := strings.IndexByte(dotted, '.'); i >= 0 {
		return dotted[:i]
	}
	return dotted
}

// planImport classifies one import statement and decides its canonical
// rewrite, per spec.md §4.2 step 3.
func planImport(m *pyast.Module, imp pyast.Import) importPlan {
	plan := importPlan{Node: imp.Node}

	if !imp.IsFrom {
		names := parseImportList(m, imp.Node, false)
		var parts []string
		for _, n := range names {
			bound := firstSegment(n.Dotted)
			if n.Alias != "" {
				bound = n.Alias
			}
			plan.BoundNames = append(plan.BoundNames, bound)
			parts = append(parts, n.Dotted)
		}
		plan.CanonicalText = "import " + strings.Join(parts, ", ")
		return plan
	}

	// from-import: the module-path child comes first; wildcard imports have
	// no named children beyond it.
	isWildcard := hasWildcardImport(m, imp.Node)
	if isWildcard {
		plan.CanonicalText = "from " + imp.FromModule + " import *"
		return plan
	}

	names := parseImportList(m, imp.Node, true)
	isPool := imp.FromModule == PoolImportModule

	var parts []string
	for _, n := range names {
		bound := n.Dotted
		if n.Alias != "" {
			bound = n.Alias
		}
		if isPool && len(names) == 1 {
			plan.PoolHash = strings.TrimPrefix(n.Dotted, "object_")
			plan.PoolAlias = bound
		}
		plan.BoundNames = append(plan.BoundNames, bound)
		parts = append(parts, n.Dotted)
	}
	plan.CanonicalText = "from " + imp.FromModule + " import " + strings.Join(parts, ", ")
	return plan
}

func hasWildcardImport(m *pyast.Module, node *gotreesitter.Node) bool {
	count := node.ChildCount()
	for i := 0; i < count; i++ {
		child := node.Child(i)
		if child != nil && m.NodeType(child) == "*" {
			return true
		}
	}
	return false
}
