package normalize

import "sort"

// edit replaces source[Start:End] with Text. Edits over one splice pass must
// be non-overlapping; splice sorts them by Start and concatenates the
// untouched gaps with each replacement, the same byte-range-is-truth
// discipline the teacher's pkg/entity uses for structural extraction,
// applied here to reconstruction instead.
type edit struct {
	Start uint32
	End   uint32
	Text  string
}

// splice applies edits over source and returns the resulting bytes.
// Overlapping edits are a programming error in this package's callers and
// panic rather than silently corrupting output.
func splice(source []byte, edits []edit) []byte {
	sorted := make([]edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out []byte
	var cursor uint32
	for _, e := range sorted {
		if e.Start < cursor {
			panic("normalize: overlapping edits")
		}
		out = append(out, source[cursor:e.Start]...)
		out = append(out, e.Text...)
		cursor = e.End
	}
	out = append(out, source[cursor:]...)
	return out
}
