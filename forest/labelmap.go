package forest

import "sort"

// LabelMap remaps arbitrary, possibly non-dense or negative, int32 class
// labels to dense 0..K-1 class indices. spec.md §3 allows class labels to
// be any distinct int32 values ("labels need not be dense"); §4.E step 2
// has the trainer build this map from the sorted unique set of y before
// any tree sees the data, and §4.F maps predicted indices back through it.
type LabelMap struct {
	Classes []int32 // dense class index -> original label value, ascending
}

// NewLabelMap builds the label-index map from the sorted unique values of
// y and returns y re-expressed as dense class indices alongside it.
func NewLabelMap(y []int32) (*LabelMap, []int32) {
	seen := make(map[int32]struct{}, len(y))
	for _, v := range y {
		seen[v] = struct{}{}
	}
	classes := make([]int32, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	toIdx := make(map[int32]int32, len(classes))
	for i, c := range classes {
		toIdx[c] = int32(i)
	}

	encoded := make([]int32, len(y))
	for i, v := range y {
		encoded[i] = toIdx[v]
	}
	return &LabelMap{Classes: classes}, encoded
}

// NClasses returns the number of distinct classes in the map.
func (m *LabelMap) NClasses() int {
	return len(m.Classes)
}

// Decode maps a dense class index back to its original label value.
func (m *LabelMap) Decode(classIdx int32) int32 {
	return m.Classes[classIdx]
}
