package preprocess

import (
	"fmt"
	"sort"
)

// missingCategory stands in for a blank categorical cell.
const missingCategory = "nan"

// LabelEncoder maps each class to its index in the sorted class list.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// FitLabelEncoder learns the sorted distinct values.
func FitLabelEncoder(values []string) *LabelEncoder {
	seen := make(map[string]struct{})
	for _, v := range values {
		seen[v] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return newLabelEncoder(classes)
}

func newLabelEncoder(classes []string) *LabelEncoder {
	e := &LabelEncoder{classes: classes, index: make(map[string]int, len(classes))}
	for i, c := range classes {
		e.index[c] = i
	}
	return e
}

// Classes returns a copy of the class list.
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Transform encodes one value. Unseen values are an error.
func (e *LabelEncoder) Transform(v string) (int, error) {
	i, ok := e.index[v]
	if !ok {
		return 0, fmt.Errorf("unseen label %q", v)
	}
	return i, nil
}

// Inverse decodes an index.
func (e *LabelEncoder) Inverse(i int) (string, error) {
	if i < 0 || i >= len(e.classes) {
		return "", fmt.Errorf("label index %d out of range [0, %d)", i, len(e.classes))
	}
	return e.classes[i], nil
}
