package lattice

import "fmt"

// Kind discriminates the payload held by a Value.
type Kind uint8

const (
	// KindAbsent is the zero Kind: the value of a cell that has never been
	// written. It is the identity element of Merge.
	KindAbsent Kind = iota
	// KindScalar holds a single cty primitive: number, string, bool or null.
	KindScalar
	// KindList is the legacy untagged sequence. Merging two of them
	// concatenates; there is no contradiction path.
	KindList
	// KindMap is the legacy untagged dictionary with insertion-ordered keys.
	// Merging two of them unions keys and recursively merges shared ones.
	KindMap
	KindGrowSet
	KindShrinkSet
	KindGrowList
	KindShrinkList
	KindGrowMap
	KindShrinkMap
)

var kindNames = map[Kind]string{
	KindAbsent:     "absent",
	KindScalar:     "scalar",
	KindList:       "list",
	KindMap:        "map",
	KindGrowSet:    "growSet",
	KindShrinkSet:  "shrinkSet",
	KindGrowList:   "growList",
	KindShrinkList: "shrinkList",
	KindGrowMap:    "growMap",
	KindShrinkMap:  "shrinkMap",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Tagged reports whether the kind carries an explicit Grow/Shrink semantic.
func (k Kind) Tagged() bool {
	return k >= KindGrowSet && k <= KindShrinkMap
}

// Grow reports whether merges of this kind are inflationary.
func (k Kind) Grow() bool {
	return k == KindGrowSet || k == KindGrowList || k == KindGrowMap
}

// elemental reports whether the kind stores a sequence of elements.
func (k Kind) elemental() bool {
	switch k {
	case KindList, KindGrowSet, KindShrinkSet, KindGrowList, KindShrinkList:
		return true
	}
	return false
}

// mapLike reports whether the kind stores keyed entries.
func (k Kind) mapLike() bool {
	switch k {
	case KindMap, KindGrowMap, KindShrinkMap:
		return true
	}
	return false
}

// ParseKind maps a wire-format kind name back to its Kind. Used by the JSON
// codec and topology loaders.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindAbsent, fmt.Errorf("unknown lattice kind %q", name)
}
