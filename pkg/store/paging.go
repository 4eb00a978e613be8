package store

import "github.com/surrealdb/dataorg/pkg/nestedset"

// Page is a normalised [First, First+Max) window over an ordered child list.
type Page struct {
	First int
	// Max is the window size; Unbounded means no upper limit.
	Max int
}

// NewPage normalises caller supplied bounds: a negative first starts at 0 and any
// negative max means all remaining entries.
func NewPage(first, max int) Page {
	if first < 0 {
		first = 0
	}
	if max < 0 {
		max = Unbounded
	}
	return Page{First: first, Max: max}
}

// Bounded reports whether the page has an upper limit.
func (p Page) Bounded() bool {
	return p.Max != Unbounded
}

// Empty reports whether the page can never contain an entry.
func (p Page) Empty() bool {
	return p.Max == 0
}

// Slice returns the [lo, hi) bounds of the page over a list of n entries.
func (p Page) Slice(n int) (lo, hi int) {
	lo = min(p.First, n)
	hi = n
	if p.Bounded() {
		hi = min(lo+p.Max, n)
	}
	return lo, hi
}

// WithinDepth reports whether a node rel levels below a subtree root is loaded when the
// subtree is bounded by relativeDepth.
func WithinDepth(rel, relativeDepth int) bool {
	if rel < 0 {
		return false
	}
	return relativeDepth < 0 || rel <= relativeDepth
}

// NormalizeDepth maps every negative depth onto Unbounded.
func NormalizeDepth(relativeDepth int) int {
	if relativeDepth < 0 {
		return nestedset.Unbounded
	}
	return relativeDepth
}
