package nestedset

import (
	"sort"

	"github.com/surrealdb/dataorg/pkg/models"
)

// Unbounded disables the depth bound of WithinDepth.
const Unbounded = -1

// BuildTree rebuilds a tree from records sorted by ascending arrival step. It returns
// nil and no error for an empty input. The first record becomes the root and must be a
// collection. Records whose steps do not nest are rejected with ErrTreeShape; no
// partially built tree is ever returned.
func BuildTree(records []Record) (*models.FileTree, error) {
	if len(records) == 0 {
		return nil, nil
	}
	first := records[0]
	if !first.Node.IsCollection() {
		return nil, models.ErrTreeShape.New("first node %q is not a collection", first.Node.Name)
	}
	return build(records)
}

// BuildSubTree is BuildTree for the records of a subtree. The first record may be a
// file, which yields a tree of that single node.
func BuildSubTree(records []Record) (*models.FileTree, error) {
	if len(records) == 0 {
		return nil, nil
	}
	return build(records)
}

func build(records []Record) (*models.FileTree, error) {
	first := records[0]
	if first.StepDeparted <= first.StepArrived {
		return nil, models.ErrTreeShape.New("record %d departs at %d before it arrives", first.StepArrived, first.StepDeparted)
	}
	loader := models.NewSubtreeLoader(first.DigitalObjectID, first.View, first.LoadedNode())

	type open struct {
		rec Record
		idx models.Index
	}
	stack := []open{{rec: first, idx: models.RootIndex}}
	prev := first.StepArrived

	for _, r := range records[1:] {
		if r.StepArrived <= prev {
			return nil, models.ErrTreeShape.New("records are not ordered by arrival step (%d after %d)", r.StepArrived, prev)
		}
		prev = r.StepArrived
		if r.StepDeparted <= r.StepArrived {
			return nil, models.ErrTreeShape.New("record %d departs at %d before it arrives", r.StepArrived, r.StepDeparted)
		}
		for len(stack) > 0 && stack[len(stack)-1].rec.StepDeparted < r.StepDeparted {
			top := stack[len(stack)-1]
			if top.rec.StepDeparted > r.StepArrived {
				return nil, models.ErrTreeShape.New("record %d overlaps the span of record %d", r.StepArrived, top.rec.StepArrived)
			}
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			return nil, models.ErrTreeShape.New("record %d lies outside the root span", r.StepArrived)
		}
		parent := stack[len(stack)-1]
		if !parent.rec.Contains(r) {
			return nil, models.ErrTreeShape.New("record %d is not nested in record %d", r.StepArrived, parent.rec.StepArrived)
		}
		idx, err := loader.Attach(parent.idx, r.LoadedNode())
		if err != nil {
			return nil, err
		}
		stack = append(stack, open{rec: r, idx: idx})
	}
	return loader.Tree(), nil
}

// SortByArrival orders records by ascending arrival step in place.
func SortByArrival(records []Record) {
	sort.Slice(records, func(i, j int) bool { return records[i].StepArrived < records[j].StepArrived })
}

// WithinDepth keeps the first record and those records inside its span that are at most
// relativeDepth levels below it. Unbounded keeps the whole span. The input must be
// sorted by arrival step.
func WithinDepth(records []Record, relativeDepth int) []Record {
	if len(records) == 0 {
		return nil
	}
	root := records[0]
	out := []Record{root}
	for _, r := range records[1:] {
		if !root.Contains(r) {
			continue
		}
		if relativeDepth != Unbounded && r.Depth-root.Depth > relativeDepth {
			continue
		}
		out = append(out, r)
	}
	return out
}
