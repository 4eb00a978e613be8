package nestedset

import (
	"strconv"

	"github.com/surrealdb/dataorg/pkg/models"
)

// Record is the flat encoding of one node.
type Record struct {
	DigitalObjectID string
	View            string
	StepArrived     int64
	StepDeparted    int64
	Depth           int
	IDVersion       int
	// Node carries the node's properties. Its ID and Depth are ignored when writing.
	Node models.Node
}

// Contains reports whether o lies strictly inside r's span.
func (r Record) Contains(o Record) bool {
	return r.StepArrived < o.StepArrived && o.StepDeparted < r.StepDeparted
}

// NodeID returns the identifier of the record's node.
func (r Record) NodeID() models.NodeID {
	return models.NodeID{
		DigitalObjectID: r.DigitalObjectID,
		View:            r.View,
		InTreeID:        strconv.FormatInt(r.StepArrived, 10),
		IDVersion:       r.IDVersion,
	}
}

// LoadedNode returns the node with its stored identity and depth filled in.
func (r Record) LoadedNode() models.Node {
	n := r.Node.Clone()
	n.ID = r.NodeID()
	n.Depth = r.Depth
	return n
}

// ParseStep converts the in-tree part of a NodeID back into an arrival step.
func ParseStep(id models.NodeID) (int64, error) {
	step, err := strconv.ParseInt(id.InTreeID, 10, 64)
	if err != nil || step <= 0 {
		return 0, models.ErrNotFound.New("node %s: in-tree id is not an arrival step", id)
	}
	return step, nil
}
