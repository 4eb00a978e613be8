package models

import (
	"fmt"
	"strings"
)

// DefaultView is the view used when a caller does not name one.
const DefaultView = "default"

// CurrentIDVersion is the only idVersion written today.
const CurrentIDVersion = 1

// ViewOrDefault returns view, or DefaultView when view is empty.
func ViewOrDefault(view string) string {
	if view == "" {
		return DefaultView
	}
	return view
}

// NodeID addresses a stored node. InTreeID is backend specific: the decimal arrival
// step in the nested-set backend and the vertex id in the graph backend.
type NodeID struct {
	DigitalObjectID string `json:"digitalObjectId"`
	View            string `json:"viewName"`
	InTreeID        string `json:"inTreeId"`
	IDVersion       int    `json:"idVersion"`
}

// NewNodeID returns a NodeID with the current idVersion.
func NewNodeID(digitalObjectID, view, inTreeID string) NodeID {
	return NodeID{
		DigitalObjectID: digitalObjectID,
		View:            ViewOrDefault(view),
		InTreeID:        inTreeID,
		IDVersion:       CurrentIDVersion,
	}
}

// IsZero reports whether the id was never assigned.
func (id NodeID) IsZero() bool {
	return id == NodeID{}
}

// String renders the id as oid:view:inTreeId.
func (id NodeID) String() string {
	return fmt.Sprintf("%s:%s:%s", id.DigitalObjectID, id.View, id.InTreeID)
}

// ParseNodeID parses the form produced by NodeID.String. The digital object id may itself
// contain colons; view and in-tree id may not.
func ParseNodeID(s string) (NodeID, error) {
	last := strings.LastIndex(s, ":")
	if last <= 0 {
		return NodeID{}, fmt.Errorf("invalid node id %q: expected oid:view:inTreeId", s)
	}
	mid := strings.LastIndex(s[:last], ":")
	if mid <= 0 {
		return NodeID{}, fmt.Errorf("invalid node id %q: expected oid:view:inTreeId", s)
	}
	id := NewNodeID(s[:mid], s[mid+1:last], s[last+1:])
	if id.InTreeID == "" {
		return NodeID{}, fmt.Errorf("invalid node id %q: empty in-tree id", s)
	}
	return id, nil
}
