package postgres

import (
	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/nestedset"
)

// NodeRow is one node of a view in nested-set encoding. The identity key is
// (DigitalObjectID, ViewName, StepArrived).
type NodeRow struct {
	ID              uint64  `gorm:"primaryKey;autoIncrement"`
	DigitalObjectID string  `gorm:"size:255;not null;uniqueIndex:idx_do_nodes_step,priority:1;index:idx_do_nodes_depth,priority:1"`
	ViewName        string  `gorm:"size:255;not null;uniqueIndex:idx_do_nodes_step,priority:2;index:idx_do_nodes_depth,priority:2"`
	StepArrived     int64   `gorm:"not null;uniqueIndex:idx_do_nodes_step,priority:3"`
	StepDeparted    int64   `gorm:"not null"`
	Depth           int     `gorm:"not null;index:idx_do_nodes_depth,priority:3"`
	IDVersion       int     `gorm:"not null"`
	Name            string  `gorm:"not null"`
	Description     string  `gorm:"not null;default:''"`
	Kind            string  `gorm:"size:16;not null"`
	LocatorScheme   *string `gorm:"size:64"`
	LocatorValue    *string

	Attributes []AttributeRow `gorm:"foreignKey:NodeID;constraint:OnDelete:CASCADE"`
}

func (NodeRow) TableName() string { return "data_organization_nodes" }

// AttributeRow is one attribute owned by a NodeRow.
type AttributeRow struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	NodeID uint64 `gorm:"not null;uniqueIndex:idx_do_attributes_key,priority:1"`
	Key    string `gorm:"column:attr_key;size:255;not null;uniqueIndex:idx_do_attributes_key,priority:2"`
	Value  string `gorm:"column:attr_value;not null;default:''"`
}

func (AttributeRow) TableName() string { return "data_organization_attributes" }

func rowFromRecord(r nestedset.Record) NodeRow {
	row := NodeRow{
		DigitalObjectID: r.DigitalObjectID,
		ViewName:        r.View,
		StepArrived:     r.StepArrived,
		StepDeparted:    r.StepDeparted,
		Depth:           r.Depth,
		IDVersion:       r.IDVersion,
		Name:            r.Node.Name,
		Description:     r.Node.Description,
		Kind:            string(r.Node.Kind()),
	}
	if loc, ok := r.Node.Locator(); ok {
		scheme, value := loc.Scheme, loc.Value
		row.LocatorScheme = &scheme
		row.LocatorValue = &value
	}
	return row
}

func attributeRows(nodeID uint64, attrs models.Attributes) []AttributeRow {
	rows := make([]AttributeRow, len(attrs))
	for i, a := range attrs {
		rows[i] = AttributeRow{NodeID: nodeID, Key: a.Key, Value: a.Value}
	}
	return rows
}

func (row NodeRow) record() (nestedset.Record, error) {
	kind, err := models.ParseKind(row.Kind)
	if err != nil {
		return nestedset.Record{}, err
	}
	var n models.Node
	switch kind {
	case models.KindFile:
		var loc models.Locator
		if row.LocatorScheme != nil {
			loc.Scheme = *row.LocatorScheme
		}
		if row.LocatorValue != nil {
			loc.Value = *row.LocatorValue
		}
		n = models.NewFile(row.Name, loc)
	default:
		n = models.NewCollection(row.Name)
	}
	n.Description = row.Description
	for _, a := range row.Attributes {
		n.Attributes.Set(a.Key, a.Value)
	}
	return nestedset.Record{
		DigitalObjectID: row.DigitalObjectID,
		View:            row.ViewName,
		StepArrived:     row.StepArrived,
		StepDeparted:    row.StepDeparted,
		Depth:           row.Depth,
		IDVersion:       row.IDVersion,
		Node:            n,
	}, nil
}

func (row NodeRow) node() (models.Node, error) {
	r, err := row.record()
	if err != nil {
		return models.Node{}, err
	}
	return r.LoadedNode(), nil
}
