package models

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// VertexTable is the SurrealDB table holding graph vertices.
const VertexTable = "do_node"

// VertexID is a typed ID for graph vertices
type VertexID struct {
	uuid uuid.UUID
}

func NewVertexID() VertexID {
	return VertexID{uuid: uuid.New()}
}

func ParseVertexID(s string) (VertexID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return VertexID{}, fmt.Errorf("invalid vertex ID: %w", err)
	}
	return VertexID{uuid: id}, nil
}

func (v VertexID) UUID() uuid.UUID { return v.uuid }
func (v VertexID) String() string  { return v.uuid.String() }
func (v VertexID) IsZero() bool    { return v.uuid == uuid.Nil }

func (v VertexID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: VertexTable,
		ID:    v.uuid.String(),
	}
}

func (v VertexID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{VertexTable, v.uuid.String()},
	})
}

func (v *VertexID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, VertexTable, &v.uuid)
}

// Generation identifies one complete write of a view in the graph backend.
type Generation struct {
	uuid uuid.UUID
}

func NewGeneration() Generation {
	return Generation{uuid: uuid.New()}
}

func ParseGeneration(s string) (Generation, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Generation{}, fmt.Errorf("invalid generation: %w", err)
	}
	return Generation{uuid: id}, nil
}

func (g Generation) String() string { return g.uuid.String() }
func (g Generation) IsZero() bool   { return g.uuid == uuid.Nil }

func unmarshalCBORID(data []byte, table string, dst *uuid.UUID) error {
	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		// Plain strings are accepted for ids selected with meta::id().
		var s string
		if err2 := cbor.Unmarshal(data, &s); err2 != nil {
			return fmt.Errorf("failed to unmarshal %s id: %w", table, err)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return err
		}
		*dst = id
		return nil
	}
	if tag.Number != 8 {
		return fmt.Errorf("unexpected CBOR tag %d for %s id", tag.Number, table)
	}
	parts, ok := tag.Content.([]any)
	if !ok || len(parts) != 2 {
		return fmt.Errorf("invalid record id content for %s", table)
	}
	if tb, _ := parts[0].(string); tb != table {
		return fmt.Errorf("record id belongs to table %v, expected %s", parts[0], table)
	}
	s, ok := parts[1].(string)
	if !ok {
		return fmt.Errorf("record id of %s is not a string", table)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	*dst = id
	return nil
}
