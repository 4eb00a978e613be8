package surrealdb

import (
	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/store/graph"
)

const (
	tableNode  = models.VertexTable
	tableChild = "do_child"
	tableView  = "do_view"
)

type vertexRecord struct {
	ID              models.VertexID   `json:"id"`
	DigitalObjectID string            `json:"digital_object_id"`
	View            string            `json:"view"`
	Generation      string            `json:"generation"`
	Labels          []string          `json:"labels"`
	Root            bool              `json:"root"`
	Depth           int               `json:"depth"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Kind            string            `json:"kind"`
	LocatorScheme   string            `json:"locator_scheme"`
	LocatorValue    string            `json:"locator_value"`
	Attributes      map[string]string `json:"attributes"`
}

func recordFromVertex(v graph.Vertex) vertexRecord {
	return vertexRecord{
		ID:              v.ID,
		DigitalObjectID: v.DigitalObjectID,
		View:            models.ViewOrDefault(v.View),
		Generation:      v.Generation.String(),
		Labels:          v.Labels(),
		Root:            v.Root,
		Depth:           v.Depth,
		Name:            v.Name,
		Description:     v.Description,
		Kind:            string(v.Kind),
		LocatorScheme:   v.Locator.Scheme,
		LocatorValue:    v.Locator.Value,
		Attributes:      v.Attributes.Map(),
	}
}

func (r vertexRecord) vertex() (graph.Vertex, error) {
	kind, err := models.ParseKind(r.Kind)
	if err != nil {
		return graph.Vertex{}, err
	}
	gen, err := models.ParseGeneration(r.Generation)
	if err != nil {
		return graph.Vertex{}, err
	}
	v := graph.Vertex{
		ID:              r.ID,
		DigitalObjectID: r.DigitalObjectID,
		View:            r.View,
		Generation:      gen,
		Root:            r.Root,
		Depth:           r.Depth,
		Name:            r.Name,
		Description:     r.Description,
		Kind:            kind,
		Attributes:      models.AttributesFromMap(r.Attributes),
	}
	if kind == models.KindFile {
		v.Locator = models.Locator{Scheme: r.LocatorScheme, Value: r.LocatorValue}
	}
	return v, nil
}

type edgeRecord struct {
	In              models.VertexID `json:"in"`
	Out             models.VertexID `json:"out"`
	Position        int             `json:"position"`
	Generation      string          `json:"generation"`
	DigitalObjectID string          `json:"digital_object_id"`
	View            string          `json:"view"`
}

// childRecord is one row of a do_child query with the target vertex fetched.
type childRecord struct {
	Parent   models.VertexID `json:"parent"`
	Position int             `json:"position"`
	Child    vertexRecord    `json:"child"`
}

type viewRecord struct {
	DigitalObjectID string `json:"digital_object_id"`
	View            string `json:"view"`
	Generation      string `json:"generation"`
}

func (r *viewRecord) generation() (models.Generation, error) {
	if r == nil || r.Generation == "" {
		return models.Generation{}, nil
	}
	return models.ParseGeneration(r.Generation)
}
