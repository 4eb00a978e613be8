package store

import (
	"sort"

	"github.com/surrealdb/dataorg/pkg/models"
)

// Change is the staged difference between a stored node and new node data. Only the
// fields that differ are set.
type Change struct {
	Name        *string
	Description *string
	Locator     *models.Locator
	// SetAttributes holds updated and added attributes.
	SetAttributes map[string]string
	// DeleteAttributes lists attribute keys to remove, sorted.
	DeleteAttributes []string
}

// IsEmpty reports whether nothing has to be written.
func (c Change) IsEmpty() bool {
	return c.Name == nil && c.Description == nil && c.Locator == nil &&
		len(c.SetAttributes) == 0 && len(c.DeleteAttributes) == 0
}

// Apply returns stored with the change applied. Structure, identity and depth are kept.
func (c Change) Apply(stored models.Node) models.Node {
	n := stored.Clone()
	if c.Name != nil {
		n.Name = *c.Name
	}
	if c.Description != nil {
		n.Description = *c.Description
	}
	if c.Locator != nil {
		n.Content = models.File{Locator: *c.Locator}
	}
	for _, k := range c.DeleteAttributes {
		n.Attributes.Delete(k)
	}
	for k, v := range c.SetAttributes {
		n.Attributes.Set(k, v)
	}
	return n
}

// Diff stages the changes that turn stored into data. It fails with ErrTypeMismatch when
// the kinds differ, in which case nothing may be written.
func Diff(stored, data models.Node) (Change, error) {
	if stored.Kind() != data.Kind() {
		return Change{}, models.ErrTypeMismatch.New("node %q is a %s, update data is a %s", stored.Name, stored.Kind(), data.Kind())
	}

	var c Change
	if stored.Name != data.Name {
		name := data.Name
		c.Name = &name
	}
	if stored.Description != data.Description {
		desc := data.Description
		c.Description = &desc
	}
	if oldLoc, ok := stored.Locator(); ok {
		newLoc, _ := data.Locator()
		if oldLoc != newLoc {
			c.Locator = &newLoc
		}
	}

	remaining := data.Attributes.Map()
	for _, attr := range stored.Attributes {
		v, ok := remaining[attr.Key]
		if !ok {
			c.DeleteAttributes = append(c.DeleteAttributes, attr.Key)
			continue
		}
		if v != attr.Value {
			c.setAttribute(attr.Key, v)
		}
		delete(remaining, attr.Key)
	}
	for k, v := range remaining {
		c.setAttribute(k, v)
	}
	sort.Strings(c.DeleteAttributes)
	return c, nil
}

func (c *Change) setAttribute(k, v string) {
	if c.SetAttributes == nil {
		c.SetAttributes = make(map[string]string)
	}
	c.SetAttributes[k] = v
}
