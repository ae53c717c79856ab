package record

import (
	"fmt"
	"strings"
)

// Attribute is a named column together with its distinct-value estimate.
// Two attributes are the same attribute when their names match.
type Attribute struct {
	name     string
	distinct int
}

// NewAttribute creates an attribute with the given distinct-value count.
func NewAttribute(name string, distinct int) Attribute {
	return Attribute{
		name:     name,
		distinct: distinct,
	}
}

// Name returns the attribute name.
func (a Attribute) Name() string {
	return a.name
}

// DistinctValues returns the estimated number of distinct values.
func (a Attribute) DistinctValues() int {
	return a.distinct
}

func (a Attribute) String() string {
	return fmt.Sprintf("%s(%d)", a.name, a.distinct)
}

// Relation describes the output shape of a plan node: how many tuples it
// produces and which attributes those tuples carry. It never holds data.
type Relation struct {
	tuples     int
	attributes []string
	info       map[string]Attribute
}

// NewRelation creates an empty relation with the given tuple count.
func NewRelation(tuples int) *Relation {
	return &Relation{
		tuples:     tuples,
		attributes: make([]string, 0),
		info:       make(map[string]Attribute),
	}
}

// Tuples returns the estimated tuple count.
func (r *Relation) Tuples() int {
	return r.tuples
}

// AddAttribute appends an attribute. Adding a name that already exists keeps
// its position and replaces its distinct-value count.
func (r *Relation) AddAttribute(name string, distinct int) {
	if _, exists := r.info[name]; !exists {
		r.attributes = append(r.attributes, name)
	}
	r.info[name] = NewAttribute(name, distinct)
}

// Copy adds a single attribute of other to r, if other has it.
func (r *Relation) Copy(other *Relation, name string) {
	if attr, exists := other.info[name]; exists {
		r.AddAttribute(name, attr.distinct)
	}
}

// CopyAll adds every attribute of other to r, in other's order.
func (r *Relation) CopyAll(other *Relation) {
	for _, name := range other.attributes {
		r.AddAttribute(name, other.info[name].distinct)
	}
}

// Clone returns a deep copy of the relation.
func (r *Relation) Clone() *Relation {
	c := NewRelation(r.tuples)
	c.CopyAll(r)
	return c
}

// WithDistinctValues returns a copy of r in which the named attribute has the
// given distinct-value count. The receiver is left untouched.
func (r *Relation) WithDistinctValues(name string, distinct int) *Relation {
	c := r.Clone()
	if _, exists := c.info[name]; exists {
		c.info[name] = NewAttribute(name, distinct)
	}
	return c
}

// Attributes returns the attributes in order.
func (r *Relation) Attributes() []Attribute {
	attrs := make([]Attribute, len(r.attributes))
	for i, name := range r.attributes {
		attrs[i] = r.info[name]
	}
	return attrs
}

// AttributeNames returns a copy of the attribute names in order.
func (r *Relation) AttributeNames() []string {
	names := make([]string, len(r.attributes))
	copy(names, r.attributes)
	return names
}

// HasAttribute checks if the relation carries the named attribute.
func (r *Relation) HasAttribute(name string) bool {
	_, exists := r.info[name]
	return exists
}

// DistinctValues returns the distinct-value count of the named attribute.
func (r *Relation) DistinctValues(name string) (int, bool) {
	attr, exists := r.info[name]
	return attr.distinct, exists
}

// Equal reports whether both relations have the same tuple count and the same
// attributes, in the same order, with the same distinct-value counts.
func (r *Relation) Equal(other *Relation) bool {
	if r.tuples != other.tuples || len(r.attributes) != len(other.attributes) {
		return false
	}
	for i, name := range r.attributes {
		if other.attributes[i] != name || other.info[name] != r.info[name] {
			return false
		}
	}
	return true
}

func (r *Relation) String() string {
	parts := make([]string, len(r.attributes))
	for i, name := range r.attributes {
		parts[i] = r.info[name].String()
	}
	return fmt.Sprintf("T=%d {%s}", r.tuples, strings.Join(parts, ", "))
}
