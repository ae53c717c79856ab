package query

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/yashagw/craneopt/internal/record"
)

// ErrNoAttribute is returned when neither side of an equality names an attribute.
var ErrNoAttribute = errors.New("predicate must reference at least one attribute")

// Kind distinguishes the two forms of equality predicate.
type Kind int

const (
	// ValueEquality is "attribute = constant".
	ValueEquality Kind = iota
	// AttributeEquality is "attribute = attribute".
	AttributeEquality
)

func (k Kind) String() string {
	switch k {
	case ValueEquality:
		return "value"
	case AttributeEquality:
		return "attribute"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Predicate is a single equality between an attribute and either another
// attribute or a constant. The left side is always an attribute.
type Predicate struct {
	left  Expression
	right Expression
}

// NewPredicate creates a predicate from two expressions. "constant = attribute"
// is normalised to "attribute = constant"; two constants are rejected.
func NewPredicate(left Expression, right Expression) (*Predicate, error) {
	if !left.IsAttribute() {
		if !right.IsAttribute() {
			return nil, errors.Wrapf(ErrNoAttribute, "%s = %s", left.String(), right.String())
		}
		left, right = right, left
	}
	return &Predicate{
		left:  left,
		right: right,
	}, nil
}

// NewValuePredicate creates "attr = c".
func NewValuePredicate(attr string, c Constant) *Predicate {
	return &Predicate{
		left:  *NewAttributeExpression(attr),
		right: *NewConstantExpression(c),
	}
}

// NewAttributePredicate creates "left = right".
func NewAttributePredicate(left, right string) *Predicate {
	return &Predicate{
		left:  *NewAttributeExpression(left),
		right: *NewAttributeExpression(right),
	}
}

// Kind reports whether the predicate compares against a constant or an attribute.
func (p *Predicate) Kind() Kind {
	if p.right.IsAttribute() {
		return AttributeEquality
	}
	return ValueEquality
}

// LeftAttribute returns the attribute on the left side.
func (p *Predicate) LeftAttribute() string {
	return p.left.AsAttribute()
}

// RightAttribute returns the attribute on the right side. It panics for a
// value predicate.
func (p *Predicate) RightAttribute() string {
	return p.right.AsAttribute()
}

// Value returns the constant of a value predicate.
func (p *Predicate) Value() Constant {
	return p.right.AsConstant()
}

// Attributes returns the attribute names the predicate references, left first.
func (p *Predicate) Attributes() []string {
	if p.Kind() == AttributeEquality {
		return []string{p.LeftAttribute(), p.RightAttribute()}
	}
	return []string{p.LeftAttribute()}
}

// AppliesTo checks if every attribute of the predicate belongs to the relation.
func (p *Predicate) AppliesTo(rel *record.Relation) bool {
	return p.left.AppliesTo(rel) && p.right.AppliesTo(rel)
}

// Equals reports whether both predicates have the same sides in the same order.
func (p *Predicate) Equals(other *Predicate) bool {
	return p.left.Equals(&other.left) && p.right.Equals(&other.right)
}

// String returns a string representation of the predicate.
func (p *Predicate) String() string {
	return fmt.Sprintf("%s = %s", p.left.String(), p.right.String())
}
