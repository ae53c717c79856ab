package query

import (
	"github.com/yashagw/craneopt/internal/record"
)

// Expression represents either a constant value or an attribute name in a query.
type Expression struct {
	val      Constant
	attrName *string
}

// NewConstantExpression creates a new Expression with a constant value.
func NewConstantExpression(val Constant) *Expression {
	return &Expression{
		val: val,
	}
}

// NewAttributeExpression creates a new Expression referring to an attribute.
func NewAttributeExpression(name string) *Expression {
	return &Expression{
		attrName: &name,
	}
}

// IsAttribute checks if the expression is an attribute reference.
func (e *Expression) IsAttribute() bool {
	return e.attrName != nil
}

// AsConstant returns the constant value of the expression.
func (e *Expression) AsConstant() Constant {
	return e.val
}

// AsAttribute returns the attribute name of the expression.
func (e *Expression) AsAttribute() string {
	return *e.attrName
}

// String returns a string representation of the expression.
func (e *Expression) String() string {
	if e.IsAttribute() {
		return e.AsAttribute()
	}
	return e.val.String()
}

// AppliesTo checks if the expression can be evaluated against the relation.
// Constants apply everywhere.
func (e *Expression) AppliesTo(rel *record.Relation) bool {
	if e.IsAttribute() {
		return rel.HasAttribute(e.AsAttribute())
	}
	return true
}

// Equals reports whether both expressions refer to the same attribute or
// hold equal constants.
func (e *Expression) Equals(other *Expression) bool {
	if e.IsAttribute() != other.IsAttribute() {
		return false
	}
	if e.IsAttribute() {
		return e.AsAttribute() == other.AsAttribute()
	}
	return e.val.Equals(&other.val)
}
