package optimizer

import (
	"github.com/yashagw/craneopt/internal/plan"
	"github.com/yashagw/craneopt/internal/query"
)

// Shape is a query flattened out of a plan tree: the base relations it reads
// and the equality predicates it applies. Joins and attribute-equality filters
// both become join predicates; products leave no trace. Projections only
// record that the tree narrows its output somewhere; which attributes survive
// is decided by the tree's estimated output. A Shape is never modified after
// Collect returns it.
type Shape struct {
	scans      []*plan.Scan
	valuePreds []*query.Predicate
	joinPreds  []*query.Predicate
	required   *attributeSet
	projected  bool
}

// Collect walks the plan once, children first, and records its shape. Scans
// are detached clones of the originals.
func Collect(root plan.Node) (*Shape, error) {
	c := &collector{shape: &Shape{required: newAttributeSet()}}
	if err := plan.Walk(c, root); err != nil {
		return nil, err
	}
	return c.shape, nil
}

// Scans returns the detached base scans in collection order.
func (s *Shape) Scans() []*plan.Scan {
	return append([]*plan.Scan(nil), s.scans...)
}

// ValuePredicates returns the "attribute = constant" predicates in collection order.
func (s *Shape) ValuePredicates() []*query.Predicate {
	return append([]*query.Predicate(nil), s.valuePreds...)
}

// JoinPredicates returns the "attribute = attribute" predicates in collection order.
func (s *Shape) JoinPredicates() []*query.Predicate {
	return append([]*query.Predicate(nil), s.joinPreds...)
}

// Required returns every attribute referenced by a predicate.
func (s *Shape) Required() []string {
	return s.required.names()
}

// HasProjection reports whether the plan contained any Project.
func (s *Shape) HasProjection() bool {
	return s.projected
}

type collector struct {
	shape *Shape
}

func (c *collector) VisitScan(s *plan.Scan) error {
	c.shape.scans = append(c.shape.scans, s.Clone())
	return nil
}

func (c *collector) VisitSelect(s *plan.Select) error {
	c.addPredicate(s.Predicate())
	return nil
}

func (c *collector) addPredicate(pred *query.Predicate) {
	if pred.Kind() == query.ValueEquality {
		c.shape.valuePreds = append(c.shape.valuePreds, pred)
	} else {
		c.shape.joinPreds = append(c.shape.joinPreds, pred)
	}
	c.shape.required.add(pred.Attributes()...)
}

func (c *collector) VisitProject(p *plan.Project) error {
	c.shape.projected = true
	return nil
}

func (c *collector) VisitProduct(p *plan.Product) error {
	return nil
}

func (c *collector) VisitJoin(j *plan.Join) error {
	c.addPredicate(j.Predicate())
	return nil
}
