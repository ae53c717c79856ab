package plan

import (
	"github.com/cockroachdb/errors"
)

// Visitor handles each operator variant. Walk calls the method matching the
// node's variant only after all of the node's children have been visited.
type Visitor interface {
	VisitScan(s *Scan) error
	VisitSelect(s *Select) error
	VisitProject(p *Project) error
	VisitProduct(p *Product) error
	VisitJoin(j *Join) error
}

// Walk traverses the tree rooted at n in post-order, left to right, and stops
// at the first error returned by v.
func Walk(v Visitor, n Node) error {
	for _, child := range n.Children() {
		if err := Walk(v, child); err != nil {
			return err
		}
	}
	return Dispatch(v, n)
}

// Dispatch calls the visitor method for n alone, without visiting children.
func Dispatch(v Visitor, n Node) error {
	switch t := n.(type) {
	case *Scan:
		return v.VisitScan(t)
	case *Select:
		return v.VisitSelect(t)
	case *Project:
		return v.VisitProject(t)
	case *Product:
		return v.VisitProduct(t)
	case *Join:
		return v.VisitJoin(t)
	default:
		return errors.AssertionFailedf("unknown plan node %T", n)
	}
}

// Scans returns the base relation scans of the tree in left-to-right order.
func Scans(n Node) []*Scan {
	var scans []*Scan
	var collect func(Node)
	collect = func(n Node) {
		if s, ok := n.(*Scan); ok {
			scans = append(scans, s)
		}
		for _, child := range n.Children() {
			collect(child)
		}
	}
	collect(n)
	return scans
}

// Relations returns the names of the scanned base relations in left-to-right order.
func Relations(n Node) []string {
	scans := Scans(n)
	names := make([]string, len(scans))
	for i, s := range scans {
		names[i] = s.Relation()
	}
	return names
}

// Count returns the number of nodes in the tree.
func Count(n Node) int {
	total := 1
	for _, child := range n.Children() {
		total += Count(child)
	}
	return total
}
