package plan

import "fmt"

// Scan reads a base relation named in the catalogue.
type Scan struct {
	relation string
}

func NewScan(relation string) *Scan {
	return &Scan{
		relation: relation,
	}
}

// Relation returns the name of the scanned base relation.
func (s *Scan) Relation() string {
	return s.relation
}

// Clone returns a detached copy of the scan. The copy is a distinct node, so
// statistics recorded for s are not shared with it.
func (s *Scan) Clone() *Scan {
	return NewScan(s.relation)
}

func (s *Scan) Children() []Node { return nil }
func (s *Scan) String() string   { return fmt.Sprintf("Scan(%s)", s.relation) }
func (s *Scan) node()            {}
