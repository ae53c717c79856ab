package plan

import (
	"fmt"

	"github.com/yashagw/craneopt/internal/query"
)

// Select filters its child with a single equality predicate.
type Select struct {
	child Node
	pred  *query.Predicate
}

func NewSelect(child Node, pred *query.Predicate) *Select {
	return &Select{
		child: child,
		pred:  pred,
	}
}

func (s *Select) Child() Node                 { return s.child }
func (s *Select) Predicate() *query.Predicate { return s.pred }

func (s *Select) Children() []Node { return []Node{s.child} }
func (s *Select) String() string   { return fmt.Sprintf("Select(%s)", s.pred.String()) }
func (s *Select) node()            {}
