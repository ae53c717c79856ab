package plan

import (
	"fmt"

	"github.com/yashagw/craneopt/internal/query"
)

// Join is an equi-join. The predicate's left attribute comes from the left
// input and its right attribute from the right input.
type Join struct {
	left  Node
	right Node
	pred  *query.Predicate
}

func NewJoin(left, right Node, pred *query.Predicate) *Join {
	return &Join{
		left:  left,
		right: right,
		pred:  pred,
	}
}

func (j *Join) Left() Node                  { return j.left }
func (j *Join) Right() Node                 { return j.right }
func (j *Join) Predicate() *query.Predicate { return j.pred }

func (j *Join) Children() []Node { return []Node{j.left, j.right} }
func (j *Join) String() string   { return fmt.Sprintf("Join(%s)", j.pred.String()) }
func (j *Join) node()            {}
