package parserdata

import (
	"strings"

	"github.com/yashagw/craneopt/internal/query"
)

// QueryData is a parsed select statement. A nil field list stands for "*".
type QueryData struct {
	fields     []string
	tables     []string
	predicates []*query.Predicate
}

func NewQueryData(fields []string, tables []string, predicates []*query.Predicate) *QueryData {
	return &QueryData{
		fields:     fields,
		tables:     tables,
		predicates: predicates,
	}
}

// Fields returns the selected attributes, or nil for "*".
func (q *QueryData) Fields() []string {
	return q.fields
}

// AllFields reports whether the query selects every attribute.
func (q *QueryData) AllFields() bool {
	return q.fields == nil
}

func (q *QueryData) Tables() []string {
	return q.tables
}

// Predicates returns the conjuncts of the where clause in query order.
func (q *QueryData) Predicates() []*query.Predicate {
	return q.predicates
}

func (q *QueryData) String() string {
	var sb strings.Builder
	sb.WriteString("select ")
	if q.AllFields() {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(q.fields, ", "))
	}
	sb.WriteString(" from ")
	sb.WriteString(strings.Join(q.tables, ", "))
	for i, pred := range q.predicates {
		if i == 0 {
			sb.WriteString(" where ")
		} else {
			sb.WriteString(" and ")
		}
		sb.WriteString(pred.String())
	}
	return sb.String()
}
