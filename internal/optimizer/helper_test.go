package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yashagw/craneopt/internal/metadata"
	"github.com/yashagw/craneopt/internal/plan"
	"github.com/yashagw/craneopt/internal/query"
	"github.com/yashagw/craneopt/internal/record"
)

// setupUniversity registers three related relations:
//
//	students(sid, name, dept)      1000 tuples
//	enrolled(student_id, course_id) 5000 tuples
//	courses(cid, title, cdept)       50 tuples
func setupUniversity(t *testing.T) *metadata.Manager {
	m := metadata.NewManager()

	students := record.NewRelation(1000)
	students.AddAttribute("sid", 1000)
	students.AddAttribute("name", 900)
	students.AddAttribute("dept", 20)
	require.NoError(t, m.Register("students", students))

	enrolled := record.NewRelation(5000)
	enrolled.AddAttribute("student_id", 1000)
	enrolled.AddAttribute("course_id", 50)
	require.NoError(t, m.Register("enrolled", enrolled))

	courses := record.NewRelation(50)
	courses.AddAttribute("cid", 50)
	courses.AddAttribute("title", 50)
	courses.AddAttribute("cdept", 10)
	require.NoError(t, m.Register("courses", courses))

	return m
}

// setupChain registers one relation per name, each holding 100 tuples with a
// key <name>_k (100 distinct values) and a foreign column <name>_f (10).
func setupChain(t *testing.T, names ...string) *metadata.Manager {
	m := metadata.NewManager()
	for _, name := range names {
		rel := record.NewRelation(100)
		rel.AddAttribute(name+"_k", 100)
		rel.AddAttribute(name+"_f", 10)
		require.NoError(t, m.Register(name, rel))
	}
	return m
}

// canonical builds the unoptimised tree a planner would: a left-deep product
// of the scans, one Select per predicate in order, and an optional Project.
func canonical(tables []string, preds []*query.Predicate, fields []string) plan.Node {
	var node plan.Node = plan.NewScan(tables[0])
	for _, table := range tables[1:] {
		node = plan.NewProduct(node, plan.NewScan(table))
	}
	for _, pred := range preds {
		node = plan.NewSelect(node, pred)
	}
	if fields != nil {
		node = plan.NewProject(node, fields)
	}
	return node
}

func str(s string) query.Constant {
	return *query.NewStringConstant(s)
}
