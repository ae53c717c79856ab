package planner

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yashagw/craneopt/internal/metadata"
	"github.com/yashagw/craneopt/internal/optimizer"
	"github.com/yashagw/craneopt/internal/record"
)

// setupPlanner returns a planner over a small university catalogue:
//
//	students(sid, name, dept)       1000 tuples
//	enrolled(student_id, course_id) 5000 tuples
//	courses(cid, title, cdept)        50 tuples
func setupPlanner(t *testing.T, opts ...optimizer.Option) (*Planner, *metadata.Manager) {
	t.Helper()
	md := metadata.NewManager()

	students := record.NewRelation(1000)
	students.AddAttribute("sid", 1000)
	students.AddAttribute("name", 900)
	students.AddAttribute("dept", 20)
	require.NoError(t, md.Register("students", students))

	enrolled := record.NewRelation(5000)
	enrolled.AddAttribute("student_id", 1000)
	enrolled.AddAttribute("course_id", 50)
	require.NoError(t, md.Register("enrolled", enrolled))

	courses := record.NewRelation(50)
	courses.AddAttribute("cid", 50)
	courses.AddAttribute("title", 50)
	courses.AddAttribute("cdept", 10)
	require.NoError(t, md.Register("courses", courses))

	return NewPlanner(NewBasicQueryPlanner(md), optimizer.New(md, opts...)), md
}
