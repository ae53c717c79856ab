package planner

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashagw/craneopt/internal/metadata"
	"github.com/yashagw/craneopt/internal/parse"
	"github.com/yashagw/craneopt/internal/plan"
)

func TestBasicQueryPlanner(t *testing.T) {
	_, md := setupPlanner(t)
	qp := NewBasicQueryPlanner(md)

	t.Run("Canonical", func(t *testing.T) {
		qd, err := parse.NewParserFromString("select name, title from students, enrolled, courses where sid = student_id and cid = course_id and dept = 'math'").Query()
		require.NoError(t, err)

		root, err := qp.CreatePlan(qd)
		require.NoError(t, err)

		expected := "Project(name, title)\n" +
			"└─ Select(dept = \"math\")\n" +
			"   └─ Select(cid = course_id)\n" +
			"      └─ Select(sid = student_id)\n" +
			"         └─ Product\n" +
			"            ├─ Product\n" +
			"            │  ├─ Scan(students)\n" +
			"            │  └─ Scan(enrolled)\n" +
			"            └─ Scan(courses)\n"
		assert.Equal(t, expected, plan.Format(root, nil))
	})

	t.Run("Star", func(t *testing.T) {
		qd, err := parse.NewParserFromString("select * from students").Query()
		require.NoError(t, err)

		root, err := qp.CreatePlan(qd)
		require.NoError(t, err)
		assert.Equal(t, "Scan(students)\n", plan.Format(root, nil))
	})

	t.Run("UnknownTable", func(t *testing.T) {
		qd, err := parse.NewParserFromString("select a from missing").Query()
		require.NoError(t, err)

		_, err = qp.CreatePlan(qd)
		require.Error(t, err)
		assert.True(t, errors.Is(err, metadata.ErrUnknownRelation))
	})
}
