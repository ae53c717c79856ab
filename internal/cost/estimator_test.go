package cost

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashagw/craneopt/internal/metadata"
	"github.com/yashagw/craneopt/internal/plan"
	"github.com/yashagw/craneopt/internal/query"
	"github.com/yashagw/craneopt/internal/record"
)

func distinct(t *testing.T, rel *record.Relation, name string) int {
	v, ok := rel.DistinctValues(name)
	require.True(t, ok, "attribute %s missing from %s", name, rel)
	return v
}

func TestEstimateScan(t *testing.T) {
	catalog := setupCatalog(t, map[string]relationSpec{
		"r": {tuples: 500, attrs: []record.Attribute{attr("a", 50), attr("b", 7)}},
	})
	e := NewEstimator(catalog)

	scan := plan.NewScan("r")
	out, err := e.Estimate(scan)
	require.NoError(t, err)
	assert.Equal(t, 500, out.Tuples())
	assert.Equal(t, []string{"a", "b"}, out.AttributeNames())
	assert.Equal(t, 50, distinct(t, out, "a"))
	assert.Equal(t, 7, distinct(t, out, "b"))

	cached, ok := e.Output(scan)
	require.True(t, ok)
	assert.Same(t, out, cached)
}

func TestEstimateScanUnknownRelation(t *testing.T) {
	e := NewEstimator(metadata.NewManager())
	_, err := e.Estimate(plan.NewScan("missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, metadata.ErrUnknownRelation))
}

func TestEstimateProject(t *testing.T) {
	catalog := setupCatalog(t, map[string]relationSpec{
		"r": {tuples: 100, attrs: []record.Attribute{attr("a", 10), attr("b", 20), attr("c", 30)}},
	})
	e := NewEstimator(catalog)

	// Requested order does not matter; input order is kept. Unknown names are ignored.
	proj := plan.NewProject(plan.NewScan("r"), []string{"c", "a", "zzz"})
	out, err := e.EstimateTree(proj)
	require.NoError(t, err)
	assert.Equal(t, 100, out.Tuples())
	assert.Equal(t, []string{"a", "c"}, out.AttributeNames())
	assert.Equal(t, 30, distinct(t, out, "c"))
}

func TestEstimateValueSelect(t *testing.T) {
	catalog := setupCatalog(t, map[string]relationSpec{
		"r": {tuples: 1000, attrs: []record.Attribute{attr("a", 200), attr("b", 40)}},
	})
	e := NewEstimator(catalog)

	sel := plan.NewSelect(plan.NewScan("r"), query.NewValuePredicate("a", *query.NewIntConstant(7)))
	out, err := e.EstimateTree(sel)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Tuples())
	assert.Equal(t, 1, distinct(t, out, "a"))
	assert.Equal(t, 40, distinct(t, out, "b"))
}

func TestEstimateSelectRounding(t *testing.T) {
	testCases := []struct {
		name     string
		tuples   int
		distinct int
		expected int
	}{
		{"ExactQuotient", 1000, 200, 5},
		{"RoundsDown", 10, 3, 3},
		{"HalfRoundsUp", 5, 2, 3},
		{"HalfOfOneRoundsUp", 1, 2, 1},
		{"SmallQuotientRoundsToZero", 1, 3, 0},
		{"EmptyInput", 0, 1, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			catalog := setupCatalog(t, map[string]relationSpec{
				"r": {tuples: tc.tuples, attrs: []record.Attribute{attr("a", tc.distinct)}},
			})
			sel := plan.NewSelect(plan.NewScan("r"), query.NewValuePredicate("a", *query.NewIntConstant(1)))
			out, err := NewEstimator(catalog).EstimateTree(sel)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out.Tuples())
		})
	}
}

func TestEstimateAttributeSelect(t *testing.T) {
	catalog := setupCatalog(t, map[string]relationSpec{
		"r": {tuples: 800, attrs: []record.Attribute{attr("a", 20), attr("b", 40), attr("c", 3)}},
	})

	sel := plan.NewSelect(plan.NewScan("r"), query.NewAttributePredicate("a", "b"))
	out, err := NewEstimator(catalog).EstimateTree(sel)
	require.NoError(t, err)
	assert.Equal(t, 20, out.Tuples())
	assert.Equal(t, 20, distinct(t, out, "a"))
	assert.Equal(t, 20, distinct(t, out, "b"))
	assert.Equal(t, 3, distinct(t, out, "c"))
}

func TestEstimateProduct(t *testing.T) {
	catalog := setupCatalog(t, map[string]relationSpec{
		"l": {tuples: 10, attrs: []record.Attribute{attr("a", 4)}},
		"r": {tuples: 5, attrs: []record.Attribute{attr("b", 2)}},
	})

	product := plan.NewProduct(plan.NewScan("l"), plan.NewScan("r"))
	out, err := NewEstimator(catalog).EstimateTree(product)
	require.NoError(t, err)
	assert.Equal(t, 50, out.Tuples())
	assert.Equal(t, []string{"a", "b"}, out.AttributeNames())
	assert.Equal(t, 4, distinct(t, out, "a"))
	assert.Equal(t, 2, distinct(t, out, "b"))
}

func TestEstimateJoin(t *testing.T) {
	catalog := setupCatalog(t, map[string]relationSpec{
		"l": {tuples: 100, attrs: []record.Attribute{attr("a", 10), attr("x", 100)}},
		"r": {tuples: 50, attrs: []record.Attribute{attr("b", 25), attr("y", 5)}},
	})
	join := func() plan.Node {
		return plan.NewJoin(plan.NewScan("l"), plan.NewScan("r"), query.NewAttributePredicate("a", "b"))
	}

	t.Run("MinPolicy", func(t *testing.T) {
		e := NewEstimator(catalog)
		assert.Equal(t, JoinDistinctMin, e.Policy())
		out, err := e.EstimateTree(join())
		require.NoError(t, err)
		assert.Equal(t, 200, out.Tuples())
		assert.Equal(t, []string{"a", "x", "b", "y"}, out.AttributeNames())
		assert.Equal(t, 10, distinct(t, out, "a"))
		assert.Equal(t, 10, distinct(t, out, "b"))
		assert.Equal(t, 100, distinct(t, out, "x"))
		assert.Equal(t, 5, distinct(t, out, "y"))
	})

	t.Run("MaxPolicy", func(t *testing.T) {
		e := NewEstimator(catalog, WithJoinDistinctPolicy(JoinDistinctMax))
		out, err := e.EstimateTree(join())
		require.NoError(t, err)
		assert.Equal(t, 200, out.Tuples())
		assert.Equal(t, 25, distinct(t, out, "a"))
		assert.Equal(t, 25, distinct(t, out, "b"))
	})
}

func TestEstimateUnknownAttribute(t *testing.T) {
	catalog := setupCatalog(t, map[string]relationSpec{
		"l": {tuples: 10, attrs: []record.Attribute{attr("a", 4)}},
		"r": {tuples: 5, attrs: []record.Attribute{attr("b", 2)}},
	})

	t.Run("Select", func(t *testing.T) {
		sel := plan.NewSelect(plan.NewScan("l"), query.NewValuePredicate("b", *query.NewIntConstant(1)))
		_, err := NewEstimator(catalog).EstimateTree(sel)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownAttribute))
		assert.Contains(t, err.Error(), `"b"`)
	})

	t.Run("JoinSidesSwapped", func(t *testing.T) {
		join := plan.NewJoin(plan.NewScan("l"), plan.NewScan("r"), query.NewAttributePredicate("b", "a"))
		_, err := NewEstimator(catalog).EstimateTree(join)
		assert.True(t, errors.Is(err, ErrUnknownAttribute))
	})

	t.Run("JoinOnConstant", func(t *testing.T) {
		join := plan.NewJoin(plan.NewScan("l"), plan.NewScan("r"), query.NewValuePredicate("a", *query.NewIntConstant(1)))
		_, err := NewEstimator(catalog).EstimateTree(join)
		require.Error(t, err)
		assert.True(t, errors.IsAssertionFailure(err))
	})
}

func TestEstimateDuplicateAttribute(t *testing.T) {
	catalog := setupCatalog(t, map[string]relationSpec{
		"l": {tuples: 10, attrs: []record.Attribute{attr("a", 4), attr("x", 10)}},
		"r": {tuples: 5, attrs: []record.Attribute{attr("a", 2)}},
	})

	t.Run("Product", func(t *testing.T) {
		product := plan.NewProduct(plan.NewScan("l"), plan.NewScan("r"))
		_, err := NewEstimator(catalog).EstimateTree(product)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateAttribute))
		assert.Contains(t, err.Error(), `"a"`)
	})

	t.Run("Join", func(t *testing.T) {
		join := plan.NewJoin(plan.NewScan("l"), plan.NewScan("r"), query.NewAttributePredicate("a", "a"))
		_, err := NewEstimator(catalog).EstimateTree(join)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateAttribute))
	})

	t.Run("SameRelationTwice", func(t *testing.T) {
		product := plan.NewProduct(plan.NewScan("l"), plan.NewScan("l"))
		_, err := NewEstimator(catalog).EstimateTree(product)
		assert.True(t, errors.Is(err, ErrDuplicateAttribute))
	})
}

func TestEstimateCardinalityOverflow(t *testing.T) {
	t.Run("ProductChain", func(t *testing.T) {
		relations := map[string]relationSpec{}
		names := []string{"r1", "r2", "r3", "r4", "r5"}
		for _, name := range names {
			relations[name] = relationSpec{tuples: 100000, attrs: []record.Attribute{attr(name+"_id", 100000)}}
		}
		catalog := setupCatalog(t, relations)

		var tree plan.Node = plan.NewScan(names[0])
		for _, name := range names[1:] {
			tree = plan.NewProduct(tree, plan.NewScan(name))
		}
		_, err := NewEstimator(catalog).EstimateCost(tree)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCardinalityOverflow))
	})

	t.Run("JoinBeyondIntBeforeDivision", func(t *testing.T) {
		// 3000000001 * 4000000000 does not fit in an int but half of it does.
		catalog := setupCatalog(t, map[string]relationSpec{
			"l": {tuples: 3000000001, attrs: []record.Attribute{attr("a", 2)}},
			"r": {tuples: 4000000000, attrs: []record.Attribute{attr("b", 1)}},
		})
		join := plan.NewJoin(plan.NewScan("l"), plan.NewScan("r"), query.NewAttributePredicate("a", "b"))
		out, err := NewEstimator(catalog).EstimateTree(join)
		require.NoError(t, err)
		assert.Equal(t, 6000000002000000000, out.Tuples())
	})

	t.Run("TotalSaturates", func(t *testing.T) {
		// Every node fits, the sum of the product and the select does not.
		catalog := setupCatalog(t, map[string]relationSpec{
			"l": {tuples: 3000000000, attrs: []record.Attribute{attr("a", 1)}},
			"r": {tuples: 3000000000, attrs: []record.Attribute{attr("b", 1)}},
		})
		tree := plan.NewSelect(
			plan.NewProduct(plan.NewScan("l"), plan.NewScan("r")),
			query.NewValuePredicate("a", *query.NewIntConstant(1)),
		)

		out, err := NewEstimator(catalog).EstimateTree(tree)
		require.NoError(t, err)
		assert.Equal(t, 9000000000000000000, out.Tuples())

		e := NewEstimator(catalog)
		_, err = e.EstimateCost(tree)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCardinalityOverflow))

		// A fresh computation on a small tree starts from zero again
		cost, err := e.EstimateCost(plan.NewScan("l"))
		require.NoError(t, err)
		assert.Equal(t, 3000000000, cost)
	})
}

func TestEstimateRequiresInputs(t *testing.T) {
	catalog := setupCatalog(t, map[string]relationSpec{
		"r": {tuples: 10, attrs: []record.Attribute{attr("a", 4)}},
	})
	e := NewEstimator(catalog)

	sel := plan.NewSelect(plan.NewScan("r"), query.NewValuePredicate("a", *query.NewIntConstant(1)))
	_, err := e.Estimate(sel)
	require.Error(t, err)
	assert.True(t, errors.IsAssertionFailure(err))

	_, ok := e.Output(sel)
	assert.False(t, ok, "failed estimates are not recorded")
}

func TestEstimateIsIdempotent(t *testing.T) {
	catalog := setupCatalog(t, map[string]relationSpec{
		"r": {tuples: 1000, attrs: []record.Attribute{attr("a", 200)}},
	})
	e := NewEstimator(catalog)

	sel := plan.NewSelect(plan.NewScan("r"), query.NewValuePredicate("a", *query.NewIntConstant(1)))
	first, err := e.EstimateTree(sel)
	require.NoError(t, err)

	second, err := e.Estimate(sel)
	require.NoError(t, err)
	assert.Same(t, first, second)

	third, err := e.EstimateTree(sel)
	require.NoError(t, err)
	assert.Same(t, first, third)
}

func TestEstimateCost(t *testing.T) {
	catalog := setupCatalog(t, map[string]relationSpec{
		"l": {tuples: 100, attrs: []record.Attribute{attr("a", 10), attr("c", 4)}},
		"r": {tuples: 50, attrs: []record.Attribute{attr("b", 25)}},
	})

	t.Run("SingleScan", func(t *testing.T) {
		cost, err := NewEstimator(catalog).EstimateCost(plan.NewScan("l"))
		require.NoError(t, err)
		assert.Equal(t, 100, cost)
	})

	t.Run("SumOfAllNodes", func(t *testing.T) {
		// Scan(l)=100, Select(c=1)=25, Scan(r)=50, Join=round(25*50/25)=50, Project=50
		tree := plan.NewProject(
			plan.NewJoin(
				plan.NewSelect(plan.NewScan("l"), query.NewValuePredicate("c", *query.NewIntConstant(1))),
				plan.NewScan("r"),
				query.NewAttributePredicate("a", "b"),
			),
			[]string{"c"},
		)
		e := NewEstimator(catalog)
		cost, err := e.EstimateCost(tree)
		require.NoError(t, err)
		assert.Equal(t, 100+25+50+50+50, cost)

		// Recomputing resets the running total and gives the same answer
		again, err := e.EstimateCost(tree)
		require.NoError(t, err)
		assert.Equal(t, cost, again)
		assert.Equal(t, cost, e.Total())
	})

	t.Run("ProductVersusJoin", func(t *testing.T) {
		product := plan.NewSelect(
			plan.NewProduct(plan.NewScan("l"), plan.NewScan("r")),
			query.NewAttributePredicate("a", "b"),
		)
		join := plan.NewJoin(plan.NewScan("l"), plan.NewScan("r"), query.NewAttributePredicate("a", "b"))

		productCost, err := NewEstimator(catalog).EstimateCost(product)
		require.NoError(t, err)
		joinCost, err := NewEstimator(catalog).EstimateCost(join)
		require.NoError(t, err)
		assert.Equal(t, 100+50+5000+200, productCost)
		assert.Equal(t, 100+50+200, joinCost)
		assert.Less(t, joinCost, productCost)
	})
}

func TestAnnotate(t *testing.T) {
	catalog := setupCatalog(t, map[string]relationSpec{
		"r": {tuples: 10, attrs: []record.Attribute{attr("a", 4)}},
	})
	e := NewEstimator(catalog)
	scan := plan.NewScan("r")
	assert.Equal(t, "", e.Annotate(scan))

	_, err := e.Estimate(scan)
	require.NoError(t, err)
	assert.Equal(t, "T=10 {a(4)}", e.Annotate(scan))
}

func TestParseJoinDistinctPolicy(t *testing.T) {
	p, err := ParseJoinDistinctPolicy("")
	require.NoError(t, err)
	assert.Equal(t, JoinDistinctMin, p)

	p, err = ParseJoinDistinctPolicy(" MAX ")
	require.NoError(t, err)
	assert.Equal(t, JoinDistinctMax, p)
	assert.Equal(t, "max", p.String())

	_, err = ParseJoinDistinctPolicy("avg")
	assert.Error(t, err)
}
