package planner

import (
	"log"

	"github.com/yashagw/craneopt/internal/metadata"
	"github.com/yashagw/craneopt/internal/parse/parserdata"
	"github.com/yashagw/craneopt/internal/plan"
)

var (
	_ QueryPlanner = (*BasicQueryPlanner)(nil)
)

// BasicQueryPlanner translates a query literally: a left-deep product of the
// tables in from-clause order, one Select per where-clause term in order, and
// a Project over the field list unless the query selects "*".
type BasicQueryPlanner struct {
	catalog metadata.Catalog
}

func NewBasicQueryPlanner(catalog metadata.Catalog) *BasicQueryPlanner {
	return &BasicQueryPlanner{
		catalog: catalog,
	}
}

func (p *BasicQueryPlanner) CreatePlan(queryData *parserdata.QueryData) (plan.Node, error) {
	// Phase 1: one scan per table, rejecting unknown ones up front
	tables := queryData.Tables()
	scans := make([]plan.Node, len(tables))
	for i, tableName := range tables {
		if _, err := p.catalog.Relation(tableName); err != nil {
			return nil, err
		}
		scans[i] = plan.NewScan(tableName)
	}

	// Phase 2: products, left-deep
	node := scans[0]
	for _, scan := range scans[1:] {
		node = plan.NewProduct(node, scan)
	}

	// Phase 3: the where clause, one filter per term
	for _, pred := range queryData.Predicates() {
		node = plan.NewSelect(node, pred)
	}

	// Phase 4: project the requested fields
	if !queryData.AllFields() {
		node = plan.NewProject(node, queryData.Fields())
	}

	log.Printf("[PLAN] CreatePlan: %d table(s), %d predicate(s), %d node(s)", len(tables), len(queryData.Predicates()), plan.Count(node))
	return node, nil
}
