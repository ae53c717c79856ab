package planner

import (
	"fmt"
	"strings"

	"github.com/yashagw/craneopt/internal/optimizer"
	"github.com/yashagw/craneopt/internal/parse"
	"github.com/yashagw/craneopt/internal/parse/parserdata"
	"github.com/yashagw/craneopt/internal/plan"
)

type QueryPlanner interface {
	CreatePlan(queryData *parserdata.QueryData) (plan.Node, error)
}

// Planner turns query text into a canonical plan and its optimised rewrite.
type Planner struct {
	queryPlanner QueryPlanner
	optimizer    *optimizer.Optimizer
}

func NewPlanner(queryPlanner QueryPlanner, opt *optimizer.Optimizer) *Planner {
	return &Planner{
		queryPlanner: queryPlanner,
		optimizer:    opt,
	}
}

// CreatePlan parses sql and returns its canonical, unoptimised plan.
func (p *Planner) CreatePlan(sql string) (plan.Node, error) {
	queryData, err := parse.NewParserFromString(sql).Query()
	if err != nil {
		return nil, err
	}
	return p.queryPlanner.CreatePlan(queryData)
}

// Explanation pairs a canonical plan with its optimised rewrite.
type Explanation struct {
	Original plan.Node
	*optimizer.Result
}

// Optimize parses sql, plans it and rewrites the plan.
func (p *Planner) Optimize(sql string) (*Explanation, error) {
	original, err := p.CreatePlan(sql)
	if err != nil {
		return nil, err
	}
	res, err := p.optimizer.Optimize(original)
	if err != nil {
		return nil, err
	}
	return &Explanation{
		Original: original,
		Result:   res,
	}, nil
}

// Columns returns the attributes the optimised plan produces, in order.
func (e *Explanation) Columns() []string {
	out, ok := e.Estimator.Output(e.Plan)
	if !ok {
		return nil
	}
	return out.AttributeNames()
}

// OriginalText renders the canonical plan with the estimated output of every node.
func (e *Explanation) OriginalText() string {
	return plan.Format(e.Original, e.Estimator.Annotate)
}

// OptimizedText renders the rewritten plan with the estimated output of every node.
func (e *Explanation) OptimizedText() string {
	return plan.Format(e.Plan, e.Estimator.Annotate)
}

func (e *Explanation) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "original (cost %d):\n%s", e.OriginalCost, e.OriginalText())
	fmt.Fprintf(&sb, "optimized (cost %d):\n%s", e.OptimizedCost, e.OptimizedText())
	return sb.String()
}

// Explain returns both plans of sql with their costs, annotated with the
// estimated output of every node.
func (p *Planner) Explain(sql string) (string, error) {
	e, err := p.Optimize(sql)
	if err != nil {
		return "", err
	}
	return e.String(), nil
}
