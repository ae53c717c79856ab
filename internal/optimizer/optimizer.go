package optimizer

import (
	"log"

	"github.com/cockroachdb/errors"
	"github.com/yashagw/craneopt/internal/cost"
	"github.com/yashagw/craneopt/internal/metadata"
	"github.com/yashagw/craneopt/internal/plan"
	"github.com/yashagw/craneopt/internal/query"
	"github.com/yashagw/craneopt/internal/record"
)

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithJoinDistinctPolicy selects the estimator's join distinct policy.
func WithJoinDistinctPolicy(p cost.JoinDistinctPolicy) Option {
	return func(o *Optimizer) {
		o.policy = p
	}
}

// WithVerbose logs every rewrite step.
func WithVerbose(verbose bool) Option {
	return func(o *Optimizer) {
		o.verbose = verbose
	}
}

// Optimizer rewrites plans heuristically: filters and projections are pushed
// to the base relations and joins are assembled greedily from the join
// predicates, falling back to products when no predicate connects two inputs.
type Optimizer struct {
	catalog metadata.Catalog
	policy  cost.JoinDistinctPolicy
	verbose bool
}

func New(catalog metadata.Catalog, opts ...Option) *Optimizer {
	o := &Optimizer{
		catalog: catalog,
		policy:  cost.JoinDistinctMin,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result is the outcome of one Optimize call.
type Result struct {
	// Plan is the rewritten tree. It shares no nodes with the input.
	Plan plan.Node
	// OriginalCost and OptimizedCost are the summed tuple counts of the
	// input and rewritten trees.
	OriginalCost  int
	OptimizedCost int
	// Steps is the number of joins and products built by greedy assembly.
	Steps int
	// Estimator holds the statistics of every node of both trees.
	Estimator *cost.Estimator
}

// NewEstimator returns an estimator configured like the optimizer's own.
func (o *Optimizer) NewEstimator() *cost.Estimator {
	return cost.NewEstimator(o.catalog, cost.WithJoinDistinctPolicy(o.policy), cost.WithVerbose(o.verbose))
}

// Optimize rewrites root. The input tree is not modified.
func (o *Optimizer) Optimize(root plan.Node) (*Result, error) {
	est := o.NewEstimator()

	originalCost, err := est.EstimateCost(root)
	if err != nil {
		return nil, err
	}

	shape, err := Collect(root)
	if err != nil {
		return nil, err
	}
	output, _ := est.Output(root)

	r := newRewrite(shape, output.AttributeNames(), est, o.verbose)
	optimized, err := r.run()
	if err != nil {
		return nil, err
	}

	optimizedCost, err := est.EstimateCost(optimized)
	if err != nil {
		return nil, err
	}

	if o.verbose {
		log.Printf("[OPTIMIZER] Optimize: cost %d -> %d in %d step(s)", originalCost, optimizedCost, r.steps)
	}
	return &Result{
		Plan:          optimized,
		OriginalCost:  originalCost,
		OptimizedCost: optimizedCost,
		Steps:         r.steps,
		Estimator:     est,
	}, nil
}

// rewrite holds the pending work of one Optimize call. It starts from a
// collected Shape and consumes predicates as they are placed in the tree.
// required holds the attributes of pending predicates plus the attributes
// the input tree returns, which stay required until the end.
type rewrite struct {
	shape      *Shape
	est        *cost.Estimator
	verbose    bool
	valuePreds []*query.Predicate
	joinPreds  []*query.Predicate
	required   *attributeSet
	subtrees   []plan.Node
	steps      int
}

func newRewrite(shape *Shape, output []string, est *cost.Estimator, verbose bool) *rewrite {
	required := shape.required.clone()
	required.add(output...)
	return &rewrite{
		shape:      shape,
		est:        est,
		verbose:    verbose,
		valuePreds: shape.ValuePredicates(),
		joinPreds:  shape.JoinPredicates(),
		required:   required,
	}
}

func (r *rewrite) run() (plan.Node, error) {
	if len(r.shape.scans) == 0 {
		return nil, errors.AssertionFailedf("plan has no base relations")
	}
	if err := r.pushSelections(); err != nil {
		return nil, err
	}
	if err := r.pushProjections(); err != nil {
		return nil, err
	}
	if err := r.assemble(); err != nil {
		return nil, err
	}
	return r.subtrees[0], nil
}

// pushSelections wraps every scan in the filters that only need that scan:
// all pending value predicates on one of its attributes, then all pending
// attribute predicates with both sides in it. Predicates are applied in
// collection order and each is applied once, to the first scan that has it.
func (r *rewrite) pushSelections() error {
	for _, scan := range r.shape.Scans() {
		var node plan.Node = scan
		out, err := r.est.Estimate(node)
		if err != nil {
			return err
		}

		pending := r.valuePreds[:0:0]
		for _, pred := range r.valuePreds {
			if !out.HasAttribute(pred.LeftAttribute()) {
				pending = append(pending, pred)
				continue
			}
			if node, out, err = r.filter(node, pred); err != nil {
				return err
			}
		}
		r.valuePreds = pending

		if node, err = r.applyContained(node); err != nil {
			return err
		}
		r.subtrees = append(r.subtrees, node)
	}

	if len(r.valuePreds) > 0 {
		return errors.Wrapf(cost.ErrUnknownAttribute, "%s: no base relation has the attribute", r.valuePreds[0])
	}
	return nil
}

// pushProjections narrows every subtree to the attributes still required,
// when the query projects at all.
func (r *rewrite) pushProjections() error {
	if !r.shape.HasProjection() {
		return nil
	}
	for i, node := range r.subtrees {
		out, err := r.est.Estimate(node)
		if err != nil {
			return err
		}
		proj := plan.NewProject(node, r.required.intersect(out.AttributeNames()))
		if _, err := r.est.Estimate(proj); err != nil {
			return err
		}
		r.subtrees[i] = proj
	}
	return nil
}

// assemble combines the subtrees until one remains. Each round either joins
// the first pair connected by a pending predicate or, failing that, takes the
// product of the first two subtrees. The combined subtree goes to the end of
// the worklist and the search restarts from the front.
func (r *rewrite) assemble() error {
	limit := len(r.subtrees) - 1
	for len(r.subtrees) > 1 {
		if r.steps >= limit {
			return errors.AssertionFailedf("join assembly exceeded %d steps", limit)
		}

		var combined plan.Node
		var rest []plan.Node
		if i, j, k, ok := r.findJoin(); ok {
			pred := r.joinPreds[k]
			combined = plan.NewJoin(r.subtrees[i], r.subtrees[j], pred)
			r.joinPreds = append(r.joinPreds[:k:k], r.joinPreds[k+1:]...)
			r.required.remove(pred.Attributes()...)
			rest = without(r.subtrees, i, j)
		} else {
			combined = plan.NewProduct(r.subtrees[0], r.subtrees[1])
			rest = without(r.subtrees, 0, 1)
		}

		if _, err := r.est.Estimate(combined); err != nil {
			return err
		}
		combined, err := r.applyContained(combined)
		if err != nil {
			return err
		}
		if combined, err = r.project(combined); err != nil {
			return err
		}

		r.subtrees = append(rest, combined)
		r.steps++
		if r.verbose {
			log.Printf("[OPTIMIZER] assemble: step %d built %s (%d subtree(s) left)", r.steps, combined, len(r.subtrees))
		}
	}
	return nil
}

// findJoin returns the first (left subtree, right subtree, predicate) match:
// subtrees are tried in order as the left input, then pending predicates in
// order on their left attribute, then the other subtrees in order as the
// right input.
func (r *rewrite) findJoin() (i, j, k int, ok bool) {
	outputs := make([]*record.Relation, len(r.subtrees))
	for n, node := range r.subtrees {
		outputs[n], _ = r.est.Output(node)
	}

	for i = range r.subtrees {
		for k = range r.joinPreds {
			if !outputs[i].HasAttribute(r.joinPreds[k].LeftAttribute()) {
				continue
			}
			for j = range r.subtrees {
				if j != i && outputs[j].HasAttribute(r.joinPreds[k].RightAttribute()) {
					return i, j, k, true
				}
			}
		}
	}
	return 0, 0, 0, false
}

// applyContained filters node with every pending attribute predicate whose
// two attributes are both produced by node.
func (r *rewrite) applyContained(node plan.Node) (plan.Node, error) {
	out, ok := r.est.Output(node)
	if !ok {
		return nil, errors.AssertionFailedf("%s has not been estimated", node)
	}

	pending := r.joinPreds[:0:0]
	for _, pred := range r.joinPreds {
		if !pred.AppliesTo(out) {
			pending = append(pending, pred)
			continue
		}
		var err error
		if node, out, err = r.filter(node, pred); err != nil {
			return nil, err
		}
	}
	r.joinPreds = pending
	return node, nil
}

// filter wraps node in a Select and releases the predicate's attributes.
func (r *rewrite) filter(node plan.Node, pred *query.Predicate) (plan.Node, *record.Relation, error) {
	sel := plan.NewSelect(node, pred)
	out, err := r.est.Estimate(sel)
	if err != nil {
		return nil, nil, err
	}
	r.required.remove(pred.Attributes()...)
	if r.verbose {
		log.Printf("[OPTIMIZER] filter: pushed %s onto %s", pred, node)
	}
	return sel, out, nil
}

// project narrows node to the required attributes when the query projects
// and doing so drops at least one attribute.
func (r *rewrite) project(node plan.Node) (plan.Node, error) {
	if !r.shape.HasProjection() {
		return node, nil
	}
	out, ok := r.est.Output(node)
	if !ok {
		return nil, errors.AssertionFailedf("%s has not been estimated", node)
	}
	names := out.AttributeNames()
	kept := r.required.intersect(names)
	if len(kept) == len(names) {
		return node, nil
	}
	proj := plan.NewProject(node, kept)
	if _, err := r.est.Estimate(proj); err != nil {
		return nil, err
	}
	return proj, nil
}

// without returns nodes minus the entries at positions a and b, in order.
func without(nodes []plan.Node, a, b int) []plan.Node {
	rest := make([]plan.Node, 0, len(nodes))
	for n, node := range nodes {
		if n != a && n != b {
			rest = append(rest, node)
		}
	}
	return rest
}
