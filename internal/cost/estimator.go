package cost

import (
	"log"
	"math"
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/yashagw/craneopt/internal/metadata"
	"github.com/yashagw/craneopt/internal/plan"
	"github.com/yashagw/craneopt/internal/query"
	"github.com/yashagw/craneopt/internal/record"
)

var (
	// ErrUnknownAttribute is returned when an operator references an attribute
	// that its input does not produce.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrDuplicateAttribute is returned when both inputs of a product or join
	// carry an attribute of the same name.
	ErrDuplicateAttribute = errors.New("duplicate attribute")
	// ErrCardinalityOverflow is returned when a tuple count or the cost of a
	// plan does not fit in an int.
	ErrCardinalityOverflow = errors.New("cardinality overflow")
)

// Option configures an Estimator.
type Option func(*Estimator)

// WithJoinDistinctPolicy sets how equi-join attributes are re-estimated.
func WithJoinDistinctPolicy(p JoinDistinctPolicy) Option {
	return func(e *Estimator) {
		e.policy = p
	}
}

// WithVerbose logs every estimated node.
func WithVerbose(verbose bool) Option {
	return func(e *Estimator) {
		e.verbose = verbose
	}
}

// Estimator computes the output shape of plan nodes from the catalogue
// statistics of the base relations. Outputs are kept in a side table keyed by
// node identity; each node is estimated at most once and never changes after.
type Estimator struct {
	catalog metadata.Catalog
	policy  JoinDistinctPolicy
	verbose bool
	outputs map[plan.Node]*record.Relation
	total   int
	// saturated is set when total stopped at math.MaxInt.
	saturated bool
}

func NewEstimator(catalog metadata.Catalog, opts ...Option) *Estimator {
	e := &Estimator{
		catalog: catalog,
		policy:  JoinDistinctMin,
		outputs: make(map[plan.Node]*record.Relation),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the configured join distinct policy.
func (e *Estimator) Policy() JoinDistinctPolicy {
	return e.policy
}

// Output returns the recorded output of n, if it has been estimated.
func (e *Estimator) Output(n plan.Node) (*record.Relation, bool) {
	rel, ok := e.outputs[n]
	return rel, ok
}

// Total returns the running cost: the sum of the tuple counts of every node
// passed to Estimate since the last EstimateCost. It saturates at math.MaxInt.
func (e *Estimator) Total() int {
	return e.total
}

// Estimate returns the output of n. All of n's children must already have
// been estimated. A node that was estimated before returns its recorded output.
func (e *Estimator) Estimate(n plan.Node) (*record.Relation, error) {
	rel, ok := e.outputs[n]
	if !ok {
		for _, child := range n.Children() {
			if _, done := e.outputs[child]; !done {
				return nil, errors.AssertionFailedf("%s estimated before its input %s", n, child)
			}
		}

		b := &builder{e: e}
		if err := plan.Dispatch(b, n); err != nil {
			return nil, err
		}
		if err := e.record(n, b.out); err != nil {
			return nil, err
		}
		rel = b.out
		if e.verbose {
			log.Printf("[STATS] Estimate: %s -> %s", n, rel)
		}
	}
	e.add(rel.Tuples())
	return rel, nil
}

func (e *Estimator) add(tuples int) {
	if e.total > math.MaxInt-tuples {
		e.total = math.MaxInt
		e.saturated = true
		return
	}
	e.total += tuples
}

// EstimateTree estimates every node of the tree, children before parents.
func (e *Estimator) EstimateTree(root plan.Node) (*record.Relation, error) {
	if err := plan.Walk(&walker{e: e}, root); err != nil {
		return nil, err
	}
	return e.outputs[root], nil
}

// EstimateCost resets the running total, estimates the whole tree and returns
// the sum of the output tuple counts of all of its nodes.
func (e *Estimator) EstimateCost(root plan.Node) (int, error) {
	e.total = 0
	e.saturated = false
	if _, err := e.EstimateTree(root); err != nil {
		return 0, err
	}
	if e.saturated {
		return 0, errors.Wrapf(ErrCardinalityOverflow, "cost of %s", root)
	}
	return e.total, nil
}

// Annotate describes the recorded output of n, for use with plan.Format.
func (e *Estimator) Annotate(n plan.Node) string {
	if rel, ok := e.outputs[n]; ok {
		return rel.String()
	}
	return ""
}

func (e *Estimator) record(n plan.Node, rel *record.Relation) error {
	if _, exists := e.outputs[n]; exists {
		return errors.AssertionFailedf("output of %s recorded twice", n)
	}
	e.outputs[n] = rel
	return nil
}

func (e *Estimator) input(n plan.Node) *record.Relation {
	return e.outputs[n]
}

// walker adapts Estimate to plan.Walk.
type walker struct {
	e *Estimator
}

func (w *walker) visit(n plan.Node) error {
	_, err := w.e.Estimate(n)
	return err
}

func (w *walker) VisitScan(s *plan.Scan) error       { return w.visit(s) }
func (w *walker) VisitSelect(s *plan.Select) error   { return w.visit(s) }
func (w *walker) VisitProject(p *plan.Project) error { return w.visit(p) }
func (w *walker) VisitProduct(p *plan.Product) error { return w.visit(p) }
func (w *walker) VisitJoin(j *plan.Join) error       { return w.visit(j) }

// builder computes the output of a single node from its inputs' outputs.
type builder struct {
	e   *Estimator
	out *record.Relation
}

// VisitScan copies the catalogue statistics verbatim.
func (b *builder) VisitScan(s *plan.Scan) error {
	rel, err := b.e.catalog.Relation(s.Relation())
	if err != nil {
		return err
	}
	b.out = rel
	return nil
}

// VisitProject keeps the requested attributes in input order. Tuples are not
// deduplicated, so the tuple count is unchanged.
func (b *builder) VisitProject(p *plan.Project) error {
	input := b.e.input(p.Child())
	wanted := make(map[string]bool)
	for _, name := range p.Attributes() {
		wanted[name] = true
	}

	out := record.NewRelation(input.Tuples())
	for _, name := range input.AttributeNames() {
		if wanted[name] {
			out.Copy(input, name)
		}
	}
	b.out = out
	return nil
}

// VisitSelect applies the selectivity of an equality predicate:
// 1/V(A) against a constant, 1/max(V(A), V(B)) against another attribute.
func (b *builder) VisitSelect(s *plan.Select) error {
	input := b.e.input(s.Child())
	pred := s.Predicate()

	va, err := distinctValues(input, pred.LeftAttribute(), s)
	if err != nil {
		return err
	}

	if pred.Kind() == query.ValueEquality {
		tuples, err := divide(0, uint64(input.Tuples()), va, s)
		if err != nil {
			return err
		}
		out := record.NewRelation(tuples)
		out.CopyAll(input)
		b.out = out.WithDistinctValues(pred.LeftAttribute(), 1)
		return nil
	}

	vb, err := distinctValues(input, pred.RightAttribute(), s)
	if err != nil {
		return err
	}
	tuples, err := divide(0, uint64(input.Tuples()), max(va, vb), s)
	if err != nil {
		return err
	}
	out := record.NewRelation(tuples)
	out.CopyAll(input)
	v := min(va, vb)
	b.out = out.WithDistinctValues(pred.LeftAttribute(), v).WithDistinctValues(pred.RightAttribute(), v)
	return nil
}

// VisitProduct multiplies the tuple counts and concatenates the attributes.
func (b *builder) VisitProduct(p *plan.Product) error {
	left := b.e.input(p.Left())
	right := b.e.input(p.Right())
	if err := disjoint(left, right, p); err != nil {
		return err
	}

	hi, lo := bits.Mul64(uint64(left.Tuples()), uint64(right.Tuples()))
	tuples, err := divide(hi, lo, 1, p)
	if err != nil {
		return err
	}
	out := record.NewRelation(tuples)
	out.CopyAll(left)
	out.CopyAll(right)
	b.out = out
	return nil
}

// VisitJoin estimates an equi-join as a product filtered by 1/max(Va, Vb).
func (b *builder) VisitJoin(j *plan.Join) error {
	left := b.e.input(j.Left())
	right := b.e.input(j.Right())
	pred := j.Predicate()

	if pred.Kind() != query.AttributeEquality {
		return errors.AssertionFailedf("%s: join predicate must equate two attributes", j)
	}
	va, err := distinctValues(left, pred.LeftAttribute(), j)
	if err != nil {
		return err
	}
	vb, err := distinctValues(right, pred.RightAttribute(), j)
	if err != nil {
		return err
	}
	if err := disjoint(left, right, j); err != nil {
		return err
	}

	hi, lo := bits.Mul64(uint64(left.Tuples()), uint64(right.Tuples()))
	tuples, err := divide(hi, lo, max(va, vb), j)
	if err != nil {
		return err
	}
	out := record.NewRelation(tuples)
	out.CopyAll(left)
	out.CopyAll(right)
	v := b.e.policy.apply(va, vb)
	b.out = out.WithDistinctValues(pred.LeftAttribute(), v).WithDistinctValues(pred.RightAttribute(), v)
	return nil
}

func distinctValues(rel *record.Relation, name string, n plan.Node) (int, error) {
	v, ok := rel.DistinctValues(name)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownAttribute, "%s: %q not in input %s", n, name, rel)
	}
	return v, nil
}

// disjoint rejects inputs that share an attribute name: the combined output
// could not tell the two apart.
func disjoint(left, right *record.Relation, n plan.Node) error {
	for _, name := range right.AttributeNames() {
		if left.HasAttribute(name) {
			return errors.Wrapf(ErrDuplicateAttribute, "%s: %q on both sides", n, name)
		}
	}
	return nil
}

// divide returns the 128-bit tuple count hi:lo divided by distinct, rounded
// half away from zero. Counts are never negative, so half away from zero is
// half up.
func divide(hi, lo uint64, distinct int, n plan.Node) (int, error) {
	d := uint64(distinct)
	if hi >= d {
		return 0, errors.Wrapf(ErrCardinalityOverflow, "%s", n)
	}
	q, r := bits.Div64(hi, lo, d)
	up := r >= d-r
	if q > math.MaxInt || (up && q == math.MaxInt) {
		return 0, errors.Wrapf(ErrCardinalityOverflow, "%s", n)
	}
	if up {
		q++
	}
	return int(q), nil
}
