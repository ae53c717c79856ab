package plan

// Product is the Cartesian product of two inputs.
type Product struct {
	left  Node
	right Node
}

func NewProduct(left, right Node) *Product {
	return &Product{
		left:  left,
		right: right,
	}
}

func (p *Product) Left() Node  { return p.left }
func (p *Product) Right() Node { return p.right }

func (p *Product) Children() []Node { return []Node{p.left, p.right} }
func (p *Product) String() string   { return "Product" }
func (p *Product) node()            {}
