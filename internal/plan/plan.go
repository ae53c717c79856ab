package plan

// Node is a relational algebra operator in a query plan tree.
// The set of variants is closed: Scan, Select, Project, Product and Join.
type Node interface {
	// Children returns the operator's inputs, left to right.
	Children() []Node
	// String returns a one-line description of the operator itself.
	String() string

	node()
}

var (
	_ Node = (*Scan)(nil)
	_ Node = (*Select)(nil)
	_ Node = (*Project)(nil)
	_ Node = (*Product)(nil)
	_ Node = (*Join)(nil)
)
