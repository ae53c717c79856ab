package plan

import (
	"fmt"
	"strings"
)

// Project keeps only the requested attributes of its child. It never removes
// duplicate tuples.
type Project struct {
	child      Node
	attributes []string
}

func NewProject(child Node, attributes []string) *Project {
	attrs := make([]string, len(attributes))
	copy(attrs, attributes)
	return &Project{
		child:      child,
		attributes: attrs,
	}
}

func (p *Project) Child() Node { return p.child }

// Attributes returns a copy of the requested attribute names.
func (p *Project) Attributes() []string {
	attrs := make([]string, len(p.attributes))
	copy(attrs, p.attributes)
	return attrs
}

func (p *Project) Children() []Node { return []Node{p.child} }
func (p *Project) String() string {
	return fmt.Sprintf("Project(%s)", strings.Join(p.attributes, ", "))
}
func (p *Project) node() {}
