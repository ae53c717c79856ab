package plan

import (
	"strings"
)

// Format renders the tree rooted at n, one operator per line, children
// indented under their parent. When annotate is not nil its result is
// appended to every line that it returns a non-empty string for.
func Format(n Node, annotate func(Node) string) string {
	var sb strings.Builder
	format(&sb, n, "", "", annotate)
	return sb.String()
}

func format(sb *strings.Builder, n Node, prefix, childPrefix string, annotate func(Node) string) {
	sb.WriteString(prefix)
	sb.WriteString(n.String())
	if annotate != nil {
		if note := annotate(n); note != "" {
			sb.WriteString("  ")
			sb.WriteString(note)
		}
	}
	sb.WriteString("\n")

	children := n.Children()
	for i, child := range children {
		if i == len(children)-1 {
			format(sb, child, childPrefix+"└─ ", childPrefix+"   ", annotate)
		} else {
			format(sb, child, childPrefix+"├─ ", childPrefix+"│  ", annotate)
		}
	}
}
