package optimizer

// attributeSet is an insertion-ordered multiset of attribute names. An
// attribute stays in the set until every reference that added it is removed.
type attributeSet struct {
	order  []string
	counts map[string]int
}

func newAttributeSet() *attributeSet {
	return &attributeSet{counts: make(map[string]int)}
}

func (s *attributeSet) add(names ...string) {
	for _, name := range names {
		if _, seen := s.counts[name]; !seen {
			s.order = append(s.order, name)
		}
		s.counts[name]++
	}
}

func (s *attributeSet) remove(names ...string) {
	for _, name := range names {
		if s.counts[name] > 0 {
			s.counts[name]--
		}
	}
}

func (s *attributeSet) contains(name string) bool {
	return s.counts[name] > 0
}

// names returns the attributes still present, in first-insertion order.
func (s *attributeSet) names() []string {
	var names []string
	for _, name := range s.order {
		if s.counts[name] > 0 {
			names = append(names, name)
		}
	}
	return names
}

// intersect returns the members of candidates that are in the set, keeping
// the order of candidates.
func (s *attributeSet) intersect(candidates []string) []string {
	kept := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if s.contains(name) {
			kept = append(kept, name)
		}
	}
	return kept
}

func (s *attributeSet) clone() *attributeSet {
	c := &attributeSet{
		order:  make([]string, len(s.order)),
		counts: make(map[string]int, len(s.counts)),
	}
	copy(c.order, s.order)
	for name, n := range s.counts {
		c.counts[name] = n
	}
	return c
}
