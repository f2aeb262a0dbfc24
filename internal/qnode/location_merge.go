package qnode

// orLocationListIterator interleaves several LocationIterators in
// ascending order, producing the union of positions with duplicates
// removed (spec.md §4.2.5, the OrLocationListIterator used by AtomicOr).
type orLocationListIterator struct {
	heads []Location
	valid []bool
	its   []LocationIterator
	last  Location
	first bool
}

func newOrLocationListIterator(its []LocationIterator) *orLocationListIterator {
	m := &orLocationListIterator{
		heads: make([]Location, len(its)),
		valid: make([]bool, len(its)),
		its:   its,
		first: true,
	}
	for i, it := range its {
		if it == nil {
			continue
		}
		loc, ok := it.Next()
		m.heads[i] = loc
		m.valid[i] = ok
	}
	return m
}

func (m *orLocationListIterator) Next() (Location, bool) {
	for {
		best := -1
		for i := range m.its {
			if !m.valid[i] {
				continue
			}
			if best == -1 || m.heads[i] < m.heads[best] {
				best = i
			}
		}
		if best == -1 {
			return 0, false
		}
		loc := m.heads[best]
		next, ok := m.its[best].Next()
		m.heads[best] = next
		m.valid[best] = ok
		if !m.first && loc == m.last {
			// duplicate across lists: skip it, advance further.
			continue
		}
		m.first = false
		m.last = loc
		return loc, true
	}
}

func (m *orLocationListIterator) Reset() {
	for i, it := range m.its {
		if it == nil {
			continue
		}
		it.Reset()
		loc, ok := it.Next()
		m.heads[i] = loc
		m.valid[i] = ok
	}
	m.first = true
}

func (m *orLocationListIterator) Release() {
	for _, it := range m.its {
		if it != nil {
			it.Release()
		}
	}
}
