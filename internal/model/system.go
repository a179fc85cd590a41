package model

// System is the documentation model of a whole source tree.
type System struct {
	// RootObjects are the top-level packages and modules, in discovery order.
	RootObjects []*Documentable

	// LineLen and MaxLines limit how attribute values are rendered.
	LineLen  int
	MaxLines int

	byName map[string]*Documentable
}

// NewSystem creates an empty system with the given value rendering limits.
func NewSystem(lineLen, maxLines int) *System {
	return &System{
		LineLen:  lineLen,
		MaxLines: maxLines,
		byName:   make(map[string]*Documentable),
	}
}

// AddRoot appends a top-level object.
func (s *System) AddRoot(d *Documentable) {
	s.RootObjects = append(s.RootObjects, d)
}

// Reindex rebuilds the full-name lookup table from the current forest.
func (s *System) Reindex() {
	s.byName = make(map[string]*Documentable)
	for _, o := range s.AllObjects() {
		s.byName[o.FullName] = o
	}
}

// ObjectByName returns the object with the given full name, or nil.
// Reindex must have been called after the forest last changed.
func (s *System) ObjectByName(fullName string) *Documentable {
	return s.byName[fullName]
}

// AllObjects returns every object in the forest, depth-first pre-order.
func (s *System) AllObjects() []*Documentable {
	var all []*Documentable
	for _, root := range s.RootObjects {
		root.Walk(func(d *Documentable) bool {
			all = append(all, d)
			return true
		})
	}
	return all
}

// Count returns the number of objects in the forest.
func (s *System) Count() int {
	n := 0
	for _, root := range s.RootObjects {
		root.Walk(func(*Documentable) bool {
			n++
			return true
		})
	}
	return n
}
