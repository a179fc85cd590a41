package model

import "github.com/mvp-joe/pydocjson/internal/docstring"

// Expr is a Python expression kept as source text.
// A nil *Expr means the expression is absent.
type Expr struct {
	Source string
}

// NewExpr returns an expression for the given source text.
func NewExpr(source string) *Expr {
	return &Expr{Source: source}
}

func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	return e.Source
}

// Parameter is one formal parameter of a function signature.
type Parameter struct {
	Name       string
	Kind       ParameterKind
	Annotation *Expr
	Default    *Expr
}

// Signature is the ordered parameter list and optional return annotation of a function.
type Signature struct {
	Parameters       []Parameter
	ReturnAnnotation *Expr
}

// Documentable is one documented element of a Python source tree.
//
// Contents preserves declaration order. Parent is a back-reference only;
// ownership of a node stays with its parent's Contents.
type Documentable struct {
	FullName string
	Name     string
	Kind     Kind
	Privacy  PrivacyClass
	Parent   *Documentable

	// Docstring is the raw, dedented docstring text.
	Docstring *string
	// ParsedDocstring is set when a parsed form is already known.
	ParsedDocstring *docstring.Parsed

	// Class data.
	Bases []string

	// Function data.
	IsAsync   bool
	Signature *Signature

	// Attribute data.
	Annotation *Expr
	Value      *Expr

	Filename string
	Lineno   int

	contents []*Documentable
	index    map[string]int
}

// NewDocumentable creates a node named name under parent. The node is not
// attached to the parent; use AddChild for that.
func NewDocumentable(parent *Documentable, name string, kind Kind) *Documentable {
	fullName := name
	if parent != nil {
		fullName = parent.FullName + "." + name
	}
	return &Documentable{
		FullName: fullName,
		Name:     name,
		Kind:     kind,
		Parent:   parent,
	}
}

// IsVisible reports whether the object is shown in the documentation.
func (d *Documentable) IsVisible() bool {
	return d.Privacy != Hidden
}

// IsPrivate reports whether the object is flagged private.
func (d *Documentable) IsPrivate() bool {
	return d.Privacy == Private
}

// Contents returns the children in declaration order.
func (d *Documentable) Contents() []*Documentable {
	return d.contents
}

// Child returns the child with the given short name, or nil.
func (d *Documentable) Child(name string) *Documentable {
	if i, ok := d.index[name]; ok {
		return d.contents[i]
	}
	return nil
}

// AddChild appends child to the contents. A child with the same short name
// as an existing one replaces it in place, keeping the original position.
func (d *Documentable) AddChild(child *Documentable) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	child.Parent = d
	if i, ok := d.index[child.Name]; ok {
		d.contents[i] = child
		return
	}
	d.index[child.Name] = len(d.contents)
	d.contents = append(d.contents, child)
}

// SetDocstring stores the raw docstring text.
func (d *Documentable) SetDocstring(text string) {
	d.Docstring = &text
}

// Module returns the closest enclosing module or package, or nil.
func (d *Documentable) Module() *Documentable {
	for o := d; o != nil; o = o.Parent {
		if o.Kind.IsModuleLike() {
			return o
		}
	}
	return nil
}

// Walk visits d and all of its descendants depth-first, pre-order.
// Returning false from fn skips the node's children.
func (d *Documentable) Walk(fn func(*Documentable) bool) {
	if !fn(d) {
		return
	}
	for _, c := range d.contents {
		c.Walk(fn)
	}
}
