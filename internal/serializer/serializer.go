// Package serializer flattens a documentation model into JSON records.
//
// Traversal is depth-first pre-order. Each record carries the fields that
// are always present, the parsed docstring if there is one, and the extra
// data of its kind: bases for classes, signatures for functions and
// methods, type and value for attributes.
package serializer

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/pydocjson/internal/docstring"
	"github.com/mvp-joe/pydocjson/internal/markup"
	"github.com/mvp-joe/pydocjson/internal/model"
)

// Record is the JSON form of one documentable object. Field order is the
// key order of the output.
type Record struct {
	Name      string     `json:"name"`
	ShortName string     `json:"short_name"`
	Kind      string     `json:"kind"`
	IsVisible bool       `json:"is_visible"`
	IsPrivate bool       `json:"is_private"`
	Children  []Record   `json:"children"`
	Docstring *Docstring `json:"docstring,omitempty"`
	Parent    *string    `json:"parent,omitempty"`

	// Bases is set for classes; an empty list is still emitted.
	Bases *[]string `json:"bases,omitempty"`

	IsAsync   *bool      `json:"is_async,omitempty"`
	Signature *Signature `json:"signature,omitempty"`

	Type  *string `json:"type,omitempty"`
	Value *string `json:"value,omitempty"`
}

// Docstring holds the fields of a docstring and, when it has a body, its
// summary and full text.
type Docstring struct {
	Fields  []Field `json:"fields"`
	Summary *string `json:"summary,omitempty"`
	All     *string `json:"all,omitempty"`
}

// Field is one docstring field, such as "@param x: ...".
type Field struct {
	Name string  `json:"name"`
	Body string  `json:"body"`
	Arg  *string `json:"arg,omitempty"`
}

// Signature is the JSON form of a function signature.
type Signature struct {
	Parameters       []Parameter `json:"parameters"`
	ReturnAnnotation *string     `json:"return_annotation,omitempty"`
}

// Parameter is the JSON form of one formal parameter.
type Parameter struct {
	Name    string  `json:"name"`
	Kind    string  `json:"kind"`
	Type    *string `json:"type,omitempty"`
	Default *string `json:"default,omitempty"`
}

// Serializer converts documentable trees to records. Docstrings that are
// only available as raw text are parsed once and cached in the serializer;
// the input objects are never modified.
type Serializer struct {
	colorizer markup.Colorizer
	log       *logrus.Logger
	parsed    map[*model.Documentable]*docstring.Parsed
}

// New creates a serializer rendering attribute values with the given limits.
// log may be nil.
func New(lineLen, maxLines int, log *logrus.Logger) *Serializer {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Serializer{
		colorizer: markup.Colorizer{LineLen: lineLen, MaxLines: maxLines},
		log:       log,
		parsed:    make(map[*model.Documentable]*docstring.Parsed),
	}
}

// ForSystem creates a serializer using the rendering limits of sys.
func ForSystem(sys *model.System, log *logrus.Logger) *Serializer {
	return New(sys.LineLen, sys.MaxLines, log)
}

// Serialize returns one record per root, each holding its whole subtree.
func (s *Serializer) Serialize(roots []*model.Documentable) []Record {
	records := make([]Record, 0, len(roots))
	for _, d := range roots {
		records = append(records, s.record(d))
	}
	return records
}

func (s *Serializer) record(d *model.Documentable) Record {
	r := Record{
		Name:      d.FullName,
		ShortName: d.Name,
		Kind:      d.Kind.String(),
		IsVisible: d.IsVisible(),
		IsPrivate: d.IsPrivate(),
	}

	if parsed := s.ensureParsed(d); parsed != nil {
		r.Docstring = serializeDocstring(parsed)
	}

	if d.Parent != nil {
		parent := d.Parent.FullName
		r.Parent = &parent
	}

	r.Children = s.Serialize(d.Contents())

	switch {
	case d.Kind == model.KindClass:
		bases := make([]string, len(d.Bases))
		copy(bases, d.Bases)
		r.Bases = &bases
	case d.Kind == model.KindFunction || d.Kind == model.KindMethod:
		s.serializeFunction(&r, d)
	case isSerializedAttribute(d.Kind):
		s.serializeAttribute(&r, d)
	}
	return r
}

// ensureParsed returns the parsed docstring of d, parsing the raw text on
// first use. It returns nil when d has no docstring at all.
func (s *Serializer) ensureParsed(d *model.Documentable) *docstring.Parsed {
	if d.ParsedDocstring != nil {
		return d.ParsedDocstring
	}
	if d.Docstring == nil {
		return nil
	}
	if p, ok := s.parsed[d]; ok {
		return p
	}

	p, errs := docstring.Parse(*d.Docstring)
	for _, err := range errs {
		s.log.WithFields(logrus.Fields{
			"object": d.FullName,
			"line":   err.Line,
			"error":  err.Message,
		}).Debug("Docstring markup error")
	}
	s.parsed[d] = p
	return p
}

func serializeDocstring(p *docstring.Parsed) *Docstring {
	doc := &Docstring{Fields: make([]Field, 0, len(p.Fields))}
	for _, f := range p.Fields {
		doc.Fields = append(doc.Fields, Field{Name: f.Tag, Body: f.Body, Arg: f.Arg})
	}
	if p.HasBody() {
		summary := p.Summary()
		all := p.Text()
		doc.Summary = &summary
		doc.All = &all
	}
	return doc
}

func (s *Serializer) serializeFunction(r *Record, d *model.Documentable) {
	async := d.IsAsync
	r.IsAsync = &async

	sig := &Signature{Parameters: []Parameter{}}
	if d.Signature != nil {
		for _, p := range d.Signature.Parameters {
			param := Parameter{Name: p.Name, Kind: p.Kind.String()}
			if p.Annotation != nil {
				t := markup.StripTags(s.colorizer.Inline(p.Annotation.Source).Text())
				param.Type = &t
			}
			if p.Default != nil {
				def := markup.StripTags(s.colorizer.Inline(p.Default.Source).Text())
				param.Default = &def
			}
			sig.Parameters = append(sig.Parameters, param)
		}
		if ret := d.Signature.ReturnAnnotation; ret != nil {
			name := markup.ReturnName(s.colorizer.Inline(ret.Source).HTML())
			sig.ReturnAnnotation = &name
		}
	}
	r.Signature = sig
}

func (s *Serializer) serializeAttribute(r *Record, d *model.Documentable) {
	if d.Annotation != nil {
		t := s.colorizer.Inline(d.Annotation.Source).Text()
		r.Type = &t
	}
	if d.Value != nil {
		v := s.colorizer.Block(d.Value.Source).Text()
		r.Value = &v
	}
}

// isSerializedAttribute reports whether type and value are emitted for the kind.
// Instance variables and schema fields are attribute-like but carry neither.
func isSerializedAttribute(k model.Kind) bool {
	switch k {
	case model.KindAttribute, model.KindConstant, model.KindVariable,
		model.KindTypeAlias, model.KindTypeVariable, model.KindClassVariable:
		return true
	}
	return false
}
