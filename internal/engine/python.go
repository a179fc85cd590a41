package engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/mvp-joe/pydocjson/internal/docstring"
	"github.com/mvp-joe/pydocjson/internal/model"
)

// pythonParser parses Python modules into the documentation model.
type pythonParser struct {
	language *sitter.Language
	log      *logrus.Logger
}

// newPythonParser creates a new Python parser.
func newPythonParser(log *logrus.Logger) *pythonParser {
	return &pythonParser{
		language: sitter.NewLanguage(python.Language()),
		log:      log,
	}
}

// ParseFile parses the Python file at path into mod. It returns the names
// the module imports, mapped to the full names they refer to.
func (p *pythonParser) ParseFile(ctx context.Context, mod *model.Documentable, path string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.parseSource(mod, path, source)
}

func (p *pythonParser) parseSource(mod *model.Documentable, filename string, source []byte) (map[string]string, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("failed to set python language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse python file: %s", filename)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		p.log.WithFields(logrus.Fields{
			"file":   filename,
			"module": mod.FullName,
		}).Warn("Syntax errors found, documenting what could be parsed")
	}

	v := &moduleVisitor{
		source:   source,
		filename: filename,
		module:   mod,
		imports:  make(map[string]string),
	}
	v.visitBlock(mod, root, true)
	return v.imports, nil
}

// moduleVisitor walks the syntax tree of one module.
type moduleVisitor struct {
	source   []byte
	filename string
	module   *model.Documentable
	imports  map[string]string

	// guarded holds the names bound in guardScope when an else, elif or
	// except branch was entered. Those names keep their first definition.
	guarded    map[string]bool
	guardScope *model.Documentable
}

func (v *moduleVisitor) text(n *sitter.Node) string {
	return nodeText(n, v.source)
}

func (v *moduleVisitor) expr(n *sitter.Node) *model.Expr {
	if n == nil {
		return nil
	}
	return model.NewExpr(v.text(n))
}

// annotation returns the expression of a type annotation. A string
// annotation such as "Shape" yields the expression inside the quotes.
func (v *moduleVisitor) annotation(n *sitter.Node) *model.Expr {
	if n == nil {
		return nil
	}
	inner := n
	if inner.Kind() == "type" && inner.NamedChildCount() == 1 {
		inner = inner.NamedChild(0)
	}
	if s, ok := stringLiteral(inner, v.source); ok && strings.TrimSpace(s) != "" {
		return model.NewExpr(strings.TrimSpace(s))
	}
	return v.expr(n)
}

func (v *moduleVisitor) newObject(scope *model.Documentable, name string, kind model.Kind, node *sitter.Node) *model.Documentable {
	obj := model.NewDocumentable(scope, name, kind)
	obj.Filename = v.filename
	obj.Lineno = lineOf(node)
	return obj
}

// visitBlock visits the statements of a module, class body or nested block.
// first is set when the block's first statement may be a docstring.
func (v *moduleVisitor) visitBlock(scope *model.Documentable, block *sitter.Node, first bool) {
	stmts := namedChildren(block)
	for i, stmt := range stmts {
		var next *sitter.Node
		if i+1 < len(stmts) {
			next = stmts[i+1]
		}

		switch stmt.Kind() {
		case "expression_statement":
			if first && i == 0 {
				if doc, ok := v.docstringOf(stmt); ok {
					scope.SetDocstring(doc)
					continue
				}
			}
			if expr := stmt.NamedChild(0); expr != nil && expr.Kind() == "assignment" {
				v.visitAssignment(scope, expr, next)
			}
		case "class_definition":
			v.visitClass(scope, stmt)
		case "function_definition":
			v.visitFunction(scope, stmt, nil)
		case "decorated_definition":
			def := stmt.ChildByFieldName("definition")
			if def == nil {
				continue
			}
			switch def.Kind() {
			case "class_definition":
				v.visitClass(scope, def)
			case "function_definition":
				v.visitFunction(scope, def, v.decorators(stmt))
			}
		case "type_alias_statement":
			v.visitTypeAlias(scope, stmt, next)
		case "import_statement", "import_from_statement":
			if scope.Kind.IsModuleLike() {
				v.visitImport(stmt)
			}
		case "if_statement":
			if v.isMainCheck(stmt.ChildByFieldName("condition")) {
				continue
			}
			v.visitBlock(scope, stmt.ChildByFieldName("consequence"), false)
			for _, alt := range childrenByField(stmt, "alternative") {
				v.visitGuarded(scope, findChildByType(alt, "block"))
			}
		case "try_statement":
			v.visitBlock(scope, stmt.ChildByFieldName("body"), false)
			for _, clause := range namedChildren(stmt) {
				switch clause.Kind() {
				case "except_clause", "except_group_clause", "else_clause", "finally_clause":
					v.visitGuarded(scope, findChildByType(clause, "block"))
				}
			}
		}
	}
}

// isMainCheck reports whether cond is a "__name__ == ..." comparison.
func (v *moduleVisitor) isMainCheck(cond *sitter.Node) bool {
	if cond == nil || cond.Kind() != "comparison_operator" {
		return false
	}
	left := cond.NamedChild(0)
	return left != nil && left.Kind() == "identifier" && v.text(left) == "__name__"
}

// visitGuarded visits an alternative branch. Names already bound in scope
// when the branch starts are not redefined by it.
func (v *moduleVisitor) visitGuarded(scope *model.Documentable, block *sitter.Node) {
	if block == nil {
		return
	}
	names := make(map[string]bool)
	for _, c := range scope.Contents() {
		names[c.Name] = true
	}
	if scope == v.module {
		for name := range v.imports {
			names[name] = true
		}
	}

	prevNames, prevScope := v.guarded, v.guardScope
	v.guarded, v.guardScope = names, scope
	v.visitBlock(scope, block, false)
	v.guarded, v.guardScope = prevNames, prevScope
}

// isGuarded reports whether name may not be redefined in scope.
func (v *moduleVisitor) isGuarded(scope *model.Documentable, name string) bool {
	return v.guarded != nil && scope == v.guardScope && v.guarded[name]
}

// docstringOf returns the cleaned docstring held by an expression statement.
func (v *moduleVisitor) docstringOf(stmt *sitter.Node) (string, bool) {
	if stmt == nil || stmt.Kind() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return "", false
	}
	s, ok := stringLiteral(stmt.NamedChild(0), v.source)
	if !ok {
		return "", false
	}
	return docstring.Clean(s), true
}

func (v *moduleVisitor) bodyDocstring(def *sitter.Node) (string, bool) {
	stmts := namedChildren(def.ChildByFieldName("body"))
	if len(stmts) == 0 {
		return "", false
	}
	return v.docstringOf(stmts[0])
}

func (v *moduleVisitor) visitClass(scope *model.Documentable, node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	if v.isGuarded(scope, v.text(nameNode)) {
		return
	}

	cls := v.newObject(scope, v.text(nameNode), model.KindClass, node)
	cls.Bases = []string{}
	for _, arg := range namedChildren(node.ChildByFieldName("superclasses")) {
		if arg.Kind() == "keyword_argument" || arg.Kind() == "dictionary_splat" {
			continue
		}
		cls.Bases = append(cls.Bases, compactText(arg, v.source))
	}
	scope.AddChild(cls)

	prevNames, prevScope := v.guarded, v.guardScope
	v.guarded, v.guardScope = nil, nil
	v.visitBlock(cls, node.ChildByFieldName("body"), true)
	v.guarded, v.guardScope = prevNames, prevScope
}

func (v *moduleVisitor) decorators(node *sitter.Node) []string {
	var out []string
	for _, d := range namedChildren(node) {
		if d.Kind() != "decorator" {
			continue
		}
		expr := namedChildren(d)
		if len(expr) == 0 {
			continue
		}
		target := expr[0]
		if target.Kind() == "call" {
			target = target.ChildByFieldName("function")
		}
		out = append(out, compactText(target, v.source))
	}
	return out
}

func (v *moduleVisitor) visitFunction(scope *model.Documentable, node *sitter.Node, decorators []string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := v.text(nameNode)
	if v.isGuarded(scope, name) {
		return
	}

	kind := model.KindFunction
	if scope.Kind.IsClassLike() {
		kind = model.KindMethod
		for _, d := range decorators {
			switch d {
			case "classmethod":
				kind = model.KindClassMethod
			case "staticmethod":
				kind = model.KindStaticMethod
			case "property", "cached_property", "functools.cached_property", "abc.abstractproperty":
				kind = model.KindProperty
			}
			if d == name+".setter" || d == name+".deleter" {
				if existing := scope.Child(name); existing != nil && existing.Kind == model.KindProperty {
					return
				}
			}
		}
	}

	fn := v.newObject(scope, name, kind, node)
	fn.IsAsync = findChildByType(node, "async") != nil
	fn.Signature = v.signature(node)
	if doc, ok := v.bodyDocstring(node); ok {
		fn.SetDocstring(doc)
	}
	if kind == model.KindProperty {
		fn.Annotation = fn.Signature.ReturnAnnotation
	}
	scope.AddChild(fn)

	if name == "__init__" && scope.Kind.IsClassLike() {
		v.visitInstanceVariables(scope, node, fn)
	}
}

func (v *moduleVisitor) signature(node *sitter.Node) *model.Signature {
	sig := &model.Signature{Parameters: []model.Parameter{}}
	kwOnly := false

	for _, p := range namedChildren(node.ChildByFieldName("parameters")) {
		param := model.Parameter{Kind: model.PositionalOrKeyword}
		if kwOnly {
			param.Kind = model.KeywordOnly
		}

		switch p.Kind() {
		case "identifier":
			param.Name = v.text(p)
		case "typed_parameter":
			param.Annotation = v.annotation(p.ChildByFieldName("type"))
			inner := p.NamedChild(0)
			if inner == nil {
				continue
			}
			switch inner.Kind() {
			case "list_splat_pattern":
				param.Name = v.splatName(inner)
				param.Kind = model.VarPositional
				kwOnly = true
			case "dictionary_splat_pattern":
				param.Name = v.splatName(inner)
				param.Kind = model.VarKeyword
			default:
				param.Name = v.text(inner)
			}
		case "default_parameter":
			param.Name = v.text(p.ChildByFieldName("name"))
			param.Default = v.expr(p.ChildByFieldName("value"))
		case "typed_default_parameter":
			param.Name = v.text(p.ChildByFieldName("name"))
			param.Annotation = v.annotation(p.ChildByFieldName("type"))
			param.Default = v.expr(p.ChildByFieldName("value"))
		case "list_splat_pattern":
			if strings.TrimSpace(v.text(p)) == "*" {
				kwOnly = true
				continue
			}
			param.Name = v.splatName(p)
			param.Kind = model.VarPositional
			kwOnly = true
		case "dictionary_splat_pattern":
			param.Name = v.splatName(p)
			param.Kind = model.VarKeyword
		case "keyword_separator":
			kwOnly = true
			continue
		case "positional_separator":
			for i := range sig.Parameters {
				sig.Parameters[i].Kind = model.PositionalOnly
			}
			continue
		default:
			continue
		}
		sig.Parameters = append(sig.Parameters, param)
	}

	if rt := node.ChildByFieldName("return_type"); rt != nil {
		sig.ReturnAnnotation = v.annotation(rt)
	}
	return sig
}

func (v *moduleVisitor) splatName(n *sitter.Node) string {
	if id := findChildByType(n, "identifier"); id != nil {
		return v.text(id)
	}
	return strings.TrimLeft(v.text(n), "*")
}

func (v *moduleVisitor) visitAssignment(scope *model.Documentable, node, next *sitter.Node) {
	targets := []*sitter.Node{node.ChildByFieldName("left")}
	annotation := node.ChildByFieldName("type")
	value := node.ChildByFieldName("right")
	for value != nil && value.Kind() == "assignment" {
		targets = append(targets, value.ChildByFieldName("left"))
		value = value.ChildByFieldName("right")
	}

	doc, hasDoc := v.docstringOf(next)
	for _, t := range targets {
		if t == nil {
			continue
		}
		switch t.Kind() {
		case "identifier":
			attr := v.addAttribute(scope, v.text(t), annotation, value, node)
			if attr != nil && hasDoc {
				attr.SetDocstring(doc)
			}
		case "pattern_list", "tuple_pattern":
			for _, el := range namedChildren(t) {
				if el.Kind() == "identifier" {
					v.addAttribute(scope, v.text(el), nil, nil, node)
				}
			}
		}
	}
}

func (v *moduleVisitor) addAttribute(scope *model.Documentable, name string, annNode, valueNode, node *sitter.Node) *model.Documentable {
	if !scope.Kind.IsModuleLike() && !scope.Kind.IsClassLike() {
		return nil
	}
	if v.isGuarded(scope, name) {
		return nil
	}
	ann := v.annotation(annNode)
	val := v.expr(valueNode)
	kind, ann := v.attributeKind(scope, name, ann, valueNode)

	if existing := scope.Child(name); existing != nil && existing.Kind.IsAttributeLike() {
		if existing.Kind == model.KindConstant && kind == model.KindConstant {
			// Rebinding a constant makes it a variable.
			kind = model.KindVariable
			if scope.Kind.IsClassLike() {
				kind = model.KindClassVariable
			}
		}
		if existing.Kind != model.KindInstanceVariable {
			existing.Kind = kind
		}
		if ann != nil {
			existing.Annotation = ann
		}
		if val != nil {
			existing.Value = val
		}
		return existing
	}

	attr := v.newObject(scope, name, kind, node)
	attr.Annotation = ann
	attr.Value = val
	scope.AddChild(attr)
	return attr
}

var typeVarFactories = map[string]bool{
	"TypeVar": true, "typing.TypeVar": true, "typing_extensions.TypeVar": true,
	"ParamSpec": true, "typing.ParamSpec": true, "typing_extensions.ParamSpec": true,
	"TypeVarTuple": true, "typing.TypeVarTuple": true, "typing_extensions.TypeVarTuple": true,
}

var typeAliasAnnotations = map[string]bool{
	"TypeAlias": true, "typing.TypeAlias": true, "typing_extensions.TypeAlias": true,
}

// attributeKind decides the kind of an assigned name. It also unwraps
// Final[T] annotations to T.
func (v *moduleVisitor) attributeKind(scope *model.Documentable, name string, ann *model.Expr, valueNode *sitter.Node) (model.Kind, *model.Expr) {
	if ann != nil && typeAliasAnnotations[strings.TrimSpace(ann.Source)] {
		return model.KindTypeAlias, ann
	}
	if valueNode != nil && valueNode.Kind() == "call" &&
		typeVarFactories[compactText(valueNode.ChildByFieldName("function"), v.source)] {
		return model.KindTypeVariable, ann
	}

	final := false
	if ann != nil {
		src := strings.TrimSpace(ann.Source)
		for _, prefix := range []string{"Final", "typing.Final", "typing_extensions.Final"} {
			if src == prefix {
				final, ann = true, nil
				break
			}
			if strings.HasPrefix(src, prefix+"[") && strings.HasSuffix(src, "]") {
				final = true
				ann = model.NewExpr(src[len(prefix)+1 : len(src)-1])
				break
			}
		}
	}

	hasValue := valueNode != nil
	if scope.Kind.IsClassLike() {
		switch {
		case hasValue && (final || isConstantName(name)):
			return model.KindConstant, ann
		case ann != nil && isClassVarAnnotation(ann.Source):
			return model.KindClassVariable, ann
		case !hasValue && ann != nil:
			return model.KindInstanceVariable, ann
		default:
			return model.KindClassVariable, ann
		}
	}

	if hasValue && (final || isConstantName(name)) {
		return model.KindConstant, ann
	}
	return model.KindVariable, ann
}

func isClassVarAnnotation(src string) bool {
	src = strings.TrimSpace(src)
	for _, prefix := range []string{"ClassVar", "typing.ClassVar"} {
		if src == prefix || strings.HasPrefix(src, prefix+"[") {
			return true
		}
	}
	return false
}

// isConstantName checks if a name follows Python constant naming convention (ALL_CAPS).
func isConstantName(name string) bool {
	hasUpper := false
	for _, ch := range name {
		if ch >= 'a' && ch <= 'z' {
			return false
		}
		if ch >= 'A' && ch <= 'Z' {
			hasUpper = true
		}
	}
	return hasUpper
}

func (v *moduleVisitor) visitTypeAlias(scope *model.Documentable, node, next *sitter.Node) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil {
		return
	}
	name := v.text(left)
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if v.isGuarded(scope, name) {
		return
	}

	alias := v.newObject(scope, name, model.KindTypeAlias, node)
	alias.Value = v.expr(right)
	if doc, ok := v.docstringOf(next); ok {
		alias.SetDocstring(doc)
	}
	scope.AddChild(alias)
}

// visitInstanceVariables documents "self.x = ..." assignments made directly
// in the body of __init__.
func (v *moduleVisitor) visitInstanceVariables(cls *model.Documentable, node *sitter.Node, init *model.Documentable) {
	if len(init.Signature.Parameters) == 0 {
		return
	}
	self := init.Signature.Parameters[0].Name

	stmts := namedChildren(node.ChildByFieldName("body"))
	for i, stmt := range stmts {
		if stmt.Kind() != "expression_statement" {
			continue
		}
		assign := stmt.NamedChild(0)
		if assign == nil || assign.Kind() != "assignment" {
			continue
		}
		left := assign.ChildByFieldName("left")
		if left == nil || left.Kind() != "attribute" {
			continue
		}
		obj := left.ChildByFieldName("object")
		if obj == nil || obj.Kind() != "identifier" || v.text(obj) != self {
			continue
		}
		name := v.text(left.ChildByFieldName("attribute"))
		if name == "" {
			continue
		}
		ann := v.annotation(assign.ChildByFieldName("type"))
		val := v.expr(assign.ChildByFieldName("right"))

		var next *sitter.Node
		if i+1 < len(stmts) {
			next = stmts[i+1]
		}
		doc, hasDoc := v.docstringOf(next)

		attr := cls.Child(name)
		switch {
		case attr == nil:
			attr = v.newObject(cls, name, model.KindInstanceVariable, assign)
			attr.Value = val
			cls.AddChild(attr)
		case attr.Kind.IsAttributeLike():
			attr.Kind = model.KindInstanceVariable
			if attr.Value == nil {
				attr.Value = val
			}
		default:
			continue
		}
		if ann != nil {
			attr.Annotation = ann
		}
		if hasDoc {
			attr.SetDocstring(doc)
		}
	}
}

func (v *moduleVisitor) visitImport(stmt *sitter.Node) {
	if stmt.Kind() == "import_statement" {
		for _, n := range childrenByField(stmt, "name") {
			switch n.Kind() {
			case "dotted_name":
				full := v.text(n)
				first, _, _ := strings.Cut(full, ".")
				v.bindImport(first, first)
			case "aliased_import":
				v.bindImport(v.text(n.ChildByFieldName("alias")), v.text(n.ChildByFieldName("name")))
			}
		}
		return
	}

	base := v.importBase(stmt.ChildByFieldName("module_name"))
	if base == "" {
		return
	}
	for _, n := range childrenByField(stmt, "name") {
		switch n.Kind() {
		case "dotted_name":
			v.bindImport(v.text(n), base+"."+v.text(n))
		case "aliased_import":
			v.bindImport(v.text(n.ChildByFieldName("alias")), base+"."+v.text(n.ChildByFieldName("name")))
		}
	}
}

func (v *moduleVisitor) bindImport(local, full string) {
	if v.isGuarded(v.module, local) {
		return
	}
	v.imports[local] = full
}

// importBase resolves the module part of a from-import, including relative imports.
func (v *moduleVisitor) importBase(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind() != "relative_import" {
		return v.text(n)
	}

	dots := len(v.text(findChildByType(n, "import_prefix")))
	rest := v.text(findChildByType(n, "dotted_name"))

	pkg := v.module
	if pkg.Kind == model.KindModule {
		pkg = pkg.Parent
	}
	for i := 1; i < dots && pkg != nil; i++ {
		pkg = pkg.Parent
	}
	if pkg == nil {
		return ""
	}
	if rest == "" {
		return pkg.FullName
	}
	return pkg.FullName + "." + rest
}
