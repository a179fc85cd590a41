package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/pydocjson/internal/model"
)

const builtinsPrefix = "builtins."

var builtinExceptions = []string{
	"BaseException", "BaseExceptionGroup", "Exception", "ExceptionGroup",
	"ArithmeticError", "AssertionError", "AttributeError", "BlockingIOError",
	"BrokenPipeError", "BufferError", "ChildProcessError", "ConnectionAbortedError",
	"ConnectionError", "ConnectionRefusedError", "ConnectionResetError",
	"EOFError", "EnvironmentError", "FileExistsError", "FileNotFoundError",
	"FloatingPointError", "GeneratorExit", "IOError", "ImportError",
	"IndentationError", "IndexError", "InterruptedError", "IsADirectoryError",
	"KeyError", "KeyboardInterrupt", "LookupError", "MemoryError",
	"ModuleNotFoundError", "NameError", "NotADirectoryError", "NotImplementedError",
	"OSError", "OverflowError", "PermissionError", "ProcessLookupError",
	"RecursionError", "ReferenceError", "RuntimeError", "StopAsyncIteration",
	"StopIteration", "SyntaxError", "SystemError", "SystemExit", "TabError",
	"TimeoutError", "TypeError", "UnboundLocalError", "UnicodeDecodeError",
	"UnicodeEncodeError", "UnicodeError", "UnicodeTranslateError", "ValueError",
	"ZeroDivisionError",
	"Warning", "BytesWarning", "DeprecationWarning", "EncodingWarning",
	"FutureWarning", "ImportWarning", "PendingDeprecationWarning",
	"ResourceWarning", "RuntimeWarning", "SyntaxWarning", "UnicodeWarning",
	"UserWarning",
}

var builtinExceptionSet = func() map[string]bool {
	m := make(map[string]bool, len(builtinExceptions))
	for _, name := range builtinExceptions {
		m[name] = true
	}
	return m
}()

// classHierarchy links classes to their resolved bases.
type classHierarchy struct {
	sys     *model.System
	imports map[string]map[string]string
	g       graph.Graph[string, string]
	log     *logrus.Logger
}

func newClassHierarchy(sys *model.System, imports map[string]map[string]string, log *logrus.Logger) *classHierarchy {
	return &classHierarchy{
		sys:     sys,
		imports: imports,
		g:       graph.New(graph.StringHash, graph.Directed()),
		log:     log,
	}
}

// build adds every class and every builtin exception as a vertex and an edge
// from each class to each base that could be resolved.
func (h *classHierarchy) build() error {
	for _, name := range builtinExceptions {
		if err := h.g.AddVertex(builtinsPrefix + name); err != nil {
			return fmt.Errorf("failed to add builtin %s: %w", name, err)
		}
	}

	var classes []*model.Documentable
	for _, o := range h.sys.AllObjects() {
		if o.Kind.IsClassLike() {
			classes = append(classes, o)
			if err := h.g.AddVertex(o.FullName); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
				return fmt.Errorf("failed to add class %s: %w", o.FullName, err)
			}
		}
	}

	for _, cls := range classes {
		for _, base := range cls.Bases {
			target, ok := h.resolveBase(cls, base)
			if !ok {
				h.log.WithFields(logrus.Fields{
					"class": cls.FullName,
					"base":  base,
				}).Debug("Unresolved base class")
				continue
			}
			err := h.g.AddEdge(cls.FullName, target)
			if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return fmt.Errorf("failed to link %s to %s: %w", cls.FullName, target, err)
			}
		}
	}
	return nil
}

// markExceptions turns every class that inherits from a builtin exception
// into an EXCEPTION.
func (h *classHierarchy) markExceptions() error {
	for _, o := range h.sys.AllObjects() {
		if !o.Kind.IsClassLike() {
			continue
		}
		isException := false
		err := graph.DFS(h.g, o.FullName, func(v string) bool {
			if strings.HasPrefix(v, builtinsPrefix) {
				isException = true
			}
			return isException
		})
		if err != nil {
			return fmt.Errorf("failed to walk bases of %s: %w", o.FullName, err)
		}
		if isException {
			o.Kind = model.KindException
		}
	}
	return nil
}

// resolveBase maps a base expression to a vertex: a class in the enclosing
// scopes, an imported name, a full name, or a builtin exception.
func (h *classHierarchy) resolveBase(cls *model.Documentable, base string) (string, bool) {
	if i := strings.IndexByte(base, '['); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(base)
	if base == "" {
		return "", false
	}

	for scope := cls.Parent; scope != nil; scope = scope.Parent {
		if h.isClass(scope.FullName + "." + base) {
			return scope.FullName + "." + base, true
		}
		if scope.Kind.IsModuleLike() {
			break
		}
	}

	if mod := cls.Module(); mod != nil {
		first, rest, dotted := strings.Cut(base, ".")
		if target, ok := h.imports[mod.FullName][first]; ok {
			expanded := target
			if dotted {
				expanded += "." + rest
			}
			if h.isClass(expanded) {
				return expanded, true
			}
			base = expanded
		}
	}

	if h.isClass(base) {
		return base, true
	}

	name := strings.TrimPrefix(base, builtinsPrefix)
	if builtinExceptionSet[name] {
		return builtinsPrefix + name, true
	}
	return "", false
}

func (h *classHierarchy) isClass(fullName string) bool {
	o := h.sys.ObjectByName(fullName)
	return o != nil && o.Kind.IsClassLike()
}
