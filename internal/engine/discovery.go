package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/pydocjson/internal/model"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// root matches paths at the source root for "**/"-prefixed patterns.
	root glob.Glob
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	var out []compiledPattern
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if strings.HasPrefix(pattern, "**/") {
			if rg, err := glob.Compile(strings.TrimPrefix(pattern, "**/"), '/'); err == nil {
				cp.root = rg
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// moduleSource is a discovered module waiting to be parsed.
type moduleSource struct {
	obj  *model.Documentable
	path string
}

// sourceDiscovery walks source paths and creates the package and module
// skeleton of the system.
type sourceDiscovery struct {
	include []compiledPattern
	ignore  []compiledPattern
	log     *logrus.Logger
}

func newSourceDiscovery(include, ignore []string, log *logrus.Logger) (*sourceDiscovery, error) {
	sd := &sourceDiscovery{log: log}
	var err error
	if sd.include, err = compilePatterns(include); err != nil {
		return nil, err
	}
	if sd.ignore, err = compilePatterns(ignore); err != nil {
		return nil, err
	}
	return sd, nil
}

// discover returns the root object for path along with every module to parse,
// in the order they should be parsed. It returns a nil root when a directory
// holds no Python sources.
func (sd *sourceDiscovery) discover(ctx context.Context, path string) (*model.Documentable, []moduleSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !info.IsDir() {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		mod := model.NewDocumentable(nil, name, model.KindModule)
		mod.Filename = path
		return mod, []moduleSource{{obj: mod, path: path}}, nil
	}

	var sources []moduleSource
	root, err := sd.addPackage(ctx, nil, path, path, &sources)
	if err != nil {
		return nil, nil, err
	}
	return root, sources, nil
}

func (sd *sourceDiscovery) addPackage(ctx context.Context, parent *model.Documentable, rootDir, dir string, sources *[]moduleSource) (*model.Documentable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	initPath := filepath.Join(dir, "__init__.py")
	kind := model.KindNamespacePackage
	if st, err := os.Stat(initPath); err == nil && !st.IsDir() {
		kind = model.KindPackage
	}

	pkg := model.NewDocumentable(parent, filepath.Base(dir), kind)
	pkg.Filename = dir

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		rel, err := filepath.Rel(rootDir, full)
		if err != nil {
			return nil, err
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if sd.shouldIgnore(rel) {
				sd.log.WithField("dir", rel).Debug("Ignoring directory")
				continue
			}
			if !isIdentifier(entry.Name()) {
				continue
			}
			sub, err := sd.addPackage(ctx, pkg, rootDir, full, sources)
			if err != nil {
				return nil, err
			}
			if sub != nil {
				pkg.AddChild(sub)
			}
			continue
		}

		if entry.Name() == "__init__.py" || filepath.Ext(entry.Name()) != ".py" {
			continue
		}
		if sd.shouldIgnore(rel) || !sd.matchesAnyPattern(rel, sd.include) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".py")
		if !isIdentifier(name) {
			sd.log.WithField("file", rel).Debug("Skipping module with invalid name")
			continue
		}
		mod := model.NewDocumentable(pkg, name, model.KindModule)
		mod.Filename = full
		pkg.AddChild(mod)
		*sources = append(*sources, moduleSource{obj: mod, path: full})
	}

	if kind == model.KindPackage {
		*sources = append(*sources, moduleSource{obj: pkg, path: initPath})
		return pkg, nil
	}
	if len(pkg.Contents()) == 0 {
		return nil, nil
	}
	return pkg, nil
}

// shouldIgnore checks if a path matches any ignore pattern.
func (sd *sourceDiscovery) shouldIgnore(relPath string) bool {
	if sd.matchesAnyPattern(relPath, sd.ignore) {
		return true
	}
	// A directory "build" should match pattern "build/**".
	return sd.matchesAnyPattern(relPath+"/**", sd.ignore)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
// "**/x" patterns also match "x" at the source root.
func (sd *sourceDiscovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if cp.root != nil && cp.root.Match(path) {
			return true
		}
	}
	return false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127 {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}
