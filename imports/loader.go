package imports

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/willibrandon/projsys/observability"
)

// DefaultCacheSize is the number of parsed files a Loader keeps.
const DefaultCacheSize = 256

// importElement is one <Import> element in document order.
type importElement struct {
	Project   string
	Condition string
}

// parsedFile is the cached parse result for one file version.
type parsedFile struct {
	imports []importElement
}

var (
	propertyRef     = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)
	existsCondition = regexp.MustCompile(`^\s*!?\s*Exists\(\s*'([^']*)'\s*\)\s*$`)
)

// Loader builds import snapshots by reading project files from disk.
// Parsed files are cached by path and modification time.
type Loader struct {
	cache   *lru.Cache[string, *parsedFile]
	logger  observability.Logger
	version atomic.Int64
}

// NewLoader creates a loader caching up to cacheSize parsed files.
func NewLoader(cacheSize int, logger observability.Logger) (*Loader, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *parsedFile](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create import cache: %w", err)
	}
	return &Loader{cache: cache, logger: observability.OrNull(logger)}, nil
}

// Load reads the project and every file it imports. Besides explicit
// <Import> elements the graph includes the files MSBuild adds around a
// project: Directory.Build.props and obj/<project>.nuget.g.props first,
// obj/<project>.nuget.g.targets and Directory.Build.targets last. Imports
// whose files do not exist are skipped.
func (l *Loader) Load(ctx context.Context, projectPath string) (*Snapshot, error) {
	projectPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}
	projectDir := filepath.Dir(projectPath)
	extPath := filepath.Join(projectDir, "obj")

	s := &Snapshot{
		Version:               l.version.Add(1),
		ProjectPath:           projectPath,
		ProjectExtensionsPath: extPath,
		Imports:               make(map[string][]string),
	}
	w := &loadWalk{
		ctx:        ctx,
		loader:     l,
		snapshot:   s,
		projectDir: projectDir,
		props: map[string]string{
			"MSBuildProjectDirectory":      projectDir,
			"MSBuildProjectFile":           filepath.Base(projectPath),
			"MSBuildProjectName":           strings.TrimSuffix(filepath.Base(projectPath), filepath.Ext(projectPath)),
			"MSBuildProjectExtensionsPath": extPath + string(filepath.Separator),
		},
		onPath:   make(map[string]bool),
		expanded: make(map[string]bool),
	}
	if err := w.visit(projectPath, true); err != nil {
		return nil, err
	}
	l.logger.Debug("Loaded {Count} files for {Project}", len(s.Files()), projectPath)
	return s, nil
}

type loadWalk struct {
	ctx        context.Context
	loader     *Loader
	snapshot   *Snapshot
	projectDir string
	props      map[string]string

	onPath   map[string]bool
	stack    []string
	expanded map[string]bool
}

func (w *loadWalk) visit(path string, isProject bool) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	if w.onPath[path] {
		return &CycleError{Path: append(append([]string(nil), w.stack...), path)}
	}
	if w.expanded[path] {
		return nil
	}

	parsed, err := w.loader.parse(path)
	if err != nil {
		return err
	}

	var children []string
	if isProject {
		children = append(children, w.implicitBefore()...)
	}
	for _, imp := range parsed.imports {
		children = append(children, w.resolve(path, imp)...)
	}
	if isProject {
		children = append(children, w.implicitAfter()...)
	}
	children = dedupe(children)

	w.onPath[path] = true
	w.stack = append(w.stack, path)
	for _, child := range children {
		if err := w.visit(child, false); err != nil {
			return err
		}
	}
	w.stack = w.stack[:len(w.stack)-1]
	delete(w.onPath, path)
	w.expanded[path] = true

	if len(children) > 0 {
		w.snapshot.Imports[path] = children
	}
	return nil
}

func (w *loadWalk) implicitBefore() []string {
	var files []string
	if f, ok := findUp(w.projectDir, "Directory.Build.props"); ok {
		files = append(files, f)
	}
	return append(files, w.nugetFile(".nuget.g.props")...)
}

func (w *loadWalk) implicitAfter() []string {
	files := w.nugetFile(".nuget.g.targets")
	if f, ok := findUp(w.projectDir, "Directory.Build.targets"); ok {
		files = append(files, f)
	}
	return files
}

func (w *loadWalk) nugetFile(suffix string) []string {
	f := filepath.Join(w.snapshot.ProjectExtensionsPath, w.props["MSBuildProjectFile"]+suffix)
	if fileExists(f) {
		return []string{f}
	}
	return nil
}

// resolve expands an <Import> element of file into existing paths.
func (w *loadWalk) resolve(file string, imp importElement) []string {
	dir := filepath.Dir(file)
	expand := func(text string) (string, bool) {
		ok := true
		out := propertyRef.ReplaceAllStringFunc(text, func(ref string) string {
			name := propertyRef.FindStringSubmatch(ref)[1]
			switch name {
			case "MSBuildThisFileDirectory":
				return dir + string(filepath.Separator)
			case "MSBuildThisFile":
				return filepath.Base(file)
			}
			if v, found := w.props[name]; found {
				return v
			}
			ok = false
			return ref
		})
		return out, ok
	}

	project, ok := expand(imp.Project)
	if !ok {
		w.loader.logger.Debug("Skipping import {Import} in {File}: unknown property", imp.Project, file)
		return nil
	}
	if strings.Contains(project, "$(") {
		w.loader.logger.Debug("Skipping import {Import} in {File}: unsupported expression", imp.Project, file)
		return nil
	}
	project = strings.ReplaceAll(project, `\`, string(filepath.Separator))
	if !filepath.IsAbs(project) {
		project = filepath.Join(dir, project)
	}
	project = filepath.Clean(project)

	if m := existsCondition.FindStringSubmatch(imp.Condition); m != nil {
		target, ok := expand(m[1])
		if ok {
			target = strings.ReplaceAll(target, `\`, string(filepath.Separator))
			if !filepath.IsAbs(target) {
				target = filepath.Join(dir, target)
			}
			negated := strings.HasPrefix(strings.TrimSpace(imp.Condition), "!")
			if fileExists(target) == negated {
				return nil
			}
		}
	}

	if strings.ContainsAny(project, "*?") {
		matches, err := filepath.Glob(project)
		if err != nil {
			w.loader.logger.Warn("Invalid import pattern {Pattern} in {File}: {Error}", project, file, err)
			return nil
		}
		sort.Strings(matches)
		return matches
	}
	if !fileExists(project) {
		w.loader.logger.Debug("Skipping missing import {Import} in {File}", project, file)
		return nil
	}
	return []string{project}
}

// parse returns the <Import> elements of path, using the cache when the
// file has not changed.
func (l *Loader) parse(path string) (*parsedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import %s: %w", path, err)
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.ModTime().UnixNano(), info.Size())
	if pf, ok := l.cache.Get(key); ok {
		observability.ImportCacheLookupsTotal.WithLabelValues("hit").Inc()
		return pf, nil
	}
	observability.ImportCacheLookupsTotal.WithLabelValues("miss").Inc()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import %s: %w", path, err)
	}
	defer f.Close()

	imports, err := readImports(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	pf := &parsedFile{imports: imports}
	l.cache.Add(key, pf)
	return pf, nil
}

// CacheLen returns the number of cached files.
func (l *Loader) CacheLen() int {
	return l.cache.Len()
}

// readImports collects <Import> elements, including those inside
// <ImportGroup>, in document order.
func readImports(r io.Reader) ([]importElement, error) {
	dec := xml.NewDecoder(r)
	var imports []importElement
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			if start.Name.Local != "Project" {
				return nil, fmt.Errorf("root element is <%s>, expected <Project>", start.Name.Local)
			}
			sawRoot = true
			continue
		}
		if start.Name.Local != "Import" {
			continue
		}
		var imp importElement
		for _, a := range start.Attr {
			switch a.Name.Local {
			case "Project":
				imp.Project = a.Value
			case "Condition":
				imp.Condition = a.Value
			}
		}
		if imp.Project != "" {
			imports = append(imports, imp)
		}
	}
	if !sawRoot {
		return nil, errors.New("no <Project> element")
	}
	return imports, nil
}

// dedupe drops repeated imports, keeping the first. MSBuild ignores a
// file imported twice by the same file.
func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// findUp looks for name in dir and its ancestors.
func findUp(dir, name string) (string, bool) {
	for {
		candidate := filepath.Join(dir, name)
		if fileExists(candidate) {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FindProjectFile returns the single .csproj, .fsproj or .vbproj file in dir.
func FindProjectFile(dir string) (string, error) {
	var all []string
	for _, pattern := range []string{"*.csproj", "*.fsproj", "*.vbproj"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return "", err
		}
		all = append(all, matches...)
	}

	if len(all) == 0 {
		return "", fmt.Errorf("no project file found in directory: %s", dir)
	}
	if len(all) > 1 {
		return "", fmt.Errorf("multiple project files found in directory: %s. Specify which project to use", dir)
	}
	return all[0], nil
}
