package imports

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/projsys/observability"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader(16, nil)
	require.NoError(t, err)
	return l
}

// layout creates a project with explicit, conditional, wildcard and
// implicit imports.
func layout(t *testing.T) (root, project string) {
	root = t.TempDir()
	project = filepath.Join(root, "src", "App", "App.csproj")

	writeFile(t, project, `<Project Sdk="Microsoft.NET.Sdk">
  <Import Project="build\Common.props" />
  <ImportGroup>
    <Import Project="$(MSBuildThisFileDirectory)build\Extra.targets" Condition="Exists('$(MSBuildProjectDirectory)\build\Extra.targets')" />
    <Import Project="build\Missing.props" />
    <Import Project="build\Optional.props" Condition="!Exists('build\Optional.props')" />
  </ImportGroup>
  <Import Project="$(UnknownProperty)\x.props" />
  <Import Project="$(MSBuildProjectExtensionsPath)$(MSBuildProjectFile).*.targets" />
</Project>`)
	writeFile(t, filepath.Join(root, "src", "App", "build", "Common.props"), `<Project>
  <Import Project="Shared.props" />
</Project>`)
	writeFile(t, filepath.Join(root, "src", "App", "build", "Shared.props"), `<Project />`)
	writeFile(t, filepath.Join(root, "src", "App", "build", "Extra.targets"), `<Project />`)
	writeFile(t, filepath.Join(root, "src", "App", "build", "Optional.props"), `<Project />`)
	writeFile(t, filepath.Join(root, "Directory.Build.props"), `<Project />`)
	writeFile(t, filepath.Join(root, "src", "Directory.Build.targets"), `<Project />`)
	writeFile(t, filepath.Join(root, "src", "App", "obj", "App.csproj.nuget.g.props"), `<Project />`)
	writeFile(t, filepath.Join(root, "src", "App", "obj", "App.csproj.nuget.g.targets"), `<Project />`)
	writeFile(t, filepath.Join(root, "src", "App", "obj", "App.csproj.EntityFramework.targets"), `<Project />`)
	return root, project
}

func TestLoader_Load(t *testing.T) {
	root, project := layout(t)
	app := filepath.Join(root, "src", "App")
	obj := filepath.Join(app, "obj")

	s, err := newTestLoader(t).Load(context.Background(), project)
	require.NoError(t, err)

	assert.Equal(t, project, s.ProjectPath)
	assert.Equal(t, obj, s.ProjectExtensionsPath)
	assert.Equal(t, []string{
		filepath.Join(root, "Directory.Build.props"),
		filepath.Join(obj, "App.csproj.nuget.g.props"),
		filepath.Join(app, "build", "Common.props"),
		filepath.Join(app, "build", "Extra.targets"),
		filepath.Join(obj, "App.csproj.EntityFramework.targets"),
		filepath.Join(obj, "App.csproj.nuget.g.targets"),
		filepath.Join(root, "src", "Directory.Build.targets"),
	}, s.Children(project))
	assert.Equal(t, []string{filepath.Join(app, "build", "Shared.props")},
		s.Children(filepath.Join(app, "build", "Common.props")))
	assert.NoError(t, s.Validate())
}

func TestLoader_Cycle(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "Loop.csproj")
	writeFile(t, project, `<Project><Import Project="a.props" /></Project>`)
	writeFile(t, filepath.Join(dir, "a.props"), `<Project><Import Project="b.props" /></Project>`)
	writeFile(t, filepath.Join(dir, "b.props"), `<Project><Import Project="a.props" /></Project>`)

	_, err := newTestLoader(t).Load(context.Background(), project)
	require.ErrorIs(t, err, ErrImportCycle)
	assert.Contains(t, err.Error(), "a.props -> ")
}

func TestLoader_DiamondIsNotACycle(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "D.csproj")
	writeFile(t, project, `<Project><Import Project="a.props" /><Import Project="b.props" /></Project>`)
	writeFile(t, filepath.Join(dir, "a.props"), `<Project><Import Project="shared.props" /></Project>`)
	writeFile(t, filepath.Join(dir, "b.props"), `<Project><Import Project="shared.props" /></Project>`)
	writeFile(t, filepath.Join(dir, "shared.props"), `<Project />`)

	s, err := newTestLoader(t).Load(context.Background(), project)
	require.NoError(t, err)
	shared := filepath.Join(dir, "shared.props")
	assert.Equal(t, []string{shared}, s.Children(filepath.Join(dir, "a.props")))
	assert.Equal(t, []string{shared}, s.Children(filepath.Join(dir, "b.props")))
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	l := newTestLoader(t)

	_, err := l.Load(context.Background(), filepath.Join(dir, "missing.csproj"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "Bad.csproj")
	writeFile(t, bad, `<Project><Import Project="x.props"`)
	_, err = l.Load(context.Background(), bad)
	assert.Error(t, err)

	notProject := filepath.Join(dir, "Other.csproj")
	writeFile(t, notProject, `<Solution />`)
	_, err = l.Load(context.Background(), notProject)
	assert.ErrorContains(t, err, "expected <Project>")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	good := filepath.Join(dir, "Good.csproj")
	writeFile(t, good, `<Project />`)
	_, err = l.Load(ctx, good)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_CachesByModificationTime(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "C.csproj")
	writeFile(t, project, `<Project />`)
	l := newTestLoader(t)

	hits := func() float64 {
		v, err := observability.GetCounterValue(observability.ImportCacheLookupsTotal, "hit")
		require.NoError(t, err)
		return v
	}

	s1, err := l.Load(context.Background(), project)
	require.NoError(t, err)
	before := hits()

	s2, err := l.Load(context.Background(), project)
	require.NoError(t, err)
	assert.Equal(t, before+1, hits())
	assert.Greater(t, s2.Version, s1.Version)
	assert.Equal(t, 1, l.CacheLen())

	writeFile(t, filepath.Join(dir, "new.props"), `<Project />`)
	writeFile(t, project, `<Project><Import Project="new.props" /></Project>`)
	later := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(project, later, later))

	s3, err := l.Load(context.Background(), project)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "new.props")}, s3.Children(project))
}

func TestFindProjectFile(t *testing.T) {
	dir := t.TempDir()
	_, err := FindProjectFile(dir)
	assert.ErrorContains(t, err, "no project file")

	writeFile(t, filepath.Join(dir, "A.csproj"), `<Project />`)
	path, err := FindProjectFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "A.csproj"), path)

	writeFile(t, filepath.Join(dir, "B.vbproj"), `<Project />`)
	_, err = FindProjectFile(dir)
	assert.ErrorContains(t, err, "multiple project files")
}
