package dependencies

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/projsys/tree"
)

func library(t *testing.T, s *Snapshot, name string) *Library {
	t.Helper()
	target, err := s.Target(net80)
	require.NoError(t, err)
	lib, ok := target.Library(name)
	require.True(t, ok, name)
	return lib
}

func keys[C Item](items []C) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key()
	}
	return out
}

func captions[C Item](items []C) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Caption()
	}
	return out
}

func TestPackageToPackage(t *testing.T) {
	s := loadFixture(t)
	logging := NewPackageItem(s, net80, library(t, s, "Microsoft.Extensions.Logging"))
	abstractions := NewPackageItem(s, net80, library(t, s, "Microsoft.Extensions.Logging.Abstractions"))

	assert.True(t, PackageToPackage.HasContainedItems(s, net80, logging))
	assert.False(t, PackageToPackage.HasContainedItems(s, net80, abstractions))
	assert.False(t, PackageToPackage.HasContainedItems(s, "net472", logging))

	children, changed, err := PackageToPackage.UpdateContainsCollection(s, net80, logging, nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"Microsoft.Extensions.Logging.Abstractions", "Microsoft.Extensions.Options"}, keys(children))
	assert.Equal(t, "Microsoft.Extensions.Options (8.0.0)", children[1].Caption())

	parents := PackageToPackage.CreateContainedByItems(s, net80, abstractions)
	assert.Equal(t, []string{"Microsoft.Extensions.Logging", "Microsoft.Extensions.Options"}, keys(parents))
}

func TestUpdateContainsCollection_Idempotent(t *testing.T) {
	s := loadFixture(t)
	logging := NewPackageItem(s, net80, library(t, s, "Microsoft.Extensions.Logging"))

	first, _, err := PackageToPackage.UpdateContainsCollection(s, net80, logging, nil)
	require.NoError(t, err)

	second, changed, err := PackageToPackage.UpdateContainsCollection(s, net80, logging, first)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, &first[0], &second[0])
}

func TestUpdateContainsCollection_PreservesIdentity(t *testing.T) {
	s := loadFixture(t)
	logging := NewPackageItem(s, net80, library(t, s, "Microsoft.Extensions.Logging"))
	first, _, err := PackageToPackage.UpdateContainsCollection(s, net80, logging, nil)
	require.NoError(t, err)
	abstractions := first[0]

	next := loadFixture(t)
	target, _ := next.Target(net80)
	target.libraries["microsoft.extensions.primitives"] = &Library{
		Name: "Microsoft.Extensions.Primitives", Version: "8.0.0", Type: TypePackage,
	}
	target.names = append(target.names, "Microsoft.Extensions.Primitives")
	library(t, next, "Microsoft.Extensions.Logging").Dependencies = []string{
		"Microsoft.Extensions.Logging.Abstractions",
		"Microsoft.Extensions.Primitives",
	}

	second, changed, err := PackageToPackage.UpdateContainsCollection(next, net80, logging, first)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"Microsoft.Extensions.Logging.Abstractions", "Microsoft.Extensions.Primitives"}, keys(second))
	assert.Same(t, abstractions, second[0])
}

func TestUpdateContainsCollection_ReplacesChangedItems(t *testing.T) {
	s := loadFixture(t)
	logging := NewPackageItem(s, net80, library(t, s, "Microsoft.Extensions.Logging"))
	first, _, err := PackageToPackage.UpdateContainsCollection(s, net80, logging, nil)
	require.NoError(t, err)
	abstractions, options := first[0], first[1]

	next := loadFixture(t)
	library(t, next, "Microsoft.Extensions.Options").Version = "8.0.1"

	second, changed, err := PackageToPackage.UpdateContainsCollection(next, net80, logging, first)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Same(t, abstractions, second[0])
	assert.NotSame(t, options, second[1])
	assert.Equal(t, options.Key(), second[1].Key())
	assert.Equal(t, "8.0.1", second[1].Version())
	assert.Equal(t, "8.0.0", options.Version(), "published items are never modified")
	assert.Equal(t, "Microsoft.Extensions.Options (8.0.0)", first[1].Caption())
}

func TestUpdateContainsCollection_MissingTarget(t *testing.T) {
	s := loadFixture(t)
	logging := NewPackageItem(s, net80, library(t, s, "Microsoft.Extensions.Logging"))
	existing := []*PackageItem{logging}

	got, changed, err := PackageToPackage.UpdateContainsCollection(s, "net472", logging, existing)
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.False(t, changed)
	assert.Equal(t, existing, got)
}

func TestPackageAssetRelations(t *testing.T) {
	s := loadFixture(t)
	logging := NewPackageItem(s, net80, library(t, s, "Microsoft.Extensions.Logging"))
	options := NewPackageItem(s, net80, library(t, s, "Microsoft.Extensions.Options"))

	assemblies, _, err := PackageToAssembly.UpdateContainsCollection(s, net80, logging, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Microsoft.Extensions.Logging.dll"}, captions(assemblies))
	assert.False(t, PackageToAssembly.HasContainedItems(s, net80, options))

	owners := PackageToAssembly.CreateContainedByItems(s, net80, assemblies[0])
	assert.Equal(t, []string{"Microsoft.Extensions.Logging"}, keys(owners))

	content, _, err := PackageToContentFile.UpdateContainsCollection(s, net80, options, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "options.json"}, captions(content))
	assert.Equal(t, []string{"Microsoft.Extensions.Options"}, keys(PackageToContentFile.CreateContainedByItems(s, net80, content[1])))
}

func TestProjectRelations(t *testing.T) {
	s := loadFixture(t)
	shared := NewProjectItem(s, net80, library(t, s, "Shared"))
	assert.Equal(t, "../Shared/Shared.csproj", shared.Path())

	packages, _, err := ProjectToPackage.UpdateContainsCollection(s, net80, shared, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Microsoft.Extensions.Options"}, keys(packages))
	assert.Equal(t, []string{"Shared"}, keys(ProjectToPackage.CreateContainedByItems(s, net80, packages[0])))

	projects, _, err := ProjectToProject.UpdateContainsCollection(s, net80, shared, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Utilities"}, keys(projects))
	assert.Equal(t, []string{"Shared"}, keys(ProjectToProject.CreateContainedByItems(s, net80, projects[0])))
}

func TestLibraryToDiagnostic(t *testing.T) {
	s := loadFixture(t)
	logging := NewPackageItem(s, net80, library(t, s, "Microsoft.Extensions.Logging"))

	diags, _, err := LibraryToDiagnostic.UpdateContainsCollection(s, net80, logging, nil)
	require.NoError(t, err)
	require.Len(t, diags, 2)
	assert.True(t, strings.HasPrefix(diags[0].Caption(), "NU1701: A compatibility"), "ordered by message")
	assert.True(t, strings.HasPrefix(diags[1].Caption(), "NU1603: Microsoft.Extensions.Logging 8.0.0"))
	assert.True(t, diags[0].Flags().Contains("DiagnosticWarningNode"))

	parents := LibraryToDiagnostic.CreateContainedByItems(s, net80, diags[0])
	require.Len(t, parents, 1)
	assert.IsType(t, &PackageItem{}, parents[0])

	utilities := NewProjectItem(s, net80, library(t, s, "Utilities"))
	udiags, _, err := LibraryToDiagnostic.UpdateContainsCollection(s, net80, utilities, nil)
	require.NoError(t, err)
	require.Len(t, udiags, 1)
	assert.Equal(t, LevelError, udiags[0].Level())
	assert.IsType(t, &ProjectItem{}, LibraryToDiagnostic.CreateContainedByItems(s, net80, udiags[0])[0])

	next := loadFixture(t)
	next.Logs[2].Level = LevelWarning
	again, changed, err := LibraryToDiagnostic.UpdateContainsCollection(next, net80, utilities, udiags)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, udiags[0].Key(), again[0].Key())
	assert.Equal(t, LevelWarning, again[0].Level())
	assert.True(t, again[0].Flags().Contains(tree.FlagDiagnosticWarningNode))
	assert.Equal(t, LevelError, udiags[0].Level())
}
