package dependencies

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/projsys/tree"
)

func TestView_Refresh(t *testing.T) {
	s := loadFixture(t)
	v := NewView(net80, nil)
	require.NoError(t, v.Refresh(context.Background(), s))

	top := v.TopLevel()
	require.Len(t, top, 2)
	assert.Equal(t, "Microsoft.Extensions.Logging", top[0].LibraryName())
	assert.IsType(t, &PackageItem{}, top[0])
	assert.IsType(t, &ProjectItem{}, top[1])

	assert.Equal(t, []string{
		"Microsoft.Extensions.Logging.Abstractions (8.0.0)",
		"Microsoft.Extensions.Options (8.0.0)",
		"Microsoft.Extensions.Logging.dll",
		"NU1701: A compatibility fallback was used for Microsoft.Extensions.Logging.",
		"NU1603: Microsoft.Extensions.Logging 8.0.0 depends on Microsoft.Extensions.Options (>= 8.0.0) but 8.0.1 was not found.",
	}, captions(v.Children(top[0])))
	assert.Equal(t, []string{
		"Utilities",
		"Microsoft.Extensions.Options (8.0.0)",
	}, captions(v.Children(top[1])))
}

func TestView_PreservesIdentity(t *testing.T) {
	v := NewView(net80, nil)
	require.NoError(t, v.Refresh(context.Background(), loadFixture(t)))
	top := v.TopLevel()
	children := v.Children(top[0])

	next := loadFixture(t)
	library(t, next, "Microsoft.Extensions.Logging").Version = "8.0.1"
	require.NoError(t, v.Refresh(context.Background(), next))

	again := v.TopLevel()
	assert.Equal(t, top[0].Key(), again[0].Key())
	assert.Equal(t, "Microsoft.Extensions.Logging (8.0.1)", again[0].Caption())
	assert.Equal(t, "Microsoft.Extensions.Logging (8.0.0)", top[0].Caption())
	assert.Same(t, top[1], again[1])
	assert.Same(t, children[0], v.Children(again[0])[0])
}

func TestView_ProjectBecomesPackage(t *testing.T) {
	v := NewView(net80, nil)
	require.NoError(t, v.Refresh(context.Background(), loadFixture(t)))

	next := loadFixture(t)
	library(t, next, "Shared").Type = TypePackage
	require.NoError(t, v.Refresh(context.Background(), next))

	assert.IsType(t, &PackageItem{}, v.TopLevel()[1])
}

func TestView_FailedRefreshLeavesView(t *testing.T) {
	v := NewView(net80, nil)
	require.NoError(t, v.Refresh(context.Background(), loadFixture(t)))
	before := v.TopLevel()
	logging := before[0].(*PackageItem)
	diags := v.Children(logging)[3:]
	require.Len(t, diags, 2)

	next := loadFixture(t)
	library(t, next, "Microsoft.Extensions.Logging").Version = "9.9.9"
	for i := range next.Logs {
		next.Logs[i].Level = LevelError
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, v.Refresh(ctx, next), context.Canceled)

	after := v.TopLevel()
	require.Len(t, after, 2)
	assert.Same(t, before[0], after[0])
	assert.Same(t, before[1], after[1])
	assert.Equal(t, "Microsoft.Extensions.Logging (8.0.0)", after[0].Caption())
	assert.Equal(t, "8.0.0", logging.Version())
	assert.True(t, logging.Flags().Contains(tree.FlagDiagnosticWarningNode))
	assert.False(t, logging.Flags().Contains(tree.FlagDiagnosticErrorNode))
	assert.False(t, after[1].Flags().Contains(tree.FlagDiagnosticErrorNode))
	for _, d := range diags {
		assert.Equal(t, LevelWarning, d.(*DiagnosticItem).Level())
	}
	assert.Equal(t, diags, v.Children(logging)[3:])

	assert.ErrorIs(t, NewView("net472", nil).Refresh(context.Background(), next), ErrTargetNotFound)
}

func TestView_TreeReusesNodes(t *testing.T) {
	s := loadFixture(t)
	v := NewView(net80, nil)
	require.NoError(t, v.Refresh(context.Background(), s))
	first := v.Tree()

	require.NoError(t, v.Refresh(context.Background(), s))
	second := v.Tree()
	assert.Same(t, first, second)
	require.Equal(t, first.ChildCount(), second.ChildCount())
	for i := range first.ChildCount() {
		assert.Same(t, first.Child(i), second.Child(i))
		for j := range first.Child(i).ChildCount() {
			assert.Same(t, first.Child(i).Child(j), second.Child(i).Child(j))
		}
	}
}

func TestView_TreeKeepsIdentityOnChange(t *testing.T) {
	v := NewView(net80, nil)
	require.NoError(t, v.Refresh(context.Background(), loadFixture(t)))
	first := v.Tree()

	next := loadFixture(t)
	library(t, next, "Microsoft.Extensions.Logging").Version = "8.0.1"
	require.NoError(t, v.Refresh(context.Background(), next))
	second := v.Tree()

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Identity(), second.Identity())

	logging, updated := first.Child(0), second.Child(0)
	assert.NotSame(t, logging, updated)
	assert.Equal(t, logging.Identity(), updated.Identity())
	assert.Equal(t, "Microsoft.Extensions.Logging (8.0.1)", updated.Caption())
	assert.Equal(t, "Microsoft.Extensions.Logging (8.0.0)", logging.Caption())
	assert.Same(t, logging.Child(0), updated.Child(0))
	assert.Same(t, first.Child(1), second.Child(1))
}

func TestView_Tree(t *testing.T) {
	v := NewView(net80, nil)
	require.NoError(t, v.Refresh(context.Background(), loadFixture(t)))

	want := strings.Join([]string{
		"net8.0 (flags: {Dependency})",
		"    Microsoft.Extensions.Logging (8.0.0) (flags: {Dependency DiagnosticWarningNode Package})",
		"        Microsoft.Extensions.Logging.Abstractions (8.0.0) (flags: {Dependency Package})",
		"        Microsoft.Extensions.Options (8.0.0) (flags: {Dependency Package})",
		"        Microsoft.Extensions.Logging.dll (flags: {Assembly Reference})",
		"        NU1701: A compatibility fallback was used for Microsoft.Extensions.Logging. (flags: {Diagnostic DiagnosticWarningNode})",
		"        NU1603: Microsoft.Extensions.Logging 8.0.0 depends on Microsoft.Extensions.Options (>= 8.0.0) but 8.0.1 was not found. (flags: {Diagnostic DiagnosticWarningNode})",
		"    Shared (flags: {Dependency ProjectReference})",
		"        Utilities (flags: {Dependency DiagnosticErrorNode ProjectReference})",
		"        Microsoft.Extensions.Options (8.0.0) (flags: {Dependency Package})",
	}, "\n")
	assert.Equal(t, want, tree.Write(v.Tree(), tree.WriteFlags))
}
