package tree

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_CaptionOnly(t *testing.T) {
	root := New("Root").AddFlag(FlagProjectRoot).Add(New("Child").Add(New("Grandchild")))
	assert.Equal(t, "Root\n    Child\n        Grandchild", Write(root, WriteCaption))
}

func TestWrite_FlagsSortedRegardlessOfInsertionOrder(t *testing.T) {
	a := New("Root").AddFlag("Zeta").AddFlag("alpha").AddFlag("Beta")
	b := New("Root").AddFlag("Beta").AddFlag("Zeta").AddFlag("alpha")

	want := "Root (flags: {alpha Beta Zeta})"
	assert.Equal(t, want, Write(a, WriteFlags))
	assert.Equal(t, want, Write(b, WriteFlags))
}

func TestWrite_AllProperties(t *testing.T) {
	guid := uuid.MustParse("ae27a6b0-e345-4288-96df-5eaf394ee369")
	n := New("Program.cs").
		SetFilePath(`C:\Proj\Program.cs`).
		SetItemType("Compile").
		AddFlag(FlagSourceFile).
		SetIcon(Icon{Guid: guid, ID: 7}).
		SetVisible(false)

	want := `Program.cs (visibility: invisible, flags: {SourceFile}), FilePath: "C:\Proj\Program.cs", ItemType: Compile, ` +
		`Icon: {ae27a6b0-e345-4288-96df-5eaf394ee369 7}, DisplayOrder: 0`
	assert.Equal(t, want, Write(n, WriteAllProperties))
	assert.Equal(t, want, n.String())
}

func TestWriter_Indent(t *testing.T) {
	root := New("Root").Add(New("Child"))
	text := Writer{Indent: "\t"}.Write(root)
	assert.Equal(t, "Root\n\tChild", text)

	parsed, err := Parse(text)
	require.NoError(t, err)
	assert.True(t, Equal(root, parsed))
}

func TestRoundTrip(t *testing.T) {
	fixtures := []string{
		"Root",
		`Root (visibility: visible, flags: {ProjectRoot}), FilePath: "C:\Proj\Proj.csproj", DisplayOrder: 0
    Import (visibility: visible, flags: {ProjectImportsTree}), FilePath: "", DisplayOrder: 1
        Directory.Build.props (visibility: visible, flags: {ProjectImport}), FilePath: "C:\Directory.Build.props", DisplayOrder: 0
        Proj.nuget.g.props (visibility: visible, flags: {ProjectImport ProjectImportImplicit}), FilePath: "C:\Proj\obj\Proj.nuget.g.props", DisplayOrder: 0
    Hidden (visibility: invisible, flags: {}), FilePath: "", DisplayOrder: 0`,
		`Refs (visibility: visible, flags: {Dependency Reference}), FilePath: "", ItemType: PackageReference, SubType: Designer, Icon: {ae27a6b0-e345-4288-96df-5eaf394ee369 1}, ExpandedIcon: {ae27a6b0-e345-4288-96df-5eaf394ee369 2}, DisplayOrder: 5`,
	}

	for _, fixture := range fixtures {
		tree, err := Parse(fixture)
		require.NoError(t, err)

		first := Write(tree, WriteAllProperties)
		reparsed, err := Parse(first)
		require.NoError(t, err)
		assert.True(t, Equal(tree, reparsed))
		assert.Equal(t, first, Write(reparsed, WriteAllProperties))
	}
}

func TestRoundTrip_ExactText(t *testing.T) {
	text := `Root (visibility: visible, flags: {ProjectRoot}), FilePath: "C:\Proj\Proj.csproj", DisplayOrder: 0
    Folder (visibility: visible, flags: {Folder}), FilePath: "C:\Proj\Folder", DisplayOrder: 0`
	n, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, text, Write(n, WriteAllProperties))
}

func TestRoundTrip_CaptionsWithDelimiters(t *testing.T) {
	captions := []string{
		"Foo (x86).props",
		"Microsoft.Extensions.Logging (8.0.0)",
		"NU1603: A depends on B (>= 8.0.0) but 8.0.1 was not found.",
		"a, b",
		"trailing,",
		"trailing (",
		"empty ()",
		"odd (flags: {A})",
		"odd (visibility)",
		"odd, FilePath: x",
		"odd, Name: x",
		`back\slash`,
		`trailing\`,
		`esc\(x`,
		`esc\,x`,
		`double\\`,
	}
	options := []WriterOptions{WriteCaption, WriteFlags | WriteFilePath, WriteFilePath, WriteAllProperties}

	for _, caption := range captions {
		for _, opts := range options {
			n := New(caption).SetFilePath("C:\\x").AddFlag(FlagProjectImport)
			text := Write(n, opts)
			parsed, err := Parse(text)
			require.NoError(t, err, "%q written as %q", caption, text)
			assert.Equal(t, caption, parsed.Caption(), "written as %q", text)
			assert.Equal(t, text, Write(parsed, opts))
		}
	}
}

func TestWrite_EscapesOnlyAmbiguousCaptions(t *testing.T) {
	tests := []struct {
		caption string
		want    string
	}{
		{"Foo (x86).props", "Foo (x86).props"},
		{"a, b", "a, b"},
		{"odd (flags: {A})", `odd \(flags: {A})`},
		{"empty ()", `empty \()`},
		{"odd, FilePath: x", `odd\, FilePath: x`},
		{`trailing\`, `trailing\\`},
		{`esc\(x`, `esc\\(x`},
		{`C:\dir`, `C:\dir`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Write(New(tt.caption), WriteCaption), tt.caption)
	}
}
