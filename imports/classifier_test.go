package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_IsImplicit(t *testing.T) {
	c := Classifier{
		ProgramFiles:          `C:\Program Files`,
		ProgramFilesX86:       `C:\Program Files (x86)`,
		Windows:               `C:\Windows`,
		ProjectExtensionsPath: `C:\Proj\obj`,
	}

	tests := []struct {
		path     string
		implicit bool
	}{
		{`C:\Proj\obj\Proj.nuget.g.props`, true},
		{`C:\Proj\Directory.Build.props`, false},
		{`c:\program files\dotnet\sdk\8.0.100\Sdks\Microsoft.NET.Sdk\Sdk\Sdk.props`, true},
		{`C:\Program Files (x86)\MSBuild\Microsoft.Common.targets`, true},
		{`C:\Windows\Microsoft.NET\Framework\v4.0.30319\Microsoft.CSharp.targets`, true},
		{`C:\WindowsApps\thing.props`, false},
		{`C:\Proj\objects\a.props`, false},
		{`C:/Proj/obj/Proj.nuget.g.targets`, true},
		{`C:\Proj\obj`, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.implicit, c.IsImplicit(tt.path), tt.path)
	}
}

func TestClassifier_EmptyDirectoriesMatchNothing(t *testing.T) {
	var c Classifier
	assert.False(t, c.IsImplicit(`C:\anything.props`))
	c.ProjectExtensionsPath = `\`
	assert.False(t, c.IsImplicit(`C:\anything.props`))
}

func TestNewClassifier_ReadsEnvironment(t *testing.T) {
	t.Setenv("ProgramFiles", `D:\PF`)
	t.Setenv("ProgramFiles(x86)", `D:\PF86`)
	t.Setenv("windir", `D:\Win`)

	c := NewClassifier(`D:\Proj\obj`)
	assert.Equal(t, `D:\PF`, c.ProgramFiles)
	assert.Equal(t, `D:\PF86`, c.ProgramFilesX86)
	assert.Equal(t, `D:\Win`, c.Windows)
	assert.True(t, c.IsImplicit(`D:\PF\x.targets`))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a.props", fileName(`C:\x\a.props`))
	assert.Equal(t, "b.targets", fileName("/x/b.targets"))
	assert.Equal(t, "c", fileName("c"))
}
