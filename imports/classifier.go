package imports

import (
	"os"
	"strings"
)

// Classifier decides whether an import was added implicitly by the SDK or
// tooling rather than written by the user. Paths compare case-insensitively
// and treat '/' and '\' alike.
type Classifier struct {
	ProgramFiles          string
	ProgramFilesX86       string
	Windows               string
	ProjectExtensionsPath string
}

// NewClassifier creates a classifier for the system directories named by
// the ProgramFiles, ProgramFiles(x86) and windir environment variables.
func NewClassifier(projectExtensionsPath string) Classifier {
	windows := os.Getenv("windir")
	if windows == "" {
		windows = os.Getenv("SystemRoot")
	}
	return Classifier{
		ProgramFiles:          os.Getenv("ProgramFiles"),
		ProgramFilesX86:       os.Getenv("ProgramFiles(x86)"),
		Windows:               windows,
		ProjectExtensionsPath: projectExtensionsPath,
	}
}

// IsImplicit reports whether path lies under one of the system directories
// or the project's extensions (obj) directory.
func (c Classifier) IsImplicit(path string) bool {
	p := normalizePath(path)
	for _, dir := range []string{c.ProgramFiles, c.ProgramFilesX86, c.Windows, c.ProjectExtensionsPath} {
		d := normalizePath(dir)
		if d == "" {
			continue
		}
		if p == d || strings.HasPrefix(p, d+`\`) {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	p := strings.ReplaceAll(path, "/", `\`)
	p = strings.TrimRight(p, `\`)
	return strings.ToUpper(p)
}

// fileName returns the last element of a Windows or Unix path.
func fileName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return path
}
