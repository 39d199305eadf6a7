package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Verbosity levels
type Verbosity int

const (
	// VerbosityQuiet shows errors only
	VerbosityQuiet Verbosity = iota
	// VerbosityNormal shows errors, warnings, and results (default)
	VerbosityNormal
	// VerbosityDetailed shows above + per-item details
	VerbosityDetailed
	// VerbosityDiagnostic shows above + internal state
	VerbosityDiagnostic
)

// ParseVerbosity converts a verbosity name to a Verbosity
func ParseVerbosity(name string) (Verbosity, error) {
	switch strings.ToLower(name) {
	case "q", "quiet":
		return VerbosityQuiet, nil
	case "", "n", "normal":
		return VerbosityNormal, nil
	case "d", "detailed":
		return VerbosityDetailed, nil
	case "diag", "diagnostic":
		return VerbosityDiagnostic, nil
	default:
		return VerbosityNormal, fmt.Errorf("invalid verbosity %q (quiet, normal, detailed, diagnostic)", name)
	}
}

// Console provides output abstraction
type Console struct {
	out       io.Writer
	err       io.Writer
	verbosity Verbosity
	mu        sync.Mutex
	colors    bool
}

// NewConsole creates a new console
func NewConsole(out, err io.Writer, verbosity Verbosity) *Console {
	c := &Console{
		out:       out,
		err:       err,
		verbosity: verbosity,
		colors:    IsColorEnabled(),
	}

	if !c.colors {
		DisableColors()
	}

	return c
}

// DefaultConsole creates a console with stdout/stderr and normal verbosity
func DefaultConsole() *Console {
	return NewConsole(os.Stdout, os.Stderr, VerbosityNormal)
}

// Out returns the output writer
func (c *Console) Out() io.Writer {
	return c.out
}

// SetVerbosity sets the verbosity level
func (c *Console) SetVerbosity(v Verbosity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verbosity = v
}

// GetVerbosity returns the current verbosity level
func (c *Console) GetVerbosity() Verbosity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verbosity
}

// SetColors enables or disables color output
func (c *Console) SetColors(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colors = enabled
	if enabled {
		EnableColors()
	} else {
		DisableColors()
	}
}

// Println writes line to output
func (c *Console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// Printf writes formatted output
func (c *Console) Printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) colored(w io.Writer, col *color.Color, format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.colors {
		_, _ = col.Fprintf(w, format, a...)
	} else {
		fmt.Fprintf(w, format, a...)
	}
}

// Header writes a bold heading line
func (c *Console) Header(format string, a ...any) {
	if c.GetVerbosity() >= VerbosityNormal {
		c.colored(c.out, ColorHeader, format+"\n", a...)
	}
}

// Success writes success message (green)
func (c *Console) Success(format string, a ...any) {
	if c.GetVerbosity() >= VerbosityNormal {
		c.colored(c.out, ColorSuccess, format+"\n", a...)
	}
}

// Error writes error message (red)
func (c *Console) Error(format string, a ...any) {
	c.colored(c.err, ColorError, "Error: "+format+"\n", a...)
}

// Warning writes warning message (yellow)
func (c *Console) Warning(format string, a ...any) {
	if c.GetVerbosity() >= VerbosityNormal {
		c.colored(c.out, ColorWarning, "Warning: "+format+"\n", a...)
	}
}

// Failure writes a result line in the error color to output
func (c *Console) Failure(format string, a ...any) {
	c.colored(c.out, ColorError, format+"\n", a...)
}

// Caution writes a result line in the warning color to output
func (c *Console) Caution(format string, a ...any) {
	if c.GetVerbosity() >= VerbosityNormal {
		c.colored(c.out, ColorWarning, format+"\n", a...)
	}
}

// Info writes info message (cyan)
func (c *Console) Info(format string, a ...any) {
	if c.GetVerbosity() >= VerbosityNormal {
		c.colored(c.out, ColorInfo, format+"\n", a...)
	}
}

// Debug writes debug message (white)
func (c *Console) Debug(format string, a ...any) {
	if c.GetVerbosity() >= VerbosityDiagnostic {
		c.colored(c.out, ColorDebug, "[DEBUG] "+format+"\n", a...)
	}
}

// Detail writes detailed message
func (c *Console) Detail(format string, a ...any) {
	if c.GetVerbosity() >= VerbosityDetailed {
		c.mu.Lock()
		defer c.mu.Unlock()
		fmt.Fprintf(c.out, format+"\n", a...)
	}
}
