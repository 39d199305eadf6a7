package logmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiagnostic_String(t *testing.T) {
	tests := []struct {
		name string
		diag Diagnostic
		want string
	}{
		{
			name: "all segments",
			diag: Diagnostic{
				Message:      Message{Text: "bad code"},
				Severity:     SeverityError,
				Code:         "CS001",
				File:         "a.cs",
				ProjectFile:  "p.csproj",
				LineNumber:   10,
				ColumnNumber: 5,
			},
			want: "a.cs(10,5): error CS001: bad code [p.csproj]",
		},
		{
			name: "no file",
			diag: Diagnostic{
				Message:     Message{Text: "bad code"},
				Severity:    SeverityError,
				Code:        "CS001",
				ProjectFile: "p.csproj",
			},
			want: "error CS001: bad code [p.csproj]",
		},
		{
			name: "file without line",
			diag: Diagnostic{
				Message:  Message{Text: "missing reference"},
				Severity: SeverityWarning,
				Code:     "MSB3245",
				File:     "C:\\Proj\\Proj.csproj",
			},
			want: "C:\\Proj\\Proj.csproj: warning MSB3245: missing reference",
		},
		{
			name: "line without column",
			diag: Diagnostic{
				Message:    Message{Text: "x"},
				Severity:   SeverityWarning,
				File:       "b.vb",
				LineNumber: 3,
			},
			want: "b.vb(3): warning: x",
		},
		{
			name: "full span",
			diag: Diagnostic{
				Message:         Message{Text: "span"},
				Severity:        SeverityError,
				Code:            "CS0103",
				File:            "c.cs",
				LineNumber:      1,
				ColumnNumber:    2,
				EndLineNumber:   1,
				EndColumnNumber: 9,
			},
			want: "c.cs(1,2,1,9): error CS0103: span",
		},
		{
			name: "subcategory",
			diag: Diagnostic{
				Message:     Message{Text: "ran out"},
				Severity:    SeverityError,
				Subcategory: "fatal",
				Code:        "LNK1104",
			},
			want: "fatal error LNK1104: ran out",
		},
		{
			name: "no text",
			diag: Diagnostic{
				Severity: SeverityWarning,
				Code:     "NU1603",
			},
			want: "warning NU1603:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.diag.String())
		})
	}
}

func TestDiagnostic_IsError(t *testing.T) {
	assert.True(t, Diagnostic{Severity: SeverityError}.IsError())
	assert.False(t, Diagnostic{Severity: SeverityWarning}.IsError())
}

func TestMessage_Entry(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var e Entry = Message{Timestamp: ts, Text: "hello"}
	assert.Equal(t, ts, e.At())
	assert.Equal(t, "hello", e.String())

	e = Diagnostic{Message: Message{Timestamp: ts, Text: "oops"}, Severity: SeverityError}
	assert.Equal(t, ts, e.At())
	assert.Equal(t, "error: oops", e.String())
}

func TestItem_MetadataValue(t *testing.T) {
	item := Item{Name: "Program.cs", Metadata: map[string]string{"Link": "src\\Program.cs"}}

	v, ok := item.MetadataValue("Link")
	assert.True(t, ok)
	assert.Equal(t, "src\\Program.cs", v)

	v, ok = item.MetadataValue("LINK")
	assert.True(t, ok)
	assert.Equal(t, "src\\Program.cs", v)

	_, ok = item.MetadataValue("DependentUpon")
	assert.False(t, ok)
}
