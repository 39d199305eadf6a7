package imports

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_ChildrenAndFiles(t *testing.T) {
	s := &Snapshot{
		ProjectPath: "p.csproj",
		Imports: map[string][]string{
			"p.csproj": {"b.props", "a.props"},
			"a.props":  {"c.props"},
		},
	}
	assert.Equal(t, []string{"b.props", "a.props"}, s.Children("p.csproj"))
	assert.Nil(t, s.Children("c.props"))
	assert.Equal(t, []string{"a.props", "b.props", "c.props", "p.csproj"}, s.Files())

	var nilSnapshot *Snapshot
	assert.Nil(t, nilSnapshot.Children("p.csproj"))
}

func TestSnapshot_Validate(t *testing.T) {
	ok := &Snapshot{
		ProjectPath: "p",
		Imports: map[string][]string{
			"p": {"a", "b"},
			"a": {"shared"},
			"b": {"shared"},
		},
	}
	assert.NoError(t, ok.Validate(), "diamonds are not cycles")

	cyclic := &Snapshot{
		ProjectPath: "p",
		Imports: map[string][]string{
			"p": {"a"},
			"a": {"b"},
			"b": {"a"},
		},
	}
	err := cyclic.Validate()
	require.ErrorIs(t, err, ErrImportCycle)
	var ce *CycleError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"a", "b", "a"}, ce.Path)
	assert.Equal(t, "import cycle detected: a -> b -> a", ce.Error())
}
