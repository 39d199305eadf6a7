package buildlog

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/projsys/observability"
)

func TestTable_AddFinishClear(t *testing.T) {
	dir := t.TempDir()
	table := NewTable(nil)

	later := NewBuild("/src/B/B.csproj", nil, nil, TypeBuild, start.Add(time.Second), dir)
	earlier := NewBuild("/src/A/A.csproj", nil, nil, TypeDesignTimeBuild, start, dir)
	table.Add(later)
	table.Add(earlier)
	table.Add(later)

	builds := table.Builds()
	require.Len(t, builds, 2)
	assert.Same(t, earlier, builds[0])
	assert.Same(t, later, builds[1])

	running, err := observability.GetGaugeValue(observability.LiveBuilds, "running")
	require.NoError(t, err)
	assert.Equal(t, float64(2), running)

	require.NoError(t, table.Finish(earlier.ID, true, start.Add(2*time.Second)))
	assert.Equal(t, StatusFinished, earlier.Status())
	assert.ErrorIs(t, table.Finish(earlier.ID, true, start.Add(3*time.Second)), ErrAlreadyFinished)
	assert.Error(t, table.Finish(uuid.New(), true, start))

	got, ok := table.Get(later.ID)
	require.True(t, ok)
	assert.Same(t, later, got)

	w, err := later.Recorder()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.NoError(t, table.Clear())
	assert.Empty(t, table.Builds())
	_, err = os.Stat(later.LogPath)
	assert.True(t, os.IsNotExist(err))
}
