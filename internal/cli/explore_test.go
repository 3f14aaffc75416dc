package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/chart"
)

func TestExploreSession(t *testing.T) {
	// session.yaml drills into EMEA, hides outliers, jumps back to the
	// overview, then drills into APAC. The filter change survives the
	// navigation, so the final level is APAC's children with outlier
	// rejection still on.
	out, err := runCLI(t, "explore",
		"--dashboard", "testdata/dashboard.cue",
		"--data", "testdata/data.yaml",
		"--session", "testdata/session.yaml",
		"--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   chart.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	snap := resp.Data
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, []string{"APAC"}, snap.Path)
	require.Len(t, snap.Breadcrumbs, 2)
	assert.Equal(t, "APAC", snap.Breadcrumbs[1].Name)

	require.Len(t, snap.Data, 1)
	assert.Equal(t, "Japan", snap.Data[0].Name)
	assert.Equal(t, 80.0, snap.Data[0].Value)
	assert.Equal(t, 1, snap.Summary.Count)
	assert.Equal(t, 80.0, snap.Summary.Sum)
}

func TestExploreUnknownNodeName(t *testing.T) {
	session := writeTemp(t, "bad-node.yaml", `steps:
  - drill: Atlantis
`)

	_, err := runCLI(t, "explore",
		"--dashboard", "testdata/dashboard.cue",
		"--data", "testdata/data.yaml",
		"--session", session)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, ExitCode(err))
	assert.Contains(t, err.Error(), "step 1")
}

func TestExploreRejectsAmbiguousStep(t *testing.T) {
	session := writeTemp(t, "ambiguous.yaml", `steps:
  - drill: EMEA
    reset: true
`)

	_, err := runCLI(t, "explore",
		"--dashboard", "testdata/dashboard.cue",
		"--data", "testdata/data.yaml",
		"--session", session)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, ExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeSession)
}

func TestExploreRejectsEmptySession(t *testing.T) {
	session := writeTemp(t, "empty.yaml", "steps: []\n")

	_, err := runCLI(t, "explore",
		"--dashboard", "testdata/dashboard.cue",
		"--data", "testdata/data.yaml",
		"--session", session)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, ExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeSession)
}

func TestExploreSQLiteDrill(t *testing.T) {
	dbPath := seedDB(t)
	session := writeTemp(t, "drill.yaml", `steps:
  - drill: EMEA
`)

	out, err := runCLI(t, "explore",
		"--dashboard", "testdata/dashboard.cue",
		"--data", dbPath,
		"--session", session,
		"--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data chart.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	// The country level comes from a live aggregation query, ordered by name.
	assert.Equal(t, []string{"EMEA"}, resp.Data.Path)
	require.Len(t, resp.Data.Data, 2)
	assert.Equal(t, "France", resp.Data.Data[0].Name)
	assert.Equal(t, "Germany", resp.Data.Data[1].Name)
}

func TestExploreBreadcrumbToOverview(t *testing.T) {
	session := writeTemp(t, "back.yaml", `steps:
  - drill: EMEA
  - breadcrumb: []
`)

	out, err := runCLI(t, "explore",
		"--dashboard", "testdata/dashboard.cue",
		"--data", "testdata/data.yaml",
		"--session", session,
		"--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data chart.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 0, resp.Data.Level)
	assert.Len(t, resp.Data.Data, 2)
}
