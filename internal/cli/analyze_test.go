package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linebuild/internal/document"
	"github.com/roach88/linebuild/internal/duration"
	"github.com/roach88/linebuild/internal/graph"
	"github.com/roach88/linebuild/internal/model"
	"github.com/roach88/linebuild/internal/pipeline"
	"github.com/roach88/linebuild/internal/store"
)

func siteOpts(format string) *RootOptions {
	return &RootOptions{Format: format, Profile: fixture("site.yaml")}
}

func TestOrderText(t *testing.T) {
	out, err := execute(t, NewOrderCommand(&RootOptions{Format: "text"}), fixture("grilled-cheese.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "track hot\n  0 griddle\n  1 plate\n"+
		"track prep\n  0 butter\n  1 pickle\n  2 slice-cheese\n", out)
}

func TestOrderJSON(t *testing.T) {
	out, err := execute(t, NewOrderCommand(&RootOptions{Format: "json"}), fixture("grilled-cheese.yaml"))
	require.NoError(t, err)

	var ordering graph.Ordering
	decodeResponse(t, out, &ordering)
	assert.Equal(t, map[string]int{"griddle": 0, "plate": 1, "butter": 0, "pickle": 1, "slice-cheese": 2}, ordering.Ordinals)
	assert.Empty(t, ordering.Unresolved)
}

func TestOrderApply_Idempotent(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.yaml")
	second := filepath.Join(dir, "second.yaml")

	_, err := execute(t, NewOrderCommand(&RootOptions{Format: "text"}), "--apply", "-o", first, fixture("grilled-cheese.yaml"))
	require.NoError(t, err)
	_, err = execute(t, NewOrderCommand(&RootOptions{Format: "text"}), "--apply", "-o", second, first)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	build, issues, err := document.DecodeBuild(a)
	require.NoError(t, err)
	assert.Empty(t, issues)
	got := make(map[string]int, len(build.WorkUnits))
	for _, u := range build.WorkUnits {
		got[u.ID] = u.OrderIndex
	}
	assert.Equal(t, map[string]int{"griddle": 0, "plate": 1, "butter": 0, "pickle": 1, "slice-cheese": 2}, got)
}

func TestOrderApply_Stdout(t *testing.T) {
	out, err := execute(t, NewOrderCommand(&RootOptions{Format: "text"}), "--apply", fixture("grilled-cheese.yaml"))
	require.NoError(t, err)

	build, _, err := document.DecodeBuild([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "grilled-cheese", build.ID)
	assert.Len(t, build.WorkUnits, 5)
}

func TestCriticalPath(t *testing.T) {
	out, err := execute(t, NewCriticalPathCommand(&RootOptions{Format: "json"}), fixture("grilled-cheese.yaml"))
	require.NoError(t, err)

	var result CriticalPathResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "grilled-cheese", result.BuildID)
	assert.Equal(t, []string{"slice-cheese", "griddle", "plate"}, result.CriticalPath.Nodes)
	assert.Equal(t, 390, result.CriticalPath.TotalSeconds)
	assert.Equal(t, 455, result.Stats.TotalSeconds)
	assert.Equal(t, 240, result.Durations["griddle"].Seconds)
}

func TestCriticalPathText(t *testing.T) {
	out, err := execute(t, NewCriticalPathCommand(&RootOptions{Format: "text"}), fixture("grilled-cheese.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "critical path 390s")
	assert.Contains(t, out, "griddle")
	assert.Contains(t, out, "total 455s, active 435s")
}

func TestCriticalPathItemType(t *testing.T) {
	path := writeTemp(t, "special.yaml", `
id: special-3
name: daily special
item_type: bowl
work_units:
  - id: plate
    action: {family: assemble}
    target: {name: rice}
`)

	out, err := execute(t, NewCriticalPathCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var result CriticalPathResult
	decodeResponse(t, out, &result)
	assert.Equal(t, 45, result.CriticalPath.TotalSeconds)
	assert.Equal(t, duration.SourceAssemblyType, result.Durations["plate"].Source)
}

func TestTransfers(t *testing.T) {
	out, err := execute(t, NewTransfersCommand(siteOpts("json")), fixture("grilled-cheese.yaml"))
	require.NoError(t, err)

	var result TransfersResult
	decodeResponse(t, out, &result)
	require.Len(t, result.Transfers, 3)

	kinds := make(map[string]model.TransferKind, 3)
	for _, tr := range result.Transfers {
		kinds[tr.AssemblyID] = tr.Kind
	}
	assert.Equal(t, map[string]model.TransferKind{
		"bread":   model.TransferInterPod,
		"cheese":  model.TransferInterStation,
		"pickles": model.TransferSameStation,
	}, kinds)
	assert.Equal(t, 150, result.Stats.TransferSeconds)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, model.CodeMissingProducer, result.Issues[0].Code)
}

func TestTransfersWithoutPods(t *testing.T) {
	out, err := execute(t, NewTransfersCommand(&RootOptions{Format: "json"}), fixture("grilled-cheese.yaml"))
	require.NoError(t, err)

	var result TransfersResult
	decodeResponse(t, out, &result)
	for _, tr := range result.Transfers {
		assert.NotEqual(t, model.TransferInterPod, tr.Kind, "no pods configured")
	}
}

func TestTransfersSplice(t *testing.T) {
	out, err := execute(t, NewTransfersCommand(siteOpts("text")), "--splice", fixture("grilled-cheese.yaml"))
	require.NoError(t, err)

	spliced, _, err := document.DecodeBuild([]byte(out))
	require.NoError(t, err)
	assert.Len(t, spliced.WorkUnits, 8)

	// Every move is explicit now, so nothing is left to derive.
	out, err = execute(t, NewTransfersCommand(siteOpts("json")), writeTemp(t, "spliced.yaml", out))
	require.NoError(t, err)
	var result TransfersResult
	decodeResponse(t, out, &result)
	assert.Empty(t, result.Transfers)
	assert.Equal(t, 3, result.Stats.Bridged)
}

func TestScore(t *testing.T) {
	out, err := execute(t, NewScoreCommand(siteOpts("json")), fixture("grilled-cheese.yaml"))
	require.NoError(t, err)

	var result ScoreResult
	decodeResponse(t, out, &result)
	assert.False(t, result.Cached)
	assert.Equal(t, 24.1, result.Score.Overall)
	assert.NotEmpty(t, result.Score.Fingerprint)
	assert.Contains(t, result.Score.Rationale, "transfer_load")
}

func TestScore_Cached(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "linebuild.db")

	out, err := execute(t, NewScoreCommand(siteOpts("json")), "--db", dbPath, fixture("grilled-cheese.yaml"))
	require.NoError(t, err)
	var first ScoreResult
	decodeResponse(t, out, &first)
	assert.False(t, first.Cached)

	out, err = execute(t, NewScoreCommand(siteOpts("json")), "--db", dbPath, fixture("grilled-cheese.yaml"))
	require.NoError(t, err)
	var second ScoreResult
	decodeResponse(t, out, &second)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Score, second.Score)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	stored, err := st.GetScore(context.Background(), first.Score.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, 24.1, stored.Overall)
}

func TestScoreText(t *testing.T) {
	out, err := execute(t, NewScoreCommand(siteOpts("text")), fixture("grilled-cheese.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "grilled-cheese complexity 24.1")
	assert.Contains(t, out, "overall 24.1: driven by transfer_load 35.0")
}

func TestAnalyze(t *testing.T) {
	out, err := execute(t, NewAnalyzeCommand(siteOpts("json")), fixture("grilled-cheese.yaml"))
	require.NoError(t, err)

	var analysis pipeline.Analysis
	resp := decodeResponse(t, out, &analysis)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "grilled-cheese", analysis.BuildID)
	assert.Equal(t, 2, analysis.Version)
	assert.Equal(t, 390, analysis.CriticalPath.TotalSeconds)
	assert.Len(t, analysis.Transfers, 3)
	assert.Equal(t, 24.1, analysis.Complexity.Overall)
	assert.Equal(t, analysis.Fingerprint, analysis.Complexity.Fingerprint)
	assert.True(t, analysis.Validation.Valid)
}

func TestAnalyzeInvalidBuild(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "linebuild.db")

	out, err := execute(t, NewAnalyzeCommand(&RootOptions{Format: "text"}), "--db", dbPath, fixture("dangling.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "toast -> plate")
	assert.Contains(t, out, "✗ Build toast-only invalid")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	report, err := st.LatestReport(context.Background(), "toast-only")
	require.NoError(t, err)
	assert.False(t, report.Valid)
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
