package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	c := NewCollector()

	assert.NotNil(t, c.Registry())
	assert.NotNil(t, c.runsTotal)
	assert.NotNil(t, c.diagnostics)
	assert.NotNil(t, c.documentBytes)
}

func TestCollector_RecordRun(t *testing.T) {
	c := NewCollector()

	c.RecordRun("usd", "OK", 250*time.Millisecond)
	c.RecordRun("usd", "OK", 100*time.Millisecond)
	c.RecordRun("gltf", "CopyFailure", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.runsTotal.WithLabelValues("usd", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runsTotal.WithLabelValues("gltf", "CopyFailure")))
	assert.InDelta(t, 0.1, testutil.ToFloat64(c.runDuration.WithLabelValues("usd")), 1e-9)
	assert.Greater(t, testutil.ToFloat64(c.lastSuccessTime), 0.0)
}

func TestCollector_RecordDocumentAndDiagnostic(t *testing.T) {
	c := NewCollector()

	c.RecordDocument("usd", "ascii", 4096)
	c.RecordDiagnostic("FormatMismatch")
	c.RecordDiagnostic("FormatMismatch")

	assert.Equal(t, 4096.0, testutil.ToFloat64(c.documentBytes.WithLabelValues("usd", "ascii")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.diagnostics.WithLabelValues("FormatMismatch")))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector()
	c.RecordRun("usd", "OK", time.Second)

	path := filepath.Join(t.TempDir(), "arframe.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `arframe_runs_total{backend="usd",kind="OK"} 1`), text)
	assert.Contains(t, text, "arframe_run_duration_seconds")
}

func TestCollector_WriteTextfileDisabled(t *testing.T) {
	c := NewCollector()
	assert.NoError(t, c.WriteTextfile(""))
}
