package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/utmptrace/pkg/codec"
	"github.com/ssargent/utmptrace/pkg/config"
	"github.com/ssargent/utmptrace/pkg/di"
	"github.com/ssargent/utmptrace/pkg/output"
	"github.com/ssargent/utmptrace/pkg/scan"
	"github.com/ssargent/utmptrace/pkg/storage"
)

func writeWtmp(t *testing.T, path string, pids ...int32) []byte {
	t.Helper()
	rc := codec.NewRecordCodec()
	var data []byte
	for _, pid := range pids {
		data = append(data, rc.Encode(&codec.Record{
			Type:    codec.UserProcess,
			PID:     pid,
			Line:    "pts/1",
			User:    "root",
			TimeSec: 1700000000,
		})...)
	}
	require.NoError(t, os.WriteFile(path, data, 0600))
	return data
}

func setupContainer(t *testing.T, stdin string) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := di.NewContainer()
	c.SetStreams(strings.NewReader(stdin), &stdout, &stderr)
	SetContainer(c)
	t.Cleanup(func() { SetContainer(nil) })
	return &stdout, &stderr
}

func testConfig(targets ...string) *config.Config {
	c := config.DefaultConfig()
	c.Targets = targets
	c.Count = 0
	c.Archive.Dir = ""
	return c
}

func TestRunScanList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wtmp")
	original := writeWtmp(t, path, 10, 20, 30)
	stdout, _ := setupContainer(t, "")

	c := testConfig(path)
	c.Conditions = []string{"20"}
	require.NoError(t, runScan(c, zerolog.Nop(), false, false))

	assert.Contains(t, stdout.String(), "[ Targeting on "+path+" ]")
	assert.NotContains(t, stdout.String(), scan.ConfirmPrompt)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestRunScanNoMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wtmp")
	writeWtmp(t, path, 10)
	stdout, _ := setupContainer(t, "")

	c := testConfig(path)
	c.Conditions = []string{"nope"}
	require.NoError(t, runScan(c, zerolog.Nop(), true, false))
	assert.Contains(t, stdout.String(), output.NoMatches)
}

func TestRunScanDeleteConfirmed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wtmp")
	original := writeWtmp(t, path, 10, 20, 10)
	stdout, _ := setupContainer(t, "maybe\nyes\n")

	c := testConfig(path)
	c.Conditions = []string{"10"}
	require.NoError(t, runScan(c, zerolog.Nop(), true, false))

	assert.Equal(t, 2, strings.Count(stdout.String(), scan.ConfirmPrompt))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original[codec.RecordSize:2*codec.RecordSize], data)
}

func TestRunScanDeleteDeclined(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wtmp")
	original := writeWtmp(t, path, 10, 20)
	setupContainer(t, "no\n")

	c := testConfig(path)
	c.Conditions = []string{"10"}
	require.NoError(t, runScan(c, zerolog.Nop(), true, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestRunScanDeleteWithArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wtmp")
	original := writeWtmp(t, path, 10, 20, 30)
	stdout, _ := setupContainer(t, "")

	c := testConfig(path)
	c.Count = 1
	c.Archive.Enabled = true
	c.Archive.Dir = filepath.Join(dir, "archive")
	c.Metrics.Textfile = filepath.Join(dir, "utmptrace.prom")
	require.NoError(t, runScan(c, zerolog.Nop(), true, true))

	assert.NotContains(t, stdout.String(), scan.ConfirmPrompt)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original[:2*codec.RecordSize], data)

	archive, err := storage.OpenArchive(c.Archive.Dir)
	require.NoError(t, err)
	defer archive.Close()

	blocks, err := archive.List()
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, path, blocks[0].Source)
	assert.Equal(t, 2, blocks[0].Position)
	assert.Equal(t, original[2*codec.RecordSize:], blocks[0].Raw)

	prom, err := os.ReadFile(c.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "utmptrace_records_removed_total")
	assert.Contains(t, string(prom), `utmptrace_files_processed_total{status="rewritten"} 1`)
}

func TestRunScanMissingTargets(t *testing.T) {
	setupContainer(t, "")

	c := testConfig(filepath.Join(t.TempDir(), "utmp"))
	err := runScan(c, zerolog.Nop(), false, false)
	assert.ErrorIs(t, err, scan.ErrNoTargets)
}

func TestRunScanBadOutputFormat(t *testing.T) {
	setupContainer(t, "")

	c := testConfig(filepath.Join(t.TempDir(), "utmp"))
	c.Output.Format = "xml"
	assert.Error(t, runScan(c, zerolog.Nop(), false, false))
}
