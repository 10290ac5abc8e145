//go:build unit

package main

import (
	"context"
	"fmt"
	"github.com/gostonefire/snapintersect/internal/tablegen"
	"github.com/gostonefire/snapintersect/internal/verify"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"testing"
)

// writeTables - Generates two tables into dir and returns their file names
func writeTables(t *testing.T, dir, suffix string, seed uint64) (file1, file2 string, table1, table2 []byte) {
	table1, table2, err := tablegen.Generate(tablegen.GenConf{Table1Records: 300, Table2Records: 200, Overlap: 50, Seed: seed})
	assert.NoError(t, err, "generates tables")

	file1 = filepath.Join(dir, fmt.Sprintf("t1-%d%s", seed, suffix))
	file2 = filepath.Join(dir, fmt.Sprintf("t2-%d%s", seed, suffix))
	assert.NoError(t, writeTable(file1, table1), "writes table1")
	assert.NoError(t, writeTable(file2, table2), "writes table2")

	return
}

func TestTables(t *testing.T) {
	t.Run("plain and compressed round trip", func(t *testing.T) {
		for _, suffix := range []string{".bin", ".zst"} {
			// Prepare
			file1, _, table1, _ := writeTables(t, t.TempDir(), suffix, 5)

			// Execute
			data, release, err := openTable(file1)

			// Check
			assert.NoError(t, err, "opens %s table", suffix)
			assert.Equal(t, table1, data, "content of %s table", suffix)

			// Clean up
			assert.NoError(t, release(), "releases %s table", suffix)
		}
	})

	t.Run("error on missing file", func(t *testing.T) {
		// Execute
		_, _, errPlain := openTable(filepath.Join(t.TempDir(), "missing.bin"))
		_, _, errZst := openTable(filepath.Join(t.TempDir(), "missing.zst"))

		// Check
		assert.Error(t, errPlain, "missing plain file")
		assert.Error(t, errZst, "missing compressed file")
	})
}

func TestRunIntersect(t *testing.T) {
	t.Run("intersects files and writes verified result", func(t *testing.T) {
		// Prepare
		dir := t.TempDir()
		file1, file2, table1, table2 := writeTables(t, dir, ".zst", 7)
		output := filepath.Join(dir, "result.bin")
		config, err := LoadConfig("")
		assert.NoError(t, err, "loads config")

		// Execute
		report, err := runIntersect(context.Background(), zap.NewNop(), config, RunArgs{
			Table1:   file1,
			Table2:   file2,
			Output:   output,
			CardFile: filepath.Join(dir, "card.bin"),
			Verify:   true,
		})

		// Check
		assert.NoError(t, err, "runs intersection")
		expected, err := verify.Intersect(table1, table2)
		assert.NoError(t, err, "reference intersection")
		assert.Equal(t, int64(50), report.ResultRecords, "overlap records found")
		assert.Equal(t, verify.Digest(expected), report.Digest, "digest of result")
		assert.NotEmpty(t, report.RunID, "run id")

		written, err := os.ReadFile(output)
		assert.NoError(t, err, "reads result file")
		assert.Equal(t, expected, written, "result file")
	})

	t.Run("error on partial records", func(t *testing.T) {
		// Prepare
		dir := t.TempDir()
		file1 := filepath.Join(dir, "bad.bin")
		assert.NoError(t, os.WriteFile(file1, make([]byte, 100), 0644), "writes bad table")
		config, err := LoadConfig("")
		assert.NoError(t, err, "loads config")

		// Execute
		_, err = runIntersect(context.Background(), zap.NewNop(), config, RunArgs{Table1: file1, Table2: file1})

		// Check
		assert.Error(t, err, "partial records")
	})
}

func TestRunBatch(t *testing.T) {
	t.Run("runs all jobs", func(t *testing.T) {
		// Prepare
		dir := t.TempDir()
		var jobs string
		for seed := uint64(1); seed <= 4; seed++ {
			file1, file2, _, _ := writeTables(t, dir, ".bin", seed)
			jobs += fmt.Sprintf("  - table1: %s\n    table2: %s\n    verify: true\n", file1, file2)
		}
		jobsFile := filepath.Join(dir, "jobs.yaml")
		assert.NoError(t, os.WriteFile(jobsFile, []byte("parallelism: 2\njobs:\n"+jobs), 0644), "writes jobs file")
		config, err := LoadConfig("")
		assert.NoError(t, err, "loads config")

		// Execute
		batchFile, err := loadBatchFile(jobsFile)
		assert.NoError(t, err, "loads jobs file")
		report, err := runBatch(context.Background(), zap.NewNop(), config, batchFile)

		// Check
		assert.NoError(t, err, "runs batch")
		assert.Equal(t, int64(4), report.Succeeded, "all jobs succeeded")
		assert.Zero(t, report.Failed, "no job failed")
		assert.Equal(t, "job-2", batchFile.Jobs[2].Name, "default job name")
		for _, r := range report.Reports {
			assert.Equal(t, int64(50), r.ResultRecords, "overlap records found")
		}
	})

	t.Run("reports failing jobs", func(t *testing.T) {
		// Prepare
		dir := t.TempDir()
		file1, file2, _, _ := writeTables(t, dir, ".bin", 1)
		batchFile := BatchFile{Jobs: []RunArgs{
			{Name: "good", Table1: file1, Table2: file2},
			{Name: "bad", Table1: filepath.Join(dir, "missing.bin"), Table2: file2},
		}}
		config, err := LoadConfig("")
		assert.NoError(t, err, "loads config")

		// Execute
		report, err := runBatch(context.Background(), zap.NewNop(), config, batchFile)

		// Check
		assert.Error(t, err, "batch error")
		assert.Equal(t, int64(1), report.Succeeded, "one job succeeded")
		assert.Equal(t, int64(1), report.Failed, "one job failed")
	})
}
