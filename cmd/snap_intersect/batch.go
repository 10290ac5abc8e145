package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

// BatchFile - Content of a batch jobs file
//   - Parallelism is the number of runs in flight at once, 0 gives the number of CPUs
//   - Jobs are the runs, each with its own session and memories
type BatchFile struct {
	Parallelism int       `json:"parallelism"`
	Jobs        []RunArgs `json:"jobs"`
}

// BatchReport - Outcome of a batch
type BatchReport struct {
	Succeeded int64
	Failed    int64
	Reports   []RunReport
}

// loadBatchFile - Reads and parses a batch jobs file
func loadBatchFile(fileName string) (batchFile BatchFile, err error) {
	raw, err := os.ReadFile(fileName)
	if err != nil {
		err = errors.Wrapf(err, "unable to read jobs file")
		return
	}

	err = yaml.Unmarshal(raw, &batchFile)
	if err != nil {
		err = errors.Wrapf(err, "unable to parse jobs file")
		return
	}

	for i, job := range batchFile.Jobs {
		if job.Table1 == "" || job.Table2 == "" {
			err = fmt.Errorf("job %d lacks table1 or table2", i)
			return
		}
		if job.Name == "" {
			batchFile.Jobs[i].Name = fmt.Sprintf("job-%d", i)
		}
	}

	return
}

// runBatch - Runs all jobs of a batch on a worker pool. Every job runs to completion even if others fail,
// the first error is returned together with the report.
func runBatch(ctx context.Context, logger *zap.Logger, config Config, batchFile BatchFile) (batchReport BatchReport, err error) {
	if len(batchFile.Jobs) == 0 {
		return
	}

	parallelism := batchFile.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(batchFile.Jobs) {
		parallelism = len(batchFile.Jobs)
	}

	pool, err := ants.NewPool(parallelism)
	if err != nil {
		err = errors.Wrapf(err, "unable to create worker pool")
		return
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		firstMu   sync.Mutex
		first     error
		succeeded = atomic.NewInt64(0)
		failed    = atomic.NewInt64(0)
	)
	reports := make([]RunReport, len(batchFile.Jobs))

	setError := func(err error) {
		firstMu.Lock()
		if first == nil {
			first = err
		}
		firstMu.Unlock()
	}

	for i, job := range batchFile.Jobs {
		i, job := i, job
		wg.Add(1)
		if sErr := pool.Submit(func() {
			defer wg.Done()
			report, rErr := runIntersect(ctx, logger, config, job)
			if rErr != nil {
				failed.Inc()
				logger.Error("job failed", zap.String("name", job.Name), zap.Error(rErr))
				setError(errors.Wrapf(rErr, "job %s", job.Name))
				return
			}
			succeeded.Inc()
			reports[i] = report
		}); sErr != nil {
			wg.Done()
			failed.Inc()
			setError(sErr)
		}
	}

	wg.Wait()

	batchReport = BatchReport{Succeeded: succeeded.Load(), Failed: failed.Load(), Reports: reports}
	err = first

	return
}
