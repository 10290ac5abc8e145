package main

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gostonefire/snapintersect"
	"github.com/gostonefire/snapintersect/internal/memory"
	"github.com/gostonefire/snapintersect/internal/verify"
	"github.com/gostonefire/snapintersect/retc"
	"go.uber.org/zap"
)

// RunArgs - Files and options of one intersection run
//   - Table1 and Table2 are the input table files
//   - Output is the file the result is written to, no file is written if empty
//   - CardFile places card memory in a file instead of on the heap
//   - Verify checks the result against the software reference
type RunArgs struct {
	Name     string `json:"name"`
	Table1   string `json:"table1"`
	Table2   string `json:"table2"`
	Output   string `json:"output"`
	CardFile string `json:"cardFile"`
	Verify   bool   `json:"verify"`
}

// RunReport - Outcome of one intersection run
type RunReport struct {
	RunID         string
	ResultRecords int64
	Digest        string
	Stat          snapintersect.TableStat
}

// runIntersect - Stages both tables in, computes and stages the result out through the action registers, one
// step at a time, waiting for the action to become idle after each step
func runIntersect(ctx context.Context, logger *zap.Logger, config Config, runArgs RunArgs) (report RunReport, err error) {
	table1, release1, err := openTable(runArgs.Table1)
	if err != nil {
		return
	}
	defer release1()
	table2, release2, err := openTable(runArgs.Table2)
	if err != nil {
		return
	}
	defer release2()

	layout, err := snapintersect.NewLayout(int64(len(table1)), int64(len(table2)), config.HashBits)
	if err != nil {
		return
	}

	host := memory.NewArena(layout.HostSize)
	copy(host.Bytes()[layout.SrcTable1.Address:], table1)
	copy(host.Bytes()[layout.SrcTable2.Address:], table2)

	var card snapintersect.Memory
	if runArgs.CardFile != "" {
		var fileArena *memory.FileArena
		fileArena, err = memory.NewFileArena(runArgs.CardFile, layout.CardSize)
		if err != nil {
			return
		}
		defer fileArena.Close()
		card = fileArena
	} else {
		card = memory.NewArena(layout.CardSize)
	}

	session, info, err := snapintersect.NewSession(snapintersect.SessionConf{
		Host:             host,
		Card:             card,
		HashTableAddress: layout.HashTableAddress,
		HashBits:         config.HashBits,
		MaxTransferBytes: config.MaxTransferBytes,
		Logger:           logger,
	})
	if err != nil {
		return
	}
	report.RunID = info.RunID
	logger = logger.With(zap.String("run_id", info.RunID), zap.String("name", runArgs.Name))
	logger.Info("session created",
		zap.Int64("table1_records", int64(len(table1))/snapintersect.RecordWidth),
		zap.Int64("table2_records", int64(len(table2))/snapintersect.RecordWidth),
		zap.Int64("buckets", info.NumberOfBuckets))

	action := snapintersect.NewAction(session, config.pollInterval)
	stageIn, compute, stageOutResult := layout.Jobs()

	_, err = runStep(ctx, action, stageIn, config)
	if err != nil {
		return
	}
	computed, err := runStep(ctx, action, compute, config)
	if err != nil {
		return
	}
	stageOutResult.ResTable.Size = computed.ResultSize
	_, err = runStep(ctx, action, stageOutResult, config)
	if err != nil {
		return
	}

	result := host.Bytes()[layout.HostResult.Address : layout.HostResult.Address+computed.ResultSize]
	report.ResultRecords = computed.ResultSize / snapintersect.RecordWidth
	report.Digest = verify.Digest(result)
	report.Stat, err = session.Stat(false)
	if err != nil {
		return
	}

	if runArgs.Verify {
		var expected []byte
		expected, err = verify.Intersect(table1, table2)
		if err != nil {
			return
		}
		err = verify.Compare(expected, result)
		if err != nil {
			err = errors.Wrapf(err, "verification failed")
			return
		}
		logger.Info("result verified")
	}

	if runArgs.Output != "" {
		err = writeTable(runArgs.Output, result)
		if err != nil {
			return
		}
	}

	logger.Info("intersection done",
		zap.Int64("result_records", report.ResultRecords),
		zap.String("digest", report.Digest),
		zap.Int64("used_buckets", report.Stat.UsedBuckets),
		zap.Int64("fullest_bucket", report.Stat.FullestBucket))

	return
}

// runStep - Runs one step on the action and turns a failure return code into an error
func runStep(ctx context.Context, action *snapintersect.Action, job snapintersect.Job, config Config) (result snapintersect.StepResult, err error) {
	result, err = action.Run(ctx, job, config.stepTimeout)
	if err != nil {
		err = errors.Wrapf(err, "step %d", job.Step)
		return
	}
	if result.Retc != retc.OK {
		err = fmt.Errorf("step %d returned 0x%x", job.Step, result.Retc)
	}

	return
}
