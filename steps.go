package snapintersect

import (
	"errors"
	"fmt"

	crerrors "github.com/cockroachdb/errors"
	"github.com/gostonefire/snapintersect/internal/conf"
	"github.com/gostonefire/snapintersect/internal/dma"
	"github.com/gostonefire/snapintersect/internal/join"
	"github.com/gostonefire/snapintersect/retc"
	"go.uber.org/zap"
)

// StepResult - Outcome of one step
//   - Retc is either retc.OK or retc.Failure
//   - ResultSize is the number of result bytes, only set by the compute step
//   - Method is the method register after the step, the compute step adds retc.MethodDone when the probe completed
type StepResult struct {
	Retc       uint32
	ResultSize int64
	Method     uint32
}

// Step - Runs the step selected by job.Step.
// Step values not part of the protocol, including 4, do nothing and report retc.OK.
//   - job is the register contents for this step
//
// It returns:
//   - result is a StepResult struct, its Retc is retc.Failure whenever err is not nil
//   - err is of type retc.HashTableFull, retc.OutOfBounds, retc.InvalidArgument or a standard error
func (S *Session) Step(job Job) (result StepResult, err error) {
	switch job.Step {
	case retc.StageIn:
		result, err = S.StageIn(job)
	case retc.StageOutTables:
		result, err = S.StageOutTables(job)
	case retc.Compute:
		result, err = S.Compute(job)
	case retc.StageOutResult:
		result, err = S.StageOutResult(job)
	default:
		S.logger.Warn("unknown step ignored", zap.Uint32("step", job.Step))
		result = StepResult{Retc: retc.OK, Method: job.Method}
	}

	return
}

// StageIn - Copies Table1 and Table2 from host memory to card memory. With the hash method it also marks
// every bucket of the hash table as unused.
func (S *Session) StageIn(job Job) (result StepResult, err error) {
	result = StepResult{Retc: retc.Failure, Method: job.Method}
	S.logger.Debug("stage in", zap.Int64("table1", job.SrcTable1.Size), zap.Int64("table2", job.SrcTable2.Size))

	err = S.copyTable("table1", dma.HostToCard, job.SrcTable1, job.DDRTable1.Address)
	if err != nil {
		return
	}
	err = S.copyTable("table2", dma.HostToCard, job.SrcTable2, job.DDRTable2.Address)
	if err != nil {
		return
	}

	if job.Method == retc.HashMethod {
		S.hashTable.Reset()
	}

	result.Retc = retc.OK

	return
}

// StageOutTables - Copies Table1 and Table2 from card memory back to host memory
func (S *Session) StageOutTables(job Job) (result StepResult, err error) {
	result = StepResult{Retc: retc.Failure, Method: job.Method}
	S.logger.Debug("stage out tables", zap.Int64("table1", job.DDRTable1.Size), zap.Int64("table2", job.DDRTable2.Size))

	err = S.copyTable("table1", dma.CardToHost, job.DDRTable1, job.SrcTable1.Address)
	if err != nil {
		return
	}
	err = S.copyTable("table2", dma.CardToHost, job.DDRTable2, job.SrcTable2.Address)
	if err != nil {
		return
	}

	result.Retc = retc.OK

	return
}

// Compute - Builds the hash table over Table1 and probes it with Table2, writing matched Table1 records
// to job.ResTable.Address in card memory. If a bucket overflows during build the probe is not run.
// Methods other than the hash method do nothing.
func (S *Session) Compute(job Job) (result StepResult, err error) {
	result = StepResult{Retc: retc.Failure, Method: job.Method}

	if job.Method != retc.HashMethod {
		S.logger.Warn("compute method not implemented, nothing done", zap.Uint32("method", job.Method))
		result.Retc = retc.OK
		return
	}

	records, err := join.Build(S.card, job.DDRTable1, S.hashTable, S.maxTransferBytes)
	if err != nil {
		if errors.Is(err, retc.HashTableFull{}) {
			S.logger.Warn("hash table full, probe not run", zap.Int64("inserted", records), zap.Error(err))
		}
		err = crerrors.Wrapf(err, "error while building hash table")
		return
	}
	S.logger.Debug("hash table built", zap.Int64("records", records))

	result.ResultSize, err = join.Probe(S.card, join.ProbeConf{
		Table1:           job.DDRTable1,
		Table2:           job.DDRTable2,
		ResultAddress:    job.ResTable.Address,
		MaxTransferBytes: S.maxTransferBytes,
	}, S.hashTable)
	if err != nil {
		result.ResultSize = 0
		err = crerrors.Wrapf(err, "error while probing hash table")
		return
	}
	S.logger.Debug("hash table probed", zap.Int64("result_size", result.ResultSize))

	result.Retc = retc.OK
	result.Method = retc.HashMethod + retc.MethodDone

	return
}

// StageOutResult - Copies job.ResTable.Size bytes of result from card memory to host memory. The result is read
// from job.DDRTable1.Address in card memory and written to job.ResTable.Address in host memory.
func (S *Session) StageOutResult(job Job) (result StepResult, err error) {
	result = StepResult{Retc: retc.Failure, Method: job.Method}
	S.logger.Debug("stage out result", zap.Int64("size", job.ResTable.Size))

	err = S.copyTable("result", dma.CardToHost, Region{Address: job.DDRTable1.Address, Size: job.ResTable.Size}, job.ResTable.Address)
	if err != nil {
		return
	}

	result.Retc = retc.OK
	result.ResultSize = job.ResTable.Size

	return
}

// copyTable - Copies a table of whole records from src region to dstAddress in the direction given
func (S *Session) copyTable(name string, direction dma.Direction, src Region, dstAddress int64) (err error) {
	if src.Size%conf.RecordWidth != 0 {
		err = retc.NewInvalidArgument(fmt.Sprintf("%s size %d is not a multiple of %d", name, src.Size, conf.RecordWidth))
		return
	}

	transfer := dma.Transfer{
		Direction:        direction,
		SrcAddress:       src.Address,
		DstAddress:       dstAddress,
		Size:             src.Size,
		MaxTransferBytes: S.maxTransferBytes,
	}
	if direction == dma.HostToCard {
		transfer.Src, transfer.Dst = S.host, S.card
	} else {
		transfer.Src, transfer.Dst = S.card, S.host
	}

	chunks, err := dma.Copy(transfer)
	if err != nil {
		err = crerrors.Wrapf(err, "error while copying %s", name)
		return
	}
	S.logger.Debug("copied", zap.String("table", name), zap.Stringer("direction", direction), zap.Int64("chunks", chunks))

	return
}
