package snapintersect

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gostonefire/snapintersect/internal/conf"
	"github.com/gostonefire/snapintersect/internal/memory"
	"github.com/gostonefire/snapintersect/retc"
	"go.uber.org/zap"
)

// Layout - Placement of all regions of one run in host and card memory.
// Host memory holds Table1, Table2 and room for a result as large as Table2, card memory holds the staged
// tables, the result and the hash table, all at non overlapping addresses.
type Layout struct {
	HostSize         int64
	CardSize         int64
	SrcTable1        Region
	SrcTable2        Region
	HostResult       Region
	DDRTable1        Region
	DDRTable2        Region
	DDRResult        Region
	HashTableAddress int64
}

// NewLayout - Returns a Layout for tables of the given sizes and a hash table of 2^hashBits buckets
func NewLayout(table1Size, table2Size, hashBits int64) (layout Layout, err error) {
	if table1Size < 0 || table1Size%conf.RecordWidth != 0 || table2Size < 0 || table2Size%conf.RecordWidth != 0 {
		err = retc.NewInvalidArgument(fmt.Sprintf("table sizes (%d, %d) must be multiples of %d", table1Size, table2Size, conf.RecordWidth))
		return
	}
	if table1Size > conf.MaxTableBytes || table2Size > conf.MaxTableBytes {
		err = retc.NewInvalidArgument(fmt.Sprintf("table sizes (%d, %d) exceed %d", table1Size, table2Size, conf.MaxTableBytes))
		return
	}
	if hashBits == 0 {
		hashBits = conf.DefaultHashBits
	}
	if hashBits < 1 || hashBits > conf.MaxHashBits {
		err = retc.NewInvalidArgument(fmt.Sprintf("hash bits must be within [1, %d]", conf.MaxHashBits))
		return
	}

	layout.SrcTable1 = Region{Address: 0, Size: table1Size}
	layout.SrcTable2 = Region{Address: layout.SrcTable1.End(), Size: table2Size}
	layout.HostResult = Region{Address: layout.SrcTable2.End(), Size: table2Size}
	layout.HostSize = layout.HostResult.End()

	layout.DDRTable1 = Region{Address: 0, Size: table1Size}
	layout.DDRTable2 = Region{Address: layout.DDRTable1.End(), Size: table2Size}
	layout.DDRResult = Region{Address: layout.DDRTable2.End(), Size: table2Size}
	layout.HashTableAddress = layout.DDRResult.End()
	layout.CardSize = layout.HashTableAddress + (int64(1)<<hashBits)*conf.BucketLineLength

	return
}

// Jobs - Returns the register contents for steps 1, 3 and 5 the way a host programs them for a full run.
// The result size of step 5 must be filled in from the outcome of step 3.
func (L Layout) Jobs() (stageIn, compute, stageOutResult Job) {
	stageIn = Job{
		SrcTable1: L.SrcTable1,
		SrcTable2: L.SrcTable2,
		DDRTable1: L.DDRTable1,
		DDRTable2: L.DDRTable2,
		Method:    retc.HashMethod,
		Step:      retc.StageIn,
	}

	compute = stageIn
	compute.ResTable = Region{Address: L.DDRResult.Address}
	compute.Step = retc.Compute

	// The result is staged out from the address held in the table1 card register
	stageOutResult = stageIn
	stageOutResult.DDRTable1 = Region{Address: L.DDRResult.Address}
	stageOutResult.ResTable = Region{Address: L.HostResult.Address}
	stageOutResult.Step = retc.StageOutResult

	return
}

// RunInfo - Information about a completed run
//   - RunID identifies the session in logs
//   - ResultRecords is the number of records in the result
//   - Stat holds statistics on the hash table built over Table1
type RunInfo struct {
	RunID         string
	ResultRecords int64
	Stat          TableStat
}

// IntersectConf - Is a struct to be passed in the call to Intersect
//   - HashBits is the number of bits in a hash code, 0 gives the default of 16
//   - MaxTransferBytes is the largest chunk moved in one bulk transfer, 0 gives the default
//   - Logger is an optional logger
type IntersectConf struct {
	HashBits         int64
	MaxTransferBytes int64
	Logger           *zap.Logger
}

// Intersect - Runs a complete intersection of two tables held in byte slices, using heap memories for host and
// card. It stages in, computes and stages out the result.
//   - table1 is the build side, its length must be a multiple of RecordWidth
//   - table2 is the probe side, its length must be a multiple of RecordWidth
//   - intersectConf is an IntersectConf struct
//
// It returns:
//   - result holds the Table1 records matching a Table2 record, in Table2 order
//   - runInfo is a RunInfo struct
//   - err is of type retc.HashTableFull if a bucket overflowed, retc.InvalidArgument or a standard error
func Intersect(table1, table2 []byte, intersectConf IntersectConf) (result []byte, runInfo RunInfo, err error) {
	layout, err := NewLayout(int64(len(table1)), int64(len(table2)), intersectConf.HashBits)
	if err != nil {
		return
	}

	host := memory.NewArena(layout.HostSize)
	copy(host.Bytes()[layout.SrcTable1.Address:], table1)
	copy(host.Bytes()[layout.SrcTable2.Address:], table2)

	session, sessionInfo, err := NewSession(SessionConf{
		Host:             host,
		Card:             memory.NewArena(layout.CardSize),
		HashTableAddress: layout.HashTableAddress,
		HashBits:         intersectConf.HashBits,
		MaxTransferBytes: intersectConf.MaxTransferBytes,
		Logger:           intersectConf.Logger,
	})
	if err != nil {
		return
	}
	runInfo.RunID = sessionInfo.RunID

	stageIn, compute, stageOutResult := layout.Jobs()

	_, err = session.Step(stageIn)
	if err != nil {
		return
	}
	computed, err := session.Step(compute)
	if err != nil {
		return
	}
	stageOutResult.ResTable.Size = computed.ResultSize
	_, err = session.Step(stageOutResult)
	if err != nil {
		return
	}

	runInfo.ResultRecords = computed.ResultSize / conf.RecordWidth
	runInfo.Stat, err = session.Stat(false)
	if err != nil {
		err = errors.Wrapf(err, "error while collecting hash table statistics")
		return
	}

	result = make([]byte, computed.ResultSize)
	copy(result, host.Bytes()[layout.HostResult.Address:])

	return
}
