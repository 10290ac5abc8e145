package regs

import (
	"encoding/binary"
	"fmt"

	"github.com/gostonefire/snapintersect/internal/conf"
	"github.com/gostonefire/snapintersect/internal/model"
	"github.com/gostonefire/snapintersect/retc"
)

// Control word bits
const (
	ControlStart uint32 = 0x01
	ControlIdle  uint32 = 0x04
	ControlRun   uint32 = 0x08
)

// RegisterBlockLength - Length of the action register block
const RegisterBlockLength int64 = 96

// controlOffset - Register offset to the control word - 4 bytes
const controlOffset int64 = 0

// retcOffset - Register offset to the return code - 4 bytes
const retcOffset int64 = 4

// srcTable1Offset - Register offset to table1 in host memory - 8 bytes address, 4 bytes size, 4 bytes padding
const srcTable1Offset int64 = 8

// srcTable2Offset - Register offset to table2 in host memory
const srcTable2Offset int64 = 24

// ddrTable1Offset - Register offset to table1 in card memory
const ddrTable1Offset int64 = 40

// ddrTable2Offset - Register offset to table2 in card memory
const ddrTable2Offset int64 = 56

// resTableOffset - Register offset to the result table
const resTableOffset int64 = 72

// methodOffset - Register offset to the method - 4 bytes
const methodOffset int64 = 88

// stepOffset - Register offset to the step - 4 bytes
const stepOffset int64 = 92

// Registers - Represents the action register block
type Registers struct {
	Control uint32
	Retc    uint32
	Job     model.Job
}

// Decode - Converts a register block to a Registers struct
func Decode(buf []byte) (registers Registers, err error) {
	actual := int64(len(buf))
	if actual < RegisterBlockLength {
		err = fmt.Errorf("length of data in buf (%d) less than register block length (%d)", actual, RegisterBlockLength)
		return
	}

	registers = Registers{
		Control: binary.LittleEndian.Uint32(buf[controlOffset:]),
		Retc:    binary.LittleEndian.Uint32(buf[retcOffset:]),
		Job: model.Job{
			SrcTable1: bytesToRegion(buf[srcTable1Offset:]),
			SrcTable2: bytesToRegion(buf[srcTable2Offset:]),
			DDRTable1: bytesToRegion(buf[ddrTable1Offset:]),
			DDRTable2: bytesToRegion(buf[ddrTable2Offset:]),
			ResTable:  bytesToRegion(buf[resTableOffset:]),
			Method:    binary.LittleEndian.Uint32(buf[methodOffset:]),
			Step:      binary.LittleEndian.Uint32(buf[stepOffset:]),
		},
	}

	return
}

// Encode - Converts a Registers struct to a register block
func Encode(registers Registers) (buf []byte) {
	buf = make([]byte, RegisterBlockLength)

	binary.LittleEndian.PutUint32(buf[controlOffset:], registers.Control)
	binary.LittleEndian.PutUint32(buf[retcOffset:], registers.Retc)
	regionToBytes(buf[srcTable1Offset:], registers.Job.SrcTable1)
	regionToBytes(buf[srcTable2Offset:], registers.Job.SrcTable2)
	regionToBytes(buf[ddrTable1Offset:], registers.Job.DDRTable1)
	regionToBytes(buf[ddrTable2Offset:], registers.Job.DDRTable2)
	regionToBytes(buf[resTableOffset:], registers.Job.ResTable)
	binary.LittleEndian.PutUint32(buf[methodOffset:], registers.Job.Method)
	binary.LittleEndian.PutUint32(buf[stepOffset:], registers.Job.Step)

	return
}

// CheckJob - Returns an error of type retc.InvalidArgument if a region of the job can not be held by the
// register block, addresses must not be negative and sizes must fit the 32 bit size registers
func CheckJob(job model.Job) (err error) {
	regions := []struct {
		name   string
		region model.Region
	}{
		{"src_table1", job.SrcTable1},
		{"src_table2", job.SrcTable2},
		{"ddr_table1", job.DDRTable1},
		{"ddr_table2", job.DDRTable2},
		{"res_table", job.ResTable},
	}

	for _, r := range regions {
		if r.region.Address < 0 || r.region.Size < 0 || r.region.Size > conf.MaxTableBytes {
			err = retc.NewInvalidArgument(fmt.Sprintf("%s region (address %d, size %d) does not fit the registers", r.name, r.region.Address, r.region.Size))
			return
		}
	}

	return
}

// bytesToRegion - Converts an address/size register pair to a Region
func bytesToRegion(buf []byte) model.Region {
	return model.Region{
		Address: int64(binary.LittleEndian.Uint64(buf)),
		Size:    int64(binary.LittleEndian.Uint32(buf[8:])),
	}
}

// regionToBytes - Writes a Region as an address/size register pair
func regionToBytes(buf []byte, region model.Region) {
	binary.LittleEndian.PutUint64(buf, uint64(region.Address))
	binary.LittleEndian.PutUint32(buf[8:], uint32(region.Size))
}
