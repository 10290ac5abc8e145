package dma

import (
	"github.com/cockroachdb/errors"
	"github.com/gostonefire/snapintersect/internal/memory"
)

// Direction - Direction of a bulk transfer, it only names the transfer, copy semantics are the same both ways
type Direction int

const (
	HostToCard Direction = iota
	CardToHost
)

// String - Returns a printable name of the direction
func (D Direction) String() string {
	switch D {
	case HostToCard:
		return "host->card"
	case CardToHost:
		return "card->host"
	default:
		return "unknown"
	}
}

// Transfer - Describes one bulk transfer between two memories
//   - Src and SrcAddress is where to read from
//   - Dst and DstAddress is where to write to
//   - Size is the total number of bytes to move, it may exceed MaxTransferBytes
//   - MaxTransferBytes is the largest chunk moved in one go
type Transfer struct {
	Direction        Direction
	Src              memory.Memory
	SrcAddress       int64
	Dst              memory.Memory
	DstAddress       int64
	Size             int64
	MaxTransferBytes int64
}

// Copy - Moves Size bytes from source to destination through a bounce buffer of at most MaxTransferBytes.
// Both regions are checked before anything is moved so a short region never results in a partial copy.
// It returns:
//   - chunks is the number of chunks the transfer was split into
//   - err is of type retc.OutOfBounds if any region is outside its memory, or a standard error
func Copy(transfer Transfer) (chunks int64, err error) {
	if transfer.MaxTransferBytes <= 0 {
		err = errors.AssertionFailedf("max transfer bytes must be positive, got %d", transfer.MaxTransferBytes)
		return
	}

	err = memory.CheckRegion(transfer.Src, transfer.SrcAddress, transfer.Size)
	if err != nil {
		err = errors.Wrapf(err, "%s source", transfer.Direction)
		return
	}
	err = memory.CheckRegion(transfer.Dst, transfer.DstAddress, transfer.Size)
	if err != nil {
		err = errors.Wrapf(err, "%s destination", transfer.Direction)
		return
	}

	bufSize := transfer.MaxTransferBytes
	if transfer.Size < bufSize {
		bufSize = transfer.Size
	}
	buf := make([]byte, bufSize)

	var xferOffset, xferSize int64
	leftBytes := transfer.Size
	for leftBytes > 0 {
		xferSize = leftBytes
		if xferSize > transfer.MaxTransferBytes {
			xferSize = transfer.MaxTransferBytes
		}

		_, err = transfer.Src.ReadAt(buf[:xferSize], transfer.SrcAddress+xferOffset)
		if err != nil {
			err = errors.Wrapf(err, "error while reading chunk at offset %d", xferOffset)
			return
		}
		_, err = transfer.Dst.WriteAt(buf[:xferSize], transfer.DstAddress+xferOffset)
		if err != nil {
			err = errors.Wrapf(err, "error while writing chunk at offset %d", xferOffset)
			return
		}

		leftBytes -= xferSize
		xferOffset += xferSize
		chunks++
	}

	return
}
