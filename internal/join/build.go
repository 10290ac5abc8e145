// Package join implements the two compute phases of the hash intersection: building a hash table over
// Table1 and probing it with every record of Table2.
package join

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gostonefire/snapintersect/internal/conf"
	"github.com/gostonefire/snapintersect/internal/hashtable"
	"github.com/gostonefire/snapintersect/internal/memory"
	"github.com/gostonefire/snapintersect/internal/model"
	"github.com/gostonefire/snapintersect/retc"
)

// Build - Inserts the offset of every Table1 record, relative to the start of Table1, into the hash table.
// Records are processed in table order and read from card memory in chunks of at most maxTransferBytes.
// The first bucket overflow aborts the build and no further records are processed.
//   - card is the card memory holding Table1 and the hash table
//   - table1 is the region of Table1 in card memory
//   - ht is a hash table that has been reset
//   - maxTransferBytes is the largest chunk read in one go, a multiple of the record width
//
// It returns:
//   - records is the number of records inserted
//   - err is of type retc.HashTableFull if a bucket overflowed, or a standard error
func Build(card memory.Memory, table1 model.Region, ht *hashtable.HashTable, maxTransferBytes int64) (records int64, err error) {
	err = checkTable(card, table1, maxTransferBytes)
	if err != nil {
		err = errors.Wrapf(err, "table1")
		return
	}

	var bucketNo int64
	var offset uint32
	keyBuf := make([]byte, chunkSize(table1.Size, maxTransferBytes))

	err = forEachChunk(card, table1, keyBuf, func(chunk []byte) (stop bool, err error) {
		for i := int64(0); i < int64(len(chunk)); i += conf.RecordWidth {
			bucketNo, err = ht.GetBucketNo(chunk[i : i+conf.RecordWidth])
			if err != nil {
				return
			}

			_, err = ht.Insert(bucketNo, offset)
			if err != nil {
				err = errors.Wrapf(err, "inserting table1 offset %d", offset)
				return
			}

			offset += uint32(conf.RecordWidth)
			records++
		}

		return
	})

	return
}

// checkTable - Checks that a table is whole records within card memory and that chunks hold whole records
func checkTable(card memory.Memory, table model.Region, maxTransferBytes int64) (err error) {
	if table.Size > conf.MaxTableBytes {
		err = retc.NewInvalidArgument(fmt.Sprintf("table size %d exceeds %d", table.Size, conf.MaxTableBytes))
		return
	}
	if table.Size%conf.RecordWidth != 0 {
		err = retc.NewInvalidArgument(fmt.Sprintf("table size %d is not a multiple of %d", table.Size, conf.RecordWidth))
		return
	}
	if maxTransferBytes <= 0 || maxTransferBytes%conf.RecordWidth != 0 {
		err = retc.NewInvalidArgument(fmt.Sprintf("max transfer bytes %d is not a positive multiple of %d", maxTransferBytes, conf.RecordWidth))
		return
	}

	err = memory.CheckRegion(card, table.Address, table.Size)

	return
}

// forEachChunk - Reads region from card memory chunk by chunk into buf and hands each chunk to fn.
// Iteration ends at the end of the region, when fn returns stop or when fn returns an error.
func forEachChunk(card memory.Memory, region model.Region, buf []byte, fn func(chunk []byte) (stop bool, err error)) (err error) {
	var readBytes int64
	var stop bool
	addr := region.Address
	leftBytes := region.Size
	for leftBytes > 0 {
		readBytes = leftBytes
		if readBytes > int64(len(buf)) {
			readBytes = int64(len(buf))
		}

		_, err = card.ReadAt(buf[:readBytes], addr)
		if err != nil {
			return
		}

		stop, err = fn(buf[:readBytes])
		if err != nil || stop {
			return
		}

		leftBytes -= readBytes
		addr += readBytes
	}

	return
}

// chunkSize - Returns the bounce buffer size for a table, never more than maxTransferBytes
func chunkSize(tableSize, maxTransferBytes int64) int64 {
	if tableSize < maxTransferBytes {
		return tableSize
	}

	return maxTransferBytes
}
