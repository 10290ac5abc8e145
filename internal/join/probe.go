package join

import (
	"github.com/cockroachdb/errors"
	"github.com/gostonefire/snapintersect/internal/conf"
	"github.com/gostonefire/snapintersect/internal/hashtable"
	"github.com/gostonefire/snapintersect/internal/memory"
	"github.com/gostonefire/snapintersect/internal/model"
	"github.com/gostonefire/snapintersect/internal/utils"
)

// ProbeConf - Is a struct to be passed in the call to Probe describing where the tables are in card memory.
//   - Table1 is the build side, stored offsets in the hash table are relative to its address
//   - Table2 is the probe side
//   - ResultAddress is where matched Table1 records are written, one after the other
//   - MaxTransferBytes is the largest chunk of Table2 read in one go
type ProbeConf struct {
	Table1           model.Region
	Table2           model.Region
	ResultAddress    int64
	MaxTransferBytes int64
}

// Probe - Looks up every Table2 record in the hash table. For a used bucket the stored offsets are scanned in
// order and each referenced Table1 record is compared byte by byte with the Table2 record. On the first match
// the Table1 record is appended to the result and the rest of the bucket is skipped.
//   - card is the card memory holding both tables, the hash table and the result region
//   - probeConf describes the regions involved
//   - ht is the hash table built over Table1
//
// It returns:
//   - resultSize is the number of bytes written to the result region
//   - err is of type retc.OutOfBounds if the result does not fit in card memory, or a standard error
func Probe(card memory.Memory, probeConf ProbeConf, ht *hashtable.HashTable) (resultSize int64, err error) {
	err = checkTable(card, probeConf.Table2, probeConf.MaxTransferBytes)
	if err != nil {
		err = errors.Wrapf(err, "table2")
		return
	}

	var bucketNo int64
	var bucket model.Bucket
	var record []byte
	nodeA := make([]byte, conf.RecordWidth)
	keyBuf := make([]byte, chunkSize(probeConf.Table2.Size, probeConf.MaxTransferBytes))
	writeAddr := probeConf.ResultAddress

	err = forEachChunk(card, probeConf.Table2, keyBuf, func(chunk []byte) (stop bool, err error) {
		for i := int64(0); i < int64(len(chunk)); i += conf.RecordWidth {
			record = chunk[i : i+conf.RecordWidth]

			bucketNo, err = ht.GetBucketNo(record)
			if err != nil {
				return
			}
			if !ht.IsUsed(bucketNo) {
				continue
			}

			bucket, err = ht.GetBucket(bucketNo)
			if err != nil {
				return
			}

			for j := int64(0); j < bucket.Count; j++ {
				_, err = card.ReadAt(nodeA, probeConf.Table1.Address+int64(bucket.Offsets[j]))
				if err != nil {
					err = errors.Wrapf(err, "reading table1 offset %d", bucket.Offsets[j])
					return
				}

				if utils.Compare(nodeA, record) == 0 {
					_, err = card.WriteAt(nodeA, writeAddr)
					if err != nil {
						err = errors.Wrapf(err, "writing result record %d", resultSize/conf.RecordWidth)
						return
					}
					resultSize += conf.RecordWidth
					writeAddr += conf.RecordWidth
					break
				}
			}
		}

		return
	})

	return
}
