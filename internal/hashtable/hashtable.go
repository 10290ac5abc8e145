package hashtable

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gostonefire/snapintersect/hashfunc"
	"github.com/gostonefire/snapintersect/internal/conf"
	"github.com/gostonefire/snapintersect/internal/memory"
	"github.com/gostonefire/snapintersect/internal/model"
	"github.com/gostonefire/snapintersect/internal/utils"
	"github.com/gostonefire/snapintersect/retc"
)

// HashTable - Represents a directly addressed table of fixed capacity buckets stored in card memory.
// Each bucket occupies one line at address + index * BucketLineLength. Whether a bucket is in use is tracked
// in a bitmap held by the HashTable itself, so a reset only needs to clear the bitmap and stale lines in
// card memory are never read.
type HashTable struct {
	card            memory.Memory
	address         int64
	hashAlgorithm   hashfunc.HashAlgorithm
	numberOfBuckets int64
	used            []uint64
}

// NewHashTable - Returns a pointer to a new HashTable with all buckets unused.
//   - card is the memory to store bucket lines in
//   - address is where in card the first bucket line is stored
//   - hashAlgorithm is the hash function producing bucket indexes, its table size must be a power of 2
//
// It returns:
//   - hashTable is a pointer to the created HashTable
//   - err is of type retc.InvalidArgument or retc.OutOfBounds if the table does not fit, or a standard error
func NewHashTable(card memory.Memory, address int64, hashAlgorithm hashfunc.HashAlgorithm) (hashTable *HashTable, err error) {
	if hashAlgorithm == nil {
		err = retc.NewInvalidArgument("hash algorithm must be given")
		return
	}

	numberOfBuckets := hashAlgorithm.GetTableSize()
	if !utils.IsPowerOf2(numberOfBuckets) {
		err = retc.NewInvalidArgument(fmt.Sprintf("number of buckets (%d) must be a power of 2", numberOfBuckets))
		return
	}
	if address%conf.BucketLineLength != 0 {
		err = retc.NewInvalidArgument(fmt.Sprintf("hash table address (%d) must be aligned to %d bytes", address, conf.BucketLineLength))
		return
	}

	err = memory.CheckRegion(card, address, numberOfBuckets*conf.BucketLineLength)
	if err != nil {
		err = errors.Wrapf(err, "hash table does not fit in card memory")
		return
	}

	hashTable = &HashTable{
		card:            card,
		address:         address,
		hashAlgorithm:   hashAlgorithm,
		numberOfBuckets: numberOfBuckets,
		used:            make([]uint64, (numberOfBuckets+63)/64),
	}

	return
}

// Reset - Marks all buckets as unused
func (H *HashTable) Reset() {
	for i := range H.used {
		H.used[i] = 0
	}
}

// GetBucketNo - Returns which bucket number that the given record results in
func (H *HashTable) GetBucketNo(record []byte) (bucketNo int64, err error) {
	bucketNo = H.hashAlgorithm.HashFunc(record)
	if bucketNo < 0 || bucketNo >= H.numberOfBuckets {
		err = errors.AssertionFailedf("received bucket number %d from hash algorithm is outside permitted range", bucketNo)
		return
	}

	return
}

// IsUsed - Returns true if the bucket has at least one offset stored
func (H *HashTable) IsUsed(bucketNo int64) bool {
	return H.used[bucketNo>>6]&(1<<(bucketNo&63)) != 0
}

// GetBucket - Returns the bucket with the given number. An unused bucket is returned empty without reading card memory.
func (H *HashTable) GetBucket(bucketNo int64) (bucket model.Bucket, err error) {
	bucketAddress := H.bucketAddress(bucketNo)
	if !H.IsUsed(bucketNo) {
		bucket = model.Bucket{BucketAddress: bucketAddress}
		return
	}

	buf := make([]byte, conf.BucketLineLength)
	_, err = H.card.ReadAt(buf, bucketAddress)
	if err != nil {
		err = errors.Wrapf(err, "error while reading bucket %d", bucketNo)
		return
	}

	bucket, err = bytesToBucket(buf, bucketAddress)

	return
}

// Insert - Appends a Table1 offset to a bucket.
// It returns:
//   - count is the number of offsets in the bucket after insert
//   - err is of type retc.HashTableFull if the bucket already holds BucketCapacity offsets, or a standard error
func (H *HashTable) Insert(bucketNo int64, offset uint32) (count int64, err error) {
	var bucket model.Bucket
	if !H.IsUsed(bucketNo) {
		bucket = model.Bucket{Used: true, BucketAddress: H.bucketAddress(bucketNo)}
	} else {
		bucket, err = H.GetBucket(bucketNo)
		if err != nil {
			return
		}

		if bucket.Count >= conf.BucketCapacity {
			err = retc.NewHashTableFull(fmt.Sprintf("bucket %d is full with %d entries", bucketNo, bucket.Count))
			return
		}
	}

	bucket.Offsets[bucket.Count] = offset
	bucket.Count++

	_, err = H.card.WriteAt(bucketToBytes(bucket), bucket.BucketAddress)
	if err != nil {
		err = errors.Wrapf(err, "error while writing bucket %d", bucketNo)
		return
	}

	// The bucket is only marked used once its line is in card memory
	H.used[bucketNo>>6] |= 1 << (bucketNo & 63)
	count = bucket.Count

	return
}

// GetStorageParameters - Returns a struct with the layout of the hash table in card memory
func (H *HashTable) GetStorageParameters() (params model.StorageParameters) {
	params = model.StorageParameters{
		HashBits:         utils.Log2(H.numberOfBuckets),
		NumberOfBuckets:  H.numberOfBuckets,
		BucketCapacity:   conf.BucketCapacity,
		BucketLineLength: conf.BucketLineLength,
		HashTableAddress: H.address,
		HashTableSize:    H.numberOfBuckets * conf.BucketLineLength,
	}

	return
}

// Stat - Walks through all used buckets and produce a TableStat struct with information.
//   - includeDistribution set to true will include a slice of length NumberOfBuckets with number of offsets per bucket, false will set BucketDistribution to nil.
func (H *HashTable) Stat(includeDistribution bool) (tableStat model.TableStat, err error) {
	if includeDistribution {
		tableStat.BucketDistribution = make([]int64, H.numberOfBuckets)
	}

	var bucket model.Bucket
	for i := int64(0); i < H.numberOfBuckets; i++ {
		if !H.IsUsed(i) {
			continue
		}

		bucket, err = H.GetBucket(i)
		if err != nil {
			return
		}

		tableStat.UsedBuckets++
		tableStat.Offsets += bucket.Count
		if bucket.Count > tableStat.FullestBucket {
			tableStat.FullestBucket = bucket.Count
		}
		if bucket.Count == conf.BucketCapacity {
			tableStat.FullBuckets++
		}
		if includeDistribution {
			tableStat.BucketDistribution[i] = bucket.Count
		}
	}

	return
}

// bucketAddress - Returns the card memory address of a bucket line
func (H *HashTable) bucketAddress(bucketNo int64) int64 {
	return H.address + bucketNo*conf.BucketLineLength
}
