//go:build unit

package hashtable

import (
	"fmt"
	"github.com/gostonefire/snapintersect/internal/conf"
	"github.com/gostonefire/snapintersect/internal/hash"
	"github.com/gostonefire/snapintersect/internal/memory"
	"github.com/gostonefire/snapintersect/retc"
	"github.com/stretchr/testify/assert"
	"testing"
)

// failingWrites - A memory refusing all writes
type failingWrites struct {
	*memory.Arena
}

func (f failingWrites) WriteAt(p []byte, off int64) (int, error) {
	return 0, fmt.Errorf("write refused at %d", off)
}

type oddTableSize struct{}

func (o oddTableSize) HashFunc(record []byte) int64 { return 0 }
func (o oddTableSize) GetTableSize() int64          { return 12 }

func TestNewHashTable(t *testing.T) {
	t.Run("creates a new hash table", func(t *testing.T) {
		// Prepare
		card := memory.NewArena(1024 + 256*conf.BucketLineLength)

		// Execute
		ht, err := NewHashTable(card, 1024, hash.NewFoldHashAlgorithm(8))

		// Check
		assert.NoError(t, err, "creates hash table")
		sp := ht.GetStorageParameters()
		assert.Equal(t, int64(8), sp.HashBits, "hash bits")
		assert.Equal(t, int64(256), sp.NumberOfBuckets, "number of buckets")
		assert.Equal(t, int64(15), sp.BucketCapacity, "bucket capacity")
		assert.Equal(t, int64(1024), sp.HashTableAddress, "address")
		assert.Equal(t, 256*conf.BucketLineLength, sp.HashTableSize, "table size")
	})

	t.Run("fails when table does not fit", func(t *testing.T) {
		// Prepare
		card := memory.NewArena(255 * conf.BucketLineLength)

		// Execute
		_, err := NewHashTable(card, 0, hash.NewFoldHashAlgorithm(8))

		// Check
		assert.ErrorIs(t, err, retc.OutOfBounds{}, "table too big")
	})

	t.Run("fails on bad arguments", func(t *testing.T) {
		// Prepare
		card := memory.NewArena(1 << 20)

		// Execute
		_, errNil := NewHashTable(card, 0, nil)
		_, errSize := NewHashTable(card, 0, oddTableSize{})
		_, errAlign := NewHashTable(card, 10, hash.NewFoldHashAlgorithm(4))

		// Check
		assert.ErrorIs(t, errNil, retc.InvalidArgument{}, "nil algorithm")
		assert.ErrorIs(t, errSize, retc.InvalidArgument{}, "table size not power of 2")
		assert.ErrorIs(t, errAlign, retc.InvalidArgument{}, "unaligned address")
	})
}

func TestHashTable_Insert(t *testing.T) {
	t.Run("inserts offsets in order", func(t *testing.T) {
		// Prepare
		card := memory.NewArena(16 * conf.BucketLineLength)
		ht, err := NewHashTable(card, 0, hash.NewFoldHashAlgorithm(4))
		assert.NoError(t, err, "creates hash table")

		// Execute
		for i := 0; i < 3; i++ {
			count, err := ht.Insert(5, uint32(i*64))
			assert.NoErrorf(t, err, "inserts offset #%d", i)
			assert.Equalf(t, int64(i+1), count, "count after insert #%d", i)
		}

		// Check
		assert.True(t, ht.IsUsed(5), "bucket in use")
		assert.False(t, ht.IsUsed(4), "other bucket unused")

		bucket, err := ht.GetBucket(5)
		assert.NoError(t, err, "gets bucket")
		assert.Equal(t, int64(3), bucket.Count, "count")
		assert.Equal(t, []uint32{0, 64, 128}, bucket.Offsets[:3], "offsets in storage order")
		assert.Equal(t, 5*conf.BucketLineLength, bucket.BucketAddress, "bucket address")
	})

	t.Run("fails when inserting beyond capacity", func(t *testing.T) {
		// Prepare
		card := memory.NewArena(16 * conf.BucketLineLength)
		ht, err := NewHashTable(card, 0, hash.NewFoldHashAlgorithm(4))
		assert.NoError(t, err, "creates hash table")

		for i := int64(0); i < conf.BucketCapacity; i++ {
			_, err = ht.Insert(7, uint32(i*64))
			assert.NoErrorf(t, err, "inserts offset #%d", i)
		}

		// Execute
		_, err = ht.Insert(7, 15*64)

		// Check
		assert.ErrorIs(t, err, retc.HashTableFull{}, "bucket full")
		bucket, err := ht.GetBucket(7)
		assert.NoError(t, err, "gets bucket")
		assert.Equal(t, conf.BucketCapacity, bucket.Count, "count stays at capacity")
	})

	t.Run("reset ignores stale lines in card memory", func(t *testing.T) {
		// Prepare
		card := memory.NewArena(16 * conf.BucketLineLength)
		ht, err := NewHashTable(card, 0, hash.NewFoldHashAlgorithm(4))
		assert.NoError(t, err, "creates hash table")

		for i := 0; i < 4; i++ {
			_, err = ht.Insert(2, uint32(i*64))
			assert.NoError(t, err, "inserts offset")
		}

		// Execute
		ht.Reset()
		count, err := ht.Insert(2, 640)

		// Check
		assert.NoError(t, err, "inserts after reset")
		assert.Equal(t, int64(1), count, "bucket starts over")
		bucket, err := ht.GetBucket(2)
		assert.NoError(t, err, "gets bucket")
		assert.Equal(t, uint32(640), bucket.Offsets[0], "new first offset")
	})
}

func TestHashTable_InsertWriteFailure(t *testing.T) {
	t.Run("bucket stays unused when its line can not be written", func(t *testing.T) {
		// Prepare
		card := failingWrites{Arena: memory.NewArena(256 * conf.BucketLineLength)}
		ht, err := NewHashTable(card, 0, hash.NewFoldHashAlgorithm(8))
		assert.NoError(t, err, "creates hash table")

		// Execute
		count, err := ht.Insert(7, 64)

		// Check
		assert.Error(t, err, "write fails")
		assert.Zero(t, count, "nothing inserted")
		assert.False(t, ht.IsUsed(7), "bucket not marked used")
		bucket, err := ht.GetBucket(7)
		assert.NoError(t, err, "gets bucket")
		assert.Zero(t, bucket.Count, "bucket empty")
		stat, err := ht.Stat(false)
		assert.NoError(t, err, "gets stat")
		assert.Zero(t, stat.UsedBuckets, "no used buckets")
	})
}

func TestHashTable_Stat(t *testing.T) {
	t.Run("collects statistics", func(t *testing.T) {
		// Prepare
		card := memory.NewArena(16 * conf.BucketLineLength)
		ht, err := NewHashTable(card, 0, hash.NewFoldHashAlgorithm(4))
		assert.NoError(t, err, "creates hash table")

		for i := int64(0); i < conf.BucketCapacity; i++ {
			_, err = ht.Insert(1, uint32(i*64))
			assert.NoError(t, err, "inserts offset")
		}
		_, err = ht.Insert(9, 0)
		assert.NoError(t, err, "inserts offset")

		// Execute
		stat, err := ht.Stat(true)

		// Check
		assert.NoError(t, err, "gets statistics")
		assert.Equal(t, int64(2), stat.UsedBuckets, "used buckets")
		assert.Equal(t, int64(16), stat.Offsets, "offsets")
		assert.Equal(t, int64(15), stat.FullestBucket, "fullest bucket")
		assert.Equal(t, int64(1), stat.FullBuckets, "full buckets")
		assert.Equal(t, 16, len(stat.BucketDistribution), "distribution per bucket")
		assert.Equal(t, int64(1), stat.BucketDistribution[9], "distribution for bucket 9")
	})
}

func TestHashTable_GetBucketNo(t *testing.T) {
	t.Run("returns bucket from hash algorithm", func(t *testing.T) {
		// Prepare
		card := memory.NewArena(256 * conf.BucketLineLength)
		ht, err := NewHashTable(card, 0, hash.NewFoldHashAlgorithm(8))
		assert.NoError(t, err, "creates hash table")
		record := make([]byte, conf.RecordWidth)
		record[0] = 7
		record[10] = 3

		// Execute
		bucketNo, err := ht.GetBucketNo(record)

		// Check
		assert.NoError(t, err, "gets bucket number")
		assert.Equal(t, int64(10), bucketNo, "bucket number")
	})
}
