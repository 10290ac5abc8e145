//go:build unit

package hash

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestFoldHashAlgorithm_GetTableSize(t *testing.T) {
	t.Run("returns correct table size", func(t *testing.T) {
		// Prepare
		h := NewFoldHashAlgorithm(16)

		// Execute
		tableSize := h.GetTableSize()

		// Check
		assert.Equal(t, int64(65536), tableSize, "correct tableSize value")
	})
}

func TestFoldHashAlgorithm_HashFunc(t *testing.T) {
	t.Run("sums bytes when groups are 8 bits", func(t *testing.T) {
		// Prepare
		record := make([]byte, 64)
		record[0] = 1
		record[1] = 2
		record[63] = 250

		h := NewFoldHashAlgorithm(8)

		// Execute
		bucketNo := h.HashFunc(record)

		// Check
		assert.Equal(t, int64(253), bucketNo, "sum of bytes modulo 256")
	})

	t.Run("wraps sum modulo table size", func(t *testing.T) {
		// Prepare
		record := make([]byte, 64)
		record[0] = 200
		record[1] = 100

		h := NewFoldHashAlgorithm(8)

		// Execute
		bucketNo := h.HashFunc(record)

		// Check
		assert.Equal(t, int64(44), bucketNo, "300 wraps to 44")
	})

	t.Run("groups of 16 bits are little endian", func(t *testing.T) {
		// Prepare
		record := make([]byte, 64)
		record[0] = 0x01
		record[1] = 0x02
		record[2] = 0x10

		h := NewFoldHashAlgorithm(16)

		// Execute
		bucketNo := h.HashFunc(record)

		// Check
		assert.Equal(t, int64(0x0211), bucketNo, "0x0201 + 0x0010")
	})

	t.Run("last group is truncated at the record width", func(t *testing.T) {
		// Prepare
		record := make([]byte, 64)
		for i := range record {
			record[i] = 0xff
		}

		h := NewFoldHashAlgorithm(12)

		// Execute
		bucketNo := h.HashFunc(record)

		// Check
		// 42 full groups of 0xfff plus a last group of 8 bits (0xff)
		assert.Equal(t, int64((42*0xfff+0xff)%4096), bucketNo, "truncated last group")
		assert.Equal(t, int64(213), bucketNo, "truncated last group")
	})

	t.Run("groups crossing byte boundaries", func(t *testing.T) {
		// Prepare
		record := make([]byte, 64)
		record[1] = 0x10 // bit 12, first bit of group 1 when groups are 12 bits

		h := NewFoldHashAlgorithm(12)

		// Execute
		bucketNo := h.HashFunc(record)

		// Check
		assert.Equal(t, int64(1), bucketNo, "bit 12 lands in group 1 as its lowest bit")
	})

	t.Run("is deterministic and within table size", func(t *testing.T) {
		// Prepare
		h := NewFoldHashAlgorithm(10)
		record := make([]byte, 64)

		for i := 0; i < 1000; i++ {
			record[i%64] += byte(i * 7)

			// Execute
			b1 := h.HashFunc(record)
			b2 := h.HashFunc(record)

			// Check
			assert.Equalf(t, b1, b2, "same record hashes the same in iteration #%d", i)
			assert.GreaterOrEqualf(t, b1, int64(0), "bucket not negative in iteration #%d", i)
			assert.Lessf(t, b1, h.GetTableSize(), "bucket less than table size in iteration #%d", i)
		}
	})
}
