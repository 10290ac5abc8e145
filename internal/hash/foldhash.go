package hash

// FoldHashAlgorithm - The internally used bucket selection algorithm. It partitions a record into groups of
// exp bits, starting at the least significant bit of the lowest addressed byte, and sums all groups
// modulo 2 to the power of exp. The last group is truncated at the end of the record.
type FoldHashAlgorithm struct {
	exp       int64
	tableSize int64
}

// NewFoldHashAlgorithm - Returns a pointer to a new FoldHashAlgorithm instance producing hash codes of exp bits
func NewFoldHashAlgorithm(exp int64) *FoldHashAlgorithm {
	return &FoldHashAlgorithm{exp: exp, tableSize: 1 << exp}
}

// HashFunc - Given record it generates an index (bucket) between 0 and table size - 1
func (F *FoldHashAlgorithm) HashFunc(record []byte) int64 {
	totalBits := int64(len(record)) * 8
	mask := uint64(F.tableSize - 1)

	var sum uint64
	for bit := int64(0); bit < totalBits; bit += F.exp {
		sum = (sum + group(record, bit, F.exp)) & mask
	}

	return int64(sum)
}

// GetTableSize - Returns the table size the hash function is supporting
func (F *FoldHashAlgorithm) GetTableSize() int64 {
	return F.tableSize
}

// group - Returns width bits of record starting at bit start, bits beyond the record read as zero
func group(record []byte, start, width int64) (value uint64) {
	totalBits := int64(len(record)) * 8
	for i := int64(0); i < width; i++ {
		b := start + i
		if b >= totalBits {
			break
		}
		if record[b>>3]>>(b&7)&1 == 1 {
			value |= 1 << i
		}
	}

	return
}
