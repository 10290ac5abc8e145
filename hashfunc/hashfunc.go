package hashfunc

// HashAlgorithm - Interface that permits an implementation using the intersect engine to supply a custom bucket
// selection algorithm suited for its particular distribution of records.
type HashAlgorithm interface {
	// HashFunc - Given a record it generates an index (bucket) between 0 and table size - 1
	// Any number returned outside the table size (0 -> table size - 1) will result in an error down stream.
	HashFunc(record []byte) int64

	// GetTableSize - Returns the table size the implemented hash function is supporting.
	// The table size must be a power of 2 since the hash table is directly addressed by the hash code
	// and its layout in card memory is derived from it.
	GetTableSize() int64
}
