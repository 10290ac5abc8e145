package model

import "github.com/gostonefire/snapintersect/internal/conf"

// Region - Represents a contiguous byte region in either host or card memory
type Region struct {
	Address int64
	Size    int64
}

// End - Returns the address just after the region
func (R Region) End() int64 {
	return R.Address + R.Size
}

// Records - Returns the number of whole records the region holds
func (R Region) Records() int64 {
	return R.Size / conf.RecordWidth
}

// Job - Represents the action registers the host writes before triggering a step.
//   - SrcTable1 and SrcTable2 are the tables in host memory
//   - DDRTable1 and DDRTable2 are the staged copies in card memory
//   - ResTable is the result region, its Size is written back by the compute step
//   - Method is the intersection method, only the hash method is implemented
//   - Step selects which phase of the protocol to run
type Job struct {
	SrcTable1 Region
	SrcTable2 Region
	DDRTable1 Region
	DDRTable2 Region
	ResTable  Region
	Method    uint32
	Step      uint32
}

// Bucket - Represents one hash table entry, a list of Table1 offsets sharing a hash code
type Bucket struct {
	Used          bool
	Count         int64
	Offsets       [conf.BucketCapacity]uint32
	BucketAddress int64
}

// StorageParameters - Represents parameters of the hash table layout in card memory
type StorageParameters struct {
	HashBits         int64
	NumberOfBuckets  int64
	BucketCapacity   int64
	BucketLineLength int64
	HashTableAddress int64
	HashTableSize    int64
}

// TableStat - Statistics on the usage and distribution over buckets
//   - UsedBuckets is the number of buckets holding at least one offset
//   - Offsets is the total number of offsets stored
//   - FullestBucket is the highest count found in any bucket
//   - FullBuckets is the number of buckets that reached capacity
//   - BucketDistribution is the number of offsets stored in each bucket, nil unless asked for
type TableStat struct {
	UsedBuckets        int64
	Offsets            int64
	FullestBucket      int64
	FullBuckets        int64
	BucketDistribution []int64
}
