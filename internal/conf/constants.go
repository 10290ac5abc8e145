package conf

// RecordWidth - Width in bytes of one record, equal to one line of the 512 bit memory bus
const RecordWidth int64 = 64

// BucketCapacity - Max number of Table1 offsets a bucket can hold
const BucketCapacity int64 = 15

// BucketLineLength - Length of a bucket line in card memory, a bucket is stored in exactly one record line
const BucketLineLength int64 = RecordWidth

// BucketCountOffset - Bucket line offset to the number of stored offsets - 4 bytes
const BucketCountOffset int64 = 0

// BucketOffsetsOffset - Bucket line offset to the first stored Table1 offset - 4 bytes each
const BucketOffsetsOffset int64 = 4

// BucketOffsetLength - Length of each stored Table1 offset
const BucketOffsetLength int64 = 4

// MaxTableBytes - Largest table, the size register and the stored Table1 offsets are 32 bits wide
const MaxTableBytes int64 = 1<<32 - 1

// DefaultHashBits - Default number of bits in a hash code, gives 65536 buckets
const DefaultHashBits int64 = 16

// MaxHashBits - Upper limit for number of bits in a hash code
const MaxHashBits int64 = 24

// DefaultMaxTransferBytes - Default max number of bytes moved in one bulk transfer
const DefaultMaxTransferBytes int64 = 4096
