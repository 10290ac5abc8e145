package hashtable

import (
	"encoding/binary"
	"fmt"

	"github.com/gostonefire/snapintersect/internal/conf"
	"github.com/gostonefire/snapintersect/internal/model"
)

// bytesToBucket - Converts bucket line raw data to a Bucket struct
func bytesToBucket(buf []byte, bucketAddress int64) (bucket model.Bucket, err error) {
	actual := int64(len(buf))
	if actual < conf.BucketLineLength {
		err = fmt.Errorf("length of data in buf (%d) less than bucket line length (%d)", actual, conf.BucketLineLength)
		return
	}

	count := int64(binary.LittleEndian.Uint32(buf[conf.BucketCountOffset:]))
	if count > conf.BucketCapacity {
		err = fmt.Errorf("bucket at address %d has count %d above capacity %d", bucketAddress, count, conf.BucketCapacity)
		return
	}

	bucket = model.Bucket{
		Used:          count > 0,
		Count:         count,
		BucketAddress: bucketAddress,
	}
	for i := int64(0); i < count; i++ {
		bucket.Offsets[i] = binary.LittleEndian.Uint32(buf[conf.BucketOffsetsOffset+i*conf.BucketOffsetLength:])
	}

	return
}

// bucketToBytes - Converts a Bucket struct to bucket line raw data, unused offset slots are zero
func bucketToBytes(bucket model.Bucket) (buf []byte) {
	buf = make([]byte, conf.BucketLineLength)

	binary.LittleEndian.PutUint32(buf[conf.BucketCountOffset:], uint32(bucket.Count))
	for i := int64(0); i < bucket.Count; i++ {
		binary.LittleEndian.PutUint32(buf[conf.BucketOffsetsOffset+i*conf.BucketOffsetLength:], bucket.Offsets[i])
	}

	return
}
