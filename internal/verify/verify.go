// Package verify holds a software reference of the intersection, used to check results produced by the engine.
package verify

import (
	"encoding/hex"
	"fmt"

	"github.com/gostonefire/snapintersect/internal/conf"
	"github.com/gostonefire/snapintersect/internal/utils"
	"github.com/gostonefire/snapintersect/retc"
	"golang.org/x/crypto/blake2b"
)

// Intersect - Returns every Table2 record also present in Table1, in Table2 order. A Table2 record present
// several times gives one result per occurrence, duplicates in Table1 do not multiply results.
func Intersect(table1, table2 []byte) (result []byte, err error) {
	if int64(len(table1))%conf.RecordWidth != 0 || int64(len(table2))%conf.RecordWidth != 0 {
		err = retc.NewInvalidArgument(fmt.Sprintf("table sizes (%d, %d) must be multiples of %d", len(table1), len(table2), conf.RecordWidth))
		return
	}

	set := make(map[[conf.RecordWidth]byte]struct{}, int64(len(table1))/conf.RecordWidth)
	var key [conf.RecordWidth]byte
	for i := int64(0); i < int64(len(table1)); i += conf.RecordWidth {
		copy(key[:], table1[i:i+conf.RecordWidth])
		set[key] = struct{}{}
	}

	result = make([]byte, 0)
	for i := int64(0); i < int64(len(table2)); i += conf.RecordWidth {
		copy(key[:], table2[i:i+conf.RecordWidth])
		if _, ok := set[key]; ok {
			result = append(result, key[:]...)
		}
	}

	return
}

// Compare - Returns nil if actual holds the same records as expected in the same order, otherwise an error naming
// the first differing record
func Compare(expected, actual []byte) (err error) {
	if utils.IsEqual(expected, actual) {
		return
	}

	n := len(expected)
	if len(actual) < n {
		n = len(actual)
	}
	for i := 0; i < n; i += int(conf.RecordWidth) {
		end := i + int(conf.RecordWidth)
		if end > n {
			end = n
		}
		if !utils.IsEqual(expected[i:end], actual[i:end]) {
			err = fmt.Errorf("result differs at record %d", int64(i)/conf.RecordWidth)
			return
		}
	}

	err = fmt.Errorf("result has %d records, expected %d", int64(len(actual))/conf.RecordWidth, int64(len(expected))/conf.RecordWidth)

	return
}

// Digest - Returns the hex encoded BLAKE2b-256 digest of a result
func Digest(records []byte) string {
	sum := blake2b.Sum256(records)
	return hex.EncodeToString(sum[:])
}
