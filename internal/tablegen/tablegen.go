// Package tablegen produces deterministic record tables for tests, benchmarks and the command line tool.
package tablegen

import (
	"encoding/binary"
	"fmt"

	"github.com/dchest/siphash"
	"github.com/gostonefire/snapintersect/internal/conf"
	"github.com/gostonefire/snapintersect/retc"
)

// Key words used to separate the streams drawn from one seed
const (
	table1Stream uint64 = 1
	table2Stream uint64 = 2
	pickStream   uint64 = 3
	orderStream  uint64 = 4
)

// GenConf - Is a struct to be passed in the call to Generate
//   - Table1Records is the number of records in Table1
//   - Table2Records is the number of records in Table2
//   - Overlap is how many Table2 records are copies of Table1 records, it can not exceed Table2Records
//   - Seed selects the generated tables, the same seed always gives the same tables
type GenConf struct {
	Table1Records int64
	Table2Records int64
	Overlap       int64
	Seed          uint64
}

// Generate - Returns two tables of pseudo random records. Overlap records of Table2 are copies of records picked
// from Table1, the rest are fresh, and all of Table2 is shuffled.
func Generate(genConf GenConf) (table1, table2 []byte, err error) {
	if genConf.Table1Records < 0 || genConf.Table2Records < 0 || genConf.Overlap < 0 {
		err = retc.NewInvalidArgument("record counts must not be negative")
		return
	}
	if genConf.Overlap > genConf.Table2Records {
		err = retc.NewInvalidArgument(fmt.Sprintf("overlap %d exceeds table2 records %d", genConf.Overlap, genConf.Table2Records))
		return
	}
	if genConf.Overlap > 0 && genConf.Table1Records == 0 {
		err = retc.NewInvalidArgument("overlap requires table1 records")
		return
	}

	table1 = make([]byte, genConf.Table1Records*conf.RecordWidth)
	for i := int64(0); i < genConf.Table1Records; i++ {
		fill(table1[i*conf.RecordWidth:(i+1)*conf.RecordWidth], genConf.Seed, table1Stream, uint64(i))
	}

	table2 = make([]byte, genConf.Table2Records*conf.RecordWidth)
	for i := int64(0); i < genConf.Table2Records; i++ {
		dst := table2[i*conf.RecordWidth : (i+1)*conf.RecordWidth]
		if i < genConf.Overlap {
			p := int64(draw(genConf.Seed, pickStream, uint64(i), 0) % uint64(genConf.Table1Records))
			copy(dst, table1[p*conf.RecordWidth:(p+1)*conf.RecordWidth])
		} else {
			fill(dst, genConf.Seed, table2Stream, uint64(i))
		}
	}

	shuffle(table2, genConf.Seed)

	return
}

// fill - Fills one record with pseudo random words
func fill(record []byte, seed, stream, index uint64) {
	for w := 0; w < len(record)/8; w++ {
		binary.LittleEndian.PutUint64(record[w*8:], draw(seed, stream, index, uint64(w)))
	}
}

// draw - Returns one pseudo random word for the given seed, stream, index and word number
func draw(seed, stream, index, word uint64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:], index)
	binary.LittleEndian.PutUint64(buf[8:], word)
	return siphash.Hash(seed, stream, buf[:])
}

// shuffle - Fisher-Yates shuffle of the records in a table
func shuffle(table []byte, seed uint64) {
	n := int64(len(table)) / conf.RecordWidth
	tmp := make([]byte, conf.RecordWidth)
	for i := n - 1; i > 0; i-- {
		j := int64(draw(seed, orderStream, uint64(i), 0) % uint64(i+1))
		if i == j {
			continue
		}
		a := table[i*conf.RecordWidth : (i+1)*conf.RecordWidth]
		b := table[j*conf.RecordWidth : (j+1)*conf.RecordWidth]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
