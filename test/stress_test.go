//go:build stress

package test

import (
	"github.com/gostonefire/snapintersect"
	"github.com/gostonefire/snapintersect/internal/memory"
	"github.com/gostonefire/snapintersect/internal/tablegen"
	"github.com/gostonefire/snapintersect/internal/verify"
	"github.com/gostonefire/snapintersect/retc"
	"github.com/stretchr/testify/assert"
	"path/filepath"
	"testing"
)

// loadHost - Returns host memory for the layout with both tables written to it
func loadHost(layout snapintersect.Layout, table1, table2 []byte) *memory.Arena {
	host := memory.NewArena(layout.HostSize)
	copy(host.Bytes()[layout.SrcTable1.Address:], table1)
	copy(host.Bytes()[layout.SrcTable2.Address:], table2)
	return host
}

func TestStressIntersect(t *testing.T) {
	t.Run("large tables against reference", func(t *testing.T) {
		// Prepare
		table1, table2, err := tablegen.Generate(tablegen.GenConf{Table1Records: 200000, Table2Records: 100000, Overlap: 30000, Seed: 99})
		assert.NoError(t, err, "generates tables")
		expected, err := verify.Intersect(table1, table2)
		assert.NoError(t, err, "reference intersection")

		// Execute
		result, info, err := snapintersect.Intersect(table1, table2, snapintersect.IntersectConf{HashBits: 20})

		// Check
		assert.NoError(t, err, "intersects")
		assert.NoError(t, verify.Compare(expected, result), "same result as reference")
		assert.Equal(t, int64(30000), info.ResultRecords, "overlap records found")
		assert.Equal(t, int64(200000), info.Stat.Offsets, "all table1 offsets stored")
	})

	t.Run("file backed card memory", func(t *testing.T) {
		// Prepare
		table1, table2, err := tablegen.Generate(tablegen.GenConf{Table1Records: 50000, Table2Records: 50000, Overlap: 25000, Seed: 100})
		assert.NoError(t, err, "generates tables")
		layout, err := snapintersect.NewLayout(int64(len(table1)), int64(len(table2)), 18)
		assert.NoError(t, err, "creates layout")
		host := loadHost(layout, table1, table2)
		card, err := memory.NewFileArena(filepath.Join(t.TempDir(), "card.bin"), layout.CardSize)
		assert.NoError(t, err, "creates card file")
		session, _, err := snapintersect.NewSession(snapintersect.SessionConf{
			Host:             host,
			Card:             card,
			HashTableAddress: layout.HashTableAddress,
			HashBits:         18,
			MaxTransferBytes: 64 * 1024,
		})
		assert.NoError(t, err, "creates session")
		stageIn, compute, stageOutResult := layout.Jobs()

		// Execute
		_, err = session.Step(stageIn)
		assert.NoError(t, err, "stage in")
		computed, err := session.Step(compute)
		assert.NoError(t, err, "compute")
		stageOutResult.ResTable.Size = computed.ResultSize
		stagedOut, err := session.Step(stageOutResult)

		// Check
		assert.NoError(t, err, "stage out result")
		assert.Equal(t, retc.OK, stagedOut.Retc, "stage out ok")
		expected, err := verify.Intersect(table1, table2)
		assert.NoError(t, err, "reference intersection")
		result := host.Bytes()[layout.HostResult.Address : layout.HostResult.Address+computed.ResultSize]
		assert.NoError(t, verify.Compare(expected, result), "same result as reference")

		// Clean up
		err = card.Remove()
		assert.NoError(t, err, "removes card file")
	})
}
