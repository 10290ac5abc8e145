//go:build !unix

package memory

import (
	"os"

	"github.com/cockroachdb/errors"
)

// MappedFile - A memory loaded from a file, written back on Close if writable
type MappedFile struct {
	*Arena
	fileName string
	writable bool
}

// MapFile - Loads an existing file into memory. With writable set, the memory is written back to the file on Close.
func MapFile(fileName string, writable bool) (mappedFile *MappedFile, err error) {
	buf, err := os.ReadFile(fileName)
	if err != nil {
		err = errors.Wrapf(err, "unable to read file to map")
		return
	}

	mappedFile = &MappedFile{Arena: NewArenaFromBytes(buf), fileName: fileName, writable: writable}

	return
}

// Close - Writes the memory back to its file if writable
func (M *MappedFile) Close() (err error) {
	if M.writable && M.buf != nil {
		err = os.WriteFile(M.fileName, M.buf, 0644)
	}
	M.buf = nil

	return
}
