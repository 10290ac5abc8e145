package memory

import (
	"os"

	"github.com/cockroachdb/errors"
)

// FileArena - A memory backed by a file, used when the card memory is too big to keep on the heap
type FileArena struct {
	fileName string
	file     *os.File
	size     int64
}

// NewFileArena - Creates a new file of the given size and returns a FileArena on it.
// If the file already exists it will first be truncated to zero length and then to expected length,
// hence deleting all existing data.
func NewFileArena(fileName string, size int64) (fileArena *FileArena, err error) {
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		err = errors.Wrapf(err, "error while open/create new arena file")
		return
	}

	err = file.Truncate(size)
	if err != nil {
		_ = file.Close()
		err = errors.Wrapf(err, "error while truncate new arena file to length %d", size)
		return
	}

	fileArena = &FileArena{fileName: fileName, file: file, size: size}

	return
}

// ReadAt - Reads len(p) bytes starting at off, it fails with retc.OutOfBounds rather than doing a short read
func (F *FileArena) ReadAt(p []byte, off int64) (n int, err error) {
	err = CheckRegion(F, off, int64(len(p)))
	if err != nil {
		return
	}

	return F.file.ReadAt(p, off)
}

// WriteAt - Writes len(p) bytes starting at off, it fails with retc.OutOfBounds rather than growing the file
func (F *FileArena) WriteAt(p []byte, off int64) (n int, err error) {
	err = CheckRegion(F, off, int64(len(p)))
	if err != nil {
		return
	}

	return F.file.WriteAt(p, off)
}

// Size - Returns the size of the arena
func (F *FileArena) Size() int64 {
	return F.size
}

// Close - Syncs and closes the arena file. Use this preferably in a "defer" directly after creating or opening.
func (F *FileArena) Close() (err error) {
	if F.file == nil {
		return
	}

	_ = F.file.Sync()
	err = F.file.Close()
	F.file = nil

	return
}

// Remove - Closes and removes the arena file if it exists
func (F *FileArena) Remove() (err error) {
	_ = F.Close()

	// Only try to remove if exists, and is not by accident a directory
	if stat, ok := os.Stat(F.fileName); ok == nil {
		if !stat.IsDir() {
			err = os.Remove(F.fileName)
			if err != nil {
				err = errors.Wrapf(err, "error while removing arena file")
				return
			}
		}
	}

	return
}
