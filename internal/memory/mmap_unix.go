//go:build unix

package memory

import (
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// MappedFile - A memory backed by a shared memory mapping of a file
type MappedFile struct {
	*Arena
	file *os.File
}

// MapFile - Maps an existing file into memory. With writable set, writes to the memory are written back to the file.
func MapFile(fileName string, writable bool) (mappedFile *MappedFile, err error) {
	flag, prot := os.O_RDONLY, unix.PROT_READ
	if writable {
		flag, prot = os.O_RDWR, unix.PROT_READ|unix.PROT_WRITE
	}

	file, err := os.OpenFile(fileName, flag, 0644)
	if err != nil {
		err = errors.Wrapf(err, "unable to open file to map")
		return
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return
	}

	mappedFile = &MappedFile{Arena: NewArena(0), file: file}
	if stat.Size() == 0 {
		return
	}

	buf, err := unix.Mmap(int(file.Fd()), 0, int(stat.Size()), prot, unix.MAP_SHARED)
	if err != nil {
		_ = file.Close()
		mappedFile = nil
		err = errors.Wrapf(err, "unable to map file %s", fileName)
		return
	}
	mappedFile.Arena = NewArenaFromBytes(buf)

	return
}

// Close - Unmaps and closes the file
func (M *MappedFile) Close() (err error) {
	if len(M.buf) > 0 {
		err = unix.Munmap(M.buf)
		M.buf = nil
	}
	if M.file != nil {
		if cErr := M.file.Close(); err == nil {
			err = cErr
		}
		M.file = nil
	}

	return
}
