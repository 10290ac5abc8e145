package main

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gostonefire/snapintersect/internal/memory"
	"github.com/klauspost/compress/zstd"
)

// zstdSuffix - Table files ending with this suffix are zstd compressed
const zstdSuffix = ".zst"

// openTable - Returns the content of a table file. Plain files are mapped into memory and must be released by
// calling release when no longer used, compressed files are decompressed onto the heap.
func openTable(fileName string) (data []byte, release func() error, err error) {
	release = func() error { return nil }

	if strings.HasSuffix(fileName, zstdSuffix) {
		var file *os.File
		file, err = os.Open(fileName)
		if err != nil {
			err = errors.Wrapf(err, "unable to open table file")
			return
		}
		defer file.Close()

		var dec *zstd.Decoder
		dec, err = zstd.NewReader(file)
		if err != nil {
			err = errors.Wrapf(err, "unable to create zstd reader for %s", fileName)
			return
		}
		defer dec.Close()

		data, err = io.ReadAll(dec)
		if err != nil {
			err = errors.Wrapf(err, "unable to decompress %s", fileName)
		}
		return
	}

	mapped, err := memory.MapFile(fileName, false)
	if err != nil {
		return
	}

	return mapped.Bytes(), mapped.Close, nil
}

// writeTable - Writes records to a table file, compressing them when the file name ends with .zst
func writeTable(fileName string, data []byte) (err error) {
	file, err := os.Create(fileName)
	if err != nil {
		err = errors.Wrapf(err, "unable to create table file")
		return
	}
	defer func() {
		if cErr := file.Close(); err == nil && cErr != nil {
			err = errors.Wrapf(cErr, "unable to close %s", fileName)
		}
	}()

	if !strings.HasSuffix(fileName, zstdSuffix) {
		_, err = file.Write(data)
		if err != nil {
			err = errors.Wrapf(err, "unable to write %s", fileName)
		}
		return
	}

	enc, err := zstd.NewWriter(file, zstd.WithEncoderConcurrency(1))
	if err != nil {
		err = errors.Wrapf(err, "unable to create zstd writer for %s", fileName)
		return
	}
	_, err = enc.Write(data)
	if err != nil {
		_ = enc.Close()
		err = errors.Wrapf(err, "unable to compress %s", fileName)
		return
	}
	err = enc.Close()

	return
}
