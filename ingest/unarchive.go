package ingest

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"
)

// Open returns a reader over the uncompressed contents of filePath.
// .gz, .lz4 and .zip are unpacked on the fly; for zip archives the largest
// file is used. The source file is never removed.
func Open(filePath string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".zip":
		return openZipArchive(filePath)
	case ".gz":
		return openGzipArchive(filePath)
	case ".lz4":
		return openLZ4Archive(filePath)
	}
	return os.Open(filePath)
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openZipArchive(filePath string) (io.ReadCloser, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}

	// Find largest file in archive
	var largestFile *zip.File
	var largestSize uint64
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if largestFile == nil || f.UncompressedSize64 > largestSize {
			largestFile = f
			largestSize = f.UncompressedSize64
		}
	}
	if largestFile == nil {
		r.Close()
		return nil, fmt.Errorf("%w: zip archive %s has no files", ErrEmptyInput, filePath)
	}

	rc, err := largestFile.Open()
	if err != nil {
		r.Close()
		return nil, err
	}
	return &multiCloser{Reader: rc, closers: []io.Closer{rc, r}}, nil
}

func openGzipArchive(filePath string) (io.ReadCloser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	gr, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &multiCloser{Reader: gr, closers: []io.Closer{gr, file}}, nil
}

func openLZ4Archive(filePath string) (io.ReadCloser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	return &multiCloser{Reader: lz4.NewReader(file), closers: []io.Closer{file}}, nil
}

// sniff returns the first n bytes of r without consuming them.
func sniff(r io.Reader, n int) ([]byte, io.Reader, error) {
	head := make([]byte, n)
	read, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, nil, err
	}
	head = head[:read]
	return head, io.MultiReader(bytes.NewReader(head), r), nil
}
