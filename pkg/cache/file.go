package cache

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"minkowski3d/pkg/minkowski"
)

// fileMagic identifies a table file, followed by a format version byte.
var fileMagic = [4]byte{'M', 'K', 'L', 'T'}

const fileVersion = 1

// ErrCorruptTable is returned when a table file cannot be decoded.
var ErrCorruptTable = errors.New("corrupt lookup table file")

// FileStore keeps the lookup table in a single zstd-compressed file.
//
// Layout before compression: magic, version, the three window extents (one
// byte each), the entry count (uint32, little endian) and then four bytes per
// pattern in pattern order: n3, n2, n1, n0.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the table file. A missing file is not an error.
func (s *FileStore) Load() (*minkowski.Table, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open table file: %w", err)
	}
	defer f.Close()

	return ReadTable(f)
}

// Save writes the table to a temporary file next to Path and renames it into
// place, so a concurrent Load never sees a partial file.
func (s *FileStore) Save(table *minkowski.Table) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create table directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".lookup-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary table file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteTable(tmp, table); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close table file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to move table file into place: %w", err)
	}
	return nil
}

// WriteTable encodes table to w.
func WriteTable(w io.Writer, table *minkowski.Table) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	bw := bufio.NewWriter(enc)

	shape := table.Shape()
	header := make([]byte, 0, 12)
	header = append(header, fileMagic[:]...)
	header = append(header, fileVersion, byte(shape.X), byte(shape.Y), byte(shape.Z))
	header = binary.LittleEndian.AppendUint32(header, uint32(table.Len()))
	if _, err := bw.Write(header); err != nil {
		enc.Close()
		return fmt.Errorf("failed to write table header: %w", err)
	}

	var werr error
	table.Range(func(_ minkowski.Pattern, inc minkowski.Increments) bool {
		_, werr = bw.Write([]byte{inc.N3, inc.N2, inc.N1, inc.N0})
		return werr == nil
	})
	if werr != nil {
		enc.Close()
		return fmt.Errorf("failed to write table entries: %w", werr)
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return fmt.Errorf("failed to flush table entries: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish zstd stream: %w", err)
	}
	return nil
}

// ReadTable decodes a table written by WriteTable. A table for a different
// window geometry fails with minkowski.ErrConfigurationMismatch.
func ReadTable(r io.Reader) (*minkowski.Table, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	header := make([]byte, 12)
	if _, err := io.ReadFull(dec, header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorruptTable, err)
	}
	if !bytes.Equal(header[:4], fileMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorruptTable, header[:4])
	}
	if header[4] != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptTable, header[4])
	}
	shape := minkowski.Shape{X: int(header[5]), Y: int(header[6]), Z: int(header[7])}
	count := binary.LittleEndian.Uint32(header[8:])

	if shape != minkowski.WindowShape {
		return nil, fmt.Errorf("%w: stored table is for %s, classifier expects %s",
			minkowski.ErrConfigurationMismatch, shape, minkowski.WindowShape)
	}
	if count > 1<<minkowski.MaxTableCells {
		return nil, fmt.Errorf("%w: %d entries", ErrCorruptTable, count)
	}

	raw := make([]byte, 4*int(count))
	if _, err := io.ReadFull(dec, raw); err != nil {
		return nil, fmt.Errorf("%w: entries: %v", ErrCorruptTable, err)
	}
	entries := make([]minkowski.Increments, count)
	for i := range entries {
		b := raw[4*i : 4*i+4]
		entries[i] = minkowski.Increments{N3: b[0], N2: b[1], N1: b[2], N0: b[3]}
	}
	return minkowski.NewTable(shape, entries)
}
