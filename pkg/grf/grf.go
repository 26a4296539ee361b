// Package grf reads and writes GRF 0x200 archives, the zlib-compressed
// container format used to ship sprite atlases and their page images.
package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/Faultbox/midgard-skin/pkg/encoding"
)

const (
	grfMagic   = "Master of Magic"
	headerSize = 46
	version200 = 0x200

	flagFile      = 0x01
	flagEncrypted = 0x02 | 0x04

	entryInfoSize = 17
)

// Archive errors.
var (
	ErrInvalidMagic = errors.New("invalid GRF magic")
	ErrVersion      = errors.New("unsupported GRF version")
	ErrNotFound     = errors.New("file not found in archive")
	ErrEncrypted    = errors.New("encrypted entries are not supported")
	ErrCorrupt      = errors.New("corrupt GRF")
)

// Archive is an opened GRF archive. Reads are safe for concurrent use.
type Archive struct {
	mu       sync.Mutex
	file     io.ReadSeeker
	closer   io.Closer
	header   Header
	fileList map[string]*Entry
}

// Header is the fixed 46-byte GRF header.
type Header struct {
	Magic         [15]byte
	EncryptionKey [15]byte
	TableOffset   uint32
	Seed          uint32
	FileCount     uint32
	Version       uint32
}

// Entry describes one file in the archive.
type Entry struct {
	Name             string // UTF-8, normalized
	CompressedSize   uint32
	AlignedSize      uint32
	UncompressedSize uint32
	Flags            uint8
	Offset           uint32
}

// Open opens a GRF archive on disk.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	a, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	a.closer = file
	return a, nil
}

// NewReader reads the header and file table from r.
func NewReader(r io.ReadSeeker) (*Archive, error) {
	a := &Archive{
		file:     r,
		fileList: make(map[string]*Entry),
	}
	if err := a.readHeader(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := a.readFileTable(); err != nil {
		return nil, fmt.Errorf("reading file table: %w", err)
	}
	return a, nil
}

// Close releases the underlying file, if any.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func (a *Archive) readHeader() error {
	if _, err := a.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Read(a.file, binary.LittleEndian, &a.header); err != nil {
		return err
	}
	if string(a.header.Magic[:]) != grfMagic {
		return ErrInvalidMagic
	}
	if a.header.Version != version200 {
		return fmt.Errorf("%w: 0x%x", ErrVersion, a.header.Version)
	}
	return nil
}

func (a *Archive) readFileTable() error {
	if _, err := a.file.Seek(int64(a.header.TableOffset)+headerSize, io.SeekStart); err != nil {
		return err
	}

	var sizes [2]uint32
	if err := binary.Read(a.file, binary.LittleEndian, &sizes); err != nil {
		return fmt.Errorf("%w: table sizes: %v", ErrCorrupt, err)
	}
	compressedSize, uncompressedSize := sizes[0], sizes[1]

	compressed := make([]byte, compressedSize)
	if _, err := io.ReadFull(a.file, compressed); err != nil {
		return fmt.Errorf("%w: table data: %v", ErrCorrupt, err)
	}

	table, err := inflate(compressed, uncompressedSize)
	if err != nil {
		return fmt.Errorf("%w: table: %v", ErrCorrupt, err)
	}

	fileCount := a.header.FileCount - a.header.Seed - 7
	offset := 0
	for i := uint32(0); i < fileCount; i++ {
		nameEnd := bytes.IndexByte(table[offset:], 0)
		if nameEnd < 0 || offset+nameEnd+1+entryInfoSize > len(table) {
			return fmt.Errorf("%w: entry %d truncated", ErrCorrupt, i)
		}
		raw := table[offset : offset+nameEnd]
		offset += nameEnd + 1

		info := table[offset : offset+entryInfoSize]
		offset += entryInfoSize

		entry := &Entry{
			Name:             encoding.NormalizeGRFPath(encoding.EUCKRToUTF8(raw)),
			CompressedSize:   binary.LittleEndian.Uint32(info[0:]),
			AlignedSize:      binary.LittleEndian.Uint32(info[4:]),
			UncompressedSize: binary.LittleEndian.Uint32(info[8:]),
			Flags:            info[12],
			Offset:           binary.LittleEndian.Uint32(info[13:]),
		}
		if entry.Flags&flagFile != 0 {
			a.fileList[entry.Name] = entry
		}
	}
	return nil
}

// List returns every file path in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.fileList))
	for path := range a.fileList {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Entry returns the table entry for path.
func (a *Archive) Entry(path string) (*Entry, bool) {
	e, ok := a.fileList[encoding.NormalizeGRFPath(path)]
	return e, ok
}

// Contains reports whether path exists. Lookup is case-insensitive and
// accepts either slash direction.
func (a *Archive) Contains(path string) bool {
	_, ok := a.Entry(path)
	return ok
}

// Read returns the decompressed contents of path.
func (a *Archive) Read(path string) ([]byte, error) {
	entry, ok := a.Entry(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if entry.Flags&flagEncrypted != 0 {
		return nil, fmt.Errorf("%w: %s", ErrEncrypted, path)
	}
	if entry.CompressedSize > entry.AlignedSize {
		return nil, fmt.Errorf("%w: %s sizes", ErrCorrupt, path)
	}

	data := make([]byte, entry.AlignedSize)
	a.mu.Lock()
	_, err := a.file.Seek(int64(entry.Offset)+headerSize, io.SeekStart)
	if err == nil {
		_, err = io.ReadFull(a.file, data)
	}
	a.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrCorrupt, path, err)
	}

	if entry.CompressedSize == entry.UncompressedSize {
		return data[:entry.UncompressedSize], nil
	}

	out, err := inflate(data[:entry.CompressedSize], entry.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return out, nil
}

func inflate(compressed []byte, size uint32) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}
