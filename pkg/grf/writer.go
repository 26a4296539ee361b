package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/Faultbox/midgard-skin/pkg/encoding"
)

// Writer builds a GRF 0x200 archive in memory and writes it out on Close.
type Writer struct {
	w     io.Writer
	files map[string][]byte
}

// NewWriter creates a writer that emits the archive to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, files: make(map[string][]byte)}
}

// Add stores data under name. Adding the same name twice replaces it.
func (gw *Writer) Add(name string, data []byte) {
	gw.files[name] = data
}

// Close compresses every file, writes the archive and the file table.
// Names are stored with backslashes and EUC-KR encoded, as the game client
// expects.
func (gw *Writer) Close() error {
	names := make([]string, 0, len(gw.files))
	for name := range gw.files {
		names = append(names, name)
	}
	sort.Strings(names)

	var body, table bytes.Buffer
	for _, name := range names {
		content := gw.files[name]
		compressed, err := deflate(content)
		if err != nil {
			return fmt.Errorf("compressing %s: %w", name, err)
		}
		// Equal sizes mean "stored" to readers.
		if len(compressed) == len(content) {
			compressed = content
		}

		aligned := len(compressed)
		if aligned%8 != 0 {
			aligned += 8 - aligned%8
		}

		offset := uint32(body.Len())
		body.Write(compressed)
		body.Write(make([]byte, aligned-len(compressed)))

		table.Write(bytes.ReplaceAll(encoding.UTF8ToEUCKR(name), []byte("/"), []byte("\\")))
		table.WriteByte(0)
		var info [entryInfoSize]byte
		binary.LittleEndian.PutUint32(info[0:], uint32(len(compressed)))
		binary.LittleEndian.PutUint32(info[4:], uint32(aligned))
		binary.LittleEndian.PutUint32(info[8:], uint32(len(content)))
		info[12] = flagFile
		binary.LittleEndian.PutUint32(info[13:], offset)
		table.Write(info[:])
	}

	compressedTable, err := deflate(table.Bytes())
	if err != nil {
		return fmt.Errorf("compressing file table: %w", err)
	}

	header := Header{
		TableOffset: uint32(body.Len()),
		FileCount:   uint32(len(names)) + 7,
		Version:     version200,
	}
	copy(header.Magic[:], grfMagic)

	var out bytes.Buffer
	if err := binary.Write(&out, binary.LittleEndian, &header); err != nil {
		return err
	}
	out.Write(body.Bytes())
	if err := binary.Write(&out, binary.LittleEndian, [2]uint32{
		uint32(len(compressedTable)), uint32(table.Len()),
	}); err != nil {
		return err
	}
	out.Write(compressedTable)

	_, err = gw.w.Write(out.Bytes())
	return err
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
