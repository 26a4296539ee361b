// Package formats decodes Ragnarok Online sprite files into frames that can
// be packed into an atlas.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
)

// SPR format errors.
var (
	ErrInvalidSPRMagic       = errors.New("invalid SPR magic: expected 'SP'")
	ErrUnsupportedSPRVersion = errors.New("unsupported SPR version")
	ErrTruncatedSPRData      = errors.New("truncated SPR data")
)

const paletteSize = 256 * 4

// SPRVersion represents the SPR file version.
type SPRVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v SPRVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Sprite is a decoded sprite. Palette frames come first, followed by
// true-color frames, matching their order in the file.
type Sprite struct {
	Version SPRVersion
	Frames  []*image.NRGBA

	// Palette holds the raw RGBA palette. Entry 0 is the transparent key.
	Palette [256][4]uint8
}

// DecodeSPR decodes an SPR file. Versions 1.1 through 2.1 are supported;
// 2.1 stores palette frames run-length encoded.
func DecodeSPR(data []byte) (*Sprite, error) {
	if len(data) < 4 {
		return nil, ErrTruncatedSPRData
	}
	if data[0] != 'S' || data[1] != 'P' {
		return nil, ErrInvalidSPRMagic
	}

	// Stored as minor, major.
	version := SPRVersion{Major: data[3], Minor: data[2]}
	if version.Major < 1 || version.Major > 2 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSPRVersion, version)
	}
	if version.Major == 1 && version.Minor < 1 {
		return nil, fmt.Errorf("%w: %s (no embedded palette)", ErrUnsupportedSPRVersion, version)
	}
	if len(data) < 4+paletteSize {
		return nil, ErrTruncatedSPRData
	}

	body := data[4 : len(data)-paletteSize]
	r := bytes.NewReader(body)

	var indexedCount, trueColorCount uint16
	if err := binary.Read(r, binary.LittleEndian, &indexedCount); err != nil {
		return nil, fmt.Errorf("%w: reading indexed count", ErrTruncatedSPRData)
	}
	if version.Major >= 2 {
		if err := binary.Read(r, binary.LittleEndian, &trueColorCount); err != nil {
			return nil, fmt.Errorf("%w: reading true-color count", ErrTruncatedSPRData)
		}
	}

	s := &Sprite{
		Version: version,
		Frames:  make([]*image.NRGBA, 0, int(indexedCount)+int(trueColorCount)),
	}
	pal := data[len(data)-paletteSize:]
	for i := range s.Palette {
		copy(s.Palette[i][:], pal[i*4:i*4+4])
	}

	rle := version.Major == 2 && version.Minor >= 1
	for i := 0; i < int(indexedCount); i++ {
		img, err := s.readIndexed(r, rle)
		if err != nil {
			return nil, fmt.Errorf("palette frame %d: %w", i, err)
		}
		s.Frames = append(s.Frames, img)
	}
	for i := 0; i < int(trueColorCount); i++ {
		// Some writers declare more true-color frames than they store.
		if r.Len() == 0 {
			break
		}
		img, err := readTrueColor(r)
		if err != nil {
			return nil, fmt.Errorf("true-color frame %d: %w", i, err)
		}
		s.Frames = append(s.Frames, img)
	}

	return s, nil
}

// readSize reads a frame size. Zero or 0xFFFF sizes mark an empty frame and
// yield ok == false.
func readSize(r io.Reader) (w, h int, ok bool, err error) {
	var dims [2]uint16
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return 0, 0, false, fmt.Errorf("%w: reading size", ErrTruncatedSPRData)
	}
	if dims[0] == 0 || dims[1] == 0 || dims[0] == 0xFFFF || dims[1] == 0xFFFF {
		return 1, 1, false, nil
	}
	return int(dims[0]), int(dims[1]), true, nil
}

func (s *Sprite) readIndexed(r *bytes.Reader, rle bool) (*image.NRGBA, error) {
	w, h, ok, err := readSize(r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return image.NewNRGBA(image.Rect(0, 0, w, h)), nil
	}

	n := w * h
	var indices []byte
	if rle {
		var size uint16
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("%w: reading compressed size", ErrTruncatedSPRData)
		}
		packed := make([]byte, size)
		if _, err := io.ReadFull(r, packed); err != nil {
			return nil, fmt.Errorf("%w: reading compressed pixels", ErrTruncatedSPRData)
		}
		indices = decompressRLE(packed, n)
	} else {
		indices = make([]byte, n)
		if _, err := io.ReadFull(r, indices); err != nil {
			return nil, fmt.Errorf("%w: reading pixel indices", ErrTruncatedSPRData)
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, idx := range indices {
		if idx == 0 {
			continue
		}
		c := s.Palette[idx]
		o := img.PixOffset(i%w, i/w)
		img.Pix[o] = c[0]
		img.Pix[o+1] = c[1]
		img.Pix[o+2] = c[2]
		img.Pix[o+3] = 0xFF
	}
	return img, nil
}

// decompressRLE expands zero runs: 0x00 N is N zeros (0x00 0x00 is a single
// zero), anything else is a literal. The result is padded to size.
func decompressRLE(packed []byte, size int) []byte {
	out := make([]byte, 0, size)
	for i := 0; i < len(packed) && len(out) < size; {
		b := packed[i]
		i++
		if b != 0 {
			out = append(out, b)
			continue
		}
		if i >= len(packed) {
			break
		}
		count := int(packed[i])
		i++
		if count == 0 {
			count = 1
		}
		for j := 0; j < count && len(out) < size; j++ {
			out = append(out, 0)
		}
	}
	for len(out) < size {
		out = append(out, 0)
	}
	return out
}

// readTrueColor reads an ABGR frame. Rows are stored bottom-up.
func readTrueColor(r *bytes.Reader) (*image.NRGBA, error) {
	w, h, ok, err := readSize(r)
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if !ok {
		return img, nil
	}

	abgr := make([]byte, w*h*4)
	if _, err := io.ReadFull(r, abgr); err != nil {
		return nil, fmt.Errorf("%w: reading ABGR pixels", ErrTruncatedSPRData)
	}
	for y := 0; y < h; y++ {
		src := abgr[(h-1-y)*w*4:]
		for x := 0; x < w; x++ {
			p := src[x*4 : x*4+4]
			o := img.PixOffset(x, y)
			img.Pix[o] = p[3]
			img.Pix[o+1] = p[2]
			img.Pix[o+2] = p[1]
			img.Pix[o+3] = p[0]
		}
	}
	return img, nil
}
