package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image/color"
	"testing"
)

func TestDecodeSPR_InvalidMagic(t *testing.T) {
	_, err := DecodeSPR([]byte("XX\x01\x02"))
	if err != ErrInvalidSPRMagic {
		t.Errorf("expected ErrInvalidSPRMagic, got %v", err)
	}
}

func TestDecodeSPR_TruncatedData(t *testing.T) {
	if _, err := DecodeSPR([]byte("SP")); err != ErrTruncatedSPRData {
		t.Errorf("expected ErrTruncatedSPRData, got %v", err)
	}
	// Valid header but no room for the palette.
	if _, err := DecodeSPR([]byte("SP\x01\x02\x00\x00")); err != ErrTruncatedSPRData {
		t.Errorf("expected ErrTruncatedSPRData, got %v", err)
	}
}

func TestDecodeSPR_UnsupportedVersion(t *testing.T) {
	for _, hdr := range []string{"SP\x00\x01", "SP\x00\x03"} {
		data := make([]byte, 4+paletteSize)
		copy(data, hdr)
		if _, err := DecodeSPR(data); !errors.Is(err, ErrUnsupportedSPRVersion) {
			t.Errorf("%q: expected ErrUnsupportedSPRVersion, got %v", hdr, err)
		}
	}
}

func TestDecodeSPR_Version11(t *testing.T) {
	s, err := DecodeSPR(buildSyntheticSPR(1, 1, 1, 0, false))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if s.Version.String() != "1.1" {
		t.Errorf("expected version 1.1, got %s", s.Version)
	}
	if len(s.Frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(s.Frames))
	}

	img := s.Frames[0]
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Errorf("expected 2x2 frame, got %v", img.Bounds())
	}
	// Index 0 is transparent, 1..3 are red, green, blue.
	want := []color.NRGBA{
		{},
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
	}
	for i, c := range want {
		if got := img.NRGBAAt(i%2, i/2); got != c {
			t.Errorf("pixel %d: expected %v, got %v", i, c, got)
		}
	}
}

func TestDecodeSPR_Version20_TrueColor(t *testing.T) {
	s, err := DecodeSPR(buildSyntheticSPR(2, 0, 1, 1, false))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(s.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(s.Frames))
	}

	tc := s.Frames[1]
	// The first stored row is the bottom row of the image.
	if got := tc.NRGBAAt(0, 1); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("bottom-left: expected red, got %v", got)
	}
	if got := tc.NRGBAAt(1, 1); got != (color.NRGBA{G: 255, A: 255}) {
		t.Errorf("bottom-right: expected green, got %v", got)
	}
	if got := tc.NRGBAAt(0, 0); got != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("top-left: expected blue, got %v", got)
	}
	if got := tc.NRGBAAt(1, 0); got != (color.NRGBA{R: 128, G: 128, B: 128, A: 128}) {
		t.Errorf("top-right: expected half grey, got %v", got)
	}
}

func TestDecodeSPR_Version21_RLE(t *testing.T) {
	s, err := DecodeSPR(buildSyntheticSPR(2, 1, 1, 0, true))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(s.Frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(s.Frames))
	}

	img := s.Frames[0]
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Fatalf("expected 4x4 frame, got %v", img.Bounds())
	}
	// 4 transparent, red, 6 transparent, green, 5 transparent.
	if got := img.NRGBAAt(0, 1); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("pixel 4: expected red, got %v", got)
	}
	if got := img.NRGBAAt(3, 2); got != (color.NRGBA{G: 255, A: 255}) {
		t.Errorf("pixel 11: expected green, got %v", got)
	}
	if got := img.NRGBAAt(3, 3); got.A != 0 {
		t.Errorf("pixel 15: expected transparent, got %v", got)
	}
}

func TestDecodeSPR_MissingTrueColorFrames(t *testing.T) {
	// Two true-color frames declared, none stored.
	data := buildSyntheticSPR(2, 0, 1, 0, false)
	binary.LittleEndian.PutUint16(data[6:], 2)

	s, err := DecodeSPR(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(s.Frames) != 1 {
		t.Errorf("expected only the stored frame, got %d", len(s.Frames))
	}
}

func TestDecodeSPR_EmptyFrame(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("SP\x00\x02")
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(0xFFFF))
	binary.Write(&buf, binary.LittleEndian, uint16(0xFFFF))
	buf.Write(make([]byte, paletteSize))

	s, err := DecodeSPR(buf.Bytes())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(s.Frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(s.Frames))
	}
	img := s.Frames[0]
	if img.Bounds().Dx() != 1 || img.Bounds().Dy() != 1 || img.Pix[3] != 0 {
		t.Errorf("expected 1x1 transparent placeholder, got %v", img.Bounds())
	}
}

func TestDecodeSPR_TruncatedFrame(t *testing.T) {
	data := buildSyntheticSPR(1, 1, 1, 0, false)
	// Drop two of the four pixel indices; the palette stays intact.
	trimmed := append(append([]byte{}, data[:len(data)-paletteSize-2]...), data[len(data)-paletteSize:]...)
	if _, err := DecodeSPR(trimmed); !errors.Is(err, ErrTruncatedSPRData) {
		t.Errorf("expected ErrTruncatedSPRData, got %v", err)
	}
}

func TestDecompressRLE(t *testing.T) {
	tests := []struct {
		name   string
		packed []byte
		size   int
		want   []byte
	}{
		{"literal bytes", []byte{1, 2, 3, 4}, 4, []byte{1, 2, 3, 4}},
		{"run of zeros", []byte{0x00, 0x04}, 4, []byte{0, 0, 0, 0}},
		{"single zero", []byte{0x00, 0x00}, 1, []byte{0}},
		{"mixed", []byte{1, 0x00, 0x02, 2}, 4, []byte{1, 0, 0, 2}},
		{"padded", []byte{7}, 3, []byte{7, 0, 0}},
		{"clipped", []byte{0x00, 0x09}, 2, []byte{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decompressRLE(tt.packed, tt.size)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %v, expected %v", got, tt.want)
			}
		})
	}
}

// buildSyntheticSPR creates a small SPR file with 2x2 palette frames (4x4
// when rle is set) and 2x2 true-color frames.
func buildSyntheticSPR(major, minor uint8, indexedCount, trueColorCount int, rle bool) []byte {
	var buf bytes.Buffer

	buf.WriteString("SP")
	buf.WriteByte(minor)
	buf.WriteByte(major)

	binary.Write(&buf, binary.LittleEndian, uint16(indexedCount))
	if major >= 2 {
		binary.Write(&buf, binary.LittleEndian, uint16(trueColorCount))
	}

	for i := 0; i < indexedCount; i++ {
		if rle {
			binary.Write(&buf, binary.LittleEndian, uint16(4))
			binary.Write(&buf, binary.LittleEndian, uint16(4))
			packed := []byte{0x00, 0x04, 0x01, 0x00, 0x06, 0x02, 0x00, 0x05}
			binary.Write(&buf, binary.LittleEndian, uint16(len(packed)))
			buf.Write(packed)
		} else {
			binary.Write(&buf, binary.LittleEndian, uint16(2))
			binary.Write(&buf, binary.LittleEndian, uint16(2))
			buf.Write([]byte{0, 1, 2, 3})
		}
	}

	for i := 0; i < trueColorCount; i++ {
		binary.Write(&buf, binary.LittleEndian, uint16(2))
		binary.Write(&buf, binary.LittleEndian, uint16(2))
		buf.Write([]byte{
			255, 0, 0, 255, // red
			255, 0, 255, 0, // green
			255, 255, 0, 0, // blue
			128, 128, 128, 128,
		})
	}

	palette := make([]byte, paletteSize)
	copy(palette[4:], []byte{255, 0, 0, 255, 0, 255, 0, 255, 0, 0, 255, 255})
	buf.Write(palette)

	return buf.Bytes()
}
