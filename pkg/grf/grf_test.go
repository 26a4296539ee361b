package grf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func buildArchive(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for name, data := range files {
		w.Add(name, data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("writing archive: %v", err)
	}
	return buf.Bytes()
}

var testFiles = map[string][]byte{
	"data/sprite/hero.atlas":       []byte("hero.png\nsize: 64,64\n"),
	"data/sprite/hero.png":         bytes.Repeat([]byte{0x89, 'P', 'N', 'G'}, 64),
	"data/sprite/몬스터/poring.atlas": []byte("poring.png\n"),
	"data/empty.txt":               {},
}

func TestRoundTrip(t *testing.T) {
	archive, err := NewReader(bytes.NewReader(buildArchive(t, testFiles)))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer archive.Close()

	list := archive.List()
	if len(list) != len(testFiles) {
		t.Fatalf("expected %d files, got %d: %v", len(testFiles), len(list), list)
	}

	for name, want := range testFiles {
		got, err := archive.Read(name)
		if err != nil {
			t.Errorf("read %s: %v", name, err)
			continue
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s: got %d bytes, want %d", name, len(got), len(want))
		}
	}
}

func TestContains(t *testing.T) {
	archive, err := NewReader(bytes.NewReader(buildArchive(t, testFiles)))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"data/sprite/hero.atlas", true},
		{`DATA\Sprite\Hero.ATLAS`, true},
		{"data/sprite/몬스터/poring.atlas", true},
		{"data/sprite/missing.atlas", false},
	}
	for _, tt := range tests {
		if got := archive.Contains(tt.path); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if _, err := archive.Read("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEntryAlignment(t *testing.T) {
	archive, err := NewReader(bytes.NewReader(buildArchive(t, testFiles)))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	for _, name := range archive.List() {
		e, _ := archive.Entry(name)
		if e.AlignedSize%8 != 0 {
			t.Errorf("%s: aligned size %d not a multiple of 8", name, e.AlignedSize)
		}
		if e.Offset%8 != 0 {
			t.Errorf("%s: offset %d not aligned", name, e.Offset)
		}
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.grf")
	if err := os.WriteFile(path, buildArchive(t, testFiles), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	archive, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open GRF: %v", err)
	}
	defer archive.Close()

	data, err := archive.Read("data/sprite/hero.atlas")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hero.png\nsize: 64,64\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestOpenErrors(t *testing.T) {
	valid := buildArchive(t, testFiles)

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "Master of Mogic")

	badVersion := append([]byte(nil), valid...)
	badVersion[42] = 0x03

	truncated := valid[:len(valid)-8]

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"magic", badMagic, ErrInvalidMagic},
		{"version", badVersion, ErrVersion},
		{"truncated table", truncated, ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.grf")); err == nil {
		t.Error("expected error opening missing file")
	}
}
