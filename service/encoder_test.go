package service

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeFrameFormats(t *testing.T) {
	frame := solidFrame(16, 16, color.NRGBA{R: 120, G: 130, B: 140, A: 255})

	cases := []struct {
		format string
		magic  []byte
	}{
		{"jpeg", []byte{0xFF, 0xD8}},
		{"jpg", []byte{0xFF, 0xD8}},
		{"png", []byte{0x89, 'P', 'N', 'G'}},
		{"webp", []byte("RIFF")},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		if err := EncodeFrame(&buf, frame, tc.format, 90); err != nil {
			t.Errorf("EncodeFrame(%s): %v", tc.format, err)
			continue
		}
		if !bytes.HasPrefix(buf.Bytes(), tc.magic) {
			t.Errorf("%s output missing magic bytes, got % x", tc.format, buf.Bytes()[:8])
		}
	}
}

func TestEncodeFrameUnsupportedFormat(t *testing.T) {
	frame := solidFrame(4, 4, color.NRGBA{A: 255})
	if err := EncodeFrame(&bytes.Buffer{}, frame, "bmp", 90); err == nil {
		t.Error("expected error for unsupported format")
	}
	if err := EncodeFrame(&bytes.Buffer{}, nil, "jpeg", 90); err == nil {
		t.Error("expected error for nil frame")
	}
}

func TestFormatExt(t *testing.T) {
	if got := FormatExt("png"); got != ".png" {
		t.Errorf("png ext = %s", got)
	}
	if got := FormatExt("webp"); got != ".webp" {
		t.Errorf("webp ext = %s", got)
	}
	if got := FormatExt("jpeg"); got != ".jpg" {
		t.Errorf("jpeg ext = %s", got)
	}
}

func TestSaveFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jpg")
	frame := solidFrame(8, 8, color.NRGBA{R: 200, A: 255})

	if err := SaveFrame(path, frame, "jpeg", 95); err != nil {
		t.Fatalf("SaveFrame: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		t.Error("saved file is not a jpeg")
	}
}

func TestSaveFrameLeavesNothingOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bmp")
	frame := solidFrame(8, 8, color.NRGBA{R: 50, A: 255})

	if err := SaveFrame(path, frame, "bmp", 95); err == nil {
		t.Fatal("expected error for unsupported format")
	}

	// 目标文件和临时文件都不应残留
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("failed save left target file behind: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("failed save left %d stray files in output dir", len(entries))
	}
}
