package service

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
)

// EncodeFrame 按格式编码输出帧，quality 仅对 jpeg 生效
func EncodeFrame(w io.Writer, frame *image.NRGBA, format string, quality int) error {
	if err := validateFrame(frame); err != nil {
		return err
	}
	if quality <= 0 || quality > 100 {
		quality = 95
	}

	switch format {
	case "jpeg", "jpg":
		return jpeg.Encode(w, frame, &jpeg.Options{Quality: quality})
	case "png":
		return png.Encode(w, frame)
	case "webp":
		return nativewebp.Encode(w, frame, nil)
	default:
		return fmt.Errorf("unsupported output format: %q", format)
	}
}

// FormatExt 返回格式对应的文件后缀
func FormatExt(format string) string {
	switch format {
	case "png":
		return ".png"
	case "webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// SaveFrame 编码并写入文件
// 先写临时文件再重命名，编码中途出错不会留下残缺文件
func SaveFrame(path string, frame *image.NRGBA, format string, quality int) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".render-*")
	if err != nil {
		return err
	}

	if err := EncodeFrame(tmp, frame, format, quality); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
