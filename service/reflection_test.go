package service

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func solidSubject(w, h int, c color.NRGBA) (*image.NRGBA, *image.Gray) {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
			mask.Pix[y*mask.Stride+x] = 255
		}
	}
	return img, mask
}

func TestReflectionMirrorsSubjectBase(t *testing.T) {
	p := Placement{X: 100, Y: 50, Width: 200, Height: 120}
	subject, mask := solidSubject(200, 120, color.NRGBA{R: 30, G: 60, B: 90, A: 255})
	// 底行换色，验证镜像方向
	for x := 0; x < 200; x++ {
		subject.SetNRGBA(x, 119, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	}

	rr := NewReflectionRenderer()
	layer, layerMask, origin, err := rr.Render(subject, mask, p)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	// 顶边紧贴车底基线
	if origin != image.Pt(p.X, p.BaseY()) {
		t.Errorf("origin %v, want %v", origin, image.Pt(p.X, p.BaseY()))
	}

	// 可见带约为车高的 38%
	wantBand := int(0.38 * float64(p.Height))
	if layer.Bounds().Dy() != wantBand {
		t.Errorf("band height %d, want %d", layer.Bounds().Dy(), wantBand)
	}

	// 镜像后车身底行在倒影最上
	top := layer.NRGBAAt(50, 0)
	if top.R != 200 || top.G != 10 {
		t.Errorf("top row not mirrored base row: %v", top)
	}

	// alpha 上限 = 蒙版 × 0.15
	for i, v := range layerMask.Pix {
		if v > 39 {
			t.Fatalf("mask pixel %d exceeds 0.15 opacity cap: %d", i, v)
		}
	}

	// 自上而下衰减
	prev := layerMask.Pix[0]
	for y := 1; y < wantBand; y++ {
		cur := layerMask.Pix[y*layerMask.Stride]
		if cur > prev {
			t.Fatalf("fade not monotonic at row %d: %d > %d", y, cur, prev)
		}
		prev = cur
	}
}

func TestReflectionRespectsMask(t *testing.T) {
	p := Placement{X: 0, Y: 0, Width: 100, Height: 100}
	subject, mask := solidSubject(100, 100, color.NRGBA{R: 120, G: 120, B: 120, A: 255})
	// 左半蒙版清零
	for y := 0; y < 100; y++ {
		for x := 0; x < 50; x++ {
			mask.Pix[y*mask.Stride+x] = 0
		}
	}

	rr := NewReflectionRenderer()
	_, layerMask, _, err := rr.Render(subject, mask, p)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for y := 0; y < layerMask.Bounds().Dy(); y++ {
		for x := 0; x < 50; x++ {
			if layerMask.Pix[y*layerMask.Stride+x] != 0 {
				t.Fatalf("reflection alpha outside subject mask at (%d,%d)", x, y)
			}
		}
	}
}

func TestReflectionDimensionMismatch(t *testing.T) {
	subject, _ := solidSubject(100, 100, color.NRGBA{A: 255})
	mask := image.NewGray(image.Rect(0, 0, 50, 100))

	rr := NewReflectionRenderer()
	if _, _, _, err := rr.Render(subject, mask, Placement{Width: 100, Height: 100}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
