package service

import (
	"errors"
	"testing"
)

func TestComputePlacementScalesToHeightBound(t *testing.T) {
	// 1000x600 车身在 1920x1080 画布上由高度约束决定缩放
	p, err := ComputePlacement(1000, 600, 1920, 1080, 0.65)
	if err != nil {
		t.Fatalf("ComputePlacement: %v", err)
	}

	if p.Width != 1080 || p.Height != 648 {
		t.Errorf("unexpected size: %dx%d", p.Width, p.Height)
	}
	if p.X != 420 {
		t.Errorf("expected horizontal centering at x=420, got %d", p.X)
	}
	if p.BaseY() != 702 {
		t.Errorf("expected base line at 0.65*1080=702, got %d", p.BaseY())
	}
}

func TestComputePlacementScalesToWidthBound(t *testing.T) {
	p, err := ComputePlacement(4000, 1000, 1920, 1080, 0.65)
	if err != nil {
		t.Fatalf("ComputePlacement: %v", err)
	}
	if p.Width != 1344 {
		t.Errorf("expected width bound 0.70*1920=1344 tight, got %d", p.Width)
	}
}

func TestComputePlacementInvariants(t *testing.T) {
	outW, outH := 1920, 1080
	cases := []struct{ w, h int }{
		{100, 100}, {3000, 500}, {500, 3000}, {1920, 1080},
		{1, 1}, {7777, 333}, {640, 480}, {1234, 567},
	}

	for _, c := range cases {
		p, err := ComputePlacement(c.w, c.h, outW, outH, 0.65)
		if err != nil {
			t.Fatalf("ComputePlacement(%dx%d): %v", c.w, c.h, err)
		}

		maxW := maxSubjectWidthRatio * float64(outW)
		maxH := maxSubjectHeightRatio * float64(outH)

		if float64(p.Width) > maxW+0.5 {
			t.Errorf("%dx%d: width %d exceeds bound %.1f", c.w, c.h, p.Width, maxW)
		}
		if float64(p.Height) > maxH+0.5 {
			t.Errorf("%dx%d: height %d exceeds bound %.1f", c.w, c.h, p.Height, maxH)
		}

		// 至少一边贴紧约束
		wTight := float64(p.Width) >= maxW-1
		hTight := float64(p.Height) >= maxH-1
		if !wTight && !hTight {
			t.Errorf("%dx%d: neither bound tight (%dx%d)", c.w, c.h, p.Width, p.Height)
		}

		// 水平居中
		if gap := (outW - p.Width) - 2*p.X; gap < 0 || gap > 1 {
			t.Errorf("%dx%d: not centered, x=%d width=%d", c.w, c.h, p.X, p.Width)
		}
	}
}

func TestComputePlacementInvalidDimensions(t *testing.T) {
	cases := [][4]int{
		{0, 600, 1920, 1080},
		{1000, 0, 1920, 1080},
		{1000, 600, 0, 1080},
		{1000, 600, 1920, -1},
	}
	for _, c := range cases {
		if _, err := ComputePlacement(c[0], c[1], c[2], c[3], 0.65); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("%v: expected ErrInvalidDimensions, got %v", c, err)
		}
	}
}
