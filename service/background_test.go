package service

import (
	"errors"
	"testing"
)

func TestGradientStudioWhite(t *testing.T) {
	preset, err := PresetByName("studio_white")
	if err != nil {
		t.Fatalf("PresetByName: %v", err)
	}

	bs := NewBackgroundSynthesizer()
	frame, err := bs.Gradient(1920, 1080, preset)
	if err != nil {
		t.Fatalf("Gradient: %v", err)
	}

	// 顶行 = 顶色 250，底行 = 地面色 215（±1）
	for _, c := range []struct {
		y    int
		want uint8
	}{
		{0, 250},
		{1079, 215},
		{702, 240}, // 地平线行 = 地平线色
	} {
		px := frame.NRGBAAt(960, c.y)
		for name, got := range map[string]uint8{"r": px.R, "g": px.G, "b": px.B} {
			if diff(got, c.want) > 1 {
				t.Errorf("row %d channel %s: got %d, want %d±1", c.y, name, got, c.want)
			}
		}
	}

	// 渐变逐行水平一致
	left := frame.NRGBAAt(0, 500)
	right := frame.NRGBAAt(1919, 500)
	if left != right {
		t.Errorf("gradient row not uniform: %v vs %v", left, right)
	}
}

func TestRenderVignetteDarkensCorners(t *testing.T) {
	preset, _ := PresetByName("studio_white")
	bs := NewBackgroundSynthesizer()

	frame, err := bs.Render(1920, 1080, preset)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, y := range []int{0, 1079} {
		corner := frame.NRGBAAt(0, y)
		mirror := frame.NRGBAAt(1919, y)
		center := frame.NRGBAAt(960, y)
		if int(corner.R) >= int(center.R) {
			t.Errorf("row %d: corner %d not darker than center %d", y, corner.R, center.R)
		}
		if diff(corner.R, mirror.R) > 1 {
			t.Errorf("row %d: vignette not symmetric: %d vs %d", y, corner.R, mirror.R)
		}
	}

	// 画面中心不受暗角影响
	gradient, _ := bs.Gradient(1920, 1080, preset)
	if frame.NRGBAAt(960, 540) != gradient.NRGBAAt(960, 540) {
		t.Error("vignette altered frame center")
	}
}

func TestRenderInvalidDimensions(t *testing.T) {
	preset, _ := PresetByName("studio_white")
	bs := NewBackgroundSynthesizer()

	for _, c := range [][2]int{{0, 100}, {100, 0}, {-5, 100}} {
		if _, err := bs.Render(c[0], c[1], preset); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("%v: expected ErrInvalidDimensions, got %v", c, err)
		}
	}
}

func TestPresetTable(t *testing.T) {
	names := PresetNames()
	want := []string{"dealership", "outdoor_neutral", "showroom", "studio_dark", "studio_grey", "studio_white"}
	if len(names) != len(want) {
		t.Fatalf("expected %d presets, got %d", len(want), len(names))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("preset %d: got %q, want %q", i, names[i], name)
		}
	}

	if _, err := PresetByName("neon_disco"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
	if !IsConfigError(stageErr(StageConfig, ErrUnknownPreset)) {
		t.Error("wrapped preset error should be a config error")
	}

	for _, name := range names {
		p, err := PresetByName(name)
		if err != nil {
			t.Fatalf("PresetByName(%q): %v", name, err)
		}
		if p.HorizonPosition <= 0 || p.HorizonPosition >= 1 {
			t.Errorf("%s: horizon position %f out of range", name, p.HorizonPosition)
		}
	}
}

func diff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
