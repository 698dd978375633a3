package model

import "testing"

func TestNormalizeFillsDefaults(t *testing.T) {
	got := RenderOptions{}.Normalize()
	def := DefaultRenderOptions()

	if got.Preset != def.Preset {
		t.Errorf("preset = %s", got.Preset)
	}
	if got.OutputWidth != def.OutputWidth || got.OutputHeight != def.OutputHeight {
		t.Errorf("size = %dx%d", got.OutputWidth, got.OutputHeight)
	}
	if got.Quality != def.Quality {
		t.Errorf("quality = %d", got.Quality)
	}
	if got.Format != def.Format {
		t.Errorf("format = %s", got.Format)
	}
	// 布尔开关不在 Normalize 范围内，零值保持关闭
	if got.AddShadows || got.AddReflection {
		t.Error("layer switches should stay off when unset")
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	in := RenderOptions{
		Preset:       "studio_dark",
		OutputWidth:  800,
		OutputHeight: 600,
		Quality:      70,
		Format:       "png",
	}
	got := in.Normalize()
	if got != in {
		t.Errorf("explicit options changed: %+v", got)
	}
}
