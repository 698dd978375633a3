package service

import (
	"fmt"
	"image/color"
	"sort"
)

// BackgroundPreset 影棚背景预设：三段式垂直渐变 + 地平线位置
// 预设只读，进程生命周期内共享
type BackgroundPreset struct {
	Name            string
	TopColor        color.NRGBA
	HorizonColor    color.NRGBA
	FloorColor      color.NRGBA
	HorizonPosition float64
}

func grey(v uint8) color.NRGBA {
	return color.NRGBA{R: v, G: v, B: v, A: 255}
}

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// 预设颜色为逆向标定值，不要重新推导
var presets = map[string]BackgroundPreset{
	"studio_white": {
		Name:            "studio_white",
		TopColor:        grey(250),
		HorizonColor:    grey(240),
		FloorColor:      grey(215),
		HorizonPosition: 0.65,
	},
	"studio_grey": {
		Name:            "studio_grey",
		TopColor:        grey(235),
		HorizonColor:    grey(210),
		FloorColor:      grey(175),
		HorizonPosition: 0.65,
	},
	"studio_dark": {
		Name:            "studio_dark",
		TopColor:        grey(90),
		HorizonColor:    grey(60),
		FloorColor:      grey(35),
		HorizonPosition: 0.65,
	},
	"showroom": {
		Name:            "showroom",
		TopColor:        rgb(248, 248, 250),
		HorizonColor:    rgb(230, 230, 235),
		FloorColor:      rgb(195, 195, 200),
		HorizonPosition: 0.60,
	},
	"dealership": {
		Name:            "dealership",
		TopColor:        rgb(245, 245, 247),
		HorizonColor:    rgb(225, 225, 230),
		FloorColor:      rgb(185, 185, 195),
		HorizonPosition: 0.62,
	},
	"outdoor_neutral": {
		Name:            "outdoor_neutral",
		TopColor:        rgb(200, 210, 220),
		HorizonColor:    rgb(180, 185, 190),
		FloorColor:      rgb(160, 165, 170),
		HorizonPosition: 0.55,
	},
}

// PresetByName 按名称查找预设，未知名称返回 ErrUnknownPreset
func PresetByName(name string) (BackgroundPreset, error) {
	p, ok := presets[name]
	if !ok {
		return BackgroundPreset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// PresetNames 返回所有预设名（字典序）
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
