package service

import (
	"image"

	"github.com/disintegration/gift"
)

// ShadowLayerSpec 单层阴影参数
// 三层常量为逆向标定值，用于复现参考渲染效果，不可按调用调整
type ShadowLayerSpec struct {
	Name            string
	BlurRadius      int     // 高斯模糊半径（像素）
	Opacity         float64 // 纯黑叠加的不透明度
	VerticalOffset  int     // 相对车底基线的垂直偏移
	RadiusXRatio    float64 // 椭圆横向半径 / 放置宽度
	FootprintScaleY float64 // 椭圆纵向半径 / 放置高度
}

// 绘制顺序固定：先 drop（最大最虚），再 ambient，最后 contact（最小最实），
// 保证清晰的层不被更虚的层盖住
var shadowLayers = [3]ShadowLayerSpec{
	{Name: "drop", BlurRadius: 80, Opacity: 0.15, VerticalOffset: 15, RadiusXRatio: 0.40, FootprintScaleY: 0.20},
	{Name: "ambient", BlurRadius: 35, Opacity: 0.25, VerticalOffset: 5, RadiusXRatio: 0.35, FootprintScaleY: 0.12},
	{Name: "contact", BlurRadius: 5, Opacity: 0.45, VerticalOffset: 0, RadiusXRatio: 0.30, FootprintScaleY: 0.015},
}

// ShadowRenderer 在车底基线处渲染三层椭圆阴影
type ShadowRenderer struct{}

func NewShadowRenderer() *ShadowRenderer {
	return &ShadowRenderer{}
}

// ShadowLayers 返回固定的三层阴影参数（绘制顺序）
func ShadowLayers() []ShadowLayerSpec {
	return shadowLayers[:]
}

// RenderLayers 按绘制顺序生成三张全幅 alpha 图，值已含各层不透明度
func (sr *ShadowRenderer) RenderLayers(p Placement, outW, outH int) ([]*image.Gray, error) {
	if outW <= 0 || outH <= 0 {
		return nil, ErrInvalidDimensions
	}

	layers := make([]*image.Gray, 0, len(shadowLayers))
	for _, spec := range shadowLayers {
		layers = append(layers, sr.renderLayer(p, outW, outH, spec))
	}
	return layers, nil
}

func (sr *ShadowRenderer) renderLayer(p Placement, outW, outH int, spec ShadowLayerSpec) *image.Gray {
	layer := image.NewGray(image.Rect(0, 0, outW, outH))

	cx := float64(p.X) + float64(p.Width)/2
	cy := float64(p.BaseY() + spec.VerticalOffset)
	rx := spec.RadiusXRatio * float64(p.Width)
	ry := spec.FootprintScaleY * float64(p.Height)
	if rx < 1 {
		rx = 1
	}
	if ry < 1 {
		ry = 1
	}

	fillEllipse(layer, cx, cy, rx, ry)

	if spec.BlurRadius > 0 {
		layer = blurGray(layer, spec.BlurRadius)
	}

	// 不透明度在模糊之后整体施加
	for i, v := range layer.Pix {
		layer.Pix[i] = uint8(float64(v)*spec.Opacity + 0.5)
	}

	return layer
}

// fillEllipse 填充实心椭圆（满覆盖 255）
func fillEllipse(dst *image.Gray, cx, cy, rx, ry float64) {
	b := dst.Bounds()
	minX := clampInt(int(cx-rx)-1, 0, b.Dx())
	maxX := clampInt(int(cx+rx)+2, 0, b.Dx())
	minY := clampInt(int(cy-ry)-1, 0, b.Dy())
	maxY := clampInt(int(cy+ry)+2, 0, b.Dy())

	for y := minY; y < maxY; y++ {
		ny := (float64(y) - cy) / ry
		for x := minX; x < maxX; x++ {
			nx := (float64(x) - cx) / rx
			if nx*nx+ny*ny <= 1 {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
}

// blurGray 可分离高斯模糊，sigma = radius/3
func blurGray(src *image.Gray, radius int) *image.Gray {
	g := gift.New(gift.GaussianBlur(float32(radius) / 3))
	dst := image.NewGray(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
