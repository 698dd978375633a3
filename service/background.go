package service

import (
	"image"
	"math"
)

// 暗角参数：从画面中心到 0.7*宽度 处线性增强，最大压暗 15%
const (
	vignetteStrength    = 0.15
	vignetteRadiusRatio = 0.7
)

// BackgroundSynthesizer 生成影棚背景：垂直渐变 + 暗角
type BackgroundSynthesizer struct{}

func NewBackgroundSynthesizer() *BackgroundSynthesizer {
	return &BackgroundSynthesizer{}
}

// Render 生成完整背景（渐变 + 暗角），纯函数
func (bs *BackgroundSynthesizer) Render(width, height int, preset BackgroundPreset) (*image.NRGBA, error) {
	frame, err := bs.Gradient(width, height, preset)
	if err != nil {
		return nil, err
	}
	bs.applyVignette(frame)
	return frame, nil
}

// Gradient 生成三段式垂直渐变：顶色 → 地平线色 → 地面色，逐通道线性插值
func (bs *BackgroundSynthesizer) Gradient(width, height int, preset BackgroundPreset) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}

	frame := image.NewNRGBA(image.Rect(0, 0, width, height))
	horizonY := int(math.Round(preset.HorizonPosition * float64(height)))
	if horizonY < 0 {
		horizonY = 0
	}
	if horizonY > height {
		horizonY = height
	}

	for y := 0; y < height; y++ {
		var r, g, b uint8
		if y < horizonY {
			t := float64(y) / float64(horizonY)
			r = lerpChannel(preset.TopColor.R, preset.HorizonColor.R, t)
			g = lerpChannel(preset.TopColor.G, preset.HorizonColor.G, t)
			b = lerpChannel(preset.TopColor.B, preset.HorizonColor.B, t)
		} else {
			t := float64(y-horizonY) / float64(height-horizonY)
			r = lerpChannel(preset.HorizonColor.R, preset.FloorColor.R, t)
			g = lerpChannel(preset.HorizonColor.G, preset.FloorColor.G, t)
			b = lerpChannel(preset.HorizonColor.B, preset.FloorColor.B, t)
		}

		// 整行同色
		row := frame.Pix[y*frame.Stride : y*frame.Stride+width*4]
		for x := 0; x < width; x++ {
			row[x*4+0] = r
			row[x*4+1] = g
			row[x*4+2] = b
			row[x*4+3] = 255
		}
	}

	return frame, nil
}

// applyVignette 径向暗角，乘法压暗，中心不变
func (bs *BackgroundSynthesizer) applyVignette(frame *image.NRGBA) {
	b := frame.Bounds()
	width, height := b.Dx(), b.Dy()

	cx := float64(width) / 2
	cy := float64(height) / 2
	maxRadius := vignetteRadiusRatio * float64(width)

	for y := 0; y < height; y++ {
		dy := float64(y) - cy
		for x := 0; x < width; x++ {
			dx := float64(x) - cx
			dist := math.Sqrt(dx*dx + dy*dy)

			t := dist / maxRadius
			if t > 1 {
				t = 1
			}
			factor := 1 - vignetteStrength*t

			i := y*frame.Stride + x*4
			frame.Pix[i+0] = uint8(float64(frame.Pix[i+0])*factor + 0.5)
			frame.Pix[i+1] = uint8(float64(frame.Pix[i+1])*factor + 0.5)
			frame.Pix[i+2] = uint8(float64(frame.Pix[i+2])*factor + 0.5)
		}
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
