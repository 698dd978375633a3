package service

import (
	"image"
	"math"

	"github.com/disintegration/gift"
)

// 增强常量为逆向标定值，顺序固定：对比度 → 饱和度
const (
	contrastFactor   = 1.05
	saturationFactor = 1.10
)

// EnhanceOptions 可选的附加增强，默认全部关闭（1.0 = 不变）
type EnhanceOptions struct {
	Brightness float64
	Gamma      float64
	Sharpness  float64
}

// DefaultEnhanceOptions 返回中性配置
func DefaultEnhanceOptions() EnhanceOptions {
	return EnhanceOptions{Brightness: 1.0, Gamma: 1.0, Sharpness: 1.0}
}

// PostProcessor 对合成结果做逐像素增强，确定性：同输入必得同输出
type PostProcessor struct{}

func NewPostProcessor() *PostProcessor {
	return &PostProcessor{}
}

// Enhance 标准增强：先对比度再饱和度，alpha 不变，返回新帧
func (pp *PostProcessor) Enhance(frame *image.NRGBA) (*image.NRGBA, error) {
	return pp.EnhanceWith(frame, DefaultEnhanceOptions())
}

// EnhanceWith 在标准增强前后施加可选项：亮度、gamma 在前，锐化在后
func (pp *PostProcessor) EnhanceWith(frame *image.NRGBA, opts EnhanceOptions) (*image.NRGBA, error) {
	if err := validateFrame(frame); err != nil {
		return nil, err
	}

	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	// 对比度查找表
	var contrastLUT [256]uint8
	for i := 0; i < 256; i++ {
		v := ((float64(i)/255-0.5)*contrastFactor + 0.5) * 255
		contrastLUT[i] = clampUint8(v)
	}

	var gammaLUT [256]uint8
	useGamma := opts.Gamma != 1.0 && opts.Gamma > 0
	if useGamma {
		inv := 1.0 / opts.Gamma
		for i := 0; i < 256; i++ {
			gammaLUT[i] = clampUint8(math.Pow(float64(i)/255, inv) * 255)
		}
	}

	for y := 0; y < h; y++ {
		srcRow := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		dstRow := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for x := 0; x < w; x++ {
			i := x * 4
			r, g, bb := srcRow[i+0], srcRow[i+1], srcRow[i+2]

			if opts.Brightness != 1.0 {
				r = clampUint8(float64(r) * opts.Brightness)
				g = clampUint8(float64(g) * opts.Brightness)
				bb = clampUint8(float64(bb) * opts.Brightness)
			}
			if useGamma {
				r, g, bb = gammaLUT[r], gammaLUT[g], gammaLUT[bb]
			}

			// 对比度
			r, g, bb = contrastLUT[r], contrastLUT[g], contrastLUT[bb]

			// 饱和度：以通道均值为中心外推
			avg := (float64(r) + float64(g) + float64(bb)) / 3
			dstRow[i+0] = clampUint8(avg + (float64(r)-avg)*saturationFactor)
			dstRow[i+1] = clampUint8(avg + (float64(g)-avg)*saturationFactor)
			dstRow[i+2] = clampUint8(avg + (float64(bb)-avg)*saturationFactor)
			dstRow[i+3] = srcRow[i+3]
		}
	}

	if opts.Sharpness > 1.0 {
		out = unsharp(out, opts.Sharpness-1.0)
	}

	return out, nil
}

func unsharp(frame *image.NRGBA, amount float64) *image.NRGBA {
	g := gift.New(gift.UnsharpMask(1.0, float32(amount), 0))
	dst := image.NewNRGBA(g.Bounds(frame.Bounds()))
	g.Draw(dst, frame)
	return dst
}

func validateFrame(frame *image.NRGBA) error {
	if frame == nil || frame.Bounds().Empty() {
		return ErrInvalidFrame
	}
	b := frame.Bounds()
	if len(frame.Pix) < (b.Dy()-1)*frame.Stride+b.Dx()*4 {
		return ErrInvalidFrame
	}
	return nil
}

func clampUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
