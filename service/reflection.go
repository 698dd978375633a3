package service

import (
	"image"
	"math"
)

// 倒影常量：固定不透明度 0.15，可见带为车高的 38%，自上而下按幂曲线衰减
const (
	reflectionOpacity   = 0.15
	reflectionBandRatio = 0.38
	reflectionFadePower = 0.8
)

// ReflectionRenderer 生成地面镜像倒影
type ReflectionRenderer struct{}

func NewReflectionRenderer() *ReflectionRenderer {
	return &ReflectionRenderer{}
}

// Render 生成倒影图层及其 alpha 蒙版
// subject/mask 为已缩放到放置区域尺寸的车身图与蒙版；
// 返回的 origin 是倒影左上角在输出画面中的位置，顶边紧贴车底基线，
// 倒影不会出现在基线之上
func (rr *ReflectionRenderer) Render(subject *image.NRGBA, mask *image.Gray, p Placement) (*image.NRGBA, *image.Gray, image.Point, error) {
	if subject == nil || mask == nil {
		return nil, nil, image.Point{}, ErrInvalidFrame
	}
	sb := subject.Bounds()
	if sb.Dx() != mask.Bounds().Dx() || sb.Dy() != mask.Bounds().Dy() {
		return nil, nil, image.Point{}, ErrDimensionMismatch
	}

	w, h := sb.Dx(), sb.Dy()
	bandH := int(float64(h) * reflectionBandRatio)
	if bandH < 1 {
		bandH = 1
	}

	layer := image.NewNRGBA(image.Rect(0, 0, w, bandH))
	layerMask := image.NewGray(image.Rect(0, 0, w, bandH))

	for y := 0; y < bandH; y++ {
		srcY := h - 1 - y // 垂直镜像：底行在最上
		t := float64(y) / float64(bandH)
		fade := 1 - math.Pow(t, reflectionFadePower)
		alphaScale := reflectionOpacity * fade

		srcRow := subject.Pix[srcY*subject.Stride : srcY*subject.Stride+w*4]
		maskRow := mask.Pix[srcY*mask.Stride : srcY*mask.Stride+w]
		dstRow := layer.Pix[y*layer.Stride : y*layer.Stride+w*4]
		dstMask := layerMask.Pix[y*layerMask.Stride : y*layerMask.Stride+w]

		for x := 0; x < w; x++ {
			dstRow[x*4+0] = srcRow[x*4+0]
			dstRow[x*4+1] = srcRow[x*4+1]
			dstRow[x*4+2] = srcRow[x*4+2]
			dstRow[x*4+3] = 255
			dstMask[x] = uint8(float64(maskRow[x])*alphaScale + 0.5)
		}
	}

	return layer, layerMask, image.Pt(p.X, p.BaseY()), nil
}
