package service

import "math"

// 车身在输出画面中的最大占比
const (
	maxSubjectWidthRatio  = 0.70
	maxSubjectHeightRatio = 0.60
)

// Placement 车身在输出画面中的放置区域
// 水平居中，底边落在地平线上
type Placement struct {
	X      int
	Y      int
	Width  int
	Height int
}

// BaseY 返回车底基线的 y 坐标，阴影和倒影以此为锚点
func (p Placement) BaseY() int {
	return p.Y + p.Height
}

// ComputePlacement 计算缩放后的放置区域
// 等比缩放到宽不超过 0.70*outW、高不超过 0.60*outH，两者取紧的一边；
// horizon 为地平线在画面高度中的比例，取自背景预设
func ComputePlacement(subjectW, subjectH, outW, outH int, horizon float64) (Placement, error) {
	if outW <= 0 || outH <= 0 || subjectW <= 0 || subjectH <= 0 {
		return Placement{}, ErrInvalidDimensions
	}

	scale := math.Min(
		maxSubjectWidthRatio*float64(outW)/float64(subjectW),
		maxSubjectHeightRatio*float64(outH)/float64(subjectH),
	)

	w := int(math.Round(float64(subjectW) * scale))
	h := int(math.Round(float64(subjectH) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	baseY := int(math.Round(horizon * float64(outH)))

	return Placement{
		X:      (outW - w) / 2,
		Y:      baseY - h,
		Width:  w,
		Height: h,
	}, nil
}
