package service

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// MaskRefiner 对外部分割器输出的蒙版做清理：
// 形态学开闭去噪 → 保留最大连通域 → 边缘羽化
// 可选的前置步骤，不属于渲染流水线本体
type MaskRefiner struct {
	kernelSize int
	feather    int
}

func NewMaskRefiner(kernelSize, feather int) *MaskRefiner {
	if kernelSize < 3 {
		kernelSize = 3
	}
	if feather < 0 {
		feather = 0
	}
	return &MaskRefiner{kernelSize: kernelSize, feather: feather}
}

// Refine 返回清理后的蒙版，输入不变
func (mr *MaskRefiner) Refine(mask *image.Gray) (*image.Gray, error) {
	if mask == nil || mask.Bounds().Empty() {
		return nil, ErrInvalidFrame
	}

	mat, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask: %w", err)
	}
	defer mat.Close()

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(mat, &binary, 127, 255, gocv.ThresholdBinary)

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(mr.kernelSize, mr.kernelSize))
	defer kernel.Close()

	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(binary, &opened, gocv.MorphOpen, kernel)

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(opened, &closed, gocv.MorphClose, kernel)

	largest := mr.keepLargest(&closed)
	defer largest.Close()

	// 羽化边缘，保留软 alpha
	var final gocv.Mat
	if mr.feather > 0 {
		final = gocv.NewMat()
		k := mr.feather*2 + 1
		gocv.GaussianBlur(largest, &final, image.Pt(k, k), 0, 0, gocv.BorderDefault)
	} else {
		final = largest.Clone()
	}
	defer final.Close()

	img, err := final.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert refined mask: %w", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, ErrInvalidFrame
	}
	return gray, nil
}

// keepLargest 保留最大连通域
func (mr *MaskRefiner) keepLargest(mask *gocv.Mat) gocv.Mat {
	contours := gocv.FindContours(*mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		return mask.Clone()
	}

	maxArea := 0.0
	maxIndex := 0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > maxArea {
			maxArea = area
			maxIndex = i
		}
	}

	result := gocv.NewMatWithSize(mask.Rows(), mask.Cols(), gocv.MatTypeCV8U)
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.DrawContours(&result, contours, maxIndex, white, -1)
	return result
}
