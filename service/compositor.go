package service

import "image"

// Compositor 负责图层装配，装配期间独占工作帧
// 叠加顺序固定：背景 → 阴影（drop→ambient→contact）→ 倒影 → 车身
type Compositor struct {
	frame *image.NRGBA
}

// NewCompositor 以背景帧为底创建合成器，接管该帧所有权
func NewCompositor(background *image.NRGBA) (*Compositor, error) {
	if background == nil || background.Bounds().Empty() {
		return nil, ErrInvalidFrame
	}
	return &Compositor{frame: background}, nil
}

// Frame 返回工作帧，装配完成后移交调用方
func (c *Compositor) Frame() *image.NRGBA {
	return c.frame
}

// BlendShadow 按 alpha 图叠加纯黑阴影（等价于 multiply 压暗）
func (c *Compositor) BlendShadow(layer *image.Gray) error {
	if layer == nil {
		return ErrInvalidFrame
	}
	fb := c.frame.Bounds()
	if layer.Bounds().Dx() != fb.Dx() || layer.Bounds().Dy() != fb.Dy() {
		return ErrDimensionMismatch
	}

	w, h := fb.Dx(), fb.Dy()
	for y := 0; y < h; y++ {
		row := c.frame.Pix[y*c.frame.Stride:]
		alphaRow := layer.Pix[y*layer.Stride : y*layer.Stride+w]
		for x := 0; x < w; x++ {
			a := alphaRow[x]
			if a == 0 {
				continue
			}
			factor := 1 - float64(a)/255
			i := x * 4
			row[i+0] = uint8(float64(row[i+0])*factor + 0.5)
			row[i+1] = uint8(float64(row[i+1])*factor + 0.5)
			row[i+2] = uint8(float64(row[i+2])*factor + 0.5)
		}
	}
	return nil
}

// BlendLayer 以标准 over 公式按蒙版叠加图层：out = src*a + dst*(1-a)
// 超出画面的部分裁掉
func (c *Compositor) BlendLayer(layer *image.NRGBA, mask *image.Gray, at image.Point) error {
	if layer == nil || mask == nil {
		return ErrInvalidFrame
	}
	lb := layer.Bounds()
	if lb.Dx() != mask.Bounds().Dx() || lb.Dy() != mask.Bounds().Dy() {
		return ErrDimensionMismatch
	}

	fb := c.frame.Bounds()
	startX := maxInt(0, at.X)
	startY := maxInt(0, at.Y)
	endX := minInt(fb.Dx(), at.X+lb.Dx())
	endY := minInt(fb.Dy(), at.Y+lb.Dy())
	if startX >= endX || startY >= endY {
		return nil
	}

	for y := startY; y < endY; y++ {
		ly := y - at.Y
		dstRow := c.frame.Pix[y*c.frame.Stride:]
		srcRow := layer.Pix[ly*layer.Stride:]
		maskRow := mask.Pix[ly*mask.Stride:]
		for x := startX; x < endX; x++ {
			lx := x - at.X
			m := maskRow[lx]
			if m == 0 {
				continue
			}
			a := float64(m) / 255
			si := lx * 4
			di := x * 4
			dstRow[di+0] = blendChannel(srcRow[si+0], dstRow[di+0], a)
			dstRow[di+1] = blendChannel(srcRow[si+1], dstRow[di+1], a)
			dstRow[di+2] = blendChannel(srcRow[si+2], dstRow[di+2], a)
			// 背景不透明，输出 alpha 保持 255
			outA := a + float64(dstRow[di+3])/255*(1-a)
			dstRow[di+3] = uint8(outA*255 + 0.5)
		}
	}
	return nil
}

func blendChannel(src, dst uint8, a float64) uint8 {
	return uint8(float64(src)*a + float64(dst)*(1-a) + 0.5)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
