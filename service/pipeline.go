package service

import (
	"image"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/Ruben1877/360spyne/model"
)

// Stage 流水线阶段名，用于计时与错误定位
type Stage string

const (
	StageConfig      Stage = "config"
	StagePlacement   Stage = "placement"
	StageBackground  Stage = "background"
	StageShadows     Stage = "shadows"
	StageReflection  Stage = "reflection"
	StageComposite   Stage = "composite"
	StagePostProcess Stage = "postprocess"
)

// StageTiming 单阶段耗时
type StageTiming struct {
	Stage    Stage
	Duration time.Duration
}

// Result 一次渲染的最终产物，生成后不再修改
type Result struct {
	Frame     *image.NRGBA
	Placement Placement
	Elapsed   time.Duration
	Stages    []StageTiming
}

// Pipeline 渲染流水线编排器
// 阶段严格顺序执行：放置计算 → 背景 → 阴影（可选）→ 倒影（可选）→ 车身合成 → 增强；
// 任一阶段出错即整体失败，不返回部分结果。无内部状态，可并发复用
type Pipeline struct {
	background *BackgroundSynthesizer
	shadows    *ShadowRenderer
	reflection *ReflectionRenderer
	post       *PostProcessor
	enhance    EnhanceOptions
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		background: NewBackgroundSynthesizer(),
		shadows:    NewShadowRenderer(),
		reflection: NewReflectionRenderer(),
		post:       NewPostProcessor(),
		enhance:    DefaultEnhanceOptions(),
	}
}

// SetEnhanceOptions 配置附加增强项（亮度/gamma/锐化）
func (p *Pipeline) SetEnhanceOptions(opts EnhanceOptions) {
	p.enhance = opts
}

// Render 执行完整渲染
// subject 为车身原图，mask 为外部分割器输出的同尺寸前景蒙版
func (p *Pipeline) Render(subject *image.NRGBA, mask *image.Gray, opts model.RenderOptions) (*Result, error) {
	start := time.Now()
	opts = opts.Normalize()

	result := &Result{}
	record := func(stage Stage, began time.Time) {
		result.Stages = append(result.Stages, StageTiming{Stage: stage, Duration: time.Since(began)})
	}

	// 配置与输入校验
	began := time.Now()
	preset, err := PresetByName(opts.Preset)
	if err != nil {
		return nil, stageErr(StageConfig, err)
	}
	if subject == nil || mask == nil {
		return nil, stageErr(StageConfig, ErrInvalidFrame)
	}
	sb := subject.Bounds()
	if sb.Dx() != mask.Bounds().Dx() || sb.Dy() != mask.Bounds().Dy() {
		return nil, stageErr(StageConfig, ErrDimensionMismatch)
	}
	record(StageConfig, began)

	// 放置计算 + 车身缩放
	began = time.Now()
	placement, err := ComputePlacement(sb.Dx(), sb.Dy(), opts.OutputWidth, opts.OutputHeight, preset.HorizonPosition)
	if err != nil {
		return nil, stageErr(StagePlacement, err)
	}
	scaledSubject, scaledMask := scaleSubject(subject, mask, placement.Width, placement.Height)
	result.Placement = placement
	record(StagePlacement, began)

	// 背景
	began = time.Now()
	background, err := p.background.Render(opts.OutputWidth, opts.OutputHeight, preset)
	if err != nil {
		return nil, stageErr(StageBackground, err)
	}
	compositor, err := NewCompositor(background)
	if err != nil {
		return nil, stageErr(StageBackground, err)
	}
	record(StageBackground, began)

	// 阴影
	if opts.AddShadows {
		began = time.Now()
		layers, err := p.shadows.RenderLayers(placement, opts.OutputWidth, opts.OutputHeight)
		if err != nil {
			return nil, stageErr(StageShadows, err)
		}
		for _, layer := range layers {
			if err := compositor.BlendShadow(layer); err != nil {
				return nil, stageErr(StageShadows, err)
			}
		}
		record(StageShadows, began)
	}

	// 倒影
	if opts.AddReflection {
		began = time.Now()
		layer, layerMask, origin, err := p.reflection.Render(scaledSubject, scaledMask, placement)
		if err != nil {
			return nil, stageErr(StageReflection, err)
		}
		if err := compositor.BlendLayer(layer, layerMask, origin); err != nil {
			return nil, stageErr(StageReflection, err)
		}
		record(StageReflection, began)
	}

	// 车身置顶，不会被自己的阴影或倒影遮挡
	began = time.Now()
	if err := compositor.BlendLayer(scaledSubject, scaledMask, image.Pt(placement.X, placement.Y)); err != nil {
		return nil, stageErr(StageComposite, err)
	}
	record(StageComposite, began)

	// 增强
	began = time.Now()
	final, err := p.post.EnhanceWith(compositor.Frame(), p.enhance)
	if err != nil {
		return nil, stageErr(StagePostProcess, err)
	}
	record(StagePostProcess, began)

	result.Frame = final
	result.Elapsed = time.Since(start)
	return result, nil
}

// scaleSubject 等比缩放车身及蒙版到放置区域尺寸（CatmullRom 重采样）
func scaleSubject(subject *image.NRGBA, mask *image.Gray, w, h int) (*image.NRGBA, *image.Gray) {
	if subject.Bounds().Dx() == w && subject.Bounds().Dy() == h {
		return subject, mask
	}

	dstSubject := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dstSubject, dstSubject.Bounds(), subject, subject.Bounds(), xdraw.Src, nil)

	dstMask := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dstMask, dstMask.Bounds(), mask, mask.Bounds(), xdraw.Src, nil)

	return dstSubject, dstMask
}
