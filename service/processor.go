package service

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Ruben1877/360spyne/config"
	"github.com/Ruben1877/360spyne/model"
	"github.com/Ruben1877/360spyne/utils"
)

// RenderService 渲染服务：并发限流 + 解码 + 蒙版清理 + 流水线 + 编码落盘
type RenderService struct {
	pipeline     *Pipeline
	refiner      *MaskRefiner
	semaphore    chan struct{}
	queueTimeout time.Duration
	outputDir    string
}

func NewRenderService(cfg *config.RenderConfig) *RenderService {
	pipeline := NewPipeline()
	pipeline.SetEnhanceOptions(EnhanceOptions{
		Brightness: cfg.Brightness,
		Gamma:      cfg.Gamma,
		Sharpness:  cfg.Sharpness,
	})

	var refiner *MaskRefiner
	if cfg.RefineMask {
		refiner = NewMaskRefiner(cfg.RefineKernel, cfg.RefineFeather)
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.QueueTimeout < 1 {
		cfg.QueueTimeout = 60
	}

	return &RenderService{
		pipeline:     pipeline,
		refiner:      refiner,
		semaphore:    make(chan struct{}, cfg.MaxConcurrent),
		queueTimeout: time.Duration(cfg.QueueTimeout) * time.Second,
		outputDir:    cfg.OutputDir,
	}
}

// ProcessFiles 处理一组图片/蒙版文件并落盘
// key 为缓存键（内容 MD5 + 参数哈希），用于输出文件命名
func (s *RenderService) ProcessFiles(imagePath, maskPath, md5, key string, opts model.RenderOptions) (*model.RenderResult, error) {
	// 并发控制
	ctx, cancel := context.WithTimeout(context.Background(), s.queueTimeout)
	defer cancel()

	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	case <-ctx.Done():
		return nil, fmt.Errorf("render queue is full, try again later")
	}

	subject, err := loadNRGBA(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load subject image: %w", err)
	}
	mask, err := loadGray(maskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load mask: %w", err)
	}

	utils.Logger.Info("rendering",
		zap.String("md5", md5),
		zap.String("preset", opts.Preset),
		zap.Int("width", opts.OutputWidth),
		zap.Int("height", opts.OutputHeight))

	if s.refiner != nil {
		refined, err := s.refiner.Refine(mask)
		if err != nil {
			utils.Logger.Warn("mask refinement failed, using raw mask", zap.Error(err))
		} else {
			mask = refined
		}
	}

	result, err := s.pipeline.Render(subject, mask, opts)
	if err != nil {
		return nil, err
	}

	opts = opts.Normalize()
	filename := key + FormatExt(opts.Format)
	outputPath := filepath.Join(s.outputDir, filename)
	if err := SaveFrame(outputPath, result.Frame, opts.Format, opts.Quality); err != nil {
		return nil, fmt.Errorf("failed to save output: %w", err)
	}

	stages := make([]model.StageTiming, 0, len(result.Stages))
	for _, st := range result.Stages {
		stages = append(stages, model.StageTiming{
			Stage:  string(st.Stage),
			Millis: float64(st.Duration.Microseconds()) / 1000,
		})
	}

	utils.Logger.Info("render complete",
		zap.String("key", key),
		zap.Duration("elapsed", result.Elapsed),
		zap.String("file", filename))

	return &model.RenderResult{
		Key:       key,
		MD5:       md5,
		Preset:    opts.Preset,
		Width:     opts.OutputWidth,
		Height:    opts.OutputHeight,
		Format:    opts.Format,
		File:      filename,
		ElapsedMS: float64(result.Elapsed.Microseconds()) / 1000,
		Stages:    stages,
		Timestamp: time.Now().Unix(),
	}, nil
}

// loadNRGBA 解码图片并转为非预乘 RGBA
func loadNRGBA(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba, nil
	}

	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst, nil
}

// loadGray 解码蒙版并转为单通道灰度
func loadGray(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	if gray, ok := img.(*image.Gray); ok {
		return gray, nil
	}

	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst, nil
}
