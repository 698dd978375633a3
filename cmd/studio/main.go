package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Ruben1877/360spyne/config"
	"github.com/Ruben1877/360spyne/model"
	"github.com/Ruben1877/360spyne/service"
	"github.com/Ruben1877/360spyne/utils"
)

var (
	flagMask         string
	flagOutput       string
	flagOutputDir    string
	flagPreset       string
	flagWidth        int
	flagHeight       int
	flagQuality      int
	flagFormat       string
	flagNoShadows    bool
	flagNoReflection bool
	flagBatch        bool
)

func main() {
	root := &cobra.Command{
		Use:   "studio <image> [image...]",
		Short: "为车辆照片生成影棚级产品图",
		Long: `studio 将车辆照片与前景蒙版合成为影棚级产品图：
渐变背景、三层阴影、地面倒影及色彩增强。

单张模式下蒙版通过 --mask 指定；批量模式（--batch）下
按 <文件名>_mask.png 约定在图片旁查找蒙版。`,
		Args: cobra.MinimumNArgs(1),
		RunE: run,
	}

	root.Flags().StringVarP(&flagMask, "mask", "m", "", "前景蒙版路径（单张模式必填）")
	root.Flags().StringVarP(&flagOutput, "output", "o", "", "输出文件路径")
	root.Flags().StringVar(&flagOutputDir, "output-dir", "processed", "批量模式输出目录")
	root.Flags().StringVarP(&flagPreset, "preset", "p", "studio_white", "背景预设")
	root.Flags().IntVar(&flagWidth, "width", 1920, "输出宽度")
	root.Flags().IntVar(&flagHeight, "height", 1080, "输出高度")
	root.Flags().IntVarP(&flagQuality, "quality", "q", 95, "JPEG 质量 (1-100)")
	root.Flags().StringVarP(&flagFormat, "format", "f", "jpeg", "输出格式 (jpeg|png|webp)")
	root.Flags().BoolVar(&flagNoShadows, "no-shadows", false, "关闭阴影")
	root.Flags().BoolVar(&flagNoReflection, "no-reflection", false, "关闭地面倒影")
	root.Flags().BoolVar(&flagBatch, "batch", false, "批量模式")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	opts := model.RenderOptions{
		Preset:        flagPreset,
		AddShadows:    !flagNoShadows,
		AddReflection: !flagNoReflection,
		OutputWidth:   flagWidth,
		OutputHeight:  flagHeight,
		Quality:       flagQuality,
		Format:        flagFormat,
	}.Normalize()

	if flagBatch {
		return runBatch(args, opts)
	}

	if len(args) != 1 {
		return fmt.Errorf("单张模式仅接受一个输入文件，批量请加 --batch")
	}
	if flagMask == "" {
		return fmt.Errorf("单张模式需要 --mask 指定前景蒙版")
	}

	output := flagOutput
	if output != "" {
		// 输出后缀决定格式，与显式 --format 冲突时报错
		format, err := resolveFormat(output, opts.Format, cmd.Flags().Changed("format"))
		if err != nil {
			return err
		}
		opts.Format = format
	} else {
		output = deriveOutput(args[0], "", opts.Format)
	}

	svc := newService(filepath.Dir(output))
	result, err := renderOne(svc, args[0], flagMask, output, opts)
	if err != nil {
		return err
	}

	written := filepath.Join(filepath.Dir(output), result.File)
	fmt.Printf("done in %.0fms: %s\n", result.ElapsedMS, written)
	for _, st := range result.Stages {
		fmt.Printf("  %-12s %8.1fms\n", st.Stage, st.Millis)
	}
	return nil
}

func runBatch(inputs []string, opts model.RenderOptions) error {
	if err := os.MkdirAll(flagOutputDir, 0755); err != nil {
		return err
	}

	svc := newService(flagOutputDir)
	bar := progressbar.Default(int64(len(inputs)), "rendering")
	failed := 0

	for _, input := range inputs {
		maskPath := deriveMask(input)
		output := deriveOutput(input, flagOutputDir, opts.Format)

		if _, err := renderOne(svc, input, maskPath, output, opts); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "\n%s: %v\n", input, err)
		}
		_ = bar.Add(1)
	}

	fmt.Printf("\nbatch complete: %d/%d successful\n", len(inputs)-failed, len(inputs))
	if failed > 0 {
		return fmt.Errorf("%d of %d renders failed", failed, len(inputs))
	}
	return nil
}

// newService 以配置文件中的增强参数构建渲染服务，输出目录由命令行决定
func newService(outputDir string) *service.RenderService {
	cfg := config.New()
	renderCfg := cfg.Render
	renderCfg.OutputDir = outputDir
	renderCfg.MaxConcurrent = 1
	return service.NewRenderService(&renderCfg)
}

func renderOne(svc *service.RenderService, imagePath, maskPath, outputPath string, opts model.RenderOptions) (*model.RenderResult, error) {
	md5, err := utils.FileMD5(imagePath)
	if err != nil {
		return nil, err
	}
	key := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))

	return svc.ProcessFiles(imagePath, maskPath, md5, key, opts)
}

// resolveFormat 根据输出文件后缀确定编码格式
// 后缀未知时沿用 format；后缀与显式指定的 --format 不一致时报错
func resolveFormat(outputPath, format string, formatSet bool) (string, error) {
	ext := strings.ToLower(filepath.Ext(outputPath))
	extFormat, ok := formatByExt(ext)
	if !ok {
		return format, nil
	}
	if formatSet && extFormat != format {
		return "", fmt.Errorf("输出后缀 %s 与 --format %s 不一致", ext, format)
	}
	return extFormat, nil
}

func formatByExt(ext string) (string, bool) {
	switch ext {
	case ".jpg", ".jpeg":
		return "jpeg", true
	case ".png":
		return "png", true
	case ".webp":
		return "webp", true
	}
	return "", false
}

// deriveMask 按 <文件名>_mask.png 约定查找蒙版
func deriveMask(imagePath string) string {
	ext := filepath.Ext(imagePath)
	return strings.TrimSuffix(imagePath, ext) + "_mask.png"
}

func deriveOutput(imagePath, dir, format string) string {
	base := filepath.Base(imagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if dir == "" {
		dir = filepath.Dir(imagePath)
	}
	return filepath.Join(dir, stem+"_studio"+service.FormatExt(format))
}
